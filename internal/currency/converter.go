package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoRate is returned in strict mode when no rate is known for a
// currency pair.
var ErrNoRate = errors.New("no exchange rate for currency pair")

// Policy controls what happens when a rate is missing: best-effort
// keeps the original amount, strict fails the conversion.
type Policy string

const (
	PolicyBestEffort Policy = "best-effort"
	PolicyStrict     Policy = "strict"
)

// ParsePolicy maps a config string to a Policy, defaulting to best-effort.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), string(PolicyStrict)) {
		return PolicyStrict
	}
	return PolicyBestEffort
}

// Converter converts amounts between currencies using a fixed rate
// table. The table is a stand-in for a real FX feed, so rates are
// defined pairwise and are not guaranteed to be symmetric.
type Converter struct {
	rates  map[string]map[string]decimal.Decimal
	policy Policy
}

// NewConverter builds a converter over the built-in USD/EUR/INR table.
func NewConverter(policy Policy) *Converter {
	rate := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return &Converter{
		policy: policy,
		rates: map[string]map[string]decimal.Decimal{
			"USD": {"EUR": rate("0.93"), "INR": rate("83.00"), "USD": rate("1.0")},
			"EUR": {"USD": rate("1.08"), "INR": rate("89.00"), "EUR": rate("1.0")},
			"INR": {"USD": rate("0.012"), "EUR": rate("0.011"), "INR": rate("1.0")},
		},
	}
}

// Convert converts amount from one currency to another, rounding to 2
// decimal places. Currency codes are normalized case-insensitively.
// Identity conversion returns the amount untouched. A missing rate
// returns the original amount under PolicyBestEffort and ErrNoRate
// under PolicyStrict.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromCode := strings.ToUpper(strings.TrimSpace(from))
	toCode := strings.ToUpper(strings.TrimSpace(to))

	if fromCode == toCode {
		return amount, nil
	}

	table, ok := c.rates[fromCode]
	if !ok {
		return c.fallback(amount, fromCode, toCode)
	}
	rate, ok := table[toCode]
	if !ok {
		return c.fallback(amount, fromCode, toCode)
	}

	return amount.Mul(rate).Round(2), nil
}

func (c *Converter) fallback(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if c.policy == PolicyStrict {
		return decimal.Zero, fmt.Errorf("%w: %s->%s", ErrNoRate, from, to)
	}
	return amount, nil
}
