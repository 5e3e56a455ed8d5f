package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ApprovalStep is one entry in an approval flow: the role required to
// act and the label shown while the expense waits at this step.
type ApprovalStep struct {
	Role     Role   `json:"role"`
	StepName string `json:"step_name"`
}

// ApprovalFlow is an ordered sequence of approval steps, stored as jsonb.
// Expenses hold their own copy taken at submission time, so editing a
// company template never touches in-flight expenses.
type ApprovalFlow []ApprovalStep

// Value implements driver.Valuer for jsonb storage.
func (f ApprovalFlow) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for jsonb retrieval.
func (f *ApprovalFlow) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported type %T for ApprovalFlow", value)
	}
}

// Clone returns an independent copy of the flow. Used when snapshotting
// a company template into a new expense.
func (f ApprovalFlow) Clone() ApprovalFlow {
	if f == nil {
		return nil
	}
	out := make(ApprovalFlow, len(f))
	copy(out, f)
	return out
}

// DefaultApprovalFlow is the three-step chain assigned to new companies.
func DefaultApprovalFlow() ApprovalFlow {
	return ApprovalFlow{
		{Role: RoleManager, StepName: "Manager Approval"},
		{Role: RoleFinance, StepName: "Finance Review"},
		{Role: RoleAdmin, StepName: "Director Sign-off"},
	}
}

// Company groups users and expenses and carries the settlement currency
// plus the approval flow template applied to newly submitted expenses.
type Company struct {
	ID               uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name             string       `gorm:"type:varchar(255);not null" json:"name"`
	DefaultCurrency  string       `gorm:"type:varchar(10);not null;default:'USD'" json:"default_currency"`
	ApprovalTemplate ApprovalFlow `gorm:"type:jsonb;not null" json:"approval_template"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
