package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense status values. Pending statuses carry the current step label
// and are produced by PendingStatus; Approved/Rejected are terminal.
const (
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// Decision actions recorded in the expense history.
const (
	ActionApproved = "Approved"
	ActionRejected = "Rejected"
)

// PendingStatus renders the status string for an expense waiting at the
// given step.
func PendingStatus(step ApprovalStep) string {
	return fmt.Sprintf("Pending (%s)", step.StepName)
}

// Expense is a reimbursement claim. Flow is a snapshot of the company
// approval template taken at submission; CurrentApproverIndex points at
// the pending step within that snapshot and is frozen once the expense
// reaches a terminal status.
type Expense struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	// Original amount as submitted, plus the conversion into the company
	// currency computed once at submission time.
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(10);not null" json:"currency"`
	ConvertedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"converted_amount"`
	CompanyCurrency string          `gorm:"type:varchar(10);not null" json:"company_currency"`

	Category    string `gorm:"type:varchar(100);not null" json:"category"`
	Description string `gorm:"type:text" json:"description"`
	Date        string `gorm:"type:varchar(20);not null" json:"date"`

	Status               string           `gorm:"type:varchar(100);not null;index" json:"status"`
	Flow                 ApprovalFlow     `gorm:"type:jsonb;not null" json:"approval_flow"`
	CurrentApproverIndex int              `gorm:"not null;default:0" json:"current_approver_index"`
	History              []ExpenseHistory `gorm:"foreignKey:ExpenseID" json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finalized reports whether the expense has reached a terminal status.
func (e *Expense) Finalized() bool {
	return e.Status == StatusApproved || e.Status == StatusRejected
}

// CurrentStep returns the step the expense is waiting at, or false when
// the index is out of range (terminal or corrupted state).
func (e *Expense) CurrentStep() (ApprovalStep, bool) {
	if e.CurrentApproverIndex < 0 || e.CurrentApproverIndex >= len(e.Flow) {
		return ApprovalStep{}, false
	}
	return e.Flow[e.CurrentApproverIndex], true
}

// ExpenseHistory is one immutable decision record. Rows are only ever
// appended; Step holds the label as it was before any index advance.
type ExpenseHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ExpenseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"expense_id"`
	Action     string    `gorm:"type:varchar(20);not null" json:"action"`
	Step       string    `gorm:"type:varchar(100);not null" json:"step"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null" json:"approver_id"`
	Approver   *User     `gorm:"foreignKey:ApproverID" json:"-"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `gorm:"index" json:"timestamp"`
}
