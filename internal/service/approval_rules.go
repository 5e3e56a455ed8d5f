package service

import (
	"reimburse/internal/model"

	"github.com/google/uuid"
)

// Deny reasons surfaced to callers. Tests and API consumers rely on
// these exact strings, so keep them stable.
const (
	ReasonFinalized      = "This expense is already finalized."
	ReasonNotYourReport  = "You are not the assigned manager for this employee."
	ReasonWrongRole      = "You do not have the required role/authority for the current approval step."
	DefaultApproveNote   = "Approved."
	DefaultRejectNote    = "Rejected."
	MessageFullyApproved = "Expense fully approved."
)

// CanDecide reports whether actor may approve or reject the expense at
// its current step. The rules, in order:
//
//  1. finalized expenses take no further action;
//  2. Admin may act at any step;
//  3. an index past the end of the flow denies (unreachable while the
//     pending-index invariant holds, kept as a guard);
//  4. the actor's role must match the current step's role;
//  5. the first Manager step is only satisfied by the expense owner's
//     assigned manager, not any Manager in the company.
func CanDecide(actor, owner *model.User, expense *model.Expense) (bool, string) {
	if expense.Finalized() {
		return false, ReasonFinalized
	}

	if actor.Role == model.RoleAdmin {
		return true, ""
	}

	step, ok := expense.CurrentStep()
	if !ok {
		return false, ReasonWrongRole
	}

	if actor.Role != step.Role {
		return false, ReasonWrongRole
	}

	if expense.CurrentApproverIndex == 0 && step.Role == model.RoleManager {
		if owner.ManagerID == nil || *owner.ManagerID != actor.ID {
			return false, ReasonNotYourReport
		}
	}

	return true, ""
}

// RecordDecision builds the immutable history entry for a decision,
// labelled with the step as it stands before any advance. An empty
// comment gets the default text for the action.
func RecordDecision(expense *model.Expense, action string, approverID uuid.UUID, comment string) *model.ExpenseHistory {
	if comment == "" {
		if action == model.ActionRejected {
			comment = DefaultRejectNote
		} else {
			comment = DefaultApproveNote
		}
	}

	step := ""
	if s, ok := expense.CurrentStep(); ok {
		step = s.StepName
	}

	return &model.ExpenseHistory{
		ExpenseID:  expense.ID,
		Action:     action,
		Step:       step,
		ApproverID: approverID,
		Comment:    comment,
	}
}

// Advance moves the expense to the next step of its flow, or marks it
// fully approved when the current step was the last one. It returns a
// message describing the transition. This is the only mutation path
// for progressing an expense and must run after a successful CanDecide
// plus RecordDecision.
func Advance(expense *model.Expense) string {
	if expense.CurrentApproverIndex+1 < len(expense.Flow) {
		expense.CurrentApproverIndex++
		next := expense.Flow[expense.CurrentApproverIndex]
		expense.Status = model.PendingStatus(next)
		return "Moved to next step: " + next.StepName
	}

	expense.Status = model.StatusApproved
	return MessageFullyApproved
}

// Halt finalizes the expense as rejected. The approver index keeps its
// last value so the history shows where the flow stopped.
func Halt(expense *model.Expense) {
	expense.Status = model.StatusRejected
}
