package service

import (
	"context"
	"encoding/json"
	"fmt"

	"reimburse/internal/model"
	"reimburse/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type DecisionRequest struct {
	Comment string `json:"comment"`
}

type DecisionResponse struct {
	Message   string `json:"message"`
	NewStatus string `json:"new_status"`
}

// --- Interface ---

// ApprovalService is the sequential approval engine: it authorizes the
// acting user against the expense's current step and advances or halts
// the flow. All decision paths run authorize-then-mutate inside one
// transaction with the expense row locked, so concurrent decisions on
// the same expense serialize instead of double-advancing the flow.
type ApprovalService interface {
	Approve(ctx context.Context, expenseID, actorID uuid.UUID, comment string) (DecisionResponse, error)
	Reject(ctx context.Context, expenseID, actorID uuid.UUID, comment string) (DecisionResponse, error)
	ListPending(ctx context.Context, actorID uuid.UUID) ([]ExpenseResponse, error)
}

type approvalService struct {
	expenseRepo repository.ExpenseRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    Notifier
}

func NewApprovalService(
	expenseRepo repository.ExpenseRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) ApprovalService {
	return &approvalService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

// --- Implementation ---

func (s *approvalService) Approve(ctx context.Context, expenseID, actorID uuid.UUID, comment string) (DecisionResponse, error) {
	var resp DecisionResponse

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		expense, err := s.expenseRepo.FindByIDForUpdate(txCtx, expenseID)
		if err != nil {
			return notFoundOr(err, "expense %s", expenseID)
		}

		actor, owner, err := s.loadParticipants(txCtx, actorID, expense.UserID)
		if err != nil {
			return err
		}

		if ok, reason := CanDecide(actor, owner, expense); !ok {
			return Denied(reason)
		}

		entry := RecordDecision(expense, model.ActionApproved, actor.ID, comment)
		if err := s.expenseRepo.AppendHistory(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record decision: %w", err)
		}

		message := Advance(expense)
		if err := s.expenseRepo.Update(txCtx, expense); err != nil {
			return fmt.Errorf("failed to advance expense: %w", err)
		}

		if err := s.logDecision(txCtx, model.ActionApproveExpense, expense, actor, entry.Step, comment); err != nil {
			return err
		}

		resp = DecisionResponse{
			Message:   fmt.Sprintf("Expense %s approved at '%s'. %s", expense.ID, entry.Step, message),
			NewStatus: expense.Status,
		}
		return nil
	})
	if err != nil {
		return DecisionResponse{}, err
	}

	if s.notifier != nil {
		s.notifier.Publish(EventExpenseApproved, map[string]string{
			"expense_id": expenseID.String(),
			"status":     resp.NewStatus,
			"actor_id":   actorID.String(),
		})
	}

	return resp, nil
}

func (s *approvalService) Reject(ctx context.Context, expenseID, actorID uuid.UUID, comment string) (DecisionResponse, error) {
	var resp DecisionResponse

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		expense, err := s.expenseRepo.FindByIDForUpdate(txCtx, expenseID)
		if err != nil {
			return notFoundOr(err, "expense %s", expenseID)
		}

		actor, owner, err := s.loadParticipants(txCtx, actorID, expense.UserID)
		if err != nil {
			return err
		}

		if ok, reason := CanDecide(actor, owner, expense); !ok {
			return Denied(reason)
		}

		entry := RecordDecision(expense, model.ActionRejected, actor.ID, comment)
		if err := s.expenseRepo.AppendHistory(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record decision: %w", err)
		}

		// Rejection halts the flow; the approver index keeps its value.
		Halt(expense)
		if err := s.expenseRepo.Update(txCtx, expense); err != nil {
			return fmt.Errorf("failed to finalize expense: %w", err)
		}

		if err := s.logDecision(txCtx, model.ActionRejectExpense, expense, actor, entry.Step, comment); err != nil {
			return err
		}

		resp = DecisionResponse{
			Message:   fmt.Sprintf("Expense %s rejected at '%s'. Status finalized.", expense.ID, entry.Step),
			NewStatus: expense.Status,
		}
		return nil
	})
	if err != nil {
		return DecisionResponse{}, err
	}

	if s.notifier != nil {
		s.notifier.Publish(EventExpenseRejected, map[string]string{
			"expense_id": expenseID.String(),
			"status":     resp.NewStatus,
			"actor_id":   actorID.String(),
		})
	}

	return resp, nil
}

// ListPending returns the company's in-flight expenses the actor is
// authorized to decide right now: all of them for an Admin, role
// matches otherwise, with the assigned-manager rule applied at the
// first step.
func (s *approvalService) ListPending(ctx context.Context, actorID uuid.UUID) ([]ExpenseResponse, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, notFoundOr(err, "user %s", actorID)
	}

	expenses, err := s.expenseRepo.ListPendingByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending expenses: %w", err)
	}

	result := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		expense := &expenses[i]
		if expense.User == nil {
			continue
		}
		if ok, _ := CanDecide(actor, expense.User, expense); ok {
			result = append(result, toExpenseResponse(expense))
		}
	}
	return result, nil
}

// --- Helpers ---

func (s *approvalService) loadParticipants(ctx context.Context, actorID, ownerID uuid.UUID) (actor, owner *model.User, err error) {
	actor, err = s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, notFoundOr(err, "user %s", actorID)
	}
	owner, err = s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, nil, notFoundOr(err, "expense owner %s", ownerID)
	}
	return actor, owner, nil
}

func (s *approvalService) logDecision(ctx context.Context, action string, expense *model.Expense, actor *model.User, step, comment string) error {
	details, _ := json.Marshal(map[string]interface{}{
		"step":    step,
		"status":  expense.Status,
		"comment": comment,
	})
	audit := model.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		EntityID:   expense.ID.String(),
		EntityName: expense.Category,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, &audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
