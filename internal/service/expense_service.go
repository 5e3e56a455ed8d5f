package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reimburse/internal/currency"
	"reimburse/internal/model"
	"reimburse/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description" binding:"required"`
	Date        string `json:"date" binding:"required"`
}

type SubmitExpenseResponse struct {
	Message                 string `json:"message"`
	ExpenseID               string `json:"expense_id"`
	PendingStep             string `json:"pending_step"`
	AmountInCompanyCurrency string `json:"amount_in_company_currency"`
}

type HistoryEntryResponse struct {
	Timestamp  string `json:"timestamp"`
	Action     string `json:"action"`
	Step       string `json:"step"`
	ApproverID string `json:"approver_id"`
	Comment    string `json:"comment"`
}

type ExpenseResponse struct {
	ID                   string                 `json:"id"`
	UserID               string                 `json:"user_id"`
	CompanyID            string                 `json:"company_id"`
	Amount               string                 `json:"amount"`
	Currency             string                 `json:"currency"`
	ConvertedAmount      string                 `json:"converted_amount"`
	CompanyCurrency      string                 `json:"company_currency"`
	Category             string                 `json:"category"`
	Description          string                 `json:"description"`
	Date                 string                 `json:"date"`
	Status               string                 `json:"status"`
	ApprovalFlow         []model.ApprovalStep   `json:"approval_flow"`
	CurrentApproverIndex int                    `json:"current_approver_index"`
	History              []HistoryEntryResponse `json:"history"`
	CreatedAt            string                 `json:"created_at"`
}

// --- Interface ---

type ExpenseService interface {
	Submit(ctx context.Context, userID uuid.UUID, req CreateExpenseRequest) (SubmitExpenseResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID, page, limit int) ([]ExpenseResponse, int64, error)
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	converter   *currency.Converter
	notifier    Notifier
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	converter *currency.Converter,
	notifier Notifier,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		converter:   converter,
		notifier:    notifier,
	}
}

// --- Implementation ---

// Submit creates a new expense claim. The conversion into the company
// currency and the snapshot of the approval flow both happen here,
// once; later edits to the company template leave the claim untouched.
func (s *expenseService) Submit(ctx context.Context, userID uuid.UUID, req CreateExpenseRequest) (SubmitExpenseResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return SubmitExpenseResponse{}, fmt.Errorf("%w: invalid amount format", ErrValidation)
	}

	owner, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return SubmitExpenseResponse{}, notFoundOr(err, "user %s", userID)
	}

	company, err := s.companyRepo.GetByID(ctx, owner.CompanyID)
	if err != nil {
		return SubmitExpenseResponse{}, fmt.Errorf("failed to load company: %w", err)
	}

	converted, err := s.converter.Convert(amount, req.Currency, company.DefaultCurrency)
	if err != nil {
		// Strict conversion policy: an unknown currency pair fails the request
		return SubmitExpenseResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	flow := company.ApprovalTemplate.Clone()
	if len(flow) == 0 {
		return SubmitExpenseResponse{}, fmt.Errorf("company %s has no approval flow configured", company.ID)
	}

	expense := model.Expense{
		UserID:               owner.ID,
		CompanyID:            company.ID,
		Amount:               amount,
		Currency:             req.Currency,
		ConvertedAmount:      converted,
		CompanyCurrency:      company.DefaultCurrency,
		Category:             req.Category,
		Description:          req.Description,
		Date:                 req.Date,
		Status:               model.PendingStatus(flow[0]),
		Flow:                 flow,
		CurrentApproverIndex: 0,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.expenseRepo.Create(txCtx, &expense); createErr != nil {
			return fmt.Errorf("failed to create expense: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"amount":   amount.String(),
			"currency": req.Currency,
			"category": req.Category,
		})
		audit := model.AuditLog{
			UserID:     &owner.ID,
			Action:     model.ActionSubmitExpense,
			EntityID:   expense.ID.String(),
			EntityName: req.Category,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, &audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return SubmitExpenseResponse{}, err
	}

	if s.notifier != nil {
		s.notifier.Publish(EventExpenseSubmitted, map[string]string{
			"expense_id": expense.ID.String(),
			"status":     expense.Status,
		})
	}

	return SubmitExpenseResponse{
		Message:                 "Expense submitted successfully.",
		ExpenseID:               expense.ID.String(),
		PendingStep:             flow[0].StepName,
		AmountInCompanyCurrency: converted.StringFixed(2) + " " + company.DefaultCurrency,
	}, nil
}

func (s *expenseService) ListMine(ctx context.Context, userID uuid.UUID, page, limit int) ([]ExpenseResponse, int64, error) {
	expenses, total, err := s.expenseRepo.ListByOwner(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}

	result := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		result = append(result, toExpenseResponse(&expenses[i]))
	}
	return result, total, nil
}

// --- Helpers ---

func toExpenseResponse(e *model.Expense) ExpenseResponse {
	history := make([]HistoryEntryResponse, 0, len(e.History))
	for _, h := range e.History {
		history = append(history, HistoryEntryResponse{
			Timestamp:  h.CreatedAt.Format(time.RFC3339),
			Action:     h.Action,
			Step:       h.Step,
			ApproverID: h.ApproverID.String(),
			Comment:    h.Comment,
		})
	}

	return ExpenseResponse{
		ID:                   e.ID.String(),
		UserID:               e.UserID.String(),
		CompanyID:            e.CompanyID.String(),
		Amount:               e.Amount.String(),
		Currency:             e.Currency,
		ConvertedAmount:      e.ConvertedAmount.String(),
		CompanyCurrency:      e.CompanyCurrency,
		Category:             e.Category,
		Description:          e.Description,
		Date:                 e.Date,
		Status:               e.Status,
		ApprovalFlow:         e.Flow,
		CurrentApproverIndex: e.CurrentApproverIndex,
		History:              history,
		CreatedAt:            e.CreatedAt.Format(time.RFC3339),
	}
}

// notFoundOr maps gorm's record-not-found onto the service sentinel so
// handlers can answer 404 instead of 500.
func notFoundOr(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
