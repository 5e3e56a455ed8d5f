package repository

import (
	"context"

	"reimburse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	// FindByIDForUpdate takes a row lock so two concurrent decisions on
	// the same expense cannot both pass the authorization check.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	Update(ctx context.Context, expense *model.Expense) error
	AppendHistory(ctx context.Context, entry *model.ExpenseHistory) error
	ListByOwner(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Expense, int64, error)
	ListPendingByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Expense, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Save(expense).Error
}

func (r *expenseRepository) AppendHistory(ctx context.Context, entry *model.ExpenseHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *expenseRepository) ListByOwner(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Expense{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("user_id = ?", userID).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&expenses).Error; err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

func (r *expenseRepository) ListPendingByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Expense, error) {
	var expenses []model.Expense
	if err := GetDB(ctx, r.db).
		Where("company_id = ? AND status NOT IN ?", companyID, []string{model.StatusApproved, model.StatusRejected}).
		Preload("User").
		Order("created_at asc").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}
