package service

import (
	"context"
	"time"

	"reimburse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the behavior the GORM
// implementations rely on (record-not-found sentinel, history
// preloaded in append order, owner preloaded on pending listings).

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, companyID uuid.UUID, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	for _, user := range r.users {
		if user.CompanyID == companyID {
			users = append(users, *user)
		}
	}
	return users, int64(len(users)), nil
}

type fakeCompanyRepo struct {
	companies map[uuid.UUID]*model.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[uuid.UUID]*model.Company)}
}

func (r *fakeCompanyRepo) Create(_ context.Context, company *model.Company) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	r.companies[company.ID] = company
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	company, ok := r.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return company, nil
}

type fakeExpenseRepo struct {
	expenses map[uuid.UUID]*model.Expense
	history  []model.ExpenseHistory
	users    *fakeUserRepo
}

func newFakeExpenseRepo(users *fakeUserRepo) *fakeExpenseRepo {
	return &fakeExpenseRepo{
		expenses: make(map[uuid.UUID]*model.Expense),
		users:    users,
	}
}

func (r *fakeExpenseRepo) Create(_ context.Context, expense *model.Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	expense.CreatedAt = time.Now()
	r.expenses[expense.ID] = expense
	return nil
}

func (r *fakeExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	expense, ok := r.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	expense.History = r.historyFor(id)
	return expense, nil
}

func (r *fakeExpenseRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	expense, ok := r.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return expense, nil
}

func (r *fakeExpenseRepo) Update(_ context.Context, expense *model.Expense) error {
	r.expenses[expense.ID] = expense
	return nil
}

func (r *fakeExpenseRepo) AppendHistory(_ context.Context, entry *model.ExpenseHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.history = append(r.history, *entry)
	return nil
}

func (r *fakeExpenseRepo) ListByOwner(_ context.Context, userID uuid.UUID, page, limit int) ([]model.Expense, int64, error) {
	var out []model.Expense
	for _, expense := range r.expenses {
		if expense.UserID == userID {
			e := *expense
			e.History = r.historyFor(e.ID)
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeExpenseRepo) ListPendingByCompany(_ context.Context, companyID uuid.UUID) ([]model.Expense, error) {
	var out []model.Expense
	for _, expense := range r.expenses {
		if expense.CompanyID != companyID || expense.Finalized() {
			continue
		}
		e := *expense
		if owner, ok := r.users.users[e.UserID]; ok {
			e.User = owner
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeExpenseRepo) historyFor(expenseID uuid.UUID) []model.ExpenseHistory {
	var out []model.ExpenseHistory
	for _, entry := range r.history {
		if entry.ExpenseID == expenseID {
			out = append(out, entry)
		}
	}
	return out
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	events []string
}

func (n *fakeNotifier) Publish(event string, _ interface{}) {
	n.events = append(n.events, event)
}
