package service

import (
	"testing"

	"reimburse/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlow() model.ApprovalFlow {
	return model.DefaultApprovalFlow()
}

func testUser(role model.Role, managerID *uuid.UUID) *model.User {
	return &model.User{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Role:      role,
		ManagerID: managerID,
	}
}

func pendingExpense(owner *model.User, index int) *model.Expense {
	flow := testFlow()
	return &model.Expense{
		ID:                   uuid.New(),
		UserID:               owner.ID,
		CompanyID:            owner.CompanyID,
		Status:               model.PendingStatus(flow[index]),
		Flow:                 flow,
		CurrentApproverIndex: index,
	}
}

func TestCanDecide(t *testing.T) {
	manager := testUser(model.RoleManager, nil)
	employee := testUser(model.RoleEmployee, &manager.ID)

	tests := []struct {
		name       string
		actor      *model.User
		expense    func() *model.Expense
		wantAllow  bool
		wantReason string
	}{
		{
			name:      "assigned manager at step zero",
			actor:     manager,
			expense:   func() *model.Expense { return pendingExpense(employee, 0) },
			wantAllow: true,
		},
		{
			name:       "different manager at step zero",
			actor:      testUser(model.RoleManager, nil),
			expense:    func() *model.Expense { return pendingExpense(employee, 0) },
			wantAllow:  false,
			wantReason: ReasonNotYourReport,
		},
		{
			name:       "finance at manager step",
			actor:      testUser(model.RoleFinance, nil),
			expense:    func() *model.Expense { return pendingExpense(employee, 0) },
			wantAllow:  false,
			wantReason: ReasonWrongRole,
		},
		{
			name:      "finance at finance step",
			actor:     testUser(model.RoleFinance, nil),
			expense:   func() *model.Expense { return pendingExpense(employee, 1) },
			wantAllow: true,
		},
		{
			name:       "assigned manager past their step",
			actor:      manager,
			expense:    func() *model.Expense { return pendingExpense(employee, 1) },
			wantAllow:  false,
			wantReason: ReasonWrongRole,
		},
		{
			name:      "admin overrides at any step",
			actor:     testUser(model.RoleAdmin, nil),
			expense:   func() *model.Expense { return pendingExpense(employee, 0) },
			wantAllow: true,
		},
		{
			name:  "admin denied on approved expense",
			actor: testUser(model.RoleAdmin, nil),
			expense: func() *model.Expense {
				e := pendingExpense(employee, 2)
				e.Status = model.StatusApproved
				return e
			},
			wantAllow:  false,
			wantReason: ReasonFinalized,
		},
		{
			name:  "manager denied on rejected expense",
			actor: manager,
			expense: func() *model.Expense {
				e := pendingExpense(employee, 0)
				e.Status = model.StatusRejected
				return e
			},
			wantAllow:  false,
			wantReason: ReasonFinalized,
		},
		{
			name:  "index past flow end denies defensively",
			actor: testUser(model.RoleFinance, nil),
			expense: func() *model.Expense {
				e := pendingExpense(employee, 0)
				e.CurrentApproverIndex = len(e.Flow)
				return e
			},
			wantAllow:  false,
			wantReason: ReasonWrongRole,
		},
		{
			name:  "owner without manager reference denies manager step",
			actor: manager,
			expense: func() *model.Expense {
				orphan := testUser(model.RoleEmployee, nil)
				return pendingExpense(orphan, 0)
			},
			wantAllow:  false,
			wantReason: ReasonNotYourReport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense := tt.expense()
			owner := employee
			if expense.UserID != employee.ID {
				owner = &model.User{ID: expense.UserID, CompanyID: expense.CompanyID, Role: model.RoleEmployee}
			}
			allow, reason := CanDecide(tt.actor, owner, expense)
			assert.Equal(t, tt.wantAllow, allow)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestAdvanceWalksTheFlow(t *testing.T) {
	manager := testUser(model.RoleManager, nil)
	employee := testUser(model.RoleEmployee, &manager.ID)
	expense := pendingExpense(employee, 0)

	msg := Advance(expense)
	assert.Equal(t, 1, expense.CurrentApproverIndex)
	assert.Equal(t, "Pending (Finance Review)", expense.Status)
	assert.Equal(t, "Moved to next step: Finance Review", msg)

	msg = Advance(expense)
	assert.Equal(t, 2, expense.CurrentApproverIndex)
	assert.Equal(t, "Pending (Director Sign-off)", expense.Status)
	assert.Equal(t, "Moved to next step: Director Sign-off", msg)

	msg = Advance(expense)
	assert.Equal(t, model.StatusApproved, expense.Status)
	assert.Equal(t, MessageFullyApproved, msg)
	// Index freezes at its last value on the terminal transition
	assert.Equal(t, 2, expense.CurrentApproverIndex)
}

func TestHaltFreezesIndex(t *testing.T) {
	manager := testUser(model.RoleManager, nil)
	employee := testUser(model.RoleEmployee, &manager.ID)
	expense := pendingExpense(employee, 1)

	Halt(expense)
	assert.Equal(t, model.StatusRejected, expense.Status)
	assert.Equal(t, 1, expense.CurrentApproverIndex)
	assert.True(t, expense.Finalized())
}

func TestRecordDecision(t *testing.T) {
	manager := testUser(model.RoleManager, nil)
	employee := testUser(model.RoleEmployee, &manager.ID)

	t.Run("labels the step before any advance", func(t *testing.T) {
		expense := pendingExpense(employee, 1)
		entry := RecordDecision(expense, model.ActionApproved, manager.ID, "looks fine")
		require.NotNil(t, entry)
		assert.Equal(t, "Finance Review", entry.Step)
		assert.Equal(t, model.ActionApproved, entry.Action)
		assert.Equal(t, manager.ID, entry.ApproverID)
		assert.Equal(t, "looks fine", entry.Comment)
	})

	t.Run("default comments per action", func(t *testing.T) {
		expense := pendingExpense(employee, 0)
		approved := RecordDecision(expense, model.ActionApproved, manager.ID, "")
		assert.Equal(t, DefaultApproveNote, approved.Comment)

		rejected := RecordDecision(expense, model.ActionRejected, manager.ID, "")
		assert.Equal(t, DefaultRejectNote, rejected.Comment)
	})
}

func TestFlowSnapshotIsIndependent(t *testing.T) {
	template := model.DefaultApprovalFlow()
	snapshot := template.Clone()

	template[0].StepName = "Renamed Step"
	assert.Equal(t, "Manager Approval", snapshot[0].StepName)
}
