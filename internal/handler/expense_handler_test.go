package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reimburse/internal/middleware"
	"reimburse/internal/model"
	"reimburse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExpenseService struct {
	submitResp service.SubmitExpenseResponse
	submitErr  error
}

func (s *stubExpenseService) Submit(_ context.Context, _ uuid.UUID, _ service.CreateExpenseRequest) (service.SubmitExpenseResponse, error) {
	return s.submitResp, s.submitErr
}

func (s *stubExpenseService) ListMine(_ context.Context, _ uuid.UUID, _, _ int) ([]service.ExpenseResponse, int64, error) {
	return nil, 0, nil
}

type stubApprovalService struct {
	resp service.DecisionResponse
	err  error
}

func (s *stubApprovalService) Approve(_ context.Context, _, _ uuid.UUID, _ string) (service.DecisionResponse, error) {
	return s.resp, s.err
}

func (s *stubApprovalService) Reject(_ context.Context, _, _ uuid.UUID, _ string) (service.DecisionResponse, error) {
	return s.resp, s.err
}

func (s *stubApprovalService) ListPending(_ context.Context, _ uuid.UUID) ([]service.ExpenseResponse, error) {
	return nil, s.err
}

func newTestRouter(expenseSvc service.ExpenseService, approvalSvc service.ApprovalService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewExpenseHandler(expenseSvc, approvalSvc).RegisterRoutes(router.Group(""))
	return router
}

func bearerToken(t *testing.T, role model.Role) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": role.String(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return "Bearer " + signed
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitExpenseEndpoint(t *testing.T) {
	stub := &stubExpenseService{
		submitResp: service.SubmitExpenseResponse{
			Message:                 "Expense submitted successfully.",
			ExpenseID:               uuid.NewString(),
			PendingStep:             "Manager Approval",
			AmountInCompanyCurrency: "108.00 USD",
		},
	}
	router := newTestRouter(stub, &stubApprovalService{})

	body := `{"amount":"100","currency":"EUR","category":"Travel","description":"Trip","date":"2024-01-01"}`

	t.Run("requires a token", func(t *testing.T) {
		rec := doRequest(router, http.MethodPost, "/api/expenses", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("only employees may submit", func(t *testing.T) {
		rec := doRequest(router, http.MethodPost, "/api/expenses", bearerToken(t, model.RoleManager), body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		rec := doRequest(router, http.MethodPost, "/api/expenses", bearerToken(t, model.RoleEmployee), `{"amount":"100"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("accepts a complete claim", func(t *testing.T) {
		rec := doRequest(router, http.MethodPost, "/api/expenses", bearerToken(t, model.RoleEmployee), body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var envelope struct {
			Status string                        `json:"status"`
			Data   service.SubmitExpenseResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "success", envelope.Status)
		assert.Equal(t, "Manager Approval", envelope.Data.PendingStep)
		assert.Equal(t, "108.00 USD", envelope.Data.AmountInCompanyCurrency)
	})
}

func TestDecisionEndpoints(t *testing.T) {
	expenseID := uuid.NewString()

	t.Run("malformed id maps to 404", func(t *testing.T) {
		router := newTestRouter(&stubExpenseService{}, &stubApprovalService{})
		rec := doRequest(router, http.MethodPost, "/api/expenses/not-a-uuid/approve", bearerToken(t, model.RoleManager), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown expense maps to 404", func(t *testing.T) {
		router := newTestRouter(&stubExpenseService{}, &stubApprovalService{err: service.ErrNotFound})
		rec := doRequest(router, http.MethodPost, "/api/expenses/"+expenseID+"/approve", bearerToken(t, model.RoleFinance), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("engine denial maps to 403 with the reason", func(t *testing.T) {
		router := newTestRouter(&stubExpenseService{}, &stubApprovalService{err: service.Denied(service.ReasonNotYourReport)})
		rec := doRequest(router, http.MethodPost, "/api/expenses/"+expenseID+"/approve", bearerToken(t, model.RoleManager), "")
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), service.ReasonNotYourReport)
	})

	t.Run("employee role cannot reach decision routes", func(t *testing.T) {
		router := newTestRouter(&stubExpenseService{}, &stubApprovalService{})
		rec := doRequest(router, http.MethodPost, "/api/expenses/"+expenseID+"/reject", bearerToken(t, model.RoleEmployee), "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("successful decision returns the new status", func(t *testing.T) {
		router := newTestRouter(&stubExpenseService{}, &stubApprovalService{
			resp: service.DecisionResponse{Message: "moved on", NewStatus: "Pending (Finance Review)"},
		})
		rec := doRequest(router, http.MethodPost, "/api/expenses/"+expenseID+"/approve", bearerToken(t, model.RoleManager), `{"comment":"ok"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Pending (Finance Review)")
	})
}
