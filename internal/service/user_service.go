package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reimburse/internal/model"
	"reimburse/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateUserRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role" binding:"required"`
	ManagerID string `json:"manager_id"`
}

// UserResponse returns a User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        string  `json:"id"`
	CompanyID string  `json:"company_id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	ManagerID *string `json:"manager_id"`
	CreatedAt string  `json:"created_at"`
}

type AuthStatusResponse struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	CompanyCurrency string `json:"company_currency"`
}

// --- Interface ---

type UserService interface {
	CreateUser(ctx context.Context, adminID uuid.UUID, req CreateUserRequest) (*UserResponse, error)
	ListUsers(ctx context.Context, adminID uuid.UUID, page, limit int) ([]UserResponse, int64, error)
	AuthStatus(ctx context.Context, userID uuid.UUID) (*AuthStatusResponse, error)
}

type userService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewUserService(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) UserService {
	return &userService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

// CreateUser provisions an Employee/Manager/Finance account inside the
// admin's company. A manager reference must point at an existing user
// of the same company.
func (s *userService) CreateUser(ctx context.Context, adminID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	role := model.Role(req.Role)
	if !role.Assignable() {
		return nil, fmt.Errorf("%w: invalid role specified", ErrValidation)
	}

	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, notFoundOr(err, "user %s", adminID)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", ErrValidation)
	}

	var managerID *uuid.UUID
	if req.ManagerID != "" {
		parsed, parseErr := uuid.Parse(req.ManagerID)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: invalid manager_id", ErrValidation)
		}
		manager, mgrErr := s.userRepo.GetByID(ctx, parsed)
		if mgrErr != nil {
			return nil, fmt.Errorf("%w: manager not found", ErrValidation)
		}
		if manager.CompanyID != admin.CompanyID {
			return nil, fmt.Errorf("%w: manager must belong to the same company", ErrValidation)
		}
		managerID = &manager.ID
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		CompanyID: admin.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      role,
		ManagerID: managerID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.userRepo.Create(txCtx, &user); createErr != nil {
			return fmt.Errorf("failed to create user: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"role":       req.Role,
			"manager_id": req.ManagerID,
		})
		audit := model.AuditLog{
			UserID:     &admin.ID,
			Action:     model.ActionCreateUser,
			EntityID:   user.ID.String(),
			EntityName: user.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, &audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return mapUserToResponse(&user), nil
}

func (s *userService) ListUsers(ctx context.Context, adminID uuid.UUID, page, limit int) ([]UserResponse, int64, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, 0, notFoundOr(err, "user %s", adminID)
	}

	users, total, err := s.userRepo.List(ctx, admin.CompanyID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) AuthStatus(ctx context.Context, userID uuid.UUID) (*AuthStatusResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user %s", userID)
	}

	company, err := s.companyRepo.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	return &AuthStatusResponse{
		UserID:          user.ID.String(),
		Name:            user.Name,
		Role:            user.Role.String(),
		CompanyCurrency: company.DefaultCurrency,
	}, nil
}

// --- Helpers ---

func mapUserToResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID.String(),
		CompanyID: user.CompanyID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.ManagerID != nil {
		s := user.ManagerID.String()
		resp.ManagerID = &s
	}
	return resp
}
