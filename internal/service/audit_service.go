package service

import (
	"context"
	"fmt"
	"time"

	"reimburse/internal/model"
	"reimburse/internal/repository"
)

type AuditEntryResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id,omitempty"`
	UserName   string `json:"user_name,omitempty"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name,omitempty"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	ListAuditLogs(ctx context.Context, page, limit int) ([]AuditEntryResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) ListAuditLogs(ctx context.Context, page, limit int) ([]AuditEntryResponse, int64, error) {
	logs, total, err := s.auditRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	result := make([]AuditEntryResponse, 0, len(logs))
	for _, entry := range logs {
		result = append(result, toAuditResponse(entry))
	}
	return result, total, nil
}

func toAuditResponse(entry model.AuditLog) AuditEntryResponse {
	resp := AuditEntryResponse{
		ID:         entry.ID.String(),
		Action:     entry.Action,
		EntityID:   entry.EntityID,
		EntityName: entry.EntityName,
		Details:    entry.Details,
		CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.UserID != nil {
		resp.UserID = entry.UserID.String()
	}
	if entry.User != nil {
		resp.UserName = entry.User.Name
	}
	return resp
}
