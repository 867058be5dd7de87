package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tailingsiq/tailingsiq-engine/pkg/ai"
	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
	"github.com/tailingsiq/tailingsiq-engine/pkg/repositories"
)

// QueryService answers natural-language queries via the injected responder
// and records every answered query in the caller's history.
type QueryService interface {
	Process(ctx context.Context, userID uuid.UUID, query string) (*ai.QueryResponse, error)
	History(ctx context.Context, userID uuid.UUID) ([]*models.QueryHistoryEntry, error)
}

type queryService struct {
	responder ai.Responder
	history   repositories.QueryHistoryRepository
	logger    *zap.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(responder ai.Responder, history repositories.QueryHistoryRepository, logger *zap.Logger) QueryService {
	return &queryService{
		responder: responder,
		history:   history,
		logger:    logger,
	}
}

// Process answers the query and appends it to the caller's history with the
// serialized response.
func (s *queryService) Process(ctx context.Context, userID uuid.UUID, query string) (*ai.QueryResponse, error) {
	response, err := s.responder.Answer(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("responder failed: %w", err)
	}

	serialized, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize response: %w", err)
	}

	entry := &models.QueryHistoryEntry{
		UserID:   userID,
		Query:    query,
		Response: string(serialized),
	}
	if err := s.history.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record query history: %w", err)
	}

	return response, nil
}

// History retrieves the caller's query history, newest first.
func (s *queryService) History(ctx context.Context, userID uuid.UUID) ([]*models.QueryHistoryEntry, error) {
	return s.history.GetByUser(ctx, userID)
}

// Ensure queryService implements QueryService at compile time.
var _ QueryService = (*queryService)(nil)
