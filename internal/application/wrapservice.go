package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
)

// WrapGenerator produces a fresh aggregated wrap for (userID, period).
// Satisfied by *Aggregator.
type WrapGenerator interface {
	Generate(ctx context.Context, userID string, period int) (model.AggregatedWrap, error)
}

// WrapService decides between returning a stored wrap and triggering a
// fresh aggregation, and owns persistence of the result. It never retries
// store failures; they surface as *driven.PersistenceError.
type WrapService struct {
	generator WrapGenerator
	store     driven.WrapStore
	logger    *slog.Logger
}

// NewWrapService creates a WrapService.
func NewWrapService(generator WrapGenerator, store driven.WrapStore, logger *slog.Logger) *WrapService {
	return &WrapService{
		generator: generator,
		store:     store,
		logger:    logger,
	}
}

// GetOrCreate returns the stored wrap for (userID, period) unchanged when
// one exists; otherwise it generates one, upserts it, and returns it. The
// read-through path has no side effects and triggers no provider calls.
func (s *WrapService) GetOrCreate(ctx context.Context, userID string, period int) (model.AggregatedWrap, error) {
	existing, err := s.store.Get(ctx, userID, period)
	if err != nil {
		return model.AggregatedWrap{}, err
	}
	if existing != nil {
		s.logger.Info("returning cached wrap", "user_id", userID, "period", period)
		return *existing, nil
	}

	return s.regenerate(ctx, userID, period)
}

// ForceRefresh always generates a fresh wrap and wholesale-replaces any
// stored record for the key. Concurrent refreshes for the same key are
// last-writer-wins at the storage layer; that race is accepted, not locked
// around.
func (s *WrapService) ForceRefresh(ctx context.Context, userID string, period int) (model.AggregatedWrap, error) {
	s.logger.Info("forced wrap refresh", "user_id", userID, "period", period)
	return s.regenerate(ctx, userID, period)
}

func (s *WrapService) regenerate(ctx context.Context, userID string, period int) (model.AggregatedWrap, error) {
	wrap, err := s.generator.Generate(ctx, userID, period)
	if err != nil {
		return model.AggregatedWrap{}, err
	}

	if err := s.store.Upsert(ctx, wrap); err != nil {
		return model.AggregatedWrap{}, err
	}

	return wrap, nil
}
