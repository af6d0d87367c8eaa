package exchangestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tensor-horizon/evidence-exchange/pkg/exchange"
)

// ErrExchangeNotFound is returned when no record matches the lookup.
var ErrExchangeNotFound = errors.New("exchange not found")

type pgStore struct {
	db *bun.DB
}

// NewStore creates a postgres implementation of the exchange store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) Insert(ctx context.Context, rec *exchange.Record) error {
	_, err := s.db.NewInsert().
		Model(toDao(rec)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

func (s *pgStore) Update(ctx context.Context, rec *exchange.Record) error {
	_, err := s.db.NewUpdate().
		Model(toDao(rec)).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update exchange: %w", err)
	}
	return nil
}

func (s *pgStore) Get(ctx context.Context, id string) (*exchange.Record, error) {
	dao := new(ExchangeDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExchangeNotFound
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	return toRecord(dao), nil
}

func (s *pgStore) FindByRequestID(ctx context.Context, requestID int64) (*exchange.Record, error) {
	dao := new(ExchangeDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExchangeNotFound
		}
		return nil, fmt.Errorf("failed to find exchange by request id: %w", err)
	}
	return toRecord(dao), nil
}

// ListByProfile returns exchanges for a profile, newest first.
func (s *pgStore) ListByProfile(ctx context.Context, profileID string) ([]*exchange.Record, error) {
	var daos []ExchangeDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	records := make([]*exchange.Record, len(daos))
	for i := range daos {
		records[i] = toRecord(&daos[i])
	}
	return records, nil
}
