// Package exchangestore persists exchange records in postgres through
// bun. It backs the orchestrator's best-effort state tracking; losing a
// write degrades observability, never correctness.
package exchangestore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/tensor-horizon/evidence-exchange/pkg/exchange"
)

// ExchangeDao maps to the 'exchanges' table.
type ExchangeDao struct {
	bun.BaseModel `bun:"table:exchanges,alias:e"`
	ID            string     `bun:"id,pk,type:uuid"`
	RequestID     *int64     `bun:"request_id"`
	ProfileID     string     `bun:"profile_id,notnull,type:varchar(255)"`
	ConsumerID    string     `bun:"consumer_id,notnull,type:varchar(64)"`
	ProviderID    string     `bun:"provider_id,notnull,type:varchar(64)"`
	BundleFile    *string    `bun:"bundle_file,type:varchar(255)"`
	Status        string     `bun:"status,notnull,type:varchar(32)"`
	Note          *string    `bun:"note,type:text"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     *time.Time `bun:"updated_at"`
}

func toDao(rec *exchange.Record) *ExchangeDao {
	dao := &ExchangeDao{
		ID:         rec.ID,
		ProfileID:  rec.ProfileID,
		ConsumerID: rec.ConsumerID,
		ProviderID: rec.ProviderID,
		Status:     string(rec.Status),
		CreatedAt:  rec.CreatedAt,
	}
	if rec.RequestID != 0 {
		dao.RequestID = &rec.RequestID
	}
	if rec.BundleFile != "" {
		dao.BundleFile = &rec.BundleFile
	}
	if rec.Note != "" {
		dao.Note = &rec.Note
	}
	if !rec.UpdatedAt.IsZero() {
		dao.UpdatedAt = &rec.UpdatedAt
	}
	return dao
}

func toRecord(dao *ExchangeDao) *exchange.Record {
	rec := &exchange.Record{
		ID:         dao.ID,
		ProfileID:  dao.ProfileID,
		ConsumerID: dao.ConsumerID,
		ProviderID: dao.ProviderID,
		Status:     exchange.Status(dao.Status),
		CreatedAt:  dao.CreatedAt,
	}
	if dao.RequestID != nil {
		rec.RequestID = *dao.RequestID
	}
	if dao.BundleFile != nil {
		rec.BundleFile = *dao.BundleFile
	}
	if dao.Note != nil {
		rec.Note = *dao.Note
	}
	if dao.UpdatedAt != nil {
		rec.UpdatedAt = *dao.UpdatedAt
	}
	return rec
}
