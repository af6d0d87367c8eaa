package exchangestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tensor-horizon/evidence-exchange/pkg/exchange"
	"github.com/tensor-horizon/evidence-exchange/pkg/pgutil"
	"github.com/tensor-horizon/evidence-exchange/pkg/pgutil/migrations"
)

func newRecord() *exchange.Record {
	return &exchange.Record{
		ID:         uuid.NewString(),
		ProfileID:  "suspect-42",
		ConsumerID: "nl",
		ProviderID: "fr",
		BundleFile: "b.zip.enc",
		Status:     exchange.StatusCreated,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestPgStore(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := migrations.CreateSchema(ctx, db, (*ExchangeDao)(nil)); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	pgutil.AssertTableExists(t, db, "exchanges")

	store := NewStore(db)

	t.Run("insert and get", func(t *testing.T) {
		rec := newRecord()
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}

		got, err := store.Get(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got.ProfileID != "suspect-42" || got.Status != exchange.StatusCreated {
			t.Fatalf("unexpected record: %+v", got)
		}
		if got.BundleFile != "b.zip.enc" {
			t.Fatalf("bundle file lost: %+v", got)
		}
	})

	t.Run("update status and request id", func(t *testing.T) {
		rec := newRecord()
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}

		rec.RequestID = 7
		rec.Status = exchange.StatusAwaitingResponse
		rec.Note = "granted"
		rec.UpdatedAt = time.Now().UTC()
		if err := store.Update(ctx, rec); err != nil {
			t.Fatalf("Update() failed: %v", err)
		}

		got, err := store.FindByRequestID(ctx, 7)
		if err != nil {
			t.Fatalf("FindByRequestID() failed: %v", err)
		}
		if got.ID != rec.ID || got.Status != exchange.StatusAwaitingResponse || got.Note != "granted" {
			t.Fatalf("unexpected record: %+v", got)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		if _, err := store.Get(ctx, uuid.NewString()); !errors.Is(err, ErrExchangeNotFound) {
			t.Fatalf("expected ErrExchangeNotFound, got %v", err)
		}
		if _, err := store.FindByRequestID(ctx, 999999); !errors.Is(err, ErrExchangeNotFound) {
			t.Fatalf("expected ErrExchangeNotFound, got %v", err)
		}
	})

	t.Run("list by profile", func(t *testing.T) {
		if err := migrations.TruncateTables(ctx, db, (*ExchangeDao)(nil)); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		first := newRecord()
		second := newRecord()
		second.CreatedAt = first.CreatedAt.Add(time.Second)
		for _, rec := range []*exchange.Record{first, second} {
			if err := store.Insert(ctx, rec); err != nil {
				t.Fatalf("Insert() failed: %v", err)
			}
		}

		got, err := store.ListByProfile(ctx, "suspect-42")
		if err != nil {
			t.Fatalf("ListByProfile() failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
		if got[0].ID != second.ID {
			t.Fatal("expected newest record first")
		}
	})
}
