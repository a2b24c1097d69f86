package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

type LifecycleStore struct {
	db *bun.DB
}

func NewLifecycleStore(db *bun.DB) (*LifecycleStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &LifecycleStore{db: db}, nil
}

func (s *LifecycleStore) Load(ctx context.Context) (core.Lifecycle, error) {
	if s == nil || s.db == nil {
		return core.Lifecycle{}, fmt.Errorf("sqlstore: lifecycle store is not configured")
	}
	record := &lifecycleRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.slot = ?", singletonSlot).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Lifecycle{}, fmt.Errorf("%w: lifecycle", core.ErrNotFound)
		}
		return core.Lifecycle{}, err
	}
	return record.toDomain()
}

func (s *LifecycleStore) Save(ctx context.Context, lifecycle core.Lifecycle) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: lifecycle store is not configured")
	}
	return upsertSingleton(ctx, s.db, newLifecycleRecord(lifecycle))
}

// upsertSingleton writes the single row of a slot-pinned table, inserting
// on first save and replacing thereafter.
func upsertSingleton(ctx context.Context, db *bun.DB, record any) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model(record).WherePK().Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			_, err = tx.NewUpdate().Model(record).WherePK().Exec(ctx)
			return err
		}
		_, err = tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
}

var _ core.LifecycleStore = (*LifecycleStore)(nil)
