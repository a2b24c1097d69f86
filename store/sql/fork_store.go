package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

type ForkStore struct {
	db   *bun.DB
	repo repository.Repository[*forkRecord]
}

func NewForkStore(db *bun.DB) (*ForkStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*forkRecord](db, forkHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid fork repository wiring: %w", err)
		}
	}
	return &ForkStore{db: db, repo: repo}, nil
}

func (s *ForkStore) Get(ctx context.Context, key string) (core.Fork, error) {
	if s == nil || s.db == nil {
		return core.Fork{}, fmt.Errorf("sqlstore: fork store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return core.Fork{}, fmt.Errorf("sqlstore: fork key is required")
	}
	record, err := findForkByKey(ctx, s.db, key)
	if err != nil {
		return core.Fork{}, err
	}
	if record == nil {
		return core.Fork{}, fmt.Errorf("%w: fork %s", core.ErrNotFound, key)
	}
	return record.toDomain(), nil
}

func (s *ForkStore) Save(ctx context.Context, fork core.Fork) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: fork store is not configured")
	}
	fork.Key = strings.TrimSpace(fork.Key)
	if fork.Key == "" {
		return fmt.Errorf("sqlstore: fork key is required")
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := findForkByKey(ctx, tx, fork.Key)
		if err != nil {
			return err
		}
		record := newForkRecord(fork)
		if existing == nil {
			record.ID = uuid.NewString()
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				if !isUniqueViolation(insertErr) {
					return insertErr
				}
				existing, err = findForkByKey(ctx, tx, fork.Key)
				if err != nil {
					return err
				}
				if existing == nil {
					return insertErr
				}
			} else {
				return nil
			}
		}
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		_, err = tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx)
		return err
	})
}

func (s *ForkStore) ListByParent(ctx context.Context, parentKey string) ([]core.Fork, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: fork store is not configured")
	}
	parentKey = strings.TrimSpace(parentKey)
	if parentKey == "" {
		return nil, fmt.Errorf("sqlstore: parent key is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("parent_key", "=", parentKey),
		repository.OrderBy("key ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Fork, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func findForkByKey(ctx context.Context, db bun.IDB, key string) (*forkRecord, error) {
	record := &forkRecord{}
	err := db.NewSelect().
		Model(record).
		Where("?TableAlias.key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

var _ core.ForkStore = (*ForkStore)(nil)
