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

type RepoStore struct {
	db   *bun.DB
	repo repository.Repository[*repoRecord]
}

func NewRepoStore(db *bun.DB) (*RepoStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*repoRecord](db, repoHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid repo repository wiring: %w", err)
		}
	}
	return &RepoStore{db: db, repo: repo}, nil
}

func (s *RepoStore) Get(ctx context.Context, key string) (core.Repo, error) {
	if s == nil || s.db == nil {
		return core.Repo{}, fmt.Errorf("sqlstore: repo store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return core.Repo{}, fmt.Errorf("sqlstore: repo key is required")
	}
	record, err := findRepoByKey(ctx, s.db, key)
	if err != nil {
		return core.Repo{}, err
	}
	if record == nil {
		return core.Repo{}, fmt.Errorf("%w: repo %s", core.ErrNotFound, key)
	}
	return record.toDomain(), nil
}

func (s *RepoStore) Save(ctx context.Context, repo core.Repo) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: repo store is not configured")
	}
	repo.Key = strings.TrimSpace(repo.Key)
	if repo.Key == "" {
		return fmt.Errorf("sqlstore: repo key is required")
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := findRepoByKey(ctx, tx, repo.Key)
		if err != nil {
			return err
		}
		record := newRepoRecord(repo)
		if existing == nil {
			record.ID = uuid.NewString()
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				if !isUniqueViolation(insertErr) {
					return insertErr
				}
				existing, err = findRepoByKey(ctx, tx, repo.Key)
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

func (s *RepoStore) List(ctx context.Context, owner string) ([]core.Repo, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: repo store is not configured")
	}
	criteria := []repository.SelectCriteria{
		repository.OrderBy("key ASC"),
	}
	if owner = strings.TrimSpace(owner); owner != "" {
		criteria = append(criteria, repository.SelectBy("owner", "=", owner))
	}
	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	out := make([]core.Repo, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func findRepoByKey(ctx context.Context, db bun.IDB, key string) (*repoRecord, error) {
	record := &repoRecord{}
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

var _ core.RepoStore = (*RepoStore)(nil)
