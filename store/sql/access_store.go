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

type AccessEntryStore struct {
	db   *bun.DB
	repo repository.Repository[*accessEntryRecord]
}

func NewAccessEntryStore(db *bun.DB) (*AccessEntryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*accessEntryRecord](db, accessEntryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid access entry repository wiring: %w", err)
		}
	}
	return &AccessEntryStore{db: db, repo: repo}, nil
}

func (s *AccessEntryStore) Get(ctx context.Context, identity string, scope core.Scope) (core.AccessEntry, error) {
	if s == nil || s.db == nil {
		return core.AccessEntry{}, fmt.Errorf("sqlstore: access entry store is not configured")
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return core.AccessEntry{}, fmt.Errorf("sqlstore: identity is required")
	}
	record, err := findAccessEntry(ctx, s.db, identity, scope)
	if err != nil {
		return core.AccessEntry{}, err
	}
	if record == nil {
		return core.AccessEntry{}, fmt.Errorf("%w: access entry %s %s", core.ErrNotFound, identity, scope)
	}
	return record.toDomain(), nil
}

func (s *AccessEntryStore) Save(ctx context.Context, entry core.AccessEntry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: access entry store is not configured")
	}
	entry.Identity = strings.TrimSpace(entry.Identity)
	if entry.Identity == "" {
		return fmt.Errorf("sqlstore: identity is required")
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := findAccessEntryTx(ctx, tx, entry.Identity, entry.Scope)
		if err != nil {
			return err
		}
		if existing == nil {
			record := newAccessEntryRecord(entry)
			record.ID = uuid.NewString()
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				if !isUniqueViolation(insertErr) {
					return insertErr
				}
				existing, err = findAccessEntryTx(ctx, tx, entry.Identity, entry.Scope)
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

		existing.Roles = uint64(entry.Roles)
		existing.UpdatedAt = entry.UpdatedAt
		existing.SchemaVersion = entry.SchemaVersion
		_, err = tx.NewUpdate().Model(existing).Where("id = ?", existing.ID).Exec(ctx)
		return err
	})
}

func (s *AccessEntryStore) ListByIdentity(ctx context.Context, identity string) ([]core.AccessEntry, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: access entry store is not configured")
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, fmt.Errorf("sqlstore: identity is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("identity", "=", identity),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.AccessEntry, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func findAccessEntry(ctx context.Context, db bun.IDB, identity string, scope core.Scope) (*accessEntryRecord, error) {
	record := &accessEntryRecord{}
	err := db.NewSelect().
		Model(record).
		Where("?TableAlias.identity = ?", identity).
		Where("?TableAlias.scope_global = ?", scope.IsGlobal()).
		Where("?TableAlias.scope_resource = ?", scope.ResourceID()).
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

func findAccessEntryTx(ctx context.Context, tx bun.Tx, identity string, scope core.Scope) (*accessEntryRecord, error) {
	return findAccessEntry(ctx, tx, identity, scope)
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

var _ core.AuthorityStore = (*AccessEntryStore)(nil)
