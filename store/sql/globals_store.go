package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

type GlobalConfigStore struct {
	db *bun.DB
}

func NewGlobalConfigStore(db *bun.DB) (*GlobalConfigStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &GlobalConfigStore{db: db}, nil
}

func (s *GlobalConfigStore) Load(ctx context.Context) (core.GlobalConfig, error) {
	if s == nil || s.db == nil {
		return core.GlobalConfig{}, fmt.Errorf("sqlstore: global config store is not configured")
	}
	record := &globalConfigRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.slot = ?", singletonSlot).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.GlobalConfig{}, fmt.Errorf("%w: global config", core.ErrNotFound)
		}
		return core.GlobalConfig{}, err
	}
	return record.toDomain()
}

func (s *GlobalConfigStore) Save(ctx context.Context, config core.GlobalConfig) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: global config store is not configured")
	}
	return upsertSingleton(ctx, s.db, newGlobalConfigRecord(config))
}

type GlobalMetadataStore struct {
	db *bun.DB
}

func NewGlobalMetadataStore(db *bun.DB) (*GlobalMetadataStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &GlobalMetadataStore{db: db}, nil
}

func (s *GlobalMetadataStore) Load(ctx context.Context) (core.GlobalMetadata, error) {
	if s == nil || s.db == nil {
		return core.GlobalMetadata{}, fmt.Errorf("sqlstore: global metadata store is not configured")
	}
	record := &globalMetadataRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.slot = ?", singletonSlot).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.GlobalMetadata{}, fmt.Errorf("%w: global metadata", core.ErrNotFound)
		}
		return core.GlobalMetadata{}, err
	}
	return record.toDomain(), nil
}

func (s *GlobalMetadataStore) Save(ctx context.Context, metadata core.GlobalMetadata) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: global metadata store is not configured")
	}
	return upsertSingleton(ctx, s.db, newGlobalMetadataRecord(metadata))
}

type MetricsStore struct {
	db *bun.DB
}

func NewMetricsStore(db *bun.DB) (*MetricsStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &MetricsStore{db: db}, nil
}

func (s *MetricsStore) Load(ctx context.Context) (core.Metrics, error) {
	if s == nil || s.db == nil {
		return core.Metrics{}, fmt.Errorf("sqlstore: metrics store is not configured")
	}
	record := &metricsRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.slot = ?", singletonSlot).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Metrics{}, fmt.Errorf("%w: metrics", core.ErrNotFound)
		}
		return core.Metrics{}, err
	}
	return record.toDomain(), nil
}

func (s *MetricsStore) Save(ctx context.Context, metrics core.Metrics) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: metrics store is not configured")
	}
	return upsertSingleton(ctx, s.db, newMetricsRecord(metrics))
}

var (
	_ core.ConfigStore   = (*GlobalConfigStore)(nil)
	_ core.MetadataStore = (*GlobalMetadataStore)(nil)
	_ core.MetricsStore  = (*MetricsStore)(nil)
)
