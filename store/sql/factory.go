package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

// RepositoryFactory builds the full set of account stores over one bun
// handle. It satisfies both core.RepositoryStoreFactory and, once built,
// core.StoreProvider.
type RepositoryFactory struct {
	db *bun.DB

	lifecycleStore *LifecycleStore
	configStore    *GlobalConfigStore
	metadataStore  *GlobalMetadataStore
	metricsStore   *MetricsStore
	authorityStore *AccessEntryStore
	repoStore      *RepoStore
	forkStore      *ForkStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.lifecycleStore != nil && f.repoStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) LifecycleStore() core.LifecycleStore {
	if f == nil {
		return nil
	}
	return f.lifecycleStore
}

func (f *RepositoryFactory) ConfigStore() core.ConfigStore {
	if f == nil {
		return nil
	}
	return f.configStore
}

func (f *RepositoryFactory) MetadataStore() core.MetadataStore {
	if f == nil {
		return nil
	}
	return f.metadataStore
}

func (f *RepositoryFactory) MetricsStore() core.MetricsStore {
	if f == nil {
		return nil
	}
	return f.metricsStore
}

func (f *RepositoryFactory) AuthorityStore() core.AuthorityStore {
	if f == nil {
		return nil
	}
	return f.authorityStore
}

func (f *RepositoryFactory) RepoStore() core.RepoStore {
	if f == nil {
		return nil
	}
	return f.repoStore
}

func (f *RepositoryFactory) ForkStore() core.ForkStore {
	if f == nil {
		return nil
	}
	return f.forkStore
}

func (f *RepositoryFactory) initStores() error {
	lifecycleStore, err := NewLifecycleStore(f.db)
	if err != nil {
		return err
	}
	configStore, err := NewGlobalConfigStore(f.db)
	if err != nil {
		return err
	}
	metadataStore, err := NewGlobalMetadataStore(f.db)
	if err != nil {
		return err
	}
	metricsStore, err := NewMetricsStore(f.db)
	if err != nil {
		return err
	}
	authorityStore, err := NewAccessEntryStore(f.db)
	if err != nil {
		return err
	}
	repoStore, err := NewRepoStore(f.db)
	if err != nil {
		return err
	}
	forkStore, err := NewForkStore(f.db)
	if err != nil {
		return err
	}

	f.lifecycleStore = lifecycleStore
	f.configStore = configStore
	f.metadataStore = metadataStore
	f.metricsStore = metricsStore
	f.authorityStore = authorityStore
	f.repoStore = repoStore
	f.forkStore = forkStore
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

var (
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
)
