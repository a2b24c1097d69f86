package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Clock supplies timestamps so services and tests share one time source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// LifecycleStore persists the singleton deployment lifecycle account.
// Load returns ErrNotFound before bootstrap.
type LifecycleStore interface {
	Load(ctx context.Context) (Lifecycle, error)
	Save(ctx context.Context, lifecycle Lifecycle) error
}

// ConfigStore persists the singleton global settings account.
type ConfigStore interface {
	Load(ctx context.Context) (GlobalConfig, error)
	Save(ctx context.Context, config GlobalConfig) error
}

// MetadataStore persists the singleton descriptive metadata account.
type MetadataStore interface {
	Load(ctx context.Context) (GlobalMetadata, error)
	Save(ctx context.Context, metadata GlobalMetadata) error
}

// MetricsStore persists the singleton aggregate counters account.
type MetricsStore interface {
	Load(ctx context.Context) (Metrics, error)
	Save(ctx context.Context, metrics Metrics) error
}

// AuthorityStore persists access entries keyed by identity plus scope.
// Get returns ErrNotFound when no entry exists for the pair. Entries are
// never removed; revocation zeroes the role mask instead.
type AuthorityStore interface {
	Get(ctx context.Context, identity string, scope Scope) (AccessEntry, error)
	Save(ctx context.Context, entry AccessEntry) error
	ListByIdentity(ctx context.Context, identity string) ([]AccessEntry, error)
}

// RepoStore persists repository resource accounts keyed by repo key.
type RepoStore interface {
	Get(ctx context.Context, key string) (Repo, error)
	Save(ctx context.Context, repo Repo) error
	List(ctx context.Context, owner string) ([]Repo, error)
}

// ForkStore persists fork resource accounts keyed by fork key.
type ForkStore interface {
	Get(ctx context.Context, key string) (Fork, error)
	Save(ctx context.Context, fork Fork) error
	ListByParent(ctx context.Context, parentKey string) ([]Fork, error)
}

// StoreProvider bundles every account store the engine needs.
type StoreProvider interface {
	LifecycleStore() LifecycleStore
	ConfigStore() ConfigStore
	MetadataStore() MetadataStore
	MetricsStore() MetricsStore
	AuthorityStore() AuthorityStore
	RepoStore() RepoStore
	ForkStore() ForkStore
}

// RepositoryStoreFactory builds a StoreProvider from an already configured
// persistence handle.
type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// MetricsRecorder mirrors the operational metrics sink used by services.
type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// ObservationJobMessage describes an asynchronous observation run handed to
// an external worker fleet.
type ObservationJobMessage struct {
	RepoKey        string
	RequestedBy    string
	IdempotencyKey string
	Parameters     map[string]any
}

// ObservationJobNackOptions controls redelivery of a failed run.
type ObservationJobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

// ObservationJobEnqueuer submits observation runs for background execution.
type ObservationJobEnqueuer interface {
	Enqueue(ctx context.Context, msg *ObservationJobMessage) error
}

// ObservationJobDelivery is one dequeued run with its settlement handles.
type ObservationJobDelivery interface {
	Message() *ObservationJobMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts ObservationJobNackOptions) error
}

// ObservationJobDequeuer pulls pending runs for a worker loop.
type ObservationJobDequeuer interface {
	Dequeue(ctx context.Context) (ObservationJobDelivery, error)
}
