package raccoon

import "github.com/VitorBSK/Unit9-Raccoon/core"

type Config = core.Config

type Limits = core.Limits

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type Clock = core.Clock
type StoreProvider = core.StoreProvider
type LifecycleStore = core.LifecycleStore
type ConfigStore = core.ConfigStore
type MetadataStore = core.MetadataStore
type MetricsStore = core.MetricsStore
type AuthorityStore = core.AuthorityStore
type RepoStore = core.RepoStore
type ForkStore = core.ForkStore
type ObservationJobEnqueuer = core.ObservationJobEnqueuer

type Phase = core.Phase
type Role = core.Role
type Scope = core.Scope
type Ref = core.Ref

type BootstrapRequest = core.BootstrapRequest
type GrantAccessRequest = core.GrantAccessRequest
type RevokeAccessRequest = core.RevokeAccessRequest
type SetAccessRolesRequest = core.SetAccessRolesRequest
type RegisterRepoRequest = core.RegisterRepoRequest
type UpdateRepoRequest = core.UpdateRepoRequest
type RecordObservationRequest = core.RecordObservationRequest
type RequestObservationRequest = core.RequestObservationRequest
type CreateForkRequest = core.CreateForkRequest
type UpdateForkRequest = core.UpdateForkRequest
type UpdateGlobalConfigRequest = core.UpdateGlobalConfigRequest
type UpdateGlobalMetadataRequest = core.UpdateGlobalMetadataRequest

var (
	WithLogger                 = core.WithLogger
	WithLoggerProvider         = core.WithLoggerProvider
	WithMetricsRecorder        = core.WithMetricsRecorder
	WithErrorFactory           = core.WithErrorFactory
	WithErrorMapper            = core.WithErrorMapper
	WithClock                  = core.WithClock
	WithPersistenceClient      = core.WithPersistenceClient
	WithRepositoryFactory      = core.WithRepositoryFactory
	WithConfigProvider         = core.WithConfigProvider
	WithOptionsResolver        = core.WithOptionsResolver
	WithLifecycleStore         = core.WithLifecycleStore
	WithConfigStore            = core.WithConfigStore
	WithMetadataStore          = core.WithMetadataStore
	WithMetricsStore           = core.WithMetricsStore
	WithAuthorityStore         = core.WithAuthorityStore
	WithRepoStore              = core.WithRepoStore
	WithForkStore              = core.WithForkStore
	WithObservationJobEnqueuer = core.WithObservationJobEnqueuer
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
