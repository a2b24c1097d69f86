package core

import (
	"context"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service is the deployment state and access control engine. Every mutation
// follows the same guarded protocol: lifecycle gate, authorization,
// activation, validation, then the mutation itself with a fresh timestamp.
type Service struct {
	config              Config
	logger              Logger
	loggerProvider      LoggerProvider
	metricsRecorder     MetricsRecorder
	errorFactory        ErrorFactory
	errorMapper         ErrorMapper
	clock               Clock
	persistenceClient   any
	repositoryFactory   any
	configProvider      ConfigProvider
	optionsResolver     OptionsResolver
	lifecycleStore      LifecycleStore
	configStore         ConfigStore
	metadataStore       MetadataStore
	metricsStore        MetricsStore
	authorityStore      AuthorityStore
	repoStore           RepoStore
	forkStore           ForkStore
	observationEnqueuer ObservationJobEnqueuer
}

type ServiceDependencies struct {
	Logger              Logger
	LoggerProvider      LoggerProvider
	MetricsRecorder     MetricsRecorder
	ErrorFactory        ErrorFactory
	ErrorMapper         ErrorMapper
	Clock               Clock
	PersistenceClient   any
	RepositoryFactory   any
	ConfigProvider      ConfigProvider
	OptionsResolver     OptionsResolver
	LifecycleStore      LifecycleStore
	ConfigStore         ConfigStore
	MetadataStore       MetadataStore
	MetricsStore        MetricsStore
	AuthorityStore      AuthorityStore
	RepoStore           RepoStore
	ForkStore           ForkStore
	ObservationEnqueuer ObservationJobEnqueuer
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("raccoon", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("raccoon"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.clock == nil {
		builder.clock = SystemClock()
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.missingStores() && builder.repositoryFactory != nil {
		var storeProvider StoreProvider
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			built, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			storeProvider = built
		} else if resolved, ok := builder.repositoryFactory.(StoreProvider); ok {
			storeProvider = resolved
		}
		builder.adoptStores(storeProvider)
	}
	if builder.missingStores() {
		builder.adoptStores(NewMemoryStoreProvider())
	}

	return &Service{
		config:              finalConfig,
		logger:              logger,
		loggerProvider:      provider,
		metricsRecorder:     builder.metricsRecorder,
		errorFactory:        builder.errorFactory,
		errorMapper:         builder.errorMapper,
		clock:               builder.clock,
		persistenceClient:   builder.persistenceClient,
		repositoryFactory:   builder.repositoryFactory,
		configProvider:      builder.configProvider,
		optionsResolver:     builder.optionsResolver,
		lifecycleStore:      builder.lifecycleStore,
		configStore:         builder.configStore,
		metadataStore:       builder.metadataStore,
		metricsStore:        builder.metricsStore,
		authorityStore:      builder.authorityStore,
		repoStore:           builder.repoStore,
		forkStore:           builder.forkStore,
		observationEnqueuer: builder.observationEnqueuer,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func (b *serviceBuilder) missingStores() bool {
	return b.lifecycleStore == nil ||
		b.configStore == nil ||
		b.metadataStore == nil ||
		b.metricsStore == nil ||
		b.authorityStore == nil ||
		b.repoStore == nil ||
		b.forkStore == nil
}

func (b *serviceBuilder) adoptStores(provider StoreProvider) {
	if provider == nil {
		return
	}
	if b.lifecycleStore == nil {
		b.lifecycleStore = provider.LifecycleStore()
	}
	if b.configStore == nil {
		b.configStore = provider.ConfigStore()
	}
	if b.metadataStore == nil {
		b.metadataStore = provider.MetadataStore()
	}
	if b.metricsStore == nil {
		b.metricsStore = provider.MetricsStore()
	}
	if b.authorityStore == nil {
		b.authorityStore = provider.AuthorityStore()
	}
	if b.repoStore == nil {
		b.repoStore = provider.RepoStore()
	}
	if b.forkStore == nil {
		b.forkStore = provider.ForkStore()
	}
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:              s.logger,
		LoggerProvider:      s.loggerProvider,
		MetricsRecorder:     s.metricsRecorder,
		ErrorFactory:        s.errorFactory,
		ErrorMapper:         s.errorMapper,
		Clock:               s.clock,
		PersistenceClient:   s.persistenceClient,
		RepositoryFactory:   s.repositoryFactory,
		ConfigProvider:      s.configProvider,
		OptionsResolver:     s.optionsResolver,
		LifecycleStore:      s.lifecycleStore,
		ConfigStore:         s.configStore,
		MetadataStore:       s.metadataStore,
		MetricsStore:        s.metricsStore,
		AuthorityStore:      s.authorityStore,
		RepoStore:           s.repoStore,
		ForkStore:           s.forkStore,
		ObservationEnqueuer: s.observationEnqueuer,
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) now() time.Time {
	if s == nil || s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now().UTC()
}

// loadLifecycle fetches the current lifecycle account. A missing account
// means the deployment was never bootstrapped.
func (s *Service) loadLifecycle(ctx context.Context) (Lifecycle, error) {
	if s == nil || s.lifecycleStore == nil {
		return Lifecycle{}, ErrNotInitialized
	}
	lifecycle, err := s.lifecycleStore.Load(ctx)
	if err != nil {
		if isNotFound(err) {
			return Lifecycle{}, ErrNotInitialized
		}
		return Lifecycle{}, err
	}
	return lifecycle, nil
}

// gateWrites resolves the current lifecycle and applies the freeze and
// phase guards. Every mutation path reads the stored state fresh.
func (s *Service) gateWrites(ctx context.Context) (Lifecycle, error) {
	lifecycle, err := s.loadLifecycle(ctx)
	if err != nil {
		return Lifecycle{}, err
	}
	if err := lifecycle.AssertWritesAllowed(); err != nil {
		return Lifecycle{}, err
	}
	return lifecycle, nil
}

func (s *Service) loadGlobalConfig(ctx context.Context) (GlobalConfig, error) {
	if s == nil || s.configStore == nil {
		return GlobalConfig{}, ErrNotInitialized
	}
	config, err := s.configStore.Load(ctx)
	if err != nil {
		if isNotFound(err) {
			return GlobalConfig{}, ErrNotInitialized
		}
		return GlobalConfig{}, err
	}
	return config, nil
}

// requireAdmin authorizes deployment-level mutations. The configured admin
// identity passes directly; any other signer needs a global access entry
// carrying the admin role.
func (s *Service) requireAdmin(ctx context.Context, signer string) (GlobalConfig, error) {
	config, err := s.loadGlobalConfig(ctx)
	if err != nil {
		return GlobalConfig{}, err
	}
	signer = strings.TrimSpace(signer)
	if signer == "" {
		return GlobalConfig{}, ErrIdentityMismatch
	}
	if config.AssertAdmin(signer) == nil {
		return config, nil
	}
	if s.authorityStore != nil {
		entry, lookupErr := s.authorityStore.Get(ctx, signer, GlobalScope())
		if lookupErr == nil {
			if authErr := entry.AssertAllowedForResource(signer, RoleAdmin, ""); authErr == nil {
				return config, nil
			}
		}
	}
	return GlobalConfig{}, ErrInsufficientRole
}

// authorizeForResource checks a signer against a resource. The resource
// owner always passes. Otherwise a scoped access entry is consulted first,
// falling back to a global entry with the same roles.
func (s *Service) authorizeForResource(ctx context.Context, signer, owner, resourceID string, required Role) error {
	signer = strings.TrimSpace(signer)
	if signer == "" {
		return ErrIdentityMismatch
	}
	if signer == owner {
		return nil
	}
	if s == nil || s.authorityStore == nil {
		return ErrInsufficientRole
	}
	if entry, err := s.authorityStore.Get(ctx, signer, ScopedTo(resourceID)); err == nil {
		if authErr := entry.AssertAllowedForResource(signer, required, resourceID); authErr == nil {
			return nil
		}
	}
	if entry, err := s.authorityStore.Get(ctx, signer, GlobalScope()); err == nil {
		if authErr := entry.AssertAllowedForResource(signer, required, resourceID); authErr == nil {
			return nil
		}
	}
	return ErrInsufficientRole
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.IsNotFound(err) {
		return true
	}
	return errors.Is(err, ErrNotFound)
}
