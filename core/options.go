package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig       Config
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

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithClock(clock Clock) Option {
	return func(b *serviceBuilder) {
		b.clock = clock
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *serviceBuilder) {
		b.repositoryFactory = factory
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithLifecycleStore(store LifecycleStore) Option {
	return func(b *serviceBuilder) {
		b.lifecycleStore = store
	}
}

func WithConfigStore(store ConfigStore) Option {
	return func(b *serviceBuilder) {
		b.configStore = store
	}
}

func WithMetadataStore(store MetadataStore) Option {
	return func(b *serviceBuilder) {
		b.metadataStore = store
	}
}

func WithMetricsStore(store MetricsStore) Option {
	return func(b *serviceBuilder) {
		b.metricsStore = store
	}
}

func WithAuthorityStore(store AuthorityStore) Option {
	return func(b *serviceBuilder) {
		b.authorityStore = store
	}
}

func WithRepoStore(store RepoStore) Option {
	return func(b *serviceBuilder) {
		b.repoStore = store
	}
}

func WithForkStore(store ForkStore) Option {
	return func(b *serviceBuilder) {
		b.forkStore = store
	}
}

func WithObservationJobEnqueuer(enqueuer ObservationJobEnqueuer) Option {
	return func(b *serviceBuilder) {
		b.observationEnqueuer = enqueuer
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("raccoon", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		clock:           SystemClock(),
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return engineErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	limits := map[string]any{}
	setInt := func(key string, value int) {
		if includeZero || value != 0 {
			limits[key] = value
		}
	}
	setInt("max_name_len", cfg.Limits.MaxNameLen)
	setInt("max_url_len", cfg.Limits.MaxURLLen)
	setInt("max_tags_len", cfg.Limits.MaxTagsLen)
	setInt("max_label_len", cfg.Limits.MaxLabelLen)
	setInt("max_metadata_uri_len", cfg.Limits.MaxMetadataURILen)
	setInt("max_description_len", cfg.Limits.MaxDescriptionLen)
	setInt("max_icon_uri_len", cfg.Limits.MaxIconURILen)
	setInt("max_extra_json_len", cfg.Limits.MaxExtraJSONLen)
	if includeZero || cfg.Limits.DefaultMaxModulesPerRepo != 0 {
		limits["default_max_modules_per_repo"] = cfg.Limits.DefaultMaxModulesPerRepo
	}
	if includeZero || cfg.Limits.MaxLinesPerObservation != 0 {
		limits["max_lines_per_observation"] = cfg.Limits.MaxLinesPerObservation
	}
	if includeZero || cfg.Limits.MaxFilesPerObservation != 0 {
		limits["max_files_per_observation"] = cfg.Limits.MaxFilesPerObservation
	}
	if includeZero || cfg.Limits.SoftMaxObservations != 0 {
		limits["soft_max_observations"] = cfg.Limits.SoftMaxObservations
	}
	if len(limits) > 0 {
		layer["limits"] = limits
	}
	return layer
}
