package raccoon

import (
	"context"
	"fmt"

	raccooncommand "github.com/VitorBSK/Unit9-Raccoon/command"
	"github.com/VitorBSK/Unit9-Raccoon/core"
	raccoonquery "github.com/VitorBSK/Unit9-Raccoon/query"
)

// CommandQueryService is the full engine surface the facade wraps: every
// guarded mutation plus the read side.
type CommandQueryService interface {
	raccooncommand.MutatingService
	raccoonquery.LifecycleReader
	raccoonquery.RepoReader
	raccoonquery.ForkReader
	raccoonquery.AccessReader
	raccoonquery.DeploymentReader
}

type Commands struct {
	Bootstrap            *raccooncommand.BootstrapCommand
	SetPhase             *raccooncommand.SetPhaseCommand
	SetGlobalFreeze      *raccooncommand.SetGlobalFreezeCommand
	RequireMigration     *raccooncommand.RequireMigrationCommand
	StartMigration       *raccooncommand.StartMigrationCommand
	CompleteMigration    *raccooncommand.CompleteMigrationCommand
	UpdateLifecycleNote  *raccooncommand.UpdateLifecycleNoteCommand
	GrantAccess          *raccooncommand.GrantAccessCommand
	RevokeAccess         *raccooncommand.RevokeAccessCommand
	SetAccessRoles       *raccooncommand.SetAccessRolesCommand
	ClearAccess          *raccooncommand.ClearAccessCommand
	RegisterRepo         *raccooncommand.RegisterRepoCommand
	UpdateRepo           *raccooncommand.UpdateRepoCommand
	AddModule            *raccooncommand.AddModuleCommand
	ArchiveModule        *raccooncommand.ArchiveModuleCommand
	RecordObservation    *raccooncommand.RecordObservationCommand
	RequestObservation   *raccooncommand.RequestObservationCommand
	CreateFork           *raccooncommand.CreateForkCommand
	UpdateFork           *raccooncommand.UpdateForkCommand
	UpdateGlobalConfig   *raccooncommand.UpdateGlobalConfigCommand
	TransferAdmin        *raccooncommand.TransferAdminCommand
	SetEngineActive      *raccooncommand.SetEngineActiveCommand
	UpdateGlobalMetadata *raccooncommand.UpdateGlobalMetadataCommand
}

type Queries struct {
	LifecycleStatus  *raccoonquery.LifecycleStatusQuery
	LifecycleRecord  *raccoonquery.LifecycleRecordQuery
	GetRepo          *raccoonquery.GetRepoQuery
	ListRepos        *raccoonquery.ListReposQuery
	GetFork          *raccoonquery.GetForkQuery
	ListForks        *raccoonquery.ListForksQuery
	ListAccess       *raccoonquery.ListAccessQuery
	CheckAccess      *raccoonquery.CheckAccessQuery
	ConfigSnapshot   *raccoonquery.ConfigSnapshotQuery
	MetadataSnapshot *raccoonquery.MetadataSnapshotQuery
	MetricsSnapshot  *raccoonquery.MetricsSnapshotQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	repoReader raccoonquery.RepoReader
}

// WithRepoReader routes repo queries through an alternate reader, usually
// a cache-fronted store, while mutations keep hitting the service.
func WithRepoReader(reader raccoonquery.RepoReader) FacadeOption {
	return func(options *facadeOptions) {
		options.repoReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("raccoon: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	repoReader := cfg.repoReader
	if repoReader == nil {
		repoReader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Bootstrap:            raccooncommand.NewBootstrapCommand(service),
		SetPhase:             raccooncommand.NewSetPhaseCommand(service),
		SetGlobalFreeze:      raccooncommand.NewSetGlobalFreezeCommand(service),
		RequireMigration:     raccooncommand.NewRequireMigrationCommand(service),
		StartMigration:       raccooncommand.NewStartMigrationCommand(service),
		CompleteMigration:    raccooncommand.NewCompleteMigrationCommand(service),
		UpdateLifecycleNote:  raccooncommand.NewUpdateLifecycleNoteCommand(service),
		GrantAccess:          raccooncommand.NewGrantAccessCommand(service),
		RevokeAccess:         raccooncommand.NewRevokeAccessCommand(service),
		SetAccessRoles:       raccooncommand.NewSetAccessRolesCommand(service),
		ClearAccess:          raccooncommand.NewClearAccessCommand(service),
		RegisterRepo:         raccooncommand.NewRegisterRepoCommand(service),
		UpdateRepo:           raccooncommand.NewUpdateRepoCommand(service),
		AddModule:            raccooncommand.NewAddModuleCommand(service),
		ArchiveModule:        raccooncommand.NewArchiveModuleCommand(service),
		RecordObservation:    raccooncommand.NewRecordObservationCommand(service),
		RequestObservation:   raccooncommand.NewRequestObservationCommand(service),
		CreateFork:           raccooncommand.NewCreateForkCommand(service),
		UpdateFork:           raccooncommand.NewUpdateForkCommand(service),
		UpdateGlobalConfig:   raccooncommand.NewUpdateGlobalConfigCommand(service),
		TransferAdmin:        raccooncommand.NewTransferAdminCommand(service),
		SetEngineActive:      raccooncommand.NewSetEngineActiveCommand(service),
		UpdateGlobalMetadata: raccooncommand.NewUpdateGlobalMetadataCommand(service),
	}
	facade.queries = Queries{
		LifecycleStatus:  raccoonquery.NewLifecycleStatusQuery(service),
		LifecycleRecord:  raccoonquery.NewLifecycleRecordQuery(service),
		GetRepo:          raccoonquery.NewGetRepoQuery(repoReader),
		ListRepos:        raccoonquery.NewListReposQuery(repoReader),
		GetFork:          raccoonquery.NewGetForkQuery(service),
		ListForks:        raccoonquery.NewListForksQuery(service),
		ListAccess:       raccoonquery.NewListAccessQuery(service),
		CheckAccess:      raccoonquery.NewCheckAccessQuery(service),
		ConfigSnapshot:   raccoonquery.NewConfigSnapshotQuery(service),
		MetadataSnapshot: raccoonquery.NewMetadataSnapshotQuery(service),
		MetricsSnapshot:  raccoonquery.NewMetricsSnapshotQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// StoreRepoReader adapts a repo store, typically a cache-fronted one, to
// the query read contract.
type StoreRepoReader struct {
	store core.RepoStore
}

func NewStoreRepoReader(store core.RepoStore) (*StoreRepoReader, error) {
	if store == nil {
		return nil, fmt.Errorf("raccoon: repo store is required")
	}
	return &StoreRepoReader{store: store}, nil
}

func (r *StoreRepoReader) GetRepo(ctx context.Context, key string) (core.Repo, error) {
	if r == nil || r.store == nil {
		return core.Repo{}, fmt.Errorf("raccoon: repo reader is not configured")
	}
	return r.store.Get(ctx, key)
}

func (r *StoreRepoReader) ListRepos(ctx context.Context, owner string) ([]core.Repo, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("raccoon: repo reader is not configured")
	}
	return r.store.List(ctx, owner)
}

var _ raccoonquery.RepoReader = (*StoreRepoReader)(nil)
