package adapters_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/VitorBSK/Unit9-Raccoon/adapters/gocommand"
	"github.com/VitorBSK/Unit9-Raccoon/adapters/gojob"
	"github.com/VitorBSK/Unit9-Raccoon/adapters/gologger"
	raccooncommand "github.com/VitorBSK/Unit9-Raccoon/command"
	"github.com/VitorBSK/Unit9-Raccoon/core"
)

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	ctx := context.Background()

	logger := compatLogger{}
	provider := &compatProvider{logger: logger}

	_, _, jobProvider, jobLogger := gologger.ResolveForJob("raccoon", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	enqueueProbe := &compatEnqueuer{}
	enqueueAdapter := gojob.NewEnqueuerAdapter(enqueueProbe)
	if err := enqueueAdapter.Enqueue(ctx, &core.ObservationJobMessage{
		RepoKey:        "alice/widgets",
		RequestedBy:    "alice",
		IdempotencyKey: "idem_1",
	}); err != nil {
		t.Fatalf("enqueue via gojob adapter: %v", err)
	}
	if enqueueProbe.last == nil || enqueueProbe.last.JobID != gojob.JobIDObservationRun {
		t.Fatalf("expected go-job message mapping through enqueuer adapter")
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	commandAdapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := commandAdapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	if err := commandAdapter.RegisterCommand(command.CommandFunc[compatMessage](func(context.Context, compatMessage) error {
		return nil
	})); err != nil {
		t.Fatalf("register command: %v", err)
	}
	if err := commandAdapter.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}
	if _, ok := queueRegistry.Get("raccoon.compat.command"); !ok {
		t.Fatalf("expected command resolver hook to mirror command into go-job queue registry")
	}
}

func TestRuntimeCompatibility_CommandDispatchThroughWrappers(t *testing.T) {
	svc := &compatMutatingService{}
	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())

	phaseSub, err := gocommand.RegisterAndSubscribe(adapter, raccooncommand.NewSetPhaseCommand(svc))
	if err != nil {
		t.Fatalf("register set phase wrapper: %v", err)
	}
	defer phaseSub.Unsubscribe()

	moduleSub, err := gocommand.RegisterAndSubscribe(adapter, raccooncommand.NewAddModuleCommand(svc))
	if err != nil {
		t.Fatalf("register add module wrapper: %v", err)
	}
	defer moduleSub.Unsubscribe()

	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize adapter: %v", err)
	}

	if err := gocommand.Dispatch(context.Background(), raccooncommand.SetPhaseMessage{
		Signer: "admin",
		Phase:  core.PhaseMaintenance,
	}); err != nil {
		t.Fatalf("dispatch set phase: %v", err)
	}
	if svc.setPhaseCalls != 1 || svc.lastPhase != core.PhaseMaintenance {
		t.Fatalf("expected set phase wrapper invocation through dispatch")
	}

	if err := gocommand.Dispatch(context.Background(), raccooncommand.AddModuleMessage{
		Signer:  "maintainer",
		RepoKey: "alice/widgets",
	}); err != nil {
		t.Fatalf("dispatch add module: %v", err)
	}
	if svc.addModuleCalls != 1 || svc.lastRepoKey != "alice/widgets" {
		t.Fatalf("expected add module wrapper invocation through dispatch")
	}
}

type compatMessage struct{}

func (compatMessage) Type() string { return "raccoon.compat.command" }

type compatEnqueuer struct {
	last *job.ExecutionMessage
}

func (e *compatEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	e.last = msg
	return nil
}

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type compatLogger struct{}

func (compatLogger) Trace(string, ...any)                    {}
func (compatLogger) Debug(string, ...any)                    {}
func (compatLogger) Info(string, ...any)                     {}
func (compatLogger) Warn(string, ...any)                     {}
func (compatLogger) Error(string, ...any)                    {}
func (compatLogger) Fatal(string, ...any)                    {}
func (compatLogger) WithContext(context.Context) glog.Logger { return compatLogger{} }

type compatMutatingService struct {
	setPhaseCalls  int
	lastPhase      core.Phase
	addModuleCalls int
	lastRepoKey    string
}

func (s *compatMutatingService) Bootstrap(context.Context, core.BootstrapRequest) (core.BootstrapResult, error) {
	return core.BootstrapResult{}, nil
}

func (s *compatMutatingService) SetPhase(_ context.Context, _ string, next core.Phase) (core.Lifecycle, error) {
	s.setPhaseCalls++
	s.lastPhase = next
	return core.Lifecycle{Phase: next}, nil
}

func (s *compatMutatingService) SetGlobalFreeze(context.Context, string, bool) (core.Lifecycle, error) {
	return core.Lifecycle{}, nil
}

func (s *compatMutatingService) RequireMigration(context.Context, string) (core.Lifecycle, error) {
	return core.Lifecycle{}, nil
}

func (s *compatMutatingService) StartMigration(context.Context, string) (core.Lifecycle, error) {
	return core.Lifecycle{}, nil
}

func (s *compatMutatingService) CompleteMigration(context.Context, string, core.Phase) (core.Lifecycle, error) {
	return core.Lifecycle{}, nil
}

func (s *compatMutatingService) UpdateLifecycleNote(context.Context, string, core.Ref) (core.Lifecycle, error) {
	return core.Lifecycle{}, nil
}

func (s *compatMutatingService) GrantAccess(context.Context, core.GrantAccessRequest) (core.AccessEntry, error) {
	return core.AccessEntry{}, nil
}

func (s *compatMutatingService) RevokeAccess(context.Context, core.RevokeAccessRequest) (core.AccessEntry, error) {
	return core.AccessEntry{}, nil
}

func (s *compatMutatingService) SetAccessRoles(context.Context, core.SetAccessRolesRequest) (core.AccessEntry, error) {
	return core.AccessEntry{}, nil
}

func (s *compatMutatingService) ClearAccess(context.Context, string, string, core.Scope) (core.AccessEntry, error) {
	return core.AccessEntry{}, nil
}

func (s *compatMutatingService) RegisterRepo(context.Context, core.RegisterRepoRequest) (core.Repo, error) {
	return core.Repo{}, nil
}

func (s *compatMutatingService) UpdateRepo(context.Context, core.UpdateRepoRequest) (core.Repo, error) {
	return core.Repo{}, nil
}

func (s *compatMutatingService) AddModule(_ context.Context, _ string, repoKey string) (core.Repo, error) {
	s.addModuleCalls++
	s.lastRepoKey = repoKey
	return core.Repo{Key: repoKey}, nil
}

func (s *compatMutatingService) ArchiveModule(context.Context, string, string) (core.Repo, error) {
	return core.Repo{}, nil
}

func (s *compatMutatingService) RecordObservation(context.Context, core.RecordObservationRequest) (core.Repo, error) {
	return core.Repo{}, nil
}

func (s *compatMutatingService) RequestObservation(context.Context, core.RequestObservationRequest) error {
	return nil
}

func (s *compatMutatingService) CreateFork(context.Context, core.CreateForkRequest) (core.Fork, error) {
	return core.Fork{}, nil
}

func (s *compatMutatingService) UpdateFork(context.Context, core.UpdateForkRequest) (core.Fork, error) {
	return core.Fork{}, nil
}

func (s *compatMutatingService) UpdateGlobalConfig(context.Context, core.UpdateGlobalConfigRequest) (core.GlobalConfig, error) {
	return core.GlobalConfig{}, nil
}

func (s *compatMutatingService) TransferAdmin(context.Context, string, string) (core.GlobalConfig, error) {
	return core.GlobalConfig{}, nil
}

func (s *compatMutatingService) SetEngineActive(context.Context, string, bool) (core.GlobalConfig, error) {
	return core.GlobalConfig{}, nil
}

func (s *compatMutatingService) UpdateGlobalMetadata(context.Context, core.UpdateGlobalMetadataRequest) (core.GlobalMetadata, error) {
	return core.GlobalMetadata{}, nil
}
