package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

func TestRegisterRepoCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.Repo{Key: "repo-1", Owner: "alice", Name: "raccoon", Active: true}
	called := false

	svc := stubMutatingService{
		registerRepoFn: func(_ context.Context, req core.RegisterRepoRequest) (core.Repo, error) {
			called = true
			if req.Key != "repo-1" {
				t.Fatalf("expected key repo-1, got %q", req.Key)
			}
			return expected, nil
		},
	}

	cmd := NewRegisterRepoCommand(svc)
	collector := gocmd.NewResult[core.Repo]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, RegisterRepoMessage{Request: core.RegisterRepoRequest{
		Signer: "alice",
		Key:    "repo-1",
		Name:   "raccoon",
		URL:    "https://example.com/raccoon.git",
	}})
	if err != nil {
		t.Fatalf("execute register repo: %v", err)
	}
	if !called {
		t.Fatalf("expected register repo invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Key != expected.Key || result.Owner != expected.Owner {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("set phase", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			setPhaseFn: func(_ context.Context, signer string, next core.Phase) (core.Lifecycle, error) {
				called = true
				if signer != "admin" || next != core.PhaseMaintenance {
					t.Fatalf("unexpected set phase payload: %q %v", signer, next)
				}
				return core.Lifecycle{Phase: next}, nil
			},
		}
		cmd := NewSetPhaseCommand(svc)
		collector := gocmd.NewResult[core.Lifecycle]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, SetPhaseMessage{Signer: "admin", Phase: core.PhaseMaintenance}); err != nil {
			t.Fatalf("execute set phase: %v", err)
		}
		if !called {
			t.Fatalf("expected set phase invocation")
		}
		stored, ok := collector.Load()
		if !ok {
			t.Fatalf("expected lifecycle result")
		}
		if stored.Phase != core.PhaseMaintenance {
			t.Fatalf("unexpected lifecycle result: %#v", stored)
		}
	})

	t.Run("migration flow", func(t *testing.T) {
		calledRequire := false
		calledStart := false
		calledComplete := false
		svc := stubMutatingService{
			requireMigrationFn: func(_ context.Context, signer string) (core.Lifecycle, error) {
				calledRequire = true
				return core.Lifecycle{MigrationRequired: true}, nil
			},
			startMigrationFn: func(_ context.Context, signer string) (core.Lifecycle, error) {
				calledStart = true
				return core.Lifecycle{Phase: core.PhaseMigration, MigrationInProgress: true}, nil
			},
			completeMigrationFn: func(_ context.Context, signer string, next core.Phase) (core.Lifecycle, error) {
				calledComplete = true
				if next != core.PhaseOperational {
					t.Fatalf("unexpected landing phase: %v", next)
				}
				return core.Lifecycle{Phase: next}, nil
			},
		}
		if err := NewRequireMigrationCommand(svc).Execute(context.Background(), RequireMigrationMessage{Signer: "admin"}); err != nil {
			t.Fatalf("execute require migration: %v", err)
		}
		if err := NewStartMigrationCommand(svc).Execute(context.Background(), StartMigrationMessage{Signer: "admin"}); err != nil {
			t.Fatalf("execute start migration: %v", err)
		}
		if err := NewCompleteMigrationCommand(svc).Execute(context.Background(), CompleteMigrationMessage{Signer: "admin", Next: core.PhaseOperational}); err != nil {
			t.Fatalf("execute complete migration: %v", err)
		}
		if !calledRequire || !calledStart || !calledComplete {
			t.Fatalf("expected all migration invocations, got %v %v %v", calledRequire, calledStart, calledComplete)
		}
	})

	t.Run("access commands", func(t *testing.T) {
		entry := core.AccessEntry{Identity: "bob", Roles: core.RoleMaintainer}
		calledGrant := false
		calledClear := false
		svc := stubMutatingService{
			grantAccessFn: func(_ context.Context, req core.GrantAccessRequest) (core.AccessEntry, error) {
				calledGrant = true
				if req.Identity != "bob" {
					t.Fatalf("unexpected grantee: %q", req.Identity)
				}
				return entry, nil
			},
			clearAccessFn: func(_ context.Context, signer, identity string, scope core.Scope) (core.AccessEntry, error) {
				calledClear = true
				if identity != "bob" || !scope.IsGlobal() {
					t.Fatalf("unexpected clear payload: %q %v", identity, scope)
				}
				return core.AccessEntry{Identity: "bob"}, nil
			},
		}
		grantMsg := GrantAccessMessage{Request: core.GrantAccessRequest{
			Signer:   "admin",
			Identity: "bob",
			Roles:    core.RoleMaintainer,
		}}
		if err := NewGrantAccessCommand(svc).Execute(context.Background(), grantMsg); err != nil {
			t.Fatalf("execute grant access: %v", err)
		}
		clearMsg := ClearAccessMessage{Signer: "admin", Identity: "bob", Scope: core.GlobalScope()}
		if err := NewClearAccessCommand(svc).Execute(context.Background(), clearMsg); err != nil {
			t.Fatalf("execute clear access: %v", err)
		}
		if !calledGrant || !calledClear {
			t.Fatalf("expected access invocations, got %v %v", calledGrant, calledClear)
		}
	})

	t.Run("module counters", func(t *testing.T) {
		calledAdd := false
		calledArchive := false
		svc := stubMutatingService{
			addModuleFn: func(_ context.Context, signer, repoKey string) (core.Repo, error) {
				calledAdd = true
				return core.Repo{Key: repoKey, ModuleCount: 1}, nil
			},
			archiveModuleFn: func(_ context.Context, signer, repoKey string) (core.Repo, error) {
				calledArchive = true
				return core.Repo{Key: repoKey, ModuleCount: 0}, nil
			},
		}
		if err := NewAddModuleCommand(svc).Execute(context.Background(), AddModuleMessage{Signer: "alice", RepoKey: "repo-1"}); err != nil {
			t.Fatalf("execute add module: %v", err)
		}
		if err := NewArchiveModuleCommand(svc).Execute(context.Background(), ArchiveModuleMessage{Signer: "alice", RepoKey: "repo-1"}); err != nil {
			t.Fatalf("execute archive module: %v", err)
		}
		if !calledAdd || !calledArchive {
			t.Fatalf("expected module invocations, got %v %v", calledAdd, calledArchive)
		}
	})

	t.Run("request observation has no result", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			requestObservationFn: func(_ context.Context, req core.RequestObservationRequest) error {
				called = true
				if req.RepoKey != "repo-1" {
					t.Fatalf("unexpected repo key: %q", req.RepoKey)
				}
				return nil
			},
		}
		msg := RequestObservationMessage{Request: core.RequestObservationRequest{
			Signer:  "worker",
			RepoKey: "repo-1",
		}}
		if err := NewRequestObservationCommand(svc).Execute(context.Background(), msg); err != nil {
			t.Fatalf("execute request observation: %v", err)
		}
		if !called {
			t.Fatalf("expected request observation invocation")
		}
	})

	t.Run("admin transfer", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			transferAdminFn: func(_ context.Context, signer, successor string) (core.GlobalConfig, error) {
				called = true
				if signer != "admin" || successor != "successor" {
					t.Fatalf("unexpected transfer payload: %q %q", signer, successor)
				}
				return core.GlobalConfig{Admin: successor}, nil
			},
		}
		msg := TransferAdminMessage{Signer: "admin", Successor: "successor"}
		if err := NewTransferAdminCommand(svc).Execute(context.Background(), msg); err != nil {
			t.Fatalf("execute transfer admin: %v", err)
		}
		if !called {
			t.Fatalf("expected transfer invocation")
		}
	})
}

func TestCommandExecute_PropagatesServiceError(t *testing.T) {
	svc := stubMutatingService{
		updateRepoFn: func(_ context.Context, req core.UpdateRepoRequest) (core.Repo, error) {
			return core.Repo{}, core.ErrLifecycleBlocked
		},
	}
	name := "renamed"
	msg := UpdateRepoMessage{Request: core.UpdateRepoRequest{
		Signer: "alice",
		Key:    "repo-1",
		Update: core.RepoUpdate{Name: &name},
	}}
	err := NewUpdateRepoCommand(svc).Execute(context.Background(), msg)
	if err == nil {
		t.Fatalf("expected service error to propagate")
	}
}

func TestMessageValidate_RejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		msg  interface{ Validate() error }
	}{
		{"bootstrap without admin", BootstrapMessage{}},
		{"set phase without signer", SetPhaseMessage{Phase: core.PhaseOperational}},
		{"grant without identity", GrantAccessMessage{Request: core.GrantAccessRequest{Signer: "admin", Roles: core.RoleAdmin}}},
		{"register without key", RegisterRepoMessage{Request: core.RegisterRepoRequest{Signer: "alice", Name: "n", URL: "u"}}},
		{"update repo without fields", UpdateRepoMessage{Request: core.UpdateRepoRequest{Signer: "alice", Key: "repo-1"}}},
		{"fork without parent", CreateForkMessage{Request: core.CreateForkRequest{Signer: "alice", Key: "fork-1", Label: "l"}}},
		{"transfer without successor", TransferAdminMessage{Signer: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.msg.Validate(); err == nil {
				t.Fatalf("expected validation failure")
			}
		})
	}
}

func TestMessageValidate_RejectsDomainBounds(t *testing.T) {
	if err := (SetPhaseMessage{Signer: "admin", Phase: core.Phase(99)}).Validate(); err == nil {
		t.Fatalf("expected phase bound rejection")
	}
	msg := GrantAccessMessage{Request: core.GrantAccessRequest{
		Signer:   "admin",
		Identity: "bob",
		Roles:    core.Role(1 << 60),
	}}
	if err := msg.Validate(); err == nil {
		t.Fatalf("expected role mask rejection")
	}
	boot := BootstrapMessage{Request: core.BootstrapRequest{Admin: "admin", FeeBps: core.MaxFeeBps + 1}}
	if err := boot.Validate(); err == nil {
		t.Fatalf("expected fee bound rejection")
	}
}

type stubMutatingService struct {
	bootstrapFn            func(ctx context.Context, req core.BootstrapRequest) (core.BootstrapResult, error)
	setPhaseFn             func(ctx context.Context, signer string, next core.Phase) (core.Lifecycle, error)
	setGlobalFreezeFn      func(ctx context.Context, signer string, frozen bool) (core.Lifecycle, error)
	requireMigrationFn     func(ctx context.Context, signer string) (core.Lifecycle, error)
	startMigrationFn       func(ctx context.Context, signer string) (core.Lifecycle, error)
	completeMigrationFn    func(ctx context.Context, signer string, next core.Phase) (core.Lifecycle, error)
	updateLifecycleNoteFn  func(ctx context.Context, signer string, noteRef core.Ref) (core.Lifecycle, error)
	grantAccessFn          func(ctx context.Context, req core.GrantAccessRequest) (core.AccessEntry, error)
	revokeAccessFn         func(ctx context.Context, req core.RevokeAccessRequest) (core.AccessEntry, error)
	setAccessRolesFn       func(ctx context.Context, req core.SetAccessRolesRequest) (core.AccessEntry, error)
	clearAccessFn          func(ctx context.Context, signer, identity string, scope core.Scope) (core.AccessEntry, error)
	registerRepoFn         func(ctx context.Context, req core.RegisterRepoRequest) (core.Repo, error)
	updateRepoFn           func(ctx context.Context, req core.UpdateRepoRequest) (core.Repo, error)
	addModuleFn            func(ctx context.Context, signer, repoKey string) (core.Repo, error)
	archiveModuleFn        func(ctx context.Context, signer, repoKey string) (core.Repo, error)
	recordObservationFn    func(ctx context.Context, req core.RecordObservationRequest) (core.Repo, error)
	requestObservationFn   func(ctx context.Context, req core.RequestObservationRequest) error
	createForkFn           func(ctx context.Context, req core.CreateForkRequest) (core.Fork, error)
	updateForkFn           func(ctx context.Context, req core.UpdateForkRequest) (core.Fork, error)
	updateGlobalConfigFn   func(ctx context.Context, req core.UpdateGlobalConfigRequest) (core.GlobalConfig, error)
	transferAdminFn        func(ctx context.Context, signer, successor string) (core.GlobalConfig, error)
	setEngineActiveFn      func(ctx context.Context, signer string, active bool) (core.GlobalConfig, error)
	updateGlobalMetadataFn func(ctx context.Context, req core.UpdateGlobalMetadataRequest) (core.GlobalMetadata, error)
}

func (s stubMutatingService) Bootstrap(ctx context.Context, req core.BootstrapRequest) (core.BootstrapResult, error) {
	if s.bootstrapFn == nil {
		return core.BootstrapResult{}, fmt.Errorf("bootstrap not configured")
	}
	return s.bootstrapFn(ctx, req)
}

func (s stubMutatingService) SetPhase(ctx context.Context, signer string, next core.Phase) (core.Lifecycle, error) {
	if s.setPhaseFn == nil {
		return core.Lifecycle{}, fmt.Errorf("set phase not configured")
	}
	return s.setPhaseFn(ctx, signer, next)
}

func (s stubMutatingService) SetGlobalFreeze(ctx context.Context, signer string, frozen bool) (core.Lifecycle, error) {
	if s.setGlobalFreezeFn == nil {
		return core.Lifecycle{}, fmt.Errorf("set global freeze not configured")
	}
	return s.setGlobalFreezeFn(ctx, signer, frozen)
}

func (s stubMutatingService) RequireMigration(ctx context.Context, signer string) (core.Lifecycle, error) {
	if s.requireMigrationFn == nil {
		return core.Lifecycle{}, fmt.Errorf("require migration not configured")
	}
	return s.requireMigrationFn(ctx, signer)
}

func (s stubMutatingService) StartMigration(ctx context.Context, signer string) (core.Lifecycle, error) {
	if s.startMigrationFn == nil {
		return core.Lifecycle{}, fmt.Errorf("start migration not configured")
	}
	return s.startMigrationFn(ctx, signer)
}

func (s stubMutatingService) CompleteMigration(ctx context.Context, signer string, next core.Phase) (core.Lifecycle, error) {
	if s.completeMigrationFn == nil {
		return core.Lifecycle{}, fmt.Errorf("complete migration not configured")
	}
	return s.completeMigrationFn(ctx, signer, next)
}

func (s stubMutatingService) UpdateLifecycleNote(ctx context.Context, signer string, noteRef core.Ref) (core.Lifecycle, error) {
	if s.updateLifecycleNoteFn == nil {
		return core.Lifecycle{}, fmt.Errorf("update lifecycle note not configured")
	}
	return s.updateLifecycleNoteFn(ctx, signer, noteRef)
}

func (s stubMutatingService) GrantAccess(ctx context.Context, req core.GrantAccessRequest) (core.AccessEntry, error) {
	if s.grantAccessFn == nil {
		return core.AccessEntry{}, fmt.Errorf("grant access not configured")
	}
	return s.grantAccessFn(ctx, req)
}

func (s stubMutatingService) RevokeAccess(ctx context.Context, req core.RevokeAccessRequest) (core.AccessEntry, error) {
	if s.revokeAccessFn == nil {
		return core.AccessEntry{}, fmt.Errorf("revoke access not configured")
	}
	return s.revokeAccessFn(ctx, req)
}

func (s stubMutatingService) SetAccessRoles(ctx context.Context, req core.SetAccessRolesRequest) (core.AccessEntry, error) {
	if s.setAccessRolesFn == nil {
		return core.AccessEntry{}, fmt.Errorf("set access roles not configured")
	}
	return s.setAccessRolesFn(ctx, req)
}

func (s stubMutatingService) ClearAccess(ctx context.Context, signer, identity string, scope core.Scope) (core.AccessEntry, error) {
	if s.clearAccessFn == nil {
		return core.AccessEntry{}, fmt.Errorf("clear access not configured")
	}
	return s.clearAccessFn(ctx, signer, identity, scope)
}

func (s stubMutatingService) RegisterRepo(ctx context.Context, req core.RegisterRepoRequest) (core.Repo, error) {
	if s.registerRepoFn == nil {
		return core.Repo{}, fmt.Errorf("register repo not configured")
	}
	return s.registerRepoFn(ctx, req)
}

func (s stubMutatingService) UpdateRepo(ctx context.Context, req core.UpdateRepoRequest) (core.Repo, error) {
	if s.updateRepoFn == nil {
		return core.Repo{}, fmt.Errorf("update repo not configured")
	}
	return s.updateRepoFn(ctx, req)
}

func (s stubMutatingService) AddModule(ctx context.Context, signer, repoKey string) (core.Repo, error) {
	if s.addModuleFn == nil {
		return core.Repo{}, fmt.Errorf("add module not configured")
	}
	return s.addModuleFn(ctx, signer, repoKey)
}

func (s stubMutatingService) ArchiveModule(ctx context.Context, signer, repoKey string) (core.Repo, error) {
	if s.archiveModuleFn == nil {
		return core.Repo{}, fmt.Errorf("archive module not configured")
	}
	return s.archiveModuleFn(ctx, signer, repoKey)
}

func (s stubMutatingService) RecordObservation(ctx context.Context, req core.RecordObservationRequest) (core.Repo, error) {
	if s.recordObservationFn == nil {
		return core.Repo{}, fmt.Errorf("record observation not configured")
	}
	return s.recordObservationFn(ctx, req)
}

func (s stubMutatingService) RequestObservation(ctx context.Context, req core.RequestObservationRequest) error {
	if s.requestObservationFn == nil {
		return fmt.Errorf("request observation not configured")
	}
	return s.requestObservationFn(ctx, req)
}

func (s stubMutatingService) CreateFork(ctx context.Context, req core.CreateForkRequest) (core.Fork, error) {
	if s.createForkFn == nil {
		return core.Fork{}, fmt.Errorf("create fork not configured")
	}
	return s.createForkFn(ctx, req)
}

func (s stubMutatingService) UpdateFork(ctx context.Context, req core.UpdateForkRequest) (core.Fork, error) {
	if s.updateForkFn == nil {
		return core.Fork{}, fmt.Errorf("update fork not configured")
	}
	return s.updateForkFn(ctx, req)
}

func (s stubMutatingService) UpdateGlobalConfig(ctx context.Context, req core.UpdateGlobalConfigRequest) (core.GlobalConfig, error) {
	if s.updateGlobalConfigFn == nil {
		return core.GlobalConfig{}, fmt.Errorf("update global config not configured")
	}
	return s.updateGlobalConfigFn(ctx, req)
}

func (s stubMutatingService) TransferAdmin(ctx context.Context, signer, successor string) (core.GlobalConfig, error) {
	if s.transferAdminFn == nil {
		return core.GlobalConfig{}, fmt.Errorf("transfer admin not configured")
	}
	return s.transferAdminFn(ctx, signer, successor)
}

func (s stubMutatingService) SetEngineActive(ctx context.Context, signer string, active bool) (core.GlobalConfig, error) {
	if s.setEngineActiveFn == nil {
		return core.GlobalConfig{}, fmt.Errorf("set engine active not configured")
	}
	return s.setEngineActiveFn(ctx, signer, active)
}

func (s stubMutatingService) UpdateGlobalMetadata(ctx context.Context, req core.UpdateGlobalMetadataRequest) (core.GlobalMetadata, error) {
	if s.updateGlobalMetadataFn == nil {
		return core.GlobalMetadata{}, fmt.Errorf("update global metadata not configured")
	}
	return s.updateGlobalMetadataFn(ctx, req)
}
