package raccoon_test

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"

	raccoon "github.com/VitorBSK/Unit9-Raccoon"
	"github.com/VitorBSK/Unit9-Raccoon/adapters/gocommand"
	raccooncommand "github.com/VitorBSK/Unit9-Raccoon/command"
	"github.com/VitorBSK/Unit9-Raccoon/core"
	raccoonquery "github.com/VitorBSK/Unit9-Raccoon/query"
)

// Drives a full deployment sequence through the facade's dispatched
// command wrappers: bootstrap, open the deployment, register a repo,
// grant observer access, report an observation run, then read the
// aggregate counters back.
func TestComposition_FacadeDispatchEndToEnd(t *testing.T) {
	ctx := context.Background()

	svc, err := raccoon.NewService(raccoon.DefaultConfig(),
		raccoon.WithRepositoryFactory(core.NewMemoryStoreProvider()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	facade, err := raccoon.NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	adapter := gocommand.NewRegistryAdapter(gocmd.NewRegistry())
	commands := facade.Commands()

	subscriptions := []interface{ Unsubscribe() }{}
	registerCommand := func(register func() (interface{ Unsubscribe() }, error)) {
		t.Helper()
		sub, registerErr := register()
		if registerErr != nil {
			t.Fatalf("register command wrapper: %v", registerErr)
		}
		subscriptions = append(subscriptions, sub)
	}
	registerCommand(func() (interface{ Unsubscribe() }, error) {
		return gocommand.RegisterAndSubscribe(adapter, commands.Bootstrap)
	})
	registerCommand(func() (interface{ Unsubscribe() }, error) {
		return gocommand.RegisterAndSubscribe(adapter, commands.SetPhase)
	})
	registerCommand(func() (interface{ Unsubscribe() }, error) {
		return gocommand.RegisterAndSubscribe(adapter, commands.RegisterRepo)
	})
	registerCommand(func() (interface{ Unsubscribe() }, error) {
		return gocommand.RegisterAndSubscribe(adapter, commands.GrantAccess)
	})
	registerCommand(func() (interface{ Unsubscribe() }, error) {
		return gocommand.RegisterAndSubscribe(adapter, commands.RecordObservation)
	})
	defer func() {
		for _, sub := range subscriptions {
			sub.Unsubscribe()
		}
	}()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}

	if err := gocommand.Dispatch(ctx, raccooncommand.BootstrapMessage{
		Request: core.BootstrapRequest{Admin: "admin", FeeBps: 100},
	}); err != nil {
		t.Fatalf("dispatch bootstrap: %v", err)
	}

	if err := gocommand.Dispatch(ctx, raccooncommand.SetPhaseMessage{
		Signer: "admin",
		Phase:  core.PhaseOperational,
	}); err != nil {
		t.Fatalf("dispatch set phase: %v", err)
	}

	if err := gocommand.Dispatch(ctx, raccooncommand.RegisterRepoMessage{
		Request: core.RegisterRepoRequest{
			Signer:           "alice",
			Key:              "alice/widgets",
			Name:             "widgets",
			URL:              "https://example.com/widgets",
			AllowObservation: true,
		},
	}); err != nil {
		t.Fatalf("dispatch register repo: %v", err)
	}

	if err := gocommand.Dispatch(ctx, raccooncommand.GrantAccessMessage{
		Request: core.GrantAccessRequest{
			Signer:   "admin",
			Identity: "worker",
			Roles:    core.RoleObserver,
			Scope:    core.ScopedTo("alice/widgets"),
		},
	}); err != nil {
		t.Fatalf("dispatch grant access: %v", err)
	}

	allowed, err := facade.Queries().CheckAccess.Query(ctx, raccoonquery.CheckAccessMessage{
		Signer:     "worker",
		Required:   core.RoleObserver,
		ResourceID: "alice/widgets",
	})
	if err != nil {
		t.Fatalf("query check access: %v", err)
	}
	if !allowed {
		t.Fatalf("expected granted observer to pass the access check")
	}

	if err := gocommand.Dispatch(ctx, raccooncommand.RecordObservationMessage{
		Request: core.RecordObservationRequest{
			Signer:         "worker",
			RepoKey:        "alice/widgets",
			LinesOfCode:    4200,
			FilesProcessed: 17,
		},
	}); err != nil {
		t.Fatalf("dispatch record observation: %v", err)
	}

	repo, err := facade.Queries().GetRepo.Query(ctx, raccoonquery.GetRepoMessage{Key: "alice/widgets"})
	if err != nil {
		t.Fatalf("query repo: %v", err)
	}
	if repo.ObservationCount != 1 || repo.TotalLinesOfCode != 4200 {
		t.Fatalf("unexpected repo counters after observation: %+v", repo)
	}

	metrics, err := facade.Queries().MetricsSnapshot.Query(ctx, raccoonquery.MetricsSnapshotMessage{})
	if err != nil {
		t.Fatalf("query metrics snapshot: %v", err)
	}
	if metrics.TotalRepos != 1 || metrics.TotalObservations != 1 || metrics.TotalLinesOfCode != 4200 {
		t.Fatalf("unexpected aggregate counters: %+v", metrics)
	}
}
