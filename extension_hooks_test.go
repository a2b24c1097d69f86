package raccoon

import (
	"fmt"
	"testing"
)

func TestExtensionHooks_RegisterAndBuildBundles(t *testing.T) {
	hooks := NewExtensionHooks()

	if err := hooks.RegisterCommandQueryBundle("reporting_bundle", func(service CommandQueryService) (any, error) {
		return map[string]any{
			"lifecycle_fn": service.LifecycleStatus,
			"metrics_fn":   service.MetricsSnapshot,
		}, nil
	}); err != nil {
		t.Fatalf("register bundle: %v", err)
	}
	if err := hooks.RegisterCommandQueryBundle("reporting_bundle", func(CommandQueryService) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate bundle registration error")
	}
	if err := hooks.RegisterCommandQueryBundle("  ", func(CommandQueryService) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected blank bundle name error")
	}
	if err := hooks.RegisterCommandQueryBundle("broken_bundle", nil); err == nil {
		t.Fatalf("expected nil factory error")
	}

	if err := hooks.RegisterCommandQueryBundle("admin_bundle", func(service CommandQueryService) (any, error) {
		return map[string]any{"transfer_fn": service.TransferAdmin}, nil
	}); err != nil {
		t.Fatalf("register second bundle: %v", err)
	}

	names := hooks.BundleNames()
	if len(names) != 2 || names[0] != "admin_bundle" || names[1] != "reporting_bundle" {
		t.Fatalf("expected deterministic bundle name ordering, got %#v", names)
	}

	svc := newFacadeTestService(t)
	bundles, err := hooks.BuildCommandQueryBundles(svc)
	if err != nil {
		t.Fatalf("build bundles: %v", err)
	}
	if len(bundles) != 2 {
		t.Fatalf("expected two bundles, got %d", len(bundles))
	}
	if _, ok := bundles["reporting_bundle"]; !ok {
		t.Fatalf("expected reporting_bundle entry in built bundles")
	}
}

func TestExtensionHooks_FactoryFailureAbortsBuild(t *testing.T) {
	hooks := NewExtensionHooks()
	if err := hooks.RegisterCommandQueryBundle("failing_bundle", func(CommandQueryService) (any, error) {
		return nil, fmt.Errorf("bundle construction failed")
	}); err != nil {
		t.Fatalf("register bundle: %v", err)
	}

	svc := newFacadeTestService(t)
	if _, err := hooks.BuildCommandQueryBundles(svc); err == nil {
		t.Fatalf("expected factory failure to abort the build")
	}

	if _, err := hooks.BuildCommandQueryBundles(nil); err == nil {
		t.Fatalf("expected nil service to be rejected")
	}
}
