package core

import (
	"context"
	"time"
)

// BootstrapRequest seeds every deployment-level account in one shot.
type BootstrapRequest struct {
	Admin             string
	FeeBps            uint16
	MaxModulesPerRepo uint32
	PolicyRef         Ref
	NoteRef           Ref
}

// BootstrapResult carries the freshly created deployment accounts.
type BootstrapResult struct {
	Lifecycle Lifecycle
	Config    GlobalConfig
	Metadata  GlobalMetadata
	Metrics   Metrics
}

// Bootstrap initializes the deployment exactly once. A second call fails
// with ErrAlreadyInitialized regardless of the signer.
func (s *Service) Bootstrap(ctx context.Context, req BootstrapRequest) (result BootstrapResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": req.Admin}
	defer func() {
		s.observeOperation(ctx, startedAt, "bootstrap", err, fields)
	}()

	if s == nil || s.lifecycleStore == nil || s.configStore == nil ||
		s.metadataStore == nil || s.metricsStore == nil || s.authorityStore == nil {
		err = s.mapError(ErrNotInitialized)
		return BootstrapResult{}, err
	}

	if _, loadErr := s.lifecycleStore.Load(ctx); loadErr == nil {
		err = s.mapError(ErrAlreadyInitialized)
		return BootstrapResult{}, err
	} else if !isNotFound(loadErr) {
		err = s.mapError(loadErr)
		return BootstrapResult{}, err
	}

	ceiling := req.MaxModulesPerRepo
	if ceiling == 0 {
		ceiling = s.config.Limits.DefaultMaxModulesPerRepo
	}

	now := s.now()
	config, err := NewGlobalConfig(req.Admin, req.FeeBps, ceiling, req.PolicyRef, now)
	if err != nil {
		err = s.mapError(err)
		return BootstrapResult{}, err
	}
	lifecycle := NewLifecycle(req.NoteRef, now)
	metadata := NewGlobalMetadata(now)
	metrics := NewMetrics(now)

	adminEntry, err := NewAccessEntry(config.Admin, RoleAdmin, GlobalScope(), now)
	if err != nil {
		err = s.mapError(err)
		return BootstrapResult{}, err
	}

	if err = s.configStore.Save(ctx, config); err != nil {
		err = s.mapError(err)
		return BootstrapResult{}, err
	}
	if err = s.metadataStore.Save(ctx, metadata); err != nil {
		err = s.mapError(err)
		return BootstrapResult{}, err
	}
	if err = s.metricsStore.Save(ctx, metrics); err != nil {
		err = s.mapError(err)
		return BootstrapResult{}, err
	}
	if err = s.authorityStore.Save(ctx, adminEntry); err != nil {
		err = s.mapError(err)
		return BootstrapResult{}, err
	}
	// Lifecycle lands last so a partial bootstrap stays retryable.
	if err = s.lifecycleStore.Save(ctx, lifecycle); err != nil {
		err = s.mapError(err)
		return BootstrapResult{}, err
	}

	result = BootstrapResult{
		Lifecycle: lifecycle,
		Config:    config,
		Metadata:  metadata,
		Metrics:   metrics,
	}
	return result, nil
}

// SetPhase moves the deployment to a new lifecycle phase. Phase changes
// are admin operations and are deliberately exempt from the write gate so
// a restricted deployment can always be steered back out.
func (s *Service) SetPhase(ctx context.Context, signer string, next Phase) (lifecycle Lifecycle, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer, "phase": next.String()}
	defer func() {
		s.observeOperation(ctx, startedAt, "set_phase", err, fields)
	}()

	lifecycle, err = s.loadLifecycle(ctx)
	if err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if _, err = s.requireAdmin(ctx, signer); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if err = lifecycle.SetPhase(next, s.now()); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if err = s.lifecycleStore.Save(ctx, lifecycle); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	return lifecycle, nil
}

// SetGlobalFreeze toggles the emergency write freeze.
func (s *Service) SetGlobalFreeze(ctx context.Context, signer string, frozen bool) (lifecycle Lifecycle, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer, "frozen": frozen}
	defer func() {
		s.observeOperation(ctx, startedAt, "set_global_freeze", err, fields)
	}()

	lifecycle, err = s.loadLifecycle(ctx)
	if err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if _, err = s.requireAdmin(ctx, signer); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	lifecycle.SetGlobalFreeze(frozen, s.now())
	if err = s.lifecycleStore.Save(ctx, lifecycle); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	return lifecycle, nil
}

// RequireMigration flags the deployment as needing a data migration.
func (s *Service) RequireMigration(ctx context.Context, signer string) (lifecycle Lifecycle, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer}
	defer func() {
		s.observeOperation(ctx, startedAt, "require_migration", err, fields)
	}()

	lifecycle, err = s.loadLifecycle(ctx)
	if err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if _, err = s.requireAdmin(ctx, signer); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	lifecycle.RequireMigration(s.now())
	if err = s.lifecycleStore.Save(ctx, lifecycle); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	return lifecycle, nil
}

// StartMigration begins a flagged migration and forces the migration phase.
func (s *Service) StartMigration(ctx context.Context, signer string) (lifecycle Lifecycle, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer}
	defer func() {
		s.observeOperation(ctx, startedAt, "start_migration", err, fields)
	}()

	lifecycle, err = s.loadLifecycle(ctx)
	if err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if _, err = s.requireAdmin(ctx, signer); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if err = lifecycle.StartMigration(s.now()); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if err = s.lifecycleStore.Save(ctx, lifecycle); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	return lifecycle, nil
}

// CompleteMigration finishes an in-progress migration and lands the
// deployment in the requested phase.
func (s *Service) CompleteMigration(ctx context.Context, signer string, next Phase) (lifecycle Lifecycle, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer, "phase": next.String()}
	defer func() {
		s.observeOperation(ctx, startedAt, "complete_migration", err, fields)
	}()

	lifecycle, err = s.loadLifecycle(ctx)
	if err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if _, err = s.requireAdmin(ctx, signer); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if err = lifecycle.CompleteMigration(next, s.now()); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if err = s.lifecycleStore.Save(ctx, lifecycle); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	return lifecycle, nil
}

// UpdateLifecycleNote replaces the opaque note reference on the lifecycle
// account.
func (s *Service) UpdateLifecycleNote(ctx context.Context, signer string, noteRef Ref) (lifecycle Lifecycle, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer}
	defer func() {
		s.observeOperation(ctx, startedAt, "update_lifecycle_note", err, fields)
	}()

	lifecycle, err = s.loadLifecycle(ctx)
	if err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	if _, err = s.requireAdmin(ctx, signer); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	lifecycle.UpdateNoteRef(noteRef, s.now())
	if err = s.lifecycleStore.Save(ctx, lifecycle); err != nil {
		err = s.mapError(err)
		return Lifecycle{}, err
	}
	return lifecycle, nil
}

// LifecycleStatus returns the stored lifecycle account.
func (s *Service) LifecycleStatus(ctx context.Context) (Lifecycle, error) {
	lifecycle, err := s.loadLifecycle(ctx)
	if err != nil {
		return Lifecycle{}, s.mapError(err)
	}
	return lifecycle, nil
}

// IsReadOnly reports whether reads of derived state should be treated as
// frozen. Write restriction is the wider net; this covers frozen and
// sunset phases only.
func (s *Service) IsReadOnly(ctx context.Context) (bool, error) {
	lifecycle, err := s.loadLifecycle(ctx)
	if err != nil {
		return false, s.mapError(err)
	}
	readOnly, err := lifecycle.IsEffectivelyReadOnly()
	if err != nil {
		return false, s.mapError(err)
	}
	return readOnly, nil
}
