package core

import (
	"context"
	"time"
)

// UpdateGlobalConfigRequest amends the deployment settings account.
type UpdateGlobalConfigRequest struct {
	Signer string
	Update GlobalConfigUpdate
}

// UpdateGlobalConfig applies a partial update to the settings account.
// Admin only. Unlike resource mutations this passes through the write gate
// so config churn freezes along with everything else.
func (s *Service) UpdateGlobalConfig(ctx context.Context, req UpdateGlobalConfigRequest) (config GlobalConfig, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": req.Signer}
	defer func() {
		s.observeOperation(ctx, startedAt, "update_global_config", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	config, err = s.requireAdmin(ctx, req.Signer)
	if err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	if err = config.ApplyUpdate(req.Update, s.now()); err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	if err = s.configStore.Save(ctx, config); err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	return config, nil
}

// TransferAdmin hands the admin identity to a new signer and seeds the
// successor's global admin access entry.
func (s *Service) TransferAdmin(ctx context.Context, signer, successor string) (config GlobalConfig, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer, "successor": successor}
	defer func() {
		s.observeOperation(ctx, startedAt, "transfer_admin", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	config, err = s.requireAdmin(ctx, signer)
	if err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	if err = config.ApplyUpdate(GlobalConfigUpdate{Admin: &successor}, s.now()); err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	if err = s.configStore.Save(ctx, config); err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	if s.authorityStore != nil {
		entry, entryErr := NewAccessEntry(config.Admin, RoleAdmin, GlobalScope(), s.now())
		if entryErr == nil {
			if existing, lookupErr := s.authorityStore.Get(ctx, config.Admin, GlobalScope()); lookupErr == nil {
				if grantErr := existing.GrantRoles(RoleAdmin, s.now()); grantErr == nil {
					entry = existing
				}
			}
			if saveErr := s.authorityStore.Save(ctx, entry); saveErr != nil {
				err = s.mapError(saveErr)
				return GlobalConfig{}, err
			}
		}
	}
	return config, nil
}

// SetEngineActive toggles the settings-level activation flag.
func (s *Service) SetEngineActive(ctx context.Context, signer string, active bool) (config GlobalConfig, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer, "active": active}
	defer func() {
		s.observeOperation(ctx, startedAt, "set_engine_active", err, fields)
	}()

	// Reactivation must not be blocked by the state it is meant to undo, so
	// this skips the write gate like the lifecycle controls do.
	config, err = s.requireAdmin(ctx, signer)
	if err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	if err = config.ApplyUpdate(GlobalConfigUpdate{Active: &active}, s.now()); err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	if err = s.configStore.Save(ctx, config); err != nil {
		err = s.mapError(err)
		return GlobalConfig{}, err
	}
	return config, nil
}

// UpdateGlobalMetadataRequest amends the descriptive metadata account.
type UpdateGlobalMetadataRequest struct {
	Signer string
	Update GlobalMetadataUpdate
}

// UpdateGlobalMetadata applies a partial update to the metadata account,
// creating it lazily on first use. Field content is not inspected beyond
// length caps.
func (s *Service) UpdateGlobalMetadata(ctx context.Context, req UpdateGlobalMetadataRequest) (metadata GlobalMetadata, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": req.Signer}
	defer func() {
		s.observeOperation(ctx, startedAt, "update_global_metadata", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return GlobalMetadata{}, err
	}
	if _, err = s.requireAdmin(ctx, req.Signer); err != nil {
		err = s.mapError(err)
		return GlobalMetadata{}, err
	}
	if s.metadataStore == nil {
		err = s.mapError(ErrNotInitialized)
		return GlobalMetadata{}, err
	}

	metadata, loadErr := s.metadataStore.Load(ctx)
	if loadErr != nil {
		if !isNotFound(loadErr) {
			err = s.mapError(loadErr)
			return GlobalMetadata{}, err
		}
		metadata = NewGlobalMetadata(s.now())
	}
	if err = metadata.ApplyUpdate(req.Update, s.config.Limits, s.now()); err != nil {
		err = s.mapError(err)
		return GlobalMetadata{}, err
	}
	if err = s.metadataStore.Save(ctx, metadata); err != nil {
		err = s.mapError(err)
		return GlobalMetadata{}, err
	}
	return metadata, nil
}

// GlobalConfigSnapshot returns the stored settings account.
func (s *Service) GlobalConfigSnapshot(ctx context.Context) (GlobalConfig, error) {
	config, err := s.loadGlobalConfig(ctx)
	if err != nil {
		return GlobalConfig{}, s.mapError(err)
	}
	return config, nil
}

// GlobalMetadataSnapshot returns the stored metadata account.
func (s *Service) GlobalMetadataSnapshot(ctx context.Context) (GlobalMetadata, error) {
	if s == nil || s.metadataStore == nil {
		return GlobalMetadata{}, s.mapError(ErrNotInitialized)
	}
	metadata, err := s.metadataStore.Load(ctx)
	if err != nil {
		if isNotFound(err) {
			return GlobalMetadata{}, s.mapError(ErrNotInitialized)
		}
		return GlobalMetadata{}, s.mapError(err)
	}
	return metadata, nil
}

// MetricsSnapshot returns the stored aggregate counters.
func (s *Service) MetricsSnapshot(ctx context.Context) (Metrics, error) {
	if s == nil || s.metricsStore == nil {
		return Metrics{}, s.mapError(ErrNotInitialized)
	}
	metrics, err := s.metricsStore.Load(ctx)
	if err != nil {
		if isNotFound(err) {
			return Metrics{}, s.mapError(ErrNotInitialized)
		}
		return Metrics{}, s.mapError(err)
	}
	return metrics, nil
}
