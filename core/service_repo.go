package core

import (
	"context"
	"strings"
	"time"
)

// RegisterRepoRequest registers a codebase under the signer's ownership.
type RegisterRepoRequest struct {
	Signer           string
	Key              string
	Name             string
	URL              string
	Tags             string
	AllowObservation bool
}

// RegisterRepo creates a repository resource account and bumps the global
// repo total.
func (s *Service) RegisterRepo(ctx context.Context, req RegisterRepoRequest) (repo Repo, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": req.Signer, "repo_key": req.Key}
	defer func() {
		s.observeOperation(ctx, startedAt, "register_repo", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	config, err := s.loadGlobalConfig(ctx)
	if err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = config.AssertActive(); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if s.repoStore == nil {
		err = s.mapError(ErrNotInitialized)
		return Repo{}, err
	}
	if _, lookupErr := s.repoStore.Get(ctx, req.Key); lookupErr == nil {
		err = s.mapError(ErrAlreadyInitialized)
		return Repo{}, err
	} else if !isNotFound(lookupErr) {
		err = s.mapError(lookupErr)
		return Repo{}, err
	}

	now := s.now()
	repo, err = NewRepo(req.Key, req.Signer, req.Name, req.URL, req.Tags, req.AllowObservation, s.config.Limits, now)
	if err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = s.repoStore.Save(ctx, repo); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = s.bumpMetrics(ctx, func(m *Metrics, at time.Time) error {
		return m.RecordRepoRegistered(at)
	}); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	return repo, nil
}

// UpdateRepoRequest applies a partial update to a repository.
type UpdateRepoRequest struct {
	Signer string
	Key    string
	Update RepoUpdate
}

// UpdateRepo mutates repository fields. The owner or a maintainer for the
// repository may call it.
func (s *Service) UpdateRepo(ctx context.Context, req UpdateRepoRequest) (repo Repo, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": req.Signer, "repo_key": req.Key}
	defer func() {
		s.observeOperation(ctx, startedAt, "update_repo", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if s.repoStore == nil {
		err = s.mapError(ErrNotInitialized)
		return Repo{}, err
	}
	repo, err = s.repoStore.Get(ctx, req.Key)
	if err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = s.authorizeForResource(ctx, req.Signer, repo.Owner, repo.Key, RoleMaintainer); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = repo.ApplyUpdate(req.Update, s.config.Limits, s.now()); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = s.repoStore.Save(ctx, repo); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	return repo, nil
}

// AddModule bumps a repository's module counter against the configured
// ceiling.
func (s *Service) AddModule(ctx context.Context, signer, repoKey string) (repo Repo, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer, "repo_key": repoKey}
	defer func() {
		s.observeOperation(ctx, startedAt, "add_module", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	config, err := s.loadGlobalConfig(ctx)
	if err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if s.repoStore == nil {
		err = s.mapError(ErrNotInitialized)
		return Repo{}, err
	}
	repo, err = s.repoStore.Get(ctx, repoKey)
	if err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = s.authorizeForResource(ctx, signer, repo.Owner, repo.Key, RoleMaintainer); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = repo.AssertActive(); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = repo.IncrementModuleCount(config.MaxModulesPerRepo); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	repo.UpdatedAt = s.now()
	if err = s.repoStore.Save(ctx, repo); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	return repo, nil
}

// ArchiveModule decrements a repository's module counter.
func (s *Service) ArchiveModule(ctx context.Context, signer, repoKey string) (repo Repo, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": signer, "repo_key": repoKey}
	defer func() {
		s.observeOperation(ctx, startedAt, "archive_module", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if s.repoStore == nil {
		err = s.mapError(ErrNotInitialized)
		return Repo{}, err
	}
	repo, err = s.repoStore.Get(ctx, repoKey)
	if err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = s.authorizeForResource(ctx, signer, repo.Owner, repo.Key, RoleMaintainer); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = repo.AssertActive(); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = repo.DecrementModuleCount(); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	repo.UpdatedAt = s.now()
	if err = s.repoStore.Save(ctx, repo); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	return repo, nil
}

// RecordObservationRequest folds one completed observation run into a
// repository's aggregates and the global totals.
type RecordObservationRequest struct {
	Signer         string
	RepoKey        string
	LinesOfCode    uint64
	FilesProcessed uint32
}

// RecordObservation is called by workers reporting a finished run. The
// signer needs the observer role for the repository, or ownership.
func (s *Service) RecordObservation(ctx context.Context, req RecordObservationRequest) (repo Repo, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": req.Signer, "repo_key": req.RepoKey}
	defer func() {
		s.observeOperation(ctx, startedAt, "record_observation", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if s.repoStore == nil {
		err = s.mapError(ErrNotInitialized)
		return Repo{}, err
	}
	repo, err = s.repoStore.Get(ctx, req.RepoKey)
	if err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = s.authorizeForResource(ctx, req.Signer, repo.Owner, repo.Key, RoleObserver); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = repo.AssertActive(); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = repo.AssertObservationAllowed(); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = repo.RecordObservation(req.LinesOfCode, req.FilesProcessed, s.config.Limits, s.now()); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = s.repoStore.Save(ctx, repo); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	if err = s.bumpMetrics(ctx, func(m *Metrics, at time.Time) error {
		return m.RecordObservation(req.LinesOfCode, at)
	}); err != nil {
		err = s.mapError(err)
		return Repo{}, err
	}
	return repo, nil
}

// RequestObservationRequest schedules an asynchronous observation run.
type RequestObservationRequest struct {
	Signer         string
	RepoKey        string
	IdempotencyKey string
	Parameters     map[string]any
}

// RequestObservation hands a run to the background worker fleet. The
// repository must be active and observable at enqueue time; the worker
// re-validates when it reports back through RecordObservation.
func (s *Service) RequestObservation(ctx context.Context, req RequestObservationRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": req.Signer, "repo_key": req.RepoKey}
	defer func() {
		s.observeOperation(ctx, startedAt, "request_observation", err, fields)
	}()

	if s == nil || s.observationEnqueuer == nil {
		err = s.mapError(ErrObservationNotAllowed)
		return err
	}
	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return err
	}
	if s.repoStore == nil {
		err = s.mapError(ErrNotInitialized)
		return err
	}
	repo, loadErr := s.repoStore.Get(ctx, req.RepoKey)
	if loadErr != nil {
		err = s.mapError(loadErr)
		return err
	}
	if err = s.authorizeForResource(ctx, req.Signer, repo.Owner, repo.Key, RoleObserver); err != nil {
		err = s.mapError(err)
		return err
	}
	if err = repo.AssertActive(); err != nil {
		err = s.mapError(err)
		return err
	}
	if err = repo.AssertObservationAllowed(); err != nil {
		err = s.mapError(err)
		return err
	}
	if err = s.observationEnqueuer.Enqueue(ctx, &ObservationJobMessage{
		RepoKey:        repo.Key,
		RequestedBy:    strings.TrimSpace(req.Signer),
		IdempotencyKey: strings.TrimSpace(req.IdempotencyKey),
		Parameters:     copyAnyMap(req.Parameters),
	}); err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

// GetRepo returns a stored repository account.
func (s *Service) GetRepo(ctx context.Context, key string) (Repo, error) {
	if s == nil || s.repoStore == nil {
		return Repo{}, s.mapError(ErrNotInitialized)
	}
	repo, err := s.repoStore.Get(ctx, key)
	if err != nil {
		return Repo{}, s.mapError(err)
	}
	return repo, nil
}

// ListRepos returns repositories, optionally filtered by owner.
func (s *Service) ListRepos(ctx context.Context, owner string) ([]Repo, error) {
	if s == nil || s.repoStore == nil {
		return nil, s.mapError(ErrNotInitialized)
	}
	repos, err := s.repoStore.List(ctx, owner)
	if err != nil {
		return nil, s.mapError(err)
	}
	return repos, nil
}

func (s *Service) bumpMetrics(ctx context.Context, apply func(*Metrics, time.Time) error) error {
	if s == nil || s.metricsStore == nil {
		return nil
	}
	metrics, err := s.metricsStore.Load(ctx)
	if err != nil {
		if isNotFound(err) {
			metrics = NewMetrics(s.now())
		} else {
			return err
		}
	}
	if err := apply(&metrics, s.now()); err != nil {
		return err
	}
	return s.metricsStore.Save(ctx, metrics)
}

func copyAnyMap(values map[string]any) map[string]any {
	if len(values) == 0 {
		return nil
	}
	copied := make(map[string]any, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return copied
}
