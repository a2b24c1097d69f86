package core

import (
	"context"
	"time"
)

// CreateForkRequest derives a new deployment from an existing fork or from
// the deployment root when ParentKey names a repository-level origin.
type CreateForkRequest struct {
	Signer      string
	Key         string
	Label       string
	MetadataURI string
	Tags        string
	ParentKey   string
}

// CreateFork creates a fork one level below its parent. The parent must
// exist and be active; its depth seeds the child's.
func (s *Service) CreateFork(ctx context.Context, req CreateForkRequest) (fork Fork, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": req.Signer, "fork_key": req.Key}
	defer func() {
		s.observeOperation(ctx, startedAt, "create_fork", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	config, err := s.loadGlobalConfig(ctx)
	if err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	if err = config.AssertActive(); err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	if s.forkStore == nil {
		err = s.mapError(ErrNotInitialized)
		return Fork{}, err
	}
	if _, lookupErr := s.forkStore.Get(ctx, req.Key); lookupErr == nil {
		err = s.mapError(ErrAlreadyInitialized)
		return Fork{}, err
	} else if !isNotFound(lookupErr) {
		err = s.mapError(lookupErr)
		return Fork{}, err
	}

	var parentDepth uint16
	parent, parentErr := s.forkStore.Get(ctx, req.ParentKey)
	switch {
	case parentErr == nil:
		if err = parent.AssertActive(); err != nil {
			err = s.mapError(err)
			return Fork{}, err
		}
		parentDepth = parent.Depth
	case isNotFound(parentErr):
		// Root-level fork: the parent is a repository, depth starts at zero.
		if s.repoStore == nil {
			err = s.mapError(ErrNotInitialized)
			return Fork{}, err
		}
		repo, repoErr := s.repoStore.Get(ctx, req.ParentKey)
		if repoErr != nil {
			err = s.mapError(repoErr)
			return Fork{}, err
		}
		if err = repo.AssertActive(); err != nil {
			err = s.mapError(err)
			return Fork{}, err
		}
	default:
		err = s.mapError(parentErr)
		return Fork{}, err
	}

	fork, err = NewFork(req.Key, req.Signer, req.Label, req.MetadataURI, req.Tags, req.ParentKey, parentDepth, s.config.Limits, s.now())
	if err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	if err = s.forkStore.Save(ctx, fork); err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	if err = s.bumpMetrics(ctx, func(m *Metrics, at time.Time) error {
		return m.RecordForkCreated(at)
	}); err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	return fork, nil
}

// UpdateForkRequest applies a partial update to a fork's descriptive
// fields. Parent linkage cannot be changed after creation.
type UpdateForkRequest struct {
	Signer string
	Key    string
	Update ForkUpdate
}

// UpdateFork mutates fork fields. The owner or a maintainer for the fork
// may call it.
func (s *Service) UpdateFork(ctx context.Context, req UpdateForkRequest) (fork Fork, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"identity": req.Signer, "fork_key": req.Key}
	defer func() {
		s.observeOperation(ctx, startedAt, "update_fork", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	if s.forkStore == nil {
		err = s.mapError(ErrNotInitialized)
		return Fork{}, err
	}
	fork, err = s.forkStore.Get(ctx, req.Key)
	if err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	if err = s.authorizeForResource(ctx, req.Signer, fork.Owner, fork.Key, RoleMaintainer); err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	if err = fork.ApplyUpdate(req.Update, s.config.Limits, s.now()); err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	if err = s.forkStore.Save(ctx, fork); err != nil {
		err = s.mapError(err)
		return Fork{}, err
	}
	return fork, nil
}

// GetFork returns a stored fork account.
func (s *Service) GetFork(ctx context.Context, key string) (Fork, error) {
	if s == nil || s.forkStore == nil {
		return Fork{}, s.mapError(ErrNotInitialized)
	}
	fork, err := s.forkStore.Get(ctx, key)
	if err != nil {
		return Fork{}, s.mapError(err)
	}
	return fork, nil
}

// ListForks returns forks derived from a parent key.
func (s *Service) ListForks(ctx context.Context, parentKey string) ([]Fork, error) {
	if s == nil || s.forkStore == nil {
		return nil, s.mapError(ErrNotInitialized)
	}
	forks, err := s.forkStore.ListByParent(ctx, parentKey)
	if err != nil {
		return nil, s.mapError(err)
	}
	return forks, nil
}
