package sqlstore

import (
	"github.com/VitorBSK/Unit9-Raccoon/core"
)

func refColumn(ref core.Ref) []byte {
	if ref.IsZero() {
		return nil
	}
	out := make([]byte, len(ref))
	copy(out, ref[:])
	return out
}

func refFromColumn(value []byte) (core.Ref, error) {
	if len(value) == 0 {
		return core.Ref{}, nil
	}
	return core.RefFromBytes(value)
}

func newLifecycleRecord(lifecycle core.Lifecycle) *lifecycleRecord {
	return &lifecycleRecord{
		Slot:                    singletonSlot,
		Phase:                   uint8(lifecycle.Phase),
		GlobalFreeze:            lifecycle.GlobalFreeze,
		MigrationRequired:       lifecycle.MigrationRequired,
		MigrationInProgress:     lifecycle.MigrationInProgress,
		PhaseChangedAt:          lifecycle.PhaseChangedAt,
		MigrationStateChangedAt: lifecycle.MigrationStateChangedAt,
		NoteRef:                 refColumn(lifecycle.NoteRef),
		CreatedAt:               lifecycle.CreatedAt,
		UpdatedAt:               lifecycle.UpdatedAt,
		SchemaVersion:           lifecycle.SchemaVersion,
	}
}

func (r *lifecycleRecord) toDomain() (core.Lifecycle, error) {
	if r == nil {
		return core.Lifecycle{}, nil
	}
	phase, err := core.ParsePhase(r.Phase)
	if err != nil {
		return core.Lifecycle{}, err
	}
	noteRef, err := refFromColumn(r.NoteRef)
	if err != nil {
		return core.Lifecycle{}, err
	}
	return core.Lifecycle{
		Phase:                   phase,
		GlobalFreeze:            r.GlobalFreeze,
		MigrationRequired:       r.MigrationRequired,
		MigrationInProgress:     r.MigrationInProgress,
		PhaseChangedAt:          r.PhaseChangedAt,
		MigrationStateChangedAt: r.MigrationStateChangedAt,
		NoteRef:                 noteRef,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
		SchemaVersion:           r.SchemaVersion,
	}, nil
}

func newGlobalConfigRecord(config core.GlobalConfig) *globalConfigRecord {
	return &globalConfigRecord{
		Slot:              singletonSlot,
		Admin:             config.Admin,
		FeeBps:            config.FeeBps,
		MaxModulesPerRepo: config.MaxModulesPerRepo,
		PolicyRef:         refColumn(config.PolicyRef),
		Active:            config.Active,
		CreatedAt:         config.CreatedAt,
		UpdatedAt:         config.UpdatedAt,
		SchemaVersion:     config.SchemaVersion,
	}
}

func (r *globalConfigRecord) toDomain() (core.GlobalConfig, error) {
	if r == nil {
		return core.GlobalConfig{}, nil
	}
	policyRef, err := refFromColumn(r.PolicyRef)
	if err != nil {
		return core.GlobalConfig{}, err
	}
	return core.GlobalConfig{
		Admin:             r.Admin,
		FeeBps:            r.FeeBps,
		MaxModulesPerRepo: r.MaxModulesPerRepo,
		PolicyRef:         policyRef,
		Active:            r.Active,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		SchemaVersion:     r.SchemaVersion,
	}, nil
}

func newGlobalMetadataRecord(metadata core.GlobalMetadata) *globalMetadataRecord {
	return &globalMetadataRecord{
		Slot:          singletonSlot,
		Name:          metadata.Name,
		Description:   metadata.Description,
		IconURI:       metadata.IconURI,
		ProjectURL:    metadata.ProjectURL,
		ContactURL:    metadata.ContactURL,
		DocsURL:       metadata.DocsURL,
		ExtraJSON:     metadata.ExtraJSON,
		CreatedAt:     metadata.CreatedAt,
		UpdatedAt:     metadata.UpdatedAt,
		SchemaVersion: metadata.SchemaVersion,
	}
}

func (r *globalMetadataRecord) toDomain() core.GlobalMetadata {
	if r == nil {
		return core.GlobalMetadata{}
	}
	return core.GlobalMetadata{
		Name:          r.Name,
		Description:   r.Description,
		IconURI:       r.IconURI,
		ProjectURL:    r.ProjectURL,
		ContactURL:    r.ContactURL,
		DocsURL:       r.DocsURL,
		ExtraJSON:     r.ExtraJSON,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		SchemaVersion: r.SchemaVersion,
	}
}

func newMetricsRecord(metrics core.Metrics) *metricsRecord {
	return &metricsRecord{
		Slot:              singletonSlot,
		TotalRepos:        metrics.TotalRepos,
		TotalForks:        metrics.TotalForks,
		TotalObservations: metrics.TotalObservations,
		TotalLinesOfCode:  metrics.TotalLinesOfCode,
		UpdatedAt:         metrics.UpdatedAt,
		SchemaVersion:     metrics.SchemaVersion,
	}
}

func (r *metricsRecord) toDomain() core.Metrics {
	if r == nil {
		return core.Metrics{}
	}
	return core.Metrics{
		TotalRepos:        r.TotalRepos,
		TotalForks:        r.TotalForks,
		TotalObservations: r.TotalObservations,
		TotalLinesOfCode:  r.TotalLinesOfCode,
		UpdatedAt:         r.UpdatedAt,
		SchemaVersion:     r.SchemaVersion,
	}
}

func newAccessEntryRecord(entry core.AccessEntry) *accessEntryRecord {
	return &accessEntryRecord{
		Identity:      entry.Identity,
		Roles:         uint64(entry.Roles),
		ScopeGlobal:   entry.Scope.IsGlobal(),
		ScopeResource: entry.Scope.ResourceID(),
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
		SchemaVersion: entry.SchemaVersion,
	}
}

func (r *accessEntryRecord) toDomain() core.AccessEntry {
	if r == nil {
		return core.AccessEntry{}
	}
	return core.AccessEntry{
		Identity:      r.Identity,
		Roles:         core.Role(r.Roles),
		Scope:         core.ScopeFrom(r.ScopeGlobal, r.ScopeResource),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		SchemaVersion: r.SchemaVersion,
	}
}

func newRepoRecord(repo core.Repo) *repoRecord {
	return &repoRecord{
		Key:                 repo.Key,
		Owner:               repo.Owner,
		Name:                repo.Name,
		URL:                 repo.URL,
		Tags:                repo.Tags,
		Active:              repo.Active,
		AllowObservation:    repo.AllowObservation,
		ModuleCount:         repo.ModuleCount,
		ObservationCount:    repo.ObservationCount,
		TotalLinesOfCode:    repo.TotalLinesOfCode,
		TotalFilesProcessed: repo.TotalFilesProcessed,
		CreatedAt:           repo.CreatedAt,
		UpdatedAt:           repo.UpdatedAt,
		SchemaVersion:       repo.SchemaVersion,
	}
}

func (r *repoRecord) toDomain() core.Repo {
	if r == nil {
		return core.Repo{}
	}
	return core.Repo{
		Key:                 r.Key,
		Owner:               r.Owner,
		Name:                r.Name,
		URL:                 r.URL,
		Tags:                r.Tags,
		Active:              r.Active,
		AllowObservation:    r.AllowObservation,
		ModuleCount:         r.ModuleCount,
		ObservationCount:    r.ObservationCount,
		TotalLinesOfCode:    r.TotalLinesOfCode,
		TotalFilesProcessed: r.TotalFilesProcessed,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
		SchemaVersion:       r.SchemaVersion,
	}
}

func newForkRecord(fork core.Fork) *forkRecord {
	return &forkRecord{
		Key:           fork.Key,
		Owner:         fork.Owner,
		Label:         fork.Label,
		MetadataURI:   fork.MetadataURI,
		Tags:          fork.Tags,
		Active:        fork.Active,
		ParentKey:     fork.ParentKey,
		Depth:         fork.Depth,
		CreatedAt:     fork.CreatedAt,
		UpdatedAt:     fork.UpdatedAt,
		SchemaVersion: fork.SchemaVersion,
	}
}

func (r *forkRecord) toDomain() core.Fork {
	if r == nil {
		return core.Fork{}
	}
	return core.Fork{
		Key:           r.Key,
		Owner:         r.Owner,
		Label:         r.Label,
		MetadataURI:   r.MetadataURI,
		Tags:          r.Tags,
		Active:        r.Active,
		ParentKey:     r.ParentKey,
		Depth:         r.Depth,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		SchemaVersion: r.SchemaVersion,
	}
}
