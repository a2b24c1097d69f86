package query

import (
	"context"
	"errors"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

type LifecycleReader interface {
	LifecycleStatus(ctx context.Context) (core.Lifecycle, error)
	ExportLifecycleRecord(ctx context.Context) ([]byte, error)
}

type RepoReader interface {
	GetRepo(ctx context.Context, key string) (core.Repo, error)
	ListRepos(ctx context.Context, owner string) ([]core.Repo, error)
}

type ForkReader interface {
	GetFork(ctx context.Context, key string) (core.Fork, error)
	ListForks(ctx context.Context, parentKey string) ([]core.Fork, error)
}

type AccessReader interface {
	ListAccess(ctx context.Context, identity string) ([]core.AccessEntry, error)
	CheckAccess(ctx context.Context, signer string, required core.Role, resourceID string) error
}

type DeploymentReader interface {
	GlobalConfigSnapshot(ctx context.Context) (core.GlobalConfig, error)
	GlobalMetadataSnapshot(ctx context.Context) (core.GlobalMetadata, error)
	MetricsSnapshot(ctx context.Context) (core.Metrics, error)
}

type LifecycleStatusQuery struct {
	reader LifecycleReader
}

func NewLifecycleStatusQuery(reader LifecycleReader) *LifecycleStatusQuery {
	return &LifecycleStatusQuery{reader: reader}
}

func (q *LifecycleStatusQuery) Query(ctx context.Context, msg LifecycleStatusMessage) (core.Lifecycle, error) {
	if q == nil || q.reader == nil {
		return core.Lifecycle{}, queryDependencyError("query: lifecycle reader is required")
	}
	return q.reader.LifecycleStatus(ctx)
}

type LifecycleRecordQuery struct {
	reader LifecycleReader
}

func NewLifecycleRecordQuery(reader LifecycleReader) *LifecycleRecordQuery {
	return &LifecycleRecordQuery{reader: reader}
}

func (q *LifecycleRecordQuery) Query(ctx context.Context, msg LifecycleRecordMessage) ([]byte, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: lifecycle reader is required")
	}
	return q.reader.ExportLifecycleRecord(ctx)
}

type GetRepoQuery struct {
	reader RepoReader
}

func NewGetRepoQuery(reader RepoReader) *GetRepoQuery {
	return &GetRepoQuery{reader: reader}
}

func (q *GetRepoQuery) Query(ctx context.Context, msg GetRepoMessage) (core.Repo, error) {
	if q == nil || q.reader == nil {
		return core.Repo{}, queryDependencyError("query: repo reader is required")
	}
	return q.reader.GetRepo(ctx, msg.Key)
}

type ListReposQuery struct {
	reader RepoReader
}

func NewListReposQuery(reader RepoReader) *ListReposQuery {
	return &ListReposQuery{reader: reader}
}

func (q *ListReposQuery) Query(ctx context.Context, msg ListReposMessage) ([]core.Repo, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: repo reader is required")
	}
	return q.reader.ListRepos(ctx, msg.Owner)
}

type GetForkQuery struct {
	reader ForkReader
}

func NewGetForkQuery(reader ForkReader) *GetForkQuery {
	return &GetForkQuery{reader: reader}
}

func (q *GetForkQuery) Query(ctx context.Context, msg GetForkMessage) (core.Fork, error) {
	if q == nil || q.reader == nil {
		return core.Fork{}, queryDependencyError("query: fork reader is required")
	}
	return q.reader.GetFork(ctx, msg.Key)
}

type ListForksQuery struct {
	reader ForkReader
}

func NewListForksQuery(reader ForkReader) *ListForksQuery {
	return &ListForksQuery{reader: reader}
}

func (q *ListForksQuery) Query(ctx context.Context, msg ListForksMessage) ([]core.Fork, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: fork reader is required")
	}
	return q.reader.ListForks(ctx, msg.ParentKey)
}

type ListAccessQuery struct {
	reader AccessReader
}

func NewListAccessQuery(reader AccessReader) *ListAccessQuery {
	return &ListAccessQuery{reader: reader}
}

func (q *ListAccessQuery) Query(ctx context.Context, msg ListAccessMessage) ([]core.AccessEntry, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: access reader is required")
	}
	return q.reader.ListAccess(ctx, msg.Identity)
}

type CheckAccessQuery struct {
	reader AccessReader
}

func NewCheckAccessQuery(reader AccessReader) *CheckAccessQuery {
	return &CheckAccessQuery{reader: reader}
}

// Query reports whether the signer clears the role check. Denials come
// back as a false decision, not an error; only infrastructure failures
// surface as errors.
func (q *CheckAccessQuery) Query(ctx context.Context, msg CheckAccessMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: access reader is required")
	}
	err := q.reader.CheckAccess(ctx, msg.Signer, msg.Required, msg.ResourceID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, core.ErrIdentityMismatch),
		errors.Is(err, core.ErrScopeMismatch),
		errors.Is(err, core.ErrInsufficientRole):
		return false, nil
	default:
		return false, err
	}
}

type ConfigSnapshotQuery struct {
	reader DeploymentReader
}

func NewConfigSnapshotQuery(reader DeploymentReader) *ConfigSnapshotQuery {
	return &ConfigSnapshotQuery{reader: reader}
}

func (q *ConfigSnapshotQuery) Query(ctx context.Context, msg ConfigSnapshotMessage) (core.GlobalConfig, error) {
	if q == nil || q.reader == nil {
		return core.GlobalConfig{}, queryDependencyError("query: deployment reader is required")
	}
	return q.reader.GlobalConfigSnapshot(ctx)
}

type MetadataSnapshotQuery struct {
	reader DeploymentReader
}

func NewMetadataSnapshotQuery(reader DeploymentReader) *MetadataSnapshotQuery {
	return &MetadataSnapshotQuery{reader: reader}
}

func (q *MetadataSnapshotQuery) Query(ctx context.Context, msg MetadataSnapshotMessage) (core.GlobalMetadata, error) {
	if q == nil || q.reader == nil {
		return core.GlobalMetadata{}, queryDependencyError("query: deployment reader is required")
	}
	return q.reader.GlobalMetadataSnapshot(ctx)
}

type MetricsSnapshotQuery struct {
	reader DeploymentReader
}

func NewMetricsSnapshotQuery(reader DeploymentReader) *MetricsSnapshotQuery {
	return &MetricsSnapshotQuery{reader: reader}
}

func (q *MetricsSnapshotQuery) Query(ctx context.Context, msg MetricsSnapshotMessage) (core.Metrics, error) {
	if q == nil || q.reader == nil {
		return core.Metrics{}, queryDependencyError("query: deployment reader is required")
	}
	return q.reader.MetricsSnapshot(ctx)
}
