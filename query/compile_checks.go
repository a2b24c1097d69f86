package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

var (
	_ gocmd.Querier[LifecycleStatusMessage, core.Lifecycle]       = (*LifecycleStatusQuery)(nil)
	_ gocmd.Querier[LifecycleRecordMessage, []byte]               = (*LifecycleRecordQuery)(nil)
	_ gocmd.Querier[GetRepoMessage, core.Repo]                    = (*GetRepoQuery)(nil)
	_ gocmd.Querier[ListReposMessage, []core.Repo]                = (*ListReposQuery)(nil)
	_ gocmd.Querier[GetForkMessage, core.Fork]                    = (*GetForkQuery)(nil)
	_ gocmd.Querier[ListForksMessage, []core.Fork]                = (*ListForksQuery)(nil)
	_ gocmd.Querier[ListAccessMessage, []core.AccessEntry]        = (*ListAccessQuery)(nil)
	_ gocmd.Querier[CheckAccessMessage, bool]                     = (*CheckAccessQuery)(nil)
	_ gocmd.Querier[ConfigSnapshotMessage, core.GlobalConfig]     = (*ConfigSnapshotQuery)(nil)
	_ gocmd.Querier[MetadataSnapshotMessage, core.GlobalMetadata] = (*MetadataSnapshotQuery)(nil)
	_ gocmd.Querier[MetricsSnapshotMessage, core.Metrics]         = (*MetricsSnapshotQuery)(nil)
)
