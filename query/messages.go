package query

import (
	"fmt"
	"strings"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

const (
	TypeLifecycleStatus = "raccoon.query.lifecycle.status"
	TypeLifecycleRecord = "raccoon.query.lifecycle.record"
	TypeGetRepo         = "raccoon.query.repo.get"
	TypeListRepos       = "raccoon.query.repo.list"
	TypeGetFork         = "raccoon.query.fork.get"
	TypeListForks       = "raccoon.query.fork.list"
	TypeListAccess      = "raccoon.query.access.list"
	TypeCheckAccess     = "raccoon.query.access.check"
	TypeConfigSnapshot  = "raccoon.query.config.snapshot"
	TypeMetadata        = "raccoon.query.metadata.snapshot"
	TypeMetrics         = "raccoon.query.metrics.snapshot"
)

type LifecycleStatusMessage struct{}

func (LifecycleStatusMessage) Type() string { return TypeLifecycleStatus }

func (LifecycleStatusMessage) Validate() error { return nil }

type LifecycleRecordMessage struct{}

func (LifecycleRecordMessage) Type() string { return TypeLifecycleRecord }

func (LifecycleRecordMessage) Validate() error { return nil }

type GetRepoMessage struct {
	Key string
}

func (GetRepoMessage) Type() string { return TypeGetRepo }

func (m GetRepoMessage) Validate() error {
	if strings.TrimSpace(m.Key) == "" {
		return fmt.Errorf("query: repo key is required")
	}
	return nil
}

type ListReposMessage struct {
	Owner string
}

func (ListReposMessage) Type() string { return TypeListRepos }

func (ListReposMessage) Validate() error { return nil }

type GetForkMessage struct {
	Key string
}

func (GetForkMessage) Type() string { return TypeGetFork }

func (m GetForkMessage) Validate() error {
	if strings.TrimSpace(m.Key) == "" {
		return fmt.Errorf("query: fork key is required")
	}
	return nil
}

type ListForksMessage struct {
	ParentKey string
}

func (ListForksMessage) Type() string { return TypeListForks }

func (m ListForksMessage) Validate() error {
	if strings.TrimSpace(m.ParentKey) == "" {
		return fmt.Errorf("query: parent key is required")
	}
	return nil
}

type ListAccessMessage struct {
	Identity string
}

func (ListAccessMessage) Type() string { return TypeListAccess }

func (m ListAccessMessage) Validate() error {
	if strings.TrimSpace(m.Identity) == "" {
		return fmt.Errorf("query: identity is required")
	}
	return nil
}

type CheckAccessMessage struct {
	Signer     string
	Required   core.Role
	ResourceID string
}

func (CheckAccessMessage) Type() string { return TypeCheckAccess }

func (m CheckAccessMessage) Validate() error {
	if strings.TrimSpace(m.Signer) == "" {
		return fmt.Errorf("query: signer identity is required")
	}
	if m.Required == 0 {
		return fmt.Errorf("query: required role mask must not be empty")
	}
	if err := m.Required.Validate(); err != nil {
		return queryWrapValidation(err, "query: role mask carries unknown bits")
	}
	return nil
}

type ConfigSnapshotMessage struct{}

func (ConfigSnapshotMessage) Type() string { return TypeConfigSnapshot }

func (ConfigSnapshotMessage) Validate() error { return nil }

type MetadataSnapshotMessage struct{}

func (MetadataSnapshotMessage) Type() string { return TypeMetadata }

func (MetadataSnapshotMessage) Validate() error { return nil }

type MetricsSnapshotMessage struct{}

func (MetricsSnapshotMessage) Type() string { return TypeMetrics }

func (MetricsSnapshotMessage) Validate() error { return nil }
