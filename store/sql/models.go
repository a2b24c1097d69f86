package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

// Singleton accounts pin a fixed slot so each table holds exactly one row.
const singletonSlot = 1

type lifecycleRecord struct {
	bun.BaseModel `bun:"table:raccoon_lifecycle,alias:rl"`

	Slot                    int       `bun:"slot,pk"`
	Phase                   uint8     `bun:"phase,notnull"`
	GlobalFreeze            bool      `bun:"global_freeze,notnull"`
	MigrationRequired       bool      `bun:"migration_required,notnull"`
	MigrationInProgress     bool      `bun:"migration_in_progress,notnull"`
	PhaseChangedAt          time.Time `bun:"phase_changed_at,nullzero,notnull"`
	MigrationStateChangedAt time.Time `bun:"migration_state_changed_at,nullzero,notnull"`
	NoteRef                 []byte    `bun:"note_ref"`
	CreatedAt               time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt               time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SchemaVersion           uint8     `bun:"schema_version,notnull"`
}

type globalConfigRecord struct {
	bun.BaseModel `bun:"table:raccoon_global_config,alias:rgc"`

	Slot              int       `bun:"slot,pk"`
	Admin             string    `bun:"admin,notnull"`
	FeeBps            uint16    `bun:"fee_bps,notnull"`
	MaxModulesPerRepo uint32    `bun:"max_modules_per_repo,notnull"`
	PolicyRef         []byte    `bun:"policy_ref"`
	Active            bool      `bun:"active,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SchemaVersion     uint8     `bun:"schema_version,notnull"`
}

type globalMetadataRecord struct {
	bun.BaseModel `bun:"table:raccoon_global_metadata,alias:rgm"`

	Slot          int       `bun:"slot,pk"`
	Name          string    `bun:"name"`
	Description   string    `bun:"description"`
	IconURI       string    `bun:"icon_uri"`
	ProjectURL    string    `bun:"project_url"`
	ContactURL    string    `bun:"contact_url"`
	DocsURL       string    `bun:"docs_url"`
	ExtraJSON     string    `bun:"extra_json"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SchemaVersion uint8     `bun:"schema_version,notnull"`
}

type metricsRecord struct {
	bun.BaseModel `bun:"table:raccoon_global_metrics,alias:rgx"`

	Slot              int       `bun:"slot,pk"`
	TotalRepos        uint64    `bun:"total_repos,notnull"`
	TotalForks        uint64    `bun:"total_forks,notnull"`
	TotalObservations uint64    `bun:"total_observations,notnull"`
	TotalLinesOfCode  uint64    `bun:"total_lines_of_code,notnull"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SchemaVersion     uint8     `bun:"schema_version,notnull"`
}

type accessEntryRecord struct {
	bun.BaseModel `bun:"table:raccoon_access_entries,alias:rae"`

	ID            string    `bun:"id,pk"`
	Identity      string    `bun:"identity,notnull"`
	Roles         uint64    `bun:"roles,notnull"`
	ScopeGlobal   bool      `bun:"scope_global,notnull"`
	ScopeResource string    `bun:"scope_resource,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SchemaVersion uint8     `bun:"schema_version,notnull"`
}

type repoRecord struct {
	bun.BaseModel `bun:"table:raccoon_repos,alias:rr"`

	ID                  string    `bun:"id,pk"`
	Key                 string    `bun:"key,notnull"`
	Owner               string    `bun:"owner,notnull"`
	Name                string    `bun:"name,notnull"`
	URL                 string    `bun:"url,notnull"`
	Tags                string    `bun:"tags"`
	Active              bool      `bun:"active,notnull"`
	AllowObservation    bool      `bun:"allow_observation,notnull"`
	ModuleCount         uint32    `bun:"module_count,notnull"`
	ObservationCount    uint64    `bun:"observation_count,notnull"`
	TotalLinesOfCode    uint64    `bun:"total_lines_of_code,notnull"`
	TotalFilesProcessed uint64    `bun:"total_files_processed,notnull"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SchemaVersion       uint8     `bun:"schema_version,notnull"`
}

type forkRecord struct {
	bun.BaseModel `bun:"table:raccoon_forks,alias:rf"`

	ID            string    `bun:"id,pk"`
	Key           string    `bun:"key,notnull"`
	Owner         string    `bun:"owner,notnull"`
	Label         string    `bun:"label,notnull"`
	MetadataURI   string    `bun:"metadata_uri"`
	Tags          string    `bun:"tags"`
	Active        bool      `bun:"active,notnull"`
	ParentKey     string    `bun:"parent_key,notnull"`
	Depth         uint16    `bun:"depth,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SchemaVersion uint8     `bun:"schema_version,notnull"`
}
