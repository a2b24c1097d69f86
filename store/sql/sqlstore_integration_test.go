package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/VitorBSK/Unit9-Raccoon/core"
	raccoonmigrations "github.com/VitorBSK/Unit9-Raccoon/migrations"
	sqlstore "github.com/VitorBSK/Unit9-Raccoon/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "raccoon-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"raccoon_lifecycle",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "raccoon_lifecycle" {
		t.Fatalf("expected raccoon_lifecycle table, got %q", tableName)
	}
}

func TestSingletonStores_LoadBeforeSaveReportsNotFound(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	if _, err := factory.LifecycleStore().Load(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected lifecycle not found, got %v", err)
	}
	if _, err := factory.ConfigStore().Load(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected config not found, got %v", err)
	}
	if _, err := factory.MetadataStore().Load(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected metadata not found, got %v", err)
	}
	if _, err := factory.MetricsStore().Load(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected metrics not found, got %v", err)
	}
}

func TestSingletonStores_SaveThenLoadRoundTrips(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	noteRef, err := core.RefFromBytes(bytesOfLength(core.RefLen, 0x11))
	if err != nil {
		t.Fatalf("build note ref: %v", err)
	}

	lifecycle := core.Lifecycle{
		Phase:                   core.PhaseOperational,
		GlobalFreeze:            false,
		MigrationRequired:       true,
		PhaseChangedAt:          now,
		MigrationStateChangedAt: now,
		NoteRef:                 noteRef,
		CreatedAt:               now,
		UpdatedAt:               now,
		SchemaVersion:           core.CurrentSchemaVersion,
	}
	if err := factory.LifecycleStore().Save(ctx, lifecycle); err != nil {
		t.Fatalf("save lifecycle: %v", err)
	}
	loaded, err := factory.LifecycleStore().Load(ctx)
	if err != nil {
		t.Fatalf("load lifecycle: %v", err)
	}
	if loaded.Phase != core.PhaseOperational || !loaded.MigrationRequired {
		t.Fatalf("unexpected lifecycle round trip: %+v", loaded)
	}
	if loaded.NoteRef != noteRef {
		t.Fatalf("expected note ref to round trip, got %s", loaded.NoteRef)
	}

	// Second save replaces the single row instead of inserting another.
	lifecycle.GlobalFreeze = true
	lifecycle.UpdatedAt = now.Add(time.Minute)
	if err := factory.LifecycleStore().Save(ctx, lifecycle); err != nil {
		t.Fatalf("save lifecycle again: %v", err)
	}
	var rowCount int
	if err := client.DB().NewRaw("SELECT COUNT(*) FROM raccoon_lifecycle").Scan(ctx, &rowCount); err != nil {
		t.Fatalf("count lifecycle rows: %v", err)
	}
	if rowCount != 1 {
		t.Fatalf("expected single lifecycle row, got %d", rowCount)
	}
	loaded, err = factory.LifecycleStore().Load(ctx)
	if err != nil {
		t.Fatalf("reload lifecycle: %v", err)
	}
	if !loaded.GlobalFreeze {
		t.Fatalf("expected freeze flag to persist on replace")
	}

	config := core.GlobalConfig{
		Admin:             "admin-identity",
		FeeBps:            250,
		MaxModulesPerRepo: 64,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
		SchemaVersion:     core.CurrentSchemaVersion,
	}
	if err := factory.ConfigStore().Save(ctx, config); err != nil {
		t.Fatalf("save config: %v", err)
	}
	loadedConfig, err := factory.ConfigStore().Load(ctx)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loadedConfig.Admin != "admin-identity" || loadedConfig.FeeBps != 250 {
		t.Fatalf("unexpected config round trip: %+v", loadedConfig)
	}
	if !loadedConfig.PolicyRef.IsZero() {
		t.Fatalf("expected zero policy ref, got %s", loadedConfig.PolicyRef)
	}

	metadata := core.GlobalMetadata{
		Name:          "raccoon",
		Description:   "deployment state engine",
		ProjectURL:    "https://example.com/raccoon",
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: core.CurrentSchemaVersion,
	}
	if err := factory.MetadataStore().Save(ctx, metadata); err != nil {
		t.Fatalf("save metadata: %v", err)
	}
	loadedMetadata, err := factory.MetadataStore().Load(ctx)
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if loadedMetadata.Name != "raccoon" || loadedMetadata.ProjectURL != "https://example.com/raccoon" {
		t.Fatalf("unexpected metadata round trip: %+v", loadedMetadata)
	}

	metrics := core.Metrics{
		TotalRepos:        3,
		TotalForks:        1,
		TotalObservations: 7,
		TotalLinesOfCode:  12000,
		UpdatedAt:         now,
		SchemaVersion:     core.CurrentSchemaVersion,
	}
	if err := factory.MetricsStore().Save(ctx, metrics); err != nil {
		t.Fatalf("save metrics: %v", err)
	}
	loadedMetrics, err := factory.MetricsStore().Load(ctx)
	if err != nil {
		t.Fatalf("load metrics: %v", err)
	}
	if loadedMetrics.TotalRepos != 3 || loadedMetrics.TotalLinesOfCode != 12000 {
		t.Fatalf("unexpected metrics round trip: %+v", loadedMetrics)
	}
}

func TestAccessEntryStore_UpsertKeepsOneRowPerIdentityScope(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.AuthorityStore()

	now := time.Now().UTC().Truncate(time.Second)
	entry := core.AccessEntry{
		Identity:      "alice",
		Roles:         core.RoleAdmin | core.RoleObserver,
		Scope:         core.GlobalScope(),
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: core.CurrentSchemaVersion,
	}
	if err := store.Save(ctx, entry); err != nil {
		t.Fatalf("save access entry: %v", err)
	}

	loaded, err := store.Get(ctx, "alice", core.GlobalScope())
	if err != nil {
		t.Fatalf("get access entry: %v", err)
	}
	if loaded.Roles != core.RoleAdmin|core.RoleObserver {
		t.Fatalf("unexpected role mask: %v", loaded.Roles)
	}

	// Revocation zeroes the mask in place; the row survives.
	entry.Roles = 0
	entry.UpdatedAt = now.Add(time.Minute)
	if err := store.Save(ctx, entry); err != nil {
		t.Fatalf("save zeroed entry: %v", err)
	}
	loaded, err = store.Get(ctx, "alice", core.GlobalScope())
	if err != nil {
		t.Fatalf("get zeroed entry: %v", err)
	}
	if loaded.Roles != 0 {
		t.Fatalf("expected zeroed role mask, got %v", loaded.Roles)
	}
	var rowCount int
	if err := client.DB().NewRaw(
		"SELECT COUNT(*) FROM raccoon_access_entries WHERE identity = ?", "alice",
	).Scan(ctx, &rowCount); err != nil {
		t.Fatalf("count access rows: %v", err)
	}
	if rowCount != 1 {
		t.Fatalf("expected single access row after upsert, got %d", rowCount)
	}

	scoped := core.AccessEntry{
		Identity:      "alice",
		Roles:         core.RoleMaintainer,
		Scope:         core.ScopeFrom(false, "alice/widgets"),
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: core.CurrentSchemaVersion,
	}
	if err := store.Save(ctx, scoped); err != nil {
		t.Fatalf("save scoped entry: %v", err)
	}

	entries, err := store.ListByIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("list by identity: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for alice, got %d", len(entries))
	}

	if _, err := store.Get(ctx, "bob", core.GlobalScope()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected missing entry to report not found, got %v", err)
	}
}

func TestRepoStore_SavePreservesBusinessKeyAndFilters(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.RepoStore()

	now := time.Now().UTC().Truncate(time.Second)
	repo := core.Repo{
		Key:              "alice/widgets",
		Owner:            "alice",
		Name:             "widgets",
		URL:              "https://example.com/widgets",
		Active:           true,
		AllowObservation: true,
		CreatedAt:        now,
		UpdatedAt:        now,
		SchemaVersion:    core.CurrentSchemaVersion,
	}
	if err := store.Save(ctx, repo); err != nil {
		t.Fatalf("save repo: %v", err)
	}

	repo.ModuleCount = 3
	repo.ObservationCount = 5
	repo.UpdatedAt = now.Add(time.Minute)
	if err := store.Save(ctx, repo); err != nil {
		t.Fatalf("save repo update: %v", err)
	}

	loaded, err := store.Get(ctx, "alice/widgets")
	if err != nil {
		t.Fatalf("get repo: %v", err)
	}
	if loaded.ModuleCount != 3 || loaded.ObservationCount != 5 {
		t.Fatalf("unexpected repo counters: %+v", loaded)
	}
	if !loaded.CreatedAt.Equal(now) {
		t.Fatalf("expected created at to survive updates, got %v", loaded.CreatedAt)
	}

	var rowCount int
	if err := client.DB().NewRaw("SELECT COUNT(*) FROM raccoon_repos").Scan(ctx, &rowCount); err != nil {
		t.Fatalf("count repo rows: %v", err)
	}
	if rowCount != 1 {
		t.Fatalf("expected single repo row after re-save, got %d", rowCount)
	}

	other := core.Repo{
		Key:           "bob/gadgets",
		Owner:         "bob",
		Name:          "gadgets",
		URL:           "https://example.com/gadgets",
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: core.CurrentSchemaVersion,
	}
	if err := store.Save(ctx, other); err != nil {
		t.Fatalf("save second repo: %v", err)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list all repos: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 repos, got %d", len(all))
	}

	owned, err := store.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list alice repos: %v", err)
	}
	if len(owned) != 1 || owned[0].Key != "alice/widgets" {
		t.Fatalf("unexpected owner filter result: %+v", owned)
	}

	if _, err := store.Get(ctx, "missing/repo"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected missing repo to report not found, got %v", err)
	}
}

func TestForkStore_RoundTripAndParentFilter(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.ForkStore()

	now := time.Now().UTC().Truncate(time.Second)
	root := core.Fork{
		Key:           "fork/root",
		Owner:         "alice",
		Label:         "root",
		Active:        true,
		ParentKey:     "alice/widgets",
		Depth:         1,
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: core.CurrentSchemaVersion,
	}
	child := core.Fork{
		Key:           "fork/child",
		Owner:         "bob",
		Label:         "child",
		Active:        true,
		ParentKey:     "fork/root",
		Depth:         2,
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: core.CurrentSchemaVersion,
	}
	for _, fork := range []core.Fork{root, child} {
		if err := store.Save(ctx, fork); err != nil {
			t.Fatalf("save fork %s: %v", fork.Key, err)
		}
	}

	loaded, err := store.Get(ctx, "fork/child")
	if err != nil {
		t.Fatalf("get fork: %v", err)
	}
	if loaded.ParentKey != "fork/root" || loaded.Depth != 2 {
		t.Fatalf("unexpected fork round trip: %+v", loaded)
	}

	children, err := store.ListByParent(ctx, "fork/root")
	if err != nil {
		t.Fatalf("list by parent: %v", err)
	}
	if len(children) != 1 || children[0].Key != "fork/child" {
		t.Fatalf("unexpected children: %+v", children)
	}

	if _, err := store.ListByParent(ctx, "  "); err == nil {
		t.Fatalf("expected blank parent key to be rejected")
	}
}

func TestRepositoryFactory_BuildStoresResolvesClient(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory := sqlstore.NewRepositoryFactory()
	provider, err := factory.BuildStores(client)
	if err != nil {
		t.Fatalf("build stores: %v", err)
	}
	if provider.LifecycleStore() == nil || provider.AuthorityStore() == nil || provider.RepoStore() == nil {
		t.Fatalf("expected provider to expose wired stores")
	}

	if _, err := factory.BuildStores(struct{}{}); err == nil {
		t.Fatalf("expected unsupported client type to be rejected")
	}
}

func bytesOfLength(n int, fill byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = fill
	}
	return out
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:raccoon-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = raccoonmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != raccoonmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, raccoonmigrations.WithValidationTargets(raccoonmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
