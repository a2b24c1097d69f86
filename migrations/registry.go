// Package migrations resolves the embedded per-dialect SQL migration
// filesystems and hands them to a persistence client's register hook.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	raccoon "github.com/VitorBSK/Unit9-Raccoon"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	defaultSourceLabel = "raccoon"
	embeddedTreePath   = "data/sql/migrations"
)

// FilesystemSpec is one dialect's migration filesystem and where it came
// from.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// Registration is the resolved registration plan: which dialects to hand
// over and under what source label.
type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

// RegisterFunc receives one dialect filesystem. Implementations typically
// call a persistence client's RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

// WithDialectSourceLabel overrides the label reported to the register hook.
func WithDialectSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

// WithValidationTargets restricts registration to the named dialects.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		next := normalizeDialects(targets)
		if len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

// WithFilesystems replaces the embedded filesystems with caller-supplied
// ones.
func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		replaced := make([]FilesystemSpec, 0, len(filesystems))
		for _, spec := range filesystems {
			dialect := strings.TrimSpace(strings.ToLower(spec.Dialect))
			if dialect == "" || spec.FS == nil {
				continue
			}
			replaced = append(replaced, FilesystemSpec{
				Dialect: dialect,
				Path:    spec.Path,
				FS:      spec.FS,
			})
		}
		if len(replaced) > 0 {
			r.Filesystems = replaced
		}
	}
}

// Filesystems resolves the postgres and sqlite migration filesystems from
// the embedded tree, or from an explicit override. Postgres SQL sits at the
// tree root with the sqlite alternative in a subdirectory. Each resolved
// filesystem must hold at least one *.up.sql file.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := raccoon.GetCoreMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	base, basePath, err := locateTree(root)
	if err != nil {
		return nil, err
	}
	sqliteFS, err := fs.Sub(base, DialectSQLite)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite subtree: %w", err)
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: path.Join(basePath, DialectSQLite), FS: sqliteFS},
	}
	for _, spec := range filesystems {
		if err := assertHasMigrations(spec); err != nil {
			return nil, err
		}
	}
	return filesystems, nil
}

// Register resolves the dialect filesystems and hands each validation
// target to registerFn. It returns the resolved plan so callers can log or
// inspect what was registered.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       defaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	if err := reg.validate(); err != nil {
		return reg, err
	}
	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}

	for _, spec := range reg.targeted() {
		if spec.FS == nil {
			return reg, fmt.Errorf("migrations: %s filesystem is nil", spec.Dialect)
		}
		if err := registerFn(ctx, spec.Dialect, reg.SourceLabel, spec.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", spec.Dialect, spec.Path, err)
		}
	}
	return reg, nil
}

func (r Registration) validate() error {
	if strings.TrimSpace(r.SourceLabel) == "" {
		return fmt.Errorf("migrations: source label is required")
	}
	if len(r.ValidationTargets) == 0 {
		return fmt.Errorf("migrations: at least one validation target is required")
	}
	if len(r.Filesystems) == 0 {
		return fmt.Errorf("migrations: no migration filesystems resolved")
	}
	return nil
}

// targeted filters the resolved filesystems down to the validation targets.
func (r Registration) targeted() []FilesystemSpec {
	targets := normalizeDialects(r.ValidationTargets)
	out := make([]FilesystemSpec, 0, len(r.Filesystems))
	for _, spec := range r.Filesystems {
		for _, target := range targets {
			if spec.Dialect == target {
				out = append(out, spec)
				break
			}
		}
	}
	return out
}

// locateTree finds the migration tree inside root: either the embedded
// data/sql/migrations layout, or root itself when it directly holds SQL
// files.
func locateTree(root fs.FS) (fs.FS, string, error) {
	if sub, err := fs.Sub(root, embeddedTreePath); err == nil {
		if _, statErr := fs.ReadDir(sub, "."); statErr == nil {
			return sub, embeddedTreePath, nil
		}
	}

	entries, err := fs.ReadDir(root, ".")
	if err != nil {
		return nil, "", fmt.Errorf("migrations: read root tree: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			return root, ".", nil
		}
	}
	return nil, "", fmt.Errorf("migrations: no migration tree under %q or root", embeddedTreePath)
}

func assertHasMigrations(spec FilesystemSpec) error {
	matches, err := fs.Glob(spec.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("migrations: glob %s %s: %w", spec.Dialect, spec.Path, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("migrations: %s filesystem %q holds no *.up.sql files", spec.Dialect, spec.Path)
	}
	return nil
}

func normalizeDialects(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(strings.ToLower(value))
		if trimmed == "" {
			continue
		}
		duplicate := false
		for _, existing := range out {
			if existing == trimmed {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, trimmed)
		}
	}
	return out
}
