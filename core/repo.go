package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrRepoInactive            = errors.New("core: repository is inactive")
	ErrObservationNotAllowed   = errors.New("core: observation runs not allowed for repository")
	ErrModuleLimitReached      = errors.New("core: module ceiling reached")
	ErrObservationLimitReached = errors.New("core: observation soft cap reached")
	ErrObservationTooLarge     = errors.New("core: observation data exceeds per-run maximum")
)

// Repo is a registered codebase the deployment observes. It is the
// exemplar resource account: owner-gated metadata, an activation flag, and
// strictly bounded aggregate counters. Repos are never deleted, only
// deactivated.
type Repo struct {
	Key                 string
	Owner               string
	Name                string
	URL                 string
	Tags                string
	Active              bool
	AllowObservation    bool
	ModuleCount         uint32
	ObservationCount    uint64
	TotalLinesOfCode    uint64
	TotalFilesProcessed uint64
	CreatedAt           time.Time
	UpdatedAt           time.Time
	SchemaVersion       uint8
}

// RepoUpdate carries a partial update. Nil fields are untouched.
type RepoUpdate struct {
	Name             *string
	URL              *string
	Tags             *string
	Active           *bool
	AllowObservation *bool
}

// NewRepo validates registration input and returns an active repository
// with zeroed counters.
func NewRepo(key, owner, name, url, tags string, allowObservation bool, limits Limits, now time.Time) (Repo, error) {
	key = strings.TrimSpace(key)
	owner = strings.TrimSpace(owner)
	if key == "" {
		return Repo{}, fmt.Errorf("%w: repo key", ErrValueEmpty)
	}
	if owner == "" {
		return Repo{}, fmt.Errorf("%w: repo owner", ErrValueEmpty)
	}
	if err := validateRequiredString("name", name, limits.MaxNameLen); err != nil {
		return Repo{}, err
	}
	if err := validateResourceURL("url", url, limits.MaxURLLen); err != nil {
		return Repo{}, err
	}
	if err := validateOptionalString("tags", tags, limits.MaxTagsLen); err != nil {
		return Repo{}, err
	}
	utc := now.UTC()
	return Repo{
		Key:              key,
		Owner:            owner,
		Name:             name,
		URL:              url,
		Tags:             tags,
		Active:           true,
		AllowObservation: allowObservation,
		CreatedAt:        utc,
		UpdatedAt:        utc,
		SchemaVersion:    CurrentSchemaVersion,
	}, nil
}

// ApplyUpdate validates every provided field before touching any of them,
// then applies the present ones. UpdatedAt is re-stamped even when every
// field is absent.
func (r *Repo) ApplyUpdate(update RepoUpdate, limits Limits, now time.Time) error {
	if update.Name != nil {
		if err := validateRequiredString("name", *update.Name, limits.MaxNameLen); err != nil {
			return err
		}
	}
	if update.URL != nil {
		if err := validateResourceURL("url", *update.URL, limits.MaxURLLen); err != nil {
			return err
		}
	}
	if update.Tags != nil {
		if err := validateOptionalString("tags", *update.Tags, limits.MaxTagsLen); err != nil {
			return err
		}
	}

	if update.Name != nil {
		r.Name = *update.Name
	}
	if update.URL != nil {
		r.URL = *update.URL
	}
	if update.Tags != nil {
		r.Tags = *update.Tags
	}
	if update.Active != nil {
		r.Active = *update.Active
	}
	if update.AllowObservation != nil {
		r.AllowObservation = *update.AllowObservation
	}
	r.UpdatedAt = now.UTC()
	return nil
}

// AssertOwner checks the signer against the repository owner.
func (r Repo) AssertOwner(signer string) error {
	if strings.TrimSpace(signer) != r.Owner {
		return ErrIdentityMismatch
	}
	return nil
}

func (r Repo) AssertActive() error {
	if !r.Active {
		return fmt.Errorf("%w: %s", ErrRepoInactive, r.Key)
	}
	return nil
}

func (r Repo) AssertObservationAllowed() error {
	if !r.AllowObservation {
		return fmt.Errorf("%w: %s", ErrObservationNotAllowed, r.Key)
	}
	return nil
}

// IncrementModuleCount bumps the module counter with checked arithmetic
// and enforces the configured ceiling. On failure the counter is unchanged.
func (r *Repo) IncrementModuleCount(ceiling uint32) error {
	next, err := checkedAddU32(r.ModuleCount, 1)
	if err != nil {
		return err
	}
	if next > ceiling {
		return fmt.Errorf("%w: ceiling %d", ErrModuleLimitReached, ceiling)
	}
	r.ModuleCount = next
	return nil
}

// DecrementModuleCount is the reconciliation decrement used when a module
// is archived. Underflow fails closed.
func (r *Repo) DecrementModuleCount() error {
	next, err := checkedSubU32(r.ModuleCount, 1)
	if err != nil {
		return err
	}
	r.ModuleCount = next
	return nil
}

// RecordObservation folds one observation run into the aggregates. Every
// bound is checked before any total moves, so a rejected run leaves the
// counters exactly as they were.
func (r *Repo) RecordObservation(linesOfCode uint64, filesProcessed uint32, limits Limits, now time.Time) error {
	if linesOfCode > limits.MaxLinesPerObservation {
		return fmt.Errorf("%w: %d lines, max %d", ErrObservationTooLarge, linesOfCode, limits.MaxLinesPerObservation)
	}
	if filesProcessed > limits.MaxFilesPerObservation {
		return fmt.Errorf("%w: %d files, max %d", ErrObservationTooLarge, filesProcessed, limits.MaxFilesPerObservation)
	}

	nextCount, err := checkedAddU64(r.ObservationCount, 1)
	if err != nil {
		return err
	}
	if nextCount > limits.SoftMaxObservations {
		return fmt.Errorf("%w: soft cap %d", ErrObservationLimitReached, limits.SoftMaxObservations)
	}
	nextLines, err := checkedAddU64(r.TotalLinesOfCode, linesOfCode)
	if err != nil {
		return err
	}
	nextFiles, err := checkedAddU64(r.TotalFilesProcessed, uint64(filesProcessed))
	if err != nil {
		return err
	}

	r.ObservationCount = nextCount
	r.TotalLinesOfCode = nextLines
	r.TotalFilesProcessed = nextFiles
	r.UpdatedAt = now.UTC()
	return nil
}
