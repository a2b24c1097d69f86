package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEngineInactive = errors.New("core: engine is inactive")
	ErrFeeOutOfRange  = errors.New("core: fee basis points exceed maximum")
	ErrZeroCeiling    = errors.New("core: module ceiling must be positive")
)

// GlobalConfig is the deployment-wide settings account written once at
// bootstrap and amended only by the admin identity it names.
type GlobalConfig struct {
	Admin             string
	FeeBps            uint16
	MaxModulesPerRepo uint32
	PolicyRef         Ref
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	SchemaVersion     uint8
}

// GlobalConfigUpdate carries a partial update. Nil fields are untouched.
// Admin transfer is the only way to change Admin and travels here too.
type GlobalConfigUpdate struct {
	Admin             *string
	FeeBps            *uint16
	MaxModulesPerRepo *uint32
	PolicyRef         *Ref
	Active            *bool
}

// NewGlobalConfig validates bootstrap input and returns an active config.
func NewGlobalConfig(admin string, feeBps uint16, maxModulesPerRepo uint32, policyRef Ref, now time.Time) (GlobalConfig, error) {
	admin = strings.TrimSpace(admin)
	if admin == "" {
		return GlobalConfig{}, fmt.Errorf("%w: admin identity", ErrValueEmpty)
	}
	if feeBps > MaxFeeBps {
		return GlobalConfig{}, fmt.Errorf("%w: %d bps, max %d", ErrFeeOutOfRange, feeBps, MaxFeeBps)
	}
	if maxModulesPerRepo == 0 {
		return GlobalConfig{}, ErrZeroCeiling
	}
	utc := now.UTC()
	return GlobalConfig{
		Admin:             admin,
		FeeBps:            feeBps,
		MaxModulesPerRepo: maxModulesPerRepo,
		PolicyRef:         policyRef,
		Active:            true,
		CreatedAt:         utc,
		UpdatedAt:         utc,
		SchemaVersion:     CurrentSchemaVersion,
	}, nil
}

// ApplyUpdate validates every provided field before touching any of them.
func (c *GlobalConfig) ApplyUpdate(update GlobalConfigUpdate, now time.Time) error {
	if update.Admin != nil && strings.TrimSpace(*update.Admin) == "" {
		return fmt.Errorf("%w: admin identity", ErrValueEmpty)
	}
	if update.FeeBps != nil && *update.FeeBps > MaxFeeBps {
		return fmt.Errorf("%w: %d bps, max %d", ErrFeeOutOfRange, *update.FeeBps, MaxFeeBps)
	}
	if update.MaxModulesPerRepo != nil && *update.MaxModulesPerRepo == 0 {
		return ErrZeroCeiling
	}

	if update.Admin != nil {
		c.Admin = strings.TrimSpace(*update.Admin)
	}
	if update.FeeBps != nil {
		c.FeeBps = *update.FeeBps
	}
	if update.MaxModulesPerRepo != nil {
		c.MaxModulesPerRepo = *update.MaxModulesPerRepo
	}
	if update.PolicyRef != nil {
		c.PolicyRef = *update.PolicyRef
	}
	if update.Active != nil {
		c.Active = *update.Active
	}
	c.UpdatedAt = now.UTC()
	return nil
}

// AssertAdmin checks the signer against the configured admin identity.
func (c GlobalConfig) AssertAdmin(signer string) error {
	if strings.TrimSpace(signer) != c.Admin {
		return ErrIdentityMismatch
	}
	return nil
}

func (c GlobalConfig) AssertActive() error {
	if !c.Active {
		return ErrEngineInactive
	}
	return nil
}

// Metrics holds deployment-wide aggregate counters. Every mutation uses
// checked arithmetic so a rejected bump leaves all counters untouched.
type Metrics struct {
	TotalRepos        uint64
	TotalForks        uint64
	TotalObservations uint64
	TotalLinesOfCode  uint64
	UpdatedAt         time.Time
	SchemaVersion     uint8
}

func NewMetrics(now time.Time) Metrics {
	return Metrics{UpdatedAt: now.UTC(), SchemaVersion: CurrentSchemaVersion}
}

func (m *Metrics) RecordRepoRegistered(now time.Time) error {
	next, err := checkedAddU64(m.TotalRepos, 1)
	if err != nil {
		return err
	}
	m.TotalRepos = next
	m.UpdatedAt = now.UTC()
	return nil
}

func (m *Metrics) RecordForkCreated(now time.Time) error {
	next, err := checkedAddU64(m.TotalForks, 1)
	if err != nil {
		return err
	}
	m.TotalForks = next
	m.UpdatedAt = now.UTC()
	return nil
}

// RecordObservation folds a run into the global totals. Both additions are
// computed before either counter moves.
func (m *Metrics) RecordObservation(linesOfCode uint64, now time.Time) error {
	nextObs, err := checkedAddU64(m.TotalObservations, 1)
	if err != nil {
		return err
	}
	nextLines, err := checkedAddU64(m.TotalLinesOfCode, linesOfCode)
	if err != nil {
		return err
	}
	m.TotalObservations = nextObs
	m.TotalLinesOfCode = nextLines
	m.UpdatedAt = now.UTC()
	return nil
}

// GlobalMetadata is the optional descriptive surface for the deployment.
// All fields are free-form capped strings. The account starts empty and is
// filled in lazily by admin updates.
type GlobalMetadata struct {
	Name          string
	Description   string
	IconURI       string
	ProjectURL    string
	ContactURL    string
	DocsURL       string
	ExtraJSON     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SchemaVersion uint8
}

// GlobalMetadataUpdate carries a partial update. Nil fields are untouched.
// Provided fields may be empty strings, which clears them.
type GlobalMetadataUpdate struct {
	Name        *string
	Description *string
	IconURI     *string
	ProjectURL  *string
	ContactURL  *string
	DocsURL     *string
	ExtraJSON   *string
}

func NewGlobalMetadata(now time.Time) GlobalMetadata {
	utc := now.UTC()
	return GlobalMetadata{CreatedAt: utc, UpdatedAt: utc, SchemaVersion: CurrentSchemaVersion}
}

// ApplyUpdate enforces length caps on every provided field before applying
// any of them. Content shape is not inspected here.
func (g *GlobalMetadata) ApplyUpdate(update GlobalMetadataUpdate, limits Limits, now time.Time) error {
	checks := []struct {
		field string
		value *string
		max   int
	}{
		{"name", update.Name, limits.MaxNameLen},
		{"description", update.Description, limits.MaxDescriptionLen},
		{"icon_uri", update.IconURI, limits.MaxIconURILen},
		{"project_url", update.ProjectURL, limits.MaxURLLen},
		{"contact_url", update.ContactURL, limits.MaxURLLen},
		{"docs_url", update.DocsURL, limits.MaxURLLen},
		{"extra_json", update.ExtraJSON, limits.MaxExtraJSONLen},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := validateOptionalString(c.field, *c.value, c.max); err != nil {
			return err
		}
	}

	if update.Name != nil {
		g.Name = *update.Name
	}
	if update.Description != nil {
		g.Description = *update.Description
	}
	if update.IconURI != nil {
		g.IconURI = *update.IconURI
	}
	if update.ProjectURL != nil {
		g.ProjectURL = *update.ProjectURL
	}
	if update.ContactURL != nil {
		g.ContactURL = *update.ContactURL
	}
	if update.DocsURL != nil {
		g.DocsURL = *update.DocsURL
	}
	if update.ExtraJSON != nil {
		g.ExtraJSON = *update.ExtraJSON
	}
	g.UpdatedAt = now.UTC()
	return nil
}
