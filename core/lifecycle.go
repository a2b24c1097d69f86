package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrLifecycleBlocked           = errors.New("core: lifecycle blocks writes")
	ErrInvalidPhase               = errors.New("core: invalid lifecycle phase")
	ErrMigrationNotRequired       = errors.New("core: migration not required")
	ErrMigrationAlreadyInProgress = errors.New("core: migration already in progress")
	ErrMigrationNotInProgress     = errors.New("core: migration not in progress")
)

// Phase is the coarse operational mode of the whole deployment. Ordinal
// values are persisted and must stay stable across releases.
type Phase uint8

const (
	PhaseBootstrapping Phase = iota
	PhaseOperational
	PhaseMaintenance
	PhaseFrozen
	PhaseMigration
	PhaseSunset
)

// ParsePhase converts a stored ordinal back into a Phase. An unknown value
// is treated as corruption, not inferred.
func ParsePhase(value uint8) (Phase, error) {
	phase := Phase(value)
	if !phase.Valid() {
		return 0, fmt.Errorf("%w: ordinal %d", ErrInvalidPhase, value)
	}
	return phase, nil
}

func (p Phase) Valid() bool {
	return p <= PhaseSunset
}

func (p Phase) String() string {
	switch p {
	case PhaseBootstrapping:
		return "bootstrapping"
	case PhaseOperational:
		return "operational"
	case PhaseMaintenance:
		return "maintenance"
	case PhaseFrozen:
		return "frozen"
	case PhaseMigration:
		return "migration"
	case PhaseSunset:
		return "sunset"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// WriteRestricted reports whether the phase alone blocks mutations.
func (p Phase) WriteRestricted() bool {
	switch p {
	case PhaseFrozen, PhaseMigration, PhaseSunset:
		return true
	default:
		return false
	}
}

// ReadOnly reports whether the phase should be treated as read-only by
// default. Migration is write-restricted but intentionally not read-only;
// migration instructions still write.
func (p Phase) ReadOnly() bool {
	return p == PhaseFrozen || p == PhaseSunset
}

// Lifecycle is the deployment-wide phase and freeze state. There is exactly
// one per deployment, created at bootstrap and never destroyed.
type Lifecycle struct {
	Phase                   Phase
	GlobalFreeze            bool
	MigrationRequired       bool
	MigrationInProgress     bool
	PhaseChangedAt          time.Time
	MigrationStateChangedAt time.Time
	NoteRef                 Ref
	CreatedAt               time.Time
	UpdatedAt               time.Time
	SchemaVersion           uint8
}

// NewLifecycle returns the bootstrap-phase lifecycle state.
func NewLifecycle(noteRef Ref, now time.Time) Lifecycle {
	utc := now.UTC()
	return Lifecycle{
		Phase:          PhaseBootstrapping,
		PhaseChangedAt: utc,
		NoteRef:        noteRef,
		CreatedAt:      utc,
		UpdatedAt:      utc,
		SchemaVersion:  CurrentSchemaVersion,
	}
}

// SetPhase moves the deployment to a new phase. Any phase may follow any
// phase; there is deliberately no transition table. Setting the current
// phase again is a no-op and does not re-stamp PhaseChangedAt.
func (l *Lifecycle) SetPhase(next Phase, now time.Time) error {
	if _, err := ParsePhase(uint8(l.Phase)); err != nil {
		return err
	}
	if !next.Valid() {
		return fmt.Errorf("%w: ordinal %d", ErrInvalidPhase, uint8(next))
	}
	if l.Phase == next {
		return nil
	}
	l.Phase = next
	l.PhaseChangedAt = now.UTC()
	l.UpdatedAt = now.UTC()
	return nil
}

// SetGlobalFreeze toggles the emergency freeze switch independently of the
// current phase.
func (l *Lifecycle) SetGlobalFreeze(freeze bool, now time.Time) {
	l.GlobalFreeze = freeze
	l.UpdatedAt = now.UTC()
}

// RequireMigration marks that a migration must run before further writes.
// Idempotent; the phase is untouched.
func (l *Lifecycle) RequireMigration(now time.Time) {
	l.MigrationRequired = true
	l.MigrationStateChangedAt = now.UTC()
	l.UpdatedAt = now.UTC()
}

// StartMigration begins a previously required migration and forces the
// phase to Migration.
func (l *Lifecycle) StartMigration(now time.Time) error {
	if !l.MigrationRequired {
		return ErrMigrationNotRequired
	}
	if l.MigrationInProgress {
		return ErrMigrationAlreadyInProgress
	}
	l.MigrationInProgress = true
	l.Phase = PhaseMigration
	utc := now.UTC()
	l.PhaseChangedAt = utc
	l.MigrationStateChangedAt = utc
	l.UpdatedAt = utc
	return nil
}

// CompleteMigration clears both migration flags and moves to the phase the
// caller chose. The next phase is the caller's policy decision.
func (l *Lifecycle) CompleteMigration(next Phase, now time.Time) error {
	if !l.MigrationInProgress {
		return ErrMigrationNotInProgress
	}
	if !next.Valid() {
		return fmt.Errorf("%w: ordinal %d", ErrInvalidPhase, uint8(next))
	}
	l.MigrationRequired = false
	l.MigrationInProgress = false
	l.Phase = next
	utc := now.UTC()
	l.PhaseChangedAt = utc
	l.MigrationStateChangedAt = utc
	l.UpdatedAt = utc
	return nil
}

// UpdateNoteRef repoints the lifecycle note reference.
func (l *Lifecycle) UpdateNoteRef(noteRef Ref, now time.Time) {
	l.NoteRef = noteRef
	l.UpdatedAt = now.UTC()
}

// AssertWritesAllowed is the central write gate. It fails when a global
// freeze is active, when the phase is write-restricted, or when a required
// migration has not started yet.
func (l Lifecycle) AssertWritesAllowed() error {
	phase, err := ParsePhase(uint8(l.Phase))
	if err != nil {
		return err
	}
	if l.GlobalFreeze {
		return fmt.Errorf("%w: global freeze active", ErrLifecycleBlocked)
	}
	if phase.WriteRestricted() {
		return fmt.Errorf("%w: phase %s", ErrLifecycleBlocked, phase)
	}
	if l.MigrationRequired && !l.MigrationInProgress {
		return fmt.Errorf("%w: migration required but not started", ErrLifecycleBlocked)
	}
	return nil
}

// IsEffectivelyReadOnly reports whether the deployment should be presented
// as read-only, either by freeze or by phase. Note the asymmetry with
// AssertWritesAllowed: the Migration phase blocks writes but is not
// reported read-only here.
func (l Lifecycle) IsEffectivelyReadOnly() (bool, error) {
	phase, err := ParsePhase(uint8(l.Phase))
	if err != nil {
		return false, err
	}
	return l.GlobalFreeze || phase.ReadOnly(), nil
}
