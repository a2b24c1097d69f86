package core

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Fixed little-endian layout of an exported lifecycle snapshot. The
// reserved tail keeps the record width stable across schema revisions.
const (
	lifecycleRecordVersionLen   = 1
	lifecycleRecordPhaseLen     = 1
	lifecycleRecordFlagsLen     = 1
	lifecycleRecordTimestampLen = 8
	lifecycleRecordReservedLen  = 16

	// LifecycleRecordLen is the exact byte width of an encoded snapshot.
	LifecycleRecordLen = lifecycleRecordVersionLen +
		lifecycleRecordPhaseLen +
		lifecycleRecordFlagsLen +
		4*lifecycleRecordTimestampLen +
		RefLen +
		lifecycleRecordReservedLen
)

const (
	lifecycleFlagGlobalFreeze        = 1 << 0
	lifecycleFlagMigrationRequired   = 1 << 1
	lifecycleFlagMigrationInProgress = 1 << 2
)

var (
	ErrRecordTooShort          = errors.New("core: record payload is too short")
	ErrRecordVersionUnknown    = errors.New("core: record schema version is not supported")
	ErrRecordReservedCorrupted = errors.New("core: record reserved region is not zeroed")
)

// LifecycleRecordCodec serializes lifecycle snapshots into the fixed-width
// binary record consumed by external tooling.
type LifecycleRecordCodec struct{}

func (LifecycleRecordCodec) Version() uint8 { return CurrentSchemaVersion }

func (LifecycleRecordCodec) Encode(lifecycle Lifecycle) ([]byte, error) {
	if !lifecycle.Phase.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPhase, uint8(lifecycle.Phase))
	}

	buf := make([]byte, 0, LifecycleRecordLen)
	buf = append(buf, lifecycle.SchemaVersion)
	buf = append(buf, uint8(lifecycle.Phase))

	var flags uint8
	if lifecycle.GlobalFreeze {
		flags |= lifecycleFlagGlobalFreeze
	}
	if lifecycle.MigrationRequired {
		flags |= lifecycleFlagMigrationRequired
	}
	if lifecycle.MigrationInProgress {
		flags |= lifecycleFlagMigrationInProgress
	}
	buf = append(buf, flags)

	for _, ts := range []time.Time{
		lifecycle.CreatedAt,
		lifecycle.UpdatedAt,
		lifecycle.PhaseChangedAt,
		lifecycle.MigrationStateChangedAt,
	} {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(ts.UTC().Unix()))
	}
	buf = append(buf, lifecycle.NoteRef[:]...)
	buf = append(buf, make([]byte, lifecycleRecordReservedLen)...)
	return buf, nil
}

func (LifecycleRecordCodec) Decode(payload []byte) (Lifecycle, error) {
	if len(payload) < LifecycleRecordLen {
		return Lifecycle{}, fmt.Errorf("%w: %d bytes, want %d", ErrRecordTooShort, len(payload), LifecycleRecordLen)
	}

	version := payload[0]
	if version == 0 || version > CurrentSchemaVersion {
		return Lifecycle{}, fmt.Errorf("%w: %d", ErrRecordVersionUnknown, version)
	}
	phase, err := ParsePhase(payload[1])
	if err != nil {
		return Lifecycle{}, err
	}
	flags := payload[2]

	offset := 3
	timestamps := make([]time.Time, 4)
	for i := range timestamps {
		seconds := binary.LittleEndian.Uint64(payload[offset : offset+lifecycleRecordTimestampLen])
		timestamps[i] = time.Unix(int64(seconds), 0).UTC()
		offset += lifecycleRecordTimestampLen
	}

	var noteRef Ref
	copy(noteRef[:], payload[offset:offset+RefLen])
	offset += RefLen

	for _, b := range payload[offset : offset+lifecycleRecordReservedLen] {
		if b != 0 {
			return Lifecycle{}, ErrRecordReservedCorrupted
		}
	}

	return Lifecycle{
		Phase:                   phase,
		GlobalFreeze:            flags&lifecycleFlagGlobalFreeze != 0,
		MigrationRequired:       flags&lifecycleFlagMigrationRequired != 0,
		MigrationInProgress:     flags&lifecycleFlagMigrationInProgress != 0,
		CreatedAt:               timestamps[0],
		UpdatedAt:               timestamps[1],
		PhaseChangedAt:          timestamps[2],
		MigrationStateChangedAt: timestamps[3],
		NoteRef:                 noteRef,
		SchemaVersion:           version,
	}, nil
}

// ExportLifecycleRecord encodes the stored lifecycle account into its
// binary snapshot form.
func (s *Service) ExportLifecycleRecord(ctx context.Context) ([]byte, error) {
	lifecycle, err := s.loadLifecycle(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	payload, err := LifecycleRecordCodec{}.Encode(lifecycle)
	if err != nil {
		return nil, s.mapError(err)
	}
	return payload, nil
}
