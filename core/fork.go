package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrForkInactive = errors.New("core: fork is inactive")

// Fork is a derived deployment tracked against its parent. ParentKey and
// Depth are fixed at creation. Updates only reach the descriptive fields.
type Fork struct {
	Key           string
	Owner         string
	Label         string
	MetadataURI   string
	Tags          string
	Active        bool
	ParentKey     string
	Depth         uint16
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SchemaVersion uint8
}

// ForkUpdate carries a partial update. Nil fields are untouched. Parent
// linkage is deliberately absent.
type ForkUpdate struct {
	Label       *string
	MetadataURI *string
	Tags        *string
	Active      *bool
}

// NewFork validates creation input and returns an active fork one level
// below its parent.
func NewFork(key, owner, label, metadataURI, tags, parentKey string, parentDepth uint16, limits Limits, now time.Time) (Fork, error) {
	key = strings.TrimSpace(key)
	owner = strings.TrimSpace(owner)
	parentKey = strings.TrimSpace(parentKey)
	if key == "" {
		return Fork{}, fmt.Errorf("%w: fork key", ErrValueEmpty)
	}
	if owner == "" {
		return Fork{}, fmt.Errorf("%w: fork owner", ErrValueEmpty)
	}
	if parentKey == "" {
		return Fork{}, fmt.Errorf("%w: fork parent key", ErrValueEmpty)
	}
	if err := validateRequiredString("label", label, limits.MaxLabelLen); err != nil {
		return Fork{}, err
	}
	if err := validateOptionalString("metadata_uri", metadataURI, limits.MaxMetadataURILen); err != nil {
		return Fork{}, err
	}
	if err := validateOptionalString("tags", tags, limits.MaxTagsLen); err != nil {
		return Fork{}, err
	}
	depth, err := checkedAddU16(parentDepth, 1)
	if err != nil {
		return Fork{}, err
	}
	utc := now.UTC()
	return Fork{
		Key:           key,
		Owner:         owner,
		Label:         label,
		MetadataURI:   metadataURI,
		Tags:          tags,
		Active:        true,
		ParentKey:     parentKey,
		Depth:         depth,
		CreatedAt:     utc,
		UpdatedAt:     utc,
		SchemaVersion: CurrentSchemaVersion,
	}, nil
}

// ApplyUpdate validates every provided field before touching any of them,
// then applies the present ones and re-stamps UpdatedAt.
func (f *Fork) ApplyUpdate(update ForkUpdate, limits Limits, now time.Time) error {
	if update.Label != nil {
		if err := validateRequiredString("label", *update.Label, limits.MaxLabelLen); err != nil {
			return err
		}
	}
	if update.MetadataURI != nil {
		if err := validateOptionalString("metadata_uri", *update.MetadataURI, limits.MaxMetadataURILen); err != nil {
			return err
		}
	}
	if update.Tags != nil {
		if err := validateOptionalString("tags", *update.Tags, limits.MaxTagsLen); err != nil {
			return err
		}
	}

	if update.Label != nil {
		f.Label = *update.Label
	}
	if update.MetadataURI != nil {
		f.MetadataURI = *update.MetadataURI
	}
	if update.Tags != nil {
		f.Tags = *update.Tags
	}
	if update.Active != nil {
		f.Active = *update.Active
	}
	f.UpdatedAt = now.UTC()
	return nil
}

// AssertOwner checks the signer against the fork owner.
func (f Fork) AssertOwner(signer string) error {
	if strings.TrimSpace(signer) != f.Owner {
		return ErrIdentityMismatch
	}
	return nil
}

func (f Fork) AssertActive() error {
	if !f.Active {
		return fmt.Errorf("%w: %s", ErrForkInactive, f.Key)
	}
	return nil
}
