package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidRoleBits  = errors.New("core: role mask has unknown bits")
	ErrIdentityMismatch = errors.New("core: signer does not match authority identity")
	ErrScopeMismatch    = errors.New("core: authority scope does not cover resource")
	ErrInsufficientRole = errors.New("core: authority lacks required role")
	ErrInvalidScope     = errors.New("core: invalid authority scope")
)

// Role is a bitmask of protocol-level roles. Roles combine with bitwise OR.
type Role uint64

const (
	RoleAdmin Role = 1 << iota
	RoleMaintainer
	RoleObserver
)

// RoleMaskAny covers every known role.
const RoleMaskAny = RoleAdmin | RoleMaintainer | RoleObserver

// Validate rejects masks carrying bits outside the known role set.
func (r Role) Validate() error {
	if r&^RoleMaskAny != 0 {
		return fmt.Errorf("%w: %#x", ErrInvalidRoleBits, uint64(r))
	}
	return nil
}

func (r Role) String() string {
	if r == 0 {
		return "none"
	}
	names := make([]string, 0, 3)
	if r&RoleAdmin != 0 {
		names = append(names, "admin")
	}
	if r&RoleMaintainer != 0 {
		names = append(names, "maintainer")
	}
	if r&RoleObserver != 0 {
		names = append(names, "observer")
	}
	if extra := r &^ RoleMaskAny; extra != 0 {
		names = append(names, fmt.Sprintf("unknown(%#x)", uint64(extra)))
	}
	return strings.Join(names, "|")
}

// Scope says whether an authority entry applies deployment-wide or to a
// single resource. The zero value is a global scope. The resource id cannot
// be set while global, so the inconsistent "global with a resource id"
// state is unrepresentable.
type Scope struct {
	scoped     bool
	resourceID string
}

// GlobalScope applies to every resource in the deployment.
func GlobalScope() Scope {
	return Scope{}
}

// ScopedTo binds an entry to exactly one resource.
func ScopedTo(resourceID string) Scope {
	return Scope{scoped: true, resourceID: strings.TrimSpace(resourceID)}
}

// ScopeFrom rebuilds a Scope from its stored parts. A global scope drops
// any stored resource id.
func ScopeFrom(global bool, resourceID string) Scope {
	if global {
		return GlobalScope()
	}
	return ScopedTo(resourceID)
}

func (s Scope) IsGlobal() bool {
	return !s.scoped
}

// ResourceID returns the bound resource id, empty for global scopes.
func (s Scope) ResourceID() string {
	return s.resourceID
}

func (s Scope) Validate() error {
	if s.scoped && s.resourceID == "" {
		return fmt.Errorf("%w: scoped entry has no resource id", ErrInvalidScope)
	}
	return nil
}

// Matches reports whether this scope covers the given resource.
func (s Scope) Matches(resourceID string) bool {
	if !s.scoped {
		return true
	}
	return s.resourceID == strings.TrimSpace(resourceID)
}

func (s Scope) String() string {
	if !s.scoped {
		return "global"
	}
	return "resource:" + s.resourceID
}

// AccessEntry maps one identity to a role mask and a scope. Entries are
// never deleted; revoking access zeroes the mask instead.
type AccessEntry struct {
	Identity      string
	Roles         Role
	Scope         Scope
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SchemaVersion uint8
}

// NewAccessEntry validates the role mask and scope and stamps timestamps.
func NewAccessEntry(identity string, roles Role, scope Scope, now time.Time) (AccessEntry, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return AccessEntry{}, fmt.Errorf("%w: identity", ErrValueEmpty)
	}
	if err := roles.Validate(); err != nil {
		return AccessEntry{}, err
	}
	if err := scope.Validate(); err != nil {
		return AccessEntry{}, err
	}
	utc := now.UTC()
	return AccessEntry{
		Identity:      identity,
		Roles:         roles,
		Scope:         scope,
		CreatedAt:     utc,
		UpdatedAt:     utc,
		SchemaVersion: CurrentSchemaVersion,
	}, nil
}

// GrantRoles adds roles to the mask. Additive; existing roles survive.
func (e *AccessEntry) GrantRoles(roles Role, now time.Time) error {
	if err := roles.Validate(); err != nil {
		return err
	}
	e.Roles |= roles
	e.UpdatedAt = now.UTC()
	return nil
}

// RevokeRoles clears the given roles from the mask. Unknown bits in the
// revocation mask are harmless; they cannot be present in the stored mask.
func (e *AccessEntry) RevokeRoles(roles Role, now time.Time) {
	e.Roles &^= roles
	e.UpdatedAt = now.UTC()
}

// SetRoles replaces the mask entirely.
func (e *AccessEntry) SetRoles(roles Role, now time.Time) error {
	if err := roles.Validate(); err != nil {
		return err
	}
	e.Roles = roles
	e.UpdatedAt = now.UTC()
	return nil
}

// ClearRoles zeroes the mask, effectively disabling the entry.
func (e *AccessEntry) ClearRoles(now time.Time) {
	e.Roles = 0
	e.UpdatedAt = now.UTC()
}

// SetScope replaces the scope.
func (e *AccessEntry) SetScope(scope Scope, now time.Time) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	e.Scope = scope
	e.UpdatedAt = now.UTC()
	return nil
}

// HasAnyRole reports whether at least one requested role is present.
func (e AccessEntry) HasAnyRole(mask Role) bool {
	return e.Roles&mask != 0
}

// HasAllRoles reports whether every requested role is present.
func (e AccessEntry) HasAllRoles(mask Role) bool {
	return e.Roles&mask == mask
}

// MatchesResource reports whether this entry covers the given resource.
func (e AccessEntry) MatchesResource(resourceID string) bool {
	return e.Scope.Matches(resourceID)
}

// AssertAllowedForResource checks that the signer may perform an action
// requiring any of the given roles on a resource. Checks run in a fixed
// order: identity, then scope, then roles.
func (e AccessEntry) AssertAllowedForResource(signer string, required Role, resourceID string) error {
	if strings.TrimSpace(signer) != e.Identity {
		return ErrIdentityMismatch
	}
	if !e.MatchesResource(resourceID) {
		return fmt.Errorf("%w: %s", ErrScopeMismatch, e.Scope)
	}
	if !e.HasAnyRole(required) {
		return fmt.Errorf("%w: need one of %s", ErrInsufficientRole, required)
	}
	return nil
}
