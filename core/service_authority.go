package core

import (
	"context"
	"strings"
	"time"
)

// GrantAccessRequest adds roles to an identity inside one scope. A missing
// entry is created, an existing one is extended with a bitwise OR.
type GrantAccessRequest struct {
	Signer   string
	Identity string
	Roles    Role
	Scope    Scope
}

// GrantAccess upserts an access entry. Admin only, and blocked while the
// deployment is write restricted.
func (s *Service) GrantAccess(ctx context.Context, req GrantAccessRequest) (entry AccessEntry, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"identity": req.Identity,
		"scope":    req.Scope.String(),
		"roles":    req.Roles.String(),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "grant_access", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if _, err = s.requireAdmin(ctx, req.Signer); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if s.authorityStore == nil {
		err = s.mapError(ErrNotInitialized)
		return AccessEntry{}, err
	}

	now := s.now()
	existing, lookupErr := s.authorityStore.Get(ctx, req.Identity, req.Scope)
	switch {
	case lookupErr == nil:
		if err = existing.GrantRoles(req.Roles, now); err != nil {
			err = s.mapError(err)
			return AccessEntry{}, err
		}
		entry = existing
	case isNotFound(lookupErr):
		entry, err = NewAccessEntry(req.Identity, req.Roles, req.Scope, now)
		if err != nil {
			err = s.mapError(err)
			return AccessEntry{}, err
		}
	default:
		err = s.mapError(lookupErr)
		return AccessEntry{}, err
	}

	if err = s.authorityStore.Save(ctx, entry); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	return entry, nil
}

// RevokeAccessRequest strips roles from an existing entry.
type RevokeAccessRequest struct {
	Signer   string
	Identity string
	Roles    Role
	Scope    Scope
}

// RevokeAccess clears role bits on an entry. Revoking bits the entry does
// not carry is a no-op on those bits. The entry survives with zero roles.
func (s *Service) RevokeAccess(ctx context.Context, req RevokeAccessRequest) (entry AccessEntry, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"identity": req.Identity,
		"scope":    req.Scope.String(),
		"roles":    req.Roles.String(),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "revoke_access", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if _, err = s.requireAdmin(ctx, req.Signer); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if s.authorityStore == nil {
		err = s.mapError(ErrNotInitialized)
		return AccessEntry{}, err
	}

	entry, err = s.authorityStore.Get(ctx, req.Identity, req.Scope)
	if err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	entry.RevokeRoles(req.Roles, s.now())
	if err = s.authorityStore.Save(ctx, entry); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	return entry, nil
}

// SetAccessRolesRequest replaces the whole role set on an entry.
type SetAccessRolesRequest struct {
	Signer   string
	Identity string
	Roles    Role
	Scope    Scope
}

// SetAccessRoles overwrites the role mask of an existing entry.
func (s *Service) SetAccessRoles(ctx context.Context, req SetAccessRolesRequest) (entry AccessEntry, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"identity": req.Identity,
		"scope":    req.Scope.String(),
		"roles":    req.Roles.String(),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "set_access_roles", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if _, err = s.requireAdmin(ctx, req.Signer); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if s.authorityStore == nil {
		err = s.mapError(ErrNotInitialized)
		return AccessEntry{}, err
	}

	entry, err = s.authorityStore.Get(ctx, req.Identity, req.Scope)
	if err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if err = entry.SetRoles(req.Roles, s.now()); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if err = s.authorityStore.Save(ctx, entry); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	return entry, nil
}

// ClearAccess zeroes every role bit on an entry. Entries are never removed,
// only emptied.
func (s *Service) ClearAccess(ctx context.Context, signer, identity string, scope Scope) (entry AccessEntry, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"identity": identity,
		"scope":    scope.String(),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "clear_access", err, fields)
	}()

	if _, err = s.gateWrites(ctx); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if _, err = s.requireAdmin(ctx, signer); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	if s.authorityStore == nil {
		err = s.mapError(ErrNotInitialized)
		return AccessEntry{}, err
	}
	entry, err = s.authorityStore.Get(ctx, identity, scope)
	if err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	entry.ClearRoles(s.now())
	if err = s.authorityStore.Save(ctx, entry); err != nil {
		err = s.mapError(err)
		return AccessEntry{}, err
	}
	return entry, nil
}

// ListAccess returns every access entry held by an identity, global and
// scoped alike.
func (s *Service) ListAccess(ctx context.Context, identity string) ([]AccessEntry, error) {
	if s == nil || s.authorityStore == nil {
		return nil, s.mapError(ErrNotInitialized)
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, s.mapError(ErrIdentityMismatch)
	}
	entries, err := s.authorityStore.ListByIdentity(ctx, identity)
	if err != nil {
		return nil, s.mapError(err)
	}
	return entries, nil
}

// CheckAccess evaluates whether a signer holds the required roles for a
// resource. A scoped entry is tried before the global fallback. This is a
// pure read and never touches stored state.
func (s *Service) CheckAccess(ctx context.Context, signer string, required Role, resourceID string) error {
	if err := required.Validate(); err != nil {
		return s.mapError(err)
	}
	signer = strings.TrimSpace(signer)
	if signer == "" {
		return s.mapError(ErrIdentityMismatch)
	}
	if s == nil || s.authorityStore == nil {
		return s.mapError(ErrInsufficientRole)
	}
	resourceID = strings.TrimSpace(resourceID)
	if resourceID != "" {
		if entry, err := s.authorityStore.Get(ctx, signer, ScopedTo(resourceID)); err == nil {
			if authErr := entry.AssertAllowedForResource(signer, required, resourceID); authErr == nil {
				return nil
			}
		}
	}
	entry, err := s.authorityStore.Get(ctx, signer, GlobalScope())
	if err != nil {
		if isNotFound(err) {
			return s.mapError(ErrInsufficientRole)
		}
		return s.mapError(err)
	}
	if authErr := entry.AssertAllowedForResource(signer, required, resourceID); authErr != nil {
		return s.mapError(authErr)
	}
	return nil
}
