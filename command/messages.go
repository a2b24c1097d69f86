package command

import (
	"fmt"
	"strings"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

const (
	TypeBootstrap           = "raccoon.command.bootstrap"
	TypeSetPhase            = "raccoon.command.lifecycle.set_phase"
	TypeSetGlobalFreeze     = "raccoon.command.lifecycle.set_freeze"
	TypeRequireMigration    = "raccoon.command.lifecycle.migration.require"
	TypeStartMigration      = "raccoon.command.lifecycle.migration.start"
	TypeCompleteMigration   = "raccoon.command.lifecycle.migration.complete"
	TypeUpdateLifecycleNote = "raccoon.command.lifecycle.update_note"
	TypeGrantAccess         = "raccoon.command.access.grant"
	TypeRevokeAccess        = "raccoon.command.access.revoke"
	TypeSetAccessRoles      = "raccoon.command.access.set_roles"
	TypeClearAccess         = "raccoon.command.access.clear"
	TypeRegisterRepo        = "raccoon.command.repo.register"
	TypeUpdateRepo          = "raccoon.command.repo.update"
	TypeAddModule           = "raccoon.command.module.add"
	TypeArchiveModule       = "raccoon.command.module.archive"
	TypeRecordObservation   = "raccoon.command.observation.record"
	TypeRequestObservation  = "raccoon.command.observation.request"
	TypeCreateFork          = "raccoon.command.fork.create"
	TypeUpdateFork          = "raccoon.command.fork.update"
	TypeUpdateGlobalConfig  = "raccoon.command.config.update"
	TypeTransferAdmin       = "raccoon.command.admin.transfer"
	TypeSetEngineActive     = "raccoon.command.config.set_active"
	TypeUpdateMetadata      = "raccoon.command.metadata.update"
)

type BootstrapMessage struct {
	Request core.BootstrapRequest
}

func (BootstrapMessage) Type() string { return TypeBootstrap }

func (m BootstrapMessage) Validate() error {
	if strings.TrimSpace(m.Request.Admin) == "" {
		return fmt.Errorf("command: admin identity is required")
	}
	if m.Request.FeeBps > core.MaxFeeBps {
		return fmt.Errorf("command: fee must not exceed %d bps", core.MaxFeeBps)
	}
	return nil
}

type SetPhaseMessage struct {
	Signer string
	Phase  core.Phase
}

func (SetPhaseMessage) Type() string { return TypeSetPhase }

func (m SetPhaseMessage) Validate() error {
	if err := requireSigner(m.Signer); err != nil {
		return err
	}
	if !m.Phase.Valid() {
		return commandInvalidInputError(fmt.Sprintf("command: invalid phase %d", uint8(m.Phase)))
	}
	return nil
}

type SetGlobalFreezeMessage struct {
	Signer string
	Frozen bool
}

func (SetGlobalFreezeMessage) Type() string { return TypeSetGlobalFreeze }

func (m SetGlobalFreezeMessage) Validate() error {
	return requireSigner(m.Signer)
}

type RequireMigrationMessage struct {
	Signer string
}

func (RequireMigrationMessage) Type() string { return TypeRequireMigration }

func (m RequireMigrationMessage) Validate() error {
	return requireSigner(m.Signer)
}

type StartMigrationMessage struct {
	Signer string
}

func (StartMigrationMessage) Type() string { return TypeStartMigration }

func (m StartMigrationMessage) Validate() error {
	return requireSigner(m.Signer)
}

type CompleteMigrationMessage struct {
	Signer string
	Next   core.Phase
}

func (CompleteMigrationMessage) Type() string { return TypeCompleteMigration }

func (m CompleteMigrationMessage) Validate() error {
	if err := requireSigner(m.Signer); err != nil {
		return err
	}
	if !m.Next.Valid() {
		return commandInvalidInputError(fmt.Sprintf("command: invalid phase %d", uint8(m.Next)))
	}
	return nil
}

type UpdateLifecycleNoteMessage struct {
	Signer  string
	NoteRef core.Ref
}

func (UpdateLifecycleNoteMessage) Type() string { return TypeUpdateLifecycleNote }

func (m UpdateLifecycleNoteMessage) Validate() error {
	return requireSigner(m.Signer)
}

type GrantAccessMessage struct {
	Request core.GrantAccessRequest
}

func (GrantAccessMessage) Type() string { return TypeGrantAccess }

func (m GrantAccessMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Identity) == "" {
		return fmt.Errorf("command: grantee identity is required")
	}
	if err := m.Request.Roles.Validate(); err != nil {
		return commandWrapValidation(err, "command: role mask carries unknown bits")
	}
	return nil
}

type RevokeAccessMessage struct {
	Request core.RevokeAccessRequest
}

func (RevokeAccessMessage) Type() string { return TypeRevokeAccess }

func (m RevokeAccessMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Identity) == "" {
		return fmt.Errorf("command: target identity is required")
	}
	return nil
}

type SetAccessRolesMessage struct {
	Request core.SetAccessRolesRequest
}

func (SetAccessRolesMessage) Type() string { return TypeSetAccessRoles }

func (m SetAccessRolesMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Identity) == "" {
		return fmt.Errorf("command: target identity is required")
	}
	if err := m.Request.Roles.Validate(); err != nil {
		return commandWrapValidation(err, "command: role mask carries unknown bits")
	}
	return nil
}

type ClearAccessMessage struct {
	Signer   string
	Identity string
	Scope    core.Scope
}

func (ClearAccessMessage) Type() string { return TypeClearAccess }

func (m ClearAccessMessage) Validate() error {
	if err := requireSigner(m.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Identity) == "" {
		return fmt.Errorf("command: target identity is required")
	}
	return nil
}

type RegisterRepoMessage struct {
	Request core.RegisterRepoRequest
}

func (RegisterRepoMessage) Type() string { return TypeRegisterRepo }

func (m RegisterRepoMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Key) == "" {
		return fmt.Errorf("command: repo key is required")
	}
	if strings.TrimSpace(m.Request.Name) == "" {
		return fmt.Errorf("command: repo name is required")
	}
	if strings.TrimSpace(m.Request.URL) == "" {
		return fmt.Errorf("command: repo url is required")
	}
	return nil
}

type UpdateRepoMessage struct {
	Request core.UpdateRepoRequest
}

func (UpdateRepoMessage) Type() string { return TypeUpdateRepo }

func (m UpdateRepoMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Key) == "" {
		return fmt.Errorf("command: repo key is required")
	}
	u := m.Request.Update
	if u.Name == nil && u.URL == nil && u.Tags == nil && u.Active == nil && u.AllowObservation == nil {
		return fmt.Errorf("command: update carries no fields")
	}
	return nil
}

type AddModuleMessage struct {
	Signer  string
	RepoKey string
}

func (AddModuleMessage) Type() string { return TypeAddModule }

func (m AddModuleMessage) Validate() error {
	if err := requireSigner(m.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.RepoKey) == "" {
		return fmt.Errorf("command: repo key is required")
	}
	return nil
}

type ArchiveModuleMessage struct {
	Signer  string
	RepoKey string
}

func (ArchiveModuleMessage) Type() string { return TypeArchiveModule }

func (m ArchiveModuleMessage) Validate() error {
	if err := requireSigner(m.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.RepoKey) == "" {
		return fmt.Errorf("command: repo key is required")
	}
	return nil
}

type RecordObservationMessage struct {
	Request core.RecordObservationRequest
}

func (RecordObservationMessage) Type() string { return TypeRecordObservation }

func (m RecordObservationMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.RepoKey) == "" {
		return fmt.Errorf("command: repo key is required")
	}
	return nil
}

type RequestObservationMessage struct {
	Request core.RequestObservationRequest
}

func (RequestObservationMessage) Type() string { return TypeRequestObservation }

func (m RequestObservationMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.RepoKey) == "" {
		return fmt.Errorf("command: repo key is required")
	}
	return nil
}

type CreateForkMessage struct {
	Request core.CreateForkRequest
}

func (CreateForkMessage) Type() string { return TypeCreateFork }

func (m CreateForkMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Key) == "" {
		return fmt.Errorf("command: fork key is required")
	}
	if strings.TrimSpace(m.Request.Label) == "" {
		return fmt.Errorf("command: fork label is required")
	}
	if strings.TrimSpace(m.Request.ParentKey) == "" {
		return fmt.Errorf("command: parent key is required")
	}
	return nil
}

type UpdateForkMessage struct {
	Request core.UpdateForkRequest
}

func (UpdateForkMessage) Type() string { return TypeUpdateFork }

func (m UpdateForkMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Key) == "" {
		return fmt.Errorf("command: fork key is required")
	}
	u := m.Request.Update
	if u.Label == nil && u.MetadataURI == nil && u.Tags == nil && u.Active == nil {
		return fmt.Errorf("command: update carries no fields")
	}
	return nil
}

type UpdateGlobalConfigMessage struct {
	Request core.UpdateGlobalConfigRequest
}

func (UpdateGlobalConfigMessage) Type() string { return TypeUpdateGlobalConfig }

func (m UpdateGlobalConfigMessage) Validate() error {
	if err := requireSigner(m.Request.Signer); err != nil {
		return err
	}
	if fee := m.Request.Update.FeeBps; fee != nil && *fee > core.MaxFeeBps {
		return fmt.Errorf("command: fee must not exceed %d bps", core.MaxFeeBps)
	}
	return nil
}

type TransferAdminMessage struct {
	Signer    string
	Successor string
}

func (TransferAdminMessage) Type() string { return TypeTransferAdmin }

func (m TransferAdminMessage) Validate() error {
	if err := requireSigner(m.Signer); err != nil {
		return err
	}
	if strings.TrimSpace(m.Successor) == "" {
		return fmt.Errorf("command: successor identity is required")
	}
	return nil
}

type SetEngineActiveMessage struct {
	Signer string
	Active bool
}

func (SetEngineActiveMessage) Type() string { return TypeSetEngineActive }

func (m SetEngineActiveMessage) Validate() error {
	return requireSigner(m.Signer)
}

type UpdateGlobalMetadataMessage struct {
	Request core.UpdateGlobalMetadataRequest
}

func (UpdateGlobalMetadataMessage) Type() string { return TypeUpdateMetadata }

func (m UpdateGlobalMetadataMessage) Validate() error {
	return requireSigner(m.Request.Signer)
}

func requireSigner(signer string) error {
	if strings.TrimSpace(signer) == "" {
		return commandValidationError("signer", "signer identity is required")
	}
	return nil
}
