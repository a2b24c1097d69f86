package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

// MutatingService is the slice of the engine surface commands dispatch to.
type MutatingService interface {
	Bootstrap(ctx context.Context, req core.BootstrapRequest) (core.BootstrapResult, error)
	SetPhase(ctx context.Context, signer string, next core.Phase) (core.Lifecycle, error)
	SetGlobalFreeze(ctx context.Context, signer string, frozen bool) (core.Lifecycle, error)
	RequireMigration(ctx context.Context, signer string) (core.Lifecycle, error)
	StartMigration(ctx context.Context, signer string) (core.Lifecycle, error)
	CompleteMigration(ctx context.Context, signer string, next core.Phase) (core.Lifecycle, error)
	UpdateLifecycleNote(ctx context.Context, signer string, noteRef core.Ref) (core.Lifecycle, error)
	GrantAccess(ctx context.Context, req core.GrantAccessRequest) (core.AccessEntry, error)
	RevokeAccess(ctx context.Context, req core.RevokeAccessRequest) (core.AccessEntry, error)
	SetAccessRoles(ctx context.Context, req core.SetAccessRolesRequest) (core.AccessEntry, error)
	ClearAccess(ctx context.Context, signer, identity string, scope core.Scope) (core.AccessEntry, error)
	RegisterRepo(ctx context.Context, req core.RegisterRepoRequest) (core.Repo, error)
	UpdateRepo(ctx context.Context, req core.UpdateRepoRequest) (core.Repo, error)
	AddModule(ctx context.Context, signer, repoKey string) (core.Repo, error)
	ArchiveModule(ctx context.Context, signer, repoKey string) (core.Repo, error)
	RecordObservation(ctx context.Context, req core.RecordObservationRequest) (core.Repo, error)
	RequestObservation(ctx context.Context, req core.RequestObservationRequest) error
	CreateFork(ctx context.Context, req core.CreateForkRequest) (core.Fork, error)
	UpdateFork(ctx context.Context, req core.UpdateForkRequest) (core.Fork, error)
	UpdateGlobalConfig(ctx context.Context, req core.UpdateGlobalConfigRequest) (core.GlobalConfig, error)
	TransferAdmin(ctx context.Context, signer, successor string) (core.GlobalConfig, error)
	SetEngineActive(ctx context.Context, signer string, active bool) (core.GlobalConfig, error)
	UpdateGlobalMetadata(ctx context.Context, req core.UpdateGlobalMetadataRequest) (core.GlobalMetadata, error)
}

type BootstrapCommand struct {
	service MutatingService
}

func NewBootstrapCommand(service MutatingService) *BootstrapCommand {
	return &BootstrapCommand{service: service}
}

func (c *BootstrapCommand) Execute(ctx context.Context, msg BootstrapMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: bootstrap service is required")
	}
	out, err := c.service.Bootstrap(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetPhaseCommand struct {
	service MutatingService
}

func NewSetPhaseCommand(service MutatingService) *SetPhaseCommand {
	return &SetPhaseCommand{service: service}
}

func (c *SetPhaseCommand) Execute(ctx context.Context, msg SetPhaseMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: set phase service is required")
	}
	out, err := c.service.SetPhase(ctx, msg.Signer, msg.Phase)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetGlobalFreezeCommand struct {
	service MutatingService
}

func NewSetGlobalFreezeCommand(service MutatingService) *SetGlobalFreezeCommand {
	return &SetGlobalFreezeCommand{service: service}
}

func (c *SetGlobalFreezeCommand) Execute(ctx context.Context, msg SetGlobalFreezeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: freeze service is required")
	}
	out, err := c.service.SetGlobalFreeze(ctx, msg.Signer, msg.Frozen)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RequireMigrationCommand struct {
	service MutatingService
}

func NewRequireMigrationCommand(service MutatingService) *RequireMigrationCommand {
	return &RequireMigrationCommand{service: service}
}

func (c *RequireMigrationCommand) Execute(ctx context.Context, msg RequireMigrationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: migration service is required")
	}
	out, err := c.service.RequireMigration(ctx, msg.Signer)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type StartMigrationCommand struct {
	service MutatingService
}

func NewStartMigrationCommand(service MutatingService) *StartMigrationCommand {
	return &StartMigrationCommand{service: service}
}

func (c *StartMigrationCommand) Execute(ctx context.Context, msg StartMigrationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: migration service is required")
	}
	out, err := c.service.StartMigration(ctx, msg.Signer)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CompleteMigrationCommand struct {
	service MutatingService
}

func NewCompleteMigrationCommand(service MutatingService) *CompleteMigrationCommand {
	return &CompleteMigrationCommand{service: service}
}

func (c *CompleteMigrationCommand) Execute(ctx context.Context, msg CompleteMigrationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: migration service is required")
	}
	out, err := c.service.CompleteMigration(ctx, msg.Signer, msg.Next)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateLifecycleNoteCommand struct {
	service MutatingService
}

func NewUpdateLifecycleNoteCommand(service MutatingService) *UpdateLifecycleNoteCommand {
	return &UpdateLifecycleNoteCommand{service: service}
}

func (c *UpdateLifecycleNoteCommand) Execute(ctx context.Context, msg UpdateLifecycleNoteMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: lifecycle note service is required")
	}
	out, err := c.service.UpdateLifecycleNote(ctx, msg.Signer, msg.NoteRef)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type GrantAccessCommand struct {
	service MutatingService
}

func NewGrantAccessCommand(service MutatingService) *GrantAccessCommand {
	return &GrantAccessCommand{service: service}
}

func (c *GrantAccessCommand) Execute(ctx context.Context, msg GrantAccessMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: access service is required")
	}
	out, err := c.service.GrantAccess(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RevokeAccessCommand struct {
	service MutatingService
}

func NewRevokeAccessCommand(service MutatingService) *RevokeAccessCommand {
	return &RevokeAccessCommand{service: service}
}

func (c *RevokeAccessCommand) Execute(ctx context.Context, msg RevokeAccessMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: access service is required")
	}
	out, err := c.service.RevokeAccess(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetAccessRolesCommand struct {
	service MutatingService
}

func NewSetAccessRolesCommand(service MutatingService) *SetAccessRolesCommand {
	return &SetAccessRolesCommand{service: service}
}

func (c *SetAccessRolesCommand) Execute(ctx context.Context, msg SetAccessRolesMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: access service is required")
	}
	out, err := c.service.SetAccessRoles(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ClearAccessCommand struct {
	service MutatingService
}

func NewClearAccessCommand(service MutatingService) *ClearAccessCommand {
	return &ClearAccessCommand{service: service}
}

func (c *ClearAccessCommand) Execute(ctx context.Context, msg ClearAccessMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: access service is required")
	}
	out, err := c.service.ClearAccess(ctx, msg.Signer, msg.Identity, msg.Scope)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RegisterRepoCommand struct {
	service MutatingService
}

func NewRegisterRepoCommand(service MutatingService) *RegisterRepoCommand {
	return &RegisterRepoCommand{service: service}
}

func (c *RegisterRepoCommand) Execute(ctx context.Context, msg RegisterRepoMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: repo service is required")
	}
	out, err := c.service.RegisterRepo(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateRepoCommand struct {
	service MutatingService
}

func NewUpdateRepoCommand(service MutatingService) *UpdateRepoCommand {
	return &UpdateRepoCommand{service: service}
}

func (c *UpdateRepoCommand) Execute(ctx context.Context, msg UpdateRepoMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: repo service is required")
	}
	out, err := c.service.UpdateRepo(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AddModuleCommand struct {
	service MutatingService
}

func NewAddModuleCommand(service MutatingService) *AddModuleCommand {
	return &AddModuleCommand{service: service}
}

func (c *AddModuleCommand) Execute(ctx context.Context, msg AddModuleMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: module service is required")
	}
	out, err := c.service.AddModule(ctx, msg.Signer, msg.RepoKey)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ArchiveModuleCommand struct {
	service MutatingService
}

func NewArchiveModuleCommand(service MutatingService) *ArchiveModuleCommand {
	return &ArchiveModuleCommand{service: service}
}

func (c *ArchiveModuleCommand) Execute(ctx context.Context, msg ArchiveModuleMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: module service is required")
	}
	out, err := c.service.ArchiveModule(ctx, msg.Signer, msg.RepoKey)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RecordObservationCommand struct {
	service MutatingService
}

func NewRecordObservationCommand(service MutatingService) *RecordObservationCommand {
	return &RecordObservationCommand{service: service}
}

func (c *RecordObservationCommand) Execute(ctx context.Context, msg RecordObservationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: observation service is required")
	}
	out, err := c.service.RecordObservation(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RequestObservationCommand struct {
	service MutatingService
}

func NewRequestObservationCommand(service MutatingService) *RequestObservationCommand {
	return &RequestObservationCommand{service: service}
}

func (c *RequestObservationCommand) Execute(ctx context.Context, msg RequestObservationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: observation service is required")
	}
	return c.service.RequestObservation(ctx, msg.Request)
}

type CreateForkCommand struct {
	service MutatingService
}

func NewCreateForkCommand(service MutatingService) *CreateForkCommand {
	return &CreateForkCommand{service: service}
}

func (c *CreateForkCommand) Execute(ctx context.Context, msg CreateForkMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: fork service is required")
	}
	out, err := c.service.CreateFork(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateForkCommand struct {
	service MutatingService
}

func NewUpdateForkCommand(service MutatingService) *UpdateForkCommand {
	return &UpdateForkCommand{service: service}
}

func (c *UpdateForkCommand) Execute(ctx context.Context, msg UpdateForkMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: fork service is required")
	}
	out, err := c.service.UpdateFork(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateGlobalConfigCommand struct {
	service MutatingService
}

func NewUpdateGlobalConfigCommand(service MutatingService) *UpdateGlobalConfigCommand {
	return &UpdateGlobalConfigCommand{service: service}
}

func (c *UpdateGlobalConfigCommand) Execute(ctx context.Context, msg UpdateGlobalConfigMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: config service is required")
	}
	out, err := c.service.UpdateGlobalConfig(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type TransferAdminCommand struct {
	service MutatingService
}

func NewTransferAdminCommand(service MutatingService) *TransferAdminCommand {
	return &TransferAdminCommand{service: service}
}

func (c *TransferAdminCommand) Execute(ctx context.Context, msg TransferAdminMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: admin service is required")
	}
	out, err := c.service.TransferAdmin(ctx, msg.Signer, msg.Successor)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetEngineActiveCommand struct {
	service MutatingService
}

func NewSetEngineActiveCommand(service MutatingService) *SetEngineActiveCommand {
	return &SetEngineActiveCommand{service: service}
}

func (c *SetEngineActiveCommand) Execute(ctx context.Context, msg SetEngineActiveMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: admin service is required")
	}
	out, err := c.service.SetEngineActive(ctx, msg.Signer, msg.Active)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateGlobalMetadataCommand struct {
	service MutatingService
}

func NewUpdateGlobalMetadataCommand(service MutatingService) *UpdateGlobalMetadataCommand {
	return &UpdateGlobalMetadataCommand{service: service}
}

func (c *UpdateGlobalMetadataCommand) Execute(ctx context.Context, msg UpdateGlobalMetadataMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: metadata service is required")
	}
	out, err := c.service.UpdateGlobalMetadata(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
