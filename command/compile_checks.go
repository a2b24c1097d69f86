package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[BootstrapMessage]            = (*BootstrapCommand)(nil)
	_ gocmd.Commander[SetPhaseMessage]             = (*SetPhaseCommand)(nil)
	_ gocmd.Commander[SetGlobalFreezeMessage]      = (*SetGlobalFreezeCommand)(nil)
	_ gocmd.Commander[RequireMigrationMessage]     = (*RequireMigrationCommand)(nil)
	_ gocmd.Commander[StartMigrationMessage]       = (*StartMigrationCommand)(nil)
	_ gocmd.Commander[CompleteMigrationMessage]    = (*CompleteMigrationCommand)(nil)
	_ gocmd.Commander[UpdateLifecycleNoteMessage]  = (*UpdateLifecycleNoteCommand)(nil)
	_ gocmd.Commander[GrantAccessMessage]          = (*GrantAccessCommand)(nil)
	_ gocmd.Commander[RevokeAccessMessage]         = (*RevokeAccessCommand)(nil)
	_ gocmd.Commander[SetAccessRolesMessage]       = (*SetAccessRolesCommand)(nil)
	_ gocmd.Commander[ClearAccessMessage]          = (*ClearAccessCommand)(nil)
	_ gocmd.Commander[RegisterRepoMessage]         = (*RegisterRepoCommand)(nil)
	_ gocmd.Commander[UpdateRepoMessage]           = (*UpdateRepoCommand)(nil)
	_ gocmd.Commander[AddModuleMessage]            = (*AddModuleCommand)(nil)
	_ gocmd.Commander[ArchiveModuleMessage]        = (*ArchiveModuleCommand)(nil)
	_ gocmd.Commander[RecordObservationMessage]    = (*RecordObservationCommand)(nil)
	_ gocmd.Commander[RequestObservationMessage]   = (*RequestObservationCommand)(nil)
	_ gocmd.Commander[CreateForkMessage]           = (*CreateForkCommand)(nil)
	_ gocmd.Commander[UpdateForkMessage]           = (*UpdateForkCommand)(nil)
	_ gocmd.Commander[UpdateGlobalConfigMessage]   = (*UpdateGlobalConfigCommand)(nil)
	_ gocmd.Commander[TransferAdminMessage]        = (*TransferAdminCommand)(nil)
	_ gocmd.Commander[SetEngineActiveMessage]      = (*SetEngineActiveCommand)(nil)
	_ gocmd.Commander[UpdateGlobalMetadataMessage] = (*UpdateGlobalMetadataCommand)(nil)
)
