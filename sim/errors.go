package sim

import "errors"

var (
	ErrTeamLimit         = errors.New("team limit exceeded")
	ErrInvalidHandle     = errors.New("invalid team handle")
	ErrReservedTeam      = errors.New("team 0 is reserved")
	ErrInvalidConfig     = errors.New("invalid team configuration")
	ErrSyncCycle         = errors.New("synchronization cycle")
	ErrInvalidFrameInput = errors.New("invalid frame input")
	ErrSubstepRange      = errors.New("sub-step index out of range")
	ErrFrameInProgress   = errors.New("frame in progress")
	ErrNoFrame           = errors.New("no frame in progress")
)
