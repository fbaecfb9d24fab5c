package sim

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TeamID indexes a team's records in every per-team arena. Id 0 is the reserved
// global team and is never enabled.
type TeamID int

// GlobalTeamID is the reserved sentinel team created with the world.
const GlobalTeamID TeamID = 0

const (
	// MaxSyncParents is the capacity of a team's synchronized-parent list.
	MaxSyncParents = 7

	// DefaultMaxTeamCount bounds team ids when WorldConfig.MaxTeamCount is zero.
	DefaultMaxTeamCount = 1024

	// DefaultMaxSubstepsPerFrame caps sub-steps per team per frame.
	DefaultMaxSubstepsPerFrame = 3

	// UncappedSubsteps as WorldConfig.MaxSubstepsPerFrame runs every owed sub-step.
	UncappedSubsteps = -1

	// DriftEpsilon is the offset applied when a team owes sub-steps but received no time.
	DriftEpsilon = 1e-4

	// ClockRebaseThreshold and ClockRebaseOffset keep team clocks small.
	ClockRebaseThreshold = 10000.0
	ClockRebaseOffset    = 5000.0

	// stabilizationEpsilon treats stabilization times below it as instant.
	stabilizationEpsilon = 1e-6
)

// TeamFlags is the per-team state bit set.
type TeamFlags uint32

const (
	FlagValid TeamFlags = 1 << iota
	FlagEnable
	// FlagReset requests a pose reset at the next time advance.
	FlagReset
	FlagTimeReset
	FlagSuspend
	// FlagRunning marks a team with at least one sub-step this frame.
	FlagRunning
	// FlagStepRunning marks a team running in the current sub-step.
	FlagStepRunning
	FlagSynchronization
	FlagParameterDirty
	FlagTeleported
)

// transientFlags are cleared for every team that took part in a frame.
const transientFlags = FlagReset | FlagTimeReset | FlagRunning | FlagStepRunning | FlagTeleported

var flagNames = []struct {
	flag TeamFlags
	name string
}{
	{FlagValid, "valid"},
	{FlagEnable, "enable"},
	{FlagReset, "reset"},
	{FlagTimeReset, "time-reset"},
	{FlagSuspend, "suspend"},
	{FlagRunning, "running"},
	{FlagStepRunning, "step-running"},
	{FlagSynchronization, "sync"},
	{FlagParameterDirty, "param-dirty"},
	{FlagTeleported, "teleported"},
}

// Has reports whether every bit of b is set.
func (f TeamFlags) Has(b TeamFlags) bool {
	return f&b == b
}

// Set sets or clears the bits of b.
func (f *TeamFlags) Set(b TeamFlags, on bool) {
	if on {
		*f |= b
	} else {
		*f &^= b
	}
}

func (f TeamFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// UpdateMode selects which frame delta drives a team's clock.
type UpdateMode int

const (
	// UpdateModeNormal follows the variable frame delta.
	UpdateModeNormal UpdateMode = iota
	// UpdateModePhysics follows the fixed physics delta.
	UpdateModePhysics
	// UpdateModeUnscaled follows the delta unaffected by the game's time scale.
	UpdateModeUnscaled
)

var updateModeNames = map[UpdateMode]string{
	UpdateModeNormal:   "normal",
	UpdateModePhysics:  "physics",
	UpdateModeUnscaled: "unscaled",
}

func (m UpdateMode) String() string {
	if s, ok := updateModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("UpdateMode(%d)", int(m))
}

// ParseUpdateMode converts a mode name. The empty string means normal.
func ParseUpdateMode(s string) (UpdateMode, error) {
	if s == "" {
		return UpdateModeNormal, nil
	}
	for m, name := range updateModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown update mode %q (valid: normal, physics, unscaled)", s)
}

// UnmarshalYAML accepts the mode name.
func (m *UpdateMode) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseUpdateMode(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = parsed
	return nil
}

// TeleportMode selects how a team reacts to a jump in its reference transform.
type TeleportMode int

const (
	TeleportNone TeleportMode = iota
	// TeleportReset snaps the pose and restarts the velocity blend-in.
	TeleportReset
	// TeleportKeep shifts the whole motion into inertia and keeps the pose.
	TeleportKeep
)

var teleportModeNames = map[TeleportMode]string{
	TeleportNone:  "none",
	TeleportReset: "reset",
	TeleportKeep:  "keep",
}

func (m TeleportMode) String() string {
	if s, ok := teleportModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("TeleportMode(%d)", int(m))
}

// UnmarshalYAML accepts "none", "reset" or "keep".
func (m *TeleportMode) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" {
		*m = TeleportNone
		return nil
	}
	for mode, name := range teleportModeNames {
		if name == value.Value {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown teleport mode %q (valid: none, reset, keep)", value.Line, value.Value)
}
