package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTeamFlags_SetAndHas(t *testing.T) {
	var f TeamFlags
	f.Set(FlagValid|FlagEnable, true)
	assert.True(t, f.Has(FlagValid))
	assert.True(t, f.Has(FlagValid|FlagEnable))
	assert.False(t, f.Has(FlagValid|FlagSuspend), "Has requires every bit")

	f.Set(FlagEnable, false)
	assert.False(t, f.Has(FlagEnable))
	assert.True(t, f.Has(FlagValid))
}

func TestTeamFlags_String(t *testing.T) {
	assert.Equal(t, "none", TeamFlags(0).String())
	assert.Equal(t, "valid|enable|sync", (FlagValid | FlagEnable | FlagSynchronization).String())
}

func TestParseUpdateMode(t *testing.T) {
	tests := []struct {
		in      string
		want    UpdateMode
		wantErr bool
	}{
		{"", UpdateModeNormal, false},
		{"normal", UpdateModeNormal, false},
		{"physics", UpdateModePhysics, false},
		{"unscaled", UpdateModeUnscaled, false},
		{"Physics", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseUpdateMode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseUpdateMode(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseUpdateMode(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestEnumYAML(t *testing.T) {
	var doc struct {
		Mode     UpdateMode   `yaml:"mode"`
		Teleport TeleportMode `yaml:"teleport"`
		Wind     WindMode     `yaml:"wind"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("mode: unscaled\nteleport: keep\nwind: radial\n"), &doc))
	assert.Equal(t, UpdateModeUnscaled, doc.Mode)
	assert.Equal(t, TeleportKeep, doc.Teleport)
	assert.Equal(t, WindModeSphereRadial, doc.Wind)

	assert.Error(t, yaml.Unmarshal([]byte("wind: tornado\n"), &doc))
	assert.Equal(t, "UpdateMode(9)", UpdateMode(9).String())
}

func TestParentList(t *testing.T) {
	var l ParentList
	for i := 1; i <= MaxSyncParents; i++ {
		require.True(t, l.Add(TeamID(i)))
	}
	assert.True(t, l.Add(3), "present ids are accepted without duplicating")
	assert.False(t, l.Add(99), "full list refuses")
	assert.Equal(t, MaxSyncParents, l.Count)

	assert.True(t, l.Remove(3))
	assert.False(t, l.Remove(3))
	assert.Equal(t, []TeamID{1, 2, 4, 5, 6, 7}, l.Slice())
	assert.False(t, l.Contains(3))
	assert.Equal(t, []TeamID{9}, ParentList{IDs: [MaxSyncParents]TeamID{9}, Count: 1}.Slice(), "readable from a copy")
	assert.True(t, ParentList{IDs: [MaxSyncParents]TeamID{9}, Count: 1}.Contains(9))
	assert.True(t, l.Add(99))
}
