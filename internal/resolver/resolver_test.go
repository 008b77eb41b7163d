package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		incoming Version
		stored   *Version
		expected Outcome
	}{
		{
			name:     "row absent",
			incoming: Version{LastModifiedAt: t0, DeviceID: "a"},
			expected: IncomingWins,
		},
		{
			name:     "incoming newer",
			incoming: Version{LastModifiedAt: t0.Add(time.Millisecond), DeviceID: "a"},
			stored:   &Version{LastModifiedAt: t0, DeviceID: "z"},
			expected: IncomingWins,
		},
		{
			name:     "incoming older",
			incoming: Version{LastModifiedAt: t0.Add(-time.Millisecond), DeviceID: "z"},
			stored:   &Version{LastModifiedAt: t0, DeviceID: "a"},
			expected: StoredWins,
		},
		{
			name:     "tie broken by greater device id",
			incoming: Version{LastModifiedAt: t0, DeviceID: "device-b"},
			stored:   &Version{LastModifiedAt: t0, DeviceID: "device-a"},
			expected: IncomingWins,
		},
		{
			name:     "tie lost to greater stored device id",
			incoming: Version{LastModifiedAt: t0, DeviceID: "device-a"},
			stored:   &Version{LastModifiedAt: t0, DeviceID: "device-b"},
			expected: StoredWins,
		},
		{
			name:     "same timestamp and device",
			incoming: Version{LastModifiedAt: t0, DeviceID: "device-a"},
			stored:   &Version{LastModifiedAt: t0, DeviceID: "device-a"},
			expected: Duplicate,
		},
		{
			name:     "time zones are compared as instants",
			incoming: Version{LastModifiedAt: t0.In(time.FixedZone("UTC+3", 3*3600)), DeviceID: "a"},
			stored:   &Version{LastModifiedAt: t0, DeviceID: "a"},
			expected: Duplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.incoming, tt.stored))
		})
	}
}

// Two replicas that see the same pair of versions in opposite roles must
// keep the same survivor.
func TestResolve_Symmetric(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	versions := []Version{
		{LastModifiedAt: t0, DeviceID: "a"},
		{LastModifiedAt: t0, DeviceID: "b"},
		{LastModifiedAt: t0.Add(time.Second), DeviceID: "a"},
	}

	for i := range versions {
		for j := range versions {
			if i == j {
				continue
			}
			x, y := versions[i], versions[j]
			xOverY := Resolve(x, &y)
			yOverX := Resolve(y, &x)
			assert.NotEqual(t, xOverY, yOverX, "pair %d/%d", i, j)
		}
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "incoming_wins", IncomingWins.String())
	assert.Equal(t, "stored_wins", StoredWins.String())
	assert.Equal(t, "duplicate", Duplicate.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
