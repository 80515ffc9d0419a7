package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversions(t *testing.T) {
	require.InDelta(t, 1.0, MetersToMiles(1609.344), 1e-12)
	require.InDelta(t, 3.280839895, MetersToFeet(1), 1e-12)
	require.InDelta(t, 2.2369362920544, MPSToMilesPerHour(1), 1e-12)
	require.Zero(t, MetersToMiles(0))
	require.Zero(t, MetersToFeet(0))
	require.Zero(t, MPSToMilesPerHour(0))
}

func TestPaceSecondsPerUnit(t *testing.T) {
	_, ok := PaceSecondsPerUnit(0, 600)
	require.False(t, ok)
	_, ok = PaceSecondsPerUnit(5, 0)
	require.False(t, ok)
	_, ok = PaceSecondsPerUnit(-1, 600)
	require.False(t, ok)

	pace, ok := PaceSecondsPerUnit(5, 3000)
	require.True(t, ok)
	require.Equal(t, 600.0, pace)
}

func TestFormatting(t *testing.T) {
	require.Equal(t, "", FormatMMSS(0))
	require.Equal(t, "10:00", FormatMMSS(600))
	require.Equal(t, "8:05", FormatMMSS(484.6))
	require.Equal(t, "59:59", FormatMMSS(3599.4))
	require.Equal(t, "00:00:00", FormatHHMMSS(0))
	require.Equal(t, "01:02:03", FormatHHMMSS(3723))
	require.Equal(t, "", PaceMMSS(0, 1800))
	require.Equal(t, "10:00", PaceMMSS(3, 1800))
}

func TestRound(t *testing.T) {
	require.Equal(t, "3.11", Round(3.10686, 2))
	require.Equal(t, "2.5", Round(2.5, 2))
	require.Equal(t, "124", Round(123.5, 0))
	require.Equal(t, "", RoundPositive(0, 2))
	require.Equal(t, "", RoundPositive(-4, 2))
	require.Equal(t, "0.01", RoundPositive(0.005, 2))
}
