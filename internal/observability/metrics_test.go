package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordRowsMirrored(t *testing.T) {
	before := testutil.ToFloat64(mirroredRows)
	ts := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	RecordRowsMirrored(ts, 3)
	require.Equal(t, before+3, testutil.ToFloat64(mirroredRows))
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(mirrorGauge))

	RecordRowsMirrored(time.Time{}, 0)
	require.Equal(t, before+3, testutil.ToFloat64(mirroredRows))
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(mirrorGauge))
}

func TestRecordRebuildIgnoresZero(t *testing.T) {
	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	RecordRebuild(ts)
	RecordRebuild(time.Time{})
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(rebuildGauge))
}
