package statistics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

func TestAggregate(t *testing.T) {
	t.Parallel()
	rows := []Row{
		{HitIdx: 5, ProfileID: "f0", InteractionClass: "HB_b", Distance: 2.9, Angle: 150},
		{HitIdx: 2, ProfileID: "f0", InteractionClass: "HB_a", Distance: 3.0, Angle: 160},
		{HitIdx: 2, ProfileID: "f1", InteractionClass: "HB_a", Distance: 3.2, Angle: 170},
	}

	stats := Aggregate(rows)
	require.Len(t, stats, 2)

	a := stats[0]
	assert.Equal(t, 2, a.HitIdx)
	assert.Equal(t, "HB_a", a.InteractionID)
	assert.InDelta(t, 3.1, a.DistanceMean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.02), a.DistanceStd, 1e-12)
	assert.InDelta(t, 3.0, a.DistanceMin, 1e-12)
	assert.InDelta(t, 3.2, a.DistanceMax, 1e-12)
	assert.InDelta(t, 165.0, a.AngleMean, 1e-12)
	assert.InDelta(t, math.Sqrt(50), a.AngleStd, 1e-12)
	assert.Equal(t, []string{"f0", "f1"}, a.Frames)
	assert.Equal(t, 2, a.Freq)
	assert.InDelta(t, 1.0, a.NormFreq, 1e-12)

	b := stats[1]
	assert.Equal(t, 5, b.HitIdx)
	assert.Equal(t, 1, b.Freq)
	assert.True(t, math.IsNaN(b.DistanceStd))
	assert.True(t, math.IsNaN(b.AngleStd))
	assert.Equal(t, b.DistanceMin, b.DistanceMax)
	assert.InDelta(t, 0.5, b.NormFreq, 1e-12)
}

func TestAggregate_FirstRowNamesGroup(t *testing.T) {
	t.Parallel()
	stats := Aggregate([]Row{
		{HitIdx: 0, ProfileID: "f0", InteractionClass: "first", Distance: 1, Angle: 1},
		{HitIdx: 0, ProfileID: "f1", InteractionClass: "second", Distance: 1, Angle: 1},
	})
	require.Len(t, stats, 1)
	assert.Equal(t, "first", stats[0].InteractionID)
	assert.InDelta(t, 0.0, stats[0].DistanceStd, 1e-12)
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Aggregate(nil))
}

func TestHitStats_MarshalJSON(t *testing.T) {
	t.Parallel()
	stats := Aggregate([]Row{{HitIdx: 1, ProfileID: "f0", InteractionClass: "HB", Distance: 2.5, Angle: 150}})

	out, err := json.Marshal(stats[0])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Nil(t, decoded["distance_std"])
	assert.Contains(t, decoded, "distance_std")
	assert.Equal(t, 2.5, decoded["distance_mean"])
	assert.Equal(t, "HB", decoded["interaction_id"])
	assert.Equal(t, []interface{}{"f0"}, decoded["frames"])
	assert.Equal(t, 1.0, decoded["norm_freq"])
}

func TestHitStats_UnmarshalJSONRestoresNaN(t *testing.T) {
	t.Parallel()
	in := Aggregate([]Row{{HitIdx: 4, ProfileID: "f0", InteractionClass: "HB", Distance: 2.5, Angle: 150}})[0]
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out HitStats
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 4, out.HitIdx)
	assert.Equal(t, 2.5, out.DistanceMean)
	assert.True(t, math.IsNaN(out.DistanceStd))
	assert.True(t, math.IsNaN(out.AngleStd))
	assert.Equal(t, []string{"f0"}, out.Frames)
}

func TestFromProfileRows(t *testing.T) {
	t.Parallel()
	rows := FromProfileRows([]profile.ProfileRow{
		{RunID: "r", HitIdx: 3, ProfileID: "f9", InteractionClass: "HB", Distance: 2.7, Angle: 140, DonorSerial: 4},
	})
	assert.Equal(t, []Row{{HitIdx: 3, ProfileID: "f9", InteractionClass: "HB", Distance: 2.7, Angle: 140}}, rows)

	back := ToProfileRows("r", rows)
	assert.Equal(t, []profile.ProfileRow{
		{RunID: "r", HitIdx: 3, ProfileID: "f9", InteractionClass: "HB", Distance: 2.7, Angle: 140},
	}, back)
}

//Personal.AI order the ending
