// Package statistics aggregates profile rows into per-hit geometric
// statistics across frames.
package statistics

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/turtacn/hbond-profiler/pkg/types/profile"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Row is one hit observed in one frame.
type Row struct {
	HitIdx           int
	ProfileID        string
	InteractionClass string
	Distance         float64
	Angle            float64
}

// HitStats summarises every observation of one hit.  Standard deviations are
// sample deviations and are NaN for a hit seen in a single frame.
type HitStats struct {
	HitIdx        int
	InteractionID string

	DistanceMean float64
	DistanceStd  float64
	DistanceMin  float64
	DistanceMax  float64

	AngleMean float64
	AngleStd  float64
	AngleMin  float64
	AngleMax  float64

	// Frames lists profile ids in row order.
	Frames   []string
	Freq     int
	NormFreq float64
}

type hitStatsJSON struct {
	InteractionID string   `json:"interaction_id"`
	HitIdx        int      `json:"hit_idx"`
	DistanceMean  *float64 `json:"distance_mean"`
	DistanceStd   *float64 `json:"distance_std"`
	DistanceMin   *float64 `json:"distance_min"`
	DistanceMax   *float64 `json:"distance_max"`
	AngleMean     *float64 `json:"angle_mean"`
	AngleStd      *float64 `json:"angle_std"`
	AngleMin      *float64 `json:"angle_min"`
	AngleMax      *float64 `json:"angle_max"`
	Frames        []string `json:"frames"`
	Freq          int      `json:"freq"`
	NormFreq      *float64 `json:"norm_freq"`
}

// MarshalJSON renders NaN and infinite values as null.
func (s HitStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(hitStatsJSON{
		InteractionID: s.InteractionID,
		HitIdx:        s.HitIdx,
		DistanceMean:  finite(s.DistanceMean),
		DistanceStd:   finite(s.DistanceStd),
		DistanceMin:   finite(s.DistanceMin),
		DistanceMax:   finite(s.DistanceMax),
		AngleMean:     finite(s.AngleMean),
		AngleStd:      finite(s.AngleStd),
		AngleMin:      finite(s.AngleMin),
		AngleMax:      finite(s.AngleMax),
		Frames:        s.Frames,
		Freq:          s.Freq,
		NormFreq:      finite(s.NormFreq),
	})
}

// UnmarshalJSON reads null values back as NaN.
func (s *HitStats) UnmarshalJSON(data []byte) error {
	var v hitStatsJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = HitStats{
		HitIdx:        v.HitIdx,
		InteractionID: v.InteractionID,
		DistanceMean:  orNaN(v.DistanceMean),
		DistanceStd:   orNaN(v.DistanceStd),
		DistanceMin:   orNaN(v.DistanceMin),
		DistanceMax:   orNaN(v.DistanceMax),
		AngleMean:     orNaN(v.AngleMean),
		AngleStd:      orNaN(v.AngleStd),
		AngleMin:      orNaN(v.AngleMin),
		AngleMax:      orNaN(v.AngleMax),
		Frames:        v.Frames,
		Freq:          v.Freq,
		NormFreq:      orNaN(v.NormFreq),
	}
	return nil
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Aggregate groups rows by HitIdx and returns one HitStats per group, sorted
// by HitIdx.  NormFreq divides each frequency by the number of groups with a
// non-zero frequency.
func Aggregate(rows []Row) []HitStats {
	groups := make(map[int][]Row)
	for _, r := range rows {
		groups[r.HitIdx] = append(groups[r.HitIdx], r)
	}
	idxs := make([]int, 0, len(groups))
	for idx := range groups {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)

	out := make([]HitStats, 0, len(idxs))
	nonEmpty := 0
	for _, idx := range idxs {
		g := groups[idx]
		distances := make([]float64, len(g))
		angles := make([]float64, len(g))
		frames := make([]string, len(g))
		for i, r := range g {
			distances[i] = r.Distance
			angles[i] = r.Angle
			frames[i] = r.ProfileID
		}
		s := HitStats{
			HitIdx:        idx,
			InteractionID: g[0].InteractionClass,
			DistanceMean:  stat.Mean(distances, nil),
			DistanceStd:   sampleStd(distances),
			DistanceMin:   floats.Min(distances),
			DistanceMax:   floats.Max(distances),
			AngleMean:     stat.Mean(angles, nil),
			AngleStd:      sampleStd(angles),
			AngleMin:      floats.Min(angles),
			AngleMax:      floats.Max(angles),
			Frames:        frames,
			Freq:          len(g),
		}
		if s.Freq > 0 {
			nonEmpty++
		}
		out = append(out, s)
	}
	for i := range out {
		out[i].NormFreq = float64(out[i].Freq) / float64(nonEmpty)
	}
	return out
}

func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil)
}

// FromProfileRows converts stored profile rows to aggregation input.
func FromProfileRows(rows []profile.ProfileRow) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{
			HitIdx:           r.HitIdx,
			ProfileID:        r.ProfileID,
			InteractionClass: r.InteractionClass,
			Distance:         r.Distance,
			Angle:            r.Angle,
		}
	}
	return out
}

// ToProfileRows is the inverse of FromProfileRows.  Serials and records are
// left empty.
func ToProfileRows(runID string, rows []Row) []profile.ProfileRow {
	out := make([]profile.ProfileRow, len(rows))
	for i, r := range rows {
		out[i] = profile.ProfileRow{
			RunID:            runID,
			HitIdx:           r.HitIdx,
			ProfileID:        r.ProfileID,
			InteractionClass: r.InteractionClass,
			Distance:         r.Distance,
			Angle:            r.Angle,
		}
	}
	return out
}

//Personal.AI order the ending
