package statistics

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// Profile table columns.  ReadRows requires the first five.
const (
	ColHitIdx           = "hit_idx"
	ColProfileID        = "profile_id"
	ColInteractionClass = "interaction_class"
	ColDistance         = "distance"
	ColAngle            = "angle"
	ColDonorSerial      = "donor_serial"
	ColAcceptorSerial   = "acceptor_serial"
)

var requiredColumns = []string{ColHitIdx, ColProfileID, ColInteractionClass, ColDistance, ColAngle}

// StatsColumns is the header written by WriteStats.
var StatsColumns = []string{
	"interaction_id", "hit_idx",
	"distance_mean", "distance_std", "distance_min", "distance_max",
	"angle_mean", "angle_std", "angle_min", "angle_max",
	"frames", "freq", "norm_freq",
}

// FramesSeparator joins profile ids in the frames column.
const FramesSeparator = ";"

// ReadRows parses a CSV profile table with a header line.  Columns may appear
// in any order; unknown columns are ignored.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeEmptyTable, "profile table is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMalformedTable, "failed to read profile table header")
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := pos[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Newf(errors.ErrCodeMalformedTable,
			"profile table is missing columns: %s", strings.Join(missing, ", "))
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMalformedTable, "failed to read profile table")
		}
		row, err := parseRow(rec, pos)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMalformedTable, "invalid profile table line "+strconv.Itoa(line))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string, pos map[string]int) (Row, error) {
	field := func(col string) (string, error) {
		i := pos[col]
		if i >= len(rec) {
			return "", errors.Newf(errors.ErrCodeMalformedTable, "column %s is missing", col)
		}
		return strings.TrimSpace(rec[i]), nil
	}

	var row Row
	s, err := field(ColHitIdx)
	if err != nil {
		return row, err
	}
	if row.HitIdx, err = strconv.Atoi(s); err != nil {
		return row, err
	}
	if row.ProfileID, err = field(ColProfileID); err != nil {
		return row, err
	}
	if row.InteractionClass, err = field(ColInteractionClass); err != nil {
		return row, err
	}
	if s, err = field(ColDistance); err != nil {
		return row, err
	}
	if row.Distance, err = strconv.ParseFloat(s, 64); err != nil {
		return row, err
	}
	if s, err = field(ColAngle); err != nil {
		return row, err
	}
	if row.Angle, err = strconv.ParseFloat(s, 64); err != nil {
		return row, err
	}
	return row, nil
}

// WriteRows writes profile rows as a CSV profile table readable by ReadRows.
func WriteRows(w io.Writer, rows []profile.ProfileRow) error {
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{
		ColHitIdx, ColProfileID, ColInteractionClass, ColDistance, ColAngle, ColDonorSerial, ColAcceptorSerial,
	})
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.HitIdx),
			r.ProfileID,
			r.InteractionClass,
			formatFloat(r.Distance),
			formatFloat(r.Angle),
			strconv.Itoa(r.DonorSerial),
			strconv.Itoa(r.AcceptorSerial),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to write profile table")
	}
	return nil
}

// WriteStats writes stats as CSV with the StatsColumns header.  NaN values
// are written as empty cells.
func WriteStats(w io.Writer, stats []HitStats) error {
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(stats)+1)
	records = append(records, StatsColumns)
	for _, s := range stats {
		records = append(records, []string{
			s.InteractionID,
			strconv.Itoa(s.HitIdx),
			formatFloat(s.DistanceMean), formatFloat(s.DistanceStd),
			formatFloat(s.DistanceMin), formatFloat(s.DistanceMax),
			formatFloat(s.AngleMean), formatFloat(s.AngleStd),
			formatFloat(s.AngleMin), formatFloat(s.AngleMax),
			strings.Join(s.Frames, FramesSeparator),
			strconv.Itoa(s.Freq),
			formatFloat(s.NormFreq),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to write statistics")
	}
	return nil
}

func formatFloat(v float64) string {
	if finite(v) == nil {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

//Personal.AI order the ending
