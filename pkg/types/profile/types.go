// Package profile defines the wire-level Data Transfer Objects of hbond-profiler:
// frames as submitted by callers, profile rows as stored and published, and the
// request/response bodies of the HTTP API.  No domain logic lives here.
package profile

import (
	"encoding/json"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Frame input
// ─────────────────────────────────────────────────────────────────────────────

// PDBInfo is the provenance of one atom in its source PDB file.
type PDBInfo struct {
	Name          string `json:"name"`
	ResidueName   string `json:"residue_name"`
	ResidueNumber int    `json:"residue_number"`
	SerialNumber  int    `json:"serial_number"`
}

// AtomDTO is one atom.  Atoms are addressed by their position in
// MemberDTO.Atoms.
type AtomDTO struct {
	Element string     `json:"element"`
	Coords  [3]float64 `json:"coords"`
	PDB     *PDBInfo   `json:"pdb,omitempty"`
}

// FeatureDTO is one perceived feature.  Atoms lists member atom positions;
// the first is the primary atom.
type FeatureDTO struct {
	Type           string `json:"type"`
	Classification string `json:"classification"`
	Atoms          []int  `json:"atoms"`
}

// MemberDTO is one molecule of the association.
type MemberDTO struct {
	Name     string       `json:"name"`
	Atoms    []AtomDTO    `json:"atoms"`
	Bonds    [][2]int     `json:"bonds,omitempty"`
	Features []FeatureDTO `json:"features"`
}

// FrameDTO is one structural snapshot.  ProfileID names the frame in profile
// rows.
type FrameDTO struct {
	ProfileID string      `json:"profile_id"`
	Members   []MemberDTO `json:"members"`
}

// FeatureRef addresses a feature of a frame.
type FeatureRef struct {
	Member  int `json:"member"`
	Feature int `json:"feature"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Profile output
// ─────────────────────────────────────────────────────────────────────────────

// ProfileRow is one hit in one frame.  Rows sharing HitIdx describe the same
// donor/acceptor pairing across frames.
type ProfileRow struct {
	RunID            string          `json:"run_id,omitempty"`
	HitIdx           int             `json:"hit_idx"`
	ProfileID        string          `json:"profile_id"`
	InteractionClass string          `json:"interaction_class"`
	Distance         float64         `json:"distance"`
	Angle            float64         `json:"angle"`
	DonorSerial      int             `json:"donor_serial"`
	AcceptorSerial   int             `json:"acceptor_serial"`
	Record           json.RawMessage `json:"record,omitempty"`
}

// HitEvent is published once per profiled frame.
type HitEvent struct {
	EventID    string       `json:"event_id"`
	RunID      string       `json:"run_id"`
	ProfileID  string       `json:"profile_id"`
	Rows       []ProfileRow `json:"rows"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTP API bodies
// ─────────────────────────────────────────────────────────────────────────────

// CheckRequest asks whether two features of a frame form a hydrogen bond.
type CheckRequest struct {
	Frame    FrameDTO   `json:"frame"`
	Donor    FeatureRef `json:"donor"`
	Acceptor FeatureRef `json:"acceptor"`
}

// CheckResponse is the measurement of one check.  Record is present only for
// hits.
type CheckResponse struct {
	OK             bool            `json:"ok"`
	Stage          string          `json:"stage"`
	Distance       float64         `json:"distance"`
	Angle          *float64        `json:"angle,omitempty"`
	RejectedAngles []float64       `json:"rejected_angles,omitempty"`
	Record         json.RawMessage `json:"record,omitempty"`
}

// ProfileRequest submits frames for profiling.
type ProfileRequest struct {
	Frames []FrameDTO `json:"frames" binding:"required"`
}

// ProfileResponse summarises a profiling run.
type ProfileResponse struct {
	RunID      string       `json:"run_id"`
	Frames     int          `json:"frames"`
	Hits       int          `json:"hits"`
	Rows       []ProfileRow `json:"rows"`
	ExportKeys []string     `json:"export_keys,omitempty"`
}

// StatsRequest asks for per-hit statistics of a set of rows.  RunID, when
// set, keys the statistics cache.
type StatsRequest struct {
	RunID string       `json:"run_id,omitempty"`
	Rows  []ProfileRow `json:"rows" binding:"required"`
}

// ExportInfo describes one stored export object.  URL is a presigned
// download link when requested.
type ExportInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url,omitempty"`
}

// ExportListResponse lists the exports of a run.
type ExportListResponse struct {
	RunID   string       `json:"run_id"`
	Exports []ExportInfo `json:"exports"`
}

// DeleteRunResponse reports what deleting a run removed.
type DeleteRunResponse struct {
	RunID          string `json:"run_id"`
	RowsDeleted    bool   `json:"rows_deleted"`
	ExportsDeleted int    `json:"exports_deleted"`
}

//Personal.AI order the ending
