package interaction

import (
	"fmt"

	"github.com/turtacn/hbond-profiler/internal/domain/structure"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// Stage names the test at which a check stopped.
type Stage int

const (
	StageDistance Stage = iota
	StageAngle
)

func (s Stage) String() string {
	switch s {
	case StageDistance:
		return "distance"
	case StageAngle:
		return "angle"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// CheckResult is the measurement produced by one donor/acceptor check.
type CheckResult struct {
	OK       bool
	Stage    Stage
	Distance float64
	// Angle is set only when OK.
	Angle float64
	// RejectedAngles is set only when the distance passed and no hydrogen
	// qualified.  It is empty, not nil, when the donor has no hydrogens.
	RejectedAngles []float64
}

// Record field name prefixes for the two roles.
const (
	donorPrefix    = "donor"
	acceptorPrefix = "acceptor"
)

// HydrogenBondType is a hydrogen bond class.  The generic rule has no feature
// types; classes derived from a hit carry the donor and acceptor feature types
// and the member pair they were found in.  Values are immutable after
// construction and safe for concurrent use.
type HydrogenBondType struct {
	name         string
	params       HydrogenBondParams
	featureTypes [2]structure.FeatureType
	memberPair   [2]int

	angleFn angleFunc
}

// TypeOption configures a HydrogenBondType.
type TypeOption func(*HydrogenBondType)

// WithFeatureTypes sets the donor and acceptor feature types.
func WithFeatureTypes(donor, acceptor structure.FeatureType) TypeOption {
	return func(t *HydrogenBondType) {
		t.featureTypes = [2]structure.FeatureType{donor, acceptor}
	}
}

// WithMemberPair sets the association member indices of the donor and the
// acceptor.
func WithMemberPair(donor, acceptor int) TypeOption {
	return func(t *HydrogenBondType) {
		t.memberPair = [2]int{donor, acceptor}
	}
}

// NewHydrogenBondType validates params and returns a class.  An empty name
// falls back to HydrogenBondName.
func NewHydrogenBondType(name string, params HydrogenBondParams, opts ...TypeOption) (*HydrogenBondType, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		name = HydrogenBondName
	}
	t := &HydrogenBondType{
		name:       name,
		params:     params.clone(),
		memberPair: [2]int{0, 1},
		angleFn:    Angle,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Name returns the class name, empty for the generic rule.
func (t *HydrogenBondType) Name() string { return t.name }

// InteractionName returns HydrogenBondName.
func (t *HydrogenBondType) InteractionName() string { return HydrogenBondName }

// Degree returns the number of features in one interaction, always 2.
func (t *HydrogenBondType) Degree() int { return hydrogenBondDegree }

// Commutative reports whether donor and acceptor roles may be swapped.
func (t *HydrogenBondType) Commutative() bool { return t.params.Commutative }

// ParamKeys names the measured parameters: distance, then angle.
func (t *HydrogenBondType) ParamKeys() []string { return []string{ParamDistance, ParamAngle} }

// FeatureKeys returns the donor and acceptor keys, in that order.
func (t *HydrogenBondType) FeatureKeys() []string {
	return []string{t.params.FeatureKeys[DonorIdx], t.params.FeatureKeys[AcceptorIdx]}
}

// Params returns a copy of the rule parameters.
func (t *HydrogenBondType) Params() HydrogenBondParams { return t.params.clone() }

// FeatureTypes returns the donor and acceptor feature types.  Both are nil for
// the generic rule.
func (t *HydrogenBondType) FeatureTypes() [2]structure.FeatureType { return t.featureTypes }

// MemberPair returns the association member indices of donor and acceptor.
func (t *HydrogenBondType) MemberPair() [2]int { return t.memberPair }

// CheckDistance reports whether d is strictly below the distance cutoff.
func (t *HydrogenBondType) CheckDistance(d float64) bool {
	return d < t.params.DistanceCutoff
}

// CheckAngle reports whether a is strictly above the angle cutoff.
func (t *HydrogenBondType) CheckAngle(a float64) bool {
	return a > t.params.AngleCutoff
}

// IsDonor reports whether f's classification qualifies it as a donor.
func (t *HydrogenBondType) IsDonor(f structure.Feature) bool {
	return contains(t.params.DonorClassifiers, f.Classification())
}

// IsAcceptor reports whether f's classification qualifies it as an acceptor.
func (t *HydrogenBondType) IsAcceptor(f structure.Feature) bool {
	return contains(t.params.AcceptorClassifiers, f.Classification())
}

// Check tests whether donor and acceptor form a hydrogen bond.  The distance
// between the primary atoms is tested first; no angle is measured when it
// fails.  A rejected pair is reported through CheckResult, not the error,
// which is reserved for empty features and degenerate geometry.
func (t *HydrogenBondType) Check(donor, acceptor structure.Feature) (CheckResult, error) {
	d := structure.PrimaryAtom(donor)
	if d == nil {
		return CheckResult{}, errors.New(errors.ErrCodeFeatureEmpty, "donor feature has no atoms")
	}
	a := structure.PrimaryAtom(acceptor)
	if a == nil {
		return CheckResult{}, errors.New(errors.ErrCodeFeatureEmpty, "acceptor feature has no atoms")
	}

	res := CheckResult{Stage: StageDistance, Distance: Distance(d, a)}
	if !t.CheckDistance(res.Distance) {
		return res, nil
	}

	res.Stage = StageAngle
	angle, rejected, ok, err := t.selectHydrogen(d, a)
	if err != nil {
		return res, err
	}
	res.OK = ok
	res.Angle = angle
	res.RejectedAngles = rejected
	return res, nil
}

// Record returns the type record: member pair, atom indices and per-atom PDB
// provenance for both roles.  The generic rule has no record.
func (t *HydrogenBondType) Record() (Record, error) {
	dt, at := t.featureTypes[DonorIdx], t.featureTypes[AcceptorIdx]
	if dt == nil || at == nil {
		return Record{}, errors.Newf(errors.ErrCodeFeatureTypeIncomplete,
			"interaction class %q has no feature types", t.name)
	}

	fields := []Field{
		{Name: "assoc_member_pair_idxs", Value: []int{t.memberPair[DonorIdx], t.memberPair[AcceptorIdx]}},
		{Name: "donor_member_idx", Value: t.memberPair[DonorIdx]},
		{Name: "acceptor_member_idx", Value: t.memberPair[AcceptorIdx]},
		{Name: "donor_atom_idxs", Value: dt.AtomIdxs()},
		{Name: "acceptor_atom_idxs", Value: at.AtomIdxs()},
	}
	fields = append(fields, pdbFields(donorPrefix, dt)...)
	fields = append(fields, pdbFields(acceptorPrefix, at)...)
	return NewRecord(fields...)
}

func pdbFields(prefix string, ft structure.FeatureType) []Field {
	out := make([]Field, 0, len(structure.PDBAttributes))
	for _, attr := range structure.PDBAttributes {
		out = append(out, Field{Name: prefix + "_" + attr, Value: ft.AtomAttributes(attr)})
	}
	return out
}

// derive returns a concrete class for a hit between donor and acceptor found
// in members pair.  Rule parameters are shared with t.
func (t *HydrogenBondType) derive(donor, acceptor structure.Feature, pair [2]int) *HydrogenBondType {
	c := *t
	dt, at := donor.Type(), acceptor.Type()
	c.name = fmt.Sprintf("%s_%s_%s", t.name, featureTypeName(dt), featureTypeName(at))
	c.featureTypes = [2]structure.FeatureType{dt, at}
	c.memberPair = pair
	return &c
}

// matches reports whether the class applies to a hit between donor and
// acceptor found in members pair.
func (t *HydrogenBondType) matches(donor, acceptor structure.Feature, pair [2]int) bool {
	if t.memberPair != pair {
		return false
	}
	dt, at := t.featureTypes[DonorIdx], t.featureTypes[AcceptorIdx]
	if dt == nil || at == nil {
		return false
	}
	return dt.Name() == featureTypeName(donor.Type()) && at.Name() == featureTypeName(acceptor.Type())
}

func featureTypeName(ft structure.FeatureType) string {
	if ft == nil {
		return ""
	}
	return ft.Name()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var _ Type = (*HydrogenBondType)(nil)

//Personal.AI order the ending
