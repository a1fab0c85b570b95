package interaction

import (
	"fmt"

	"github.com/turtacn/hbond-profiler/internal/domain/structure"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// ErrNotHydrogenBond matches every *ClassificationFailure through errors.Is.
var ErrNotHydrogenBond = errors.New(errors.ErrCodeNotHydrogenBond, "features do not form a hydrogen bond")

// ClassificationFailure describes a donor/acceptor pair that was checked and
// rejected.  Result carries the partial measurement.
type ClassificationFailure struct {
	Class    *HydrogenBondType
	Donor    structure.Feature
	Acceptor structure.Feature
	// Keys locates the pair when it came from a scan.
	Keys   [2]FeatureKey
	Result CheckResult
}

// Stage returns the test that rejected the pair.
func (f *ClassificationFailure) Stage() Stage { return f.Result.Stage }

func (f *ClassificationFailure) Error() string {
	name := HydrogenBondName
	if f.Class != nil {
		name = f.Class.Name()
	}
	if f.Result.Stage == StageDistance {
		cutoff := 0.0
		if f.Class != nil {
			cutoff = f.Class.params.DistanceCutoff
		}
		return fmt.Sprintf("%s: distance %.3f is not below cutoff %.3f", name, f.Result.Distance, cutoff)
	}
	return fmt.Sprintf("%s: no hydrogen above angle cutoff, rejected angles %v", name, f.Result.RejectedAngles)
}

func (f *ClassificationFailure) Unwrap() error { return ErrNotHydrogenBond }

// HydrogenBond is a detected hydrogen bond.  It is read-only.
type HydrogenBond struct {
	class    *HydrogenBondType
	donor    structure.Feature
	acceptor structure.Feature
	distance float64
	angle    float64
}

// NewHydrogenBond checks donor and acceptor against class and returns the
// instance.  A rejected pair yields a *ClassificationFailure and no instance.
func NewHydrogenBond(class *HydrogenBondType, donor, acceptor structure.Feature) (*HydrogenBond, error) {
	if class == nil {
		return nil, errors.InvalidParam("interaction class is required")
	}
	res, err := class.Check(donor, acceptor)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, &ClassificationFailure{Class: class, Donor: donor, Acceptor: acceptor, Result: res}
	}
	return newHydrogenBond(class, donor, acceptor, res), nil
}

func newHydrogenBond(class *HydrogenBondType, donor, acceptor structure.Feature, res CheckResult) *HydrogenBond {
	return &HydrogenBond{
		class:    class,
		donor:    donor,
		acceptor: acceptor,
		distance: res.Distance,
		angle:    res.Angle,
	}
}

// Donor returns the donor feature.
func (b *HydrogenBond) Donor() structure.Feature { return b.donor }

// Acceptor returns the acceptor feature.
func (b *HydrogenBond) Acceptor() structure.Feature { return b.acceptor }

// Distance returns the donor-acceptor distance in Angstrom.
func (b *HydrogenBond) Distance() float64 { return b.distance }

// Angle returns the donor-hydrogen-acceptor angle in degrees.
func (b *HydrogenBond) Angle() float64 { return b.angle }

// Class returns the concrete class the hit was found for.
func (b *HydrogenBond) Class() *HydrogenBondType { return b.class }

// Type returns the class as a Type.
func (b *HydrogenBond) Type() Type { return b.class }

// Features returns donor and acceptor, in that order.
func (b *HydrogenBond) Features() []structure.Feature {
	return []structure.Feature{b.donor, b.acceptor}
}

// Params returns the measured distance and angle keyed by ParamKeys.
func (b *HydrogenBond) Params() map[string]float64 {
	return map[string]float64{ParamDistance: b.distance, ParamAngle: b.angle}
}

// H is not supported: the qualifying hydrogen is not retained.
func (b *HydrogenBond) H() (structure.Atom, error) {
	return nil, errors.NotImplemented("hydrogen bond does not retain its hydrogen atom")
}

// Record returns the class record followed by donor_coords,
// acceptor_coords, distance and angle.
func (b *HydrogenBond) Record() (Record, error) {
	typeRec, err := b.class.Record()
	if err != nil {
		return Record{}, err
	}
	d := structure.PrimaryAtom(b.donor).Coords()
	a := structure.PrimaryAtom(b.acceptor).Coords()
	inst, err := NewRecord(
		Field{Name: "donor_coords", Value: [3]float64{d.X, d.Y, d.Z}},
		Field{Name: "acceptor_coords", Value: [3]float64{a.X, a.Y, a.Z}},
		Field{Name: ParamDistance, Value: b.distance},
		Field{Name: ParamAngle, Value: b.angle},
	)
	if err != nil {
		return Record{}, err
	}
	return typeRec.Merge(inst)
}

var _ Interaction = (*HydrogenBond)(nil)

//Personal.AI order the ending
