package interaction

import (
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// HydrogenBondName is the interaction name shared by every hydrogen bond
// class.
const HydrogenBondName = "HydrogenBond"

// Parameter keys reported by hydrogen bond instances.
const (
	ParamDistance = "distance"
	ParamAngle    = "angle"
)

// hydrogenBondDegree is the number of features taking part in a hydrogen
// bond.
const hydrogenBondDegree = 2

// Role indices into feature pairs.
const (
	DonorIdx    = 0
	AcceptorIdx = 1
)

// HydrogenBondParams is the immutable configuration of the hydrogen bond
// rule.
type HydrogenBondParams struct {
	// DistanceCutoff is exclusive: a pair qualifies when distance < cutoff.
	DistanceCutoff float64
	// AngleCutoff is exclusive and in degrees: a hydrogen qualifies when
	// angle > cutoff.
	AngleCutoff float64

	// FeatureKeys names the roles; index 0 is the donor.
	FeatureKeys [2]string

	DonorClassifiers    []string
	AcceptorClassifiers []string

	// Commutative allows donors to be drawn from the second member as well.
	Commutative bool
}

// DefaultHydrogenBondParams returns the stock rule: 3.0 Å and 100°.
func DefaultHydrogenBondParams() HydrogenBondParams {
	return HydrogenBondParams{
		DistanceCutoff:      3.0,
		AngleCutoff:         100.0,
		FeatureKeys:         [2]string{"Donor", "Acceptor"},
		DonorClassifiers:    []string{"Donor"},
		AcceptorClassifiers: []string{"Acceptor"},
	}
}

// Validate checks the cutoffs and role keys.
func (p HydrogenBondParams) Validate() error {
	if !(p.DistanceCutoff > 0) {
		return errors.Newf(errors.ErrCodeInvalidCutoff, "distance cutoff must be > 0, got %v", p.DistanceCutoff)
	}
	if p.AngleCutoff < 0 || p.AngleCutoff >= 180 {
		return errors.Newf(errors.ErrCodeInvalidCutoff, "angle cutoff must be in [0, 180), got %v", p.AngleCutoff)
	}
	if p.FeatureKeys[DonorIdx] == "" || p.FeatureKeys[AcceptorIdx] == "" {
		return errors.InvalidParam("feature keys must not be empty")
	}
	if p.FeatureKeys[DonorIdx] == p.FeatureKeys[AcceptorIdx] {
		return errors.InvalidParam("donor and acceptor feature keys must differ")
	}
	if len(p.DonorClassifiers) == 0 || len(p.AcceptorClassifiers) == 0 {
		return errors.InvalidParam("donor and acceptor classifiers must not be empty")
	}
	return nil
}

func (p HydrogenBondParams) clone() HydrogenBondParams {
	c := p
	c.DonorClassifiers = append([]string(nil), p.DonorClassifiers...)
	c.AcceptorClassifiers = append([]string(nil), p.AcceptorClassifiers...)
	return c
}

//Personal.AI order the ending
