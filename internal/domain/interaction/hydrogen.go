package interaction

import (
	"github.com/turtacn/hbond-profiler/internal/domain/structure"
)

// angleFunc measures the donor-H-acceptor angle.  It is a field of
// HydrogenBondType so tests can observe how often it runs.
type angleFunc func(donor, acceptor, hydrogen structure.Atom) (float64, error)

// selectHydrogen walks the hydrogens bonded to the donor atom in adjacency
// order and returns the first whose angle exceeds the cutoff.  When none
// qualifies, rejected holds every measured angle in order and ok is false.
func (t *HydrogenBondType) selectHydrogen(donor, acceptor structure.Atom) (angle float64, rejected []float64, ok bool, err error) {
	rejected = []float64{}
	for _, h := range structure.Hydrogens(donor) {
		a, err := t.angleFn(donor, acceptor, h)
		if err != nil {
			return 0, rejected, false, err
		}
		if t.CheckAngle(a) {
			return a, nil, true, nil
		}
		rejected = append(rejected, a)
	}
	return 0, rejected, false, nil
}

//Personal.AI order the ending
