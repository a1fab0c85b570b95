package interaction

import (
	"math"

	"github.com/turtacn/hbond-profiler/internal/domain/structure"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateGeometry is returned when an angle is requested for a vertex
// that coincides with one of its endpoints.
var ErrDegenerateGeometry = errors.New(errors.ErrCodeDegenerateGeometry, "degenerate geometry: zero-length vector")

// Distance returns the Euclidean distance between two atoms.
func Distance(a, b structure.Atom) float64 {
	return r3.Norm(r3.Sub(a.Coords(), b.Coords()))
}

// Angle returns the donor-H-acceptor angle in degrees, measured at the
// hydrogen between (donor - H) and (acceptor - H).  The result lies in
// [0, 180].
func Angle(donor, acceptor, hydrogen structure.Atom) (float64, error) {
	return VertexAngle(donor.Coords(), acceptor.Coords(), hydrogen.Coords())
}

// VertexAngle returns the angle in degrees at vertex between the vectors
// pointing to p and q.
func VertexAngle(p, q, vertex r3.Vec) (float64, error) {
	v1 := r3.Sub(p, vertex)
	v2 := r3.Sub(q, vertex)
	n1, n2 := r3.Norm(v1), r3.Norm(v2)
	if n1 == 0 || n2 == 0 {
		return 0, ErrDegenerateGeometry.WithDetailf("vertex=%v p=%v q=%v", vertex, p, q)
	}
	cos := r3.Dot(v1, v2) / (n1 * n2)
	// Rounding can push |cos| just past 1 for collinear points.
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, nil
}

//Personal.AI order the ending
