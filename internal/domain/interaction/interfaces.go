// Package interaction classifies pairwise interactions between perceived
// chemical features.  The hydrogen bond is the only kind implemented; the
// Type and Interaction interfaces describe what any further kind must
// provide.
package interaction

import (
	"github.com/turtacn/hbond-profiler/internal/domain/structure"
)

// Type is an interaction class: the rule plus, for concrete classes, the
// feature types and member pair it applies to.
type Type interface {
	Name() string
	InteractionName() string
	Degree() int
	Commutative() bool
	ParamKeys() []string
	FeatureKeys() []string
	Record() (Record, error)
}

// Interaction is one detected instance of a Type.
type Interaction interface {
	Type() Type
	Features() []structure.Feature
	Params() map[string]float64
	Record() (Record, error)
}

//Personal.AI order the ending
