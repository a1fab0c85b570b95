// Package structure declares the read-only views of molecular data that the
// interaction rules consume.  Atoms, features and members are owned by the
// code that perceived them; rules only hold references for the duration of a
// scan and never mutate them.
package structure

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Element symbol of hydrogen.
const ElementHydrogen = "H"

// Provenance attribute names addressable through Atom.Attribute.
const (
	AttrPDBName          = "pdb_name"
	AttrPDBResidueName   = "pdb_residue_name"
	AttrPDBResidueNumber = "pdb_residue_number"
	AttrPDBSerialNumber  = "pdb_serial_number"
)

// PDBAttributes lists the provenance attributes carried into type records, in
// record order.
var PDBAttributes = []string{
	AttrPDBName,
	AttrPDBResidueName,
	AttrPDBResidueNumber,
	AttrPDBSerialNumber,
}

// Atom is a single atom of a snapshot.
type Atom interface {
	// Coords returns the Cartesian position in Å.
	Coords() r3.Vec
	Element() string
	// AdjacentAtoms returns the bonded neighbours in a stable order.
	AdjacentAtoms() []Atom
	// Attribute returns a provenance value such as AttrPDBSerialNumber.
	Attribute(name string) (interface{}, bool)
}

// FeatureType describes a perceived feature independent of any snapshot.
type FeatureType interface {
	Name() string
	// AtomIdxs returns the member-level indices of the feature's atoms.
	AtomIdxs() []int
	// AtomAttributes returns one value per atom for a provenance attribute,
	// nil entries where an atom lacks it.
	AtomAttributes(name string) []interface{}
}

// Feature is one occurrence of a FeatureType in a snapshot.  Atoms()[0] is
// the primary atom.
type Feature interface {
	Atoms() []Atom
	Type() FeatureType
	// Classification is the grouping attribute used for role assignment
	// (for example "Donor" or "Acceptor").
	Classification() string
}

// Member is one molecule of an association, holding its features in a stable
// order.
type Member interface {
	Name() string
	Features() []Feature
}

// PrimaryAtom returns f.Atoms()[0] or nil when the feature is empty.
func PrimaryAtom(f Feature) Atom {
	if f == nil {
		return nil
	}
	atoms := f.Atoms()
	if len(atoms) == 0 {
		return nil
	}
	return atoms[0]
}

// Hydrogens returns the atoms adjacent to a that are hydrogens, in adjacency
// order.
func Hydrogens(a Atom) []Atom {
	var out []Atom
	for _, n := range a.AdjacentAtoms() {
		if n.Element() == ElementHydrogen {
			out = append(out, n)
		}
	}
	return out
}

//Personal.AI order the ending
