package interaction

import (
	"github.com/turtacn/hbond-profiler/internal/domain/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

type testAtom struct {
	pos   r3.Vec
	elem  string
	adj   []structure.Atom
	attrs map[string]interface{}
}

func (a *testAtom) Coords() r3.Vec                  { return a.pos }
func (a *testAtom) Element() string                 { return a.elem }
func (a *testAtom) AdjacentAtoms() []structure.Atom { return a.adj }
func (a *testAtom) Attribute(name string) (interface{}, bool) {
	v, ok := a.attrs[name]
	return v, ok
}

type testFeatureType struct {
	name  string
	idxs  []int
	attrs map[string][]interface{}
}

func (ft *testFeatureType) Name() string                             { return ft.name }
func (ft *testFeatureType) AtomIdxs() []int                          { return ft.idxs }
func (ft *testFeatureType) AtomAttributes(name string) []interface{} { return ft.attrs[name] }

type testFeature struct {
	atoms []structure.Atom
	ft    structure.FeatureType
	class string
}

func (f *testFeature) Atoms() []structure.Atom     { return f.atoms }
func (f *testFeature) Type() structure.FeatureType { return f.ft }
func (f *testFeature) Classification() string      { return f.class }

type testMember struct {
	name     string
	features []structure.Feature
}

func (m *testMember) Name() string                  { return m.name }
func (m *testMember) Features() []structure.Feature { return m.features }

func heavyAtom(elem string, pos r3.Vec, serial int) *testAtom {
	return &testAtom{
		pos:  pos,
		elem: elem,
		attrs: map[string]interface{}{
			structure.AttrPDBName:          elem,
			structure.AttrPDBResidueName:   "LIG",
			structure.AttrPDBResidueNumber: 1,
			structure.AttrPDBSerialNumber:  serial,
		},
	}
}

func featureType(name string, idx int, serial int) *testFeatureType {
	return &testFeatureType{
		name: name,
		idxs: []int{idx},
		attrs: map[string][]interface{}{
			structure.AttrPDBName:          {name},
			structure.AttrPDBResidueName:   {"LIG"},
			structure.AttrPDBResidueNumber: {1},
			structure.AttrPDBSerialNumber:  {serial},
		},
	}
}

// donor builds a donor feature whose primary nitrogen sits at pos with one
// bonded hydrogen per entry of hydrogens.
func donor(typeName string, serial int, pos r3.Vec, hydrogens ...r3.Vec) *testFeature {
	n := heavyAtom("N", pos, serial)
	// A bonded carbon listed first checks that only hydrogens are walked.
	n.adj = append(n.adj, &testAtom{pos: r3.Add(pos, r3.Vec{X: -1.4}), elem: "C"})
	for _, h := range hydrogens {
		n.adj = append(n.adj, &testAtom{pos: h, elem: structure.ElementHydrogen, adj: []structure.Atom{n}})
	}
	return &testFeature{atoms: []structure.Atom{n}, ft: featureType(typeName, serial-1, serial), class: "Donor"}
}

func acceptor(typeName string, serial int, pos r3.Vec) *testFeature {
	o := heavyAtom("O", pos, serial)
	return &testFeature{atoms: []structure.Atom{o}, ft: featureType(typeName, serial-1, serial), class: "Acceptor"}
}

func member(name string, features ...structure.Feature) *testMember {
	return &testMember{name: name, features: features}
}

func vec(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }

// countingAngle wraps the angle function of t and returns the call counter.
func countingAngle(t *HydrogenBondType) *int {
	calls := new(int)
	inner := t.angleFn
	t.angleFn = func(d, a, h structure.Atom) (float64, error) {
		*calls++
		return inner(d, a, h)
	}
	return calls
}

func paramsWith(distance, angle float64) HydrogenBondParams {
	p := DefaultHydrogenBondParams()
	p.DistanceCutoff = distance
	p.AngleCutoff = angle
	return p
}

//Personal.AI order the ending
