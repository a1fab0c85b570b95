// Package frame builds the in-memory structure model of one snapshot from its
// JSON description.  Built frames are immutable and may be scanned from
// several goroutines.
package frame

import (
	"fmt"
	"math"

	"github.com/turtacn/hbond-profiler/internal/domain/structure"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
	"gonum.org/v1/gonum/spatial/r3"
)

// Atom implements structure.Atom.
type Atom struct {
	index    int
	element  string
	coords   r3.Vec
	attrs    map[string]interface{}
	adjacent []structure.Atom
}

// Index returns the atom's position within its member.
func (a *Atom) Index() int { return a.index }

// Coords returns the position in Angstrom.
func (a *Atom) Coords() r3.Vec { return a.coords }

// Element returns the element symbol.
func (a *Atom) Element() string { return a.element }

// AdjacentAtoms returns the bonded atoms, each listed once.
func (a *Atom) AdjacentAtoms() []structure.Atom { return a.adjacent }

// Attribute returns a PDB attribute such as structure.AttrPDBSerialNumber.
func (a *Atom) Attribute(name string) (interface{}, bool) {
	v, ok := a.attrs[name]
	return v, ok
}

// FeatureType implements structure.FeatureType.  Each feature of a frame
// carries its own type.
type FeatureType struct {
	name  string
	atoms []*Atom
}

// Name returns the feature type name.
func (t *FeatureType) Name() string { return t.name }

// AtomIdxs returns the member indices of the type's atoms.
func (t *FeatureType) AtomIdxs() []int {
	out := make([]int, len(t.atoms))
	for i, a := range t.atoms {
		out[i] = a.index
	}
	return out
}

// AtomAttributes returns the named attribute of every atom, nil where unset.
func (t *FeatureType) AtomAttributes(name string) []interface{} {
	out := make([]interface{}, len(t.atoms))
	for i, a := range t.atoms {
		out[i] = a.attrs[name]
	}
	return out
}

// Feature implements structure.Feature.
type Feature struct {
	ftype          *FeatureType
	atoms          []structure.Atom
	classification string
}

// Atoms returns the feature's atoms; the first is its primary atom.
func (f *Feature) Atoms() []structure.Atom { return f.atoms }

// Type returns the feature type.
func (f *Feature) Type() structure.FeatureType { return f.ftype }

// Classification returns the donor/acceptor label, e.g. "Donor".
func (f *Feature) Classification() string { return f.classification }

// Member implements structure.Member.
type Member struct {
	name     string
	atoms    []*Atom
	features []structure.Feature
}

// Name returns the member name.
func (m *Member) Name() string { return m.name }

// Features returns the member's features in input order.
func (m *Member) Features() []structure.Feature { return m.features }

// Atoms returns the member's atoms in index order.
func (m *Member) Atoms() []*Atom { return m.atoms }

// Frame is one snapshot.
type Frame struct {
	ProfileID string
	members   []*Member
}

// Members returns every member of the frame.
func (f *Frame) Members() []*Member { return f.members }

// Select returns the members at the two indices of pair, in that order.
func (f *Frame) Select(pair [2]int) ([]structure.Member, error) {
	out := make([]structure.Member, 0, len(pair))
	for _, idx := range pair {
		if idx < 0 || idx >= len(f.members) {
			return nil, errors.Newf(errors.ErrCodeFrameInvalid,
				"frame %q has %d members, member index %d is out of range", f.ProfileID, len(f.members), idx)
		}
		out = append(out, f.members[idx])
	}
	return out, nil
}

// Feature returns the feature addressed by ref.
func (f *Frame) Feature(ref profile.FeatureRef) (structure.Feature, error) {
	if ref.Member < 0 || ref.Member >= len(f.members) {
		return nil, errors.Newf(errors.ErrCodeFrameInvalid, "member index %d is out of range", ref.Member)
	}
	features := f.members[ref.Member].features
	if ref.Feature < 0 || ref.Feature >= len(features) {
		return nil, errors.Newf(errors.ErrCodeFrameInvalid,
			"feature index %d is out of range for member %d", ref.Feature, ref.Member)
	}
	return features[ref.Feature], nil
}

// Build validates dto and constructs the frame.  Bonds define adjacency in the
// order they are listed.
func Build(dto profile.FrameDTO) (*Frame, error) {
	if len(dto.Members) == 0 {
		return nil, errors.Newf(errors.ErrCodeFrameInvalid, "frame %q has no members", dto.ProfileID)
	}
	f := &Frame{ProfileID: dto.ProfileID, members: make([]*Member, 0, len(dto.Members))}
	for i, md := range dto.Members {
		m, err := buildMember(md)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown,
				fmt.Sprintf("invalid member %d of frame %q", i, dto.ProfileID))
		}
		f.members = append(f.members, m)
	}
	return f, nil
}

func buildMember(md profile.MemberDTO) (*Member, error) {
	m := &Member{name: md.Name, atoms: make([]*Atom, len(md.Atoms))}
	for i, ad := range md.Atoms {
		for _, c := range ad.Coords {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, errors.Newf(errors.ErrCodeFrameInvalid, "atom %d has non-finite coordinates", i)
			}
		}
		if ad.Element == "" {
			return nil, errors.Newf(errors.ErrCodeFrameInvalid, "atom %d has no element", i)
		}
		m.atoms[i] = &Atom{
			index:   i,
			element: ad.Element,
			coords:  r3.Vec{X: ad.Coords[0], Y: ad.Coords[1], Z: ad.Coords[2]},
			attrs:   pdbAttributes(ad.PDB),
		}
	}

	// repeated or reversed bonds are listed once
	seen := make(map[[2]int]struct{}, len(md.Bonds))
	for _, b := range md.Bonds {
		if err := checkIndex(b[0], len(m.atoms)); err != nil {
			return nil, err
		}
		if err := checkIndex(b[1], len(m.atoms)); err != nil {
			return nil, err
		}
		if b[0] == b[1] {
			return nil, errors.Newf(errors.ErrCodeAtomIndexInvalid, "atom %d is bonded to itself", b[0])
		}
		pair := [2]int{min(b[0], b[1]), max(b[0], b[1])}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		a, c := m.atoms[b[0]], m.atoms[b[1]]
		a.adjacent = append(a.adjacent, c)
		c.adjacent = append(c.adjacent, a)
	}

	m.features = make([]structure.Feature, 0, len(md.Features))
	for i, fd := range md.Features {
		if fd.Type == "" {
			return nil, errors.Newf(errors.ErrCodeFrameInvalid, "feature %d has no type", i)
		}
		if len(fd.Atoms) == 0 {
			return nil, errors.Newf(errors.ErrCodeFeatureEmpty, "feature %d has no atoms", i)
		}
		ft := &FeatureType{name: fd.Type, atoms: make([]*Atom, len(fd.Atoms))}
		atoms := make([]structure.Atom, len(fd.Atoms))
		for j, idx := range fd.Atoms {
			if err := checkIndex(idx, len(m.atoms)); err != nil {
				return nil, err
			}
			ft.atoms[j] = m.atoms[idx]
			atoms[j] = m.atoms[idx]
		}
		m.features = append(m.features, &Feature{ftype: ft, atoms: atoms, classification: fd.Classification})
	}
	return m, nil
}

func checkIndex(idx, n int) error {
	if idx < 0 || idx >= n {
		return errors.Newf(errors.ErrCodeAtomIndexInvalid, "atom index %d is out of range [0, %d)", idx, n)
	}
	return nil
}

func pdbAttributes(p *profile.PDBInfo) map[string]interface{} {
	if p == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}{
		structure.AttrPDBName:          p.Name,
		structure.AttrPDBResidueName:   p.ResidueName,
		structure.AttrPDBResidueNumber: p.ResidueNumber,
		structure.AttrPDBSerialNumber:  p.SerialNumber,
	}
}

var (
	_ structure.Atom        = (*Atom)(nil)
	_ structure.FeatureType = (*FeatureType)(nil)
	_ structure.Feature     = (*Feature)(nil)
	_ structure.Member      = (*Member)(nil)
)

//Personal.AI order the ending
