package testutil

import (
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// HydrogenBondFrame returns a two-member frame with one donor and one
// acceptor.  The donor nitrogen sits at the origin with its hydrogen at
// (1,0,0); the acceptor oxygen sits at (acceptorX, acceptorY, 0).  Serial
// numbers are 2 for the nitrogen and 101 for the oxygen.
func HydrogenBondFrame(profileID string, acceptorX, acceptorY float64) profile.FrameDTO {
	return profile.FrameDTO{
		ProfileID: profileID,
		Members: []profile.MemberDTO{
			{
				Name: "ligand",
				Atoms: []profile.AtomDTO{
					{Element: "C", Coords: [3]float64{-1.4, 0, 0}, PDB: pdb("C1", "LIG", 1, 1)},
					{Element: "N", Coords: [3]float64{0, 0, 0}, PDB: pdb("N1", "LIG", 1, 2)},
					{Element: "H", Coords: [3]float64{1, 0, 0}, PDB: pdb("H1", "LIG", 1, 3)},
				},
				Bonds:    [][2]int{{0, 1}, {1, 2}},
				Features: []profile.FeatureDTO{{Type: "NH", Classification: "Donor", Atoms: []int{1, 2}}},
			},
			{
				Name: "receptor",
				Atoms: []profile.AtomDTO{
					{Element: "O", Coords: [3]float64{acceptorX, acceptorY, 0}, PDB: pdb("OG", "SER", 7, 101)},
				},
				Features: []profile.FeatureDTO{{Type: "OG", Classification: "Acceptor", Atoms: []int{0}}},
			},
		},
	}
}

func pdb(name, residue string, residueNumber, serial int) *profile.PDBInfo {
	return &profile.PDBInfo{Name: name, ResidueName: residue, ResidueNumber: residueNumber, SerialNumber: serial}
}

//Personal.AI order the ending
