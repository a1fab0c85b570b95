package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/hbond-profiler/internal/domain/structure"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// scanMembers returns two members with one hit in each direction:
//
//	member 0: D1 (donor, NH), A0 (acceptor, O0)
//	member 1: A1 (acceptor, O), A2 (acceptor, far away), D2 (donor, NH2)
//
// D1 bonds A1 and D2 bonds A0; every other pairing is out of range.
func scanMembers() []structure.Member {
	d1 := donor("NH", 1, vec(0, 0, 0), vec(1, 0, 0))
	a0 := acceptor("O0", 2, vec(10, 10, 10))
	a1 := acceptor("O", 11, vec(2.8, 0, 0))
	a2 := acceptor("O2", 12, vec(20, 0, 0))
	d2 := donor("NH2", 13, vec(10, 12.8, 10), vec(10, 11, 10))
	return []structure.Member{
		member("ligand", d1, a0),
		member("receptor", a1, a2, d2),
	}
}

func TestFindHits_OneDirection(t *testing.T) {
	t.Parallel()
	hb, err := NewHydrogenBondType("", DefaultHydrogenBondParams())
	require.NoError(t, err)

	res, err := hb.FindHits(context.Background(), scanMembers(), ScanOptions{ReturnFeatureKeys: true})
	require.NoError(t, err)

	require.Len(t, res.Hits, 1)
	assert.Equal(t, [][2]FeatureKey{{{Member: 0, Feature: 0}, {Member: 1, Feature: 0}}}, res.FeatureKeys)
	assert.Nil(t, res.Failed)
	assert.Equal(t, ScanStats{Evaluated: 2, Hits: 1, RejectedDistance: 1}, res.Stats)

	class := res.Hits[0].Class()
	assert.Equal(t, "HydrogenBond_NH_O", class.Name())
	assert.Equal(t, [2]int{0, 1}, class.MemberPair())
	_, err = res.Hits[0].Record()
	assert.NoError(t, err)
}

func TestFindHits_Commutative(t *testing.T) {
	t.Parallel()
	p := DefaultHydrogenBondParams()
	p.Commutative = true
	hb, err := NewHydrogenBondType("", p)
	require.NoError(t, err)

	res, err := hb.FindHits(context.Background(), scanMembers(), ScanOptions{ReturnFeatureKeys: true})
	require.NoError(t, err)

	require.Len(t, res.Hits, 2)
	assert.Equal(t, [2]FeatureKey{{Member: 1, Feature: 2}, {Member: 0, Feature: 1}}, res.FeatureKeys[1])
	assert.Equal(t, "HydrogenBond_NH2_O0", res.Hits[1].Class().Name())
	assert.Equal(t, [2]int{1, 0}, res.Hits[1].Class().MemberPair())
	assert.Equal(t, 3, res.Stats.Evaluated)
	assert.Equal(t, 2, res.Stats.Hits)
}

func TestFindHits_Deterministic(t *testing.T) {
	t.Parallel()
	p := DefaultHydrogenBondParams()
	p.Commutative = true
	hb, err := NewHydrogenBondType("", p)
	require.NoError(t, err)
	members := scanMembers()

	first, err := hb.FindHits(context.Background(), members, ScanOptions{ReturnFeatureKeys: true})
	require.NoError(t, err)
	second, err := hb.FindHits(context.Background(), members, ScanOptions{ReturnFeatureKeys: true})
	require.NoError(t, err)

	assert.Equal(t, first.FeatureKeys, second.FeatureKeys)
	assert.Equal(t, first.Stats, second.Stats)
	for i := range first.Hits {
		assert.Equal(t, first.Hits[i].Distance(), second.Hits[i].Distance())
		assert.Equal(t, first.Hits[i].Angle(), second.Hits[i].Angle())
	}
}

func TestFindHits_FailedHits(t *testing.T) {
	t.Parallel()
	hb, err := NewHydrogenBondType("", DefaultHydrogenBondParams())
	require.NoError(t, err)

	res, err := hb.FindHits(context.Background(), scanMembers(), ScanOptions{ReturnFailedHits: true})
	require.NoError(t, err)

	require.Len(t, res.Failed, 1)
	f := res.Failed[0]
	assert.Equal(t, [2]FeatureKey{{Member: 0, Feature: 0}, {Member: 1, Feature: 1}}, f.Keys)
	assert.Equal(t, StageDistance, f.Stage())
	assert.ErrorIs(t, f, ErrNotHydrogenBond)
	assert.Nil(t, res.FeatureKeys)
}

func TestFindHits_Classes(t *testing.T) {
	t.Parallel()
	d1 := donor("NH", 1, vec(0, 0, 0), vec(1, 0, 0))
	d3 := donor("NX", 2, vec(0, -5, 0), vec(1, -5, 0))
	a1 := acceptor("O", 11, vec(2.8, 0, 0))
	a4 := acceptor("O", 12, vec(2.8, -5, 0))
	members := []structure.Member{member("ligand", d1, d3), member("receptor", a1, a4)}

	hb, err := NewHydrogenBondType("", DefaultHydrogenBondParams())
	require.NoError(t, err)
	matching, err := NewHydrogenBondType("HB_NH_O", DefaultHydrogenBondParams(),
		WithFeatureTypes(d1.ft, a1.ft), WithMemberPair(0, 1))
	require.NoError(t, err)
	swapped, err := NewHydrogenBondType("HB_NH_O_swapped", DefaultHydrogenBondParams(),
		WithFeatureTypes(d1.ft, a1.ft), WithMemberPair(1, 0))
	require.NoError(t, err)

	res, err := hb.FindHits(context.Background(), members, ScanOptions{Classes: []*HydrogenBondType{swapped, matching}})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Same(t, matching, res.Hits[0].Class())
	assert.Same(t, d1, res.Hits[0].Donor())
	assert.Equal(t, ScanStats{Evaluated: 4, Hits: 1, RejectedDistance: 2, Unclassified: 1}, res.Stats)

	res, err = hb.FindHits(context.Background(), members, ScanOptions{Classes: []*HydrogenBondType{swapped}})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Equal(t, 2, res.Stats.Unclassified)
}

func TestFindHits_MemberIdxs(t *testing.T) {
	t.Parallel()
	hb, err := NewHydrogenBondType("", DefaultHydrogenBondParams())
	require.NoError(t, err)

	res, err := hb.FindHits(context.Background(), scanMembers(),
		ScanOptions{ReturnFeatureKeys: true, MemberIdxs: []int{3, 1}})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, [2]FeatureKey{{Member: 3, Feature: 0}, {Member: 1, Feature: 0}}, res.FeatureKeys[0])
	assert.Equal(t, [2]int{3, 1}, res.Hits[0].Class().MemberPair())

	_, err = hb.FindHits(context.Background(), scanMembers(), ScanOptions{MemberIdxs: []int{0}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMemberCountMismatch))
}

func TestFindHits_MemberCount(t *testing.T) {
	t.Parallel()
	hb, err := NewHydrogenBondType("", DefaultHydrogenBondParams())
	require.NoError(t, err)

	_, err = hb.FindHits(context.Background(), scanMembers()[:1], ScanOptions{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMemberCountMismatch))
}

func TestFindHits_Cancelled(t *testing.T) {
	t.Parallel()
	hb, err := NewHydrogenBondType("", DefaultHydrogenBondParams())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = hb.FindHits(ctx, scanMembers(), ScanOptions{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeCancelled))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindHits_CheckErrorKeepsCode(t *testing.T) {
	t.Parallel()
	hb, err := NewHydrogenBondType("", DefaultHydrogenBondParams())
	require.NoError(t, err)
	broken := &testFeature{class: "Donor", ft: featureType("X", 0, 1)}
	members := []structure.Member{member("ligand", broken), member("receptor", acceptor("O", 2, vec(1, 0, 0)))}

	_, err = hb.FindHits(context.Background(), members, ScanOptions{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeFeatureEmpty))
	assert.Equal(t, errors.ErrCodeFeatureEmpty, errors.GetCode(err))
}

//Personal.AI order the ending
