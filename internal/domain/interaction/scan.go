package interaction

import (
	"context"
	"fmt"

	"github.com/turtacn/hbond-profiler/internal/domain/structure"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// FeatureKey locates a feature by member index and feature index within the
// member.
type FeatureKey struct {
	Member  int `json:"member"`
	Feature int `json:"feature"`
}

// ScanOptions controls FindHits.
type ScanOptions struct {
	// Classes restricts hits to the listed classes.  When empty, a class is
	// derived from every hit.
	Classes []*HydrogenBondType
	// ReturnFeatureKeys fills ScanResult.FeatureKeys.
	ReturnFeatureKeys bool
	// ReturnFailedHits fills ScanResult.Failed.
	ReturnFailedHits bool
	// MemberIdxs gives the association member index of each entry of the
	// members argument.  Nil means the position in members.  Feature keys
	// and class member pairs use these indices.
	MemberIdxs []int
}

// ScanStats counts pair outcomes of one scan.
type ScanStats struct {
	Evaluated        int
	Hits             int
	RejectedDistance int
	RejectedAngle    int
	// Unclassified counts hits matching none of ScanOptions.Classes.
	Unclassified int
}

// ScanResult holds the hits of one scan in scan order.  FeatureKeys is
// parallel to Hits.
type ScanResult struct {
	Hits        []*HydrogenBond
	FeatureKeys [][2]FeatureKey
	Failed      []*ClassificationFailure
	Stats       ScanStats
}

// FindHits evaluates every donor of one member against every acceptor of the
// other.  Donors come from members[0] and acceptors from members[1]; a
// commutative rule scans the swapped direction as well.  Each ordered pair of
// features is evaluated at most once.
func (t *HydrogenBondType) FindHits(ctx context.Context, members []structure.Member, opts ScanOptions) (*ScanResult, error) {
	if len(members) != t.Degree() {
		return nil, errors.Newf(errors.ErrCodeMemberCountMismatch,
			"hydrogen bond scan needs %d members, got %d", t.Degree(), len(members))
	}

	if opts.MemberIdxs != nil && len(opts.MemberIdxs) != len(members) {
		return nil, errors.Newf(errors.ErrCodeMemberCountMismatch,
			"%d member indices given for %d members", len(opts.MemberIdxs), len(members))
	}
	assoc := func(i int) int {
		if opts.MemberIdxs == nil {
			return i
		}
		return opts.MemberIdxs[i]
	}

	directions := [][2]int{{0, 1}}
	if t.params.Commutative {
		directions = append(directions, [2]int{1, 0})
	}

	res := &ScanResult{}
	seen := make(map[[2]FeatureKey]struct{})

	for _, dir := range directions {
		donors := members[dir[DonorIdx]].Features()
		acceptors := members[dir[AcceptorIdx]].Features()
		pair := [2]int{assoc(dir[DonorIdx]), assoc(dir[AcceptorIdx])}

		for di, donor := range donors {
			if !t.IsDonor(donor) {
				continue
			}
			for ai, acceptor := range acceptors {
				if !t.IsAcceptor(acceptor) {
					continue
				}
				keys := [2]FeatureKey{
					{Member: pair[DonorIdx], Feature: di},
					{Member: pair[AcceptorIdx], Feature: ai},
				}
				if _, dup := seen[keys]; dup {
					continue
				}
				seen[keys] = struct{}{}

				if err := ctx.Err(); err != nil {
					return nil, errors.Wrap(err, errors.ErrCodeCancelled, "hydrogen bond scan cancelled")
				}

				check, err := t.Check(donor, acceptor)
				if err != nil {
					return nil, errors.Wrap(err, errors.CodeUnknown,
						fmt.Sprintf("hydrogen bond check failed for donor %v acceptor %v", keys[DonorIdx], keys[AcceptorIdx]))
				}
				res.Stats.Evaluated++

				if !check.OK {
					if check.Stage == StageDistance {
						res.Stats.RejectedDistance++
					} else {
						res.Stats.RejectedAngle++
					}
					if opts.ReturnFailedHits {
						res.Failed = append(res.Failed, &ClassificationFailure{
							Class: t, Donor: donor, Acceptor: acceptor, Keys: keys, Result: check,
						})
					}
					continue
				}

				class := t.classify(donor, acceptor, pair, opts.Classes)
				if class == nil {
					res.Stats.Unclassified++
					continue
				}
				res.Stats.Hits++
				res.Hits = append(res.Hits, newHydrogenBond(class, donor, acceptor, check))
				if opts.ReturnFeatureKeys {
					res.FeatureKeys = append(res.FeatureKeys, keys)
				}
			}
		}
	}
	return res, nil
}

// classify picks the class of a hit: the first matching entry of classes, or
// a class derived from the hit when classes is empty.
func (t *HydrogenBondType) classify(donor, acceptor structure.Feature, pair [2]int, classes []*HydrogenBondType) *HydrogenBondType {
	if len(classes) == 0 {
		return t.derive(donor, acceptor, pair)
	}
	for _, c := range classes {
		if c != nil && c.matches(donor, acceptor, pair) {
			return c
		}
	}
	return nil
}

//Personal.AI order the ending
