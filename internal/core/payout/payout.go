// Package payout computes how a settled campaign budget is split between
// creators. The computation is pure and deterministic: identical inputs yield
// identical payout lists, which makes settlement retries auditable and
// reproducible.
package payout

import (
	"math/big"
	"sort"

	"github.com/google/uuid"

	"resonate/internal/core/domain"
)

// Entry is one submission's contribution to the payout computation.
// Disqualified entries are excluded before aggregation; the flag is set by
// moderation outside this engine.
type Entry struct {
	CreatorID    uuid.UUID
	Score        int64
	Disqualified bool
}

// Compute splits totalBudget between creators proportionally to their share
// of the total engagement across qualifying entries. Multiple entries for the
// same creator are summed first. Amounts are apportioned largest-remainder
// first, with ties broken by ascending creator ID, so the payouts sum to
// exactly totalBudget whenever at least one qualifying entry has a positive
// score. With no qualifying engagement the result is empty and the whole
// budget is the caller's remainder. Zero-amount payouts are omitted.
func Compute(entries []Entry, totalBudget int64) []domain.Payout {
	if totalBudget <= 0 {
		return nil
	}

	scores := make(map[uuid.UUID]int64)
	for _, e := range entries {
		if e.Disqualified || e.Score <= 0 {
			continue
		}
		scores[e.CreatorID] += e.Score
	}
	if len(scores) == 0 {
		return nil
	}

	creators := make([]uuid.UUID, 0, len(scores))
	var total int64
	for id, score := range scores {
		creators = append(creators, id)
		total += score
	}
	sort.Slice(creators, func(i, j int) bool {
		return creators[i].String() < creators[j].String()
	})

	// Integer apportionment: floor share first, then hand out the leftover
	// cents by largest fractional remainder. big.Int keeps budget*score from
	// overflowing for large campaigns.
	type share struct {
		creator uuid.UUID
		amount  int64
		rem     int64
	}
	budget := big.NewInt(totalBudget)
	totalBig := big.NewInt(total)
	shares := make([]share, 0, len(creators))
	var distributed int64
	for _, id := range creators {
		prod := new(big.Int).Mul(budget, big.NewInt(scores[id]))
		quo, rem := new(big.Int).QuoRem(prod, totalBig, new(big.Int))
		s := share{creator: id, amount: quo.Int64(), rem: rem.Int64()}
		distributed += s.amount
		shares = append(shares, s)
	}

	leftover := totalBudget - distributed
	if leftover > 0 {
		order := make([]int, len(shares))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return shares[order[i]].rem > shares[order[j]].rem
		})
		for _, idx := range order {
			if leftover == 0 {
				break
			}
			shares[idx].amount++
			leftover--
		}
	}

	payouts := make([]domain.Payout, 0, len(shares))
	for _, s := range shares {
		if s.amount == 0 {
			continue
		}
		payouts = append(payouts, domain.Payout{CreatorID: s.creator, Amount: s.amount})
	}
	return payouts
}

// Remainder returns the unspent part of totalBudget after the given payouts.
func Remainder(totalBudget int64, payouts []domain.Payout) int64 {
	rest := totalBudget
	for _, p := range payouts {
		rest -= p.Amount
	}
	return rest
}
