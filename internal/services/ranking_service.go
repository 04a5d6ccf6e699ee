package services

import (
	"sort"
	"time"

	"trading-contests/internal/models"

	"github.com/shopspring/decimal"
)

// Scores within this tolerance of each other count as equal.
var rankingEpsilon = decimal.New(1, -9)

// Standing is a participant's final figures as the ranking engine sees them.
// Built from participant aggregates after all positions are closed.
type Standing struct {
	ParticipantID   uint
	UserID          uint
	StartingCapital decimal.Decimal
	CurrentCapital  decimal.Decimal
	PnL             decimal.Decimal
	GrossProfit     decimal.Decimal
	GrossLoss       decimal.Decimal
	TotalTrades     int
	WinningTrades   int
	JoinedAt        time.Time
}

// RankedStanding is a Standing placed in the final order.
type RankedStanding struct {
	Standing
	Rank        int             `json:"rank"`
	Score       decimal.Decimal `json:"score"`
	PrizeAmount decimal.Decimal `json:"prize_amount"`
}

// RankingService orders standings and splits the prize pool. It is pure
// computation; persistence belongs to the contest service.
type RankingService struct{}

func NewRankingService() *RankingService {
	return &RankingService{}
}

// Rank orders standings by the contest's ranking method, breaks ties, and
// assigns prizes. Ranks use competition numbering (two tied at 1, next is 3)
// while prize tiers are consumed one per tie group in order, so the group
// after a two-way tie at the top receives the second tier.
func (rs *RankingService) Rank(standings []Standing, method models.RankingMethod,
	tieBreak1, tieBreak2 models.TieBreak, policy models.TiePrizePolicy,
	prizePool decimal.Decimal, distribution models.PrizeDistribution) []RankedStanding {

	ranked := make([]RankedStanding, len(standings))
	for i, s := range standings {
		ranked[i] = RankedStanding{
			Standing:    s,
			Score:       score(s, method),
			PrizeAmount: decimal.Zero,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return rs.less(ranked[i], ranked[j], tieBreak1, tieBreak2)
	})

	groups := rs.tieGroups(ranked, tieBreak1, tieBreak2)

	tiers := append(models.PrizeDistribution{}, distribution...)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Rank < tiers[j].Rank })

	rank := 1
	for groupIdx, group := range groups {
		for i := range group {
			group[i].Rank = rank
		}

		if groupIdx < len(tiers) && prizePool.IsPositive() {
			tierPrize := prizePool.Mul(tiers[groupIdx].Percentage).Div(decimal.NewFromInt(100))
			rs.applyPrizePolicy(group, tierPrize, policy)
		}

		rank += len(group)
	}

	return ranked
}

// score computes the primary sort key, higher is better.
func score(s Standing, method models.RankingMethod) decimal.Decimal {
	switch method {
	case models.RankingMethodROI:
		if s.StartingCapital.IsZero() {
			return decimal.Zero
		}
		return s.PnL.Div(s.StartingCapital).Mul(decimal.NewFromInt(100))
	case models.RankingMethodTotalCapital:
		return s.CurrentCapital
	case models.RankingMethodWinRate:
		return winRate(s)
	case models.RankingMethodTotalWins:
		return decimal.NewFromInt(int64(s.WinningTrades))
	case models.RankingMethodProfitFactor:
		if s.GrossLoss.IsZero() {
			// No losing trades: profit factor is the gross profit itself,
			// which still orders all-winners above everyone with losses.
			return s.GrossProfit
		}
		return s.GrossProfit.Div(s.GrossLoss.Abs())
	default:
		return s.PnL
	}
}

func winRate(s Standing) decimal.Decimal {
	if s.TotalTrades == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.WinningTrades)).
		Div(decimal.NewFromInt(int64(s.TotalTrades))).
		Mul(decimal.NewFromInt(100))
}

func tieBreakValue(s RankedStanding, tb models.TieBreak) decimal.Decimal {
	switch tb {
	case models.TieBreakTradesCount:
		return decimal.NewFromInt(int64(s.TotalTrades))
	case models.TieBreakWinRate:
		return winRate(s.Standing)
	case models.TieBreakTotalCapital:
		return s.CurrentCapital
	case models.TieBreakROI:
		if s.StartingCapital.IsZero() {
			return decimal.Zero
		}
		return s.PnL.Div(s.StartingCapital).Mul(decimal.NewFromInt(100))
	case models.TieBreakJoinTime:
		// Earlier join ranks first; negate so higher-is-better holds.
		return decimal.NewFromInt(-s.JoinedAt.UnixNano())
	default:
		return decimal.Zero
	}
}

func scoresEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(rankingEpsilon)
}

// less orders two standings: primary score, tieBreak1, tieBreak2, then the
// deterministic fallback of earliest join time and lowest participant id.
func (rs *RankingService) less(a, b RankedStanding, tb1, tb2 models.TieBreak) bool {
	if !scoresEqual(a.Score, b.Score) {
		return a.Score.GreaterThan(b.Score)
	}
	for _, tb := range []models.TieBreak{tb1, tb2} {
		av, bv := tieBreakValue(a, tb), tieBreakValue(b, tb)
		if !scoresEqual(av, bv) {
			return av.GreaterThan(bv)
		}
	}
	if !a.JoinedAt.Equal(b.JoinedAt) {
		return a.JoinedAt.Before(b.JoinedAt)
	}
	return a.ParticipantID < b.ParticipantID
}

// tieGroups splits the sorted slice into runs that remain tied after both
// tie-breakers. Each run shares a rank and one prize tier.
func (rs *RankingService) tieGroups(ranked []RankedStanding, tb1, tb2 models.TieBreak) [][]*RankedStanding {
	var groups [][]*RankedStanding
	for i := 0; i < len(ranked); {
		j := i + 1
		for j < len(ranked) && rs.fullyTied(ranked[i], ranked[j], tb1, tb2) {
			j++
		}
		group := make([]*RankedStanding, 0, j-i)
		for k := i; k < j; k++ {
			group = append(group, &ranked[k])
		}
		groups = append(groups, group)
		i = j
	}
	return groups
}

func (rs *RankingService) fullyTied(a, b RankedStanding, tb1, tb2 models.TieBreak) bool {
	if !scoresEqual(a.Score, b.Score) {
		return false
	}
	for _, tb := range []models.TieBreak{tb1, tb2} {
		if !scoresEqual(tieBreakValue(a, tb), tieBreakValue(b, tb)) {
			return false
		}
	}
	return true
}

// applyPrizePolicy distributes one tier's prize across a tied group.
// Payouts round down to credit cents, so the sum never exceeds the tier.
func (rs *RankingService) applyPrizePolicy(group []*RankedStanding, tierPrize decimal.Decimal, policy models.TiePrizePolicy) {
	if len(group) == 1 {
		group[0].PrizeAmount = tierPrize.RoundDown(2)
		return
	}

	switch policy {
	case models.TiePrizeFirstGetsAll:
		// Group order is already the deterministic fallback order.
		group[0].PrizeAmount = tierPrize.RoundDown(2)

	case models.TiePrizeSplitWeighted:
		total := decimal.Zero
		for _, m := range group {
			if m.Score.IsPositive() {
				total = total.Add(m.Score)
			}
		}
		if total.IsZero() {
			rs.splitEqually(group, tierPrize)
			return
		}
		for _, m := range group {
			if m.Score.IsPositive() {
				m.PrizeAmount = tierPrize.Mul(m.Score).Div(total).RoundDown(2)
			}
		}

	default: // split_equally
		rs.splitEqually(group, tierPrize)
	}
}

func (rs *RankingService) splitEqually(group []*RankedStanding, tierPrize decimal.Decimal) {
	share := tierPrize.Div(decimal.NewFromInt(int64(len(group)))).RoundDown(2)
	for _, m := range group {
		m.PrizeAmount = share
	}
}
