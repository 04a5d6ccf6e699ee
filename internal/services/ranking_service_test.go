package services

import (
	"testing"
	"time"

	"trading-contests/internal/models"

	"github.com/shopspring/decimal"
)

var rankingBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func makeStanding(participantID uint, pnl string, trades, wins int, joinOffset time.Duration) Standing {
	return Standing{
		ParticipantID:   participantID,
		UserID:          participantID,
		StartingCapital: decimal.NewFromInt(10000),
		CurrentCapital:  decimal.NewFromInt(10000).Add(decimal.RequireFromString(pnl)),
		PnL:             decimal.RequireFromString(pnl),
		TotalTrades:     trades,
		WinningTrades:   wins,
		JoinedAt:        rankingBase.Add(joinOffset),
	}
}

func TestRankByPnL(t *testing.T) {
	rs := NewRankingService()

	standings := []Standing{
		makeStanding(1, "-50", 3, 1, 0),
		makeStanding(2, "200", 5, 4, time.Minute),
		makeStanding(3, "75", 2, 2, 2*time.Minute),
	}

	ranked := rs.Rank(standings, models.RankingMethodPnL,
		models.TieBreakTradesCount, models.TieBreakJoinTime, models.TiePrizeSplitEqually,
		decimal.Zero, nil)

	expectedOrder := []uint{2, 3, 1}
	for i, want := range expectedOrder {
		if ranked[i].ParticipantID != want {
			t.Errorf("Position %d: expected participant %d, got %d", i, want, ranked[i].ParticipantID)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("Participant %d: expected rank %d, got %d", ranked[i].ParticipantID, i+1, ranked[i].Rank)
		}
	}
}

func TestRankScoreMethods(t *testing.T) {
	all := makeStanding(1, "500", 4, 4, 0)
	all.GrossProfit = decimal.NewFromInt(500)

	mixed := makeStanding(2, "300", 10, 5, 0)
	mixed.GrossProfit = decimal.NewFromInt(600)
	mixed.GrossLoss = decimal.NewFromInt(-300)

	tests := []struct {
		method models.RankingMethod
		s      Standing
		want   string
	}{
		{models.RankingMethodPnL, mixed, "300"},
		{models.RankingMethodROI, mixed, "3"},
		{models.RankingMethodTotalCapital, mixed, "10300"},
		{models.RankingMethodWinRate, mixed, "50"},
		{models.RankingMethodTotalWins, mixed, "5"},
		{models.RankingMethodProfitFactor, mixed, "2"},
		// No losing trades: profit factor falls back to gross profit.
		{models.RankingMethodProfitFactor, all, "500"},
	}
	for _, tc := range tests {
		got := score(tc.s, tc.method)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Method %s: expected score %s, got %s", tc.method, tc.want, got)
		}
	}

	empty := makeStanding(3, "0", 0, 0, 0)
	if !score(empty, models.RankingMethodWinRate).IsZero() {
		t.Errorf("Expected zero win rate with no trades")
	}
}

func TestTieBreakOrdering(t *testing.T) {
	rs := NewRankingService()

	// Same pnl; the first tie-break (trades count) must decide.
	standings := []Standing{
		makeStanding(1, "100", 2, 1, 0),
		makeStanding(2, "100", 8, 4, time.Minute),
	}

	ranked := rs.Rank(standings, models.RankingMethodPnL,
		models.TieBreakTradesCount, models.TieBreakJoinTime, models.TiePrizeSplitEqually,
		decimal.Zero, nil)

	if ranked[0].ParticipantID != 2 {
		t.Errorf("Expected higher trade count to rank first, got participant %d", ranked[0].ParticipantID)
	}
	if ranked[0].Rank != 1 || ranked[1].Rank != 2 {
		t.Errorf("Expected distinct ranks 1 and 2, got %d and %d", ranked[0].Rank, ranked[1].Rank)
	}
}

func TestTiedGroupSharesTierAndNextGroupGetsFollowingTier(t *testing.T) {
	rs := NewRankingService()

	// Two participants tied on everything, a third behind them. Pool 27 with
	// tiers 70/30: the tied pair splits 18.90 and the third takes 8.10.
	standings := []Standing{
		makeStanding(1, "100", 4, 2, 0),
		makeStanding(2, "100", 4, 2, 0),
		makeStanding(3, "50", 4, 2, time.Minute),
	}
	distribution := models.PrizeDistribution{
		{Rank: 1, Percentage: decimal.NewFromInt(70)},
		{Rank: 2, Percentage: decimal.NewFromInt(30)},
	}

	ranked := rs.Rank(standings, models.RankingMethodPnL,
		models.TieBreakTradesCount, models.TieBreakJoinTime, models.TiePrizeSplitEqually,
		decimal.NewFromInt(27), distribution)

	if ranked[0].Rank != 1 || ranked[1].Rank != 1 {
		t.Errorf("Expected both leaders at rank 1, got %d and %d", ranked[0].Rank, ranked[1].Rank)
	}
	if ranked[2].Rank != 3 {
		t.Errorf("Expected competition numbering to skip rank 2, got %d", ranked[2].Rank)
	}

	share := decimal.RequireFromString("9.45")
	if !ranked[0].PrizeAmount.Equal(share) || !ranked[1].PrizeAmount.Equal(share) {
		t.Errorf("Expected the tied pair to receive 9.45 each, got %s and %s",
			ranked[0].PrizeAmount, ranked[1].PrizeAmount)
	}
	if !ranked[2].PrizeAmount.Equal(decimal.RequireFromString("8.1")) {
		t.Errorf("Expected the third participant to receive 8.10, got %s", ranked[2].PrizeAmount)
	}
}

func TestTiePolicyFirstGetsAll(t *testing.T) {
	rs := NewRankingService()

	standings := []Standing{
		makeStanding(2, "100", 4, 2, time.Minute),
		makeStanding(1, "100", 4, 2, 0),
	}
	distribution := models.PrizeDistribution{
		{Rank: 1, Percentage: decimal.NewFromInt(100)},
	}

	// Tied through both tie-breaks except join time, which only orders the
	// group; the earlier joiner takes the whole tier.
	ranked := rs.Rank(standings, models.RankingMethodPnL,
		models.TieBreakTradesCount, models.TieBreakWinRate, models.TiePrizeFirstGetsAll,
		decimal.NewFromInt(100), distribution)

	if ranked[0].ParticipantID != 1 {
		t.Fatalf("Expected the earlier joiner first, got participant %d", ranked[0].ParticipantID)
	}
	if !ranked[0].PrizeAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected the first of the tied group to take 100, got %s", ranked[0].PrizeAmount)
	}
	if !ranked[1].PrizeAmount.IsZero() {
		t.Errorf("Expected the second of the tied group to take nothing, got %s", ranked[1].PrizeAmount)
	}
}

func TestTiePolicySplitWeighted(t *testing.T) {
	rs := NewRankingService()

	// win_rate ties both at 50% while pnl differs, so the weighted split
	// follows pnl-independent scores. Use total_wins instead for clean
	// weights: 30 and 10 wins share 40 credits 30/10.
	a := makeStanding(1, "100", 60, 30, 0)
	b := makeStanding(2, "100", 20, 10, 0)

	distribution := models.PrizeDistribution{
		{Rank: 1, Percentage: decimal.NewFromInt(100)},
	}

	ranked := rs.Rank([]Standing{a, b}, models.RankingMethodWinRate,
		models.TieBreakROI, models.TieBreakTotalCapital, models.TiePrizeSplitWeighted,
		decimal.NewFromInt(40), distribution)

	if ranked[0].Rank != 1 || ranked[1].Rank != 1 {
		t.Fatalf("Expected a two-way tie at rank 1, got %d and %d", ranked[0].Rank, ranked[1].Rank)
	}
	// Equal scores weight equally.
	if !ranked[0].PrizeAmount.Equal(decimal.NewFromInt(20)) || !ranked[1].PrizeAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected equal-score weighted split 20/20, got %s and %s",
			ranked[0].PrizeAmount, ranked[1].PrizeAmount)
	}
}

func TestTiePolicySplitWeightedNonPositiveScoresFallBackToEqual(t *testing.T) {
	rs := NewRankingService()

	standings := []Standing{
		makeStanding(1, "-100", 4, 0, 0),
		makeStanding(2, "-100", 4, 0, 0),
	}
	distribution := models.PrizeDistribution{
		{Rank: 1, Percentage: decimal.NewFromInt(100)},
	}

	ranked := rs.Rank(standings, models.RankingMethodPnL,
		models.TieBreakTradesCount, models.TieBreakWinRate, models.TiePrizeSplitWeighted,
		decimal.NewFromInt(50), distribution)

	if !ranked[0].PrizeAmount.Equal(decimal.NewFromInt(25)) || !ranked[1].PrizeAmount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected equal fallback split 25/25, got %s and %s",
			ranked[0].PrizeAmount, ranked[1].PrizeAmount)
	}
}

func TestPayoutRoundingNeverExceedsPool(t *testing.T) {
	rs := NewRankingService()

	standings := []Standing{
		makeStanding(1, "100", 4, 2, 0),
		makeStanding(2, "100", 4, 2, 0),
		makeStanding(3, "100", 4, 2, 0),
	}
	distribution := models.PrizeDistribution{
		{Rank: 1, Percentage: decimal.NewFromInt(100)},
	}

	pool := decimal.NewFromInt(100)
	ranked := rs.Rank(standings, models.RankingMethodPnL,
		models.TieBreakTradesCount, models.TieBreakWinRate, models.TiePrizeSplitEqually,
		pool, distribution)

	total := decimal.Zero
	for _, r := range ranked {
		if !r.PrizeAmount.Equal(decimal.RequireFromString("33.33")) {
			t.Errorf("Expected each share rounded down to 33.33, got %s", r.PrizeAmount)
		}
		total = total.Add(r.PrizeAmount)
	}
	if total.GreaterThan(pool) {
		t.Errorf("Payout total %s exceeds the pool %s", total, pool)
	}
}

func TestDeterministicFallbackOrder(t *testing.T) {
	rs := NewRankingService()

	// Identical on score and both tie-breaks, identical join time: the lower
	// participant id must come first every run.
	a := makeStanding(5, "100", 4, 2, 0)
	b := makeStanding(3, "100", 4, 2, 0)

	for i := 0; i < 10; i++ {
		ranked := rs.Rank([]Standing{a, b}, models.RankingMethodPnL,
			models.TieBreakTradesCount, models.TieBreakWinRate, models.TiePrizeSplitEqually,
			decimal.Zero, nil)
		if ranked[0].ParticipantID != 3 {
			t.Fatalf("Expected participant 3 first on fallback order, got %d", ranked[0].ParticipantID)
		}
	}
}
