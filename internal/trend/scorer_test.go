package trend

import (
	"math"
	"testing"
	"time"

	"github.com/Sam231221/dkn-governance/internal/domain"
)

var now = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func item(created, updated time.Time) *domain.ContentItem {
	return &domain.ContentItem{
		ID:        "item",
		Status:    domain.StatusApproved,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in   string
		want Window
	}{
		{"today", WindowToday},
		{"week", WindowWeek},
		{"month", WindowMonth},
		{"all", WindowAll},
		{"", WindowAll},
		{"lifetime", WindowAll},
	}
	for _, tt := range tests {
		if got := ParseWindow(tt.in); got != tt.want {
			t.Errorf("ParseWindow(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestScoreItem_OutsideWindowIsZero(t *testing.T) {
	it := item(now.Add(-48*time.Hour), now.Add(-48*time.Hour))
	it.Views = 100
	it.Likes = 50

	score := ScoreItem(it, WindowToday, now)
	if score.AccessScore != 0 || score.TrendingScore != 0 {
		t.Errorf("item older than the window must score zero, got %+v", score)
	}
}

func TestScoreItem_ViewAndLikeWeights(t *testing.T) {
	// Old enough inside the month window that recency and update boosts
	// are both zero.
	created := now.Add(-29 * 24 * time.Hour)
	it := item(created, created)
	it.Views = 10
	it.Likes = 4

	score := ScoreItem(it, WindowMonth, now)

	// 10*2 + 4*1.5 + recencyBoost(50 * 1day/30days)
	wantRecency := 50.0 * float64(24*time.Hour) / float64(30*24*time.Hour)
	want := 20.0 + 6.0 + wantRecency
	if !almostEqual(score.AccessScore, want) {
		t.Errorf("access score = %v, want %v", score.AccessScore, want)
	}
}

func TestScoreItem_RecencyBoostDecays(t *testing.T) {
	fresh := item(now.Add(-1*time.Hour), now.Add(-23*time.Hour))
	older := item(now.Add(-20*time.Hour), now.Add(-20*time.Hour))

	freshScore := ScoreItem(fresh, WindowToday, now)
	olderScore := ScoreItem(older, WindowToday, now)

	if freshScore.AccessScore <= olderScore.AccessScore {
		t.Errorf("newer item must carry the larger recency boost: %v vs %v",
			freshScore.AccessScore, olderScore.AccessScore)
	}
}

func TestScoreItem_UpdateBoostWithinRecentThird(t *testing.T) {
	created := now.Add(-6 * 24 * time.Hour)

	recentEdit := item(created, now.Add(-1*24*time.Hour))
	staleEdit := item(created, created)

	withBoost := ScoreItem(recentEdit, WindowWeek, now)
	withoutBoost := ScoreItem(staleEdit, WindowWeek, now)

	if !almostEqual(withBoost.AccessScore-withoutBoost.AccessScore, updateBoost) {
		t.Errorf("expected update boost of %v, got difference %v",
			updateBoost, withBoost.AccessScore-withoutBoost.AccessScore)
	}
}

func TestScoreItem_AllWindow(t *testing.T) {
	// Two years old: excluded from every bounded window but scored under
	// "all".
	created := now.Add(-2 * 365 * 24 * time.Hour)
	it := item(created, created)
	it.Views = 5

	score := ScoreItem(it, WindowAll, now)
	if !almostEqual(score.AccessScore, 10.0) {
		t.Errorf("all window must score without recency boost, got %v", score.AccessScore)
	}

	// Updated within the month-based fallback third: boost applies even
	// under the unbounded window.
	it.UpdatedAt = now.Add(-5 * 24 * time.Hour)
	boosted := ScoreItem(it, WindowAll, now)
	if !almostEqual(boosted.AccessScore, 10.0+updateBoost) {
		t.Errorf("all window update fallback boost missing, got %v", boosted.AccessScore)
	}
}

func TestScoreItem_TrendingBonuses(t *testing.T) {
	created := now.Add(-29 * 24 * time.Hour)
	it := item(created, created)
	it.Views = 10

	base := ScoreItem(it, WindowMonth, now)
	if !almostEqual(base.TrendingScore, base.AccessScore) {
		t.Errorf("no bonuses expected, trending %v != access %v", base.TrendingScore, base.AccessScore)
	}

	it.ValidatedBy = "reviewer-1"
	it.RepositoryID = "repo-9"
	full := ScoreItem(it, WindowMonth, now)
	if !almostEqual(full.TrendingScore, full.AccessScore+validatedBonus+repositoryBonus) {
		t.Errorf("expected validated and repository bonuses, got trending %v access %v",
			full.TrendingScore, full.AccessScore)
	}
}

func TestRank_ExcludesZeroScores(t *testing.T) {
	outside := item(now.Add(-10*24*time.Hour), now.Add(-10*24*time.Hour))
	outside.ID = "outside"
	outside.Views = 1000

	inside := item(now.Add(-2*24*time.Hour), now.Add(-2*24*time.Hour))
	inside.ID = "inside"
	inside.Views = 1

	ranked := Rank([]*domain.ContentItem{outside, inside}, WindowWeek, now)
	if len(ranked) != 1 || ranked[0].Item.ID != "inside" {
		t.Errorf("zero-score items must be excluded, got %+v", ranked)
	}
}

func TestRank_OrderAndTieBreak(t *testing.T) {
	older := item(now.Add(-5*24*time.Hour), now.Add(-5*24*time.Hour))
	older.ID = "older"
	older.Views = 50

	newer := item(now.Add(-4*24*time.Hour), now.Add(-4*24*time.Hour))
	newer.ID = "newer"
	newer.Views = 50

	big := item(now.Add(-6*24*time.Hour), now.Add(-6*24*time.Hour))
	big.ID = "big"
	big.Views = 500

	// WindowAll removes the recency boost, so equal view counts are a
	// genuine tie.
	ranked := Rank([]*domain.ContentItem{older, newer, big}, WindowAll, now)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked items, got %d", len(ranked))
	}
	if ranked[0].Item.ID != "big" {
		t.Errorf("highest access score must rank first, got %s", ranked[0].Item.ID)
	}
	if ranked[1].Item.ID != "newer" || ranked[2].Item.ID != "older" {
		t.Errorf("ties must break newest first, got %s then %s", ranked[1].Item.ID, ranked[2].Item.ID)
	}
}
