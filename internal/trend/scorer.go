// Package trend computes time-decayed access scores used to rank and
// surface knowledge content.
package trend

import (
	"sort"
	"time"

	"github.com/Sam231221/dkn-governance/internal/domain"
)

// Window selects the time horizon for access scoring.
type Window string

// Supported windows.
const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// Window durations.
const (
	todayDuration = 24 * time.Hour
	weekDuration  = 7 * 24 * time.Hour
	monthDuration = 30 * 24 * time.Hour
)

// Scoring weights.
const (
	viewWeight      = 2.0
	likeWeight      = 1.5
	recencyBoostMax = 50.0
	updateBoost     = 30.0
	validatedBonus  = 20.0
	repositoryBonus = 10.0
	// updateBoostDivisor: the update boost applies while the item was
	// updated within the most recent third of the window.
	updateBoostDivisor = 3
)

// ParseWindow maps a string to a Window, defaulting to WindowAll.
func ParseWindow(s string) Window {
	switch Window(s) {
	case WindowToday, WindowWeek, WindowMonth, WindowAll:
		return Window(s)
	}
	return WindowAll
}

// Duration returns the window's duration; bounded is false for WindowAll.
func (w Window) Duration() (d time.Duration, bounded bool) {
	switch w {
	case WindowToday:
		return todayDuration, true
	case WindowWeek:
		return weekDuration, true
	case WindowMonth:
		return monthDuration, true
	default:
		return 0, false
	}
}

// Score is the pair of scores computed per item and window.
type Score struct {
	AccessScore   float64 `json:"access_score"`
	TrendingScore float64 `json:"trending_score"`
}

// ScoreItem computes an item's access and trending scores at time now.
// Items created outside the window score zero. Pure and cheap; consumers
// recompute per render rather than caching.
//
// Under WindowAll the recency boost is zero and the update boost falls
// back to the month sub-window: an unbounded window has no meaningful
// "recent third", so the month duration stands in as a fixed constant.
// This mirrors the established ranking behavior; whether the fallback is
// intended product behavior is an open question, so it is preserved
// rather than changed.
func ScoreItem(item *domain.ContentItem, w Window, now time.Time) Score {
	windowDuration, bounded := w.Duration()
	age := now.Sub(item.CreatedAt)

	if bounded && age > windowDuration {
		return Score{}
	}

	access := float64(item.Views)*viewWeight + float64(item.Likes)*likeWeight

	if bounded {
		if remaining := windowDuration - age; remaining > 0 {
			access += recencyBoostMax * (float64(remaining) / float64(windowDuration))
		}
	}

	updateWindow := windowDuration
	if !bounded {
		updateWindow = monthDuration
	}
	if now.Sub(item.UpdatedAt) < updateWindow/updateBoostDivisor {
		access += updateBoost
	}

	trending := access
	if item.ValidatedBy != "" {
		trending += validatedBonus
	}
	if item.RepositoryID != "" {
		trending += repositoryBonus
	}

	return Score{AccessScore: access, TrendingScore: trending}
}

// Ranked pairs an item with its computed score for leaderboard output.
type Ranked struct {
	Item  *domain.ContentItem `json:"item"`
	Score Score               `json:"score"`
}

// Rank orders items by access score descending for a leaderboard.
// Zero-score items are excluded entirely, not ranked last. Ties break by
// CreatedAt descending so newer content surfaces first.
func Rank(items []*domain.ContentItem, w Window, now time.Time) []Ranked {
	ranked := make([]Ranked, 0, len(items))
	for _, item := range items {
		score := ScoreItem(item, w, now)
		if score.AccessScore == 0 {
			continue
		}
		ranked = append(ranked, Ranked{Item: item, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score.AccessScore != ranked[j].Score.AccessScore {
			return ranked[i].Score.AccessScore > ranked[j].Score.AccessScore
		}
		return ranked[i].Item.CreatedAt.After(ranked[j].Item.CreatedAt)
	})

	return ranked
}
