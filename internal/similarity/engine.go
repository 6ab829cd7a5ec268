// Package similarity scores candidate submissions against the corpus to
// detect near-duplicate knowledge items.
package similarity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Sam231221/dkn-governance/internal/logger"
	"github.com/Sam231221/dkn-governance/internal/telemetry"
)

// Default thresholds. Ties at exactly a threshold count as meeting it.
const (
	DefaultDuplicateThreshold = 0.70
	DefaultWarnThreshold      = 0.50
	DefaultTopMatches         = 10
)

// Config tunes the engine thresholds.
type Config struct {
	DuplicateThreshold float64
	WarnThreshold      float64
	TopMatches         int
}

// Match is one scored corpus comparison.
type Match struct {
	ID        string    `json:"id"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Result holds the ranked outcome of a corpus scan.
type Result struct {
	// Matches is the advisory list: top-N by score, all at or above the
	// warn threshold, ties broken by newest corpus item first.
	Matches []Match `json:"matches"`
	// Duplicates is the blocking set: IDs whose score met the duplicate
	// threshold.
	Duplicates []string `json:"duplicates"`
	// Insufficient is set when the candidate normalizes to an empty
	// string. Empty text participates in no duplicate classification.
	Insufficient bool `json:"insufficient"`
	// Compared is the number of corpus documents exact-scored.
	Compared int `json:"compared"`
}

// Engine performs exact pairwise similarity scoring over candidates
// supplied by a CandidateFinder.
type Engine struct {
	cfg       Config
	finder    CandidateFinder
	logger    logger.Logger
	telemetry *telemetry.Provider
}

// NewEngine creates an engine. Zero config fields fall back to defaults.
func NewEngine(finder CandidateFinder, cfg Config, log logger.Logger, tp *telemetry.Provider) *Engine {
	if cfg.DuplicateThreshold == 0 {
		cfg.DuplicateThreshold = DefaultDuplicateThreshold
	}
	if cfg.WarnThreshold == 0 {
		cfg.WarnThreshold = DefaultWarnThreshold
	}
	if cfg.TopMatches == 0 {
		cfg.TopMatches = DefaultTopMatches
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{cfg: cfg, finder: finder, logger: log, telemetry: tp}
}

// FindSimilar scores normalizedText against every candidate the finder
// supplies, excluding excludeID and draft items. The scan is read-only
// over the corpus snapshot; concurrent scans are safe.
func (e *Engine) FindSimilar(ctx context.Context, normalizedText, excludeID string) (*Result, error) {
	start := time.Now()

	if normalizedText == "" {
		// Two empty items are not duplicates of each other; there is
		// nothing to compare.
		return &Result{Insufficient: true}, nil
	}

	docs, err := e.finder.Candidates(ctx, normalizedText)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	candidateBigrams := bigramCounts(normalizedText)

	matches := make([]Match, 0, len(docs))
	compared := 0
	for _, doc := range docs {
		if doc.ID == excludeID || doc.Text == "" {
			continue
		}
		compared++
		score := scoreAgainst(normalizedText, candidateBigrams, doc.Text)
		if score >= e.cfg.WarnThreshold {
			matches = append(matches, Match{ID: doc.ID, Score: score, CreatedAt: doc.CreatedAt})
		}
	}

	// Score descending; ties surface the newest corpus item first since
	// it is the likelier canonical version for a reviewer to compare.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	// The blocking set spans every match at or above the duplicate
	// threshold; only the advisory match list is capped.
	var duplicates []string
	for _, m := range matches {
		if m.Score >= e.cfg.DuplicateThreshold {
			duplicates = append(duplicates, m.ID)
		}
	}

	if len(matches) > e.cfg.TopMatches {
		matches = matches[:e.cfg.TopMatches]
	}

	duration := time.Since(start)
	if e.telemetry != nil {
		e.telemetry.RecordSimilarityScan(ctx, duration, compared, len(duplicates))
	}

	e.logger.Debug("similarity scan complete",
		logger.Int("compared", compared),
		logger.Int("matches", len(matches)),
		logger.Int("duplicates", len(duplicates)),
		logger.Duration("duration", duration),
	)

	return &Result{
		Matches:    matches,
		Duplicates: duplicates,
		Compared:   compared,
	}, nil
}

// scoreAgainst computes the Dice score, reusing the candidate's
// precomputed bigram multiset.
func scoreAgainst(candidateText string, candidateBigrams map[[2]rune]int, docText string) float64 {
	if candidateText == docText {
		return 1
	}
	return diceFromCounts(candidateBigrams, bigramCounts(docText))
}

// DuplicateThreshold exposes the configured blocking threshold.
func (e *Engine) DuplicateThreshold() float64 { return e.cfg.DuplicateThreshold }

// WarnThreshold exposes the configured advisory threshold.
func (e *Engine) WarnThreshold() float64 { return e.cfg.WarnThreshold }
