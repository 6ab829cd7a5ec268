package similarity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Sam231221/dkn-governance/internal/domain"
)

type staticFinder struct {
	docs []CorpusDoc
	err  error
}

func (f *staticFinder) Candidates(context.Context, string) ([]CorpusDoc, error) {
	return f.docs, f.err
}

func newTestEngine(docs []CorpusDoc) *Engine {
	return NewEngine(&staticFinder{docs: docs}, Config{}, nil, nil)
}

func TestFindSimilar_EmptyTextIsInsufficient(t *testing.T) {
	engine := newTestEngine([]CorpusDoc{
		{ID: "a", Text: "some corpus text", Status: domain.StatusApproved},
	})

	result, err := engine.FindSimilar(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Insufficient {
		t.Error("expected insufficient result for empty text")
	}
	if len(result.Matches) != 0 || len(result.Duplicates) != 0 {
		t.Error("insufficient result must carry no matches")
	}
}

func TestFindSimilar_ExactDuplicate(t *testing.T) {
	text := "how to rotate tls certificates on the edge gateway"
	engine := newTestEngine([]CorpusDoc{
		{ID: "existing", Text: text, Status: domain.StatusApproved, CreatedAt: time.Now()},
	})

	result, err := engine.FindSimilar(context.Background(), text, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Duplicates) != 1 || result.Duplicates[0] != "existing" {
		t.Fatalf("expected existing flagged as duplicate, got %v", result.Duplicates)
	}
	if result.Matches[0].Score != 1 {
		t.Errorf("expected score 1 for identical text, got %v", result.Matches[0].Score)
	}
}

func TestFindSimilar_ExcludesSelf(t *testing.T) {
	text := "incident response runbook for the payments cluster"
	engine := newTestEngine([]CorpusDoc{
		{ID: "self", Text: text, Status: domain.StatusPendingReview},
	})

	result, err := engine.FindSimilar(context.Background(), text, "self")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Compared != 0 {
		t.Errorf("expected self excluded from comparison, compared=%d", result.Compared)
	}
	if len(result.Duplicates) != 0 {
		t.Errorf("item must not be its own duplicate, got %v", result.Duplicates)
	}
}

func TestFindSimilar_ThresholdBoundaryCounts(t *testing.T) {
	// Construct a doc pair whose score lands exactly on the duplicate
	// threshold: "aaa" vs "aaaa" scores 0.8.
	engine := NewEngine(&staticFinder{docs: []CorpusDoc{
		{ID: "boundary", Text: "aaaa", Status: domain.StatusApproved},
	}}, Config{DuplicateThreshold: 0.8, WarnThreshold: 0.5}, nil, nil)

	result, err := engine.FindSimilar(context.Background(), "aaa", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Duplicates) != 1 {
		t.Errorf("score equal to the threshold must count as duplicate, got %v", result.Duplicates)
	}
}

func TestFindSimilar_WarnOnlyMatchIsNotDuplicate(t *testing.T) {
	engine := NewEngine(&staticFinder{docs: []CorpusDoc{
		{ID: "warnish", Text: "aaaa", Status: domain.StatusApproved},
	}}, Config{DuplicateThreshold: 0.9, WarnThreshold: 0.5}, nil, nil)

	result, err := engine.FindSimilar(context.Background(), "aaa", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != 1 {
		t.Fatalf("expected one advisory match, got %d", len(result.Matches))
	}
	if len(result.Duplicates) != 0 {
		t.Errorf("warn-level match must not block, got %v", result.Duplicates)
	}
}

func TestFindSimilar_TopMatchesTruncation(t *testing.T) {
	text := "standard operating procedure for database failover"
	docs := make([]CorpusDoc, 15)
	for i := range docs {
		docs[i] = CorpusDoc{
			ID:        fmt.Sprintf("doc-%02d", i),
			Text:      text,
			Status:    domain.StatusApproved,
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		}
	}
	engine := newTestEngine(docs)

	result, err := engine.FindSimilar(context.Background(), text, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != DefaultTopMatches {
		t.Errorf("expected matches truncated to %d, got %d", DefaultTopMatches, len(result.Matches))
	}
	// The advisory list is capped; the blocking set is not. Every doc
	// over the duplicate threshold blocks, truncated or not.
	if len(result.Duplicates) != 15 {
		t.Errorf("expected all 15 docs in the blocking set, got %d", len(result.Duplicates))
	}
	if result.Compared != 15 {
		t.Errorf("expected all 15 docs compared, got %d", result.Compared)
	}
	// Truncation keeps the newest on a full tie.
	if result.Matches[0].ID != "doc-00" {
		t.Errorf("expected newest doc first, got %s", result.Matches[0].ID)
	}
}

func TestFindSimilar_TieBreakNewestFirst(t *testing.T) {
	text := "quarterly access review checklist"
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	engine := newTestEngine([]CorpusDoc{
		{ID: "old", Text: text, Status: domain.StatusApproved, CreatedAt: old},
		{ID: "recent", Text: text, Status: domain.StatusApproved, CreatedAt: recent},
	})

	result, err := engine.FindSimilar(context.Background(), text, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matches[0].ID != "recent" || result.Matches[1].ID != "old" {
		t.Errorf("expected tie broken newest first, got %s then %s", result.Matches[0].ID, result.Matches[1].ID)
	}
}

func TestFindSimilar_FinderErrorPropagates(t *testing.T) {
	wantErr := errors.New("snapshot failed")
	engine := NewEngine(&staticFinder{err: wantErr}, Config{}, nil, nil)

	_, err := engine.FindSimilar(context.Background(), "some text", "")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected finder error to propagate, got %v", err)
	}
}

func TestFullScanFinder_SkipsDrafts(t *testing.T) {
	lister := &staticLister{docs: []CorpusDoc{
		{ID: "draft", Text: "draft text", Status: domain.StatusDraft},
		{ID: "live", Text: "live text", Status: domain.StatusApproved},
	}}
	finder := NewFullScanFinder(lister)

	docs, err := finder.Candidates(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "live" {
		t.Errorf("expected drafts excluded, got %+v", docs)
	}
}

type staticLister struct {
	docs []CorpusDoc
}

func (l *staticLister) ListNonDraft(context.Context) ([]CorpusDoc, error) {
	return l.docs, nil
}
