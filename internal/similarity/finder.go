package similarity

import (
	"context"
	"time"

	"github.com/Sam231221/dkn-governance/internal/domain"
)

// CorpusDoc is one comparable item from the corpus. Text must already be
// normalized (textnorm.Normalize over title and body).
type CorpusDoc struct {
	ID        string
	Text      string
	Status    domain.ItemStatus
	CreatedAt time.Time
}

// CandidateFinder narrows the corpus to candidate documents worth exact
// scoring. The full-scan finder returns everything; index-backed finders
// (shingling, minhash, an Elasticsearch more_like_this query) prefilter
// so that exact pairwise scoring stays bounded as the corpus grows. A
// corpus beyond roughly 10^4 items requires an index-backed finder; the
// full scan is O(corpus) per candidate and is only acceptable below that.
type CandidateFinder interface {
	// Candidates returns corpus documents to score against the normalized
	// candidate text. Implementations must exclude draft items.
	Candidates(ctx context.Context, normalizedText string) ([]CorpusDoc, error)
}

// CorpusLister supplies a point-in-time snapshot of the non-draft corpus.
// Implemented by the database layer and by in-memory test stores.
type CorpusLister interface {
	ListNonDraft(ctx context.Context) ([]CorpusDoc, error)
}

// FullScanFinder returns the entire non-draft corpus snapshot as
// candidates. Default finder for small corpora.
type FullScanFinder struct {
	lister CorpusLister
}

// NewFullScanFinder creates a finder over the given corpus snapshot source.
func NewFullScanFinder(lister CorpusLister) *FullScanFinder {
	return &FullScanFinder{lister: lister}
}

// Candidates returns every non-draft corpus document.
func (f *FullScanFinder) Candidates(ctx context.Context, _ string) ([]CorpusDoc, error) {
	docs, err := f.lister.ListNonDraft(ctx)
	if err != nil {
		return nil, err
	}
	filtered := docs[:0]
	for _, doc := range docs {
		if doc.Status == domain.StatusDraft {
			continue
		}
		filtered = append(filtered, doc)
	}
	return filtered, nil
}
