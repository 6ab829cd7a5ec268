// Package storage provides the Elasticsearch-backed candidate prefilter
// index. It narrows the corpus to likely near-duplicates before exact
// scoring, which is the required path once the corpus outgrows full
// pairwise scanning.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/similarity"
)

// maxCandidates bounds how many prefiltered documents are exact-scored.
const maxCandidates = 200

// CorpusIndex maintains the similarity prefilter index in Elasticsearch.
type CorpusIndex struct {
	client *es.Client
	index  string
}

// NewCorpusIndex creates an index handle for the given index name.
func NewCorpusIndex(client *es.Client, index string) *CorpusIndex {
	return &CorpusIndex{client: client, index: index}
}

// indexedItem is the document shape stored in the prefilter index.
type indexedItem struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Status    domain.ItemStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// IndexItem upserts an item's normalized text into the prefilter index.
func (c *CorpusIndex) IndexItem(ctx context.Context, id, normalizedText string, status domain.ItemStatus, createdAt time.Time) error {
	doc := indexedItem{ID: id, Text: normalizedText, Status: status, CreatedAt: createdAt}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal index document: %w", err)
	}

	res, err := c.client.Index(
		c.index,
		bytes.NewReader(docBytes),
		c.client.Index.WithContext(ctx),
		c.client.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("index item %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index item %s: %s", id, res.String())
	}
	return nil
}

// DeleteItem removes an item from the prefilter index.
func (c *CorpusIndex) DeleteItem(ctx context.Context, id string) error {
	res, err := c.client.Delete(
		c.index,
		id,
		c.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	defer res.Body.Close()

	// 404 is fine: the item was never indexed or already removed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete item %s: %s", id, res.String())
	}
	return nil
}

// Candidates implements similarity.CandidateFinder using a more_like_this
// query, so only textually related documents reach exact scoring.
func (c *CorpusIndex) Candidates(ctx context.Context, normalizedText string) ([]similarity.CorpusDoc, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"more_like_this": map[string]any{
						"fields":          []string{"text"},
						"like":            normalizedText,
						"min_term_freq":   1,
						"min_doc_freq":    1,
						"max_query_terms": 50,
					},
				},
				"must_not": map[string]any{
					"term": map[string]any{
						"status": domain.StatusDraft,
					},
				},
			},
		},
		"size": maxCandidates,
	}

	queryBytes, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates query: %w", err)
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(c.index),
		c.client.Search.WithBody(bytes.NewReader(queryBytes)),
	)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search candidates: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				ID     string      `json:"_id"`
				Source indexedItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("decode candidates response: %w", err)
	}

	docs := make([]similarity.CorpusDoc, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		doc := hit.Source
		if doc.ID == "" {
			doc.ID = hit.ID
		}
		docs = append(docs, similarity.CorpusDoc{
			ID:        doc.ID,
			Text:      doc.Text,
			Status:    doc.Status,
			CreatedAt: doc.CreatedAt,
		})
	}
	return docs, nil
}

// NewClient creates an Elasticsearch client for the given URL.
func NewClient(url string) (*es.Client, error) {
	client, err := es.NewClient(es.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}
