package bootstrap

import (
	"github.com/Sam231221/dkn-governance/internal/config"
	"github.com/Sam231221/dkn-governance/internal/logger"
	"github.com/Sam231221/dkn-governance/internal/similarity"
	"github.com/Sam231221/dkn-governance/internal/storage"
)

// SetupCandidateFinder picks the similarity candidate source: the
// Elasticsearch more_like_this prefilter when configured, otherwise a
// full corpus scan. The full scan is correct but O(corpus) per
// submission, so larger deployments should enable the index.
func SetupCandidateFinder(cfg *config.Config, lister similarity.CorpusLister, log logger.Logger) similarity.CandidateFinder {
	if !cfg.Elasticsearch.Enabled {
		log.Info("similarity prefilter disabled, using full corpus scan")
		return similarity.NewFullScanFinder(lister)
	}

	client, err := storage.NewClient(cfg.Elasticsearch.URL)
	if err != nil {
		log.Warn("elasticsearch unavailable, falling back to full corpus scan",
			logger.String("url", cfg.Elasticsearch.URL),
			logger.Error(err),
		)
		return similarity.NewFullScanFinder(lister)
	}

	log.Info("similarity prefilter enabled",
		logger.String("url", cfg.Elasticsearch.URL),
		logger.String("index", cfg.Elasticsearch.Index),
	)
	return storage.NewCorpusIndex(client, cfg.Elasticsearch.Index)
}
