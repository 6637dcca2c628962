package pipeline

import (
	"tooldex/pkg/db"
	"tooldex/pkg/scrape"
	"tooldex/pkg/urls"

	"go.uber.org/zap"
)

// FileListPipelineBuilder builds a pipeline that reads source URLs from a
// local file
// Pipeline: file path → [File List Fetcher] → [Product Consumer]
func FileListPipelineBuilder(store *db.LandingStore, registry *scrape.Registry, fetcherWorkers, scrapeWorkers int, logger *zap.Logger, filters ...urls.UrlFilter) *Pipeline {
	step := PipelineStep{
		Name:        "File List Fetcher",
		WorkerCount: fetcherWorkers,
		Fetcher:     NewFileListFetcher(filters...),
	}

	consumer := ProductConsumer{
		WorkerCount: scrapeWorkers,
		Processor:   NewScrapeProcessor(registry),
		Saver:       NewLandingSaver(store),
	}

	return NewPipeline([]PipelineStep{step}, consumer, logger)
}

// SitemapPipelineBuilder builds a pipeline that discovers product pages from
// a vendor sitemap
// Pipeline: sitemap URL → [Sitemap Fetcher] → [Product Consumer]
func SitemapPipelineBuilder(store *db.LandingStore, registry *scrape.Registry, fetcherWorkers, scrapeWorkers int, logger *zap.Logger, filters ...urls.UrlFilter) *Pipeline {
	step := PipelineStep{
		Name:        "Sitemap Fetcher",
		WorkerCount: fetcherWorkers,
		Fetcher:     NewBasicURLFetcherWithFilters(urls.NewSitemapFetcher(), filters),
	}

	consumer := ProductConsumer{
		WorkerCount: scrapeWorkers,
		Processor:   NewScrapeProcessor(registry),
		Saver:       NewLandingSaver(store),
	}

	return NewPipeline([]PipelineStep{step}, consumer, logger)
}

// DirectoryPipelineBuilder builds a pipeline for paginated directory listings
// Pipeline: [Page Range Generator] → [Store Link Fetcher] → [Product Consumer]
func DirectoryPipelineBuilder(store *db.LandingStore, registry *scrape.Registry, baseURL, pagePattern string, linkWorkers, scrapeWorkers int, logger *zap.Logger, filters ...urls.UrlFilter) *Pipeline {
	step1 := PipelineStep{
		Name:        "Page Range Generator",
		WorkerCount: 1,
		Generator:   NewPageRangeGenerator(baseURL, pagePattern, logger),
	}

	step2 := PipelineStep{
		Name:        "Store Link Fetcher",
		WorkerCount: linkWorkers,
		Fetcher:     NewStoreLinkFetcher(filters...),
	}

	consumer := ProductConsumer{
		WorkerCount: scrapeWorkers,
		Processor:   NewScrapeProcessor(registry),
		Saver:       NewLandingSaver(store),
	}

	return NewPipeline([]PipelineStep{step1, step2}, consumer, logger)
}

// MultiLevelPipelineBuilder builds a custom pipeline with explicit steps
func MultiLevelPipelineBuilder(steps []PipelineStep, consumer ProductConsumer, logger *zap.Logger) *Pipeline {
	return NewPipeline(steps, consumer, logger)
}
