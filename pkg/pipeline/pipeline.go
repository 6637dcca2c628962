package pipeline

import (
	"context"
	"fmt"
	"sync"

	"tooldex/pkg/domain"

	"go.uber.org/zap"
)

// URLGenerator generates initial URLs (used for the first step only)
// Example: PageRangeGenerator generates paginated directory page URLs
type URLGenerator interface {
	// Generate generates URLs based on internal configuration
	Generate(ctx context.Context) ([]string, error)
}

// URLFetcher extracts URLs from a given URL (used for subsequent steps)
// Examples: file-list fetchers, HTML store-link fetchers
type URLFetcher interface {
	// Fetch extracts URLs from the given URL
	// For base URL fetchers this is called once with the base URL
	// For intermediate fetchers this is called for each URL from the previous step
	// Filters are applied internally by the fetcher implementation
	Fetch(ctx context.Context, url string) ([]string, error)
}

// ProductProcessor turns a product source URL into a scraped product
type ProductProcessor interface {
	ProcessProduct(ctx context.Context, url string) (*domain.ScrapedProduct, error)
}

// ProductSaver persists a scraped product to a storage backend
type ProductSaver interface {
	SaveScrapedProduct(ctx context.Context, product *domain.ScrapedProduct) error
}

// PipelineStep represents a step in the pipeline that extracts URLs
// First step can use either URLGenerator or URLFetcher (with baseURL)
// Subsequent steps use URLFetcher
type PipelineStep struct {
	Name        string
	WorkerCount int
	Generator   URLGenerator // Used for first step (optional)
	Fetcher     URLFetcher   // Used for all steps (required if Generator is nil)
}

// ProductConsumer is the final step that scrapes products and saves them
type ProductConsumer struct {
	WorkerCount int
	Processor   ProductProcessor
	Saver       ProductSaver
}

// Pipeline orchestrates multiple URL extraction steps and a final product consumer
type Pipeline struct {
	steps    []PipelineStep
	consumer ProductConsumer
	logger   *zap.Logger
}

// NewPipeline creates a new pipeline with the given steps and product consumer
func NewPipeline(steps []PipelineStep, consumer ProductConsumer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		steps:    steps,
		consumer: consumer,
		logger:   logger,
	}
}

// Run executes the pipeline:
// 1. First step: uses Generator (if set) or Fetcher with baseURL
// 2. Each subsequent step extracts URLs and passes them to the next step
// 3. Final step passes URLs to the product consumer
// 4. Product consumer scrapes each URL and saves the result
func (p *Pipeline) Run(ctx context.Context, baseURL string) error {
	if len(p.steps) == 0 {
		return fmt.Errorf("pipeline has no steps")
	}

	channels, productChan := p.createChannels()
	var wg sync.WaitGroup

	p.startConsumer(ctx, productChan, &wg)
	p.startSubsequentSteps(ctx, channels, productChan, &wg)
	p.startFirstStep(ctx, baseURL, channels, productChan, &wg)

	wg.Wait()
	return nil
}

// createChannels creates channels for communication between pipeline steps
func (p *Pipeline) createChannels() ([]chan string, chan string) {
	channels := make([]chan string, len(p.steps))
	for i := range channels {
		bufferSize := p.steps[i].WorkerCount * 2
		if i == 0 {
			bufferSize = 100 // First channel needs more buffer
		}
		channels[i] = make(chan string, bufferSize)
	}

	productChan := make(chan string, p.consumer.WorkerCount*2)
	return channels, productChan
}

// startSubsequentSteps starts workers for all steps after the first
func (p *Pipeline) startSubsequentSteps(ctx context.Context, channels []chan string, productChan chan string, wg *sync.WaitGroup) {
	for i := 1; i < len(p.steps); i++ {
		inputChan := channels[i-1]
		outputChan := productChan
		if i != len(p.steps)-1 {
			outputChan = channels[i]
		}
		p.startStepWorkers(ctx, p.steps[i], inputChan, outputChan, wg)
	}
}

// startFirstStep runs the first step (Generator or Fetcher with baseURL)
// and feeds its URLs into the first channel
func (p *Pipeline) startFirstStep(ctx context.Context, baseURL string, channels []chan string, productChan chan string, wg *sync.WaitGroup) {
	outputChan := channels[0]
	if len(p.steps) == 1 {
		outputChan = productChan
	}
	step := p.steps[0]

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(outputChan)

		urls, err := p.generateOrFetchURLs(ctx, step, baseURL)
		if err != nil {
			return
		}

		p.logger.Info("first step produced URLs",
			zap.String("step", step.Name),
			zap.Int("count", len(urls)))

		p.sendURLs(ctx, step.Name, urls, outputChan)
	}()
}

// generateOrFetchURLs generates or fetches URLs for the first step
func (p *Pipeline) generateOrFetchURLs(ctx context.Context, step PipelineStep, baseURL string) ([]string, error) {
	if step.Generator != nil {
		urls, err := step.Generator.Generate(ctx)
		if err != nil {
			p.logger.Error("first step generator failed",
				zap.String("step", step.Name), zap.Error(err))
			return nil, err
		}
		return urls, nil
	}

	if step.Fetcher != nil {
		urls, err := step.Fetcher.Fetch(ctx, baseURL)
		if err != nil {
			p.logger.Error("first step fetcher failed",
				zap.String("step", step.Name),
				zap.String("url", baseURL), zap.Error(err))
			return nil, err
		}
		return urls, nil
	}

	p.logger.Error("first step has neither generator nor fetcher",
		zap.String("step", step.Name))
	return nil, fmt.Errorf("neither generator nor fetcher is set")
}

func (p *Pipeline) sendURLs(ctx context.Context, stepName string, urls []string, outputChan chan<- string) {
	for _, u := range urls {
		select {
		case outputChan <- u:
		case <-ctx.Done():
			p.logger.Warn("context cancelled while sending URLs",
				zap.String("step", stepName))
			return
		}
	}
}

// startStepWorkers starts workers for a pipeline step (subsequent steps)
func (p *Pipeline) startStepWorkers(ctx context.Context, step PipelineStep, inputChan <-chan string, outputChan chan<- string, wg *sync.WaitGroup) {
	if step.Fetcher == nil {
		p.logger.Error("step fetcher is not set", zap.String("step", step.Name))
		close(outputChan)
		return
	}

	var stepWg sync.WaitGroup

	for i := 0; i < step.WorkerCount; i++ {
		stepWg.Add(1)
		wg.Add(1)
		go func(workerID int) {
			defer stepWg.Done()
			defer wg.Done()

			for {
				select {
				case url, ok := <-inputChan:
					if !ok {
						return
					}
					p.processURLInStep(ctx, step, workerID, url, outputChan)

				case <-ctx.Done():
					return
				}
			}
		}(i)
	}

	go func() {
		stepWg.Wait()
		close(outputChan)
	}()
}

// processURLInStep fetches URLs from one input URL and forwards them
func (p *Pipeline) processURLInStep(ctx context.Context, step PipelineStep, workerID int, url string, outputChan chan<- string) {
	extracted, err := step.Fetcher.Fetch(ctx, url)
	if err != nil {
		p.logger.Warn("step fetch failed",
			zap.String("step", step.Name),
			zap.Int("worker", workerID),
			zap.String("url", url),
			zap.Error(err))
		return
	}

	p.logger.Debug("step extracted URLs",
		zap.String("step", step.Name),
		zap.Int("worker", workerID),
		zap.String("url", url),
		zap.Int("count", len(extracted)))

	p.sendURLs(ctx, step.Name, extracted, outputChan)
}

// startConsumer starts the product consumer workers
func (p *Pipeline) startConsumer(ctx context.Context, inputChan <-chan string, wg *sync.WaitGroup) {
	for i := 0; i < p.consumer.WorkerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for {
				select {
				case url, ok := <-inputChan:
					if !ok {
						return
					}

					if err := p.processProductURL(ctx, url); err != nil {
						p.logger.Warn("product processing failed",
							zap.Int("worker", workerID),
							zap.String("url", url),
							zap.Error(err))
					} else {
						p.logger.Info("product processed and saved",
							zap.Int("worker", workerID),
							zap.String("url", url))
					}

				case <-ctx.Done():
					return
				}
			}
		}(i)
	}
}

// processProductURL scrapes a URL with the processor and saves the result
func (p *Pipeline) processProductURL(ctx context.Context, url string) error {
	if p.consumer.Processor == nil {
		return fmt.Errorf("product processor is not set")
	}
	if p.consumer.Saver == nil {
		return fmt.Errorf("product saver is not set")
	}

	product, err := p.consumer.Processor.ProcessProduct(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to process product: %w", err)
	}

	if err := p.consumer.Saver.SaveScrapedProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}
