package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/internal/types"
	"github.com/xhad/shopsearch/pkg/processor"
	"golang.org/x/time/rate"
)

// TableReader loads a record file.
type TableReader interface {
	Read(ctx context.Context, source string) (*models.Table, error)
}

type IngestorConfig struct {
	BatchSize int
	// Pacing is waited before every batch, including the first.
	Pacing time.Duration
	// RateLimit caps embedding requests per second. Zero disables it.
	RateLimit  float64
	OnProgress func(done, total int)
	Logger     *slog.Logger
}

// Ingestor replaces a domain collection with the embedded contents of
// one record file.
type Ingestor struct {
	config    IngestorConfig
	store     types.CollectionStore
	embedder  types.Embedder
	reader    TableReader
	processor processor.Processor
	limiter   *rate.Limiter
	sleep     func(context.Context, time.Duration) error
}

func NewWithConfig(config IngestorConfig, store types.CollectionStore, embedder types.Embedder, reader TableReader) *Ingestor {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &Ingestor{
		config:    config,
		store:     store,
		embedder:  embedder,
		reader:    reader,
		processor: processor.NewWithConfig(processor.ProcessorConfig{Logger: config.Logger}),
		limiter:   limiter,
		sleep:     sleepContext,
	}
}

// Import reads source, summarizes its rows and ingests them.
func (in *Ingestor) Import(ctx context.Context, domain models.Domain, source string) (*Report, error) {
	table, err := in.reader.Read(ctx, source)
	if err != nil {
		return nil, err
	}

	res := in.processor.Process(domain, table)
	report, err := in.Ingest(ctx, domain, source, res.Summaries)
	if report != nil {
		report.Total += len(res.Errors)
		report.Malformed = len(res.Errors)
		report.Discovery = res.Discovery
		for _, e := range res.Errors {
			report.Errors = append(report.Errors, e)
		}
	}
	return report, err
}

// Ingest drops the domain collection and writes summaries in paced batches.
// Only a failure to open the collection aborts the run; every other failure
// is recorded in the report.
func (in *Ingestor) Ingest(ctx context.Context, domain models.Domain, source string, summaries []models.Summary) (*Report, error) {
	log := in.config.Logger.With("domain", domain, "source", source)
	name := domain.Collection()
	report := &Report{
		RunID:      uuid.NewString(),
		Domain:     domain,
		Collection: name,
		Source:     source,
		Total:      len(summaries),
	}

	if err := in.store.DeleteCollection(ctx, name); err != nil {
		log.Warn("failed to delete collection", "collection", name, "error", err)
		report.Errors = append(report.Errors, &CollectionError{Collection: name, Err: err})
	}

	collection, err := in.store.GetOrCreateCollection(ctx, name)
	if err != nil {
		return report, fmt.Errorf("open collection %s: %w", name, err)
	}

	size := in.config.BatchSize
	for start, batch := 0, 0; start < len(summaries); start, batch = start+size, batch+1 {
		if err := in.sleep(ctx, in.config.Pacing); err != nil {
			return report, err
		}

		end := min(start+size, len(summaries))
		result := in.runBatch(ctx, collection, source, batch, start, summaries[start:end], report)
		report.Batches = append(report.Batches, result)
		report.Written += result.Written

		log.Info("batch processed", "batch", batch+1, "written", result.Written, "failed", result.Failed())
		if in.config.OnProgress != nil {
			in.config.OnProgress(end, len(summaries))
		}
	}

	log.Info("import finished", "run", report.RunID, "written", report.Written, "total", report.Total)
	return report, nil
}

func (in *Ingestor) runBatch(ctx context.Context, collection types.Collection, source string, batch, start int, items []models.Summary, report *Report) BatchResult {
	result := BatchResult{Index: batch, Start: start, Size: len(items)}

	embeddings := make([][]float32, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			embeddings[i], errs[i] = in.embed(ctx, items[i].Text)
		}(i)
	}
	wg.Wait()

	entries := make([]models.Entry, 0, len(items))
	for i, item := range items {
		index := start + i
		if errs[i] != nil {
			in.config.Logger.Warn("embedding failed", "source", source, "item", index, "error", errs[i])
			report.Errors = append(report.Errors, &ItemError{Index: index, Err: errs[i]})
			continue
		}
		meta := item.Metadata
		meta.Source = source
		entries = append(entries, models.Entry{
			ID:        fmt.Sprintf("%s-%d", source, index),
			Embedding: embeddings[i],
			Metadata:  meta,
			Document:  item.Text,
		})
	}
	result.Embedded = len(entries)

	if len(entries) == 0 {
		return result
	}

	if err := collection.Add(ctx, entries); err != nil {
		in.config.Logger.Error("batch write failed", "source", source, "batch", batch+1, "error", err)
		result.Err = err
		report.Errors = append(report.Errors, &BatchError{Batch: batch, Start: start, Err: err})
		return result
	}
	result.Written = len(entries)
	return result
}

func (in *Ingestor) embed(ctx context.Context, text string) ([]float32, error) {
	if in.limiter != nil {
		if err := in.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	vec, err := in.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, models.ErrEmptyEmbedding
	}
	return vec, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
