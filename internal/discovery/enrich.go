package discovery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brandradar/server/internal/logger"
	"github.com/brandradar/server/internal/models"
)

const (
	defaultEnrichWorkers = 8
	defaultDetailTimeout = 8 * time.Second
)

// detailFetcher is satisfied by *Client; tests substitute a fake.
type detailFetcher interface {
	FetchAdDetail(ctx context.Context, externalID string) (*AdDetail, error)
}

// Enricher fetches per-ad media details with a fixed-size worker pool.
// A failed or timed-out detail fetch degrades that one ad to its stub
// form; it never fails the batch.
type Enricher struct {
	client  detailFetcher
	workers int
	timeout time.Duration
}

// NewEnricher builds an Enricher over the discovery client. Zero
// values pick the defaults (8 workers, 8s per-call timeout).
func NewEnricher(client *Client, workers int, timeout time.Duration) *Enricher {
	if workers <= 0 {
		workers = defaultEnrichWorkers
	}
	if timeout <= 0 {
		timeout = defaultDetailTimeout
	}
	return &Enricher{
		client:  client,
		workers: workers,
		timeout: timeout,
	}
}

type enrichJob struct {
	Index int
	Stub  AdStub
}

type enrichResult struct {
	Index  int
	Record models.AdRecord
}

// EnrichStats counts outcomes of one Enrich call.
type EnrichStats struct {
	Total    int32
	Enriched int32
	Degraded int32
}

// Enrich resolves media details for every stub. The output slice has
// the same length and ordering as the input even though fetches run
// concurrently; slot i always corresponds to stubs[i]. Cancelling ctx
// stops new fetches but the partial work done so far is kept.
func (e *Enricher) Enrich(ctx context.Context, stubs []AdStub) []models.AdRecord {
	log := logger.GetLogger("discovery.enrich")

	out := make([]models.AdRecord, len(stubs))
	if len(stubs) == 0 {
		return out
	}

	stats := &EnrichStats{Total: int32(len(stubs))}

	workers := e.workers
	if workers > len(stubs) {
		workers = len(stubs)
	}

	jobs := make(chan enrichJob, len(stubs))
	results := make(chan enrichResult, len(stubs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go e.enrichWorker(ctx, jobs, results, &wg, stats)
	}

	for i, stub := range stubs {
		jobs <- enrichJob{Index: i, Stub: stub}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		out[result.Index] = result.Record
	}

	log.Infof("[Enrich] Total:%d, Enriched:%d, Degraded:%d",
		stats.Total, stats.Enriched, stats.Degraded)

	return out
}

func (e *Enricher) enrichWorker(ctx context.Context, jobs <-chan enrichJob, results chan<- enrichResult, wg *sync.WaitGroup, stats *EnrichStats) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			// Caller gave up: hand back the stub untouched so the
			// work already completed still reaches the response.
			atomic.AddInt32(&stats.Degraded, 1)
			results <- enrichResult{Index: job.Index, Record: job.Stub.Record()}
			continue
		default:
		}

		results <- enrichResult{Index: job.Index, Record: e.enrichOne(ctx, job.Stub, stats)}
	}
}

// enrichOne fetches one detail record and merges it over the stub.
func (e *Enricher) enrichOne(ctx context.Context, stub AdStub, stats *EnrichStats) models.AdRecord {
	log := logger.GetLogger("discovery.enrich")

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	detail, err := e.client.FetchAdDetail(callCtx, stub.ExternalID)
	if err != nil {
		atomic.AddInt32(&stats.Degraded, 1)
		log.Warnf("Detail fetch failed for %s, keeping stub fields: %v", stub.ExternalID, err)
		return stub.Record()
	}

	record := stub.Record()
	if detail.ThumbnailURL != "" {
		record.ThumbnailURL = detail.ThumbnailURL
	}
	if video := detail.FirstVideoURL(); video != "" {
		record.VideoURL = &video
	}

	atomic.AddInt32(&stats.Enriched, 1)
	return record
}
