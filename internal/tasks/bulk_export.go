package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/melodycompare/mcx/internal/formatter"
	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/services"
	"github.com/melodycompare/mcx/internal/shared"
)

// ExportEngine writes saved analyses to disk as markdown bundles.
type ExportEngine struct {
	api     services.Backend
	library libraryLister
}

// libraryLister is the slice of the library repository the engine needs.
type libraryLister interface {
	List() ([]models.LibraryItem, error)
}

// NewExportEngine creates an engine over the given backend and library.
func NewExportEngine(api services.Backend, library libraryLister) *ExportEngine {
	return &ExportEngine{api: api, library: library}
}

// BulkExportOpts contains configuration for bulk library exports.
type BulkExportOpts struct {
	OutputDir    string  // Base output directory (default: melodycompare_export_{epoch})
	NumWorkers   int     // Concurrent workers (default: 5)
	RateLimit    float64 // Audio fetches per second (default: 5)
	IncludeAudio bool    // Fetch and bundle stored audio
}

// ItemExportResult records the outcome for a single analysis.
type ItemExportResult struct {
	ItemID    string `json:"item_id"`
	SongTitle string `json:"song_title"`
	Directory string `json:"directory,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalItems      int                `json:"total_items"`
	SuccessCount    int                `json:"success_count"`
	FailedCount     int                `json:"failed_count"`
	OutputDirectory string             `json:"output_directory"`
	Results         []ItemExportResult `json:"results"`
}

// BulkExport exports the whole library concurrently with rate limiting and progress tracking.
//
// A worker pool writes one markdown bundle per analysis. Audio fetches are
// rate limited against the backend; partial failures are recorded in the
// manifest rather than aborting the run.
func (e *ExportEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("melodycompare_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	items, err := e.library.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	e.sendProgress(prog, listLibraryUpdate(len(items)))

	result := &BulkExportResult{
		TotalItems:      len(items),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ItemExportResult, 0, len(items)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan models.LibraryItem, len(items))
	results := make(chan ItemExportResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, limiter, opts)
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	step := 0
	for res := range results {
		step++
		result.Results = append(result.Results, res)
		if res.Success {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
		e.sendProgress(prog, exportUpdate(step, len(items), res.SongTitle))
	}

	if err := e.writeManifest(result); err != nil {
		return result, err
	}
	return result, nil
}

func (e *ExportEngine) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan models.LibraryItem, results chan<- ItemExportResult, limiter *rate.Limiter, opts BulkExportOpts) {
	defer wg.Done()

	for item := range jobs {
		select {
		case <-ctx.Done():
			results <- ItemExportResult{
				ItemID:    item.ID,
				SongTitle: item.SongTitle,
				Error:     ctx.Err().Error(),
			}
			continue
		default:
		}

		var audio []byte
		if opts.IncludeAudio {
			if err := limiter.Wait(ctx); err == nil {
				if fetched, err := e.api.Audio(ctx, item.ID); err == nil {
					audio = fetched
				}
			}
		}

		dir := filepath.Join(opts.OutputDir, item.ID)
		export, err := formatter.WriteMarkdownExport(&item, "", dir, audio)
		if err != nil {
			results <- ItemExportResult{
				ItemID:    item.ID,
				SongTitle: item.SongTitle,
				Error:     err.Error(),
			}
			continue
		}

		results <- ItemExportResult{
			ItemID:    item.ID,
			SongTitle: item.SongTitle,
			Directory: export.Directory,
			Success:   true,
		}
	}
}

// sendProgress delivers an update without blocking a slow consumer.
func (e *ExportEngine) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}

func (e *ExportEngine) writeManifest(result *BulkExportResult) error {
	manifest, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(result.OutputDirectory, "manifest.json")
	if err := os.WriteFile(path, manifest, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
