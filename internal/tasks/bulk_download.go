package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/shared"
	"golang.org/x/time/rate"
)

// BulkDownloadOpts contains configuration for bulk book downloads.
type BulkDownloadOpts struct {
	OutputDir  string  // Base output directory (default: books_{epoch})
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Requests per second (default: 2)
}

// BookDownloadJob is one unit of work for a download worker.
type BookDownloadJob struct {
	Book models.Book
}

// BookDownloadResult records the outcome of downloading one book.
type BookDownloadResult struct {
	BookID  int
	Title   string
	Path    string
	Success bool
	Error   error
}

// BulkDownloadResult summarizes a bulk download run.
type BulkDownloadResult struct {
	TotalBooks          int
	SuccessfulDownloads int
	FailedDownloads     int
	OutputDirectory     string
	Results             []BookDownloadResult
}

// BulkDownload fetches the PDFs of multiple finished books concurrently.
//
// A worker pool bounds concurrency and a shared limiter bounds request rate,
// so large libraries download without tripping the backend's throttling.
// Books that are not downloadable are reported as failures, not skipped
// silently.
func (e *WatchEngine) BulkDownload(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	books []models.Book,
	opts BulkDownloadOpts,
) (*BulkDownloadResult, error) {
	if e.downloader == nil {
		return nil, fmt.Errorf("%w: downloader not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("books_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkDownloadResult{
		TotalBooks:      len(books),
		OutputDirectory: opts.OutputDir,
		Results:         make([]BookDownloadResult, 0, len(books)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan BookDownloadJob, len(books))
	results := make(chan BookDownloadResult, len(books))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.downloadWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	go func() {
		for i, book := range books {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			e.sendProgress(progress, fetchBookUpdate(i+1, len(books), book.ID))

			if !book.CanDownload {
				results <- BookDownloadResult{
					BookID:  book.ID,
					Title:   book.Title,
					Success: false,
					Error:   fmt.Errorf("%w: %q is not ready", shared.ErrBookNotFound, book.Title),
				}
				continue
			}

			jobs <- BookDownloadJob{Book: book}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulDownloads++
			e.sendProgress(progress, downloadCompletedUpdate(completed, len(books), res.Title, res.Path))
		} else {
			result.FailedDownloads++
			e.sendProgress(progress, downloadFailedUpdate(completed, len(books), res.Title, res.Error))
		}
	}

	return result, nil
}

func (e *WatchEngine) downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan BookDownloadJob,
	results chan<- BookDownloadResult,
	opts BulkDownloadOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- BookDownloadResult{
				BookID:  job.Book.ID,
				Title:   job.Book.Title,
				Success: false,
				Error:   err,
			}
			continue
		}

		data, res := e.downloader.Download(ctx, job.Book.ID)
		if !res.Success {
			results <- BookDownloadResult{
				BookID:  job.Book.ID,
				Title:   job.Book.Title,
				Success: false,
				Error:   fmt.Errorf("%w: %s", shared.ErrAPIRequest, res.Error),
			}
			continue
		}

		path := filepath.Join(opts.OutputDir, bookFilename(job.Book))
		if err := os.WriteFile(path, data, 0644); err != nil {
			results <- BookDownloadResult{
				BookID:  job.Book.ID,
				Title:   job.Book.Title,
				Success: false,
				Error:   fmt.Errorf("failed to write file: %w", err),
			}
			continue
		}

		results <- BookDownloadResult{
			BookID:  job.Book.ID,
			Title:   job.Book.Title,
			Path:    path,
			Success: true,
		}
	}
}

// bookFilename derives a filesystem-safe name for a book's PDF.
func bookFilename(book models.Book) string {
	name := strings.ToLower(book.Title)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, name)
	name = strings.Trim(name, "_")
	if name == "" {
		name = fmt.Sprintf("book_%d", book.ID)
	}
	return name + ".pdf"
}
