// package tasks implements long-running client operations over the book API.
//
// The core abstraction is WatchEngine, which polls generation jobs to
// completion and bulk-downloads finished books. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/shared"
	"golang.org/x/time/rate"
)

// BookFetcher fetches the current server state of one book.
// This abstraction decouples the engine from the concrete store for testing.
type BookFetcher interface {
	FetchOne(ctx context.Context, id int) (*models.Book, models.Result)
}

// Downloader retrieves the finished artifact of one book.
type Downloader interface {
	Download(ctx context.Context, id int) ([]byte, models.Result)
}

// WatchResult contains the outcome of watching one generation job.
type WatchResult struct {
	Book        *models.Book        // Final server state
	Transitions []models.BookStatus // Statuses observed, in order
	Polls       int                 // Number of status fetches issued
	Elapsed     time.Duration       // Wall time from first poll to settlement
}

// WatchOpts configures generation watching.
type WatchOpts struct {
	RateLimit float64       // Polls per second (default: 0.5)
	Timeout   time.Duration // Give up after this long (default: 30m)
}

// WatchEngine polls generation jobs and downloads finished books.
type WatchEngine struct {
	books      BookFetcher
	downloader Downloader
}

// NewWatchEngine creates a WatchEngine over the given fetcher and downloader.
func NewWatchEngine(books BookFetcher, downloader Downloader) *WatchEngine {
	return &WatchEngine{books: books, downloader: downloader}
}

// Watch polls a book until its status is terminal, emitting an update for
// every observed transition. Polling is rate limited so an impatient caller
// cannot hammer the backend.
func (e *WatchEngine) Watch(ctx context.Context, progress chan<- ProgressUpdate, id int, opts WatchOpts) (*WatchResult, error) {
	if e.books == nil {
		return nil, fmt.Errorf("%w: book fetcher not initialized", shared.ErrServiceUnavailable)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 0.5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	start := time.Now()
	result := &WatchResult{}
	var last models.BookStatus

	for {
		if err := limiter.Wait(ctx); err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return result, fmt.Errorf("%w: book %d did not settle within %s", shared.ErrTimeout, id, opts.Timeout)
			}
			return result, err
		}

		book, res := e.books.FetchOne(ctx, id)
		result.Polls++
		if !res.Success {
			return result, fmt.Errorf("%w: %s", shared.ErrAPIRequest, res.Error)
		}

		if book.Status != last {
			last = book.Status
			result.Transitions = append(result.Transitions, book.Status)
			e.sendProgress(progress, transitionUpdate(result.Polls, book))
		} else {
			e.sendProgress(progress, pollUpdate(result.Polls, book))
		}

		if book.Status.Terminal() {
			result.Book = book
			result.Elapsed = time.Since(start)
			e.sendProgress(progress, settledUpdate(result.Polls, book))
			return result, nil
		}
	}
}

func (e *WatchEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
