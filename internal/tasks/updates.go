package tasks

import (
	"fmt"

	"github.com/desertthunder/inkwell/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unbounded
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Poll Phase = iota
	Transition
	Settled
	FetchBook
	DownloadBook
)

func (p Phase) String() string {
	switch p {
	case Poll:
		return "poll"
	case Transition:
		return "transition"
	case Settled:
		return "settled"
	case FetchBook:
		return "fetch_book"
	case DownloadBook:
		return "download_book"
	default:
		return ""
	}
}

func pollUpdate(step int, book *models.Book) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Poll,
		Step:    step,
		Message: fmt.Sprintf("Still %s: %s", book.Status, book.Title),
		Data:    book,
	}
}

func transitionUpdate(step int, book *models.Book) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Transition,
		Step:    step,
		Message: fmt.Sprintf("%s is now %s", book.Title, book.Status),
		Data:    book,
	}
}

func settledUpdate(step int, book *models.Book) ProgressUpdate {
	message := fmt.Sprintf("✓ %s is ready", book.Title)
	if book.Status == models.StatusError {
		message = fmt.Sprintf("✗ %s failed", book.Title)
		if book.ErrorMessage != nil {
			message = fmt.Sprintf("✗ %s failed: %s", book.Title, *book.ErrorMessage)
		}
	}
	return ProgressUpdate{
		Phase:   Settled,
		Step:    step,
		Message: message,
		Data:    book,
	}
}

func fetchBookUpdate(step, total int, id int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching book %d...", step, total, id),
	}
}

func downloadCompletedUpdate(step, total int, title, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, title, path),
	}
}

func downloadFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
