// Client-side resource state for the book backend.
//
// Each store owns one slice of remote state (the book collection, the
// billing state) and is its only writer. Reads hand out snapshots, so
// callers never observe a fetch mid-flight.
package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/inkwell/internal/api"
	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/shared"
)

// BooksStore caches the user's book collection and the creation catalog.
type BooksStore struct {
	client *api.Client
	logger *log.Logger

	mu        sync.Mutex
	books     []models.Book
	catalog   *models.Catalog
	loading   bool
	lastError string
	// fetchSeq orders collection fetches. A response only lands when no
	// newer fetch has been issued since it started, so a slow early reply
	// can never clobber a fresher one.
	fetchSeq uint64
}

// NewBooksStore creates a book store around the given API client.
func NewBooksStore(client *api.Client, logger *log.Logger) *BooksStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &BooksStore{
		client: client,
		logger: shared.WithLogger(logger, "store", "books"),
	}
}

// Books returns a snapshot of the collection, newest first.
func (s *BooksStore) Books() []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Book, len(s.books))
	copy(out, s.books)
	return out
}

// Get returns the cached book with the given id.
func (s *BooksStore) Get(id int) (models.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, book := range s.books {
		if book.ID == id {
			return book, true
		}
	}
	return models.Book{}, false
}

// Ready returns the books whose generation has finished.
func (s *BooksStore) Ready() []models.Book {
	return s.filter(func(b models.Book) bool { return b.Status == models.StatusReady })
}

// Pending returns the books still being generated.
func (s *BooksStore) Pending() []models.Book {
	return s.filter(func(b models.Book) bool { return b.Status.Pending() })
}

func (s *BooksStore) filter(keep func(models.Book) bool) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Book
	for _, book := range s.books {
		if keep(book) {
			out = append(out, book)
		}
	}
	return out
}

// Loading reports whether a collection fetch is in flight.
func (s *BooksStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the message of the most recent failed operation.
func (s *BooksStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Catalog returns the cached creation catalog, fetching it on first use.
func (s *BooksStore) Catalog(ctx context.Context) (*models.Catalog, models.Result) {
	s.mu.Lock()
	if s.catalog != nil {
		catalog := *s.catalog
		s.mu.Unlock()
		return &catalog, models.OK()
	}
	s.mu.Unlock()

	var catalog models.Catalog
	if err := s.client.GetJSON(ctx, "/books/config/", &catalog); err != nil {
		return nil, s.fail("Failed to load book options", err)
	}

	s.mu.Lock()
	s.catalog = &catalog
	s.mu.Unlock()
	return &catalog, models.OK()
}

// FetchAll replaces the collection with the backend's current listing.
// When fetches overlap, only the most recently issued one lands.
func (s *BooksStore) FetchAll(ctx context.Context) models.Result {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	s.mu.Unlock()

	var books []models.Book
	err := s.client.GetJSON(ctx, "/books/", &books)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.fetchSeq {
		// A newer fetch was issued while this one was in flight;
		// its outcome supersedes ours.
		return models.OK()
	}
	s.loading = false
	if err != nil {
		s.lastError = api.MessageOr(err, "Failed to load books")
		s.logger.Warnf("book listing failed: %v", err)
		return models.Fail(s.lastError)
	}
	s.books = books
	s.lastError = ""
	return models.OK()
}

// FetchOne refreshes a single book and reconciles it into the collection.
// A not-found response leaves the collection untouched.
func (s *BooksStore) FetchOne(ctx context.Context, id int) (*models.Book, models.Result) {
	var book models.Book
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/books/%d/", id), &book); err != nil {
		if api.IsKind(err, api.KindNotFound) {
			return nil, models.Fail(api.MessageOr(err, "Book not found"))
		}
		return nil, s.fail("Failed to load book", err)
	}

	s.mu.Lock()
	s.reconcile(book)
	s.mu.Unlock()
	return &book, models.OK()
}

// Create submits a new book and prepends the returned draft to the
// collection.
func (s *BooksStore) Create(ctx context.Context, input models.BookCreate) (*models.Book, models.Result) {
	var book models.Book
	if err := s.client.PostJSON(ctx, "/books/", input, &book); err != nil {
		return nil, s.fail("Failed to create book", err)
	}

	s.mu.Lock()
	s.books = append([]models.Book{book}, s.books...)
	s.mu.Unlock()

	s.logger.Infof("created book %d: %s", book.ID, book.Title)
	return &book, models.OK()
}

// Delete removes a book on the backend and drops it from the collection.
func (s *BooksStore) Delete(ctx context.Context, id int) models.Result {
	if _, err := s.client.Delete(ctx, fmt.Sprintf("/books/%d/", id)); err != nil {
		return s.fail("Failed to delete book", err)
	}

	s.mu.Lock()
	for i, book := range s.books {
		if book.ID == id {
			s.books = append(s.books[:i], s.books[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return models.OK()
}

// SelectCover commits a cover choice and reconciles the updated book.
func (s *BooksStore) SelectCover(ctx context.Context, id, coverID int) (*models.Book, models.Result) {
	var book models.Book
	err := s.client.PostJSON(ctx, fmt.Sprintf("/books/%d/select-cover/", id), models.CoverSelect{CoverID: coverID}, &book)
	if err != nil {
		return nil, s.fail("Failed to select cover", err)
	}

	s.mu.Lock()
	s.reconcile(book)
	s.mu.Unlock()
	return &book, models.OK()
}

// Download retrieves the finished PDF. Only books in the ready state are
// downloadable; generation jobs can run for minutes, so the transfer uses
// the client's long timeout.
func (s *BooksStore) Download(ctx context.Context, id int) ([]byte, models.Result) {
	if book, ok := s.Get(id); ok && !book.CanDownload {
		return nil, models.Fail(fmt.Sprintf("%q is not ready for download", book.Title))
	}

	data, err := s.client.Download(ctx, fmt.Sprintf("/books/%d/download/", id))
	if err != nil {
		return nil, s.fail("Failed to download book", err)
	}
	return data, models.OK()
}

// reconcile replaces the cached copy of book in place, or prepends it when
// the collection has not seen it yet. Caller holds the lock.
func (s *BooksStore) reconcile(book models.Book) {
	for i := range s.books {
		if s.books[i].ID == book.ID {
			s.books[i] = book
			return
		}
	}
	s.books = append([]models.Book{book}, s.books...)
}

func (s *BooksStore) fail(fallback string, err error) models.Result {
	message := api.MessageOr(err, fallback)
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
	s.logger.Warnf("%s: %v", fallback, err)
	return models.Fail(message)
}
