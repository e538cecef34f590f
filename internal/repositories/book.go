package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/shared"
)

// BookRepository implements models.Repository[*models.CachedBook] for the
// local book mirror.
//
// Rows are keyed by a local UUID but deduplicated on the backend's book id
// via a UNIQUE constraint on remote_id.
type BookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new BookRepository with the given database connection
func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new [models.CachedBook] with generated ID and sequence
func (r *BookRepository) Create(book *models.CachedBook) error {
	sequence, err := NextSequence(r.db, "books")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	book.SetID(id)
	book.SetSequence(sequence)

	if err := book.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO books (id, sequence, remote_id, title, domain, sub_niche, page_length, status, can_download, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		book.RemoteID(),
		book.Title(),
		book.Domain(),
		book.SubNiche(),
		book.PageLength(),
		string(book.Status()),
		book.CanDownload(),
		book.ErrorMessage(),
		book.CreatedAt(),
		book.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

// Get retrieves a cached book by local ID, excluding soft-deleted rows
func (r *BookRepository) Get(id string) (*models.CachedBook, error) {
	query := `
		SELECT id, sequence, remote_id, title, domain, sub_niche, page_length, status, can_download, error_message, created_at, updated_at, deleted_at
		FROM books
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByRemoteID retrieves a cached book by the backend's book id
func (r *BookRepository) GetByRemoteID(remoteID int) (*models.CachedBook, error) {
	query := `
		SELECT id, sequence, remote_id, title, domain, sub_niche, page_length, status, can_download, error_message, created_at, updated_at, deleted_at
		FROM books
		WHERE remote_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, remoteID))
}

// Update modifies an existing cached book
func (r *BookRepository) Update(book *models.CachedBook) error {
	if err := book.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	book.SetUpdatedAt(now)

	query := `
		UPDATE books
		SET title = ?, domain = ?, sub_niche = ?, page_length = ?, status = ?, can_download = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		book.Title(),
		book.Domain(),
		book.SubNiche(),
		book.PageLength(),
		string(book.Status()),
		book.CanDownload(),
		book.ErrorMessage(),
		now,
		book.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("book not found or already deleted: %s", book.ID())
	}

	return nil
}

// Delete soft-deletes a cached book by local ID
func (r *BookRepository) Delete(id string) error {
	now := time.Now().UTC()

	query := `
		UPDATE books
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("book not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves cached books matching the given criteria, excluding soft-deleted rows
func (r *BookRepository) List(criteria map[string]any) ([]*models.CachedBook, error) {
	query := `
		SELECT id, sequence, remote_id, title, domain, sub_niche, page_length, status, can_download, error_message, created_at, updated_at, deleted_at
		FROM books
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if status, ok := criteria["status"].(models.BookStatus); ok && status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}

	if domain, ok := criteria["domain"].(string); ok && domain != "" {
		query += " AND domain = ?"
		args = append(args, domain)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []*models.CachedBook
	for rows.Next() {
		book, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return books, nil
}

// Sync mirrors a fresh server listing into the cache: known books are
// updated in place, unseen ones inserted, and rows the server no longer
// returns are soft-deleted.
func (r *BookRepository) Sync(books []models.Book) error {
	seen := make(map[int]bool, len(books))

	for _, book := range books {
		seen[book.ID] = true

		existing, err := r.GetByRemoteID(book.ID)
		if err == nil && existing != nil {
			existing.ApplyRemote(book)
			if err := r.Update(existing); err != nil {
				return fmt.Errorf("failed to refresh cached book %d: %w", book.ID, err)
			}
			continue
		}

		if err := r.Create(models.NewCachedBook(0, book)); err != nil {
			return fmt.Errorf("failed to cache book %d: %w", book.ID, err)
		}
	}

	cached, err := r.List(nil)
	if err != nil {
		return err
	}
	for _, row := range cached {
		if !seen[row.RemoteID()] {
			if err := r.Delete(row.ID()); err != nil {
				return fmt.Errorf("failed to evict cached book %d: %w", row.RemoteID(), err)
			}
		}
	}

	return nil
}

// scanOne scans a single [sql.Row] into a [models.CachedBook]
func (r *BookRepository) scanOne(row *sql.Row) (*models.CachedBook, error) {
	var (
		id           string
		sequence     int
		remoteID     int
		title        string
		domain       string
		subNiche     string
		pageLength   int
		status       string
		canDownload  bool
		errorMessage string
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &remoteID, &title, &domain, &subNiche, &pageLength, &status, &canDownload, &errorMessage, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}

	return rebuild(id, sequence, remoteID, title, domain, subNiche, pageLength, status, canDownload, errorMessage, createdAt, updatedAt, deletedAt), nil
}

// scanRow scans a row from [sql.Rows] into a [models.CachedBook]
func (r *BookRepository) scanRow(rows *sql.Rows) (*models.CachedBook, error) {
	var (
		id           string
		sequence     int
		remoteID     int
		title        string
		domain       string
		subNiche     string
		pageLength   int
		status       string
		canDownload  bool
		errorMessage string
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &remoteID, &title, &domain, &subNiche, &pageLength, &status, &canDownload, &errorMessage, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}

	return rebuild(id, sequence, remoteID, title, domain, subNiche, pageLength, status, canDownload, errorMessage, createdAt, updatedAt, deletedAt), nil
}

func rebuild(id string, sequence, remoteID int, title, domain, subNiche string, pageLength int, status string, canDownload bool, errorMessage string, createdAt, updatedAt time.Time, deletedAt sql.NullTime) *models.CachedBook {
	var msg *string
	if errorMessage != "" {
		msg = &errorMessage
	}

	book := models.NewCachedBook(sequence, models.Book{
		ID:           remoteID,
		Title:        title,
		Domain:       domain,
		SubNiche:     subNiche,
		PageLength:   pageLength,
		Status:       models.BookStatus(status),
		CanDownload:  canDownload,
		ErrorMessage: msg,
	})
	book.SetID(id)
	book.SetCreatedAt(createdAt)
	book.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		book.SetDeletedAt(&deletedAt.Time)
	}

	return book
}
