package models

import (
	"fmt"
	"time"
)

// CachedBook is a locally persisted copy of a server [Book], used for offline
// listing. The server stays authoritative: cache rows are upserted on fetch
// and soft-deleted when the server no longer knows the book.
type CachedBook struct {
	id           string
	sequence     int
	remoteID     int
	title        string
	domain       string
	subNiche     string
	pageLength   int
	status       BookStatus
	canDownload  bool
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

var _ Model = (*CachedBook)(nil)

// NewCachedBook creates a cache entity from a server book.
//
// The local ID is assigned by the repository on insert.
func NewCachedBook(sequence int, book Book) *CachedBook {
	now := time.Now().UTC()
	c := &CachedBook{
		sequence:  sequence,
		createdAt: now,
		updatedAt: now,
	}
	c.ApplyRemote(book)
	return c
}

// ApplyRemote overwrites the cached fields from a freshly fetched server book.
func (c *CachedBook) ApplyRemote(book Book) {
	c.remoteID = book.ID
	c.title = book.Title
	c.domain = book.Domain
	c.subNiche = book.SubNiche
	c.pageLength = book.PageLength
	c.status = book.Status
	c.canDownload = book.CanDownload
	if book.ErrorMessage != nil {
		c.errorMessage = *book.ErrorMessage
	} else {
		c.errorMessage = ""
	}
}

func (c *CachedBook) ID() string            { return c.id }
func (c *CachedBook) Sequence() int         { return c.sequence }
func (c *CachedBook) RemoteID() int         { return c.remoteID }
func (c *CachedBook) Title() string         { return c.title }
func (c *CachedBook) Domain() string        { return c.domain }
func (c *CachedBook) SubNiche() string      { return c.subNiche }
func (c *CachedBook) PageLength() int       { return c.pageLength }
func (c *CachedBook) Status() BookStatus    { return c.status }
func (c *CachedBook) CanDownload() bool     { return c.canDownload }
func (c *CachedBook) ErrorMessage() string  { return c.errorMessage }
func (c *CachedBook) CreatedAt() time.Time  { return c.createdAt }
func (c *CachedBook) UpdatedAt() time.Time  { return c.updatedAt }
func (c *CachedBook) DeletedAt() *time.Time { return c.deletedAt }

func (c *CachedBook) SetID(id string)              { c.id = id }
func (c *CachedBook) SetSequence(n int)            { c.sequence = n }
func (c *CachedBook) SetCreatedAt(t time.Time)     { c.createdAt = t }
func (c *CachedBook) SetUpdatedAt(t time.Time)     { c.updatedAt = t }
func (c *CachedBook) SetDeletedAt(t *time.Time)    { c.deletedAt = t }
func (c *CachedBook) SetStatus(s BookStatus)       { c.status = s }
func (c *CachedBook) SetCanDownload(v bool)        { c.canDownload = v }
func (c *CachedBook) SetErrorMessage(message string) { c.errorMessage = message }

// Validate checks that the cached entity carries a plausible server book.
func (c *CachedBook) Validate() error {
	if c.remoteID <= 0 {
		return fmt.Errorf("cached book missing remote id")
	}
	if c.title == "" {
		return fmt.Errorf("cached book missing title")
	}
	if !c.status.Valid() {
		return fmt.Errorf("cached book has unknown status %q", c.status)
	}
	return nil
}

// Remote reconstructs the server-shaped [Book] from the cached fields.
//
// Timestamps are formatted in RFC 3339; fields the cache does not keep
// (covers, download URL) are zero.
func (c *CachedBook) Remote() Book {
	book := Book{
		ID:          c.remoteID,
		Title:       c.title,
		Domain:      c.domain,
		SubNiche:    c.subNiche,
		PageLength:  c.pageLength,
		Status:      c.status,
		CanDownload: c.canDownload,
		CreatedAt:   c.createdAt.Format(time.RFC3339),
		UpdatedAt:   c.updatedAt.Format(time.RFC3339),
	}
	if c.errorMessage != "" {
		msg := c.errorMessage
		book.ErrorMessage = &msg
	}
	return book
}
