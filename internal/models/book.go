package models

// BookStatus enumerates the generation lifecycle of a book.
//
// The happy path is draft → generating → content_generated → cover_pending → ready.
// StatusError is absorbing: reachable from any non-terminal state, never left.
type BookStatus string

const (
	StatusDraft            BookStatus = "draft"
	StatusGenerating       BookStatus = "generating"
	StatusContentGenerated BookStatus = "content_generated"
	StatusCoverPending     BookStatus = "cover_pending"
	StatusReady            BookStatus = "ready"
	StatusError            BookStatus = "error"
)

// Terminal reports whether no further transitions are possible from s.
func (s BookStatus) Terminal() bool {
	return s == StatusReady || s == StatusError
}

// Pending reports whether the book is still being worked on by the backend.
func (s BookStatus) Pending() bool {
	switch s {
	case StatusGenerating, StatusContentGenerated, StatusCoverPending:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s BookStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusGenerating, StatusContentGenerated, StatusCoverPending, StatusReady, StatusError:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle permits moving from s to next.
func (s BookStatus) CanTransition(next BookStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusError {
		return true
	}
	switch s {
	case StatusDraft:
		return next == StatusGenerating
	case StatusGenerating:
		return next == StatusContentGenerated
	case StatusContentGenerated:
		return next == StatusCoverPending
	case StatusCoverPending:
		return next == StatusReady
	}
	return false
}

// CoverStyle enumerates the cover template styles offered by the backend.
type CoverStyle string

const (
	CoverModern  CoverStyle = "modern"
	CoverBold    CoverStyle = "bold"
	CoverElegant CoverStyle = "elegant"
)

// Cover represents one rendered cover candidate for a book.
type Cover struct {
	ID            int        `json:"id"`
	TemplateStyle CoverStyle `json:"template_style"`
	ImagePath     string     `json:"image_path"`
	ImageURL      string     `json:"image_url"`
	IsSelected    bool       `json:"is_selected"`
	CreatedAt     string     `json:"created_at"`
}

// Book represents a generated book as returned by the books endpoints.
//
// The server copy is authoritative; local instances are cache entries replaced
// on re-fetch, never mutated in place.
type Book struct {
	ID                 int        `json:"id"`
	Title              string     `json:"title"`
	Domain             string     `json:"domain"`
	SubNiche           string     `json:"sub_niche"`
	PageLength         int        `json:"page_length"`
	Status             BookStatus `json:"status"`
	CreatedAt          string     `json:"created_at"`
	UpdatedAt          string     `json:"updated_at"`
	ContentGeneratedAt *string    `json:"content_generated_at"`
	CompletedAt        *string    `json:"completed_at"`
	Covers             []Cover    `json:"covers"`
	SelectedCover      *Cover     `json:"selected_cover"`
	CanDownload        bool       `json:"can_download"`
	DownloadURL        *string    `json:"download_url"`
	ErrorMessage       *string    `json:"error_message"`
	UserUsername       string     `json:"user_username,omitempty"`
}

// BookCreate carries a book creation request.
type BookCreate struct {
	Domain     string `json:"domain"`
	SubNiche   string `json:"sub_niche"`
	PageLength int    `json:"page_length"`
}

// CoverSelect carries a cover selection request.
type CoverSelect struct {
	CoverID int `json:"cover_id"`
}

// Option is a value/label pair from the creation catalog.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Catalog is the creation catalog: valid domains, sub-niches per domain,
// and offered page lengths.
type Catalog struct {
	Domains     []Option            `json:"domains"`
	SubNiches   map[string][]Option `json:"sub_niches"`
	PageLengths []int               `json:"page_lengths"`
}
