package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/inkwell/internal/formatter"
	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/session"
	"github.com/desertthunder/inkwell/internal/shared"
	"github.com/desertthunder/inkwell/internal/tasks"
	"github.com/urfave/cli/v3"
)

// requireAuth resolves the session before an authenticated command runs.
// A restored session the backend no longer accepts is reported as expired
// and its file dropped, so the next failure reads "not authenticated".
func (r *Runner) requireAuth(ctx context.Context) error {
	if r.session.CheckAuth(ctx) != session.Authenticated {
		if msg := r.session.LastError(); msg != "" {
			return fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)
		}
		if r.restored {
			r.clearSession()
			return fmt.Errorf("%w: sign in again with 'inkwell auth signin'", shared.ErrSessionExpired)
		}
		return fmt.Errorf("%w: sign in with 'inkwell auth signin'", shared.ErrNotAuthenticated)
	}
	return nil
}

func bookIDArg(cmd *cli.Command) (int, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: book id %q is not a number", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// BooksList fetches and prints the book collection. With --cached it reads
// the local mirror instead of the network.
func (r *Runner) BooksList(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("cached") {
		return r.CacheList(ctx, cmd)
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	if result := r.books.FetchAll(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}

	books := r.books.Books()
	switch cmd.String("status") {
	case "ready":
		books = r.books.Ready()
	case "pending":
		books = r.books.Pending()
	}

	if cmd.Bool("json") {
		return r.writeJSON(books, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Books (%d)", len(books)))
	for _, book := range books {
		marker := " "
		if book.CanDownload {
			marker = "*"
		}
		r.writePlain("%s [%d] %s (%s, %dp) %s\n", marker, book.ID, book.Title, book.Domain, book.PageLength, book.Status)
	}
	return nil
}

// BooksShow fetches and prints one book with its covers.
func (r *Runner) BooksShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	id, err := bookIDArg(cmd)
	if err != nil {
		return err
	}

	book, result := r.books.FetchOne(ctx, id)
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrBookNotFound, result.Error)
	}

	if cmd.Bool("json") {
		return r.writeJSON(book, cmd.Bool("pretty"))
	}

	r.writePlainHeader(book.Title)
	r.writePlain("Status: %s\n", book.Status)
	r.writePlain("Domain: %s / %s\n", book.Domain, book.SubNiche)
	r.writePlain("Pages: %d\n", book.PageLength)
	r.writePlain("Downloadable: %v\n", book.CanDownload)
	if book.ErrorMessage != nil {
		r.writePlain("Error: %s\n", *book.ErrorMessage)
	}
	if len(book.Covers) > 0 {
		r.writePlainln("Covers:")
		for _, cover := range book.Covers {
			selected := ""
			if cover.IsSelected {
				selected = " (selected)"
			}
			r.writePlain("  [%d] %s%s\n", cover.ID, cover.TemplateStyle, selected)
		}
	}
	return nil
}

// BooksCreate submits a new generation job.
func (r *Runner) BooksCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	input := models.BookCreate{
		Domain:     cmd.String("domain"),
		SubNiche:   cmd.String("sub-niche"),
		PageLength: int(cmd.Int("pages")),
	}
	if input.Domain == "" || input.SubNiche == "" {
		return fmt.Errorf("%w: --domain and --sub-niche are required", shared.ErrMissingArgument)
	}

	book, result := r.books.Create(ctx, input)
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, result.Error)
	}

	r.writePlain("✓ Book %d created: %s\n", book.ID, book.Title)
	r.writePlain("Track it with: inkwell books watch %d\n", book.ID)
	return nil
}

// BooksOptions prints the creation catalog.
func (r *Runner) BooksOptions(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	catalog, result := r.books.Catalog(ctx)
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}

	if cmd.Bool("json") {
		return r.writeJSON(catalog, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Book options")
	for _, domain := range catalog.Domains {
		r.writePlain("%s (%s)\n", domain.Label, domain.Value)
		for _, niche := range catalog.SubNiches[domain.Value] {
			r.writePlain("  - %s (%s)\n", niche.Label, niche.Value)
		}
	}
	r.writePlain("Page lengths: %v\n", catalog.PageLengths)
	return nil
}

// BooksDelete removes a book.
func (r *Runner) BooksDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	id, err := bookIDArg(cmd)
	if err != nil {
		return err
	}

	if result := r.books.Delete(ctx, id); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}
	return r.writePlain("✓ Book %d deleted\n", id)
}

// BooksSelectCover commits a cover choice.
func (r *Runner) BooksSelectCover(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	id, err := bookIDArg(cmd)
	if err != nil {
		return err
	}
	coverID := int(cmd.Int("cover"))
	if coverID == 0 {
		return fmt.Errorf("%w: --cover is required", shared.ErrMissingArgument)
	}

	book, result := r.books.SelectCover(ctx, id, coverID)
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrCoverNotFound, result.Error)
	}

	r.writePlain("✓ Cover selected for %s\n", book.Title)
	r.writePlain("Status: %s\n", book.Status)
	return nil
}

// BooksDownload saves one finished book as a PDF.
func (r *Runner) BooksDownload(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	id, err := bookIDArg(cmd)
	if err != nil {
		return err
	}

	data, result := r.books.Download(ctx, id)
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}

	output := cmd.String("output")
	if output == "" {
		output = fmt.Sprintf("book_%d.pdf", id)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return r.writePlain("✓ Saved %s (%d bytes)\n", output, len(data))
}

// BooksWatch polls a generation job until it settles, printing every
// transition.
func (r *Runner) BooksWatch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	id, err := bookIDArg(cmd)
	if err != nil {
		return err
	}

	opts := tasks.WatchOpts{
		RateLimit: cmd.Float("rate"),
		Timeout:   time.Duration(cmd.Int("timeout")) * time.Minute,
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	var result *tasks.WatchResult
	var watchErr error
	go func() {
		result, watchErr = r.engine.Watch(ctx, progress, id, opts)
		close(progress)
		close(done)
	}()

	for update := range progress {
		if update.Phase == tasks.Poll {
			continue
		}
		r.writePlain("%s\n", update.Message)
	}
	<-done

	if watchErr != nil {
		return watchErr
	}

	r.writePlain("Settled after %d polls in %s\n", result.Polls, result.Elapsed.Round(time.Second))
	if result.Book.Status == models.StatusReady {
		r.writePlain("Download it with: inkwell books download %d\n", id)
	}
	return nil
}

// BooksDownloadAll bulk-downloads every finished book.
func (r *Runner) BooksDownloadAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	if result := r.books.FetchAll(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}
	ready := r.books.Ready()
	if len(ready) == 0 {
		return r.writePlain("No downloadable books\n")
	}

	opts := tasks.BulkDownloadOpts{
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	var result *tasks.BulkDownloadResult
	var dlErr error
	go func() {
		result, dlErr = r.engine.BulkDownload(ctx, progress, ready, opts)
		close(progress)
		close(done)
	}()

	for update := range progress {
		if update.Phase == tasks.DownloadBook {
			r.writePlain("%s\n", update.Message)
		}
	}
	<-done

	if dlErr != nil {
		return dlErr
	}

	r.writePlainln("Downloaded %d/%d books to %s", result.SuccessfulDownloads, result.TotalBooks, result.OutputDirectory)
	return nil
}

// BooksExport writes the collection to CSV, Markdown or plain text.
func (r *Runner) BooksExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	if result := r.books.FetchAll(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}
	books := r.books.Books()
	output := cmd.String("output")

	switch cmd.String("format") {
	case "csv":
		result, err := formatter.WriteCSVExport(books, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %s and %s\n", result.BooksFile, result.MetadataFile)
	case "markdown", "md":
		file, err := formatter.WriteMarkdownExport(books, output, "")
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %s\n", file)
	case "txt", "text":
		file, err := formatter.WriteTextExport(books, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %s\n", file)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, cmd.String("format"))
	}
}
