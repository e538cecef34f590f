package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/repositories"
	"github.com/desertthunder/inkwell/internal/shared"
	"github.com/urfave/cli/v3"
)

// openCacheDB opens the local cache database from the runner's config,
// applying pool settings and any pending migrations.
func (r *Runner) openCacheDB() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CacheSync mirrors the remote book collection into the local database so
// listings keep working offline.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	if result := r.books.FetchAll(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}
	books := r.books.Books()

	db, err := r.openCacheDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewBookRepository(db)
	if err := repo.Sync(books); err != nil {
		return fmt.Errorf("cache sync failed: %w", err)
	}

	return r.writePlain("✓ Synced %d books to %s\n", len(books), r.config.Database.Path)
}

// CacheList prints the locally cached books without touching the network.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openCacheDB()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = models.BookStatus(status)
	}

	repo := repositories.NewBookRepository(db)
	cached, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		remote := make([]models.Book, 0, len(cached))
		for _, c := range cached {
			remote = append(remote, c.Remote())
		}
		return r.writeJSON(remote, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Cached books (%d)", len(cached)))
	for _, c := range cached {
		marker := " "
		if c.CanDownload() {
			marker = "*"
		}
		r.writePlain("%s [%d] %s (%s, %dp) %s\n", marker, c.RemoteID(), c.Title(), c.Domain(), c.PageLength(), c.Status())
	}
	return nil
}
