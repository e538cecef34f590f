package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/inkwell/internal/shared"
	"github.com/urfave/cli/v3"
)

// webOrigin derives the web app origin from the API base URL by stripping
// the /api suffix.
func (r *Runner) webOrigin() string {
	return strings.TrimSuffix(strings.TrimSuffix(r.client.BaseURL(), "/"), "/api")
}

// NavOpen resolves an app path through the navigation guard and opens the
// resulting page in the browser. Paths behind authentication redirect to
// the sign-in page when the session is anonymous, same as the web app.
func (r *Runner) NavOpen(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	decision := r.guard.Resolve(ctx, path)
	target := path
	if !decision.Allowed {
		target = decision.Redirect
		r.writePlain("Redirected to %s\n", target)
	}

	url := r.webOrigin() + target
	if err := shared.OpenBrowser(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return r.writePlain("✓ Opened %s\n", url)
}
