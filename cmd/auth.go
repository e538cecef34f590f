package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/session"
	"github.com/desertthunder/inkwell/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthSignUp registers a new account. Registration does not sign the user
// in; a separate signin follows.
func (r *Runner) AuthSignUp(ctx context.Context, cmd *cli.Command) error {
	reg := models.Registration{
		Username:  cmd.String("username"),
		Email:     cmd.String("email"),
		Password:  cmd.String("password"),
		Password2: cmd.String("confirm"),
	}
	if reg.Password2 == "" {
		reg.Password2 = reg.Password
	}
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return fmt.Errorf("%w: --username, --email and --password are required", shared.ErrMissingArgument)
	}

	r.logger.Infof("registering account %s", reg.Username)

	result := r.session.SignUp(ctx, reg)
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, result.Error)
	}

	r.writePlain("✓ Account created\n")
	return r.writePlain("Sign in with: inkwell auth signin --username %s\n", reg.Username)
}

// AuthSignIn authenticates with username and password and reports the
// confirmed identity.
func (r *Runner) AuthSignIn(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
	}
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("%w: --username and --password are required", shared.ErrMissingCredentials)
	}

	result := r.session.SignIn(ctx, creds)
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, result.Error)
	}
	r.saveSession()

	user := r.session.Identity()
	return r.writePlain("✓ Signed in as %s\n", user.Username)
}

// AuthSignOut ends the session. The local session is cleared even when the
// backend cannot be reached.
func (r *Runner) AuthSignOut(ctx context.Context, cmd *cli.Command) error {
	r.session.SignOut(ctx)
	r.clearSession()
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami checks the session against the backend and prints the identity.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	state := r.session.CheckAuth(ctx)

	if state != session.Authenticated {
		if msg := r.session.LastError(); msg != "" {
			return fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)
		}
		return r.writePlain("✗ Not signed in\n")
	}

	user := r.session.Identity()
	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("Username: %s\n", user.Username)
	if user.Email != "" {
		r.writePlain("Email: %s\n", user.Email)
	}
	return nil
}

// AuthImport adopts a browser session from a copied cURL command, so the CLI
// can reuse a session established in the web app.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	r.logger.Info("parsing cURL command for session cookies")

	var browser *shared.BrowserSession
	var err error

	if curlFile != "" {
		browser, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		browser, err = shared.ParseCurlCommand([]byte(curlCmd))
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	if err := r.client.ImportCookies(browser.Cookies); err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}
	r.logger.Infof("imported %d cookies", len(browser.Cookies))

	if state := r.session.CheckAuth(ctx); state != session.Authenticated {
		return fmt.Errorf("%w: imported session was not accepted by the backend", shared.ErrAuthFailed)
	}
	r.saveSession()

	user := r.session.Identity()
	r.writePlain("✓ Browser session imported\n")
	return r.writePlain("Signed in as %s\n", user.Username)
}
