// Session state for the book client: the authenticated identity and the
// operations that are its sole mutators.
package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/inkwell/internal/api"
	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/shared"
)

// State enumerates the session lifecycle.
type State int

const (
	// Unknown means no auth check has been issued yet.
	Unknown State = iota
	// Checking means a check is in flight; callers await its outcome.
	Checking
	// Authenticated means the backend confirmed an identity.
	Authenticated
	// Anonymous means the backend confirmed there is no session.
	Anonymous
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Store holds the current authenticated identity, or none.
//
// identity != nil implies initialized. All mutation goes through CheckAuth,
// SignIn, SignUp and SignOut; views read snapshots.
type Store struct {
	client *api.Client
	logger *log.Logger

	mu          sync.Mutex
	identity    *models.User
	initialized bool
	lastError   string
	// pending is the shared completion signal for the single in-flight
	// check. Concurrent CheckAuth callers wait on the same channel rather
	// than issuing duplicate requests.
	pending chan struct{}
}

// NewStore creates a session store around the given API client.
func NewStore(client *api.Client, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		client: client,
		logger: shared.WithLogger(logger, "store", "session"),
	}
}

// State returns the current session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	switch {
	case s.pending != nil:
		return Checking
	case !s.initialized:
		return Unknown
	case s.identity != nil:
		return Authenticated
	default:
		return Anonymous
	}
}

// Identity returns a copy of the confirmed identity, or nil when anonymous
// or unknown.
func (s *Store) Identity() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	user := *s.identity
	return &user
}

// IsAuthenticated reports whether a confirmed identity is present.
func (s *Store) IsAuthenticated() bool {
	return s.Identity() != nil
}

// Initialized reports whether at least one auth check has completed.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// LastError returns the message of the most recent unexpected failure.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// CheckAuth queries the identity endpoint and resolves the session to
// Authenticated or Anonymous. An authorization-denied response is the
// expected anonymous outcome, not an error.
//
// At most one check is in flight at a time: callers arriving while one is
// pending await the same outcome. Ensures initialized is set on completion
// regardless of outcome.
func (s *Store) CheckAuth(ctx context.Context) State {
	s.mu.Lock()
	done := s.pending
	if done == nil {
		done = make(chan struct{})
		s.pending = done
		// The check outlives any single caller: a canceled guard must not
		// abort the shared request others are waiting on. The client's own
		// timeout still bounds it.
		go s.runCheck(context.WithoutCancel(ctx), done)
	}
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) runCheck(ctx context.Context, done chan struct{}) {
	var user models.User
	err := s.client.GetJSON(ctx, "/users/me/", &user)

	s.mu.Lock()
	defer func() {
		s.pending = nil
		s.initialized = true
		s.mu.Unlock()
		close(done)
	}()

	if err == nil {
		s.identity = &user
		s.lastError = ""
		return
	}

	s.identity = nil
	switch api.KindOf(err) {
	case api.KindUnauthorized, api.KindForbidden:
		// Confirmed anonymous; expected, not recorded.
		s.lastError = ""
	default:
		s.lastError = api.MessageOr(err, "Auth check failed")
		s.logger.Warnf("auth check failed: %v", err)
	}
}

// SignIn posts credentials and, on success, adopts the returned identity.
//
// Failures come back as a result object carrying the server's message, never
// as a raised error.
func (s *Store) SignIn(ctx context.Context, creds models.Credentials) models.Result {
	var user models.User
	if err := s.client.PostJSON(ctx, "/users/login/", creds, &user); err != nil {
		message := api.MessageOr(err, "Sign in failed")
		s.mu.Lock()
		s.lastError = message
		s.mu.Unlock()
		return models.Fail(message)
	}

	s.mu.Lock()
	s.identity = &user
	s.initialized = true
	s.lastError = ""
	s.mu.Unlock()

	s.logger.Infof("signed in as %s", user.Username)
	return models.OK()
}

// SignUp posts registration data. Registration is not login: a successful
// sign-up does NOT establish an identity; the caller signs in separately.
func (s *Store) SignUp(ctx context.Context, reg models.Registration) models.Result {
	if err := s.client.PostJSON(ctx, "/users/register/", reg, nil); err != nil {
		message := api.MessageOr(err, "Sign up failed")
		s.mu.Lock()
		s.lastError = message
		s.mu.Unlock()
		return models.Fail(message)
	}

	s.logger.Infof("registered %s", reg.Username)
	return models.OK()
}

// SignOut notifies the backend and clears the local identity. The local
// clear happens even when the network call fails: after an explicit sign-out
// the client never believes it is still authenticated.
func (s *Store) SignOut(ctx context.Context) models.Result {
	_, err := s.client.Post(ctx, "/users/logout/", nil)

	s.mu.Lock()
	s.identity = nil
	s.initialized = true
	s.mu.Unlock()

	if err != nil {
		// Best-effort server notification; swallowed.
		s.logger.Warnf("sign out request failed, local session cleared anyway: %v", err)
	}
	return models.OK()
}
