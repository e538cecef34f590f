package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/inkwell/internal/api"
	"github.com/desertthunder/inkwell/internal/models"
	itesting "github.com/desertthunder/inkwell/internal/testing"
)

func newStore(t *testing.T, handler http.Handler) (*Store, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClient(server.URL, server.Client())
	return NewStore(client, itesting.QuietLogger()), server
}

func TestCheckAuth(t *testing.T) {
	t.Run("resolves authenticated", func(t *testing.T) {
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/users/me/" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(models.User{ID: 7, Username: "ada", Email: "ada@example.com"})
		}))

		if got := store.State(); got != Unknown {
			t.Fatalf("expected unknown before check, got %s", got)
		}
		if got := store.CheckAuth(context.Background()); got != Authenticated {
			t.Fatalf("expected authenticated, got %s", got)
		}
		if !store.Initialized() {
			t.Error("expected initialized after check")
		}
		if user := store.Identity(); user == nil || user.Username != "ada" {
			t.Errorf("unexpected identity %+v", user)
		}
	})

	t.Run("resolves anonymous on unauthorized", func(t *testing.T) {
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail": "Authentication credentials were not provided."}`, http.StatusUnauthorized)
		}))

		if got := store.CheckAuth(context.Background()); got != Anonymous {
			t.Fatalf("expected anonymous, got %s", got)
		}
		if !store.Initialized() {
			t.Error("expected initialized even when anonymous")
		}
		if store.LastError() != "" {
			t.Errorf("unauthorized is not an error, got %q", store.LastError())
		}
	})

	t.Run("records unexpected failures", func(t *testing.T) {
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "boom"}`, http.StatusInternalServerError)
		}))

		if got := store.CheckAuth(context.Background()); got != Anonymous {
			t.Fatalf("expected anonymous on failure, got %s", got)
		}
		if store.LastError() != "boom" {
			t.Errorf("expected recorded message, got %q", store.LastError())
		}
	})

	t.Run("concurrent callers share one request", func(t *testing.T) {
		var calls atomic.Int64
		arrived := make(chan struct{})
		release := make(chan struct{})
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				close(arrived)
			}
			<-release
			json.NewEncoder(w).Encode(models.User{ID: 1, Username: "ada"})
		}))

		var wg sync.WaitGroup
		results := make([]State, 8)
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[0] = store.CheckAuth(context.Background())
		}()
		// The first request is parked in the handler; everyone arriving
		// now must attach to it instead of issuing their own.
		<-arrived
		for i := 1; i < len(results); i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = store.CheckAuth(context.Background())
			}(i)
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		if got := calls.Load(); got != 1 {
			t.Fatalf("expected a single request, got %d", got)
		}
		for i, state := range results {
			if state != Authenticated {
				t.Errorf("caller %d got %s", i, state)
			}
		}
	})

	t.Run("subsequent check refreshes", func(t *testing.T) {
		var calls atomic.Int64
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				json.NewEncoder(w).Encode(models.User{ID: 1, Username: "ada"})
				return
			}
			http.Error(w, `{}`, http.StatusUnauthorized)
		}))

		if got := store.CheckAuth(context.Background()); got != Authenticated {
			t.Fatalf("expected authenticated, got %s", got)
		}
		if got := store.CheckAuth(context.Background()); got != Anonymous {
			t.Fatalf("expected anonymous after session lapse, got %s", got)
		}
		if calls.Load() != 2 {
			t.Errorf("expected two sequential requests, got %d", calls.Load())
		}
	})
}

func TestSignIn(t *testing.T) {
	t.Run("adopts returned identity", func(t *testing.T) {
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/users/login/" || r.Method != http.MethodPost {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var creds models.Credentials
			json.NewDecoder(r.Body).Decode(&creds)
			if creds.Username != "ada" || creds.Password != "hunter2" {
				t.Errorf("unexpected credentials %+v", creds)
			}
			json.NewEncoder(w).Encode(models.User{ID: 7, Username: "ada"})
		}))

		result := store.SignIn(context.Background(), models.Credentials{Username: "ada", Password: "hunter2"})
		if !result.Success {
			t.Fatalf("expected success, got %q", result.Error)
		}
		if got := store.State(); got != Authenticated {
			t.Errorf("expected authenticated, got %s", got)
		}
	})

	t.Run("surfaces server message", func(t *testing.T) {
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "Invalid username or password."}`, http.StatusUnauthorized)
		}))

		result := store.SignIn(context.Background(), models.Credentials{Username: "ada", Password: "wrong"})
		if result.Success {
			t.Fatal("expected failure")
		}
		if result.Error != "Invalid username or password." {
			t.Errorf("unexpected message %q", result.Error)
		}
		if store.IsAuthenticated() {
			t.Error("failed sign in must not set identity")
		}
	})

	t.Run("falls back to generic message", func(t *testing.T) {
		store, server := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		result := store.SignIn(context.Background(), models.Credentials{Username: "ada", Password: "hunter2"})
		if result.Success {
			t.Fatal("expected failure")
		}
		if result.Error != "Sign in failed" {
			t.Errorf("expected fallback message, got %q", result.Error)
		}
	})
}

func TestSignUp(t *testing.T) {
	t.Run("success does not establish identity", func(t *testing.T) {
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/users/register/" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(models.User{ID: 9, Username: "new"})
		}))

		result := store.SignUp(context.Background(), models.Registration{
			Username: "new", Email: "new@example.com", Password: "secret12", Password2: "secret12",
		})
		if !result.Success {
			t.Fatalf("expected success, got %q", result.Error)
		}
		if store.IsAuthenticated() {
			t.Error("sign up must not sign the user in")
		}
	})

	t.Run("surfaces validation messages", func(t *testing.T) {
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"details": {"password": ["Too short."]}}`, http.StatusBadRequest)
		}))

		result := store.SignUp(context.Background(), models.Registration{Username: "new"})
		if result.Success {
			t.Fatal("expected failure")
		}
		if result.Error != "password: Too short." {
			t.Errorf("unexpected message %q", result.Error)
		}
	})

	t.Run("falls back to generic message", func(t *testing.T) {
		store, server := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		result := store.SignUp(context.Background(), models.Registration{Username: "new"})
		if result.Error != "Sign up failed" {
			t.Errorf("expected fallback message, got %q", result.Error)
		}
	})
}

func TestSignOut(t *testing.T) {
	t.Run("clears identity", func(t *testing.T) {
		store, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/users/me/":
				json.NewEncoder(w).Encode(models.User{ID: 7, Username: "ada"})
			case "/users/logout/":
				w.WriteHeader(http.StatusOK)
			}
		}))

		store.CheckAuth(context.Background())
		result := store.SignOut(context.Background())
		if !result.Success {
			t.Fatalf("expected success, got %q", result.Error)
		}
		if got := store.State(); got != Anonymous {
			t.Errorf("expected anonymous, got %s", got)
		}
	})

	t.Run("clears identity even when request fails", func(t *testing.T) {
		store, server := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/users/me/":
				json.NewEncoder(w).Encode(models.User{ID: 7, Username: "ada"})
			default:
				http.Error(w, `{}`, http.StatusInternalServerError)
			}
		}))

		store.CheckAuth(context.Background())
		if !store.IsAuthenticated() {
			t.Fatal("expected authenticated before sign out")
		}
		_ = server // server stays up; logout endpoint fails
		result := store.SignOut(context.Background())
		if !result.Success {
			t.Fatalf("sign out is best effort, got %q", result.Error)
		}
		if store.IsAuthenticated() {
			t.Error("identity must be cleared regardless of network outcome")
		}
	})
}
