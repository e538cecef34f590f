package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tu "github.com/desertthunder/inkwell/internal/testing"
)

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			custom := &http.Client{}
			c := NewClient("http://example.com/api", custom)

			if c.BaseURL() != "http://example.com/api" {
				t.Errorf("expected baseURL 'http://example.com/api', got %s", c.BaseURL())
			}
			if c.httpClient != custom {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			c := NewClient("", nil)

			if c.BaseURL() != "http://127.0.0.1:8000/api" {
				t.Errorf("expected default baseURL, got %s", c.BaseURL())
			}
		})

		t.Run("Installs Cookie Jar", func(t *testing.T) {
			c := NewClient("http://example.com", &http.Client{})

			if c.httpClient.Jar == nil {
				t.Error("expected a cookie jar to be installed")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/books/" {
					t.Errorf("expected path '/books/', got %s", r.URL.Path)
				}
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("expected Accept header, got %s", r.Header.Get("Accept"))
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode([]map[string]any{{"id": 1}})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			resp, err := c.Get(context.Background(), "/books/")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}

			var books []map[string]any
			if err := resp.Decode(&books); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if len(books) != 1 {
				t.Errorf("expected 1 book, got %d", len(books))
			}
		})

		t.Run("Failed Transport", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			c := NewClient("http://example.com", client)
			_, err := c.Get(context.Background(), "/books/")

			if err == nil {
				t.Fatal("expected error for failed request")
			}
			if !IsKind(err, KindNetworkError) {
				t.Errorf("expected network error, got %v", err)
			}
		})

		t.Run("Failed Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			c := NewClient("http://example.com", client)
			_, err := c.Get(context.Background(), "/books/")

			if !IsKind(err, KindNetworkError) {
				t.Errorf("expected network error for failed body read, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			c := NewClient(server.URL, nil)
			_, err := c.Get(ctx, "/books/")

			if !IsKind(err, KindNetworkError) {
				t.Errorf("expected network error for canceled context, got %v", err)
			}
		})

		t.Run("Timeout Surfaces As NetworkError", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			_, err := c.Get(context.Background(), "/books/", WithTimeout(20*time.Millisecond))

			if !IsKind(err, KindNetworkError) {
				t.Errorf("expected network error on timeout, got %v", err)
			}
		})

		t.Run("Per-Call Timeout Override Allows Slow Calls", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(50 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			c.SetTimeouts(10*time.Millisecond, time.Second)

			if _, err := c.Get(context.Background(), "/books/"); err == nil {
				t.Error("expected default timeout to trip")
			}
			if _, err := c.Get(context.Background(), "/books/", c.WithLongTimeout()); err != nil {
				t.Errorf("expected long timeout call to succeed, got %v", err)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Marshals JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}

				var data map[string]string
				if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
					t.Errorf("failed to decode request body: %v", err)
				}
				if data["username"] != "reader" {
					t.Errorf("unexpected request data: %v", data)
				}

				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id": 9}`))
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			resp, err := c.Post(context.Background(), "/users/login/", map[string]string{"username": "reader"})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected status 201, got %d", resp.StatusCode)
			}
		})

		t.Run("Nil Body Sends Empty Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.ContentLength != 0 {
					t.Errorf("expected empty body, got %d bytes", r.ContentLength)
				}
				if r.Header.Get("Content-Type") == "application/json" {
					t.Error("expected no content type on empty body")
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			if _, err := c.Post(context.Background(), "/users/logout/", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Unmarshalable Body", func(t *testing.T) {
			c := NewClient("http://example.com", nil)
			_, err := c.Post(context.Background(), "/books/", func() {})

			if err == nil || !strings.Contains(err.Error(), "marshal") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE method, got %s", r.Method)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		resp, err := c.Delete(context.Background(), "/books/3/")

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("expected status 204, got %d", resp.StatusCode)
		}
	})

	t.Run("Cookies", func(t *testing.T) {
		t.Run("Set-Cookie Establishes Session", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/users/login/":
					http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s3cret", Path: "/"})
					w.Write([]byte(`{"id": 1}`))
				case "/users/me/":
					cookie, err := r.Cookie("sessionid")
					if err != nil || cookie.Value != "s3cret" {
						w.WriteHeader(http.StatusUnauthorized)
						return
					}
					w.Write([]byte(`{"id": 1}`))
				}
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			if _, err := c.Post(context.Background(), "/users/login/", map[string]string{"username": "u"}); err != nil {
				t.Fatalf("login failed: %v", err)
			}
			if _, err := c.Get(context.Background(), "/users/me/"); err != nil {
				t.Errorf("expected session cookie to be attached, got %v", err)
			}
		})

		t.Run("ImportCookies", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				cookie, err := r.Cookie("sessionid")
				if err != nil || cookie.Value != "imported" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				w.Write([]byte(`{"id": 1}`))
			}))
			defer server.Close()

			c := NewClient(server.URL, nil)
			if err := c.ImportCookies([]*http.Cookie{{Name: "sessionid", Value: "imported"}}); err != nil {
				t.Fatalf("import failed: %v", err)
			}
			if _, err := c.Get(context.Background(), "/users/me/"); err != nil {
				t.Errorf("expected imported cookie to authenticate, got %v", err)
			}
		})
	})

	t.Run("Download", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.7 fake"))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		data, err := c.Download(context.Background(), "/books/3/download/")

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(string(data), "%PDF") {
			t.Errorf("expected PDF bytes, got %q", data)
		}
	})
}

func TestErrorNormalization(t *testing.T) {
	serve := func(t *testing.T, status int, body string) (*Response, *Error) {
		t.Helper()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(body))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		resp, err := c.Get(context.Background(), "/x")
		if err == nil {
			t.Fatalf("expected error for status %d", status)
		}

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		return resp, apiErr
	}

	t.Run("Status Mapping", func(t *testing.T) {
		tt := []struct {
			status int
			kind   ErrorKind
		}{
			{http.StatusUnauthorized, KindUnauthorized},
			{http.StatusForbidden, KindForbidden},
			{http.StatusNotFound, KindNotFound},
			{http.StatusTooManyRequests, KindRateLimited},
			{http.StatusInternalServerError, KindServerError},
			{http.StatusBadGateway, KindServerError},
			{http.StatusConflict, KindClientError},
		}

		for _, tc := range tt {
			t.Run(tc.kind.String(), func(t *testing.T) {
				_, lastErr := serve(t, tc.status, `{}`)
				if lastErr.Kind != tc.kind {
					t.Errorf("status %d: expected kind %s, got %s", tc.status, tc.kind, lastErr.Kind)
				}
				if lastErr.Status != tc.status {
					t.Errorf("expected status %d recorded, got %d", tc.status, lastErr.Status)
				}
			})
		}
	})

	t.Run("Message Extraction", func(t *testing.T) {
		t.Run("error key wins", func(t *testing.T) {
			_, lastErr := serve(t, 400, `{"error": "Domain is required", "detail": "ignored"}`)
			if lastErr.Message != "Domain is required" {
				t.Errorf("expected error key message, got %q", lastErr.Message)
			}
		})

		t.Run("detail as fallback", func(t *testing.T) {
			_, lastErr := serve(t, 403, `{"detail": "Authentication credentials were not provided."}`)
			if lastErr.Message != "Authentication credentials were not provided." {
				t.Errorf("expected detail message, got %q", lastErr.Message)
			}
		})

		t.Run("validation map joined", func(t *testing.T) {
			_, lastErr := serve(t, 400, `{"password": ["Too short.", "Too common."], "email": ["Invalid."]}`)
			if lastErr.Kind != KindValidation {
				t.Errorf("expected validation kind, got %s", lastErr.Kind)
			}
			want := "email: Invalid.; password: Too short., Too common."
			if lastErr.Message != want {
				t.Errorf("expected %q, got %q", want, lastErr.Message)
			}
			if len(lastErr.Fields["password"]) != 2 {
				t.Errorf("expected field messages preserved, got %+v", lastErr.Fields)
			}
		})

		t.Run("unparseable body leaves empty message", func(t *testing.T) {
			_, lastErr := serve(t, 500, `<html>Internal Server Error</html>`)
			if lastErr.Message != "" {
				t.Errorf("expected empty message, got %q", lastErr.Message)
			}
		})
	})

	t.Run("MessageOr", func(t *testing.T) {
		_, withMessage := serve(t, 400, `{"error": "Bad payload"}`)
		if got := MessageOr(withMessage, "fallback"); got != "Bad payload" {
			t.Errorf("expected extracted message, got %q", got)
		}

		_, withoutMessage := serve(t, 500, `oops`)
		if got := MessageOr(withoutMessage, "Sign in failed"); got != "Sign in failed" {
			t.Errorf("expected fallback, got %q", got)
		}

		if got := MessageOr(errors.New("plain"), "fallback"); got != "fallback" {
			t.Errorf("expected fallback for non-API error, got %q", got)
		}
	})

	t.Run("Response Returned Alongside Error", func(t *testing.T) {
		resp, _ := serve(t, 404, `{"error": "missing"}`)
		if resp == nil || resp.StatusCode != 404 {
			t.Error("expected response to accompany normalized error")
		}
	})

	t.Run("KindOf", func(t *testing.T) {
		if KindOf(errors.New("dial tcp: refused")) != KindNetworkError {
			t.Error("expected plain errors to map to network kind")
		}
	})
}
