package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	itesting "github.com/desertthunder/inkwell/internal/testing"
)

func TestBasicRouter(t *testing.T) {
	t.Run("enforces method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodPost, "/submit", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		server := httptest.NewServer(router)
		t.Cleanup(server.Close)

		resp, err := http.Get(server.URL + "/submit")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})

	t.Run("applies middleware in order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("outer"), mark("inner"))
		router.Use(Logging(itesting.QuietLogger()))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		server := httptest.NewServer(router)
		t.Cleanup(server.Close)

		resp, err := http.Get(server.URL + "/ping")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()

		want := []string{"outer", "inner", "handler"}
		if len(order) != 3 {
			t.Fatalf("unexpected call order %v", order)
		}
		for i, name := range want {
			if order[i] != name {
				t.Errorf("call %d = %s, want %s", i, order[i], name)
			}
		}
	})
}

func TestCheckoutHandler(t *testing.T) {
	serve := func(t *testing.T, handler *CheckoutHandler, path string) *http.Response {
		t.Helper()
		router := NewBasicRouter()
		router.Handler(handler)
		server := httptest.NewServer(router)
		t.Cleanup(server.Close)

		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("success delivers session id", func(t *testing.T) {
		handler := NewCheckoutHandler("tok123")
		resp := serve(t, handler, "/checkout/success?state=tok123&session_id=cs_test_42")

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "Checkout complete") {
			t.Errorf("unexpected page:\n%s", body)
		}

		result := <-handler.Result()
		if result.Error() != nil || result.SessionID != "cs_test_42" || result.Canceled {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("cancel delivers canceled result", func(t *testing.T) {
		handler := NewCheckoutHandler("tok123")
		serve(t, handler, "/checkout/cancel?state=tok123")

		result := <-handler.Result()
		if result.Error() != nil || !result.Canceled {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("rejects bad state", func(t *testing.T) {
		handler := NewCheckoutHandler("tok123")
		resp := serve(t, handler, "/checkout/success?state=wrong&session_id=cs_test_42")

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected error result")
		}
	})

	t.Run("second redirect is refused", func(t *testing.T) {
		handler := NewCheckoutHandler("tok123")
		router := NewBasicRouter()
		router.Handler(handler)
		server := httptest.NewServer(router)
		t.Cleanup(server.Close)

		first, err := http.Get(server.URL + "/checkout/success?state=tok123&session_id=cs_1")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		first.Body.Close()

		second, err := http.Get(server.URL + "/checkout/success?state=tok123&session_id=cs_2")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		second.Body.Close()
		if second.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", second.StatusCode)
		}

		result := <-handler.Result()
		if result.SessionID != "cs_1" {
			t.Errorf("unexpected session %q", result.SessionID)
		}
	})
}
