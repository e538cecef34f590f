package server

import (
	"fmt"
	"net/http"
	"sync"
)

// CheckoutResult contains the outcome of a hosted checkout flow.
type CheckoutResult struct {
	SessionID string // Provider session id from the success redirect
	Canceled  bool   // True when the user backed out of checkout
	err       error
}

func (c *CheckoutResult) Error() error {
	return c.err
}

// CheckoutHandler handles the payment provider's redirect back from a hosted
// checkout page. Implements the Handler interface for registration with a
// Router.
//
// The provider redirects the browser to /checkout/success or
// /checkout/cancel on localhost; the handler translates that single hit into
// one CheckoutResult on its channel and ignores everything after it.
type CheckoutHandler struct {
	state       string
	resultChan  chan CheckoutResult
	once        sync.Once
	redirectHit bool
	mu          sync.Mutex
}

// NewCheckoutHandler creates a checkout handler expecting the given state
// token. The state token should be cryptographically random so a stray local
// request cannot spoof a completed checkout.
func NewCheckoutHandler(state string) *CheckoutHandler {
	return &CheckoutHandler{
		state:      state,
		resultChan: make(chan CheckoutResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CheckoutHandler) Routes() []string {
	return []string{"/checkout/success", "/checkout/cancel"}
}

// ServeHTTP handles the checkout redirect.
//
// Validates the state parameter and sends the result through the result
// channel exactly once.
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle the redirect once
	h.mu.Lock()
	if h.redirectHit {
		h.mu.Unlock()
		http.Error(w, "Checkout already processed", http.StatusBadRequest)
		return
	}
	h.redirectHit = true
	h.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(CheckoutResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if r.URL.Path == "/checkout/cancel" {
		h.Send(CheckoutResult{Canceled: true})
		h.writePage(w, "Checkout canceled", "No charge was made. You can close this window and return to the terminal.")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		err := fmt.Errorf("missing session_id in success redirect")
		h.Send(CheckoutResult{err: err})
		http.Error(w, "Missing session_id", http.StatusBadRequest)
		return
	}

	h.Send(CheckoutResult{SessionID: sessionID})
	h.writePage(w, "✓ Checkout complete", "You can close this window and return to the terminal.")
}

func (h *CheckoutHandler) writePage(w http.ResponseWriter, heading, body string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #5469d4; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`, heading, heading, body)
}

// Send sends the checkout result through the channel (only once).
func (h *CheckoutHandler) Send(result CheckoutResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving checkout completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CheckoutHandler) Result() <-chan CheckoutResult {
	return h.resultChan
}
