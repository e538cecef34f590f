// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/inkwell/internal/shared"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// RecordingNotifier is a test double for [shared.Notifier] capturing every notification.
type RecordingNotifier struct {
	mu            sync.Mutex
	Notifications []Notification
}

// Notification is one captured Notify call.
type Notification struct {
	Title   string
	Message string
	Kind    shared.NotifyKind
}

func (n *RecordingNotifier) Notify(title, message string, kind shared.NotifyKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notifications = append(n.Notifications, Notification{Title: title, Message: message, Kind: kind})
}

// Count returns the number of captured notifications.
func (n *RecordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Notifications)
}

// QuietLogger returns a logger that writes nowhere, for tests that exercise
// code paths which log.
func QuietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}
