package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBookStatus(t *testing.T) {
	t.Run("Terminal", func(t *testing.T) {
		for _, s := range []BookStatus{StatusReady, StatusError} {
			if !s.Terminal() {
				t.Errorf("expected %s to be terminal", s)
			}
		}
		for _, s := range []BookStatus{StatusDraft, StatusGenerating, StatusContentGenerated, StatusCoverPending} {
			if s.Terminal() {
				t.Errorf("expected %s to not be terminal", s)
			}
		}
	})

	t.Run("Pending", func(t *testing.T) {
		for _, s := range []BookStatus{StatusGenerating, StatusContentGenerated, StatusCoverPending} {
			if !s.Pending() {
				t.Errorf("expected %s to be pending", s)
			}
		}
		for _, s := range []BookStatus{StatusDraft, StatusReady, StatusError} {
			if s.Pending() {
				t.Errorf("expected %s to not be pending", s)
			}
		}
	})

	t.Run("CanTransition Happy Path", func(t *testing.T) {
		path := []BookStatus{StatusDraft, StatusGenerating, StatusContentGenerated, StatusCoverPending, StatusReady}
		for i := 0; i < len(path)-1; i++ {
			if !path[i].CanTransition(path[i+1]) {
				t.Errorf("expected %s -> %s to be allowed", path[i], path[i+1])
			}
		}
	})

	t.Run("Error Is Absorbing", func(t *testing.T) {
		for _, s := range []BookStatus{StatusDraft, StatusGenerating, StatusContentGenerated, StatusCoverPending} {
			if !s.CanTransition(StatusError) {
				t.Errorf("expected %s -> error to be allowed", s)
			}
		}
		for _, next := range []BookStatus{StatusDraft, StatusGenerating, StatusReady} {
			if StatusError.CanTransition(next) {
				t.Errorf("expected error -> %s to be forbidden", next)
			}
		}
	})

	t.Run("No Skipping States", func(t *testing.T) {
		if StatusDraft.CanTransition(StatusReady) {
			t.Error("draft should not jump straight to ready")
		}
		if StatusGenerating.CanTransition(StatusCoverPending) {
			t.Error("generating should not skip content_generated")
		}
		if StatusReady.CanTransition(StatusError) {
			t.Error("ready is terminal, even error is unreachable")
		}
	})

	t.Run("Valid", func(t *testing.T) {
		if BookStatus("unknown").Valid() {
			t.Error("unexpected status should not be valid")
		}
		if !StatusCoverPending.Valid() {
			t.Error("cover_pending should be valid")
		}
	})
}

func TestBookJSON(t *testing.T) {
	payload := `{
		"id": 42,
		"title": "Mindful Mornings",
		"domain": "meditation",
		"sub_niche": "mindfulness_anxiety",
		"page_length": 20,
		"status": "cover_pending",
		"created_at": "2025-03-01T10:00:00Z",
		"updated_at": "2025-03-01T10:30:00Z",
		"content_generated_at": "2025-03-01T10:20:00Z",
		"completed_at": null,
		"covers": [{"id": 7, "template_style": "modern", "image_url": "/media/covers/7.png", "is_selected": false}],
		"selected_cover": null,
		"can_download": false,
		"download_url": null,
		"error_message": null
	}`

	var book Book
	if err := json.Unmarshal([]byte(payload), &book); err != nil {
		t.Fatalf("failed to unmarshal book: %v", err)
	}

	if book.ID != 42 {
		t.Errorf("expected id 42, got %d", book.ID)
	}
	if book.Status != StatusCoverPending {
		t.Errorf("expected status cover_pending, got %s", book.Status)
	}
	if book.CanDownload {
		t.Error("expected can_download false outside ready state")
	}
	if len(book.Covers) != 1 || book.Covers[0].TemplateStyle != CoverModern {
		t.Errorf("unexpected covers: %+v", book.Covers)
	}
	if book.ContentGeneratedAt == nil || *book.ContentGeneratedAt != "2025-03-01T10:20:00Z" {
		t.Errorf("unexpected content_generated_at: %v", book.ContentGeneratedAt)
	}
}

func TestSubscription(t *testing.T) {
	t.Run("Active", func(t *testing.T) {
		sub := &Subscription{Status: SubscriptionActive}
		if !sub.Active() {
			t.Error("expected active subscription")
		}

		sub.Status = SubscriptionCanceled
		if sub.Active() {
			t.Error("canceled subscription should not be active")
		}

		var missing *Subscription
		if missing.Active() {
			t.Error("nil subscription should not be active")
		}
	})
}

func TestResult(t *testing.T) {
	if r := OK(); !r.Success || r.Error != "" {
		t.Errorf("unexpected OK result: %+v", r)
	}
	if r := Fail("Sign in failed"); r.Success || r.Error != "Sign in failed" {
		t.Errorf("unexpected Fail result: %+v", r)
	}
}

func TestCachedBook(t *testing.T) {
	remote := Book{
		ID:         7,
		Title:      "Plant Based Pantry",
		Domain:     "nutrition",
		SubNiche:   "plant_based_cooking",
		PageLength: 25,
		Status:     StatusReady,
	}

	t.Run("NewCachedBook Copies Remote Fields", func(t *testing.T) {
		cached := NewCachedBook(1, remote)

		if cached.RemoteID() != 7 {
			t.Errorf("expected remote id 7, got %d", cached.RemoteID())
		}
		if cached.Title() != "Plant Based Pantry" {
			t.Errorf("unexpected title %q", cached.Title())
		}
		if err := cached.Validate(); err != nil {
			t.Errorf("expected valid cached book, got %v", err)
		}
	})

	t.Run("Validate Rejects Incomplete Entities", func(t *testing.T) {
		cached := NewCachedBook(1, Book{ID: 0, Title: "x", Status: StatusDraft})
		if err := cached.Validate(); err == nil {
			t.Error("expected validation error for missing remote id")
		}

		cached = NewCachedBook(1, Book{ID: 3, Title: "", Status: StatusDraft})
		if err := cached.Validate(); err == nil {
			t.Error("expected validation error for missing title")
		}

		cached = NewCachedBook(1, Book{ID: 3, Title: "x", Status: "bogus"})
		if err := cached.Validate(); err == nil {
			t.Error("expected validation error for unknown status")
		}
	})

	t.Run("ApplyRemote Clears Stale Error", func(t *testing.T) {
		msg := "render crashed"
		failed := remote
		failed.Status = StatusError
		failed.ErrorMessage = &msg

		cached := NewCachedBook(1, failed)
		if cached.ErrorMessage() != "render crashed" {
			t.Errorf("expected error message to be kept, got %q", cached.ErrorMessage())
		}

		cached.ApplyRemote(remote)
		if cached.ErrorMessage() != "" {
			t.Errorf("expected error message cleared, got %q", cached.ErrorMessage())
		}
	})

	t.Run("Remote Round Trip", func(t *testing.T) {
		cached := NewCachedBook(1, remote)
		cached.SetCreatedAt(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
		cached.SetUpdatedAt(time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC))

		back := cached.Remote()
		if back.ID != remote.ID || back.Title != remote.Title || back.Status != remote.Status {
			t.Errorf("round trip mismatch: %+v", back)
		}
		if back.CreatedAt != "2025-03-01T10:00:00Z" {
			t.Errorf("unexpected created_at %q", back.CreatedAt)
		}
	})
}
