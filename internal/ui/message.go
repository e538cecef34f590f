package ui

import (
	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/nav"
)

// navigatedMsg carries the guard's verdict on a requested screen change.
type navigatedMsg struct {
	decision nav.Decision
}

// booksFetchedMsg carries the outcome of a collection fetch.
type booksFetchedMsg struct {
	books  []models.Book
	result models.Result
}

// bookFetchedMsg carries the outcome of a single book fetch.
type bookFetchedMsg struct {
	book   *models.Book
	result models.Result
}

// plansFetchedMsg carries the outcome of a plan listing fetch.
type plansFetchedMsg struct {
	plans  []models.SubscriptionPlan
	result models.Result
}

// signInDoneMsg carries the outcome of a sign-in attempt.
type signInDoneMsg struct {
	result models.Result
}

// signedOutMsg reports that the session was cleared.
type signedOutMsg struct{}

// downloadDoneMsg carries the outcome of a book download.
type downloadDoneMsg struct {
	path   string
	result models.Result
}
