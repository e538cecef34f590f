package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/inkwell/internal/models"
)

var (
	_ list.Item = bookItem{}
	_ list.Item = planItem{}
	_ list.Item = menuItem{}
)

// bookItem wraps [models.Book] to implement [list.Item].
type bookItem struct {
	book models.Book
}

func (i bookItem) FilterValue() string { return i.book.Title }
func (i bookItem) Title() string       { return i.book.Title }
func (i bookItem) Description() string {
	desc := fmt.Sprintf("%s • %dp • %s", i.book.Domain, i.book.PageLength, i.book.Status)
	if i.book.CanDownload {
		desc += " • downloadable"
	}
	return desc
}

// planItem wraps [models.SubscriptionPlan] to implement [list.Item].
type planItem struct {
	plan models.SubscriptionPlan
}

func (i planItem) FilterValue() string { return i.plan.Name }
func (i planItem) Title() string       { return i.plan.Name }
func (i planItem) Description() string {
	return fmt.Sprintf("%.2f %s / %s • %d books/month", i.plan.Price, i.plan.Currency, i.plan.Interval, i.plan.MaxBooksPerMonth)
}

// menuItem is one destination on the home screen.
type menuItem struct {
	label string
	desc  string
	path  string
}

func (i menuItem) FilterValue() string { return i.label }
func (i menuItem) Title() string       { return i.label }
func (i menuItem) Description() string { return i.desc }
