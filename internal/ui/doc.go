// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// Screens mirror the product's web URLs and every transition runs through
// the [nav.Guard], so authenticated screens are unreachable without a
// confirmed session:
//  1. home : Menu of destinations
//  2. signin : Username/password form
//  3. profile-books : Browse the book library
//  4. book-detail : Status, covers and download for one book
//  5. pricing : Available subscription plans
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
