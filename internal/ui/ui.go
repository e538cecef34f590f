package ui

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/nav"
	"github.com/desertthunder/inkwell/internal/session"
	"github.com/desertthunder/inkwell/internal/stores"
)

// Model represents the TUI application state.
//
// Screens are addressed by route paths and every screen change goes through
// the navigation guard, so the TUI can never show an authenticated screen to
// an anonymous session.
type Model struct {
	ctx      context.Context
	guard    *nav.Guard
	session  *session.Store
	books    *stores.BooksStore
	payments *stores.PaymentsStore

	width  int
	height int
	route  nav.Route
	params map[string]string

	menu     list.Model
	bookList list.Model
	planList list.Model
	detail   *models.Book
	inputs   []textinput.Model
	focus    int

	status string
	errMsg string
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, guard *nav.Guard, sess *session.Store, books *stores.BooksStore, payments *stores.PaymentsStore) *Model {
	items := []list.Item{
		menuItem{label: "My Books", desc: "Browse and download your generated books", path: "/profile/books"},
		menuItem{label: "Pricing", desc: "Available subscription plans", path: "/pricing"},
		menuItem{label: "Sign in", desc: "Sign in to your account", path: "/auth/signin"},
	}
	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Inkwell"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	return &Model{
		ctx:      ctx,
		guard:    guard,
		session:  sess,
		books:    books,
		payments: payments,
		route:    nav.Route{Name: "home", Pattern: nav.PathHome},
		menu:     menu,
		inputs:   []textinput.Model{username, password},
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts on the home screen.
func (m *Model) Init() tea.Cmd {
	return m.navigate(nav.PathHome)
}

// navigate asks the guard whether path may be shown.
func (m *Model) navigate(path string) tea.Cmd {
	return func() tea.Msg {
		return navigatedMsg{decision: m.guard.Resolve(m.ctx, path)}
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-8)
		if m.bookList.Width() == 0 {
			m.bookList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.planList.Width() == 0 {
			m.planList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case navigatedMsg:
		return m.handleNavigated(msg.decision)

	case booksFetchedMsg:
		if !msg.result.Success {
			m.errMsg = msg.result.Error
			return m, nil
		}
		items := make([]list.Item, len(msg.books))
		for i, book := range msg.books {
			items[i] = bookItem{book: book}
		}
		m.bookList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
		m.bookList.Title = "My Books"
		m.errMsg = ""
		return m, nil

	case bookFetchedMsg:
		if !msg.result.Success {
			m.errMsg = msg.result.Error
			return m, nil
		}
		m.detail = msg.book
		m.errMsg = ""
		return m, nil

	case plansFetchedMsg:
		if !msg.result.Success {
			m.errMsg = msg.result.Error
			return m, nil
		}
		items := make([]list.Item, len(msg.plans))
		for i, plan := range msg.plans {
			items[i] = planItem{plan: plan}
		}
		m.planList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
		m.planList.Title = "Plans"
		m.errMsg = ""
		return m, nil

	case signInDoneMsg:
		if !msg.result.Success {
			m.errMsg = msg.result.Error
			return m, nil
		}
		m.errMsg = ""
		m.status = "Signed in"
		if intended := m.guard.ConsumeIntended(); intended != "" {
			return m, m.navigate(intended)
		}
		return m, m.navigate(nav.PathProfile)

	case signedOutMsg:
		m.status = "Signed out"
		return m, m.navigate(nav.PathHome)

	case downloadDoneMsg:
		if !msg.result.Success {
			m.errMsg = msg.result.Error
			return m, nil
		}
		m.status = fmt.Sprintf("Saved %s", msg.path)
		return m, nil
	}

	return m.updateLists(msg)
}

// handleNavigated applies a guard decision, following redirects.
func (m *Model) handleNavigated(decision nav.Decision) (tea.Model, tea.Cmd) {
	if !decision.Allowed {
		return m, m.navigate(decision.Redirect)
	}

	m.route = decision.Route
	m.params = decision.Params
	m.errMsg = ""

	switch decision.Route.Name {
	case "profile", "profile-books", "profile-mybooks":
		return m, m.fetchBooks()
	case "book-detail":
		id, err := strconv.Atoi(decision.Params["id"])
		if err != nil {
			m.errMsg = fmt.Sprintf("bad book id %q", decision.Params["id"])
			return m, nil
		}
		return m, m.fetchBook(id)
	case "pricing":
		return m, m.fetchPlans()
	case "signin":
		m.focus = 0
		m.inputs[0].Focus()
		m.inputs[1].Blur()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.route.Name == "signin" {
		return m.handleSignInKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m, m.navigate(nav.PathHome)
	}

	switch m.route.Name {
	case "home":
		if key.Matches(msg, m.keys.enter) {
			if item, ok := m.menu.SelectedItem().(menuItem); ok {
				return m, m.navigate(item.path)
			}
		}
	case "profile", "profile-books", "profile-mybooks":
		switch {
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.bookList.SelectedItem().(bookItem); ok {
				return m, m.navigate(fmt.Sprintf("/books/%d", item.book.ID))
			}
		case key.Matches(msg, m.keys.refresh):
			return m, m.fetchBooks()
		case key.Matches(msg, m.keys.signout):
			return m, m.signOut()
		}
	case "book-detail":
		if key.Matches(msg, m.keys.download) && m.detail != nil {
			return m, m.download(*m.detail)
		}
	case "please-signin":
		if key.Matches(msg, m.keys.enter) {
			return m, m.navigate("/auth/signin")
		}
	}

	return m.updateLists(msg)
}

func (m *Model) handleSignInKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m, m.navigate(nav.PathHome)
	case "tab", "shift+tab", "up", "down":
		if m.focus == 0 {
			m.focus = 1
			m.inputs[0].Blur()
			m.inputs[1].Focus()
		} else {
			m.focus = 0
			m.inputs[1].Blur()
			m.inputs[0].Focus()
		}
		return m, textinput.Blink
	case "enter":
		if m.focus == 0 {
			m.focus = 1
			m.inputs[0].Blur()
			m.inputs[1].Focus()
			return m, textinput.Blink
		}
		return m, m.signIn()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route.Name {
	case "home":
		m.menu, cmd = m.menu.Update(msg)
	case "profile", "profile-books", "profile-mybooks":
		m.bookList, cmd = m.bookList.Update(msg)
	case "pricing":
		m.planList, cmd = m.planList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchBooks() tea.Cmd {
	return func() tea.Msg {
		result := m.books.FetchAll(m.ctx)
		return booksFetchedMsg{books: m.books.Books(), result: result}
	}
}

func (m *Model) fetchBook(id int) tea.Cmd {
	return func() tea.Msg {
		book, result := m.books.FetchOne(m.ctx, id)
		return bookFetchedMsg{book: book, result: result}
	}
}

func (m *Model) fetchPlans() tea.Cmd {
	return func() tea.Msg {
		result := m.payments.FetchPlans(m.ctx)
		return plansFetchedMsg{plans: m.payments.Plans(), result: result}
	}
}

func (m *Model) signIn() tea.Cmd {
	creds := models.Credentials{
		Username: m.inputs[0].Value(),
		Password: m.inputs[1].Value(),
	}
	return func() tea.Msg {
		return signInDoneMsg{result: m.session.SignIn(m.ctx, creds)}
	}
}

func (m *Model) signOut() tea.Cmd {
	return func() tea.Msg {
		m.session.SignOut(m.ctx)
		return signedOutMsg{}
	}
}

func (m *Model) download(book models.Book) tea.Cmd {
	return func() tea.Msg {
		data, result := m.books.Download(m.ctx, book.ID)
		if !result.Success {
			return downloadDoneMsg{result: result}
		}
		path := fmt.Sprintf("book_%d.pdf", book.ID)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return downloadDoneMsg{result: models.Fail(err.Error())}
		}
		return downloadDoneMsg{path: path, result: models.OK()}
	}
}

// View renders the UI for the current route.
func (m *Model) View() string {
	var body string
	switch m.route.Name {
	case "home":
		body = m.renderHome()
	case "signin":
		body = m.renderSignIn()
	case "please-signin":
		body = m.renderPleaseSignIn()
	case "profile", "profile-books", "profile-mybooks":
		body = m.renderBooks()
	case "book-detail":
		body = m.renderDetail()
	case "pricing":
		body = m.renderPlans()
	default:
		body = m.renderHome()
	}

	var footer string
	if m.errMsg != "" {
		footer = "\n" + styles.err.Render(m.errMsg)
	} else if m.status != "" {
		footer = "\n" + styles.ok.Render(m.status)
	}
	return body + footer
}

func (m *Model) renderHome() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.menu.View(), helpView)
}

func (m *Model) renderSignIn() string {
	title := styles.title.Render("Sign in")
	form := fmt.Sprintf("%s\n%s", m.inputs[0].View(), m.inputs[1].View())
	helpView := styles.help.Render("tab: next field • enter: submit • esc: back")
	return fmt.Sprintf("%s\n%s\n\n%s", title, form, helpView)
}

func (m *Model) renderPleaseSignIn() string {
	title := styles.title.Render("Please sign in")
	info := "You need to be signed in to see that screen."
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderBooks() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.signout, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.bookList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return styles.help.Render("Loading...")
	}
	book := m.detail

	title := styles.title.Render(book.Title)
	status := string(book.Status)
	if book.Status == models.StatusReady {
		status = styles.ok.Render(status)
	} else if book.Status == models.StatusError {
		status = styles.err.Render(status)
	}
	info := fmt.Sprintf("Status: %s\nDomain: %s / %s\nPages: %d\nCovers: %d", status, book.Domain, book.SubNiche, book.PageLength, len(book.Covers))
	if book.ErrorMessage != nil {
		info += "\n" + styles.warn.Render(*book.ErrorMessage)
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	if book.CanDownload {
		helpKeys = append([]key.Binding{m.keys.download}, helpKeys...)
	}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderPlans() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.planList.View(), helpView)
}
