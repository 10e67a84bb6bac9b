// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/shamash/internal/catalog"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected a book.
	ActionSelected
	// ActionCancelled indicates the user left without choosing.
	ActionCancelled
)

// SelectionResult holds the result of a book selection.
type SelectionResult struct {
	Action    SelectionAction
	Selection *catalog.Entry
}

type bookItem struct {
	catalog.Entry
}

func (i bookItem) FilterValue() string {
	return i.Entry.Title() + " " + i.AuthorName()
}

type itemStyles struct {
	normal        lipgloss.Style
	selected      lipgloss.Style
	categoryStyle lipgloss.Style
	titleStyle    lipgloss.Style
	hebrewStyle   lipgloss.Style
	metadataStyle lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		categoryStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		hebrewStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
		metadataStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

type bookDelegate struct {
	styles itemStyles
}

func newDelegate() bookDelegate {
	return bookDelegate{styles: newItemStyles()}
}

func (d bookDelegate) Height() int                         { return 4 }
func (d bookDelegate) Spacing() int                        { return 1 }
func (d bookDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	book, ok := item.(bookItem)
	if !ok {
		return
	}

	category := book.CategoryEnglish
	if category == "" {
		category = "uncategorized"
	}
	categoryLine := d.styles.categoryStyle.Render(fmt.Sprintf("[%s]", strings.ToUpper(category)))
	titleLine := d.styles.titleStyle.Render(truncate(book.Entry.Title(), m.Width()-4))
	hebrewLine := d.styles.hebrewStyle.Render(truncate(book.DisplayName, m.Width()-4))
	metadataLine := d.styles.metadataStyle.Render(formatMetadata(book.Entry, m.Width()-4))

	content := lipgloss.JoinVertical(lipgloss.Left, categoryLine, titleLine, hebrewLine, metadataLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list   list.Model
	query  string
	result SelectionResult
}

func newModel(query string, items []bookItem) *model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	l := list.New(listItems, newDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:   l,
		query:  query,
		result: SelectionResult{Action: ActionNone},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(bookItem); ok {
				entry := selected.Entry
				m.result = SelectionResult{Action: ActionSelected, Selection: &entry}
				return m, tea.Quit
			}
		case "ctrl+c", "q", "esc":
			m.result = SelectionResult{Action: ActionCancelled}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("%d books found for: %s", len(m.list.Items()), m.query))
	help := helpStyle.Render("Up/Down navigate | Enter select | q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// SelectBook presents an interactive list of catalog entries.
func SelectBook(query string, entries []catalog.Entry) (SelectionResult, error) {
	if len(entries) == 0 {
		return SelectionResult{Action: ActionCancelled}, nil
	}

	items := make([]bookItem, len(entries))
	for i, e := range entries {
		items[i] = bookItem{Entry: e}
	}
	finalModel, err := runProgram(newModel(query, items))
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if width <= 0 || len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// formatMetadata creates the author / print place / year line.
func formatMetadata(e catalog.Entry, availableWidth int) string {
	var parts []string
	if author := e.AuthorName(); author != "" {
		parts = append(parts, author)
	}
	if e.PrintLocationEnglish != "" {
		parts = append(parts, e.PrintLocationEnglish)
	}
	if e.PrintYear > 0 {
		parts = append(parts, strconv.Itoa(e.PrintYear))
	}

	if len(parts) == 0 {
		return "No metadata available"
	}
	return truncate(strings.Join(parts, " | "), availableWidth)
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
