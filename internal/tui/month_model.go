package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/report"
	"github.com/balkashynov/punch/internal/timemath"
)

// MonthSource is the ledger as seen by the month browser
type MonthSource interface {
	report.Querier
	Delete(id string) error
}

// Focus represents what UI element has focus
type Focus int

const (
	FocusTable Focus = iota
	FocusSearch
	FocusConfirmDelete
)

// MonthModel browses the shifts of one month with search
type MonthModel struct {
	width  int
	height int

	source  MonthSource
	month   time.Time // first day of the shown month
	search  string
	records []models.ShiftRecord
	agg     report.Aggregate

	selected    int
	currentPage int
	perPage     int

	focus       Focus
	searchQuery string // search being typed
	status      string
	err         error

	editID string // set when the user asked to edit the selected shift
}

// NewMonthModel loads the given month key
func NewMonthModel(source MonthSource, monthKey, search string) (MonthModel, error) {
	month, err := time.ParseInLocation(timemath.MonthLayout, monthKey, time.Local)
	if err != nil {
		return MonthModel{}, fmt.Errorf("invalid month %q", monthKey)
	}
	m := MonthModel{source: source, month: month, search: search, perPage: 10}
	m = m.reload()
	return m, m.err
}

// EditID is the shift the user chose to edit, if any
func (m MonthModel) EditID() string {
	return m.editID
}

func (m MonthModel) monthKey() string {
	return m.month.Format(timemath.MonthLayout)
}

func (m MonthModel) reload() MonthModel {
	records, err := report.FilteredRows(m.source, m.monthKey(), m.search)
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.records = records
	m.agg = report.MonthlyAggregate(records, m.monthKey())
	if m.selected >= len(records) {
		m.selected = max(0, len(records)-1)
	}
	m.currentPage = 0
	if m.perPage > 0 {
		m.currentPage = m.selected / m.perPage
	}
	return m
}

// Init does nothing; data is loaded up front
func (m MonthModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m MonthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.perPage = max(3, m.height-14)
		m.currentPage = m.selected / m.perPage
		return m, nil

	case tea.KeyMsg:
		switch m.focus {
		case FocusSearch:
			return m.handleSearchKeys(msg)
		case FocusConfirmDelete:
			return m.handleConfirmKeys(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if msg.String() == "esc" && m.search != "" {
				m.search = ""
				return m.reload(), nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.currentPage = m.selected / m.perPage
			}
		case "down", "j":
			if m.selected < len(m.records)-1 {
				m.selected++
				m.currentPage = m.selected / m.perPage
			}
		case "left", "h":
			m.month = m.month.AddDate(0, -1, 0)
			m.selected = 0
			return m.reload(), nil
		case "right", "l":
			m.month = m.month.AddDate(0, 1, 0)
			m.selected = 0
			return m.reload(), nil
		case "/":
			m.focus = FocusSearch
			m.searchQuery = m.search
		case "d":
			if len(m.records) > 0 {
				m.focus = FocusConfirmDelete
			}
		case "e", "enter":
			if len(m.records) > 0 {
				m.editID = m.records[m.selected].ID
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m MonthModel) handleSearchKeys(msg tea.KeyMsg) (MonthModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = FocusTable
		m.searchQuery = ""
	case tea.KeyEnter:
		m.focus = FocusTable
		m.search = m.searchQuery
		m.selected = 0
		return m.reload(), nil
	case tea.KeyBackspace:
		if r := []rune(m.searchQuery); len(r) > 0 {
			m.searchQuery = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.searchQuery += " "
	case tea.KeyRunes:
		m.searchQuery += string(msg.Runes)
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

func (m MonthModel) handleConfirmKeys(msg tea.KeyMsg) (MonthModel, tea.Cmd) {
	m.focus = FocusTable
	switch msg.String() {
	case "y", "Y":
		rec := m.records[m.selected]
		if err := m.source.Delete(rec.ID); err != nil {
			m.status = "Delete failed: " + err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted shift of %s", rec.WorkDate)
		return m.reload(), nil
	case "ctrl+c":
		return m, tea.Quit
	}
	m.status = "Delete cancelled"
	return m, nil
}

// View renders the browser
func (m MonthModel) View() string {
	width := m.width
	if width == 0 {
		width = 100
	}

	var bottom string
	switch m.focus {
	case FocusSearch:
		bottom = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Background(lipgloss.Color(ColorBorder)).
			Padding(0, 1).
			Width(width - 2).
			Render("Search: " + m.searchQuery + "█")
	case FocusConfirmDelete:
		bottom = warningStyle.Render(fmt.Sprintf("Delete shift of %s? y/N", m.records[m.selected].WorkDate))
	default:
		bottom = helpStyle.Width(width).Align(lipgloss.Center).
			Render("↑/↓ select · ←/→ month · / search · e edit · d delete · q quit")
	}

	if width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderSummary(), m.renderTable(width-2), m.renderStatus(), bottom)
	}
	tableWidth := width * 60 / 100
	detailWidth := width - tableWidth - 3
	content := lipgloss.JoinHorizontal(lipgloss.Top, m.renderTable(tableWidth), " ", m.renderDetails(detailWidth))
	return lipgloss.JoinVertical(lipgloss.Left, m.renderSummary(), content, m.renderStatus(), bottom)
}

func (m MonthModel) renderSummary() string {
	title := headerStyle.Render(m.month.Format("January 2006"))
	stats := fmt.Sprintf("  %s   %s   %s",
		field("Days", fmt.Sprint(m.agg.DayCount)),
		field("Total", timemath.FormatHours(m.agg.TotalHours)+"h"),
		field("Overtime", timemath.FormatHours(m.agg.OvertimeHours)+"h"))
	line := title + stats
	if m.search != "" {
		line += "   " + mutedStyle.Render(fmt.Sprintf("filter %q", m.search))
	}
	return line + "\n"
}

func (m MonthModel) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.status != "" {
		return mutedStyle.Render(m.status)
	}
	return ""
}

func (m MonthModel) renderTable(width int) string {
	var b strings.Builder
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width)

	if len(m.records) == 0 {
		b.WriteString(mutedStyle.Render("No shifts recorded"))
		return border.Render(b.String())
	}

	notesWidth := max(8, width-46)
	header := fmt.Sprintf(" %-10s  %-5s  %-5s  %6s  %6s  %-*s", "DATE", "IN", "OUT", "TOTAL", "OT", notesWidth, "NOTES")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start := m.currentPage * m.perPage
	end := min(start+m.perPage, len(m.records))
	for i := start; i < end; i++ {
		r := m.records[i]
		notes := r.Notes
		if rs := []rune(notes); len(rs) > notesWidth {
			notes = string(rs[:notesWidth-1]) + "…"
		}
		marker := " "
		if r.IsManual {
			marker = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorManual)).Render("✎")
		}
		ot := timemath.FormatHours(r.OtH)
		if r.OtH > 0 {
			ot = warningStyle.Render(fmt.Sprintf("%6s", ot))
		} else {
			ot = fmt.Sprintf("%6s", ot)
		}
		row := fmt.Sprintf("%s%-10s  %-5s  %-5s  %6s  %s  %-*s", marker, r.WorkDate,
			r.In().Format("15:04"), r.Out().Format("15:04"), timemath.FormatHours(r.TotalH), ot, notesWidth, notes)

		if i == m.selected {
			row = lipgloss.NewStyle().Background(lipgloss.Color(ColorSelected)).Bold(true).Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if pages := (len(m.records) + m.perPage - 1) / m.perPage; pages > 1 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("Page %d/%d (%d shifts)", m.currentPage+1, pages, len(m.records))))
	}
	return border.Render(strings.TrimRight(b.String(), "\n"))
}

func (m MonthModel) renderDetails(width int) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(width)

	if len(m.records) == 0 {
		return border.Render(mutedStyle.Render("Select a shift to view details"))
	}

	r := m.records[m.selected]
	kind := "clock in/out"
	if r.IsManual {
		kind = "manual"
	}
	lines := []string{
		headerStyle.Render(r.In().Format("Monday, Jan 2")),
		"",
		field("ID", ShortID(r.ID)),
		field("In", r.In().Format("2006-01-02 15:04")),
		field("Out", r.Out().Format("2006-01-02 15:04")),
		field("Total", timemath.FormatHours(r.TotalH)+"h"),
		field("Overtime", timemath.FormatHours(r.OtH)+"h"),
		field("Source", kind),
	}
	if r.Notes != "" {
		lines = append(lines, "", labelStyle.Render("Notes:"),
			lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).Width(width-4).Render(r.Notes))
	}
	return border.Render(strings.Join(lines, "\n"))
}
