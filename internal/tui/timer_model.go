package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/timemath"
)

// TimerModel shows the running open shift until the user clocks out or leaves
type TimerModel struct {
	width  int
	height int

	open      models.OpenShift
	clock     clock.Clock
	limit     float64 // hours after which the shift is flagged as too long
	elapsed   time.Duration
	animFrame int

	clockingOut bool // o pressed: clock out on exit
	exiting     bool // esc/q pressed: leave the shift running
}

type timerTickMsg struct{}

type animationTickMsg struct{}

// NewTimerModel creates a timer for the open shift
func NewTimerModel(open models.OpenShift, c clock.Clock, tooLongHours float64) TimerModel {
	if tooLongHours <= 0 {
		tooLongHours = models.DefaultSettings().TooLongHours
	}
	return TimerModel{
		open:    open,
		clock:   c,
		limit:   tooLongHours,
		elapsed: c.Now().Sub(open.In()),
	}
}

func timerTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return timerTickMsg{} })
}

func animationTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg { return animationTickMsg{} })
}

// Init starts the timer and animation tickers
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(timerTick(), animationTick())
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	done := m.clockingOut || m.exiting

	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsed = m.clock.Now().Sub(m.open.In())
		if done {
			return m, nil
		}
		return m, timerTick()

	case animationTickMsg:
		m.animFrame = (m.animFrame + 1) % 4
		if done {
			return m, nil
		}
		return m, animationTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "o", "O":
			m.clockingOut = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.exiting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// runningHours is the elapsed shift time in hours
func (m TimerModel) runningHours() float64 {
	return timemath.ElapsedHours(m.open.In(), m.open.In().Add(m.elapsed))
}

// View renders the timer
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	help := helpStyle.Width(m.width).Align(lipgloss.Center).
		Render("o clock out · esc/q leave running · ctrl+c quit")
	contentHeight := m.height - 2

	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderClockPanel(m.width, contentHeight), help)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2
	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderClockPanel(leftWidth, contentHeight),
		"  ",
		m.renderShiftPanel(rightWidth, contentHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, help)
}

func (m TimerModel) renderClockPanel(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	frames := []string{"◐", "◓", "◑", "◒"}
	title := fmt.Sprintf("%s  ON SHIFT  %s", frames[m.animFrame], frames[m.animFrame])

	parts := []string{
		center.Inherit(headerStyle).Render(title),
		center.Render(renderBigDigits(m.elapsed)),
		center.Inherit(mutedStyle).Render("Clocked in at " + m.open.In().Format("15:04")),
	}
	if h := m.runningHours(); h >= m.limit {
		parts = append(parts, center.Inherit(warningStyle).
			Render(fmt.Sprintf("Still clocked in after %sh, consider clocking out", timemath.FormatHours(h))))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(parts, "\n\n"))
}

func (m TimerModel) renderShiftPanel(width, height int) string {
	h := m.runningHours()
	ot := timemath.OvertimeHours(h, models.StandardHours)
	remaining := models.StandardHours - h
	if remaining < 0 {
		remaining = 0
	}

	lines := []string{
		headerStyle.Render("Current shift"),
		"",
		field("Work date", m.open.WorkDate),
		field("Clock in", m.open.In().Format("Mon Jan 2, 15:04")),
		field("Worked", timemath.FormatHours(timemath.Round2(h))+"h"),
		field("Standard day", timemath.FormatHours(models.StandardHours)+"h"),
		field("Left of standard", timemath.FormatHours(timemath.Round2(remaining))+"h"),
	}
	otLine := field("Overtime", timemath.FormatHours(timemath.Round2(ot))+"h")
	if ot > 0 {
		otLine = labelStyle.Render("Overtime: ") + warningStyle.Render(timemath.FormatHours(timemath.Round2(ot))+"h")
	}
	lines = append(lines, otLine, "", m.renderProgress(width-8, h))

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

// renderProgress draws a bar filled up to the standard day
func (m TimerModel) renderProgress(width int, hours float64) string {
	if width < 10 {
		width = 10
	}
	ratio := hours / models.StandardHours
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	color := ColorAccentBright
	if hours > models.StandardHours {
		color = ColorWarning
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder)).Render(strings.Repeat("░", width-filled))
	return bar
}

// bigGlyphs are 5-row block glyphs for the elapsed time display
var bigGlyphs = map[rune][5]string{
	'0': {"▄▀▀▀▄", "█   █", "█   █", "█   █", "▀▄▄▄▀"},
	'1': {"  ▄█ ", "   █ ", "   █ ", "   █ ", "  ▄█▄"},
	'2': {"▄▀▀▀▄", "    █", "  ▄▀ ", "▄▀   ", "█▄▄▄▄"},
	'3': {"▄▀▀▀▄", "    █", "  ▀▀▄", "    █", "▀▄▄▄▀"},
	'4': {"█   █", "█   █", "▀▀▀▀█", "    █", "    █"},
	'5': {"█▀▀▀▀", "█    ", "▀▀▀▀▄", "    █", "▀▄▄▄▀"},
	'6': {"▄▀▀▀ ", "█    ", "█▀▀▀▄", "█   █", "▀▄▄▄▀"},
	'7': {"▀▀▀▀█", "   █ ", "  █  ", " █   ", " █   "},
	'8': {"▄▀▀▀▄", "█   █", "▄▀▀▀▄", "█   █", "▀▄▄▄▀"},
	'9': {"▄▀▀▀▄", "█   █", "▀▄▄▄█", "    █", " ▄▄▄▀"},
	':': {"     ", "  ▪  ", "     ", "  ▪  ", "     "},
}

func renderBigDigits(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	text := fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)

	var rows [5]strings.Builder
	for _, r := range text {
		glyph, ok := bigGlyphs[r]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i].WriteString(glyph[i])
			rows[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = style.Render(rows[i].String())
	}
	return strings.Join(out, "\n")
}
