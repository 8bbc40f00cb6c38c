package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/timemath"
)

// Step represents the current step in the shift form
type Step int

const (
	StepDate Step = iota
	StepIn
	StepOut
	StepNotes
	StepSave
)

var stepLabels = []string{"Work date", "Time in", "Time out", "Notes", "Save"}

// ShiftSaver persists a manual shift
type ShiftSaver interface {
	UpsertManual(db.ManualShift) (*models.ShiftRecord, error)
}

// ShiftFormModel is the step-by-step form for adding or editing a shift
type ShiftFormModel struct {
	currentStep Step
	inputs      []textinput.Model
	width       int
	height      int

	saver     ShiftSaver
	now       time.Time
	editingID string
	initial   [4]string

	// State
	saved         *models.ShiftRecord
	cancelled     bool
	validationErr string

	showSaveModal   bool
	saveModalChoice bool // true for Yes
}

// NewShiftFormModel creates a form for a new shift, prefilled with values
// keyed "date", "in", "out" and "notes"
func NewShiftFormModel(saver ShiftSaver, now time.Time, prefilled map[string]string) ShiftFormModel {
	placeholders := []string{
		"yyyy-mm-dd, dd/mm/yyyy, today, yesterday",
		"HH:MM (24h)",
		"HH:MM, earlier than time in means next day",
		"Optional notes (Enter to skip)",
	}
	keys := []string{"date", "in", "out", "notes"}

	m := ShiftFormModel{
		saver:  saver,
		now:    now,
		inputs: make([]textinput.Model, len(placeholders)),
	}
	for i := range m.inputs {
		in := textinput.New()
		in.Width = 40
		in.Placeholder = placeholders[i]
		in.CharLimit = 32
		in.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		in.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		in.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
		if v, ok := prefilled[keys[i]]; ok {
			in.SetValue(v)
			m.initial[i] = v
		}
		m.inputs[i] = in
	}
	m.inputs[StepNotes].CharLimit = 500
	m.inputs[StepDate].Focus()
	return m
}

// NewEditShiftFormModel creates a form prefilled from an existing record
func NewEditShiftFormModel(saver ShiftSaver, now time.Time, rec models.ShiftRecord) ShiftFormModel {
	m := NewShiftFormModel(saver, now, map[string]string{
		"date":  rec.WorkDate,
		"in":    rec.In().Format("15:04"),
		"out":   rec.Out().Format("15:04"),
		"notes": rec.Notes,
	})
	m.editingID = rec.ID
	return m
}

// Init starts the cursor blink
func (m ShiftFormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m ShiftFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.showSaveModal {
			return m.handleModalKeys(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "esc":
			if !m.hasChanges() {
				m.cancelled = true
				return m, tea.Quit
			}
			m.showSaveModal = true
			m.saveModalChoice = true
			return m, nil
		case "enter":
			return m.handleEnter()
		case "tab", "down":
			return m.handleEnter()
		case "shift+tab", "up":
			return m.prevStep()
		}
	}

	var cmd tea.Cmd
	if m.currentStep < StepSave {
		m.inputs[m.currentStep], cmd = m.inputs[m.currentStep].Update(msg)
	}
	return m, cmd
}

func (m ShiftFormModel) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right":
		m.saveModalChoice = !m.saveModalChoice
	case "y", "Y":
		m.saveModalChoice = true
		return m.handleSaveChoice()
	case "n", "N":
		m.saveModalChoice = false
		return m.handleSaveChoice()
	case "enter":
		return m.handleSaveChoice()
	case "esc":
		m.showSaveModal = false
	case "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ShiftFormModel) value(s Step) string {
	return strings.TrimSpace(m.inputs[s].Value())
}

func (m ShiftFormModel) hasChanges() bool {
	for i := range m.inputs {
		if m.inputs[i].Value() != m.initial[i] {
			return true
		}
	}
	return false
}

// handleEnter validates the current field before moving on
func (m ShiftFormModel) handleEnter() (ShiftFormModel, tea.Cmd) {
	m.validationErr = ""

	switch m.currentStep {
	case StepDate:
		date, err := parser.ParseWorkDate(m.value(StepDate), m.now)
		if err != nil {
			m.validationErr = err.Error()
			return m, nil
		}
		m.inputs[StepDate].SetValue(date)
	case StepIn, StepOut:
		if _, _, err := parser.ParseClock(m.value(m.currentStep)); err != nil {
			m.validationErr = err.Error()
			return m, nil
		}
	case StepSave:
		return m.save()
	}
	return m.nextStep()
}

func (m ShiftFormModel) nextStep() (ShiftFormModel, tea.Cmd) {
	if m.currentStep < StepSave {
		m.inputs[m.currentStep].Blur()
		m.currentStep++
		if m.currentStep < StepSave {
			m.inputs[m.currentStep].Focus()
		}
	}
	return m, textinput.Blink
}

func (m ShiftFormModel) prevStep() (ShiftFormModel, tea.Cmd) {
	if m.currentStep > StepDate {
		if m.currentStep < StepSave {
			m.inputs[m.currentStep].Blur()
		}
		m.currentStep--
		m.inputs[m.currentStep].Focus()
	}
	return m, textinput.Blink
}

// shift builds the manual shift from the inputs
func (m ShiftFormModel) shift() (db.ManualShift, error) {
	date, err := parser.ParseWorkDate(m.value(StepDate), m.now)
	if err != nil {
		return db.ManualShift{}, err
	}
	in, err := parser.At(date, m.value(StepIn))
	if err != nil {
		return db.ManualShift{}, err
	}
	out, err := parser.At(date, m.value(StepOut))
	if err != nil {
		return db.ManualShift{}, err
	}
	if !out.After(in) {
		out = out.AddDate(0, 0, 1)
	}
	return db.ManualShift{
		WorkDate:  date,
		In:        in,
		Out:       out,
		Notes:     m.value(StepNotes),
		EditingID: m.editingID,
	}, nil
}

// save writes the shift; validation failures keep the form open
func (m ShiftFormModel) save() (ShiftFormModel, tea.Cmd) {
	ms, err := m.shift()
	if err != nil {
		m.validationErr = err.Error()
		return m, nil
	}
	rec, err := m.saver.UpsertManual(ms)
	if err != nil {
		var verr *db.ValidationError
		if errors.As(err, &verr) {
			m.jumpTo(verr.Field)
		}
		m.validationErr = err.Error()
		return m, nil
	}
	m.saved = rec
	return m, tea.Quit
}

// jumpTo moves focus to the field a validation error points at
func (m *ShiftFormModel) jumpTo(field string) {
	target := StepSave
	switch field {
	case "workDate":
		target = StepDate
	case "in":
		target = StepIn
	case "out":
		target = StepOut
	}
	if m.currentStep < StepSave {
		m.inputs[m.currentStep].Blur()
	}
	m.currentStep = target
	if target < StepSave {
		m.inputs[target].Focus()
	}
}

func (m ShiftFormModel) handleSaveChoice() (ShiftFormModel, tea.Cmd) {
	m.showSaveModal = false
	if m.saveModalChoice {
		return m.save()
	}
	m.cancelled = true
	return m, tea.Quit
}

// View renders the form
func (m ShiftFormModel) View() string {
	if m.cancelled || m.saved != nil {
		return ""
	}

	form := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2).
		Render(m.renderSteps())

	view := lipgloss.JoinHorizontal(lipgloss.Top, form, "  ", m.renderPreview())
	if m.showSaveModal {
		return m.renderSaveModal()
	}
	return view
}

func (m ShiftFormModel) renderSteps() string {
	var b strings.Builder

	title := "Add shift"
	if m.editingID != "" {
		title = "Edit shift " + ShortID(m.editingID)
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	for i, label := range stepLabels {
		s := Step(i)
		switch {
		case s == m.currentStep:
			b.WriteString(headerStyle.Render("▶ " + label))
		case s < StepSave && s < m.currentStep && m.value(s) != "":
			b.WriteString(successStyle.Render("✓ " + label))
		default:
			b.WriteString(labelStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.currentStep < StepSave {
		b.WriteString(valueStyle.Render(stepLabels[m.currentStep]))
		b.WriteString("\n")
		b.WriteString(m.inputs[m.currentStep].View())
	} else {
		b.WriteString("Press Enter to save the shift")
	}

	if m.validationErr != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("✗ " + m.validationErr))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("Enter/Tab: next · Shift+Tab: back · Esc: cancel"))
	return b.String()
}

// renderPreview shows the totals the shift would get
func (m ShiftFormModel) renderPreview() string {
	lines := []string{headerStyle.Render("Preview"), ""}

	ms, err := m.shift()
	if err != nil {
		lines = append(lines, mutedStyle.Render("Fill in date and times to see totals"))
		return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
	}

	total, ot := timemath.Totals(ms.In, ms.Out, models.StandardHours)
	lines = append(lines,
		field("Work date", ms.WorkDate),
		field("In", ms.In.Format("Mon Jan 2 15:04")),
		field("Out", ms.Out.Format("Mon Jan 2 15:04")),
		field("Total", timemath.FormatHours(total)+"h"),
	)
	if ot > 0 {
		lines = append(lines, labelStyle.Render("Overtime: ")+warningStyle.Render(timemath.FormatHours(ot)+"h"))
	} else {
		lines = append(lines, field("Overtime", "0.00h"))
	}
	if ms.Notes != "" {
		lines = append(lines, field("Notes", ms.Notes))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func (m ShiftFormModel) renderSaveModal() string {
	yes := lipgloss.NewStyle().Padding(0, 2)
	no := lipgloss.NewStyle().Padding(0, 2)
	if m.saveModalChoice {
		yes = yes.Background(lipgloss.Color(ColorAccentBright)).Foreground(lipgloss.Color("#000000")).Bold(true)
	} else {
		no = no.Background(lipgloss.Color(ColorError)).Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	}

	content := fmt.Sprintf("Save shift?\n\n%s\n\n%s",
		lipgloss.JoinHorizontal(lipgloss.Center, yes.Render("Yes"), "   ", no.Render("No")),
		"← → or Y/N to choose, Enter to confirm\nEsc to keep editing")

	modal := lipgloss.NewStyle().
		Width(46).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentBright)).
		Background(lipgloss.Color(ColorCardBackground)).
		Padding(1).
		Align(lipgloss.Center).
		Render(content)

	if m.width == 0 || m.height == 0 {
		return modal
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// ShortID trims a uuid for display
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
