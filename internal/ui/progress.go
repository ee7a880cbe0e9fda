package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"docthrows/internal/driver"
)

const (
	statusQueued   = "queued"
	statusChecking = "checking"
	statusDone     = "done"
	statusIssues   = "issues"
)

type progressModel struct {
	title    string
	events   <-chan driver.Event
	spinner  spinner.Model
	prog     progress.Model
	items    []fileItem
	index    map[string]int
	done     int
	total    int
	aborted  int
	width    int
	finished bool
	canceled bool
}

type fileItem struct {
	path     string
	total    int
	done     int
	problems int
}

func (it fileItem) status() string {
	switch {
	case it.done == 0:
		return statusQueued
	case it.done < it.total:
		return statusChecking
	case it.problems > 0:
		return statusIssues
	default:
		return statusDone
	}
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-file
// validation progress fed by driver events.
func NewProgressModel(title string, files []driver.FileTotal, events <-chan driver.Event) tea.Model {
	return newProgressModel(title, files, events)
}

func newProgressModel(title string, files []driver.FileTotal, events <-chan driver.Event) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file.Path, total: file.Entities})
		index[file.Path] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

// Canceled reports whether the user interrupted the view.
func Canceled(m tea.Model) bool {
	pm, ok := m.(*progressModel)
	return ok && pm.canceled
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.canceled = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d)", m.title, m.done, m.total)
	if m.aborted > 0 {
		header = fmt.Sprintf("%s, %d aborted", header, m.aborted)
	}
	if m.finished {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	countWidth := 9
	nameWidth := m.width - statusWidth - countWidth - 5
	if nameWidth < 20 {
		nameWidth = 20
	}
	for _, item := range m.items {
		status := item.status()
		fmt.Fprintf(&b, "  %s %9s %s\n",
			styleStatus(status).Render(fmt.Sprintf("%12s", status)),
			fmt.Sprintf("%d/%d", item.done, item.total),
			truncate(item.path, nameWidth))
	}

	b.WriteString("\n")
	if m.finished {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	switch ev.Kind {
	case driver.EventBegin:
		m.total = ev.Total
		return nil
	case driver.EventEnd:
		m.done = ev.Done
		return m.prog.SetPercent(1.0)
	case driver.EventEntity:
	default:
		return nil
	}
	m.done = ev.Done
	if ev.Total > 0 {
		m.total = ev.Total
	}
	if ev.Aborted {
		m.aborted++
	}
	if idx, ok := m.index[ev.File]; ok {
		m.items[idx].done++
		m.items[idx].problems += ev.Diagnostics
	}
	if m.total == 0 {
		return nil
	}
	return m.prog.SetPercent(float64(m.done) / float64(m.total))
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case statusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case statusIssues:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case statusChecking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
