// Package ui renders live check progress on a terminal.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"bestbefore/internal/checker"
)

// maxRows bounds the file list; finished files scroll away first.
const maxRows = 12

type progressModel struct {
	title    string
	events   <-chan checker.Event
	spinner  spinner.Model
	prog     progress.Model
	items    []fileItem
	index    map[string]int
	finished int
	failed   int
	tick     int
	width    int
	done     bool
}

type fileItem struct {
	path   string
	status string
	stage  checker.Stage
	seq    int // order in which the item last changed
}

type eventMsg checker.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders check progress
// until events is closed.
func NewProgressModel(title string, files []string, events <-chan checker.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
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

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(checker.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case progress.FrameMsg:
		model, cmd := m.prog.Update(msg)
		m.prog = model.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d files", m.title, m.finished, len(m.items))
	if m.failed > 0 {
		header += fmt.Sprintf(", %d with errors", m.failed)
	}
	header += ")"
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-4, 20)
	rows := m.visibleRows()
	for _, item := range rows {
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.path, nameWidth))
	}
	if hidden := len(m.items) - len(rows); hidden > 0 {
		fmt.Fprintf(&b, "  %12s %d more\n", "", hidden)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

// visibleRows picks in-flight files first, then the most recently finished.
func (m *progressModel) visibleRows() []fileItem {
	if len(m.items) <= maxRows {
		return m.items
	}
	rows := make([]fileItem, 0, maxRows)
	for _, item := range m.items {
		if item.status != "queued" && item.status != "done" && item.status != "error" {
			rows = append(rows, item)
			if len(rows) == maxRows {
				return rows
			}
		}
	}
	latest := make([]fileItem, 0, len(m.items))
	for _, item := range m.items {
		if item.status == "done" || item.status == "error" {
			latest = append(latest, item)
		}
	}
	sort.Slice(latest, func(i, j int) bool { return latest[i].seq > latest[j].seq })
	for _, item := range latest {
		if len(rows) == maxRows {
			break
		}
		rows = append(rows, item)
	}
	return rows
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

func (m *progressModel) applyEvent(ev checker.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if ev.File == "" || !ok {
		return nil
	}
	label := statusLabel(ev.Stage, ev.Status)
	if label == "" {
		return nil
	}
	item := &m.items[idx]
	wasFinished := item.status == "done" || item.status == "error"
	m.tick++
	item.status = label
	item.stage = ev.Stage
	item.seq = m.tick
	if !wasFinished && (label == "done" || label == "error") {
		m.finished++
		if label == "error" {
			m.failed++
		}
	}

	if len(m.items) == 0 {
		return nil
	}
	total := 0.0
	for _, it := range m.items {
		if it.status == "done" || it.status == "error" {
			total += 1.0
		} else {
			total += progressFromStage(it.stage)
		}
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func progressFromStage(stage checker.Stage) float64 {
	switch stage {
	case checker.StageRead:
		return 0.1
	case checker.StageParse:
		return 0.4
	case checker.StageEvaluate:
		return 0.8
	default:
		return 0.0
	}
}

func statusLabel(stage checker.Stage, status checker.Status) string {
	switch status {
	case checker.StatusQueued:
		return "queued"
	case checker.StatusDone:
		return "done"
	case checker.StatusError:
		return "error"
	case checker.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage checker.Stage) string {
	switch stage {
	case checker.StageRead:
		return "reading"
	case checker.StageParse:
		return "parsing"
	case checker.StageEvaluate:
		return "evaluating"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "reading", "parsing", "evaluating":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
