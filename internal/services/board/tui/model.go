// Package tui renders a board in the terminal with Bubble Tea.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
)

const (
	defaultWidth = 80
	labelWidth   = 16
	maxBarWidth  = 60
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// FrameMsg carries the time of one animation frame.
type FrameMsg time.Time

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// Model is the Bubble Tea model driving board from frame ticks.
type Model struct {
	board    *domain.Board
	interval time.Duration
	start    time.Time
	width    int
	status   string
}

// New creates a model that ticks board every interval.
func New(board *domain.Board, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return Model{board: board, interval: interval, start: time.Now(), width: defaultWidth}
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return frameCmd(m.interval)
}

// Update handles frames, keys and resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.board.Tick(time.Time(msg).Sub(m.start).Seconds())
		return m, frameCmd(m.interval)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.apply(domain.Input{Kind: domain.InputReset})
		case "+", "=":
			m.apply(domain.Input{Kind: domain.InputSetRate, Rate: m.board.Rate() * 2})
		case "-", "_":
			m.apply(domain.Input{Kind: domain.InputSetRate, Rate: m.board.Rate() / 2})
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) apply(in domain.Input) {
	in.Source = domain.SourceTUI
	if err := m.board.Apply(in); err != nil {
		m.status = apperrors.UserMessage(apperrors.GetCode(err), apperrors.GetMetadata(err))
		return
	}
	m.status = ""
}

// View renders the histogram, the latest path and the counters.
func (m Model) View() string {
	snap := m.board.Snapshot()
	histogram := snap.Histogram()

	var b strings.Builder
	b.WriteString(headerStyle.Render("Bean machine"))
	b.WriteString("\n")

	barWidth := min(maxBarWidth, max(1, m.width-labelWidth-12))
	for bin, count := range histogram.Bins {
		width := 0
		if histogram.Max > 0 {
			width = int(float64(count) / float64(histogram.Max) * float64(barWidth))
		}
		label := labelStyle.Render(fmt.Sprintf("bin %2d", bin))
		marker := " "
		if bin == snap.LastBin {
			marker = pathStyle.Render("●")
		}
		fmt.Fprintf(&b, "%s %s %s %d\n", label, marker, barStyle.Render(strings.Repeat("█", width)), count)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("last path"), pathStyle.Render(Directions(snap.LastPath(), snap.LastBin)))
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("paths"), snap.TotalPaths())
	fmt.Fprintf(&b, "%s %.2f updates/s × %d\n", labelStyle.Render("speed"), snap.Rate, snap.BatchSize)
	fmt.Fprintf(&b, "%s %.2f\n", labelStyle.Render("mean bin"), histogram.Mean())
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("r reset • + faster • - slower • q quit"))
	return b.String()
}

// Directions spells a path as L/R turns. last is the landing bin.
func Directions(path []int, last int) string {
	if len(path) == 0 || last < 0 {
		return "-"
	}
	turns := make([]byte, 0, len(path))
	for row, pin := range path {
		next := last
		if row+1 < len(path) {
			next = path[row+1]
		}
		if next == pin {
			turns = append(turns, 'L')
		} else {
			turns = append(turns, 'R')
		}
	}
	return string(turns)
}
