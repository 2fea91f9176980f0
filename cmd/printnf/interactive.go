package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"

	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/host"
	"github.com/wippyai/wasm-printnf/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	logStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("#666666"))
)

// logHeight is the number of terminal rows kept for guest output.
const logHeight = 6

// syncBuffer collects guest output written from the frame loop.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type tickMsg time.Time

type canvasModel struct {
	err    error
	last   time.Time
	s      *session
	out    *syncBuffer
	log    viewport.Model
	pixels [][]host.Color
	opts   runOptions
	counts map[runtime.FrameResult]int
	fps    int
	cols   int
	rows   int
	paused bool
}

func newCanvasModel(s *session, out *syncBuffer, opts runOptions, fps, width, height int) *canvasModel {
	m := &canvasModel{
		s:      s,
		out:    out,
		opts:   opts,
		fps:    fps,
		counts: make(map[runtime.FrameResult]int),
		log:    viewport.New(width, logHeight),
	}
	m.resize(width, height)
	m.pixels = rasterize(s.rec.Take(), nil, m.cols, m.rows, opts.width, opts.height)
	return m
}

func (m *canvasModel) resize(width, height int) {
	m.cols = max(width, 1)
	m.rows = max(height-logHeight-4, 1)
	m.log.Width = width
	m.log.Height = logHeight
}

func (m *canvasModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *canvasModel) Init() tea.Cmd {
	m.last = time.Now()
	return m.tick()
}

func (m *canvasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.pixels = rasterize(nil, m.pixels, m.cols, m.rows, m.opts.width, m.opts.height)

	case tickMsg:
		now := time.Time(msg)
		dt := now.Sub(m.last).Seconds()
		m.last = now
		if !m.paused && m.err == nil {
			res, err := m.s.inst.Step(context.Background(), dt)
			if err != nil {
				m.err = err
			}
			m.counts[res]++
			if ops := m.s.rec.Take(); len(ops) > 0 {
				m.pixels = rasterize(ops, m.pixels, m.cols, m.rows, m.opts.width, m.opts.height)
			}
		}
		m.log.SetContent(m.out.String())
		m.log.GotoBottom()
		return m, m.tick()
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m *canvasModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("printnf"))
	b.WriteString(" ")
	b.WriteString(statStyle.Render(fmt.Sprintf("%dx%d  drawn %d  skipped %d  long %d",
		m.opts.width, m.opts.height,
		m.counts[runtime.FrameDrawn], m.counts[runtime.FrameSkipped], m.counts[runtime.FrameLong])))
	b.WriteString("\n")

	for _, row := range m.pixels {
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString(logStyle.Render(m.log.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause • ↑/↓ scroll output • q quit"))
	return b.String()
}

// renderRow styles runs of equal color together.
func renderRow(row []host.Color) string {
	var b strings.Builder
	for i := 0; i < len(row); {
		j := i + 1
		for j < len(row) && row[j] == row[i] {
			j++
		}
		style := lipgloss.NewStyle().Background(lipgloss.Color(hexColor(row[i])))
		b.WriteString(style.Render(strings.Repeat(" ", j-i)))
		i = j
	}
	return b.String()
}

func toColorful(c host.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func hexColor(c host.Color) string {
	return toColorful(c).Hex()
}

// blend paints src over dst using src's alpha.
func blend(dst, src host.Color) host.Color {
	if src.A == 255 {
		return src
	}
	r, g, b := toColorful(dst).BlendRgb(toColorful(src), float64(src.A)/255).Clamped().RGB255()
	return host.Color{R: r, G: g, B: b, A: 255}
}

// rasterize replays canvas operations onto a cols by rows grid that maps the
// guest window of w by h units. prev is kept when it has the right shape.
func rasterize(ops []host.Op, prev [][]host.Color, cols, rows int, w, h int32) [][]host.Color {
	grid := prev
	if len(grid) != rows || (rows > 0 && len(grid[0]) != cols) {
		grid = make([][]host.Color, rows)
		for y := range grid {
			grid[y] = make([]host.Color, cols)
		}
	}
	if w <= 0 || h <= 0 {
		return grid
	}
	sx := float32(cols) / float32(w)
	sy := float32(rows) / float32(h)

	for _, op := range ops {
		switch op.Kind {
		case host.OpClear:
			for y := range grid {
				clear(grid[y])
			}
		case host.OpClearBackground:
			for y := range grid {
				for x := range grid[y] {
					grid[y][x] = blend(grid[y][x], op.Color)
				}
			}
		case host.OpFillRect:
			r := op.Rect
			x0 := clampCell(r.X*sx, cols)
			x1 := clampCell((r.X+float32(r.W))*sx, cols)
			y0 := clampCell(r.Y*sy, rows)
			y1 := clampCell((r.Y+float32(r.H))*sy, rows)
			if x1 == x0 && x0 < cols {
				x1 = x0 + 1
			}
			if y1 == y0 && y0 < rows {
				y1 = y0 + 1
			}
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					grid[y][x] = blend(grid[y][x], op.Color)
				}
			}
		}
	}
	return grid
}

func clampCell(v float32, n int) int {
	switch {
	case v < 0:
		return 0
	case int(v) > n:
		return n
	}
	return int(v)
}

func runInteractive(a *app, wasm []byte, opts runOptions) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.InvalidInput(errors.PhaseConfig, "interactive mode needs a terminal")
	}
	width, height, err := term.GetSize(fd)
	if err != nil {
		return err
	}
	fps := a.v.GetInt(keyFPS)
	if fps <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "fps must be positive")
	}

	ctx := context.Background()
	out := &syncBuffer{}
	s, err := a.startSession(ctx, wasm, out, opts)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	m := newCanvasModel(s, out, opts, fps, width, height)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
