package viz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 300
	frameInterval   = time.Second / 30
)

// Point is one particle to draw.
type Point struct {
	Pos  r3.Vec
	Kind int
}

// Snapshot is what a frame shows. Positions are folded into the box.
type Snapshot struct {
	TimeNs      float64
	Box         r3.Vec
	Points      []Point
	Energy      float64
	Temperature float64
	Backend     string
}

// Source advances a simulation and reports its state.
type Source interface {
	Advance(ctx context.Context, steps int) error
	Snapshot() (Snapshot, error)
}

type TickMsg time.Time

// Model is the Bubble Tea model of the visual mode.
type Model struct {
	ctx           context.Context
	src           Source
	stepsPerFrame int
	title         string

	canvas        *Canvas
	camera        *Camera
	autoRotate    bool
	running       bool
	snap          Snapshot
	energyHistory []float64
	frames        int
	err           error
}

// NewModel builds the visual model. Every frame advances stepsPerFrame
// steps.
func NewModel(ctx context.Context, src Source, stepsPerFrame int, title string) (Model, error) {
	snap, err := src.Snapshot()
	if err != nil {
		return Model{}, err
	}
	extent := 0.5 * max(snap.Box.X, snap.Box.Y, snap.Box.Z)
	return Model{
		ctx:           ctx,
		src:           src,
		stepsPerFrame: stepsPerFrame,
		title:         title,
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(extent),
		autoRotate:    true,
		running:       true,
		snap:          snap,
		energyHistory: make([]float64, 0, historyCapacity),
	}, nil
}

// Err is the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

// Frames is the number of frames the model advanced.
func (m Model) Frames() int { return m.frames }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "a":
			m.autoRotate = !m.autoRotate
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		if m.running {
			if err := m.step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		if m.autoRotate {
			m.camera.RotateY(0.02)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() error {
	if err := m.src.Advance(m.ctx, m.stepsPerFrame); err != nil {
		return err
	}
	snap, err := m.src.Snapshot()
	if err != nil {
		return err
	}
	m.snap = snap
	m.frames++
	m.energyHistory = append(m.energyHistory, snap.Energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	return nil
}

type projected struct {
	x, y  int
	depth float64
	color lipgloss.Color
}

// draw paints the box and the particles back to front.
func (m *Model) draw() {
	m.canvas.Clear()
	sw, sh := m.canvas.PixelSize()
	center := r3.Scale(0.5, m.snap.Box)

	for _, e := range boxEdges(m.snap.Box) {
		x0, y0, _, ok0 := m.camera.Project(e[0], sw, sh)
		x1, y1, _, ok1 := m.camera.Project(e[1], sw, sh)
		if ok0 || ok1 {
			m.canvas.DrawLine(x0, y0, x1, y1, boxColor)
		}
	}

	pts := make([]projected, 0, len(m.snap.Points))
	for _, p := range m.snap.Points {
		x, y, d, ok := m.camera.Project(r3.Sub(p.Pos, center), sw, sh)
		if !ok {
			continue
		}
		pts = append(pts, projected{x, y, d, kindColors[p.Kind]})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].depth < pts[j].depth })
	for _, p := range pts {
		m.canvas.SetColor(p.x, p.y, p.color)
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy (kJ/mol)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4f ns", m.snap.TimeNs)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.2f", m.snap.Energy)) + "\n")
	s.WriteString(labelStyle.Render("kT") + valueStyle.Render(fmt.Sprintf("%.3f", m.snap.Temperature)) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", len(m.snap.Points))) + "\n")
	if m.snap.Backend != "" {
		s.WriteString(labelStyle.Render("Backend") + valueStyle.Render(m.snap.Backend) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause A:Rotate Q:Quit\nx/y/z:Turn +/-:Zoom"))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
