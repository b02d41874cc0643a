package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hardgas/internal/metrics"
	"github.com/san-kum/hardgas/internal/physics"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	maxStepsFrame   = 4096
	gifPath         = "hardgas.gif"
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a box in real time and draws it.
type Model struct {
	box           *physics.Box
	reset         func() (*physics.Box, error)
	t, dt         float64
	stepsPerFrame int
	sampleEvery   int
	window        int
	bounces       int
	canvas        *Canvas
	running       bool
	energyHistory []float64
	pressure      []metrics.PressureSample
	recording     bool
	frames        []*image.Paletted
	err           error
}

// NewModel advances box by stepsPerFrame steps of dt per frame and samples
// pressure every sampleEvery steps.
func NewModel(box *physics.Box, dt float64, stepsPerFrame, sampleEvery int) Model {
	return Model{
		box:           box,
		dt:            dt,
		stepsPerFrame: max(1, stepsPerFrame),
		sampleEvery:   max(1, sampleEvery),
		canvas:        NewCanvas(width, height),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
	}
}

// WithReset installs the function the r key uses to rebuild the box.
func (m Model) WithReset(fn func() (*physics.Box, error)) Model {
	m.reset = fn
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.err = m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, maxStepsFrame)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "g":
			if m.recording {
				m.err = m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs one frame worth of steps.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		stats := m.box.Step(m.dt)
		m.t += m.dt
		m.window++
		m.bounces += stats.Bounces

		if m.window == m.sampleEvery {
			m.pressure = append(m.pressure, metrics.SamplePressure(m.box, m.window, m.dt, m.t))
			if len(m.pressure) > historyCapacity {
				m.pressure = m.pressure[1:]
			}
			m.box.ResetAccumulators()
			m.window = 0
		}
	}

	m.energyHistory = append(m.energyHistory, m.box.TotalKineticEnergy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

// restart rebuilds the box and clears all history.
func (m *Model) restart() {
	if m.reset == nil {
		return
	}
	box, err := m.reset()
	if err != nil {
		m.err = err
		return
	}
	m.box = box
	m.t = 0
	m.window = 0
	m.bounces = 0
	m.energyHistory = m.energyHistory[:0]
	m.pressure = nil
}

// project maps box coordinates to canvas sub-pixels, y up.
func (m *Model) project(x, y float64) (int, int) {
	cw, ch := m.canvas.SubWidth()-1, m.canvas.SubHeight()-1
	px := int(math.Round(x / m.box.W * float64(cw)))
	py := int(math.Round((1 - y/m.box.H) * float64(ch)))
	return px, py
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.DrawRect(0, 0, m.canvas.SubWidth()-1, m.canvas.SubHeight()-1)

	scale := float64(m.canvas.SubWidth()-1) / m.box.W
	for _, p := range m.box.Particles() {
		x, y := m.project(p.Pos.X, p.Pos.Y)
		r := int(p.Radius * scale)
		if r < 1 {
			m.canvas.Set(x, y)
			continue
		}
		m.canvas.FillDisc(x, y, r)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render("HARD-DISC GAS") + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecord.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3f", m.t))
	row("Particles", fmt.Sprintf("%d", m.box.Len()))
	row("Energy", fmt.Sprintf("%.6f", m.box.TotalKineticEnergy()))
	row("Bounces", fmt.Sprintf("%d", m.bounces))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerFrame))

	if n := len(m.pressure); n > 0 {
		last := m.pressure[n-1]
		row("P_exp", fmt.Sprintf("%.6f", last.Exp))
		row("P_teo", fmt.Sprintf("%.6f", last.Teo))

		exp := make([]float64, n)
		for i, p := range m.pressure {
			exp[i] = p.Exp
		}
		row("History", Sparkline(exp, 24))
	}
	row("Window", ProgressBar(float64(m.window)/float64(m.sampleEvery), 20))

	if m.err != nil {
		s.WriteString("\n" + StatusRecord.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:Speed G:Record"))
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

// captureFrame rasterises the canvas into a two-colour GIF frame.
func (m *Model) captureFrame() {
	const dot = 4
	img := image.NewPaletted(
		image.Rect(0, 0, m.canvas.SubWidth()*dot, m.canvas.SubHeight()*dot),
		color.Palette{color.Black, color.White},
	)
	for y := 0; y < m.canvas.SubHeight(); y++ {
		for x := 0; x < m.canvas.SubWidth(); x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// Run starts the program on the alternate screen.
func Run(m Model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
