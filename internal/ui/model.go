package ui

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/kinema/internal/engine"
	"github.com/olivier-w/kinema/internal/motion"
	"github.com/olivier-w/kinema/internal/util"
)

// Scene selects which part of the engine the demo is exercising.
type Scene uint8

const (
	SceneSprings Scene = iota
	SceneStagger
	SceneTimeline
	SceneTransition
	sceneCount
)

func (s Scene) String() string {
	switch s {
	case SceneSprings:
		return "springs"
	case SceneStagger:
		return "stagger"
	case SceneTimeline:
		return "timeline"
	case SceneTransition:
		return "transition"
	default:
		return "unknown"
	}
}

// SceneByName maps a command-line argument to a scene.
func SceneByName(name string) (Scene, bool) {
	for s := Scene(0); s < sceneCount; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return SceneSprings, false
}

const (
	springBarCount   = 6
	staggerCellCount = 24
)

// Model is the Bubbletea model for the kinema demo. It only reads and
// retargets engine handles; all integration happens on the engine's own
// frame loop.
type Model struct {
	eng   *engine.Engine
	scene Scene

	width    int
	height   int
	quitting bool

	bars []engine.SpringHandle

	staggerDelays  []time.Duration
	staggerCells   []engine.SpringHandle
	staggerStart   time.Time
	staggerTrig    []bool
	staggerOrigin  int
	staggerEased   bool
	staggerRunning bool

	timeline        engine.TimelineHandle
	timelineBars    []engine.SpringHandle
	timelineTotal   float64
	timelinePlaying bool
	timelineErr     string
	progress        progress.Model

	spinner       spinner.Model
	transitioning bool
	transitionErr string
	darkTheme     bool

	indicator smoothValue
}

// New creates the demo model over an engine.
func New(eng *engine.Engine, scene Scene) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	pr := progress.New(
		progress.WithScaledGradient("#FF8C00", "#FF5F1F"),
		progress.WithoutPercentage(),
	)

	m := Model{
		eng:       eng,
		scene:     scene,
		spinner:   sp,
		progress:  pr,
		indicator: newSmoothValue(60, 7.0, 0.8),
	}
	m.indicator.jump(float64(tabOffset(scene)))
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(), m.spinner.Tick, m.enterSceneCmd(), tea.SetWindowTitle("kinema"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		m.tickStagger()
		m.indicator.step(float64(tabOffset(m.scene)))
		return m, frameCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case transitionDoneMsg:
		m.transitioning = false
		if msg.err != nil {
			m.transitionErr = msg.err.Error()
		} else {
			m.transitionErr = ""
			m.darkTheme = !m.darkTheme
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := msg.Width - 14
		if barWidth < 20 {
			barWidth = 20
		}
		if barWidth > 60 {
			barWidth = 60
		}
		m.progress.Width = barWidth
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.eng.Destroy()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case "1", "2", "3", "4":
		m.scene = Scene(msg.String()[0] - '1')
		return m, m.enterSceneCmd()

	case " ":
		switch m.scene {
		case SceneSprings:
			m.scatterBars()
		case SceneStagger:
			m.startStagger()
		case SceneTimeline:
			m.toggleTimeline()
		case SceneTransition:
			if !m.transitioning {
				m.transitioning = true
				return m, tea.Batch(m.spinner.Tick, m.startTransitionCmd())
			}
		}
		return m, nil

	case "r":
		switch m.scene {
		case SceneSprings:
			m.recallBars()
		case SceneTimeline:
			if m.timeline.ID != "" {
				m.timeline.Reset()
				m.timelinePlaying = false
				for _, h := range m.timelineBars {
					h.SetTarget(0)
				}
			}
		}
		return m, nil

	case "o":
		if m.scene == SceneStagger {
			m.staggerOrigin = (m.staggerOrigin + 1) % 4
			m.startStagger()
		}
		return m, nil

	case "e":
		if m.scene == SceneStagger {
			m.staggerEased = !m.staggerEased
			m.startStagger()
		}
		return m, nil
	}

	return m, nil
}

// enterSceneCmd lazily builds the active scene's engine objects.
func (m *Model) enterSceneCmd() tea.Cmd {
	switch m.scene {
	case SceneSprings:
		m.ensureBars()
	case SceneStagger:
		if m.staggerCells == nil {
			m.startStagger()
		}
	case SceneTimeline:
		if m.timeline.ID == "" {
			m.buildTimeline()
		}
	}
	return nil
}

func (m *Model) ensureBars() {
	if m.bars != nil {
		return
	}
	for i := 0; i < springBarCount; i++ {
		h, err := m.eng.CreateSpring(fmt.Sprintf("bar-%d", i), 0.5, motion.Config{
			Stiffness: 140 + 30*float64(i),
			Damping:   12 + 2*float64(i),
		})
		if err != nil {
			continue
		}
		m.bars = append(m.bars, h)
	}
}

func (m *Model) scatterBars() {
	m.ensureBars()
	for _, h := range m.bars {
		h.SetTarget(rand.Float64())
	}
}

func (m *Model) recallBars() {
	m.ensureBars()
	for _, h := range m.bars {
		h.SetTarget(0.5)
	}
}

func (m *Model) staggerOriginValue() motion.Origin {
	switch m.staggerOrigin {
	case 1:
		return motion.FromLast
	case 2:
		return motion.FromCenter
	case 3:
		return motion.FromIndex(staggerCellCount / 3)
	default:
		return motion.FromFirst
	}
}

func (m *Model) staggerOriginLabel() string {
	switch m.staggerOrigin {
	case 1:
		return "last"
	case 2:
		return "center"
	case 3:
		return fmt.Sprintf("index %d", staggerCellCount/3)
	default:
		return "first"
	}
}

func (m *Model) startStagger() {
	cfg := motion.StaggerConfig{
		Children:     staggerCellCount,
		DelayBetween: 40 * time.Millisecond,
		From:         m.staggerOriginValue(),
	}
	if m.staggerEased {
		cfg.Ease = func(t float64) float64 { return t * t }
	}
	delays, err := motion.Delays(cfg)
	if err != nil {
		return
	}
	m.staggerDelays = delays

	if m.staggerCells == nil {
		for i := 0; i < staggerCellCount; i++ {
			h, err := m.eng.CreateSpring(fmt.Sprintf("cell-%d", i), 0, motion.Config{
				Stiffness: 230,
				Damping:   16,
			})
			if err != nil {
				continue
			}
			m.staggerCells = append(m.staggerCells, h)
		}
	}
	for _, h := range m.staggerCells {
		h.SetTarget(0)
	}
	m.staggerTrig = make([]bool, len(m.staggerCells))
	m.staggerStart = time.Now()
	m.staggerRunning = true
}

// tickStagger releases each cell once its computed delay has elapsed.
func (m *Model) tickStagger() {
	if !m.staggerRunning {
		return
	}
	elapsed := time.Since(m.staggerStart)
	done := true
	for i, h := range m.staggerCells {
		if m.staggerTrig[i] {
			continue
		}
		if elapsed >= m.staggerDelays[i] {
			h.SetTarget(1)
			m.staggerTrig[i] = true
		} else {
			done = false
		}
	}
	if done {
		m.staggerRunning = false
	}
}

func (m *Model) buildTimeline() {
	steps := []motion.Step{
		{Target: "seq-a", Motion: motion.MotionConfig{To: 1}, At: "0"},
		{Target: "seq-b", Motion: motion.MotionConfig{To: 1}, At: "+250"},
		{Target: "seq-c", Motion: motion.MotionConfig{To: 1}, At: "+500"},
		{Target: "seq-d", Motion: motion.MotionConfig{To: 1}, At: "1000"},
	}
	m.timelineTotal = 1000

	m.timelineBars = nil
	for _, name := range []string{"seq-a", "seq-b", "seq-c", "seq-d"} {
		h, err := m.eng.CreateSpring(name, 0, motion.Config{Stiffness: 200, Damping: 20})
		if err != nil {
			continue
		}
		m.timelineBars = append(m.timelineBars, h)
	}

	tl, err := m.eng.CreateTimeline(steps)
	if err != nil {
		m.timelineErr = err.Error()
		return
	}
	m.timeline = tl
}

func (m *Model) toggleTimeline() {
	if m.timeline.ID == "" {
		return
	}
	if m.timeline.Complete() {
		m.timeline.Reset()
		for _, h := range m.timelineBars {
			h.SetTarget(0)
		}
		m.timeline.Start()
		m.timelinePlaying = true
		return
	}
	if m.timelinePlaying {
		m.timeline.Pause()
		m.timelinePlaying = false
	} else {
		m.timeline.Start()
		m.timelinePlaying = true
	}
}

func (m Model) startTransitionCmd() tea.Cmd {
	eng := m.eng
	return func() tea.Msg {
		err := eng.StartViewTransition(context.Background(), engine.TransitionConfig{
			Name:     "theme",
			Duration: 400 * time.Millisecond,
			Easing:   "ease-in-out",
		})
		return transitionDoneMsg{err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 40 {
		w = 60
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render("kinema"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.scene {
	case SceneSprings:
		b.WriteString(m.viewSprings(w))
	case SceneStagger:
		b.WriteString(m.viewStagger())
	case SceneTimeline:
		b.WriteString(m.viewTimeline(w))
	case SceneTransition:
		b.WriteString(m.viewTransition())
	}

	b.WriteString("\n  ")
	b.WriteString(helpStyle.Render(helpText(m.scene)))
	b.WriteString("\n")
	return b.String()
}

// tabOffset returns the column of a scene's tab label, the indicator's
// resting place.
func tabOffset(scene Scene) int {
	offset := 2
	for s := Scene(0); s < scene; s++ {
		offset += len(s.String()) + 3
	}
	return offset
}

func (m Model) renderTabs() string {
	var tabs []string
	for s := Scene(0); s < sceneCount; s++ {
		label := s.String()
		if s == m.scene {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	line := "  " + strings.Join(tabs, " · ")
	underline := spaces(int(m.indicator.pos)) + barStyle.Render(strings.Repeat("▔", len(m.scene.String())))
	return line + "\n" + underline
}

func (m Model) viewSprings(w int) string {
	var b strings.Builder
	barWidth := w - 14
	if barWidth > 60 {
		barWidth = 60
	}
	for i, h := range m.bars {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			labelStyle.Render(fmt.Sprintf("bar %d", i)),
			renderLevelBar(h.Position(), barWidth)))
	}
	b.WriteString("\n  ")
	b.WriteString(statusStyle.Render("each bar is one registered spring; stiffer springs snap faster"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewStagger() string {
	levels := make([]float64, len(m.staggerCells))
	for i, h := range m.staggerCells {
		levels[i] = h.Position()
	}
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(renderCellRow(levels))
	b.WriteString("\n\n  ")
	ease := "linear"
	if m.staggerEased {
		ease = "quad"
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf("origin %s  ·  ease %s  ·  gap 40ms", m.staggerOriginLabel(), ease)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewTimeline(w int) string {
	var b strings.Builder
	if m.timelineErr != "" {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(m.timelineErr))
		b.WriteString("\n")
		return b.String()
	}

	barWidth := w - 14
	if barWidth > 60 {
		barWidth = 60
	}
	names := []string{"seq-a", "seq-b", "seq-c", "seq-d"}
	for i, h := range m.timelineBars {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			labelStyle.Render(names[i]),
			renderLevelBar(h.Position(), barWidth)))
	}

	elapsed := m.timeline.Elapsed()
	ratio := 0.0
	if m.timelineTotal > 0 {
		ratio = clamp01(elapsed / m.timelineTotal)
	}
	b.WriteString("\n  ")
	b.WriteString(m.progress.ViewAs(ratio))
	b.WriteString("\n  ")
	b.WriteString(timeStyle.Render(util.FormatMillis(elapsed)))
	b.WriteString(statusStyle.Render(fmt.Sprintf("  ·  step %d/4", m.timeline.StepIndex())))
	if m.timeline.Complete() {
		b.WriteString(statusStyle.Render("  ·  complete"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewTransition() string {
	var b strings.Builder
	theme := "light"
	if m.darkTheme {
		theme = "dark"
	}
	b.WriteString("  ")
	if m.transitioning {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(statusStyle.Render("transitioning..."))
	} else {
		b.WriteString(statusStyle.Render("theme: " + theme))
	}
	b.WriteString("\n")
	if m.transitionErr != "" {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(m.transitionErr))
		b.WriteString("\n")
	}
	return b.String()
}
