package phasedapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BrianJOC/env-bootstrap/phases"
)

const maxPhaseLogs = 20

type phaseStatus int

const (
	statusPending phaseStatus = iota
	statusRunning
	statusSuccess
	statusFailed
)

func (s phaseStatus) String() string {
	switch s {
	case statusPending:
		return "pending"
	case statusRunning:
		return "running"
	case statusSuccess:
		return "success"
	case statusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type focusArea int

const (
	focusPhases focusArea = iota
	focusPrompt
)

type phaseState struct {
	meta   phases.PhaseMetadata
	status phaseStatus
	err    error
	logs   []string
}

type model struct {
	cfg      Config
	manager  *phases.Manager
	phaseCtx *phases.Context
	bridge   *bridge
	runCtx   context.Context
	cancel   context.CancelFunc

	phases map[string]*phaseState
	order  []string

	spinner spinner.Model

	prompt      textinput.Model
	active      *inputRequestMsg
	selectIndex int

	// answers remembers every submitted value so a restarted run can
	// pre-fill its prompts.
	answers map[string]map[string]string

	selectedPhase  int
	focus          focusArea
	helpVisible    bool
	pipelineActive bool
	finished       bool

	// At most one receiver per bridge channel is outstanding; restarts
	// reuse the pending ones.
	eventsPending bool
	inputPending  bool
	done           error

	statusMsg string
	now       func() time.Time

	width  int
	height int
}

func newModel(ctx context.Context, cfg Config) (*model, error) {
	if len(cfg.Phases) == 0 {
		return nil, ErrNoPhases
	}
	runCtx, cancel := context.WithCancel(ctx)
	b := newBridge(runCtx)

	managerOpts := append([]phases.ManagerOption{}, cfg.ManagerOptions...)
	managerOpts = append(managerOpts,
		phases.WithObserver(b),
		phases.WithInputHandler(b),
	)
	manager := phases.NewManager(managerOpts...)
	if err := manager.Register(cfg.Phases...); err != nil {
		cancel()
		return nil, err
	}

	states := make(map[string]*phaseState, len(cfg.Phases))
	order := make([]string, 0, len(cfg.Phases))
	for _, ph := range manager.Phases() {
		meta := ph.Metadata()
		states[meta.ID] = &phaseState{meta: meta, status: statusPending}
		order = append(order, meta.ID)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "enter value"
	ti.Blur()

	m := &model{
		cfg:       cfg,
		manager:   manager,
		bridge:    b,
		runCtx:    runCtx,
		cancel:    cancel,
		phases:    states,
		order:     order,
		spinner:   sp,
		prompt:    ti,
		focus:     focusPhases,
		answers:   make(map[string]map[string]string),
		statusMsg: "Starting…",
		now:       time.Now,
	}
	m.phaseCtx = m.freshContext()
	return m, nil
}

func (m *model) freshContext() *phases.Context {
	ctx := phases.NewContext()
	if m.cfg.Seed != nil {
		m.cfg.Seed(ctx)
	}
	return ctx
}

func (m *model) shutdown() {
	m.cancel()
	m.bridge.close()
}

func (m *model) Init() tea.Cmd {
	return m.startPipeline()
}

func (m *model) startPipeline() tea.Cmd {
	m.pipelineActive = true
	m.finished = false
	m.done = nil
	return tea.Batch(
		runManagerCmd(m.runCtx, m.bridge, m.manager, m.phaseCtx),
		m.awaitPhaseEvent(),
		m.awaitInputRequest(),
		m.spinner.Tick,
	)
}

func (m *model) awaitPhaseEvent() tea.Cmd {
	if m.eventsPending {
		return nil
	}
	m.eventsPending = true
	return waitPhaseEventCmd(m.bridge)
}

func (m *model) awaitInputRequest() tea.Cmd {
	if m.inputPending {
		return nil
	}
	m.inputPending = true
	return waitInputRequestCmd(m.bridge)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		shrunk := (m.width > 0 && msg.Width < m.width) || (m.height > 0 && msg.Height < m.height)
		m.width, m.height = msg.Width, msg.Height
		if shrunk {
			return m, tea.ClearScreen
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		if !m.pipelineActive {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case phaseStartedMsg:
		m.eventsPending = false
		m.handlePhaseStarted(msg)
		return m, m.awaitPhaseEvent()

	case phaseCompletedMsg:
		m.eventsPending = false
		m.handlePhaseCompleted(msg)
		return m, m.awaitPhaseEvent()

	case inputRequestMsg:
		m.inputPending = false
		m.preparePrompt(msg)
		return m, nil

	case phasesFinishedMsg:
		m.pipelineActive = false
		m.finished = true
		m.done = msg.err
		if m.runCtx.Err() != nil {
			return m, tea.Quit
		}
		if msg.err != nil {
			m.setStatus(msg.err.Error())
		} else {
			m.setStatus("All phases completed. Press q to exit.")
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if m.prompting() && m.focus == focusPrompt {
		return m.handlePromptKey(msg)
	}

	switch msg.Type {
	case tea.KeyUp:
		m.movePhaseSelection(-1)
	case tea.KeyDown:
		m.movePhaseSelection(1)
	case tea.KeyTab, tea.KeyShiftTab:
		if m.prompting() {
			m.focus = focusPrompt
		}
	case tea.KeyEsc:
		m.helpVisible = false
	case tea.KeyCtrlR:
		return m.restartPipeline()
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return nil
		}
		switch msg.Runes[0] {
		case 'k':
			m.movePhaseSelection(-1)
		case 'j':
			m.movePhaseSelection(1)
		case 'r', 'R':
			return m.restartPipeline()
		case 'c', 'C':
			m.copySummary()
		case '?', 'h', 'H':
			m.helpVisible = !m.helpVisible
		case 'q', 'Q':
			if !m.prompting() {
				return tea.Quit
			}
		}
	}
	return nil
}

func (m *model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		return m.submitPrompt()
	case tea.KeyEsc:
		return m.cancelPrompt()
	case tea.KeyTab, tea.KeyShiftTab:
		m.focus = focusPhases
		return nil
	}
	if m.isChoicePrompt() {
		m.handleChoiceKey(msg)
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *model) handleChoiceKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyUp:
		m.moveSelection(-1)
	case tea.KeyDown:
		m.moveSelection(1)
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return
		}
		switch r := msg.Runes[0]; {
		case r == 'k':
			m.moveSelection(-1)
		case r == 'j':
			m.moveSelection(1)
		case r >= '1' && r <= '9':
			if idx := int(r - '1'); idx < len(m.active.input.Options) {
				m.selectIndex = idx
			}
		case m.active.input.Kind == phases.InputKindConfirm && (r == 'y' || r == 'Y'):
			m.selectValue(phases.ConfirmYes)
		case m.active.input.Kind == phases.InputKindConfirm && (r == 'n' || r == 'N'):
			m.selectValue(phases.ConfirmNo)
		}
	}
}

func (m *model) handlePhaseStarted(msg phaseStartedMsg) {
	if state, ok := m.phases[msg.meta.ID]; ok {
		state.status = statusRunning
		state.err = nil
		m.appendLog(state, msg.meta.Title+" started")
	}
	m.setStatusf("Running %s", msg.meta.Title)
}

func (m *model) handlePhaseCompleted(msg phaseCompletedMsg) {
	state, ok := m.phases[msg.meta.ID]
	if !ok {
		return
	}
	if msg.err != nil {
		state.status = statusFailed
		state.err = msg.err
		m.appendLog(state, fmt.Sprintf("%s failed: %v", msg.meta.Title, msg.err))
		m.setStatusf("%s failed: %v", msg.meta.Title, msg.err)
		return
	}
	state.status = statusSuccess
	state.err = nil
	m.appendLog(state, msg.meta.Title+" completed")
	m.setStatusf("%s completed", msg.meta.Title)
}

func (m *model) preparePrompt(msg inputRequestMsg) {
	m.active = &msg
	m.focus = focusPrompt
	m.helpVisible = false
	m.selectIndex = 0
	m.selectPhaseByID(msg.meta.ID)

	previous := m.previousAnswer(msg.meta.ID, msg.input.ID)
	if msg.reason != "" {
		state := m.phases[msg.meta.ID]
		m.appendLog(state, fmt.Sprintf("%s rejected: %s", msg.input.Label, msg.reason))
	}

	if m.isChoicePrompt() {
		m.prompt.Blur()
		if previous == "" {
			previous = msg.input.Default
		}
		if idx := m.optionIndex(previous); idx >= 0 {
			m.selectIndex = idx
		}
		m.setStatusf("%s: choose %s", msg.meta.Title, msg.input.Label)
		return
	}

	m.prompt.Placeholder = placeholderText(msg.input)
	m.prompt.SetValue(previous)
	m.prompt.CursorEnd()
	m.prompt.Focus()
	m.setStatusf("%s needs %s", msg.meta.Title, msg.input.Label)
}

func (m *model) previousAnswer(phaseID, inputID string) string {
	if m.active != nil && m.active.reason != "" {
		if value, ok := phases.InputString(m.phaseCtx, phaseID, inputID); ok {
			return value
		}
	}
	return m.answers[phaseID][inputID]
}

func (m *model) submitPrompt() tea.Cmd {
	if !m.prompting() {
		return nil
	}

	var value string
	if m.isChoicePrompt() {
		selected, ok := m.currentSelectionValue()
		if !ok {
			m.setStatus("No options available")
			return nil
		}
		value = selected
	} else {
		value = strings.TrimSpace(m.prompt.Value())
		if value == "" {
			value = m.active.input.Default
		}
		if value == "" && m.active.input.Required {
			m.setStatus("Input required")
			return nil
		}
	}

	m.recordAnswer(value)
	m.bridge.respond(value, nil)
	m.clearPrompt()
	m.setStatus("Input submitted")
	return m.awaitInputRequest()
}

func (m *model) cancelPrompt() tea.Cmd {
	if !m.prompting() {
		return nil
	}
	m.bridge.respond(nil, ErrInputCancelled)
	m.clearPrompt()
	m.setStatus("Input cancelled. Press r to restart.")
	return m.awaitInputRequest()
}

func (m *model) clearPrompt() {
	m.active = nil
	m.prompt.SetValue("")
	m.prompt.Blur()
	m.focus = focusPhases
}

func (m *model) recordAnswer(value string) {
	phaseID, inputID := m.active.meta.ID, m.active.input.ID
	if _, ok := m.answers[phaseID]; !ok {
		m.answers[phaseID] = make(map[string]string)
	}
	m.answers[phaseID][inputID] = value
}

// restartPipeline starts over with an empty context. Previous answers are
// offered again as pre-filled values rather than replayed.
func (m *model) restartPipeline() tea.Cmd {
	if m.pipelineActive {
		m.setStatus("Pipeline already running")
		return nil
	}
	m.phaseCtx = m.freshContext()
	for _, id := range m.order {
		if state, ok := m.phases[id]; ok {
			state.status = statusPending
			state.err = nil
			state.logs = nil
		}
	}
	m.selectedPhase = 0
	m.setStatus("Restarting")
	return m.startPipeline()
}

func (m *model) summaryLines() []string {
	if m.cfg.Summary == nil {
		return nil
	}
	return m.cfg.Summary(m.phaseCtx)
}

func (m *model) copySummary() {
	lines := m.summaryLines()
	if len(lines) == 0 {
		m.setStatus("Nothing to copy yet")
		return
	}
	if err := clipboard.WriteAll(strings.Join(lines, "\n")); err != nil {
		m.setStatus("Failed to copy summary")
		return
	}
	m.setStatus("Summary copied to clipboard")
}

func (m *model) prompting() bool {
	return m.active != nil
}

func (m *model) isChoicePrompt() bool {
	if m.active == nil {
		return false
	}
	kind := m.active.input.Kind
	return kind == phases.InputKindSelect || kind == phases.InputKindConfirm
}

func (m *model) currentSelectionValue() (string, bool) {
	options := m.active.input.Options
	if len(options) == 0 {
		return "", false
	}
	m.selectIndex = min(max(m.selectIndex, 0), len(options)-1)
	return options[m.selectIndex].Value, true
}

func (m *model) moveSelection(delta int) {
	count := len(m.active.input.Options)
	if count == 0 {
		return
	}
	m.selectIndex = ((m.selectIndex+delta)%count + count) % count
}

func (m *model) selectValue(value string) {
	if idx := m.optionIndex(value); idx >= 0 {
		m.selectIndex = idx
	}
}

func (m *model) optionIndex(value string) int {
	if value == "" || m.active == nil {
		return -1
	}
	for idx, opt := range m.active.input.Options {
		if opt.Value == value {
			return idx
		}
	}
	return -1
}

func (m *model) movePhaseSelection(delta int) {
	count := len(m.order)
	if count == 0 {
		return
	}
	m.selectedPhase = ((m.selectedPhase+delta)%count + count) % count
}

func (m *model) selectPhaseByID(id string) {
	for idx, candidate := range m.order {
		if candidate == id {
			m.selectedPhase = idx
			return
		}
	}
}

func (m *model) currentPhaseState() *phaseState {
	if len(m.order) == 0 {
		return nil
	}
	idx := min(max(m.selectedPhase, 0), len(m.order)-1)
	return m.phases[m.order[idx]]
}

func (m *model) appendLog(state *phaseState, line string) {
	if state == nil {
		return
	}
	state.logs = append(state.logs, fmt.Sprintf("[%s] %s", m.now().Format("15:04:05"), line))
	if len(state.logs) > maxPhaseLogs {
		state.logs = state.logs[len(state.logs)-maxPhaseLogs:]
	}
}

func (m *model) setStatus(msg string) {
	m.statusMsg = msg
}

func (m *model) setStatusf(format string, args ...any) {
	m.setStatus(fmt.Sprintf(format, args...))
}

func completedCount(states map[string]*phaseState) int {
	count := 0
	for _, st := range states {
		if st.status == statusSuccess {
			count++
		}
	}
	return count
}

func placeholderText(def phases.InputDefinition) string {
	if def.Default != "" {
		return def.Default
	}
	return def.Label
}
