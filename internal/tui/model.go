// Package tui hosts a link preview card in the terminal.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/microcosm-cc/bluemonday"

	"github.com/MrSnakeDoc/linkpreview/internal/preview"
)

// stateMsg carries a fresh card snapshot into the update loop.
type stateMsg preview.State

// Model is the bubbletea model around one card. The card is its only source
// of display data; the model never fetches.
type Model struct {
	card  *preview.Card
	texts preview.Texts

	input   textinput.Model
	spinner spinner.Model
	state   preview.State

	changed     chan struct{}
	done        chan struct{}
	unsubscribe func()
	sanitize    *bluemonday.Policy

	width  int
	height int
}

// New wraps card. The model takes ownership and closes the card on quit.
func New(card *preview.Card, texts preview.Texts) *Model {
	ti := textinput.New()
	ti.Placeholder = "https://example.com"
	ti.CharLimit = 2048
	ti.Width = 60
	ti.SetValue(card.URL())
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		card:     card,
		texts:    texts,
		input:    ti,
		spinner:  sp,
		state:    card.State(),
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		sanitize: bluemonday.StrictPolicy(),
		width:    80,
	}
	m.unsubscribe = card.Subscribe(func(preview.State) {
		select {
		case m.changed <- struct{}{}:
		default:
		}
	})
	return m
}

// Init starts listening for card changes.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForChange()}
	if m.state.Loading {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// waitForChange blocks until the card reports a change, then delivers the
// current snapshot.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.done:
			return nil
		default:
		}
		select {
		case <-m.changed:
			return stateMsg(m.card.State())
		case <-m.done:
			return nil
		}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateMsg:
		wasLoading := m.state.Loading
		m.state = preview.State(msg)
		cmds := []tea.Cmd{m.waitForChange()}
		if m.state.Loading && !wasLoading {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Close()
		return m, tea.Quit
	case "enter":
		// The card ignores an unchanged url; state changes arrive through
		// the subscription.
		m.card.SetURL(strings.TrimSpace(m.input.Value()))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the UI
func (m *Model) View() string {
	return renderView(m)
}

// Close stops listening and destroys the card. It is idempotent.
func (m *Model) Close() {
	select {
	case <-m.done:
		return
	default:
	}
	close(m.done)
	m.unsubscribe()
	m.card.Close()
}

// Start runs the Bubble Tea program until the user quits.
func (m *Model) Start() error {
	defer m.Close()
	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}
