package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-gateway/component"
	"github.com/wippyai/wasm-gateway/engine"
	"github.com/wippyai/wasm-gateway/gateway"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type explorerState int

const (
	stateSelectFunc explorerState = iota
	stateInputArgs
	stateShowResult
)

type explorer struct {
	err        error
	eng        *engine.CoreEngine
	dispatcher *gateway.Dispatcher
	log        *zap.Logger
	witPath    string
	wasmPath   string
	result     string
	endpoints  []gateway.Endpoint
	inputs     []textinput.Model
	selected   int
	focusIdx   int
	state      explorerState
}

type loadedMsg struct {
	err       error
	eng       *engine.CoreEngine
	endpoints []gateway.Endpoint
}

type callResultMsg struct {
	err    error
	result string
}

func newExplorer(witPath, wasmPath string, logger *zap.Logger) *explorer {
	return &explorer{
		witPath:  witPath,
		wasmPath: wasmPath,
		log:      logger,
		state:    stateSelectFunc,
	}
}

func (m *explorer) Init() tea.Cmd {
	return m.load
}

func (m *explorer) load() tea.Msg {
	endpoints, eng, err := loadComponent(context.Background(), m.witPath, m.wasmPath, false, zap.NewNop())
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{endpoints: endpoints, eng: eng}
}

func (m *explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputArgs && msg.String() == "q" {
				break // let the input field receive the character
			}
			if m.eng != nil {
				_ = m.eng.Close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.endpoints)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.call
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.call

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.endpoints = msg.endpoints
		m.eng = msg.eng
		m.dispatcher = gateway.NewDispatcher(engine.NewLease(), m.log)

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *explorer) prepareInputs() {
	fn := m.endpoints[m.selected].Fn
	m.inputs = make([]textinput.Model, len(fn.Params))
	for i, p := range fn.Params {
		ti := textinput.New()
		ti.Placeholder = p.Type.String()
		ti.Prompt = p.Name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// call builds a JSON request body from the input fields and runs it through
// the same dispatcher the HTTP server uses.
func (m *explorer) call() tea.Msg {
	ep := &m.endpoints[m.selected]

	body, err := buildBody(ep.Fn, m.inputs)
	if err != nil {
		return callResultMsg{err: err}
	}

	out, err := m.dispatcher.Handle(context.Background(), ep, strings.NewReader(body))
	if err != nil {
		return callResultMsg{err: err}
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: string(pretty)}
}

// buildBody assembles the parameter object. Each field accepts a JSON
// literal; a bare word for a string-typed parameter is quoted for
// convenience.
func buildBody(fn *component.Function, inputs []textinput.Model) (string, error) {
	parts := make([]string, len(inputs))
	for i, input := range inputs {
		p := fn.Params[i]
		raw := strings.TrimSpace(input.Value())

		if !json.Valid([]byte(raw)) {
			if p.Type.Kind == component.KindString ||
				p.Type.Kind == component.KindChar ||
				p.Type.Kind == component.KindEnum {
				quoted, err := json.Marshal(raw)
				if err != nil {
					return "", err
				}
				raw = string(quoted)
			} else {
				return "", fmt.Errorf("parameter %q: %q is not valid JSON", p.Name, raw)
			}
		}

		key, _ := json.Marshal(p.Name)
		parts[i] = string(key) + ":" + raw
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func (m *explorer) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.endpoints) == 0 {
		return "Loading component..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("WASM Gateway"))
	b.WriteString(" ")
	b.WriteString(m.wasmPath)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, ep := range m.endpoints {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + formatEndpoint(ep)))
			} else {
				b.WriteString(cursor + formatEndpoint(ep))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		ep := m.endpoints[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(ep.Path)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(ep.Fn.Params[i].Type.String()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		ep := m.endpoints[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(ep.Path)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatEndpoint(ep gateway.Endpoint) string {
	var params []string
	for _, p := range ep.Fn.Params {
		params = append(params, p.Name+": "+typeStyle.Render(p.Type.String()))
	}
	result := ""
	switch {
	case ep.Fn.Results.Anon != nil:
		result = " -> " + typeStyle.Render(ep.Fn.Results.Anon.String())
	case len(ep.Fn.Results.Named) > 0:
		var named []string
		for _, p := range ep.Fn.Results.Named {
			named = append(named, p.Name+": "+typeStyle.Render(p.Type.String()))
		}
		result = " -> (" + strings.Join(named, ", ") + ")"
	}
	return funcStyle.Render(ep.Path) + "(" + strings.Join(params, ", ") + ")" + result
}

func runExplorer(witPath, wasmPath string, logger *zap.Logger) error {
	p := tea.NewProgram(newExplorer(witPath, wasmPath, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
