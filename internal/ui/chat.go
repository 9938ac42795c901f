package ui

import (
	"fmt"
	"strings"

	"github.com/FazinHan/lmstudio-webapp/internal/chat"
	"github.com/FazinHan/lmstudio-webapp/internal/format"
	"github.com/FazinHan/lmstudio-webapp/internal/llm"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	CHAT_INPUT_PLACEHOLDER = "Type a message..."
	CHAT_WAITING_RESPONSE  = "> ⏳ Waiting for the inference server..."
	CHAT_HELP              = "enter send • pgup/pgdn scroll • esc quit"

	inputHeight  = 2
	statusHeight = 1
)

var (
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)
	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true)
)

// ChatTUIModel shows one session transcript and drives chat turns through
// GetBotResponse, one at a time.
type ChatTUIModel struct {
	textInput textinput.Model
	viewport  viewport.Model
	messages  []llm.Message
	title     string
	waiting   bool

	getBotResponse func(text string) tea.Cmd
}

type InitialModelOptions struct {
	Title string
	// GetBotResponse runs one chat turn for text and yields the assistant
	// llm.Message.
	GetBotResponse func(text string) tea.Cmd
	// Messages is the transcript so far, system message included.
	Messages []llm.Message
}

func InitialModel(opts InitialModelOptions) ChatTUIModel {
	ti := textinput.New()
	ti.Placeholder = CHAT_INPUT_PLACEHOLDER
	ti.Focus()

	return ChatTUIModel{
		textInput:      ti,
		viewport:       viewport.New(0, 0),
		title:          opts.Title,
		getBotResponse: opts.GetBotResponse,
		messages:       opts.Messages,
	}
}

func (m ChatTUIModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.EnableMouseCellMotion,
	)
}

func (m ChatTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				m.viewport.ScrollUp(1)
			case tea.MouseButtonWheelDown:
				m.viewport.ScrollDown(1)
			}
		}

	case llm.Message:
		m.waiting = false
		m.messages = append(m.messages, msg)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyPgUp:
			m.viewport.PageUp()
			return m, nil
		case tea.KeyPgDown:
			m.viewport.PageDown()
			return m, nil
		case tea.KeyEnter:
			cmd = m.submit()
		}
	}

	m.textInput, _ = m.textInput.Update(msg)

	if m.waiting {
		m.textInput.Blur()
	} else {
		m.textInput.Focus()
	}

	return m, cmd
}

// submit starts a chat turn for the typed text unless one is in flight.
func (m *ChatTUIModel) submit() tea.Cmd {
	text := m.textInput.Value()
	if text == "" || m.waiting {
		return nil
	}

	m.messages = append(m.messages, llm.Message{Role: llm.User, Content: text})
	m.waiting = true
	m.textInput.SetValue("")
	m.updateViewport()

	return m.getBotResponse(text)
}

func (m *ChatTUIModel) resize(width int, height int) {
	titleHeight := lipgloss.Height(titleStyle.Width(width).Render(m.title))
	m.viewport = viewport.New(width, max(height-titleHeight-inputHeight-statusHeight, 0))
	m.updateViewport()
}

func (m *ChatTUIModel) updateViewport() {
	var displayed []string
	for _, msg := range m.messages {
		switch msg.Role {
		case llm.User:
			displayed = append(displayed, userStyle.Render(fmt.Sprintf("> %s", msg.Content)))
		case llm.Assistant:
			displayed = append(displayed, renderReply(msg.Content))
		}
	}

	m.viewport.SetContent(strings.Join(displayed, "\n\n"))
	m.viewport.GotoBottom()
}

func renderReply(content string) string {
	if chat.IsErrorReply(content) {
		return errorStyle.Render(content)
	}
	out, err := format.FormatMarkdown(content)
	if err != nil {
		out = content
	}
	return botStyle.Render(strings.TrimSpace(out))
}

// status summarizes the transcript size the next turn will send.
func (m ChatTUIModel) status() string {
	turns := 0
	for _, msg := range m.messages {
		if msg.Role == llm.User {
			turns++
		}
	}
	return fmt.Sprintf("%d turns • ~%d tokens • %s", turns, llm.RoughEstimateTranscriptTokens(m.messages), CHAT_HELP)
}

func (m ChatTUIModel) View() string {
	input := m.textInput.View()

	if m.waiting {
		input = CHAT_WAITING_RESPONSE
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.viewport.Width).Render(m.title),
		m.viewport.View(),
		inputStyle.Width(m.viewport.Width).Render(input),
		helpStyle.Width(m.viewport.Width).Render(m.status()),
	)
}
