package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/hearthfire/adventure-engine/internal/handlers"
	"github.com/hearthfire/adventure-engine/pkg/session"
)

const placeholderText = "What do you do?"

// turn is one round of play kept for redisplay on resize.
type turn struct {
	input   string
	message string
	success bool
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *session.Session
	turns        []turn
	gameViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	status       string

	// Adventure selection state
	showAdventureModal bool
	adventures         []handlers.AdventureSummary
	selectedAdventure  int
	loadingAdventures  bool

	// Quit confirmation state
	showQuitModal bool
}

type commandResultMsg struct {
	resp *handlers.CommandResponse
	err  error
}

type adventuresLoadedMsg struct {
	adventures []handlers.AdventureSummary
	err        error
}

type gameCreatedMsg struct {
	session *session.Session
	err     error
}

var (
	gamePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = placeholderText
	ta.Focus()
	ta.Prompt = promptStyle.Render("> ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	gameVp := viewport.New(50, 20)
	gameVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:             cfg,
		client:             client,
		textarea:           ta,
		gameViewport:       gameVp,
		metaViewport:       metaVp,
		showAdventureModal: true,
		loadingAdventures:  true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showAdventureModal {
		return m.loadAdventures()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showAdventureModal {
		return m.updateAdventureModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.writeGameContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyCtrlY:
			// Copy the latest narration for sharing or note-taking.
			if len(m.turns) > 0 {
				if err := clipboard.WriteAll(m.turns[len(m.turns)-1].message); err != nil {
					m.status = "Clipboard unavailable"
				} else {
					m.status = "Copied last response to clipboard"
				}
				m.writeGameContent()
			}
			return m, nil

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.loading = true
			m.status = ""
			m.writeGameContent()
			return m, m.sendInput(input)
		}

	case commandResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeGameContent()
			return m, nil
		}
		m.err = nil
		m.turns = append(m.turns, turn{
			input:   msg.resp.Command.RawInput,
			message: msg.resp.Result.Message,
			success: msg.resp.Result.Success,
		})
		if msg.resp.Session != nil {
			m.session = msg.resp.Session
		}
		m.writeGameContent()
		m.metaViewport.SetContent(m.writeMetadata())
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.gameViewport, vpCmd = m.gameViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) layout() {
	gameWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - gameWidth - 6

	m.gameViewport.Width = gameWidth - 2
	m.gameViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(gameWidth - 4)
}

func (m *ConsoleUI) writeGameContent() {
	wrapWidth := m.gameViewport.Width - 6
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE ENGINE") + "\n\n")
	content.WriteString("Type what you want to do and press Enter.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", wrapWidth)) + "\n\n")

	for _, t := range m.turns {
		content.WriteString(playerStyle.Render("> "+t.input) + "\n")
		style := narrationStyle
		if !t.success {
			style = failureStyle
		}
		content.WriteString(style.Render(wordwrap.String(t.message, wrapWidth)) + "\n\n")
	}

	if m.loading {
		content.WriteString(promptStyle.Render("...") + "\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	if m.status != "" {
		content.WriteString(promptStyle.Render(m.status) + "\n")
	}

	m.gameViewport.SetContent(content.String())
	m.gameViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	if m.session == nil {
		content.WriteString("No active session\n")
		return content.String()
	}

	content.WriteString("Session ID:\n")
	content.WriteString(m.session.ID.String()[:8] + "...\n\n")

	content.WriteString("Adventure:\n")
	content.WriteString(m.session.AdventureID + "\n\n")

	content.WriteString("Location:\n")
	content.WriteString(m.session.CurrentLocationID + "\n\n")

	content.WriteString("Visited:\n")
	content.WriteString(fmt.Sprintf("%d locations\n\n", len(m.session.VisitedList())))

	content.WriteString("Inventory:\n")
	if len(m.session.Inventory) == 0 {
		content.WriteString("(empty)\n")
	} else {
		for _, item := range m.session.Inventory {
			content.WriteString("• " + item + "\n")
		}
	}

	content.WriteString("\n")
	content.WriteString("Keys:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy last\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) sendInput(input string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendCommand(m.client, m.config.APIBaseURL, m.session.ID, input)
		return commandResultMsg{resp, err}
	}
}

func (m ConsoleUI) loadAdventures() tea.Cmd {
	return func() tea.Msg {
		adventures, err := listAdventures(m.client, m.config.APIBaseURL)
		return adventuresLoadedMsg{adventures, err}
	}
}

func (m ConsoleUI) createGameFromAdventure(adventureID string) tea.Cmd {
	return func() tea.Msg {
		s, err := createGame(m.client, m.config.APIBaseURL, adventureID, m.config.PlayerName)
		return gameCreatedMsg{s, err}
	}
}

func (m ConsoleUI) updateAdventureModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case adventuresLoadedMsg:
		m.loadingAdventures = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.adventures = msg.adventures
		}

	case gameCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.showAdventureModal = false
		if m.width > 0 && m.height > 0 {
			m.layout()
		}
		// Open with a look so the player starts with a scene.
		m.loading = true
		m.writeGameContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.textarea.Focus()
		m.ready = true
		return m, tea.Batch(textarea.Blink, m.sendInput("look"))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedAdventure > 0 {
				m.selectedAdventure--
			}
		case tea.KeyDown:
			if m.selectedAdventure < len(m.adventures)-1 {
				m.selectedAdventure++
			}
		case tea.KeyEnter:
			if !m.loadingAdventures && m.err == nil && len(m.adventures) > 0 {
				m.loading = true
				return m, m.createGameFromAdventure(m.adventures[m.selectedAdventure].ID)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderAdventureModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingAdventures:
		content.WriteString(modalTitleStyle.Render("Loading Adventures..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load adventures: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Starting Game..."))
	case len(m.adventures) == 0:
		content.WriteString(modalTitleStyle.Render("No Adventures Available"))
		content.WriteString("\n\n")
		content.WriteString("The server has no adventures loaded.")
	default:
		content.WriteString(modalTitleStyle.Render("Select an Adventure"))
		content.WriteString("\n\n")

		for i, adv := range m.adventures {
			label := adv.Name
			if adv.Difficulty != "" {
				label = fmt.Sprintf("%s (%s)", adv.Name, adv.Difficulty)
			}
			if i == m.selectedAdventure {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showAdventureModal {
		return m.renderAdventureModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	gameWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - gameWidth - 6

	gamePanel := gamePanelStyle.Width(gameWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.gameViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", gameWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, gamePanel, metaPanel)
}
