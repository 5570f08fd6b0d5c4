package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
	"github.com/gigaverse-tools/dungeon-agent/pkg/gigaverse"
	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

const (
	AgentName       = "Agent"
	PlaceHolderText = "Instruct the agent, or press Enter to let it act..."
)

// ConsoleUI is the BubbleTea model that runs the control panel.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	backend      *Backend
	offline      bool
	snap         *snapshot.GameSnapshot
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	notice       string

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type turnMsg struct {
	response *chat.ChatResponse
	err      error
}

type snapshotMsg struct {
	snap *snapshot.GameSnapshot
	err  error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
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
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	agentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

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

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(backend *Backend, offline bool) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = chat.MaxMessageLength
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		backend:      backend,
		offline:      offline,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		ready:        false,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.refreshSnapshot(), textarea.Blink)
}

// writeChatContent rebuilds the transcript panel for the current width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("DUNGEON AGENT") + "\n\n")
	if m.offline {
		content.WriteString("Offline mode: playing against the simulated dungeon.\n")
	}
	content.WriteString("Type /help for commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 10))) + "\n\n")

	if m.snap != nil {
		for _, msg := range m.snap.Transcript {
			switch msg.Role {
			case chat.ChatRoleAgent:
				content.WriteString(agentStyle.Render(AgentName+": ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n")
			case chat.ChatRoleUser:
				content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n")
			case chat.ChatRoleSystem:
				content.WriteString(systemStyle.Render(wordwrap.String(msg.Content, chatWidth-6)) + "\n\n")
			}
		}
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}
	if m.notice != "" {
		content.WriteString(noticeStyle.Render(m.notice) + "\n\n")
	}
	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func writeMetadata(gs *snapshot.GameSnapshot) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SNAPSHOT") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString(fmt.Sprintf("Energy: %.2f\n", gs.Energy))
	content.WriteString(fmt.Sprintf("Dungeon: %d  Room: %d\n\n", gs.Dungeon, gs.Room))

	content.WriteString("Player:\n")
	content.WriteString(fmt.Sprintf("HP %d/%d  Shield %d/%d\n", gs.Player.Health, gs.Player.MaxHealth, gs.Player.Shield, gs.Player.MaxShield))
	content.WriteString(fmt.Sprintf("R %d/%d/%d  P %d/%d/%d  S %d/%d/%d\n\n",
		gs.Rock.Attack, gs.Rock.Defense, gs.Rock.Charges,
		gs.Paper.Attack, gs.Paper.Defense, gs.Paper.Charges,
		gs.Scissor.Attack, gs.Scissor.Defense, gs.Scissor.Charges))

	if gs.InCombat() {
		content.WriteString("Enemy:\n")
		content.WriteString(fmt.Sprintf("HP %d/%d  Shield %d/%d\n\n", gs.Enemy.Health, gs.Enemy.MaxHealth, gs.Enemy.Shield, gs.Enemy.MaxShield))
	}
	if gs.LootPhase {
		content.WriteString(fmt.Sprintf("Loot phase: %d options\n\n", gs.LootCount))
	}
	if gs.LastBattleResult != "" {
		content.WriteString(fmt.Sprintf("Last round: %s (enemy: %s)\n\n", gs.LastBattleResult, gs.LastEnemyMove))
	}
	if gs.ActionToken != "" {
		content.WriteString("Token: held\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: step agent\n")
	content.WriteString("• /run: start run\n")
	content.WriteString("• /rock /paper /scissor\n")
	content.WriteString("• /loot1 /loot2 /loot3\n")
	content.WriteString("• /copy: copy session ID\n")
	content.WriteString("• /help: help\n")
	content.WriteString("• Ctrl+C: quit\n")

	return content.String()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		if m.snap != nil {
			m.metaViewport.SetContent(writeMetadata(m.snap))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.err = nil
			m.notice = ""
			m.loading = true
			m.progressTick = 0
			m.writeChatContent()
			return m, tea.Batch(m.stepAgent(input), progressTick())
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
		}
		m.writeChatContent()
		return m, m.refreshSnapshot()

	case snapshotMsg:
		if msg.err == nil && msg.snap != nil {
			m.snap = msg.snap
			m.metaViewport.SetContent(writeMetadata(m.snap))
			m.writeChatContent()
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

var manualMoves = map[string]gigaverse.Move{
	"/rock":    gigaverse.MoveRock,
	"/paper":   gigaverse.MovePaper,
	"/scissor": gigaverse.MoveScissor,
	"/loot1":   gigaverse.MoveLootOne,
	"/loot2":   gigaverse.MoveLootTwo,
	"/loot3":   gigaverse.MoveLootThree,
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()
	m.err = nil
	m.notice = ""

	if move, ok := manualMoves[cmd]; ok {
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.playManual(move), progressTick())
	}

	switch cmd {
	case "/run":
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.startRun(), progressTick())

	case "/copy":
		if err := clipboard.WriteAll(m.backend.SessionID().String()); err != nil {
			m.err = fmt.Errorf("clipboard unavailable: %w", err)
		} else {
			m.notice = "Session ID copied to clipboard."
		}
		m.writeChatContent()

	case "/help":
		m.notice = strings.TrimSpace(`
Commands:
/run            start a new dungeon run
/rock /paper /scissor   play a combat move manually
/loot1 /loot2 /loot3    pick a loot option manually
/copy           copy the session ID
Enter with no text steps the agent one turn.
Enter with text sends an instruction to the agent.`)
		m.writeChatContent()

	default:
		m.err = fmt.Errorf("unknown command %s", cmd)
		m.writeChatContent()
	}

	return m, nil
}

func (m ConsoleUI) stepAgent(message string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.backend.StepAgent(message)
		return turnMsg{resp, err}
	}
}

func (m ConsoleUI) playManual(move gigaverse.Move) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.backend.PlayManual(move)
		return turnMsg{resp, err}
	}
}

func (m ConsoleUI) startRun() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.backend.StartRun(1)
		return turnMsg{resp, err}
	}
}

func (m ConsoleUI) refreshSnapshot() tea.Cmd {
	return func() tea.Msg {
		gs, err := m.backend.Snapshot()
		return snapshotMsg{gs, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
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
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("The session snapshot is saved; you can resume it later.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 10))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar draws the animated bar shown while a turn is in
// flight. Turns can take a while: the LLM call plus the post-attack
// pacing delay.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
