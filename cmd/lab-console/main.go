package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

var actions = []string{
	"SHUTDOWN",
	"REBOOT",
	"WAKE_ON_LAN",
	"LOCK_SESSION",
	"BLOCK_WEBSITE",
	"UNBLOCK_WEBSITE",
	"INSTALL_APP",
	"INSTALL_SNAP",
	"DISABLE_INTERNET",
	"ENABLE_INTERNET",
	"TEST",
	"FORMAT",
}

// actions that need a parameter typed by the operator
var paramPrompts = map[string]string{
	"BLOCK_WEBSITE":   "Website URL to block:",
	"UNBLOCK_WEBSITE": "Website URL to unblock:",
	"INSTALL_APP":     "Install command:",
	"INSTALL_SNAP":    "Snap package name:",
}

type step int

const (
	stepLoadingRooms step = iota
	stepSelectingRoom
	stepLoadingPCs
	stepSelectingPC
	stepSelectingAction
	stepEnteringParams
	stepSending
	stepResult
)

type model struct {
	api          *apiClient
	step         step
	rooms        []int
	pcs          []roomPC
	cursor       int
	room         int
	pc           *roomPC
	action       string
	currentInput string
	message      string
	statuses     map[string]string // map[ip]ONLINE|OFFLINE|UNKNOWN
	feedUp       bool
	quitting     bool
}

type roomsLoadedMsg []int
type pcsLoadedMsg []roomPC
type commandSentMsg commandView
type statusMsg computerStatus
type feedStateMsg bool
type retryMsg struct{}
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func initialModel(api *apiClient) model {
	return model{
		api:      api,
		step:     stepLoadingRooms,
		statuses: make(map[string]string),
	}
}

func (m model) Init() tea.Cmd {
	return m.api.listRooms()
}

func (m model) listLen() int {
	switch m.step {
	case stepSelectingRoom:
		return len(m.rooms)
	case stepSelectingPC:
		return len(m.pcs)
	case stepSelectingAction:
		return len(actions)
	}
	return 0
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "q":
			if m.step != stepEnteringParams {
				m.quitting = true
				return m, tea.Quit
			}
			m.currentInput += "q"

		case "up", "k":
			if m.step == stepEnteringParams {
				m.currentInput += msg.String()
			} else if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.step == stepEnteringParams {
				m.currentInput += msg.String()
			} else if m.cursor < m.listLen()-1 {
				m.cursor++
			}

		case "esc":
			return m.back()

		case "backspace":
			if len(m.currentInput) > 0 {
				m.currentInput = m.currentInput[:len(m.currentInput)-1]
			}

		case "enter":
			return m.enter()

		default:
			if m.step == stepEnteringParams {
				m.currentInput += msg.String()
			}
		}

	case roomsLoadedMsg:
		m.rooms = []int(msg)
		m.cursor = 0
		m.step = stepSelectingRoom
		m.message = ""

	case pcsLoadedMsg:
		m.pcs = []roomPC(msg)
		m.cursor = 0
		m.step = stepSelectingPC
		m.message = ""

	case commandSentMsg:
		m.step = stepResult
		if msg.Status == "FAILED" {
			m.message = errorStyle.Render(fmt.Sprintf("✗ Command #%d %s on %s: %s", msg.ID, msg.Action, msg.ComputerName, msg.ResultMessage))
		} else {
			m.message = successStyle.Render(fmt.Sprintf("✓ Command #%d %s sent to %s (%s)", msg.ID, msg.Action, msg.ComputerName, msg.Status))
		}

	case statusMsg:
		m.statuses[msg.IPAddress] = msg.Status

	case feedStateMsg:
		m.feedUp = bool(msg)

	case retryMsg:
		return m, m.api.listRooms()

	case errMsg:
		m.message = errorStyle.Render("✗ " + msg.err.Error())
		switch m.step {
		case stepLoadingRooms:
			return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return retryMsg{} })
		case stepLoadingPCs:
			m.step = stepSelectingRoom
		case stepSending:
			m.step = stepResult
		}
	}

	return m, nil
}

func (m model) enter() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepSelectingRoom:
		if len(m.rooms) > 0 {
			m.room = m.rooms[m.cursor]
			m.step = stepLoadingPCs
			m.message = fmt.Sprintf("Loading room %d...", m.room)
			return m, m.api.listPCs(m.room)
		}

	case stepSelectingPC:
		if len(m.pcs) > 0 {
			pc := m.pcs[m.cursor]
			m.pc = &pc
			m.cursor = 0
			m.step = stepSelectingAction
		}

	case stepSelectingAction:
		m.action = actions[m.cursor]
		if _, ok := paramPrompts[m.action]; ok {
			m.currentInput = ""
			m.step = stepEnteringParams
			return m, nil
		}
		return m.send("")

	case stepEnteringParams:
		if strings.TrimSpace(m.currentInput) != "" {
			params := strings.TrimSpace(m.currentInput)
			m.currentInput = ""
			return m.send(params)
		}

	case stepResult:
		m.message = ""
		m.cursor = 0
		m.step = stepSelectingPC
	}
	return m, nil
}

func (m model) send(params string) (tea.Model, tea.Cmd) {
	m.step = stepSending
	m.message = fmt.Sprintf("Sending %s to %s...", m.action, m.pc.Name)
	return m, m.api.sendCommand(m.room, m.pc.ID, m.action, params)
}

func (m model) back() (tea.Model, tea.Cmd) {
	m.message = ""
	m.cursor = 0
	switch m.step {
	case stepSelectingPC:
		m.step = stepSelectingRoom
	case stepSelectingAction, stepResult:
		m.step = stepSelectingPC
	case stepEnteringParams:
		m.currentInput = ""
		m.step = stepSelectingAction
	}
	return m, nil
}

func (m model) marker(ip string) string {
	switch m.statuses[ip] {
	case "ONLINE":
		return successStyle.Render("●")
	case "OFFLINE":
		return errorStyle.Render("●")
	default:
		return dimStyle.Render("○")
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	title := "Lab Console"
	if m.api.user != "" {
		title += " · " + m.api.user
	}
	s.WriteString(titleStyle.Render(title) + "\n")
	if !m.feedUp {
		s.WriteString(dimStyle.Render("live status unavailable") + "\n")
	}
	s.WriteString("\n")

	switch m.step {
	case stepLoadingRooms, stepLoadingPCs, stepSending:
		if m.message != "" {
			s.WriteString(m.message + "\n")
		} else {
			s.WriteString("Loading...\n")
		}

	case stepSelectingRoom:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		s.WriteString(promptStyle.Render("Select a room:") + "\n\n")
		for i, room := range m.rooms {
			s.WriteString(m.row(i, fmt.Sprintf("Room %d", room)))
		}
		s.WriteString("\nUse ↑/↓, Enter to open, q to quit\n")

	case stepSelectingPC:
		s.WriteString(promptStyle.Render(fmt.Sprintf("Room %d, select a PC:", m.room)) + "\n\n")
		if len(m.pcs) == 0 {
			s.WriteString(dimStyle.Render("    no PCs registered") + "\n")
		}
		for i, pc := range m.pcs {
			s.WriteString(m.row(i, fmt.Sprintf("%s %s (%s)", m.marker(pc.IP), pc.Name, pc.IP)))
		}
		s.WriteString("\nUse ↑/↓, Enter to select, Esc back, q to quit\n")

	case stepSelectingAction:
		s.WriteString(promptStyle.Render(fmt.Sprintf("Action for %s:", m.pc.Name)) + "\n\n")
		for i, a := range actions {
			s.WriteString(m.row(i, a))
		}
		s.WriteString("\nUse ↑/↓, Enter to send, Esc back\n")

	case stepEnteringParams:
		s.WriteString(promptStyle.Render(paramPrompts[m.action]) + "\n")
		s.WriteString(inputStyle.Render("> " + m.currentInput))
		s.WriteString("\n\nPress Enter, Esc back\n")

	case stepResult:
		s.WriteString(m.message + "\n")
		s.WriteString("\nPress Enter to continue, q to quit\n")
	}

	return s.String()
}

func (m model) row(i int, label string) string {
	if m.cursor == i {
		return fmt.Sprintf("> %s\n", selectedStyle.Render(label))
	}
	return fmt.Sprintf("  %s\n", normalStyle.Render(label))
}

func main() {
	server := pflag.String("server", "http://localhost:3536", "lab server base URL")
	user := pflag.String("user", os.Getenv("LAB_USER"), "operator identity sent with each command")
	pflag.Parse()

	api := newAPIClient(*server, *user)
	p := tea.NewProgram(initialModel(api))
	go watchStatus(api.base, p)

	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
