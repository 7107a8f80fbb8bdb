package usecases

import (
	"fmt"
	"strings"

	"lab-server/entities"
)

const (
	ActionShutdown        = "SHUTDOWN"
	ActionReboot          = "REBOOT"
	ActionWakeOnLan       = "WAKE_ON_LAN"
	ActionLockSession     = "LOCK_SESSION"
	ActionBlockWebsite    = "BLOCK_WEBSITE"
	ActionUnblockWebsite  = "UNBLOCK_WEBSITE"
	ActionFormat          = "FORMAT"
	ActionTest            = "TEST"
	ActionInstallApp      = "INSTALL_APP"
	ActionInstallSnap     = "INSTALL_SNAP"
	ActionDisableInternet = "DISABLE_INTERNET"
	ActionEnableInternet  = "ENABLE_INTERNET"
)

// agentActions maps backend action names to the agent vocabulary.
var agentActions = map[string]string{
	ActionShutdown:        "shutdown",
	ActionReboot:          "reboot",
	ActionWakeOnLan:       "wakeup",
	ActionLockSession:     "lock_session",
	ActionBlockWebsite:    "block_sites",
	ActionUnblockWebsite:  "unblock_sites",
	ActionFormat:          "format",
	ActionTest:            "test",
	ActionInstallApp:      "install_app",
	ActionInstallSnap:     "install_snap",
	ActionDisableInternet: "disable_internet",
	ActionEnableInternet:  "enable_internet",
}

var actionAliases = map[string]string{
	"BLOCK_SITES":   ActionBlockWebsite,
	"UNBLOCK_SITES": ActionUnblockWebsite,
}

var backendActions = func() map[string]string {
	m := make(map[string]string, len(agentActions))
	for backend, agent := range agentActions {
		m[agent] = backend
	}
	return m
}()

// NormalizeAction accepts an action in either vocabulary, any case, and
// returns the canonical backend name.
func NormalizeAction(action string) (string, error) {
	trimmed := strings.TrimSpace(action)
	if trimmed == "" {
		return "", fmt.Errorf("%w: action is required", ErrValidation)
	}
	upper := strings.ToUpper(trimmed)
	if _, ok := agentActions[upper]; ok {
		return upper, nil
	}
	if canonical, ok := actionAliases[upper]; ok {
		return canonical, nil
	}
	if backend, err := FromAgentAction(trimmed); err == nil {
		return backend, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrValidation, action)
}

func ToAgentAction(action string) (string, error) {
	backend, err := NormalizeAction(action)
	if err != nil {
		return "", err
	}
	return agentActions[backend], nil
}

func FromAgentAction(agent string) (string, error) {
	backend, ok := backendActions[strings.ToLower(strings.TrimSpace(agent))]
	if !ok {
		return "", fmt.Errorf("%w: unknown agent action %q", ErrValidation, agent)
	}
	return backend, nil
}

// BuildAgentCommand renders a stored command in the agent wire format.
// Wake-on-LAN is addressed by MAC only; every other action by IP only.
func BuildAgentCommand(cmd *entities.Command) (entities.AgentCommand, error) {
	agent, err := ToAgentAction(cmd.Action)
	if err != nil {
		return entities.AgentCommand{}, err
	}
	msg := entities.AgentCommand{
		Action:     agent,
		TargetIP:   cmd.TargetIP,
		Parameters: cmd.Parameters,
	}
	if agent == agentActions[ActionWakeOnLan] {
		msg.TargetIP = ""
		msg.MacAddress = cmd.MacAddress
	}
	return msg, nil
}
