package entities

// AgentCommand is the payload agents read from pc_commands.
type AgentCommand struct {
	Action     string `json:"action"`
	TargetIP   string `json:"targetIp"`
	MacAddress string `json:"macAddress,omitempty"`
	Parameters string `json:"parameters"`
}

// CommandResult is what agents publish on pc_responses. ExecutedAt is kept as
// text because agents send both RFC3339 and zone-less timestamps.
type CommandResult struct {
	CommandID     uint   `json:"commandId"`
	ComputerName  string `json:"computerName"`
	Status        string `json:"status"`
	ResultMessage string `json:"resultMessage,omitempty"`
	ExecutedAt    string `json:"executedAt,omitempty"`
}

// Heartbeat is what agents publish on pc_status_updates.
type Heartbeat struct {
	PcID       uint   `json:"pcId"`
	PcName     string `json:"pcName"`
	IPAddress  string `json:"ipAddress"`
	MacAddress string `json:"macAddress"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
}
