package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

type roomPC struct {
	ID   uint   `json:"pcId"`
	Name string `json:"name"`
	IP   string `json:"ip"`
	MAC  string `json:"mac"`
}

type commandView struct {
	ID            uint   `json:"id"`
	ComputerName  string `json:"computerName"`
	Action        string `json:"action"`
	Status        string `json:"status"`
	ResultMessage string `json:"resultMessage"`
}

type computerStatus struct {
	IPAddress string `json:"ipAddress"`
	Status    string `json:"status"`
}

type apiClient struct {
	base string
	user string
	http *http.Client
}

func newAPIClient(base, user string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		user: user,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set("X-User-Email", c.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("server not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	envelope := struct {
		Data interface{} `json:"data"`
	}{Data: out}
	return json.NewDecoder(resp.Body).Decode(&envelope)
}

func (c *apiClient) listRooms() tea.Cmd {
	return func() tea.Msg {
		var rooms []int
		if err := c.do(http.MethodGet, "/api/v1/rooms", nil, &rooms); err != nil {
			return errMsg{err}
		}
		return roomsLoadedMsg(rooms)
	}
}

func (c *apiClient) listPCs(room int) tea.Cmd {
	return func() tea.Msg {
		var pcs []roomPC
		if err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/pcs", room), nil, &pcs); err != nil {
			return errMsg{err}
		}
		return pcsLoadedMsg(pcs)
	}
}

func (c *apiClient) sendCommand(room int, pcID uint, action, params string) tea.Cmd {
	return func() tea.Msg {
		payload := map[string]interface{}{
			"roomNumber": room,
			"pcId":       pcID,
			"action":     action,
			"parameters": params,
		}
		var cmd commandView
		if err := c.do(http.MethodPost, "/api/v1/commands", payload, &cmd); err != nil {
			return errMsg{err}
		}
		return commandSentMsg(cmd)
	}
}

// watchStatus streams /ws/status into the program until the connection
// drops, then retries.
func watchStatus(base string, p *tea.Program) {
	u, err := url.Parse(base)
	if err != nil {
		return
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/status"

	for {
		conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
		if err != nil {
			p.Send(feedStateMsg(false))
			time.Sleep(5 * time.Second)
			continue
		}
		p.Send(feedStateMsg(true))
		for {
			var st computerStatus
			if err := conn.ReadJSON(&st); err != nil {
				break
			}
			p.Send(statusMsg(st))
		}
		_ = conn.Close()
		p.Send(feedStateMsg(false))
		time.Sleep(2 * time.Second)
	}
}
