package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"lab-server/entities"
	"lab-server/repositories"
)

type memCommands struct {
	mu     sync.Mutex
	rows   map[uint]entities.Command
	nextID uint
}

func newMemCommands() *memCommands {
	return &memCommands{rows: make(map[uint]entities.Command)}
}

func (m *memCommands) Create(_ context.Context, cmd *entities.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cmd.ID = m.nextID
	m.rows[cmd.ID] = *cmd
	return nil
}

func (m *memCommands) GetByID(_ context.Context, id uint) (*entities.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd, ok := m.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &cmd, nil
}

func (m *memCommands) List(_ context.Context, filter repositories.CommandFilter) ([]entities.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Command
	for _, cmd := range m.rows {
		if filter.ComputerName != "" && cmd.ComputerName != filter.ComputerName {
			continue
		}
		if filter.Status != "" && cmd.Status != filter.Status {
			continue
		}
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memCommands) Transition(_ context.Context, id uint, from []entities.CommandStatus, change repositories.StatusChange) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, st := range from {
		if cmd.Status == st {
			allowed = true
		}
	}
	if !allowed {
		return false, nil
	}
	cmd.Status = change.Status
	cmd.ResultMessage = change.ResultMessage
	if change.SentAt != nil {
		cmd.SentAt = change.SentAt
	}
	if change.ExecutedAt != nil {
		cmd.ExecutedAt = change.ExecutedAt
	}
	m.rows[id] = cmd
	return true, nil
}

func (m *memCommands) CountByStatus(_ context.Context) (map[entities.CommandStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[entities.CommandStatus]int64)
	for _, cmd := range m.rows {
		out[cmd.Status]++
	}
	return out, nil
}

func (m *memCommands) all() []entities.Command {
	out, _ := m.List(context.Background(), repositories.CommandFilter{})
	return out
}

func (m *memCommands) set(cmd entities.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[cmd.ID] = cmd
}

type memRoomPcs struct {
	mu    sync.Mutex
	pcs   []entities.RoomPC
	lists int
}

func (m *memRoomPcs) Get(_ context.Context, room int, pcID uint) (*entities.RoomPC, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pc := range m.pcs {
		if pc.RoomNumber == room && pc.PcID == pcID {
			pc := pc
			return &pc, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memRoomPcs) ListByRoom(_ context.Context, room int) ([]entities.RoomPC, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	var out []entities.RoomPC
	for _, pc := range m.pcs {
		if pc.RoomNumber == room {
			out = append(out, pc)
		}
	}
	return out, nil
}

func (m *memRoomPcs) FindByIP(_ context.Context, ip string) (*entities.RoomPC, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pc := range m.pcs {
		if pc.IP == ip {
			pc := pc
			return &pc, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memRoomPcs) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.pcs)), nil
}

func (m *memRoomPcs) UpsertAll(_ context.Context, pcs []entities.RoomPC) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pc := range pcs {
		replaced := false
		for i, cur := range m.pcs {
			if cur.RoomNumber == pc.RoomNumber && cur.PcID == pc.PcID {
				m.pcs[i] = pc
				replaced = true
			}
		}
		if !replaced {
			m.pcs = append(m.pcs, pc)
		}
	}
	return nil
}

type memStatuses struct {
	mu   sync.Mutex
	rows map[string]entities.ComputerStatus
}

func newMemStatuses() *memStatuses {
	return &memStatuses{rows: make(map[string]entities.ComputerStatus)}
}

func (m *memStatuses) Upsert(_ context.Context, status *entities.ComputerStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[status.IPAddress] = *status
	return nil
}

func (m *memStatuses) GetByIP(_ context.Context, ip string) (*entities.ComputerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.rows[ip]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &st, nil
}

func (m *memStatuses) GetAll(_ context.Context) ([]entities.ComputerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.ComputerStatus, 0, len(m.rows))
	for _, st := range m.rows {
		out = append(out, st)
	}
	return out, nil
}

func (m *memStatuses) CountByStatus(_ context.Context, state entities.ComputerState) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, st := range m.rows {
		if st.Status == state {
			n++
		}
	}
	return n, nil
}

type memWebsites struct {
	mu     sync.Mutex
	rows   []entities.BlockedWebsite
	nextID uint
}

func (m *memWebsites) Create(_ context.Context, site *entities.BlockedWebsite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.URL == site.URL {
			return repositories.ErrDuplicate
		}
	}
	m.nextID++
	site.ID = m.nextID
	m.rows = append(m.rows, *site)
	return nil
}

func (m *memWebsites) ExistsByURL(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (m *memWebsites) GetByID(_ context.Context, id uint) (*entities.BlockedWebsite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memWebsites) GetAll(_ context.Context) ([]entities.BlockedWebsite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.BlockedWebsite(nil), m.rows...), nil
}

func (m *memWebsites) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.rows {
		if s.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *memWebsites) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

type memApps struct {
	mu     sync.Mutex
	rows   []entities.InstallableApp
	nextID uint
}

func (m *memApps) Create(_ context.Context, app *entities.InstallableApp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if strings.EqualFold(a.Name, app.Name) {
			return repositories.ErrDuplicate
		}
	}
	m.nextID++
	app.ID = m.nextID
	m.rows = append(m.rows, *app)
	return nil
}

func (m *memApps) GetAll(_ context.Context) ([]entities.InstallableApp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.InstallableApp(nil), m.rows...), nil
}

func (m *memApps) GetByName(_ context.Context, name string) (*entities.InstallableApp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if strings.EqualFold(a.Name, name) {
			a := a
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memApps) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.rows {
		if a.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// recordingPublisher captures published commands and fails for the IPs or
// MACs listed in failFor.
type recordingPublisher struct {
	mu      sync.Mutex
	sent    []entities.AgentCommand
	failFor map[string]bool
}

var errBrokerDown = errors.New("broker unavailable")

func (p *recordingPublisher) Publish(ctx context.Context, msg entities.AgentCommand) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.failFor[msg.TargetIP] || p.failFor[msg.MacAddress] {
		return errBrokerDown
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *recordingPublisher) published() []entities.AgentCommand {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entities.AgentCommand(nil), p.sent...)
}

type recordingFeed struct {
	mu   sync.Mutex
	got  []entities.ComputerStatus
	fail error
}

func (f *recordingFeed) Broadcast(status entities.ComputerStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, status)
	return f.fail
}

// labPCs builds rooms 1..rooms with perRoom PCs each. PC n of room r has
// IP 10.0.r.n and MAC aa:bb:cc:00:0r:0n.
func labPCs(rooms, perRoom int) []entities.RoomPC {
	var pcs []entities.RoomPC
	for r := 1; r <= rooms; r++ {
		for n := 1; n <= perRoom; n++ {
			pcs = append(pcs, entities.RoomPC{
				RoomNumber: r,
				PcID:       uint(n),
				Name:       pcName(r, n),
				IP:         pcIP(r, n),
				MAC:        pcMAC(r, n),
			})
		}
	}
	return pcs
}

func pcName(r, n int) string { return fmt.Sprintf("LAB%d-PC%d", r, n) }
func pcIP(r, n int) string   { return fmt.Sprintf("10.0.%d.%d", r, n) }
func pcMAC(r, n int) string  { return fmt.Sprintf("aa:bb:cc:00:%02d:%02d", r, n) }

type fixture struct {
	commands  *memCommands
	roomPcs   *memRoomPcs
	statuses  *memStatuses
	websites  *memWebsites
	apps      *memApps
	publisher *recordingPublisher
	feed      *recordingFeed
	directory *DirectoryUseCase
	dispatch  *CommandsUseCase
}

func newFixture(rooms []int, pcs []entities.RoomPC) *fixture {
	f := &fixture{
		commands:  newMemCommands(),
		roomPcs:   &memRoomPcs{pcs: pcs},
		statuses:  newMemStatuses(),
		websites:  &memWebsites{},
		apps:      &memApps{},
		publisher: &recordingPublisher{failFor: map[string]bool{}},
		feed:      &recordingFeed{},
	}
	f.directory = NewDirectoryUseCase(f.roomPcs, rooms)
	f.dispatch = NewCommandsUseCase(f.commands, f.directory, f.publisher, time.Second)
	return f
}
