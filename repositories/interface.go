package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"lab-server/entities"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type CommandFilter struct {
	ComputerName string
	Status       entities.CommandStatus
}

// StatusChange is the set of columns a lifecycle transition writes.
// Nil timestamps leave the stored value untouched.
type StatusChange struct {
	Status        entities.CommandStatus
	ResultMessage string
	SentAt        *time.Time
	ExecutedAt    *time.Time
}

type CommandRepository interface {
	Create(ctx context.Context, cmd *entities.Command) error
	GetByID(ctx context.Context, id uint) (*entities.Command, error)
	List(ctx context.Context, filter CommandFilter) ([]entities.Command, error)
	// Transition applies change only while the stored status is one of from.
	// It reports whether a row was written.
	Transition(ctx context.Context, id uint, from []entities.CommandStatus, change StatusChange) (bool, error)
	CountByStatus(ctx context.Context) (map[entities.CommandStatus]int64, error)
}

type RoomPcRepository interface {
	Get(ctx context.Context, room int, pcID uint) (*entities.RoomPC, error)
	ListByRoom(ctx context.Context, room int) ([]entities.RoomPC, error)
	FindByIP(ctx context.Context, ip string) (*entities.RoomPC, error)
	Count(ctx context.Context) (int64, error)
	UpsertAll(ctx context.Context, pcs []entities.RoomPC) error
}

type ComputerStatusRepository interface {
	Upsert(ctx context.Context, status *entities.ComputerStatus) error
	GetByIP(ctx context.Context, ip string) (*entities.ComputerStatus, error)
	GetAll(ctx context.Context) ([]entities.ComputerStatus, error)
	CountByStatus(ctx context.Context, status entities.ComputerState) (int64, error)
}

type BlockedWebsiteRepository interface {
	Create(ctx context.Context, site *entities.BlockedWebsite) error
	ExistsByURL(ctx context.Context, url string) (bool, error)
	GetByID(ctx context.Context, id uint) (*entities.BlockedWebsite, error)
	GetAll(ctx context.Context) ([]entities.BlockedWebsite, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type InstallableAppRepository interface {
	Create(ctx context.Context, app *entities.InstallableApp) error
	GetAll(ctx context.Context) ([]entities.InstallableApp, error)
	GetByName(ctx context.Context, name string) (*entities.InstallableApp, error)
	Delete(ctx context.Context, id uint) error
}

type IncidentRepository interface {
	Create(ctx context.Context, incident *entities.Incident) error
	GetByID(ctx context.Context, id uint) (*entities.Incident, error)
	// List returns newest first; an empty status lists everything.
	List(ctx context.Context, status entities.IncidentStatus) ([]entities.Incident, error)
	// Complete moves a PENDING incident to COMPLETED and reports whether a
	// row was written.
	Complete(ctx context.Context, id uint, at time.Time) (bool, error)
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
