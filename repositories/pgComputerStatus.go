package repositories

import (
	"context"

	"gorm.io/gorm/clause"

	"lab-server/db"
	"lab-server/entities"
)

type computerStatusPgRepository struct {
	db db.Database
}

func NewComputerStatusPgRepository(database db.Database) ComputerStatusRepository {
	return &computerStatusPgRepository{db: database}
}

// Upsert writes the whole row keyed by IP in one statement.
func (r *computerStatusPgRepository) Upsert(ctx context.Context, status *entities.ComputerStatus) error {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ip_address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"room_number", "pc_id", "pc_name", "mac_address", "status", "last_seen", "updated_at",
		}),
	}).Create(status).Error
}

func (r *computerStatusPgRepository) GetByIP(ctx context.Context, ip string) (*entities.ComputerStatus, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var st entities.ComputerStatus
	if err := tx.Where("ip_address = ?", ip).First(&st).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (r *computerStatusPgRepository) GetAll(ctx context.Context) ([]entities.ComputerStatus, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var all []entities.ComputerStatus
	err := tx.Order("room_number ASC, pc_id ASC").Find(&all).Error
	return all, err
}

func (r *computerStatusPgRepository) CountByStatus(ctx context.Context, status entities.ComputerState) (int64, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var n int64
	err := tx.Model(&entities.ComputerStatus{}).Where("status = ?", string(status)).Count(&n).Error
	return n, err
}
