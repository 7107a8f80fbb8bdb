package repositories

import (
	"context"

	"gorm.io/gorm/clause"

	"lab-server/db"
	"lab-server/entities"
)

type roomPcPgRepository struct {
	db db.Database
}

func NewRoomPcPgRepository(database db.Database) RoomPcRepository {
	return &roomPcPgRepository{db: database}
}

func (r *roomPcPgRepository) Get(ctx context.Context, room int, pcID uint) (*entities.RoomPC, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var pc entities.RoomPC
	if err := tx.Where("room_number = ? AND pc_id = ?", room, pcID).First(&pc).Error; err != nil {
		return nil, translate(err)
	}
	return &pc, nil
}

func (r *roomPcPgRepository) ListByRoom(ctx context.Context, room int) ([]entities.RoomPC, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var pcs []entities.RoomPC
	err := tx.Where("room_number = ?", room).Order("pc_id ASC").Find(&pcs).Error
	return pcs, err
}

func (r *roomPcPgRepository) FindByIP(ctx context.Context, ip string) (*entities.RoomPC, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var pc entities.RoomPC
	if err := tx.Where("ip = ?", ip).First(&pc).Error; err != nil {
		return nil, translate(err)
	}
	return &pc, nil
}

func (r *roomPcPgRepository) Count(ctx context.Context) (int64, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var n int64
	err := tx.Model(&entities.RoomPC{}).Count(&n).Error
	return n, err
}

func (r *roomPcPgRepository) UpsertAll(ctx context.Context, pcs []entities.RoomPC) error {
	if len(pcs) == 0 {
		return nil
	}
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_number"}, {Name: "pc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "ip", "mac"}),
	}).Create(&pcs).Error
}
