package repositories

import (
	"context"

	"lab-server/db"
	"lab-server/entities"
)

type commandPgRepository struct {
	db db.Database
}

func NewCommandPgRepository(database db.Database) CommandRepository {
	return &commandPgRepository{db: database}
}

func (r *commandPgRepository) Create(ctx context.Context, cmd *entities.Command) error {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	return translate(tx.Create(cmd).Error)
}

func (r *commandPgRepository) GetByID(ctx context.Context, id uint) (*entities.Command, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var cmd entities.Command
	if err := tx.Where("id = ?", id).First(&cmd).Error; err != nil {
		return nil, translate(err)
	}
	return &cmd, nil
}

func (r *commandPgRepository) List(ctx context.Context, filter CommandFilter) ([]entities.Command, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := tx.Model(&entities.Command{})
	if filter.ComputerName != "" {
		q = q.Where("computer_name = ?", filter.ComputerName)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	var cmds []entities.Command
	err := q.Order("created_at DESC").Find(&cmds).Error
	return cmds, err
}

func (r *commandPgRepository) Transition(ctx context.Context, id uint, from []entities.CommandStatus, change StatusChange) (bool, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	allowed := make([]string, len(from))
	for i, st := range from {
		allowed[i] = string(st)
	}
	updates := map[string]interface{}{
		"status":         string(change.Status),
		"result_message": change.ResultMessage,
	}
	if change.SentAt != nil {
		updates["sent_at"] = *change.SentAt
	}
	if change.ExecutedAt != nil {
		updates["executed_at"] = *change.ExecutedAt
	}

	res := tx.Model(&entities.Command{}).Where("id = ? AND status IN ?", id, allowed).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *commandPgRepository) CountByStatus(ctx context.Context) (map[entities.CommandStatus]int64, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var rows []struct {
		Status string
		Count  int64
	}
	err := tx.Model(&entities.Command{}).Select("status, count(*) AS count").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[entities.CommandStatus]int64, len(rows))
	for _, row := range rows {
		counts[entities.CommandStatus(row.Status)] = row.Count
	}
	return counts, nil
}
