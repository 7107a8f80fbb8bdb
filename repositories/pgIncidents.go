package repositories

import (
	"context"
	"time"

	"lab-server/db"
	"lab-server/entities"
)

type incidentPgRepository struct {
	db db.Database
}

func NewIncidentPgRepository(database db.Database) IncidentRepository {
	return &incidentPgRepository{db: database}
}

func (r *incidentPgRepository) Create(ctx context.Context, incident *entities.Incident) error {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	return translate(tx.Create(incident).Error)
}

func (r *incidentPgRepository) GetByID(ctx context.Context, id uint) (*entities.Incident, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var incident entities.Incident
	if err := tx.Where("id = ?", id).First(&incident).Error; err != nil {
		return nil, translate(err)
	}
	return &incident, nil
}

func (r *incidentPgRepository) List(ctx context.Context, status entities.IncidentStatus) ([]entities.Incident, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := tx.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var incidents []entities.Incident
	err := q.Find(&incidents).Error
	return incidents, err
}

func (r *incidentPgRepository) Complete(ctx context.Context, id uint, at time.Time) (bool, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	res := tx.Model(&entities.Incident{}).
		Where("id = ? AND status = ?", id, entities.IncidentPending).
		Updates(map[string]interface{}{"status": entities.IncidentCompleted, "completed_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *incidentPgRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	res := tx.Where("status = ? AND completed_at < ?", entities.IncidentCompleted, cutoff).Delete(&entities.Incident{})
	return res.RowsAffected, res.Error
}
