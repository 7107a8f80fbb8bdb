package repositories

import (
	"context"
	"strings"

	"lab-server/db"
	"lab-server/entities"
)

type installableAppPgRepository struct {
	db db.Database
}

func NewInstallableAppPgRepository(database db.Database) InstallableAppRepository {
	return &installableAppPgRepository{db: database}
}

func (r *installableAppPgRepository) Create(ctx context.Context, app *entities.InstallableApp) error {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	return translate(tx.Create(app).Error)
}

func (r *installableAppPgRepository) GetAll(ctx context.Context) ([]entities.InstallableApp, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var apps []entities.InstallableApp
	err := tx.Order("name ASC").Find(&apps).Error
	return apps, err
}

// GetByName matches case-insensitively.
func (r *installableAppPgRepository) GetByName(ctx context.Context, name string) (*entities.InstallableApp, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var app entities.InstallableApp
	if err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&app).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r *installableAppPgRepository) Delete(ctx context.Context, id uint) error {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	res := tx.Where("id = ?", id).Delete(&entities.InstallableApp{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
