package repositories

import (
	"context"

	"lab-server/db"
	"lab-server/entities"
)

type blockedWebsitePgRepository struct {
	db db.Database
}

func NewBlockedWebsitePgRepository(database db.Database) BlockedWebsiteRepository {
	return &blockedWebsitePgRepository{db: database}
}

func (r *blockedWebsitePgRepository) Create(ctx context.Context, site *entities.BlockedWebsite) error {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	return translate(tx.Create(site).Error)
}

func (r *blockedWebsitePgRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var n int64
	err := tx.Model(&entities.BlockedWebsite{}).Where("url = ?", url).Count(&n).Error
	return n > 0, err
}

func (r *blockedWebsitePgRepository) GetByID(ctx context.Context, id uint) (*entities.BlockedWebsite, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var site entities.BlockedWebsite
	if err := tx.Where("id = ?", id).First(&site).Error; err != nil {
		return nil, translate(err)
	}
	return &site, nil
}

func (r *blockedWebsitePgRepository) GetAll(ctx context.Context) ([]entities.BlockedWebsite, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var sites []entities.BlockedWebsite
	err := tx.Order("created_at DESC").Find(&sites).Error
	return sites, err
}

func (r *blockedWebsitePgRepository) Delete(ctx context.Context, id uint) error {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	res := tx.Where("id = ?", id).Delete(&entities.BlockedWebsite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *blockedWebsitePgRepository) Count(ctx context.Context) (int64, error) {
	tx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	var n int64
	err := tx.Model(&entities.BlockedWebsite{}).Count(&n).Error
	return n, err
}
