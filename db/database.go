package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Database interface {
	GetDB() *gorm.DB
	// WithTimeout returns a session bound to ctx and the store timeout.
	WithTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc)
}

type GormDatabase struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func (g *GormDatabase) GetDB() *gorm.DB { return g.DB }

func (g *GormDatabase) WithTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if g.Timeout <= 0 {
		return g.DB.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	return g.DB.WithContext(ctx), cancel
}
