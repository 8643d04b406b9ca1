package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status *Status
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, list *PriceList) error
	Update(ctx context.Context, db *gorm.DB, list *PriceList) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*PriceList, error)
	FindDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*PriceList, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter) ([]PriceList, error)
	// ClearDefault unsets is_default on every list of the org except exceptID.
	ClearDefault(ctx context.Context, db *gorm.DB, orgID, exceptID snowflake.ID, now time.Time) error
	CountDefaults(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
}
