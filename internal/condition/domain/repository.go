package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cond *PriceListCondition) error
	Update(ctx context.Context, db *gorm.DB, cond *PriceListCondition) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*PriceListCondition, error)
	ListByPriceList(ctx context.Context, db *gorm.DB, orgID, priceListID snowflake.ID) ([]PriceListCondition, error)
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	DeleteByPriceList(ctx context.Context, db *gorm.DB, orgID, priceListID snowflake.ID) error
}
