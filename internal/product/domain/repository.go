package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Product, error)
	// Search returns a page of products matching the case-insensitive name
	// substring, ordered by created_at ascending, plus the unpaged total.
	Search(ctx context.Context, db *gorm.DB, orgID snowflake.ID, term string, offset, limit int) ([]Product, int64, error)
}
