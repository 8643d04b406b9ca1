package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/smallbiznis/pricelist/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() productdomain.Repository {
	return &repo{}
}

const productColumns = `id, org_id, sku, name, description, base_price_cents, active, metadata, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *productdomain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (
			id, org_id, sku, name, description, base_price_cents, active, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.OrgID,
		product.SKU,
		product.Name,
		product.Description,
		product.BasePriceCents,
		product.Active,
		product.Metadata,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*productdomain.Product, error) {
	var product productdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT `+productColumns+` FROM products WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) Search(ctx context.Context, db *gorm.DB, orgID snowflake.ID, term string, offset, limit int) ([]productdomain.Product, int64, error) {
	where := `org_id = ?`
	args := []any{orgID}
	if term = strings.TrimSpace(term); term != "" {
		where += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(term)+"%")
	}

	var total int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM products WHERE `+where,
		args...,
	).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []productdomain.Product
	pageArgs := append(args, limit, offset)
	if err := db.WithContext(ctx).Raw(
		`SELECT `+productColumns+` FROM products WHERE `+where+` ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`,
		pageArgs...,
	).Scan(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
