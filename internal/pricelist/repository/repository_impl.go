package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	pricelistdomain "github.com/smallbiznis/pricelist/internal/pricelist/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricelistdomain.Repository {
	return &repo{}
}

const priceListColumns = `id, org_id, name, currency, is_default, status, pricing_tax_mode, tax_class_id, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, list *pricelistdomain.PriceList) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO price_lists (
			id, org_id, name, currency, is_default, status, pricing_tax_mode, tax_class_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		list.ID,
		list.OrgID,
		list.Name,
		list.Currency,
		list.IsDefault,
		list.Status,
		list.PricingTaxMode,
		list.TaxClassID,
		list.CreatedAt,
		list.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, list *pricelistdomain.PriceList) error {
	return db.WithContext(ctx).Exec(
		`UPDATE price_lists
		 SET name = ?, currency = ?, is_default = ?, status = ?, pricing_tax_mode = ?, tax_class_id = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		list.Name,
		list.Currency,
		list.IsDefault,
		list.Status,
		list.PricingTaxMode,
		list.TaxClassID,
		list.UpdatedAt,
		list.OrgID,
		list.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*pricelistdomain.PriceList, error) {
	var list pricelistdomain.PriceList
	err := db.WithContext(ctx).Raw(
		`SELECT `+priceListColumns+` FROM price_lists WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&list).Error
	if err != nil {
		return nil, err
	}
	if list.ID == 0 {
		return nil, nil
	}
	return &list, nil
}

func (r *repo) FindDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*pricelistdomain.PriceList, error) {
	var list pricelistdomain.PriceList
	err := db.WithContext(ctx).Raw(
		`SELECT `+priceListColumns+` FROM price_lists WHERE org_id = ? AND is_default = TRUE LIMIT 1`,
		orgID,
	).Scan(&list).Error
	if err != nil {
		return nil, err
	}
	if list.ID == 0 {
		return nil, nil
	}
	return &list, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter pricelistdomain.ListFilter) ([]pricelistdomain.PriceList, error) {
	query := `SELECT ` + priceListColumns + ` FROM price_lists WHERE org_id = ?`
	args := []any{orgID}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	var items []pricelistdomain.PriceList
	err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ClearDefault(ctx context.Context, db *gorm.DB, orgID, exceptID snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE price_lists SET is_default = FALSE, updated_at = ? WHERE org_id = ? AND id <> ? AND is_default = TRUE`,
		now,
		orgID,
		exceptID,
	).Error
}

func (r *repo) CountDefaults(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM price_lists WHERE org_id = ? AND is_default = TRUE`,
		orgID,
	).Scan(&count).Error
	return count, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM price_lists WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}
