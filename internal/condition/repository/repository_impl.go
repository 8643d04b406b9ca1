package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() conditiondomain.Repository {
	return &repo{}
}

const conditionColumns = `id, org_id, price_list_id, condition_type, operator, condition_value, discount_type, discount_value, priority, status, valid_from, valid_to, config, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cond *conditiondomain.PriceListCondition) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO price_list_conditions (
			id, org_id, price_list_id, condition_type, operator, condition_value, discount_type,
			discount_value, priority, status, valid_from, valid_to, config, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cond.ID,
		cond.OrgID,
		cond.PriceListID,
		cond.ConditionType,
		cond.Operator,
		cond.ConditionValue,
		cond.DiscountType,
		cond.DiscountValue,
		cond.Priority,
		cond.Status,
		cond.ValidFrom,
		cond.ValidTo,
		cond.Config,
		cond.CreatedAt,
		cond.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, cond *conditiondomain.PriceListCondition) error {
	return db.WithContext(ctx).Exec(
		`UPDATE price_list_conditions
		 SET condition_type = ?, operator = ?, condition_value = ?, discount_type = ?, discount_value = ?,
		     priority = ?, status = ?, valid_from = ?, valid_to = ?, config = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		cond.ConditionType,
		cond.Operator,
		cond.ConditionValue,
		cond.DiscountType,
		cond.DiscountValue,
		cond.Priority,
		cond.Status,
		cond.ValidFrom,
		cond.ValidTo,
		cond.Config,
		cond.UpdatedAt,
		cond.OrgID,
		cond.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*conditiondomain.PriceListCondition, error) {
	var cond conditiondomain.PriceListCondition
	err := db.WithContext(ctx).Raw(
		`SELECT `+conditionColumns+` FROM price_list_conditions WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&cond).Error
	if err != nil {
		return nil, err
	}
	if cond.ID == 0 {
		return nil, nil
	}
	return &cond, nil
}

func (r *repo) ListByPriceList(ctx context.Context, db *gorm.DB, orgID, priceListID snowflake.ID) ([]conditiondomain.PriceListCondition, error) {
	var items []conditiondomain.PriceListCondition
	err := db.WithContext(ctx).Raw(
		`SELECT `+conditionColumns+` FROM price_list_conditions
		 WHERE org_id = ? AND price_list_id = ?
		 ORDER BY priority ASC, id ASC`,
		orgID,
		priceListID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM price_list_conditions WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

func (r *repo) DeleteByPriceList(ctx context.Context, db *gorm.DB, orgID, priceListID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM price_list_conditions WHERE org_id = ? AND price_list_id = ?`,
		orgID,
		priceListID,
	).Error
}
