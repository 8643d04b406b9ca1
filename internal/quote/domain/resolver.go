package domain

import (
	"math"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
)

// Resolve folds a price list's applicable conditions into a final amount.
// Surviving conditions apply sequentially in (priority asc, id asc) order,
// each against the running amount: percentage discounts compound, fixed
// discounts subtract flat cents. The result never drops below zero.
//
// The resolver performs no tax-rate lookup. For a tax_excluded list the
// caller adds tax afterwards; for tax_included the result already is the
// tax-inclusive price.
func Resolve(conditions []conditiondomain.PriceListCondition, evalCtx conditiondomain.Context, baseCents int64, now time.Time) (int64, []snowflake.ID, error) {
	applicable := make([]conditiondomain.PriceListCondition, 0, len(conditions))
	for i := range conditions {
		ok, err := conditions[i].Evaluate(now, evalCtx)
		if err != nil {
			return 0, nil, err
		}
		if ok {
			applicable = append(applicable, conditions[i])
		}
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		if applicable[i].Priority != applicable[j].Priority {
			return applicable[i].Priority < applicable[j].Priority
		}
		return applicable[i].ID < applicable[j].ID
	})

	running := baseCents
	applied := make([]snowflake.ID, 0, len(applicable))
	for i := range applicable {
		cond := &applicable[i]
		switch cond.DiscountType {
		case conditiondomain.DiscountPercentage:
			discount := int64(math.Round(float64(running) * cond.DiscountValue / 100))
			running -= discount
		case conditiondomain.DiscountFixedAmount:
			running -= int64(math.Round(cond.DiscountValue))
		default:
			return 0, nil, ErrInvalidDiscountType
		}
		if running < 0 {
			running = 0
		}
		applied = append(applied, cond.ID)
	}

	return running, applied, nil
}
