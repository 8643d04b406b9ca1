package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/pricelist/internal/clock"
	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
	conditionrepo "github.com/smallbiznis/pricelist/internal/condition/repository"
	"github.com/smallbiznis/pricelist/internal/orgcontext"
	pricelistdomain "github.com/smallbiznis/pricelist/internal/pricelist/domain"
	pricelistrepo "github.com/smallbiznis/pricelist/internal/pricelist/repository"
	productdomain "github.com/smallbiznis/pricelist/internal/product/domain"
	productrepo "github.com/smallbiznis/pricelist/internal/product/repository"
	quotedomain "github.com/smallbiznis/pricelist/internal/quote/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    quotedomain.Service
	db     *gorm.DB
	node   *snowflake.Node
	ctx    context.Context
	orgID  snowflake.ID
	listID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&pricelistdomain.PriceList{},
		&conditiondomain.PriceListCondition{},
		&productdomain.Product{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	orgID := node.Generate()
	list := pricelistdomain.PriceList{
		ID:        node.Generate(),
		OrgID:     orgID,
		Name:      "Retail",
		Currency:  "USD",
		Status:    pricelistdomain.StatusActive,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, db.Create(&list).Error)

	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         clock.NewFakeClock(testNow),
		PriceListRepo: pricelistrepo.Provide(),
		ConditionRepo: conditionrepo.Provide(),
		ProductRepo:   productrepo.Provide(),
	})

	return &fixture{
		svc:    svc,
		db:     db,
		node:   node,
		ctx:    orgcontext.WithOrgID(context.Background(), orgID),
		orgID:  orgID,
		listID: list.ID,
	}
}

func (f *fixture) addCondition(t *testing.T, condType conditiondomain.ConditionType, op conditiondomain.Operator, payload string, discountType conditiondomain.DiscountType, discountValue float64, priority int) conditiondomain.PriceListCondition {
	t.Helper()
	cond := conditiondomain.PriceListCondition{
		ID:             f.node.Generate(),
		OrgID:          f.orgID,
		PriceListID:    f.listID,
		ConditionType:  condType,
		Operator:       op,
		ConditionValue: []byte(payload),
		DiscountType:   discountType,
		DiscountValue:  discountValue,
		Priority:       priority,
		Status:         conditiondomain.StatusActive,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}
	require.NoError(t, f.db.Create(&cond).Error)
	return cond
}

func (f *fixture) addProduct(t *testing.T, name, sku string, basePriceCents int64) productdomain.Product {
	t.Helper()
	product := productdomain.Product{
		ID:             f.node.Generate(),
		OrgID:          f.orgID,
		SKU:            sku,
		Name:           name,
		BasePriceCents: basePriceCents,
		Active:         true,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}
	require.NoError(t, f.db.Create(&product).Error)
	return product
}

func TestQuote_ExplicitBaseAmount(t *testing.T) {
	f := newFixture(t)

	threshold := f.addCondition(t, conditiondomain.TypeAmount, conditiondomain.OpGreaterOrEqual,
		`{"amount": 5000}`, conditiondomain.DiscountFixedAmount, 500, 1)
	percent := f.addCondition(t, conditiondomain.TypeQuantity, conditiondomain.OpGreaterOrEqual,
		`{"quantity": 10}`, conditiondomain.DiscountPercentage, 10, 2)

	base := int64(10000)
	resp, err := f.svc.Quote(f.ctx, f.listID.String(), quotedomain.Request{
		BaseAmountCents: &base,
		Quantity:        12,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), resp.BaseAmountCents)
	// 500 off, then 10% of the running 9500.
	assert.Equal(t, int64(8550), resp.FinalAmountCents)
	assert.Equal(t, []string{threshold.ID.String(), percent.ID.String()}, resp.AppliedConditionIDs)
	assert.Equal(t, "USD", resp.Currency)
}

func TestQuote_ProductBasePrice(t *testing.T) {
	f := newFixture(t)

	product := f.addProduct(t, "Desk", "SKU-1", 20000)
	f.addCondition(t, conditiondomain.TypeCustomerType, conditiondomain.OpEquals,
		`{"customer_type": "wholesale"}`, conditiondomain.DiscountPercentage, 25, 1)

	resp, err := f.svc.Quote(f.ctx, f.listID.String(), quotedomain.Request{
		ProductID:    product.ID.String(),
		CustomerType: "wholesale",
	})
	require.NoError(t, err)
	assert.Equal(t, product.ID.String(), resp.ProductID)
	assert.Equal(t, int64(20000), resp.BaseAmountCents)
	assert.Equal(t, int64(15000), resp.FinalAmountCents)

	// A different customer type leaves the price untouched.
	retail, err := f.svc.Quote(f.ctx, f.listID.String(), quotedomain.Request{
		ProductID:    product.ID.String(),
		CustomerType: "retail",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), retail.FinalAmountCents)
	assert.Empty(t, retail.AppliedConditionIDs)
}

func TestQuote_DateRangeEvaluatedAtRequestedInstant(t *testing.T) {
	f := newFixture(t)

	f.addCondition(t, conditiondomain.TypeDateRange, conditiondomain.OpBetween,
		`{"from": "2026-06-10T00:00:00Z", "to": "2026-06-20T23:59:59Z"}`,
		conditiondomain.DiscountPercentage, 15, 1)

	base := int64(10000)

	outside, err := f.svc.Quote(f.ctx, f.listID.String(), quotedomain.Request{BaseAmountCents: &base})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), outside.FinalAmountCents)

	at := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	inside, err := f.svc.Quote(f.ctx, f.listID.String(), quotedomain.Request{BaseAmountCents: &base, At: &at})
	require.NoError(t, err)
	assert.Equal(t, int64(8500), inside.FinalAmountCents)
}

func TestQuote_MissingBaseAndProductRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Quote(f.ctx, f.listID.String(), quotedomain.Request{})
	assert.ErrorIs(t, err, quotedomain.ErrInvalidBaseAmount)

	negative := int64(-1)
	_, err = f.svc.Quote(f.ctx, f.listID.String(), quotedomain.Request{BaseAmountCents: &negative})
	assert.ErrorIs(t, err, quotedomain.ErrInvalidBaseAmount)

	_, err = f.svc.Quote(f.ctx, f.listID.String(), quotedomain.Request{ProductID: f.node.Generate().String()})
	assert.ErrorIs(t, err, quotedomain.ErrInvalidProduct)
}

func TestQuote_UnknownListNotFound(t *testing.T) {
	f := newFixture(t)

	base := int64(1000)
	_, err := f.svc.Quote(f.ctx, f.node.Generate().String(), quotedomain.Request{BaseAmountCents: &base})
	assert.ErrorIs(t, err, quotedomain.ErrNotFound)
}

func TestQuote_DefaultQuantityIsOne(t *testing.T) {
	f := newFixture(t)

	f.addCondition(t, conditiondomain.TypeQuantity, conditiondomain.OpEquals,
		`{"quantity": 1}`, conditiondomain.DiscountFixedAmount, 100, 1)

	base := int64(1000)
	resp, err := f.svc.Quote(f.ctx, f.listID.String(), quotedomain.Request{BaseAmountCents: &base})
	require.NoError(t, err)
	assert.Equal(t, int64(900), resp.FinalAmountCents)
}
