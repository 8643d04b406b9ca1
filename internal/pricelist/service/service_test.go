package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/pricelist/internal/clock"
	conditionrepo "github.com/smallbiznis/pricelist/internal/condition/repository"
	"github.com/smallbiznis/pricelist/internal/orgcontext"
	pricelistdomain "github.com/smallbiznis/pricelist/internal/pricelist/domain"
	pricelistrepo "github.com/smallbiznis/pricelist/internal/pricelist/repository"
	productrepo "github.com/smallbiznis/pricelist/internal/product/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
	productdomain "github.com/smallbiznis/pricelist/internal/product/domain"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (pricelistdomain.Service, *gorm.DB, *snowflake.Node) {
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

	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clock.NewFakeClock(testNow),
		Repo:          pricelistrepo.Provide(),
		ConditionRepo: conditionrepo.Provide(),
		ProductRepo:   productrepo.Provide(),
	})
	return svc, db, node
}

func orgContext(node *snowflake.Node) (context.Context, snowflake.ID) {
	orgID := node.Generate()
	return orgcontext.WithOrgID(context.Background(), orgID), orgID
}

func countDefaults(t *testing.T, db *gorm.DB, orgID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Raw(
		`SELECT COUNT(*) FROM price_lists WHERE org_id = ? AND is_default = TRUE`, orgID,
	).Scan(&count).Error)
	return count
}

func TestCreate_SecondDefaultTakesOver(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx, orgID := orgContext(node)

	listA, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "Retail", Currency: "usd", IsDefault: true})
	require.NoError(t, err)
	assert.True(t, listA.IsDefault)
	assert.Equal(t, "USD", listA.Currency)

	listB, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "Wholesale", Currency: "USD", IsDefault: true})
	require.NoError(t, err)
	assert.True(t, listB.IsDefault)

	reloadedA, err := svc.Get(ctx, listA.ID)
	require.NoError(t, err)
	assert.False(t, reloadedA.IsDefault)

	assert.Equal(t, int64(1), countDefaults(t, db, orgID))
}

func TestCreate_FirstListNotAutoPromoted(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx, orgID := orgContext(node)

	list, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "Retail", Currency: "EUR"})
	require.NoError(t, err)
	assert.False(t, list.IsDefault)
	assert.Equal(t, int64(0), countDefaults(t, db, orgID))

	_, err = svc.GetDefault(ctx)
	assert.ErrorIs(t, err, pricelistdomain.ErrNotFound)
}

func TestUpdate_PromoteMovesDefault(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx, orgID := orgContext(node)

	listA, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "USD", IsDefault: true})
	require.NoError(t, err)
	listB, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "B", Currency: "USD"})
	require.NoError(t, err)

	promote := true
	updated, err := svc.Update(ctx, listB.ID, pricelistdomain.UpdateRequest{IsDefault: &promote})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)

	reloadedA, err := svc.Get(ctx, listA.ID)
	require.NoError(t, err)
	assert.False(t, reloadedA.IsDefault)
	assert.Equal(t, int64(1), countDefaults(t, db, orgID))

	fetchedDefault, err := svc.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, listB.ID, fetchedDefault.ID)
}

func TestUpdate_RepromoteDefaultIsNoop(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx, orgID := orgContext(node)

	listA, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "USD", IsDefault: true})
	require.NoError(t, err)
	listB, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "B", Currency: "USD"})
	require.NoError(t, err)

	promote := true
	updated, err := svc.Update(ctx, listA.ID, pricelistdomain.UpdateRequest{IsDefault: &promote})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)

	reloadedB, err := svc.Get(ctx, listB.ID)
	require.NoError(t, err)
	assert.False(t, reloadedB.IsDefault)
	assert.Equal(t, int64(1), countDefaults(t, db, orgID))
}

func TestUpdate_DemoteSoleDefaultRejected(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := orgContext(node)

	list, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "USD", IsDefault: true})
	require.NoError(t, err)

	demote := false
	_, err = svc.Update(ctx, list.ID, pricelistdomain.UpdateRequest{IsDefault: &demote})
	assert.ErrorIs(t, err, pricelistdomain.ErrCannotRemoveOnlyDefault)

	reloaded, err := svc.Get(ctx, list.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsDefault)
}

func TestUpdate_InactiveNonDefaultKeepsDefault(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx, orgID := orgContext(node)

	_, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "USD", IsDefault: true})
	require.NoError(t, err)
	listB, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "B", Currency: "USD"})
	require.NoError(t, err)

	inactive := pricelistdomain.StatusInactive
	updated, err := svc.Update(ctx, listB.ID, pricelistdomain.UpdateRequest{Status: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, int64(1), countDefaults(t, db, orgID))
}

func TestDelete_DefaultRejected(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := orgContext(node)

	list, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "USD", IsDefault: true})
	require.NoError(t, err)

	err = svc.Delete(ctx, list.ID)
	assert.ErrorIs(t, err, pricelistdomain.ErrCannotDeleteDefault)

	_, err = svc.Get(ctx, list.ID)
	assert.NoError(t, err)
}

func TestDelete_CascadesConditions(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx, orgID := orgContext(node)

	list, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "USD"})
	require.NoError(t, err)

	listID, err := snowflake.ParseString(list.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&conditiondomain.PriceListCondition{
		ID:             node.Generate(),
		OrgID:          orgID,
		PriceListID:    listID,
		ConditionType:  conditiondomain.TypeAmount,
		Operator:       conditiondomain.OpGreaterOrEqual,
		ConditionValue: []byte(`{"amount": 0}`),
		DiscountType:   conditiondomain.DiscountPercentage,
		DiscountValue:  10,
		Status:         conditiondomain.StatusActive,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}).Error)

	require.NoError(t, svc.Delete(ctx, list.ID))

	var remaining int64
	require.NoError(t, db.Raw(
		`SELECT COUNT(*) FROM price_list_conditions WHERE price_list_id = ?`, listID,
	).Scan(&remaining).Error)
	assert.Equal(t, int64(0), remaining)

	_, err = svc.Get(ctx, list.ID)
	assert.ErrorIs(t, err, pricelistdomain.ErrNotFound)
}

// racedInsertRepo fails Insert the way postgres rejects a second default
// when the partial unique index fires after both writers passed the
// in-transaction recount.
type racedInsertRepo struct {
	pricelistdomain.Repository
	insertErr error
}

func (r racedInsertRepo) Insert(ctx context.Context, db *gorm.DB, list *pricelistdomain.PriceList) error {
	return r.insertErr
}

func TestCreate_RacedDefaultSurfacesConflict(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&pricelistdomain.PriceList{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	uniqueViolation := errors.New(`ERROR: duplicate key value violates unique constraint "ux_price_lists_org_default" (SQLSTATE 23505)`)
	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clock.NewFakeClock(testNow),
		Repo:          racedInsertRepo{Repository: pricelistrepo.Provide(), insertErr: uniqueViolation},
		ConditionRepo: conditionrepo.Provide(),
		ProductRepo:   productrepo.Provide(),
	})
	ctx, _ := orgContext(node)

	_, err = svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "USD", IsDefault: true})
	assert.ErrorIs(t, err, pricelistdomain.ErrDefaultConflict)

	// A duplicate key on a non-default write is not a default conflict.
	_, err = svc.Create(ctx, pricelistdomain.CreateRequest{Name: "B", Currency: "USD"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, pricelistdomain.ErrDefaultConflict)
}

func TestGet_OtherOrgIsNotFound(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := orgContext(node)

	list, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "USD"})
	require.NoError(t, err)

	otherCtx, _ := orgContext(node)
	_, err = svc.Get(otherCtx, list.ID)
	assert.ErrorIs(t, err, pricelistdomain.ErrNotFound)
}

func TestCreate_InvalidCurrencyRejected(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := orgContext(node)

	_, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "US"})
	assert.ErrorIs(t, err, pricelistdomain.ErrInvalidCurrency)

	_, err = svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: "U5D"})
	assert.ErrorIs(t, err, pricelistdomain.ErrInvalidCurrency)

	_, err = svc.Create(ctx, pricelistdomain.CreateRequest{Name: "A", Currency: ""})
	assert.ErrorIs(t, err, pricelistdomain.ErrInvalidCurrency)
}

func TestList_FilterAndOrder(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := orgContext(node)

	_, err := svc.Create(ctx, pricelistdomain.CreateRequest{Name: "First", Currency: "USD"})
	require.NoError(t, err)
	inactive := pricelistdomain.StatusInactive
	_, err = svc.Create(ctx, pricelistdomain.CreateRequest{Name: "Second", Currency: "USD", Status: &inactive})
	require.NoError(t, err)

	all, err := svc.List(ctx, pricelistdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "First", all[0].Name)
	assert.Equal(t, "Second", all[1].Name)

	active := pricelistdomain.StatusActive
	filtered, err := svc.List(ctx, pricelistdomain.ListRequest{Status: &active})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "First", filtered[0].Name)
	assert.True(t, filtered[0].IsActive)
}
