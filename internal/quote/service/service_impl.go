package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pricelist/internal/clock"
	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
	"github.com/smallbiznis/pricelist/internal/orgcontext"
	pricelistdomain "github.com/smallbiznis/pricelist/internal/pricelist/domain"
	productdomain "github.com/smallbiznis/pricelist/internal/product/domain"
	quotedomain "github.com/smallbiznis/pricelist/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	PriceListRepo pricelistdomain.Repository
	ConditionRepo conditiondomain.Repository
	ProductRepo   productdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	priceListRepo pricelistdomain.Repository
	conditionRepo conditiondomain.Repository
	productRepo   productdomain.Repository
}

func New(p Params) quotedomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("quote.service"),
		clock:         p.Clock,
		priceListRepo: p.PriceListRepo,
		conditionRepo: p.ConditionRepo,
		productRepo:   p.ProductRepo,
	}
}

func (s *Service) Quote(ctx context.Context, priceListID string, req quotedomain.Request) (*quotedomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, quotedomain.ErrInvalidOrganization
	}

	listID, err := snowflake.ParseString(strings.TrimSpace(priceListID))
	if err != nil {
		return nil, quotedomain.ErrInvalidPriceList
	}

	list, err := s.priceListRepo.FindByID(ctx, s.db, orgID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, quotedomain.ErrNotFound
	}

	baseCents, productID, err := s.baseAmount(ctx, orgID, req)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	now := s.clock.Now()
	at := now
	if req.At != nil {
		at = req.At.UTC()
	}

	conditions, err := s.conditionRepo.ListByPriceList(ctx, s.db, orgID, list.ID)
	if err != nil {
		return nil, err
	}

	final, appliedIDs, err := quotedomain.Resolve(conditions, conditiondomain.Context{
		AmountCents:  baseCents,
		Quantity:     quantity,
		At:           at,
		CustomerType: strings.TrimSpace(req.CustomerType),
	}, baseCents, at)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(appliedIDs))
	for _, id := range appliedIDs {
		applied = append(applied, id.String())
	}

	return &quotedomain.Response{
		PriceListID:         list.ID.String(),
		ProductID:           productID,
		Currency:            list.Currency,
		BaseAmountCents:     baseCents,
		FinalAmountCents:    final,
		AppliedConditionIDs: applied,
	}, nil
}

// baseAmount resolves the quote's starting amount: an explicit base amount
// wins, otherwise the product's catalog price is used.
func (s *Service) baseAmount(ctx context.Context, orgID snowflake.ID, req quotedomain.Request) (int64, string, error) {
	if req.BaseAmountCents != nil {
		if *req.BaseAmountCents < 0 {
			return 0, "", quotedomain.ErrInvalidBaseAmount
		}
		return *req.BaseAmountCents, strings.TrimSpace(req.ProductID), nil
	}

	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return 0, "", quotedomain.ErrInvalidBaseAmount
	}
	parsed, err := snowflake.ParseString(productID)
	if err != nil {
		return 0, "", quotedomain.ErrInvalidProduct
	}

	product, err := s.productRepo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return 0, "", err
	}
	if product == nil {
		return 0, "", quotedomain.ErrInvalidProduct
	}
	return product.BasePriceCents, product.ID.String(), nil
}
