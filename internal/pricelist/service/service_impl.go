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
	dbpkg "github.com/smallbiznis/pricelist/pkg/db"
	"github.com/smallbiznis/pricelist/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          pricelistdomain.Repository
	ConditionRepo conditiondomain.Repository
	ProductRepo   productdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          pricelistdomain.Repository
	conditionRepo conditiondomain.Repository
	productRepo   productdomain.Repository
}

func New(p Params) pricelistdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("pricelist.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		conditionRepo: p.ConditionRepo,
		productRepo:   p.ProductRepo,
	}
}

func (s *Service) Create(ctx context.Context, req pricelistdomain.CreateRequest) (*pricelistdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, pricelistdomain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pricelistdomain.ErrInvalidName
	}

	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	status := pricelistdomain.StatusActive
	if req.Status != nil {
		status = *req.Status
		if !validStatus(status) {
			return nil, pricelistdomain.ErrInvalidStatus
		}
	}

	if req.PricingTaxMode != nil && !validTaxMode(*req.PricingTaxMode) {
		return nil, pricelistdomain.ErrInvalidTaxMode
	}

	var taxClassID *snowflake.ID
	if req.TaxClassID != nil && strings.TrimSpace(*req.TaxClassID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.TaxClassID))
		if err != nil {
			return nil, pricelistdomain.ErrInvalidTaxClass
		}
		taxClassID = &parsed
	}

	now := s.clock.Now()
	list := &pricelistdomain.PriceList{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		Name:           name,
		Currency:       currency,
		IsDefault:      req.IsDefault,
		Status:         status,
		PricingTaxMode: req.PricingTaxMode,
		TaxClassID:     taxClassID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if list.IsDefault {
			if err := s.repo.ClearDefault(ctx, tx, orgID, list.ID, now); err != nil {
				return err
			}
		}
		if err := s.repo.Insert(ctx, tx, list); err != nil {
			return err
		}
		if list.IsDefault {
			return s.checkSingleDefault(ctx, tx, orgID)
		}
		return nil
	})
	if err != nil {
		return nil, s.translateDefaultErr(err, list.IsDefault, orgID)
	}

	return s.toResponse(list, nil), nil
}

func (s *Service) List(ctx context.Context, req pricelistdomain.ListRequest) ([]pricelistdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, pricelistdomain.ErrInvalidOrganization
	}

	if req.Status != nil && !validStatus(*req.Status) {
		return nil, pricelistdomain.ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, s.db, orgID, pricelistdomain.ListFilter{Status: req.Status})
	if err != nil {
		return nil, err
	}

	resp := make([]pricelistdomain.Response, 0, len(items))
	for i := range items {
		conditions, err := s.conditionRepo.ListByPriceList(ctx, s.db, orgID, items[i].ID)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *s.toResponse(&items[i], conditions))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*pricelistdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, pricelistdomain.ErrInvalidOrganization
	}

	listID, err := parseID(id)
	if err != nil {
		return nil, pricelistdomain.ErrInvalidID
	}

	list, err := s.repo.FindByID(ctx, s.db, orgID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, pricelistdomain.ErrNotFound
	}

	conditions, err := s.conditionRepo.ListByPriceList(ctx, s.db, orgID, list.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(list, conditions), nil
}

func (s *Service) GetDefault(ctx context.Context) (*pricelistdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, pricelistdomain.ErrInvalidOrganization
	}

	list, err := s.repo.FindDefault(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, pricelistdomain.ErrNotFound
	}

	conditions, err := s.conditionRepo.ListByPriceList(ctx, s.db, orgID, list.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(list, conditions), nil
}

func (s *Service) Update(ctx context.Context, id string, req pricelistdomain.UpdateRequest) (*pricelistdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, pricelistdomain.ErrInvalidOrganization
	}

	listID, err := parseID(id)
	if err != nil {
		return nil, pricelistdomain.ErrInvalidID
	}

	list, err := s.repo.FindByID(ctx, s.db, orgID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, pricelistdomain.ErrNotFound
	}

	// Default hand-off is checked before any other field is applied. The
	// only way an org loses its default is an explicit promote of another
	// list, never a demote or a delete.
	if req.IsDefault != nil && !*req.IsDefault && list.IsDefault {
		return nil, pricelistdomain.ErrCannotRemoveOnlyDefault
	}
	promote := req.IsDefault != nil && *req.IsDefault && !list.IsDefault

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pricelistdomain.ErrInvalidName
		}
		list.Name = name
	}
	if req.Currency != nil {
		currency, err := normalizeCurrency(*req.Currency)
		if err != nil {
			return nil, err
		}
		list.Currency = currency
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, pricelistdomain.ErrInvalidStatus
		}
		list.Status = *req.Status
	}
	if req.PricingTaxMode != nil {
		if !validTaxMode(*req.PricingTaxMode) {
			return nil, pricelistdomain.ErrInvalidTaxMode
		}
		list.PricingTaxMode = req.PricingTaxMode
	}
	if req.TaxClassID != nil {
		if strings.TrimSpace(*req.TaxClassID) == "" {
			list.TaxClassID = nil
		} else {
			parsed, err := snowflake.ParseString(strings.TrimSpace(*req.TaxClassID))
			if err != nil {
				return nil, pricelistdomain.ErrInvalidTaxClass
			}
			list.TaxClassID = &parsed
		}
	}

	now := s.clock.Now()
	list.UpdatedAt = now
	if promote {
		list.IsDefault = true
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if promote {
			if err := s.repo.ClearDefault(ctx, tx, orgID, list.ID, now); err != nil {
				return err
			}
		}
		if err := s.repo.Update(ctx, tx, list); err != nil {
			return err
		}
		if list.IsDefault {
			return s.checkSingleDefault(ctx, tx, orgID)
		}
		return nil
	})
	if err != nil {
		return nil, s.translateDefaultErr(err, list.IsDefault, orgID)
	}

	conditions, err := s.conditionRepo.ListByPriceList(ctx, s.db, orgID, list.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(list, conditions), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return pricelistdomain.ErrInvalidOrganization
	}

	listID, err := parseID(id)
	if err != nil {
		return pricelistdomain.ErrInvalidID
	}

	list, err := s.repo.FindByID(ctx, s.db, orgID, listID)
	if err != nil {
		return err
	}
	if list == nil {
		return pricelistdomain.ErrNotFound
	}
	if list.IsDefault {
		return pricelistdomain.ErrCannotDeleteDefault
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.conditionRepo.DeleteByPriceList(ctx, tx, orgID, list.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, orgID, list.ID)
	})
}

func (s *Service) ListProductPrices(ctx context.Context, id string, req pricelistdomain.ProductPricesRequest) (*pricelistdomain.ProductPricesResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, pricelistdomain.ErrInvalidOrganization
	}

	listID, err := parseID(id)
	if err != nil {
		return nil, pricelistdomain.ErrInvalidID
	}

	list, err := s.repo.FindByID(ctx, s.db, orgID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, pricelistdomain.ErrNotFound
	}

	page := pagination.Normalize(req.Page, req.Limit)
	products, total, err := s.productRepo.Search(ctx, s.db, orgID, req.Search, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	conditions, err := s.conditionRepo.ListByPriceList(ctx, s.db, orgID, list.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	items := make([]pricelistdomain.ProductPrice, 0, len(products))
	for i := range products {
		product := &products[i]
		final, appliedIDs, err := quotedomain.Resolve(conditions, conditiondomain.Context{
			AmountCents: product.BasePriceCents,
			Quantity:    1,
			At:          now,
		}, product.BasePriceCents, now)
		if err != nil {
			return nil, err
		}

		applied := make([]string, 0, len(appliedIDs))
		for _, condID := range appliedIDs {
			applied = append(applied, condID.String())
		}
		items = append(items, pricelistdomain.ProductPrice{
			ProductID:           product.ID.String(),
			Name:                product.Name,
			SKU:                 product.SKU,
			BasePriceCents:      product.BasePriceCents,
			ResolvedPriceCents:  final,
			AppliedConditionIDs: applied,
		})
	}

	return &pricelistdomain.ProductPricesResponse{
		Products:   items,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}, nil
}

// translateDefaultErr maps a unique-violation on a default write to the
// conflict error. Under READ COMMITTED two concurrent promotes can both
// pass the in-tx recount; the ux_price_lists_org_default partial index
// then rejects the loser's commit, and that rejection must surface the
// same way as a failed recount.
func (s *Service) translateDefaultErr(err error, wroteDefault bool, orgID snowflake.ID) error {
	if wroteDefault && dbpkg.IsDuplicateKeyErr(err) {
		s.log.Warn("default write lost a concurrent race",
			zap.String("org_id", orgID.String()),
			zap.Error(err),
		)
		return pricelistdomain.ErrDefaultConflict
	}
	return err
}

// checkSingleDefault recounts inside the mutation transaction. A count
// other than one means a concurrent writer raced the clear-then-set, so
// the transaction aborts instead of committing a second default.
func (s *Service) checkSingleDefault(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) error {
	count, err := s.repo.CountDefaults(ctx, tx, orgID)
	if err != nil {
		return err
	}
	if count != 1 {
		s.log.Warn("default invariant check failed",
			zap.String("org_id", orgID.String()),
			zap.Int64("defaults", count),
		)
		return pricelistdomain.ErrDefaultConflict
	}
	return nil
}

func (s *Service) toResponse(list *pricelistdomain.PriceList, conditions []conditiondomain.PriceListCondition) *pricelistdomain.Response {
	now := s.clock.Now()

	var taxClassID *string
	if list.TaxClassID != nil {
		value := list.TaxClassID.String()
		taxClassID = &value
	}

	condResp := make([]conditiondomain.Response, 0, len(conditions))
	for i := range conditions {
		condResp = append(condResp, conditions[i].ToResponse(now))
	}

	return &pricelistdomain.Response{
		ID:             list.ID.String(),
		OrganizationID: list.OrgID.String(),
		Name:           list.Name,
		Currency:       list.Currency,
		IsDefault:      list.IsDefault,
		Status:         list.Status,
		PricingTaxMode: list.PricingTaxMode,
		TaxClassID:     taxClassID,
		CreatedAt:      list.CreatedAt,
		UpdatedAt:      list.UpdatedAt,
		IsActive:       list.IsActive(),
		HasTaxMode:     list.HasTaxMode(),
		Conditions:     condResp,
	}
}

func validStatus(status pricelistdomain.Status) bool {
	return status == pricelistdomain.StatusActive || status == pricelistdomain.StatusInactive
}

func validTaxMode(mode pricelistdomain.TaxMode) bool {
	return mode == pricelistdomain.TaxIncluded || mode == pricelistdomain.TaxExcluded
}

func normalizeCurrency(raw string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if len(currency) != 3 {
		return "", pricelistdomain.ErrInvalidCurrency
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", pricelistdomain.ErrInvalidCurrency
		}
	}
	return currency, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
