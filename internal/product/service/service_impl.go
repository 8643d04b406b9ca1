package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pricelist/internal/clock"
	"github.com/smallbiznis/pricelist/internal/orgcontext"
	productdomain "github.com/smallbiznis/pricelist/internal/product/domain"
	dbpkg "github.com/smallbiznis/pricelist/pkg/db"
	"github.com/smallbiznis/pricelist/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  productdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  productdomain.Repository
}

func New(p Params) productdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req productdomain.CreateRequest) (*productdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, productdomain.ErrInvalidOrganization
	}

	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, productdomain.ErrInvalidSKU
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, productdomain.ErrInvalidName
	}
	if req.BasePriceCents < 0 {
		return nil, productdomain.ErrInvalidBasePrice
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now()
	product := &productdomain.Product{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		SKU:            sku,
		Name:           name,
		Description:    req.Description,
		BasePriceCents: req.BasePriceCents,
		Active:         active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Metadata != nil {
		product.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, product); err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, productdomain.ErrDuplicateSKU
		}
		return nil, err
	}

	return toResponse(product), nil
}

func (s *Service) List(ctx context.Context, req productdomain.ListRequest) (*productdomain.ListResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, productdomain.ErrInvalidOrganization
	}

	page := pagination.Normalize(req.Page, req.Limit)
	items, total, err := s.repo.Search(ctx, s.db, orgID, req.Search, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]productdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}

	return &productdomain.ListResponse{
		Products:   resp,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*productdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, productdomain.ErrInvalidOrganization
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, productdomain.ErrInvalidID
	}

	product, err := s.repo.FindByID(ctx, s.db, orgID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}

	return toResponse(product), nil
}

func toResponse(p *productdomain.Product) *productdomain.Response {
	return &productdomain.Response{
		ID:             p.ID.String(),
		OrganizationID: p.OrgID.String(),
		SKU:            p.SKU,
		Name:           p.Name,
		Description:    p.Description,
		BasePriceCents: p.BasePriceCents,
		Active:         p.Active,
		Metadata:       p.Metadata,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
