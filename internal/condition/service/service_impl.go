package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pricelist/internal/clock"
	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
	"github.com/smallbiznis/pricelist/internal/orgcontext"
	pricelistdomain "github.com/smallbiznis/pricelist/internal/pricelist/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          conditiondomain.Repository
	PriceListRepo pricelistdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          conditiondomain.Repository
	priceListRepo pricelistdomain.Repository
}

func New(p Params) conditiondomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("condition.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		priceListRepo: p.PriceListRepo,
	}
}

func (s *Service) Create(ctx context.Context, priceListID string, req conditiondomain.CreateRequest) (*conditiondomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, conditiondomain.ErrInvalidOrganization
	}

	listID, err := parseID(priceListID)
	if err != nil {
		return nil, conditiondomain.ErrInvalidPriceList
	}

	list, err := s.priceListRepo.FindByID(ctx, s.db, orgID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, conditiondomain.ErrInvalidPriceList
	}

	if !validDiscountType(req.DiscountType) {
		return nil, conditiondomain.ErrInvalidDiscountType
	}
	if req.DiscountValue < 0 {
		return nil, conditiondomain.ErrInvalidDiscountValue
	}

	status := conditiondomain.StatusActive
	if req.Status != nil {
		status = *req.Status
		if !validStatus(status) {
			return nil, conditiondomain.ErrInvalidStatus
		}
	}

	if err := validateWindow(req.ValidFrom, req.ValidTo); err != nil {
		return nil, err
	}

	rawValue, err := encodeConditionValue(req.ConditionType, req.Operator, req.ConditionValue)
	if err != nil {
		return nil, err
	}

	priority := 0
	if req.Priority != nil {
		priority = *req.Priority
	}

	now := s.clock.Now()
	cond := &conditiondomain.PriceListCondition{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		PriceListID:    list.ID,
		ConditionType:  req.ConditionType,
		Operator:       req.Operator,
		ConditionValue: rawValue,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		Priority:       priority,
		Status:         status,
		ValidFrom:      req.ValidFrom,
		ValidTo:        req.ValidTo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Config != nil {
		cond.Config = datatypes.JSONMap(req.Config)
	}

	if err := s.repo.Insert(ctx, s.db, cond); err != nil {
		return nil, err
	}

	resp := cond.ToResponse(now)
	return &resp, nil
}

func (s *Service) ListByPriceList(ctx context.Context, priceListID string) ([]conditiondomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, conditiondomain.ErrInvalidOrganization
	}

	listID, err := parseID(priceListID)
	if err != nil {
		return nil, conditiondomain.ErrInvalidPriceList
	}

	list, err := s.priceListRepo.FindByID(ctx, s.db, orgID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, conditiondomain.ErrInvalidPriceList
	}

	items, err := s.repo.ListByPriceList(ctx, s.db, orgID, list.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	resp := make([]conditiondomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, items[i].ToResponse(now))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*conditiondomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, conditiondomain.ErrInvalidOrganization
	}

	condID, err := parseID(id)
	if err != nil {
		return nil, conditiondomain.ErrInvalidID
	}

	cond, err := s.repo.FindByID(ctx, s.db, orgID, condID)
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return nil, conditiondomain.ErrNotFound
	}

	resp := cond.ToResponse(s.clock.Now())
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req conditiondomain.UpdateRequest) (*conditiondomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, conditiondomain.ErrInvalidOrganization
	}

	condID, err := parseID(id)
	if err != nil {
		return nil, conditiondomain.ErrInvalidID
	}

	cond, err := s.repo.FindByID(ctx, s.db, orgID, condID)
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return nil, conditiondomain.ErrNotFound
	}

	if req.ConditionType != nil {
		cond.ConditionType = *req.ConditionType
	}
	if req.Operator != nil {
		cond.Operator = *req.Operator
	}
	if req.ConditionValue != nil {
		rawValue, err := encodeConditionValue(cond.ConditionType, cond.Operator, req.ConditionValue)
		if err != nil {
			return nil, err
		}
		cond.ConditionValue = rawValue
	} else if req.ConditionType != nil || req.Operator != nil {
		// Type or operator changed under an existing payload; the stored
		// payload must still decode against the new combination.
		if _, err := conditiondomain.DecodePredicate(cond.ConditionType, cond.Operator, cond.ConditionValue); err != nil {
			return nil, err
		}
	}
	if req.DiscountType != nil {
		if !validDiscountType(*req.DiscountType) {
			return nil, conditiondomain.ErrInvalidDiscountType
		}
		cond.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		if *req.DiscountValue < 0 {
			return nil, conditiondomain.ErrInvalidDiscountValue
		}
		cond.DiscountValue = *req.DiscountValue
	}
	if req.Priority != nil {
		cond.Priority = *req.Priority
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, conditiondomain.ErrInvalidStatus
		}
		cond.Status = *req.Status
	}
	if req.ClearValidFrom {
		cond.ValidFrom = nil
	} else if req.ValidFrom != nil {
		cond.ValidFrom = req.ValidFrom
	}
	if req.ClearValidTo {
		cond.ValidTo = nil
	} else if req.ValidTo != nil {
		cond.ValidTo = req.ValidTo
	}
	if err := validateWindow(cond.ValidFrom, cond.ValidTo); err != nil {
		return nil, err
	}
	if req.Config != nil {
		cond.Config = datatypes.JSONMap(req.Config)
	}

	now := s.clock.Now()
	cond.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, cond); err != nil {
		return nil, err
	}

	resp := cond.ToResponse(now)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return conditiondomain.ErrInvalidOrganization
	}

	condID, err := parseID(id)
	if err != nil {
		return conditiondomain.ErrInvalidID
	}

	cond, err := s.repo.FindByID(ctx, s.db, orgID, condID)
	if err != nil {
		return err
	}
	if cond == nil {
		return conditiondomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, orgID, cond.ID)
}

// encodeConditionValue round-trips the request payload through the typed
// predicate so an illegal shape never reaches the database.
func encodeConditionValue(conditionType conditiondomain.ConditionType, op conditiondomain.Operator, value map[string]any) (datatypes.JSON, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: condition_value is required", conditiondomain.ErrInvalidConditionConfiguration)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", conditiondomain.ErrInvalidConditionConfiguration, err)
	}
	if _, err := conditiondomain.DecodePredicate(conditionType, op, raw); err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func validateWindow(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return fmt.Errorf("%w: valid_from after valid_to", conditiondomain.ErrInvalidConditionConfiguration)
	}
	return nil
}

func validDiscountType(dt conditiondomain.DiscountType) bool {
	return dt == conditiondomain.DiscountPercentage || dt == conditiondomain.DiscountFixedAmount
}

func validStatus(status conditiondomain.Status) bool {
	return status == conditiondomain.StatusActive || status == conditiondomain.StatusInactive
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
