package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pricelistdomain "github.com/smallbiznis/pricelist/internal/pricelist/domain"
)

type createPriceListRequest struct {
	Name           string                   `json:"name"`
	Currency       string                   `json:"currency"`
	IsDefault      bool                     `json:"is_default"`
	Status         *pricelistdomain.Status  `json:"status"`
	PricingTaxMode *pricelistdomain.TaxMode `json:"pricing_tax_mode"`
	TaxClassID     *string                  `json:"tax_class_id"`
}

func (s *Server) CreatePriceList(c *gin.Context) {
	var req createPriceListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.priceListSvc.Create(c.Request.Context(), pricelistdomain.CreateRequest{
		Name:           strings.TrimSpace(req.Name),
		Currency:       req.Currency,
		IsDefault:      req.IsDefault,
		Status:         req.Status,
		PricingTaxMode: req.PricingTaxMode,
		TaxClassID:     req.TaxClassID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPriceLists(c *gin.Context) {
	var status *pricelistdomain.Status
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		value := pricelistdomain.Status(raw)
		status = &value
	}

	resp, err := s.priceListSvc.List(c.Request.Context(), pricelistdomain.ListRequest{Status: status})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPriceListByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.priceListSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDefaultPriceList(c *gin.Context) {
	resp, err := s.priceListSvc.GetDefault(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePriceListRequest struct {
	Name           *string                  `json:"name"`
	Currency       *string                  `json:"currency"`
	IsDefault      *bool                    `json:"is_default"`
	Status         *pricelistdomain.Status  `json:"status"`
	PricingTaxMode *pricelistdomain.TaxMode `json:"pricing_tax_mode"`
	TaxClassID     *string                  `json:"tax_class_id"`
}

func (s *Server) UpdatePriceList(c *gin.Context) {
	var req updatePriceListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.priceListSvc.Update(c.Request.Context(), id, pricelistdomain.UpdateRequest{
		Name:           req.Name,
		Currency:       req.Currency,
		IsDefault:      req.IsDefault,
		Status:         req.Status,
		PricingTaxMode: req.PricingTaxMode,
		TaxClassID:     req.TaxClassID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePriceList(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.priceListSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListPriceListProducts(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	page := parsePositiveInt(c.Query("page"))
	limit := parsePositiveInt(c.Query("limit"))

	resp, err := s.priceListSvc.ListProductPrices(c.Request.Context(), id, pricelistdomain.ProductPricesRequest{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
