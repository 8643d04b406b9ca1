package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
)

func (s *Server) CreatePriceListCondition(c *gin.Context) {
	var req conditiondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	priceListID := strings.TrimSpace(c.Param("id"))
	resp, err := s.conditionSvc.Create(c.Request.Context(), priceListID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPriceListConditions(c *gin.Context) {
	priceListID := strings.TrimSpace(c.Param("id"))
	resp, err := s.conditionSvc.ListByPriceList(c.Request.Context(), priceListID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetConditionByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.conditionSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCondition(c *gin.Context) {
	var req conditiondomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.conditionSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCondition(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.conditionSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
