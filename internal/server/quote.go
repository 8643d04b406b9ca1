package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	quotedomain "github.com/smallbiznis/pricelist/internal/quote/domain"
)

func (s *Server) QuotePrice(c *gin.Context) {
	var req quotedomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	priceListID := strings.TrimSpace(c.Param("id"))
	resp, err := s.quoteSvc.Quote(c.Request.Context(), priceListID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
