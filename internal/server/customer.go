package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/billfold/internal/customer/domain"
	"github.com/smallbiznis/billfold/pkg/db/pagination"
)

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Query string `form:"query"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	search := strings.TrimSpace(query.Query)
	cacheable := search == "" && query.Page <= 1 && query.PageSize == 0

	if cacheable {
		if payload, ok := s.cachedPage(c, customerdomain.ListingPath); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		Query: search,
		Page:  query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{"data": resp}
	if cacheable {
		s.storePage(c, customerdomain.ListingPath, body)
	}
	c.JSON(http.StatusOK, body)
}
