package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/billfold/internal/invoice/domain"
	"github.com/smallbiznis/billfold/internal/pagecache"
	"github.com/smallbiznis/billfold/pkg/db/pagination"
	"go.uber.org/zap"
)

func (s *Server) ListInvoices(c *gin.Context) {
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
	if query.PageSize == 0 {
		query.Pagination.PageSize = s.display.Get().PageSize
	}

	if cacheable {
		if payload, ok := s.cachedPage(c, invoicedomain.ListingPath); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		Query: search,
		Page:  query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{"data": resp}
	if cacheable {
		s.storePage(c, invoicedomain.ListingPath, body)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	outcome := s.invoiceSvc.Create(c.Request.Context(), c.Request.PostForm)
	s.renderOutcome(c, outcome)
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	outcome := s.invoiceSvc.Update(c.Request.Context(), id, c.Request.PostForm)
	s.renderOutcome(c, outcome)
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	outcome := s.invoiceSvc.Delete(c.Request.Context(), id)
	s.renderOutcome(c, outcome)
}

// renderOutcome translates a mutation outcome into a response: a 303 to
// the listing on success, a 400 with field errors on rejected input, a
// 500 when storage failed, and a plain 200 confirmation otherwise.
func (s *Server) renderOutcome(c *gin.Context, outcome invoicedomain.Outcome) {
	switch {
	case outcome.Redirected():
		c.Redirect(http.StatusSeeOther, outcome.RedirectTo)
	case len(outcome.Errors) > 0:
		c.JSON(http.StatusBadRequest, outcome)
	case outcome.StorageFailed:
		c.JSON(http.StatusInternalServerError, outcome)
	default:
		c.JSON(http.StatusOK, outcome)
	}
}

func (s *Server) cachedPage(c *gin.Context, path string) ([]byte, bool) {
	payload, hit, err := s.pageCache.Get(c.Request.Context(), path)
	if err != nil {
		s.log.Warn("page cache read failed", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	return payload, hit
}

func (s *Server) storePage(c *gin.Context, path string, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		return
	}
	if err := s.pageCache.Set(c.Request.Context(), path, payload, pagecache.DefaultTTL); err != nil {
		s.log.Warn("page cache write failed", zap.String("path", path), zap.Error(err))
	}
}
