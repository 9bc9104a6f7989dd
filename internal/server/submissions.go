package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	submissiondomain "github.com/heysheet/heysheet/internal/submission/domain"
	"github.com/heysheet/heysheet/pkg/db/pagination"
)

func (s *Server) ListSubmissions(c *gin.Context) {
	id, err := parseFormID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.submissionSvc.List(c.Request.Context(), submissiondomain.ListRequest{
		FormID: id,
		UserID: currentUserID(c),
		Page: pagination.Pagination{
			PageToken: query.PageToken,
			PageSize:  query.PageSize,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
