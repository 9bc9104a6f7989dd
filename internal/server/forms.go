package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
)

func (s *Server) CreateForm(c *gin.Context) {
	var req formdomain.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.UserID = currentUserID(c)

	form, err := s.formSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": form})
}

func (s *Server) ListForms(c *gin.Context) {
	forms, err := s.formSvc.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": forms})
}

func (s *Server) GetFormByID(c *gin.Context) {
	id, err := parseFormID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	form, err := s.formSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if form.UserID != currentUserID(c) {
		AbortWithError(c, formdomain.ErrNotOwner)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": form})
}

func (s *Server) UpdateForm(c *gin.Context) {
	id, err := parseFormID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req formdomain.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	form, err := s.formSvc.Update(c.Request.Context(), id, currentUserID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": form})
}

func (s *Server) DeactivateForm(c *gin.Context) {
	id, err := parseFormID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.formSvc.Deactivate(c.Request.Context(), id, currentUserID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id.String(), "active": false}})
}

func parseFormID(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return 0, formdomain.ErrFormNotFound
	}
	return id, nil
}
