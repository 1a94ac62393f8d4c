package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/service/roulette"
	"github.com/copasapp/copas-api/internal/utils/pagination"
)

type rouletteRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	State       *bool  `json:"state"`
}

func (r rouletteRequest) toInput() roulette.Input {
	state := true
	if r.State != nil {
		state = *r.State
	}
	return roulette.Input{Name: r.Name, Description: r.Description, State: state}
}

func (s *Server) handleCreateOption(c *gin.Context) {
	var req rouletteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, svcErr.Validation("invalid request body"))
		return
	}

	option, err := s.roulette.Create(c.Request.Context(), req.toInput())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"status":  http.StatusCreated,
		"message": "option created",
		"data":    option,
	})
}

func (s *Server) handleListOptions(c *gin.Context) {
	p := pagination.Parse(c.Query("page"), c.Query("limit"), 10)

	page, err := s.roulette.List(c.Request.Context(), p)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  http.StatusOK,
		"message": "options retrieved",
		"content": page,
	})
}

func (s *Server) handleGetOption(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	option, err := s.roulette.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  http.StatusOK,
		"message": "option retrieved",
		"data":    option,
	})
}

func (s *Server) handleUpdateOption(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req rouletteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, svcErr.Validation("invalid request body"))
		return
	}

	option, err := s.roulette.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  http.StatusOK,
		"message": "option updated",
		"data":    option,
	})
}

func (s *Server) handleDeleteOption(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	option, err := s.roulette.Delete(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  http.StatusOK,
		"message": "option deleted",
		"data":    option,
	})
}
