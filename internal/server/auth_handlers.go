package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/service/account"
)

type registerRequest struct {
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Birthdate   string `json:"birthdate"`
	Description string `json:"description"`
	Gender      string `json:"gender"`
	Type        string `json:"type"`
}

// parseBirthdate accepts the date-only form and full RFC 3339 timestamps.
func parseBirthdate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, svcErr.Validation("birthdate must be YYYY-MM-DD")
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, svcErr.Validation("invalid request body"))
		return
	}

	birth, err := parseBirthdate(req.Birthdate)
	if err != nil {
		s.respondError(c, err)
		return
	}

	user, err := s.account.Register(c.Request.Context(), account.RegisterInput{
		Phone:       req.Phone,
		Password:    req.Password,
		Name:        req.Name,
		Birthdate:   birth,
		Description: req.Description,
		Gender:      req.Gender,
		Type:        req.Type,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, svcErr.Validation("invalid request body"))
		return
	}

	user, err := s.account.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
