package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/service/profile"
)

func (s *Server) handleAvailableUsers(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("userId"), 10, 64)
	if err != nil || userID == 0 {
		s.respondError(c, svcErr.Validation("userId is required"))
		return
	}

	limit := 5
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		limit = n
	}
	offset := 0
	if n, err := strconv.Atoi(c.Query("offset")); err == nil && n > 0 {
		offset = n
	}

	users, err := s.profile.Available(c.Request.Context(), userID, limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	user, err := s.profile.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleCreateUser(c *gin.Context) {
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

	user, err := s.profile.Create(c.Request.Context(), profile.CreateInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Password:    req.Password,
		Birthdate:   birth,
		Description: req.Description,
		Gender:      req.Gender,
		Type:        req.Type,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Birthdate   *string `json:"birthdate"`
		Description *string `json:"description"`
		Type        *string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, svcErr.Validation("invalid request body"))
		return
	}

	in := profile.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
	}
	if req.Birthdate != nil {
		birth, err := parseBirthdate(*req.Birthdate)
		if err != nil {
			s.respondError(c, err)
			return
		}
		in.Birthdate = birth
	}

	user, err := s.profile.Update(c.Request.Context(), id, in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.profile.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (s *Server) handleUploadPhoto(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// bound the multipart payload before any parsing
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.appCtx.Config.Uploads.MaxUploadBytes)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		s.respondError(c, svcErr.Validation("photo file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer file.Close()

	photos, err := s.profile.UploadPhoto(c.Request.Context(), id, file)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "photo added", "photos": photos})
}

func (s *Server) handleDeletePhoto(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req struct {
		Photo string `json:"photo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, svcErr.Validation("photo is required"))
		return
	}

	photos, err := s.profile.DeletePhoto(c.Request.Context(), id, req.Photo)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "photo deleted", "photos": photos})
}
