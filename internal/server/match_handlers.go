package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/utils/pagination"
)

// viewedFilter parses the three-state viewed query param: absent means no
// filter.
func viewedFilter(c *gin.Context) *bool {
	switch c.Query("viewed") {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

func (s *Server) handleListMatches(c *gin.Context) {
	p := pagination.Parse(c.Query("page"), c.Query("limit"), 4)

	page, err := s.engagement.ListMatches(c.Request.Context(), p, viewedFilter(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  http.StatusOK,
		"message": "matches retrieved",
		"content": page,
	})
}

func (s *Server) handleReact(c *gin.Context) {
	var req struct {
		SenderID     uint64 `json:"senderId"`
		ReceiverID   uint64 `json:"receiverId"`
		ReactionType string `json:"reactionType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, svcErr.Validation("senderId, receiverId and reactionType are required"))
		return
	}

	result, err := s.engagement.React(c.Request.Context(), req.SenderID, req.ReceiverID, req.ReactionType)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "reaction registered",
		"reaction": result.Reaction,
		"match":    result.Match,
	})
}

func (s *Server) handleSetMatchViewed(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	req := struct {
		Viewed *bool `json:"viewed"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil || req.Viewed == nil {
		s.respondError(c, svcErr.Validation("viewed is required"))
		return
	}

	match, err := s.engagement.SetViewed(c.Request.Context(), id, *req.Viewed)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  http.StatusOK,
		"message": "match updated",
		"data":    match,
	})
}
