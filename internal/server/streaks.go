package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listStreaks(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	list, err := s.ledger.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// progress reports current, longest and total for each active habit.
func (s *Server) progress(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	active, err := s.habits.ListForUser(c.Request.Context(), userID, false)
	if err != nil {
		respondError(c, err)
		return
	}
	progress, err := s.ledger.Progress(c.Request.Context(), active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
