package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/proofstreak/internal/constants"
	"github.com/julianstephens/proofstreak/internal/models"
)

type createHabitRequest struct {
	Name             string `json:"name" binding:"required"`
	NotificationTime string `json:"notification_time"`
	Timezone         string `json:"timezone"`
}

func (s *Server) createHabit(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.NotificationTime == "" {
		req.NotificationTime = constants.DefaultNotificationTime
	}

	id, err := s.habits.Create(c.Request.Context(), userID, req.Name, req.NotificationTime, req.Timezone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) listHabits(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))

	habits, err := s.habits.ListForUser(c.Request.Context(), userID, all)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habits)
}

func (s *Server) getHabit(c *gin.Context) {
	habit, err := s.habits.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if habit == nil {
		notFound(c, "habit")
		return
	}
	c.JSON(http.StatusOK, habit)
}

func (s *Server) updateHabit(c *gin.Context) {
	var patch models.HabitPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := s.habits.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (s *Server) deactivateHabit(c *gin.Context) {
	s.mutateHabit(c, s.habits.Deactivate)
}

func (s *Server) reactivateHabit(c *gin.Context) {
	s.mutateHabit(c, s.habits.Reactivate)
}

func (s *Server) deleteHabit(c *gin.Context) {
	s.mutateHabit(c, s.habits.Delete)
}

func (s *Server) mutateHabit(c *gin.Context, fn func(context.Context, string) (bool, error)) {
	ok, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"modified": ok})
}
