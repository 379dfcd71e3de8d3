package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/submissions"
	"github.com/julianstephens/proofstreak/internal/utils"
)

func (s *Server) handlePhoto(c *gin.Context) {
	var event submissions.PhotoEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		badRequest(c, err)
		return
	}
	outcome, err := s.workflow.HandlePhoto(c.Request.Context(), event)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if outcome.NeedsChoice() {
		status = http.StatusOK
	}
	c.JSON(status, outcome)
}

type actionRequest struct {
	ActorID int64   `json:"actor_id" binding:"required"`
	Payload string  `json:"payload" binding:"required"`
	Reason  *string `json:"reason"`
}

func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := s.workflow.HandleAction(c.Request.Context(), req.ActorID, req.Payload, req.Reason)
	if err != nil && !result.Applied {
		respondError(c, err)
		return
	}
	body := gin.H{
		"action":  result.Action.String(),
		"applied": result.Applied,
		"photo":   result.Photo,
	}
	// An applied review stays a 200; the follow-up failure goes to the access log.
	if err != nil {
		_ = c.Error(err)
		body["warning"] = "review applied, streak update failed"
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listPending(c *gin.Context) {
	subs, err := s.workflow.GetPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (s *Server) getSubmission(c *gin.Context) {
	details, err := s.workflow.GetDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if details == nil {
		notFound(c, "submission")
		return
	}
	c.JSON(http.StatusOK, details)
}

func (s *Server) listUserSubmissions(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	filter := models.SubmissionFilter{HabitID: c.Query("habit")}
	if raw := c.Query("status"); raw != "" {
		status := models.SubmissionStatus(strings.ToLower(raw))
		if !status.Valid() {
			badRequest(c, errors.New("status must be pending, approved or rejected"))
			return
		}
		filter.Status = &status
	}

	subs, err := s.workflow.ListForUser(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

type sweepRequest struct {
	Time string `json:"time"`
}

// sweep runs the reminder sweep for the given HH:MM, or for the current
// minute when none is given.
func (s *Server) sweep(c *gin.Context) {
	var req sweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.Time == "" {
		req.Time = s.sweeper.CurrentMinute()
	}
	if !utils.ValidateTimeFormat(req.Time) {
		badRequest(c, errors.New("time must be HH:MM"))
		return
	}

	sent, err := s.sweeper.Run(c.Request.Context(), req.Time)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time": req.Time, "sent": sent})
}
