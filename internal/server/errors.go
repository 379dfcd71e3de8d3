package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/proofstreak/internal/actions"
	apperrors "github.com/julianstephens/proofstreak/internal/errors"
	"github.com/julianstephens/proofstreak/internal/pending"
	"github.com/julianstephens/proofstreak/internal/submissions"
)

type errorCase struct {
	err    error
	status int
}

var errorCases = []errorCase{
	{apperrors.ErrAlreadySubmitted, http.StatusConflict},
	{apperrors.ErrHabitNotFound, http.StatusNotFound},
	{apperrors.ErrNoActiveHabits, http.StatusUnprocessableEntity},
	{submissions.ErrUnauthorized, http.StatusForbidden},
	{pending.ErrSessionExpired, http.StatusGone},
	{actions.ErrInvalidPayload, http.StatusBadRequest},
}

// respondError writes the status for a known error. Validation messages are
// returned verbatim; anything else is logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	for _, ec := range errorCases {
		if errors.Is(err, ec.err) {
			c.JSON(ec.status, errorBody(err))
			return
		}
	}
	if apperrors.IsValidation(err) {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func errorBody(err error) gin.H {
	body := gin.H{"error": err.Error()}
	if kind := apperrors.KindOf(err); kind != "" {
		body["kind"] = kind
	}
	return body
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

func userParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("user"), 10, 64)
	if err != nil {
		badRequest(c, errors.New("user id must be an integer"))
		return 0, false
	}
	return id, true
}
