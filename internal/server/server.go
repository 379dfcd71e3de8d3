// Package server exposes the habit, submission and streak operations over
// HTTP for the chat gateway.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/proofstreak/internal/habits"
	"github.com/julianstephens/proofstreak/internal/logger"
	"github.com/julianstephens/proofstreak/internal/reminders"
	"github.com/julianstephens/proofstreak/internal/streaks"
	"github.com/julianstephens/proofstreak/internal/submissions"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Habits   *habits.Registry
	Ledger   *streaks.Ledger
	Workflow *submissions.Workflow
	Sweeper  *reminders.Sweeper
	Secret   string // required in the secret header when non-empty
}

type Server struct {
	habits   *habits.Registry
	ledger   *streaks.Ledger
	workflow *submissions.Workflow
	sweeper  *reminders.Sweeper
	secret   string
}

func New(opts Options) *Server {
	return &Server{
		habits:   opts.Habits,
		ledger:   opts.Ledger,
		workflow: opts.Workflow,
		sweeper:  opts.Sweeper,
		secret:   opts.Secret,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1", sharedSecret(s.secret))
	{
		v1.POST("/photos", s.handlePhoto)
		v1.POST("/actions", s.handleAction)

		v1.POST("/users/:user/habits", s.createHabit)
		v1.GET("/users/:user/habits", s.listHabits)
		v1.GET("/users/:user/submissions", s.listUserSubmissions)
		v1.GET("/users/:user/streaks", s.listStreaks)
		v1.GET("/users/:user/progress", s.progress)

		v1.GET("/habits/:id", s.getHabit)
		v1.PATCH("/habits/:id", s.updateHabit)
		v1.POST("/habits/:id/deactivate", s.deactivateHabit)
		v1.POST("/habits/:id/reactivate", s.reactivateHabit)
		v1.DELETE("/habits/:id", s.deleteHabit)

		v1.GET("/submissions/pending", s.listPending)
		v1.GET("/submissions/:id", s.getSubmission)

		v1.POST("/reminders/sweep", s.sweep)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}

// Run serves on addr until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
