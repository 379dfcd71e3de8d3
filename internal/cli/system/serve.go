package system

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/proofstreak/internal/cli"
	"github.com/julianstephens/proofstreak/internal/keyring"
	"github.com/julianstephens/proofstreak/internal/server"
)

type ServeCmd struct {
	Listen string `help:"Address to listen on (overrides config)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := ctx.Config.Listen
	if c.Listen != "" {
		addr = c.Listen
	}
	if !ctx.Config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	secret := ctx.Config.Webhook.Secret
	if secret == "" {
		secret = keyring.Lookup(keyring.WebhookSecret, "")
	}

	srv := server.New(server.Options{
		Habits:   ctx.Habits,
		Ledger:   ctx.Ledger,
		Workflow: ctx.Workflow,
		Sweeper:  ctx.Sweeper,
		Secret:   secret,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(runCtx, addr)
}
