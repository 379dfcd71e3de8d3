// Package clitest builds a cli.Context over a temporary SQLite store.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/proofstreak/internal/cli"
	"github.com/julianstephens/proofstreak/internal/config"
	"github.com/julianstephens/proofstreak/internal/notify/notifytest"
	"github.com/julianstephens/proofstreak/internal/storage/sqlite"
	"github.com/julianstephens/proofstreak/internal/utils"
)

// Admin is the only admin configured in contexts built by New.
const Admin int64 = 900

// Env is a ready-to-run command context with captured output.
type Env struct {
	Ctx     *cli.Context
	Out     *bytes.Buffer
	Channel *notifytest.Recorder
}

// New returns an initialized context whose clock is pinned to 2026-03-01 09:00 UTC.
func New(t *testing.T) *Env {
	t.Helper()
	cfg := config.Default()
	cfg.Database = filepath.Join(t.TempDir(), "proofstreak.db")
	cfg.Admins = []int64{Admin}

	store := sqlite.NewStore(cfg.Database)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	ctx, err := cli.NewContext(cfg, store)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })

	out := &bytes.Buffer{}
	channel := &notifytest.Recorder{}

	ctx.Out = out
	ctx.Clock = utils.FixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx.Channel = channel
	ctx.Wire()
	return &Env{Ctx: ctx, Out: out, Channel: channel}
}

// Output returns and clears everything printed so far.
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
