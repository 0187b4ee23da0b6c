package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/hourplan/internal/cli"
	"github.com/julianstephens/hourplan/internal/server"
)

type ServeCmd struct {
	Addr  string `help:"Listen address. Defaults to server.addr from the config."`
	Token string `help:"Bearer token required on /api routes. Defaults to server.token from the config." env:"HOURPLAN_SERVER_TOKEN"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}
	token := c.Token
	if token == "" {
		token = ctx.Config.Server.Token
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(ctx.Service, addr, token, ctx.Gatherer)
	fmt.Printf("Serving hourplan API on %s (Ctrl+C to stop)\n", addr)
	if err := srv.Start(sigCtx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
