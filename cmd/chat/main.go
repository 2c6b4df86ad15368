package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Rrens/text-to-sql-chat/internal/cli/commands"
	"github.com/Rrens/text-to-sql-chat/internal/cli/ui"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.ExecuteContext(ctx); err != nil {
		ui.Error(os.Stderr, "%v", err)
		stop()
		os.Exit(1)
	}
}
