package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/colors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cmd.Execute)
	stop()
	os.Exit(code)
}

// run executes the CLI and releases the shared backend, returning the
// process exit code.
func run(ctx context.Context, execute func(context.Context) error) int {
	err := execute(ctx)
	if closeErr := store.Close(); closeErr != nil {
		colors.Debug("closing backend:", closeErr.Error())
	}
	if err != nil {
		return 1
	}
	return 0
}
