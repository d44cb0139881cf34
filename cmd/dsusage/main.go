package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command := NewDatastoreUsageCommand()
	command.SetContext(ctx)
	if err := command.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			cancel()
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(app.ExitFailure)
	}
}
