// Command gate runs a repository's verification gates and renders failures
// for automated fixing agents.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhuilla/gate/internal/cli"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("gate: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil && !cli.Silent(err) {
		log.Print(err)
	}
	os.Exit(cli.ExitCode(err))
}
