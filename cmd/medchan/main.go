// Command medchan collects messages and images of public Telegram medical
// channels, cleans and loads them, and serves the record API.
//
// Run "medchan --help" for the list of subcommands.
//
// Exit codes: 0 = success, 1 = error or at least one failed source.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/medchan-backend/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
