// covercraft — Article cover image composition.
//
// Usage:
//
//	covercraft generate -t <template> --title <title> [--variant <name>] [--preset <p>] [--mode <m>]
//	covercraft generate --prompt <prompt> [--style <style>] --title <title>
//	covercraft crop <image> --preset <p> --mode all
//	covercraft templates list|show|validate
//	covercraft presets
//	covercraft serve [--addr :8080]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xob0t/covercraft/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version, commit, date)
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
