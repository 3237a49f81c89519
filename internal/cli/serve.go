// serve.go — The serve command: run the HTTP API.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/xob0t/covercraft/clients/server"
	"github.com/xob0t/covercraft/pkg/pipeline"
)

func newServeCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx)
			defer a.Close()

			popts, err := a.pipelineOptions(ctx)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("watch") {
				watch = a.cfg.Server.WatchTemplates
			}

			s := server.New(server.Options{
				Pipeline:  pipeline.New(popts),
				Templates: popts.Templates,
				OutputDir: popts.OutputDir,
				Logger:    a.logger,
				Watch:     watch,
			})
			return s.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload templates when the templates directory changes")
	return cmd
}
