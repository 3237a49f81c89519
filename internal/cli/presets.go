// presets.go — The presets command: list crop presets and modes.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xob0t/covercraft/pkg/crop"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List crop presets and modes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render("Presets"))
			for _, p := range crop.Presets() {
				fmt.Fprintln(w, styleID.Render(p.Name)+" "+StyleValue.Render(fmt.Sprintf("%dx%d", p.Width, p.Height)))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, StyleTitle.Render("Modes"))
			for _, m := range crop.Modes {
				fmt.Fprintln(w, styleID.Render(string(m)))
			}
			printDetail(w, "\"all\" selects center, golden_ratio and smart; any WxH size is also accepted as a preset")
		},
	}
}
