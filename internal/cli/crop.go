// crop.go — The crop command: reshape existing images to preset sizes.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/xob0t/covercraft/pkg/crop"
)

func newCropCmd() *cobra.Command {
	var (
		preset  string
		modes   []string
		outDir  string
		quality int
	)

	cmd := &cobra.Command{
		Use:   "crop [image]",
		Short: "Crop an existing image to a preset",
		Example: `  covercraft crop photo.jpg --preset wechat-cover --mode all
  covercraft crop photo.jpg --preset 1200x630 --mode smart -o out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := crop.ParseTarget(preset)
			if err != nil {
				return err
			}
			ms, err := parseModes(modes)
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)
			paths, err := crop.CropFile(args[0], target, ms, crop.FileOptions{OutDir: outDir, Quality: quality})
			w := cmd.OutOrStdout()
			for _, p := range paths {
				printFile(w, p)
			}
			if err != nil {
				return err
			}
			prog.done("Cropped " + args[0])
			printSuccess(w, "%d variant(s) at %dx%d", len(paths), target.Width, target.Height)
			return nil
		},
	}

	cmd.Flags().StringVarP(&preset, "preset", "p", "wechat-cover", "crop preset or WxH size")
	cmd.Flags().StringSliceVarP(&modes, "mode", "m", []string{"all"}, "crop modes or all (repeatable)")
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default: next to the image)")
	cmd.Flags().IntVar(&quality, "quality", 95, "JPEG quality")

	return cmd
}
