// templates.go — The templates command: list, show and validate templates.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/template"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List, show and validate templates",
	}
	cmd.AddCommand(newTemplatesListCmd(), newTemplatesShowCmd(), newTemplatesValidateCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newApp(cmd.Context()).templates()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, info := range store.List() {
				line := styleID.Render(info.ID) + " " + StyleValue.Render(info.Name) + " " + StyleDim.Render("["+info.Category+"]")
				if info.Source != template.SourceBuiltin {
					line += " " + StyleDim.Render(info.Source)
				}
				fmt.Fprintln(w, line)
				if len(info.Variants) > 0 {
					printDetail(w, "variants: %s", strings.Join(info.Variants, ", "))
				}
			}
			return nil
		},
	}
}

func newTemplatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print a template document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newApp(cmd.Context()).templates()
			if err != nil {
				return err
			}
			loaded, ok := store.Get(args[0])
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "template %q not found", args[0])
			}
			data, err := template.Marshal(loaded.Doc)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printDetail(w, "# source: %s", loaded.Source)
			_, err = w.Write(data)
			return err
		},
	}
}

func newTemplatesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate template files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				errs, warnings := validateFile(path)
				for _, msg := range warnings {
					printWarning(w, "%s: %s", path, msg)
				}
				if len(errs) > 0 {
					invalid++
					for _, msg := range errs {
						printError(w, "%s: %s", path, msg)
					}
					continue
				}
				printSuccess(w, "%s", path)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d template(s) invalid", invalid, len(args))
			}
			return nil
		},
	}
}

func validateFile(path string) (errs, warnings []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{err.Error()}, nil
	}
	doc, err := template.Parse(data)
	if err != nil {
		return []string{err.Error()}, nil
	}
	return template.Validate(doc)
}
