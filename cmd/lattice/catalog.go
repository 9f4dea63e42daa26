package main

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/pkg/render"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the block types of the palette",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, _, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tCATEGORY\tLABEL")
		for _, item := range app.Builder.Types() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", item.Type, item.Category, item.Label)
		}
		return w.Flush()
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates [query]",
	Short: "Search the template catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, _, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		category, _ := cmd.Flags().GetString("category")

		templates := app.Builder.SearchTemplates(query, category)
		if len(templates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tBLOCKS\tNAME")
		for _, t := range templates {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.ID, t.Category, len(t.Blocks), t.Name)
		}
		return w.Flush()
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <page-id>",
	Short: "Render a page as HTML or as a terminal preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, _, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := render.ParseMode(modeFlag)
		if err != nil {
			return err
		}
		terminal, _ := cmd.Flags().GetBool("terminal")
		outPath, _ := cmd.Flags().GetString("out")
		ctx := cmd.Context()

		if terminal {
			md, err := app.Builder.Markdown(ctx, args[0], mode)
			if err != nil {
				return err
			}
			renderMD, err := tui.NewRenderer(tui.Width(os.Stdout))
			if err != nil {
				return err
			}
			out, err := renderMD(md)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		}

		var buf bytes.Buffer
		if err := app.Builder.Render(ctx, &buf, args[0], mode); err != nil {
			return err
		}
		if outPath != "" {
			return os.WriteFile(outPath, buf.Bytes(), 0o644)
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

func init() {
	rootCmd.AddCommand(typesCmd, templatesCmd, renderCmd)

	templatesCmd.Flags().StringP("category", "c", "", `Category to filter by, or "all"`)

	renderCmd.Flags().StringP("mode", "m", "view", "Render mode: view or edit")
	renderCmd.Flags().BoolP("terminal", "t", false, "Render a markdown preview for the terminal")
	renderCmd.Flags().StringP("out", "o", "", "Write the HTML to a file instead of stdout")
}
