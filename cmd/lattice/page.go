package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/spf13/cobra"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Inspect and edit pages",
	Long:  `List, inspect, edit, export and import the pages of the configured store.`,
}

// withApp runs fn with an open App and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, b *lattice.Builder) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, _, _, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer func(app *cli.App) { _ = app.Close() }(app)
		return fn(cmd, args, app.Builder)
	}
}

// report prints the outcome of a mutation. A missing id is reported, not failed.
func report(cmd *cobra.Command, ok bool, err error, what string) error {
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "Nothing changed: %s\n", what)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", what)
	return nil
}

var pageLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all pages",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		pages, err := b.Pages(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing pages: %w", err)
		}
		if len(pages) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No pages found.")
			return nil
		}
		for _, p := range pages {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+p)
		}
		return nil
	}),
}

var pageInspectCmd = &cobra.Command{
	Use:   "inspect <page-id>",
	Short: "Show the blocks of a page",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		page, err := b.Page(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(page)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tID\tTYPE\tVISIBLE\tEDITABLE")
		for _, blk := range page.Blocks {
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%t\n", blk.Order, blk.ID, blk.Type, blk.Visible, blk.Editable)
		}
		return w.Flush()
	}),
}

var pageRmCmd = &cobra.Command{
	Use:   "rm <page-id>",
	Short: "Delete a page",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		if err := b.DeletePage(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Page '%s' deleted.\n", args[0])
		return nil
	}),
}

var pageAddCmd = &cobra.Command{
	Use:   "add <page-id> <type>",
	Short: "Append a block with its default content",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		id, err := b.AddBlock(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	}),
}

var pageUpdateCmd = &cobra.Command{
	Use:   "update <page-id> <block-id>",
	Short: "Merge content and style keys into a block",
	Long: `Merge content and style keys into a block. Values are parsed as JSON when possible,
so --content count=3 stores a number and --content title=Hello a string.`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}
		ok, err := b.UpdateBlock(cmd.Context(), args[0], args[1], patch)
		return report(cmd, ok, err, "update "+args[1])
	}),
}

func patchFromFlags(cmd *cobra.Command) (domain.Patch, error) {
	var patch domain.Patch
	if raw, _ := cmd.Flags().GetString("patch"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &patch); err != nil {
			return patch, fmt.Errorf("invalid --patch: %w", err)
		}
	}
	content, _ := cmd.Flags().GetStringArray("content")
	style, _ := cmd.Flags().GetStringArray("style")
	var err error
	if patch.Content, err = mergePairs(patch.Content, content); err != nil {
		return patch, err
	}
	if patch.Style, err = mergePairs(patch.Style, style); err != nil {
		return patch, err
	}
	return patch, nil
}

func mergePairs(dst map[string]any, pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return dst, nil
	}
	if dst == nil {
		dst = map[string]any{}
	}
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid pair %q, expected key=value", kv)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		dst[key] = v
	}
	return dst, nil
}

var pageRmBlockCmd = &cobra.Command{
	Use:   "rm-block <page-id> <block-id>",
	Short: "Delete a block (non-editable blocks are kept)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		ok, err := b.DeleteBlock(cmd.Context(), args[0], args[1])
		return report(cmd, ok, err, "delete "+args[1])
	}),
}

var pageMoveCmd = &cobra.Command{
	Use:       "move <page-id> <block-id> <up|down>",
	Short:     "Move a block one position",
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{lattice.DirectionUp, lattice.DirectionDown},
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		ok, err := b.Move(cmd.Context(), args[0], args[1], args[2])
		return report(cmd, ok, err, "move "+args[1]+" "+args[2])
	}),
}

var pageReorderCmd = &cobra.Command{
	Use:   "reorder <page-id> <from> <to>",
	Short: "Move the block at index from to index to",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid from index: %w", err)
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid to index: %w", err)
		}
		ok, err := b.Reorder(cmd.Context(), args[0], from, to)
		return report(cmd, ok, err, fmt.Sprintf("reorder %d -> %d", from, to))
	}),
}

var pageToggleCmd = &cobra.Command{
	Use:   "toggle <page-id> <block-id>",
	Short: "Show or hide a block",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		ok, err := b.ToggleVisibility(cmd.Context(), args[0], args[1])
		return report(cmd, ok, err, "toggle "+args[1])
	}),
}

var pageDupCmd = &cobra.Command{
	Use:   "dup <page-id> <block-id>",
	Short: "Append a copy of a block",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		id, ok, err := b.Duplicate(cmd.Context(), args[0], args[1])
		if err != nil || !ok {
			return report(cmd, ok, err, "duplicate "+args[1])
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	}),
}

var pageApplyCmd = &cobra.Command{
	Use:   "apply <page-id> <template-id>",
	Short: "Append the blocks of a template",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		ids, err := b.ApplyTemplate(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	}),
}

var pageExportCmd = &cobra.Command{
	Use:   "export <page-id>",
	Short: "Export the blocks of a page as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		data, err := b.Export(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			return os.WriteFile(out, data, 0o644)
		}
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}),
}

var pageImportCmd = &cobra.Command{
	Use:   "import <page-id> <file|->",
	Short: "Replace the blocks of a page with an exported JSON array",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, b *lattice.Builder) error {
		var (
			data []byte
			err  error
		)
		if args[1] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[1])
		}
		if err != nil {
			return fmt.Errorf("failed to read import: %w", err)
		}
		if err := b.Import(cmd.Context(), args[0], data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Page '%s' imported.\n", args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(pageCmd)
	pageCmd.AddCommand(
		pageLsCmd, pageInspectCmd, pageRmCmd,
		pageAddCmd, pageUpdateCmd, pageRmBlockCmd,
		pageMoveCmd, pageReorderCmd, pageToggleCmd, pageDupCmd,
		pageApplyCmd, pageExportCmd, pageImportCmd,
	)

	pageInspectCmd.Flags().Bool("json", false, "Print the page as JSON")
	pageUpdateCmd.Flags().StringArray("content", nil, "Content key=value (repeatable)")
	pageUpdateCmd.Flags().StringArray("style", nil, "Style key=value (repeatable)")
	pageUpdateCmd.Flags().String("patch", "", `Full patch as JSON, e.g. {"visible": false}`)
	pageExportCmd.Flags().StringP("out", "o", "", "Write to a file instead of stdout")
}
