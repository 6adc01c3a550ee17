/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/eslsoft/wordbook/internal/app"
	"github.com/eslsoft/wordbook/internal/entity"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries in order",
	Example: `  wordbook list
  wordbook list --filter 'english.startsWith("ap")' --order-by 'english desc'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		orderBy, _ := cmd.Flags().GetString("order-by")
		return withContainer(cmd, func(_ context.Context, c *app.Container) error {
			entries, err := c.Store.Search(filter, orderBy)
			if err != nil {
				return describeError(err)
			}
			if len(entries) == 0 {
				cmd.Println("no entries")
				return nil
			}
			return renderEntries(cmd.OutOrStdout(), entries)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show INDEX",
	Short: "Show one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return withContainer(cmd, func(_ context.Context, c *app.Container) error {
			entry, err := c.Store.Get(index)
			if err != nil {
				return describeError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "English:  %s\n", entry.English)
			fmt.Fprintf(out, "Japanese: %s\n", entry.Japanese)
			fmt.Fprintf(out, "Example:  %s\n", entry.Example)
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add ENGLISH JAPANESE [EXAMPLE]",
	Short: "Append a new entry",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		english, japanese, example := args[0], args[1], optionalArg(args, 2)
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			index, err := c.Store.Add(ctx, english, japanese, example)
			if err != nil {
				return describeError(err)
			}
			cmd.Printf("added #%d\n", index)
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update INDEX ENGLISH JAPANESE [EXAMPLE]",
	Short: "Replace an entry",
	Long:  "Replace all fields of the entry at INDEX. An omitted EXAMPLE clears the example.",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		english, japanese, example := args[1], args[2], optionalArg(args, 3)
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Store.Update(ctx, index, english, japanese, example); err != nil {
				return describeError(err)
			}
			cmd.Printf("updated #%d\n", index)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete INDEX",
	Aliases: []string{"rm"},
	Short:   "Delete an entry; later entries shift down by one",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			entry, err := c.Store.Get(index)
			if err != nil {
				return describeError(err)
			}
			if err := c.Store.Delete(ctx, index); err != nil {
				return describeError(err)
			}
			cmd.Printf("deleted #%d %s\n", index, entry.Label())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd, addCmd, updateCmd, deleteCmd)

	listCmd.Flags().String("filter", "", "CEL expression over english, japanese, example and index")
	listCmd.Flags().String("order-by", "", `sort clause, e.g. "english desc" or "japanese, index"`)
}

func renderEntries(w io.Writer, entries []entity.IndexedEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tENGLISH\tJAPANESE\tEXAMPLE")
	lines := lo.Map(entries, func(ie entity.IndexedEntry, _ int) string {
		return fmt.Sprintf("%d\t%s\t%s\t%s", ie.Index, ie.Entry.English, ie.Entry.Japanese, ie.Entry.Example)
	})
	fmt.Fprintln(tw, strings.Join(lines, "\n"))
	return tw.Flush()
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: must be an integer", raw)
	}
	return index, nil
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
