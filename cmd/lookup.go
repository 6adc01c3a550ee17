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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslsoft/wordbook/internal/app"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [WORD]",
	Short: "Fetch an example sentence from the dictionary",
	Long: `Look up an example sentence for WORD, or for the English word of the entry at
--index. With --index, --save writes a found example into that entry.
Without --save nothing is stored.`,
	Example: `  wordbook lookup run
  wordbook lookup --index 3 --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, _ := cmd.Flags().GetInt("index")
		save, _ := cmd.Flags().GetBool("save")
		word := optionalArg(args, 0)
		if (index < 0) == (word == "") {
			return errors.New("give either a WORD or --index")
		}
		if save && index < 0 {
			return errors.New("--save needs --index")
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			editor := c.NewEditor()
			defer editor.Close()

			if index >= 0 {
				if err := editor.Select(index); err != nil {
					return describeError(err)
				}
			} else {
				editor.SetDraft(word, "", "")
			}

			res, err := editor.LookupExample(ctx)
			if err != nil {
				return describeError(err)
			}
			if !res.Found {
				cmd.Printf("no example found for %q\n", res.Word)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Example)

			if !save {
				return nil
			}
			saved, err := editor.Commit(ctx)
			if err != nil {
				return describeError(err)
			}
			cmd.Printf("saved example to #%d\n", saved)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().Int("index", -1, "look up the English word of this entry")
	lookupCmd.Flags().Bool("save", false, "store a found example in the entry given by --index")
}
