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
	"github.com/spf13/viper"

	"github.com/eslsoft/wordbook/internal/app"
	"github.com/eslsoft/wordbook/internal/usecase/backup"
)

const (
	importInputKey   = "backup.import.input"
	importGzipKey    = "backup.import.gzip"
	importReplaceKey = "backup.import.replace"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import entries from an NDJSON backup",
	Long: `Import entries from a backup written by export. Every record is checked
before anything is stored; one bad record aborts the whole import.
Entries are appended unless --replace is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := viper.GetString(importInputKey)
		replace := viper.GetBool(importReplaceKey)

		if inputPath == "" {
			return errors.New("give a backup file with --input, or - for stdin")
		}
		gzipEnabled := wantsGzip(inputPath, viper.GetBool(importGzipKey))

		return withContainer(cmd, func(ctx context.Context, c *app.Container) (err error) {
			service := backup.NewService(c.Store)

			reader, closers, err := openBackupReader(cmd, inputPath, gzipEnabled)
			if err != nil {
				return err
			}
			defer runClosers(closers, &err)

			progress := progressFor(cmd, "import")
			n, err := service.Import(ctx, reader,
				backup.WithReplace(replace),
				backup.WithImportProgressReporter(progress),
			)
			if err != nil {
				return describeError(fmt.Errorf("import backup: %w", err))
			}

			source := inputPath
			if inputPath == "-" {
				source = "stdin"
			}
			cmd.Printf("imported %d entries from %s\n", n, source)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "backup file path, - for stdin")
	importCmd.Flags().Bool("gzip", false, "input is gzip compressed")
	importCmd.Flags().Bool("replace", false, "replace the whole list instead of appending")

	bindImportConfig()
}

func bindImportConfig() {
	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
	bindFlagToViper(importReplaceKey, importCmd.Flags().Lookup("replace"))
}
