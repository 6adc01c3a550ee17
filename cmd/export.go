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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/wordbook/internal/app"
	"github.com/eslsoft/wordbook/internal/usecase/backup"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
	exportBatchKey  = "backup.export.batch_size"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all entries as an NDJSON backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath := viper.GetString(exportOutputKey)
		gzipFlag := viper.GetBool(exportGzipKey)
		batchSize := viper.GetInt(exportBatchKey)

		if outputPath == "" {
			outputPath = defaultExportFilename(gzipFlag)
		}
		gzipEnabled := wantsGzip(outputPath, gzipFlag)

		return withContainer(cmd, func(ctx context.Context, c *app.Container) (err error) {
			service := backup.NewService(c.Store, backup.WithBatchSize(batchSize))

			writer, closeFns, err := openBackupWriter(cmd, outputPath, gzipEnabled)
			if err != nil {
				return err
			}
			defer runClosers(closeFns, &err)

			progress := progressFor(cmd, "export")
			n, err := service.Export(ctx, writer, backup.WithProgressReporter(progress))
			if err != nil {
				return fmt.Errorf("export backup: %w", err)
			}

			if outputPath == "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d entries to stdout\n", n)
			} else {
				cmd.Printf("exported %d entries to %s\n", n, outputPath)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "backup file path, - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")
	exportCmd.Flags().Int("batch-size", 0, "entries written between progress updates (default 512)")

	bindExportConfig()
}

func defaultExportFilename(gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("wordbook-backup-%s.jsonl", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

func bindExportConfig() {
	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportBatchKey, exportCmd.Flags().Lookup("batch-size"))
}

type cliProgress struct {
	out         io.Writer
	verb        string
	total       int
	count       int
	lastPrinted int
	step        int
}

func newCLIProgress(out io.Writer, verb string) *cliProgress {
	return &cliProgress{out: out, verb: verb}
}

func (p *cliProgress) Start(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	p.count = 0
	p.lastPrinted = 0
	p.step = progressStep(total)
	fmt.Fprintf(p.out, "starting %s of %d entries\n", p.verb, total)
}

func (p *cliProgress) Increment(delta int) {
	if delta <= 0 {
		return
	}
	p.count += delta
	step := p.step
	if step <= 0 {
		step = 1
	}
	if p.count == p.total || p.lastPrinted == 0 || p.count-p.lastPrinted >= step {
		p.printProgress()
		p.lastPrinted = p.count
	}
}

func (p *cliProgress) Finish() {
	if p.count != p.lastPrinted {
		p.printProgress()
	}
	fmt.Fprintf(p.out, "finished %s: %d/%d entries\n", p.verb, p.count, p.total)
}

func (p *cliProgress) printProgress() {
	fmt.Fprintf(p.out, "%s progress: %d/%d\n", p.verb, p.count, p.total)
}

func progressStep(total int) int {
	if total <= 0 {
		return 1000
	}
	step := total / 20
	if step < 1 {
		step = 1
	}
	if step > 1000 {
		step = 1000
	}
	return step
}
