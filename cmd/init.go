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

	"github.com/spf13/cobra"

	"github.com/eslsoft/wordbook/internal/app"
	"github.com/eslsoft/wordbook/internal/infrastructure/config"
)

// initCmd creates the configured storage so later commands find it in place.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configured storage",
	Long: `Create the entries file or database table for the configured storage driver.
Existing entries are loaded and written back unchanged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Store.Save(ctx); err != nil {
				return describeError(err)
			}
			location := c.Config.Storage.Path
			if c.Config.Storage.Driver == config.DriverPostgres {
				location = "postgres"
			}
			cmd.Printf("storage ready (%s, %s): %d entries\n", c.Config.Storage.Driver, location, c.Store.Len())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
