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
	"github.com/eslsoft/wordbook/internal/entity"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wordbook",
	Short: "English-Japanese vocabulary notebook",
	Long: `wordbook keeps an ordered list of English-Japanese word pairs with optional
example sentences. Every change is written straight to the configured storage.
Example sentences can be fetched from the Free Dictionary API.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		}
	},
}

// ExecuteContext adds all child commands to the root command and runs it with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./wordbook.yaml or $XDG_CONFIG_HOME/wordbook/wordbook.yaml)")
	rootCmd.PersistentFlags().String("storage-driver", "", "storage driver: json, sqlite3 or postgres")
	rootCmd.PersistentFlags().String("storage-path", "", "entries file (json) or database file (sqlite3)")
	rootCmd.PersistentFlags().String("storage-dsn", "", "postgres connection string")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-dictionary", false, "disable example sentence lookups")

	bindFlagToViper("storage.driver", rootCmd.PersistentFlags().Lookup("storage-driver"))
	bindFlagToViper("storage.path", rootCmd.PersistentFlags().Lookup("storage-path"))
	bindFlagToViper("storage.dsn", rootCmd.PersistentFlags().Lookup("storage-dsn"))
	bindFlagToViper("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// withContainer builds the application, runs fn and releases resources.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	if noDict, _ := cmd.Flags().GetBool("no-dictionary"); noDict {
		viper.Set("dictionary.enabled", false)
	}
	ctx := cmd.Context()
	c, cleanup, err := app.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()
	return fn(ctx, c)
}

// describeError turns store sentinels into short user-facing messages.
func describeError(err error) error {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return fmt.Errorf("rejected: %w", err)
	case errors.Is(err, entity.ErrIndexOutOfRange):
		return fmt.Errorf("no such entry: %w", err)
	case errors.Is(err, entity.ErrPersistence):
		return fmt.Errorf("storage failed, nothing was changed: %w", err)
	case errors.Is(err, entity.ErrLookupUnavailable):
		return fmt.Errorf("dictionary unavailable: %w", err)
	default:
		return err
	}
}
