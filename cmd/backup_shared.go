package cmd

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/eslsoft/wordbook/internal/usecase/backup"
)

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// progressFor reports progress on stderr only when it is an interactive terminal.
func progressFor(cmd *cobra.Command, verb string) backup.ProgressReporter {
	out := cmd.ErrOrStderr()
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return newCLIProgress(out, verb)
}

// wantsGzip reports whether path should be (de)compressed, either by flag or by a .gz suffix.
func wantsGzip(path string, flagged bool) bool {
	if flagged {
		return true
	}
	return path != "-" && strings.HasSuffix(strings.ToLower(path), ".gz")
}

// openBackupWriter returns a writer for path ("-" is stdout) and the closers to run
// in order once writing is done.
func openBackupWriter(cmd *cobra.Command, path string, gzipEnabled bool) (io.Writer, []func() error, error) {
	var (
		writer   = cmd.OutOrStdout()
		closeFns []func() error
	)

	if path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
		file, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create backup file: %w", err)
		}
		writer = file
		closeFns = append(closeFns, file.Close)
	}

	if gzipEnabled {
		gz := gzip.NewWriter(writer)
		writer = gz
		closeFns = append([]func() error{gz.Close}, closeFns...)
	}
	return writer, closeFns, nil
}

// openBackupReader mirrors openBackupWriter for input ("-" is stdin).
func openBackupReader(cmd *cobra.Command, path string, gzipEnabled bool) (io.Reader, []func() error, error) {
	var (
		reader  = cmd.InOrStdin()
		closers []func() error
	)

	if path != "-" {
		file, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("open backup file: %w", err)
		}
		reader = file
		closers = append(closers, file.Close)
	}

	if gzipEnabled {
		gzr, err := gzip.NewReader(reader)
		if err != nil {
			runClosers(closers, nil)
			return nil, nil, fmt.Errorf("create gzip reader: %w", err)
		}
		reader = gzr
		closers = append([]func() error{gzr.Close}, closers...)
	}
	return reader, closers, nil
}

// runClosers runs every closer and keeps the first error.
func runClosers(closers []func() error, err *error) {
	for _, closer := range closers {
		if cerr := closer(); cerr != nil && err != nil && *err == nil {
			*err = cerr
		}
	}
}
