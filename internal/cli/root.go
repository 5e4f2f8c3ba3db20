// Package cli implements the cellwatch command line interface.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	Version = "0.1.0"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "cellwatch",
	Short: "cellwatch - observable value cell demo",
	Long: `cellwatch drives an observable value cell from a deterministic
random walk and streams every change to its subscribers. It is the
integration example for the obscell library.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "cellwatch.toml", "config file path")
}

func newLogger(app, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
}
