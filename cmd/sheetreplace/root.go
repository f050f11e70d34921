package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	sheetreplace "github.com/ideamans/go-sheetreplace"
	"github.com/ideamans/go-sheetreplace/adapters/excel"
	"github.com/ideamans/go-sheetreplace/adapters/ziparchive"
	"github.com/ideamans/go-sheetreplace/internal/config"
)

// rootOpts is shared by every sub-command
type rootOpts struct {
	configFile string
	debug      bool
	settings   *config.Settings
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:           "sheetreplace",
		Short:         "Find and replace text across spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(cmd.Context(), opts.configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			opts.settings = settings
			cmd.SetContext(opts.setupLogging(cmd.ErrOrStderr()).WithContext(cmd.Context()))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (.yaml, .yml or .hcl)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newRunCmd(opts))

	return cmd
}

// setupLogging builds the console logger from flags and settings
func (o *rootOpts) setupLogging(w io.Writer) *zerolog.Logger {
	level := o.settings.Level()
	if o.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
	return &logger
}

// newProcessor wires the spreadsheet and archive codecs into a pipeline
func (o *rootOpts) newProcessor(cfg *sheetreplace.Config) *sheetreplace.Processor {
	return sheetreplace.New(excel.New(nil), ziparchive.New(nil), cfg)
}
