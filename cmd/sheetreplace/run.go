package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	sheetreplace "github.com/ideamans/go-sheetreplace"
	"github.com/ideamans/go-sheetreplace/adapters/googlesheets"
)

type runOpts struct {
	find         string
	replace      string
	out          string
	parallel     int
	failFast     bool
	googleSheets []string
	credentials  string
}

func newRunCmd(root *rootOpts) *cobra.Command {
	opts := &runOpts{}

	cmd := &cobra.Command{
		Use:   "run [flags] PATH...",
		Short: "Process local spreadsheets, zip archives and Google Sheets into a bundle",
		Long: `Run replaces text in every spreadsheet given as argument. A path may be a
spreadsheet, a zip archive of spreadsheets or a directory searched with the
configured patterns. Google Sheets are added with --google-sheet ID[=NAME].
The resulting zip bundle is written to --out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(opts.googleSheets) == 0 {
				return errors.New("no input: pass paths or --google-sheet")
			}
			return opts.run(cmd, root, args)
		},
	}

	cmd.Flags().StringVarP(&opts.find, "find", "f", "", "text to find")
	cmd.Flags().StringVarP(&opts.replace, "replace", "r", "", "replacement text")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "directory receiving the bundle")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 0, "files processed at once (overrides config)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "abort on the first failed file")
	cmd.Flags().StringArrayVar(&opts.googleSheets, "google-sheet", nil, "Google spreadsheet ID, optionally ID=NAME (repeatable)")
	cmd.Flags().StringVar(&opts.credentials, "credentials", "", "service account JSON key for Google Sheets (overrides config)")
	_ = cmd.MarkFlagRequired("find")

	return cmd
}

func (o *runOpts) run(cmd *cobra.Command, root *rootOpts, paths []string) error {
	ctx := cmd.Context()
	s := root.settings

	cfg := s.Pipeline()
	if o.parallel > 0 {
		cfg.MaxParallelism = o.parallel
	}
	if o.failFast {
		cfg.FailFast = true
	}

	req := &sheetreplace.Request{Spec: sheetreplace.ReplacementSpec{Find: o.find, Replace: o.replace}}
	for _, p := range paths {
		uploads, err := collectPath(ctx, p, cfg.Patterns)
		if err != nil {
			return err
		}
		req.Uploads = append(req.Uploads, uploads...)
	}

	credentials := o.credentials
	if credentials == "" {
		credentials = s.Google.CredentialsFile
	}
	for _, ref := range o.googleSheets {
		src, err := newSheetSource(ctx, ref, credentials)
		if err != nil {
			return err
		}
		req.Sources = append(req.Sources, src)
	}

	bundle, batch, err := root.newProcessor(cfg).Process(ctx, req)
	if err != nil {
		return errors.Errorf("processing: %w", err)
	}

	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return errors.Errorf("creating output directory: %w", err)
	}
	dest := filepath.Join(o.out, bundle.Filename)
	if err := os.WriteFile(dest, bundle.Data, 0o644); err != nil {
		return errors.Errorf("writing bundle: %w", err)
	}

	printSummary(cmd.OutOrStdout(), dest, bundle, batch)
	return nil
}

// collectPath reads a file, or every file below a directory that matches
// one of patterns, compared case-insensitively
func collectPath(ctx context.Context, path string, patterns []string) ([]sheetreplace.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Errorf("reading input: %w", err)
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Errorf("reading input: %w", err)
		}
		return []sheetreplace.Upload{{Filename: filepath.Base(path), Data: data}}, nil
	}

	var uploads []sheetreplace.Upload
	err = doublestar.GlobWalk(os.DirFS(path), "**", func(name string, d fs.DirEntry) error {
		if d.IsDir() || !sheetreplace.MatchesAny(patterns, name) {
			return nil
		}
		data, err := os.ReadFile(filepath.Join(path, filepath.FromSlash(name)))
		if err != nil {
			return errors.Errorf("reading input: %w", err)
		}
		uploads = append(uploads, sheetreplace.Upload{Filename: name, Data: data})
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("searching %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Debug().Str("dir", path).Int("files", len(uploads)).Msg("directory scanned")
	return uploads, nil
}

// parseSheetRef splits "ID=NAME" into its parts. NAME is optional.
func parseSheetRef(ref string) (googlesheets.Config, error) {
	id, name, _ := strings.Cut(ref, "=")
	cfg := googlesheets.Config{SpreadsheetID: strings.TrimSpace(id), Name: strings.TrimSpace(name)}
	return cfg, cfg.Validate()
}

func newSheetSource(ctx context.Context, ref, credentials string) (*googlesheets.Source, error) {
	cfg, err := parseSheetRef(ref)
	if err != nil {
		return nil, err
	}
	if credentials != "" {
		return googlesheets.NewWithJSONKeyFile(ctx, cfg, credentials)
	}
	return googlesheets.NewWithDefaultCredentials(ctx, cfg)
}
