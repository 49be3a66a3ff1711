package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"rpy-translator/internal/catalog"
	"rpy-translator/internal/export"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func extractCmd(opts *options) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "extract <directory>",
		Short: "Export every translatable string as TSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return runExtract(ctx, opts, args[0], export.Format(format), w)
		},
	}

	cmd.Flags().StringVar(&format, "format", opts.cfg.ExportFormat, "Export format: tsv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

// runExtract handles the `extract` command.
func runExtract(ctx context.Context, opts *options, dir string, format export.Format, w io.Writer) error {
	scripts, err := loadScripts(ctx, dir, opts)
	if err != nil {
		return err
	}

	var units []export.Unit
	for _, s := range scripts {
		units = append(units, export.FromResult(s.entry.Rel, s.result)...)
	}

	if err := export.Write(w, format, units); err != nil {
		return err
	}

	log.Info().
		Int("files", len(scripts)).
		Int("units", len(units)).
		Str("format", string(format)).
		Msg("Extraction complete")
	return nil
}

func syncCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <directory>",
		Short: "Store extracted strings in PostgreSQL for editing",
		Long: `Upserts every extracted string into the script_units table. Edited
current_text values survive re-syncs as long as the source line is
unchanged; rows for lines that no longer hold text are removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(args[0], opts)
		},
	}
}

// runSync handles the `sync` command.
func runSync(dir string, opts *options) error {
	ctx, cancel := setupContext()
	defer cancel()

	pgPool, err := openCatalogPool(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	units := catalog.New(pgPool, opts.cfg.BatchSize)
	if err := units.EnsureSchema(ctx); err != nil {
		return err
	}

	scripts, err := loadScripts(ctx, dir, opts)
	if err != nil {
		return err
	}

	total := 0
	for _, s := range scripts {
		fileUnits := export.FromResult(s.entry.Rel, s.result)
		if err := units.Sync(ctx, s.entry.Rel, fileUnits); err != nil {
			return err
		}
		total += len(fileUnits)
	}

	log.Info().Int("files", len(scripts)).Int("units", total).Msg("Sync complete")
	return nil
}
