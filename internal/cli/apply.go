package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"rpy-translator/internal/catalog"
	"rpy-translator/internal/export"
	"rpy-translator/internal/interpolation"
	"rpy-translator/internal/parser"
	"rpy-translator/internal/patch"
	"rpy-translator/internal/scriptfile"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// editSource returns the edits for one script, keyed by line index.
type editSource func(ctx context.Context, rel string) (map[int]string, error)

type applyOptions struct {
	dryRun    bool
	strict    bool
	outputDir string
	out       io.Writer
}

func applyCmd(opts *options) *cobra.Command {
	var (
		editsPath string
		fromDB    bool
		aopts     applyOptions
	)

	cmd := &cobra.Command{
		Use:   "apply <directory>",
		Short: "Write edited strings back into the scripts",
		Long: `Reads edits from a TSV produced by "extract" (--edits) or from the
PostgreSQL catalog (--db) and rewrites only the affected lines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (editsPath == "") == !fromDB {
				return errors.New("exactly one of --edits or --db is required")
			}

			ctx, cancel := setupContext()
			defer cancel()

			aopts.out = cmd.OutOrStdout()

			if fromDB {
				pgPool, err := openCatalogPool(ctx, opts.cfg)
				if err != nil {
					return err
				}
				defer pgPool.Close()
				units := catalog.New(pgPool, opts.cfg.BatchSize)
				return runApply(ctx, opts, args[0], units.Edits, aopts)
			}

			source, err := tsvEdits(editsPath)
			if err != nil {
				return err
			}
			return runApply(ctx, opts, args[0], source, aopts)
		},
	}

	cmd.Flags().StringVar(&editsPath, "edits", "", "TSV file with edited \"current\" column")
	cmd.Flags().BoolVar(&fromDB, "db", false, "Read edits from the PostgreSQL catalog")
	cmd.Flags().BoolVar(&aopts.dryRun, "dry-run", false, "Print a diff instead of writing files")
	cmd.Flags().BoolVar(&aopts.strict, "strict", false, "Skip files whose edits drop [substitutions] or {tags}")
	cmd.Flags().StringVar(&aopts.outputDir, "output-dir", "", "Write patched scripts here instead of in place")

	return cmd
}

// tsvEdits loads an edited export into an editSource.
func tsvEdits(path string) (editSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open edits: %w", err)
	}
	defer f.Close()

	edits, err := export.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("read edits %s: %w", path, err)
	}

	return func(_ context.Context, rel string) (map[int]string, error) {
		return edits[rel], nil
	}, nil
}

// runApply handles the `apply` command.
func runApply(ctx context.Context, opts *options, dir string, source editSource, aopts applyOptions) error {
	scripts, err := loadScripts(ctx, dir, opts)
	if err != nil {
		return err
	}

	var patchedFiles, changedLines, failed int

	for _, s := range scripts {
		rel := s.entry.Rel
		edits, err := source(ctx, rel)
		if err != nil {
			log.Error().Err(err).Str("file", rel).Msg("Load edits failed")
			failed++
			continue
		}
		if len(edits) == 0 {
			continue
		}

		if matched := patch.SetTexts(s.result.Items, edits); matched < len(edits) {
			log.Warn().Str("file", rel).Int("edits", len(edits)).Int("matched", matched).Msg("Some edits point at lines without text")
		}

		if dropped := checkTokens(rel, s.result.Items); dropped > 0 && aopts.strict {
			log.Error().Str("file", rel).Int("items", dropped).Msg("Edits drop interpolation tokens, file skipped")
			failed++
			continue
		}

		before := append([]string(nil), s.file.Lines...)
		changes, err := patch.Apply(s.file.Lines, s.result.Items)
		if err != nil {
			log.Error().Err(err).Str("file", rel).Msg("Patch failed")
			failed++
			continue
		}
		if len(changes) == 0 {
			continue
		}

		if aopts.dryRun {
			fmt.Fprint(aopts.out, patch.Diff(rel, before, s.file.Lines))
		} else {
			outPath := s.entry.Path
			if aopts.outputDir != "" {
				outPath = filepath.Join(aopts.outputDir, filepath.FromSlash(rel))
			}
			if err := scriptfile.Write(outPath, s.file); err != nil {
				log.Error().Err(err).Str("path", outPath).Msg("Write output file")
				failed++
				continue
			}
			log.Info().Str("file", rel).Str("output", outPath).Int("lines", len(changes)).Msg("Script patched")
		}

		patchedFiles++
		changedLines += len(changes)
	}

	log.Info().
		Int("files", patchedFiles).
		Int("lines", changedLines).
		Bool("dry_run", aopts.dryRun).
		Msg("Apply complete")

	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be patched", failed)
	}
	return nil
}

// sourceText is the text an edit is measured against: the untranslated
// original, or the initial text for items without one (orphan `new` lines).
func sourceText(it *parser.Item) string {
	if it.OriginalText != "" {
		return it.OriginalText
	}
	return it.InitialText
}

// checkTokens warns about edited items that lost a substitution, text tag or
// format directive of their source text, and returns how many did.
func checkTokens(rel string, items []*parser.Item) int {
	dropped := 0
	for _, it := range items {
		if !it.Modified() {
			continue
		}
		missing := interpolation.Missing(sourceText(it), it.CurrentText)
		if len(missing) == 0 {
			continue
		}
		dropped++
		log.Warn().
			Str("file", rel).
			Int("line", it.LineIndex+1).
			Strs("missing", missing).
			Msg("Edit drops interpolation tokens")
	}
	return dropped
}
