package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"rpy-translator/internal/parser"
	"rpy-translator/internal/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <directory>",
		Short: "Show per-file counts of translatable strings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runStats(ctx, opts, args[0], cmd.OutOrStdout())
		},
	}
}

func checkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <directory>",
		Short: "Verify every extracted line rebuilds to its exact source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runCheck(ctx, opts, args[0], cmd.OutOrStdout())
		},
	}
}

// fileStats counts the items of one script by kind.
type fileStats struct {
	items, dialogue, narration, choices, screen, strings, untranslated int
}

func (fs *fileStats) add(o fileStats) {
	fs.items += o.items
	fs.dialogue += o.dialogue
	fs.narration += o.narration
	fs.choices += o.choices
	fs.screen += o.screen
	fs.strings += o.strings
	fs.untranslated += o.untranslated
}

func countItems(res *parser.Result) fileStats {
	var fs fileStats
	for _, it := range res.Items {
		fs.items++
		switch it.Type {
		case parser.TypeDialogue:
			fs.dialogue++
		case parser.TypeNarration:
			fs.narration++
		case parser.TypeChoice:
			fs.choices++
		case parser.TypeScreenText, parser.TypeScreenButton, parser.TypeScreenLabel, parser.TypeScreenProperty:
			fs.screen++
		case parser.TypeTranslateString, parser.TypeVariable:
			fs.strings++
		}
		if res.Mode == parser.ModeTranslate && untranslated(it) {
			fs.untranslated++
		}
	}
	return fs
}

// untranslated reports a translate-file item whose translation is still
// empty or a copy of the source.
func untranslated(it *parser.Item) bool {
	if it.FromComment {
		return false
	}
	return it.CurrentText == "" || it.CurrentText == it.OriginalText
}

// runStats handles the `stats` command.
func runStats(ctx context.Context, opts *options, dir string, w io.Writer) error {
	scripts, err := loadScripts(ctx, dir, opts)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Mode", "Language", "Items", "Dialogue", "Narration", "Choices", "Screen", "Strings", "Untranslated"})

	var total fileStats
	for _, s := range scripts {
		fs := countItems(s.result)
		total.add(fs)
		tw.AppendRow(table.Row{
			s.entry.Rel, string(s.result.Mode), s.result.Language,
			fs.items, fs.dialogue, fs.narration, fs.choices, fs.screen, fs.strings, fs.untranslated,
		})
	}
	tw.AppendFooter(table.Row{
		"Total " + strconv.Itoa(len(scripts)) + " files", "", "",
		total.items, total.dialogue, total.narration, total.choices, total.screen, total.strings, total.untranslated,
	})

	columns := make([]table.ColumnConfig, 0, 7)
	for i := 4; i <= 10; i++ {
		columns = append(columns, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	tw.SetColumnConfigs(columns)

	tw.Render()
	return nil
}

// runCheck handles the `check` command: every item must rebuild to the line
// it came from.
func runCheck(ctx context.Context, opts *options, dir string, w io.Writer) error {
	scripts, err := loadScripts(ctx, dir, opts)
	if err != nil {
		return err
	}

	checked, mismatches := 0, 0
	for _, s := range scripts {
		for _, it := range s.result.Items {
			checked++
			got := it.Line()
			want := s.file.Lines[it.LineIndex]
			if got == want {
				continue
			}
			mismatches++
			fmt.Fprintf(w, "%s:%d: %s\n  want %q\n  got  %q\n",
				s.entry.Rel, it.LineIndex+1, it.Type, want, got)
			log.Debug().Str("file", s.entry.Rel).Str("text", textutil.Truncate(it.OriginalText, 30)).Msg("Round-trip mismatch")
		}
	}

	log.Info().Int("files", len(scripts)).Int("items", checked).Int("mismatches", mismatches).Msg("Check complete")

	if mismatches > 0 {
		return fmt.Errorf("%d of %d items do not round-trip", mismatches, checked)
	}
	return nil
}
