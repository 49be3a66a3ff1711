package cli

import (
	"context"
	"fmt"

	"rpy-translator/internal/filewalker"
	"rpy-translator/internal/parser"
	"rpy-translator/internal/scriptfile"
	"rpy-translator/internal/worker"

	"github.com/rs/zerolog/log"
)

// script is one parsed file.
type script struct {
	entry  filewalker.FileEntry
	file   *scriptfile.Script
	result *parser.Result
}

// loadScripts finds every script under dir and parses them concurrently.
// Files that cannot be read are logged and left out.
func loadScripts(ctx context.Context, dir string, opts *options) ([]script, error) {
	entries, err := filewalker.NewWalker(opts.parseMode()).Walk(dir)
	if err != nil {
		return nil, fmt.Errorf("walk input directory: %w", err)
	}

	parsePool := worker.NewPool("parse", opts.workers,
		func(ctx context.Context, entry filewalker.FileEntry) (script, error) {
			return loadScript(entry)
		},
	)
	tasks := parsePool.Execute(ctx, entries)

	scripts := make([]script, 0, len(tasks))
	skipped := 0
	for _, task := range tasks {
		if !task.Done {
			skipped++
			continue
		}
		if task.Err != nil {
			log.Error().Err(task.Err).Str("file", task.Input.Rel).Msg("Parse failed")
			continue
		}
		scripts = append(scripts, task.Result)
	}

	if err := ctx.Err(); err != nil {
		log.Warn().Int("parsed", len(scripts)).Int("skipped", skipped).Msg("Cancelled before every script was parsed")
		return nil, err
	}
	return scripts, nil
}

func loadScript(entry filewalker.FileEntry) (script, error) {
	f, err := scriptfile.Read(entry.Path)
	if err != nil {
		return script{}, err
	}

	res, err := parser.ParseFile(f.Lines, entry.Mode)
	if err != nil {
		return script{}, fmt.Errorf("parse %s: %w", entry.Rel, err)
	}

	if len(res.Items) == 0 {
		log.Warn().Str("file", entry.Rel).Str("mode", string(res.Mode)).Msg("No translatable text found")
	} else {
		log.Debug().Str("file", entry.Rel).Int("items", len(res.Items)).Msg("Parsed")
	}

	return script{entry: entry, file: f, result: res}, nil
}
