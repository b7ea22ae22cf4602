// Command validate checks level files. For every file it verifies:
//   - JSON/YAML structure and known tile ids
//   - Rectangular grid with exactly one player placeholder and an exit
//   - Every door has a matching key somewhere in the level
//   - NPC text is present when an NPC is placed
//   - The level can be won from the start, reporting the shortest route
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/keyquest/game/engine"
	"github.com/wricardo/keyquest/game/levels"
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateLevelFile loads and checks one level file, then solves it.
func validateLevelFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	def, err := levels.ReadFile(path)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if err := levels.ValidateID(def.ID); err != nil {
		result.fail("%v", err)
	}
	if err := engine.ValidateLevel(def); err != nil {
		result.fail("%v", err)
		return result
	}

	grid, _ := def.Grid()
	route, err := engine.Solve(grid, nil)
	switch {
	case errors.Is(err, engine.ErrNoSolution):
		result.fail("Level cannot be won from the start")
	case err != nil:
		result.Info = append(result.Info, fmt.Sprintf("⚠ Solver gave up: %v", err))
	}

	if !result.Valid {
		return result
	}

	info := levels.Describe(def.ID, result.File, def)
	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", info.Name),
		fmt.Sprintf("✓ Grid: %dx%d", info.Rows, info.Cols),
		fmt.Sprintf("✓ Keys: %d, Doors: %d, NPC: %v", info.Keys, info.Doors, info.HasNPC),
	)
	if route != nil {
		result.Info = append(result.Info, fmt.Sprintf("✓ Shortest win: %d moves (%s)", len(route), joinRoute(route)))
	}
	return result
}

func joinRoute(route []engine.Direction) string {
	parts := make([]string, len(route))
	for i, d := range route {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

// levelFiles returns the explicit paths, or every level file in dir
func levelFiles(dir string, paths []string) ([]string, error) {
	if len(paths) > 0 {
		return paths, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error finding level files: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && levels.IsLevelFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// report prints one block per file and returns whether all were valid
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All levels are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some levels have errors")
	}
	return allValid
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate Key Quest level files",
		ArgsUsage: "[file ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "levels", Usage: "Directory scanned when no files are given"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := levelFiles(cmd.String("dir"), cmd.Args().Slice())
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if len(files) == 0 {
				return cli.Exit("no level files found", 1)
			}

			results := make([]ValidationResult, 0, len(files))
			for _, file := range files {
				results = append(results, validateLevelFile(file))
			}

			if !report(cmd.Root().Writer, results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
