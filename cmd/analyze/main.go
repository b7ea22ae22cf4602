// Command analyze prints quick, human-readable heuristics about the levels in
// a level directory. It renders each grid, counts keys and doors per colour,
// flags doors that outnumber their keys, shows what is reachable before any
// key is picked up, and prints the shortest winning route.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/keyquest/game/engine"
	"github.com/wricardo/keyquest/game/levels"
)

// Analysis is the summary of a single level
type Analysis struct {
	Info        *levels.LevelInfo
	Grid        engine.Grid
	KeyCounts   [5]int
	DoorCounts  [5]int
	Reachable   int
	Floor       int
	ExitVisible bool
	Route       []engine.Direction
	SolveErr    error
}

// analyzeLevel computes the heuristics for one definition
func analyzeLevel(info *levels.LevelInfo, def *engine.LevelDefinition) (*Analysis, error) {
	grid, err := def.Grid()
	if err != nil {
		return nil, err
	}

	a := &Analysis{Info: info, Grid: grid}
	for _, row := range grid {
		for _, cell := range row {
			switch v := cell.(type) {
			case engine.Item:
				a.KeyCounts[v-engine.Key1]++
			case engine.Obstacle:
				if key, ok := v.Key(); ok {
					a.DoorCounts[key-engine.Key1]++
				}
			}
			if engine.IsPassable(cell) {
				a.Floor++
			}
		}
	}

	if start, ok := engine.LocatePlayer(grid); ok {
		reached := reachableWithoutKeys(grid, start)
		a.Reachable = len(reached) - 1
		for pos := range reached {
			for _, d := range engine.Directions {
				if cell, _, ok := engine.Neighbor(grid, pos, d); ok && cell == engine.FloorExit {
					a.ExitVisible = true
				}
			}
		}
	}

	a.Route, a.SolveErr = engine.Solve(grid, nil)
	return a, nil
}

// reachableWithoutKeys flood-fills over passable cells from start
func reachableWithoutKeys(grid engine.Grid, start engine.Position) map[engine.Position]bool {
	visited := map[engine.Position]bool{start: true}
	queue := []engine.Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range engine.Directions {
			cell, next, ok := engine.Neighbor(grid, current, d)
			if !ok || visited[next] || !engine.IsPassable(cell) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Info.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Info.Rows, a.Info.Cols)
	fmt.Fprintln(w, engine.Render(a.Grid))

	for i := range a.KeyCounts {
		if a.KeyCounts[i] == 0 && a.DoorCounts[i] == 0 {
			continue
		}
		key := engine.Key1 + engine.Item(i)
		fmt.Fprintf(w, "%s: %d, %s: %d\n", key, a.KeyCounts[i], key.Door(), a.DoorCounts[i])
		if a.DoorCounts[i] > a.KeyCounts[i] {
			fmt.Fprintf(w, "⚠️  WARNING: %d %s doors but only %d keys; some doors can never be opened\n",
				a.DoorCounts[i], key.Door(), a.KeyCounts[i])
		}
	}

	fmt.Fprintf(w, "Reachable without keys: %d of %d open cells\n", a.Reachable, a.Floor)
	if a.ExitVisible {
		fmt.Fprintln(w, "ℹ️  The exit can be approached without opening any door")
	}

	if a.SolveErr != nil {
		fmt.Fprintf(w, "⚠️  CRITICAL: no winning route (%v)\n", a.SolveErr)
		return
	}
	fmt.Fprintf(w, "✅ Shortest win: %d moves\n", len(a.Route))
	for i, d := range a.Route {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprint(w, d)
	}
	fmt.Fprintln(w)
}

func run(w io.Writer, dir string) error {
	manager, err := levels.NewManager(dir)
	if err != nil {
		return err
	}

	infos, err := manager.ListLevels()
	if err != nil {
		return err
	}

	for _, info := range infos {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)

		def, err := manager.LoadLevel(info.ID)
		if err != nil {
			fmt.Fprintf(w, "Error loading level: %v\n", err)
			continue
		}
		a, err := analyzeLevel(info, def)
		if err != nil {
			fmt.Fprintf(w, "Error parsing level: %v\n", err)
			continue
		}
		printAnalysis(w, a)
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Print heuristics about Key Quest levels",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "levels", Usage: "Level directory"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(cmd.Root().Writer, cmd.String("dir"))
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
