package games

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/minicasino/internal/maze"
)

// rewardDecay is how long the time bonus takes to run out.
const rewardDecay = 300 * time.Second

// Difficulty selects the maze size and reward.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
	Expert Difficulty = "expert"
)

// Difficulties lists the difficulties from smallest to largest maze.
var Difficulties = []Difficulty{Easy, Medium, Hard, Expert}

// ParseDifficulty is case-insensitive.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Easy, Medium, Hard, Expert:
		return d, nil
	}
	return "", illegal("unknown difficulty %q", s)
}

// Size is the side length of the maze.
func (d Difficulty) Size() int {
	switch d {
	case Medium:
		return 15
	case Hard:
		return 20
	case Expert:
		return 25
	}
	return 10
}

// BaseReward is paid for any completion.
func (d Difficulty) BaseReward() int {
	switch d {
	case Medium:
		return 150
	case Hard:
		return 300
	case Expert:
		return 500
	}
	return 50
}

// MazeReward is the base reward plus a time bonus that falls linearly from
// the base reward to nothing after five minutes.
func MazeReward(d Difficulty, elapsed time.Duration) int {
	base := d.BaseReward()
	secs := int(elapsed / time.Second)
	limit := int(rewardDecay / time.Second)
	if secs >= limit {
		return base
	}
	return base + base*(limit-secs)/limit
}

// MazeRun is the reward-only maze game. Nothing is staked.
type MazeRun struct {
	base
	difficulty Difficulty
	grid       *maze.Grid
	pos        maze.Point
	started    time.Time
	elapsed    time.Duration
}

func NewMaze(deps Deps) *MazeRun {
	return &MazeRun{base: newBase(Maze, deps)}
}

// Start generates a fresh maze and starts the clock.
func (g *MazeRun) Start(d Difficulty) error {
	if err := g.requirePhase(Idle, "start"); err != nil {
		return err
	}
	grid, err := maze.Generate(d.Size(), g.deps.Rand)
	if err != nil {
		return g.reject(err)
	}
	g.begin(0)
	g.difficulty = d
	g.grid = grid
	g.pos = grid.Start()
	g.started = g.deps.Clock.Now()
	g.elapsed = 0
	g.phase = Running
	g.say("Find the exit! Size: %dx%d", d.Size(), d.Size())
	return nil
}

// Move steps one cell in dir. Walls and edges block silently and report
// false; reaching the exit pays the reward.
func (g *MazeRun) Move(dir maze.Direction) (bool, error) {
	if err := g.requirePhase(Running, "move"); err != nil {
		return false, err
	}
	dx, dy := dir.Delta()
	next := maze.Point{X: g.pos.X + dx, Y: g.pos.Y + dy}
	if !g.grid.Open(next) {
		return false, nil
	}
	g.pos = next
	if next == g.grid.Exit() {
		g.finish()
	}
	return true, nil
}

func (g *MazeRun) finish() {
	g.elapsed = g.deps.Clock.Since(g.started)
	reward := MazeReward(g.difficulty, g.elapsed)
	secs := int(g.elapsed / time.Second)
	g.settle(reward, fmt.Sprintf("%s in %ds", g.difficulty, secs),
		fmt.Sprintf("Maze completed in %ds! Won %d chips!", secs, reward))
}

// Position returns the player's cell.
func (g *MazeRun) Position() maze.Point { return g.pos }

// Grid returns the current maze, nil before the first start.
func (g *MazeRun) Grid() *maze.Grid { return g.grid }

func (g *MazeRun) Reset() {
	g.abandon()
	g.grid = nil
	g.pos = maze.Point{}
}

func (g *MazeRun) Status() string {
	if g.grid == nil {
		return "Maze: choose easy, medium, hard or expert with 'start <difficulty>'"
	}
	var b strings.Builder
	b.WriteString(g.grid.Render(g.pos))
	if g.phase == Running {
		secs := int(g.deps.Clock.Since(g.started) / time.Second)
		fmt.Fprintf(&b, "\n%s  %ds elapsed  at %s", g.difficulty, secs, g.pos)
	} else {
		fmt.Fprintf(&b, "\n%s  finished in %ds", g.difficulty, int(g.elapsed/time.Second))
	}
	return b.String()
}
