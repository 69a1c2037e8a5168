// Package maze carves perfect mazes with a randomized depth-first backtracker.
package maze

import (
	"fmt"
	"strings"

	"github.com/lox/minicasino/internal/randutil"
)

// Point is a cell coordinate; X is the column and Y the row.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is one of the four axis moves.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

var directions = [...]Direction{Up, Right, Down, Left}

// Delta returns the unit offset of d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return "unknown"
}

// ParseDirection accepts up/down/left/right and their first letters.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u", "north", "n":
		return Up, nil
	case "right", "r", "east", "e":
		return Right, nil
	case "down", "d", "south", "s":
		return Down, nil
	case "left", "l", "west", "w":
		return Left, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Grid is a square wall/path grid with a start and an exit.
type Grid struct {
	size  int
	walls [][]bool
	start Point
	exit  Point
}

// Size returns the side length.
func (g *Grid) Size() int { return g.size }

// Start returns the entry cell, always (0,0).
func (g *Grid) Start() Point { return g.start }

// Exit returns the exit cell at the opposite corner.
func (g *Grid) Exit() Point { return g.exit }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.size && p.Y >= 0 && p.Y < g.size
}

// Wall reports whether p is a wall. Out-of-bounds cells count as walls.
func (g *Grid) Wall(p Point) bool {
	if !g.InBounds(p) {
		return true
	}
	return g.walls[p.Y][p.X]
}

// Open reports whether p can be stood on.
func (g *Grid) Open(p Point) bool {
	return !g.Wall(p)
}

// Generate carves a size×size maze starting at (0,0).
//
// Nodes sit on even coordinates and the odd cell between two nodes is the
// passage. On even sizes the exit corner falls on odd coordinates, outside
// the node lattice, so the cell joining it to node (n-2,n-2) is opened too.
func Generate(size int, src randutil.Source) (*Grid, error) {
	if size < 2 {
		return nil, fmt.Errorf("maze size %d too small", size)
	}

	g := &Grid{
		size:  size,
		walls: make([][]bool, size),
		start: Point{0, 0},
		exit:  Point{size - 1, size - 1},
	}
	for y := range g.walls {
		row := make([]bool, size)
		for x := range row {
			row[x] = true
		}
		g.walls[y] = row
	}

	g.clear(g.start)
	stack := []Point{g.start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]

		var neighbors []Point
		for _, d := range directions {
			dx, dy := d.Delta()
			next := Point{current.X + 2*dx, current.Y + 2*dy}
			if g.InBounds(next) && g.walls[next.Y][next.X] {
				neighbors = append(neighbors, next)
			}
		}

		if len(neighbors) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := neighbors[randutil.Intn(src, len(neighbors))]
		g.clear(Point{(current.X + next.X) / 2, (current.Y + next.Y) / 2})
		g.clear(next)
		stack = append(stack, next)
	}

	if size%2 == 0 {
		g.clear(Point{size - 1, size - 2})
	}
	g.clear(g.exit)
	return g, nil
}

func (g *Grid) clear(p Point) {
	g.walls[p.Y][p.X] = false
}

// Reachable reports whether to can be reached from from through open cells.
func (g *Grid) Reachable(from, to Point) bool {
	if g.Wall(from) || g.Wall(to) {
		return false
	}
	seen := map[Point]bool{from: true}
	queue := []Point{from}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p == to {
			return true
		}
		for _, d := range directions {
			dx, dy := d.Delta()
			n := Point{p.X + dx, p.Y + dy}
			if g.Open(n) && !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

// Render draws the grid with '#' walls, '.' paths, 'S' start, 'E' exit and
// '@' at the player position.
func (g *Grid) Render(player Point) string {
	var b strings.Builder
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			p := Point{x, y}
			switch {
			case p == player:
				b.WriteByte('@')
			case p == g.exit:
				b.WriteByte('E')
			case p == g.start:
				b.WriteByte('S')
			case g.walls[y][x]:
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		if y < g.size-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
