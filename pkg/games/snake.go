package games

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"tableflip.dev/zdash/pkg/store"
)

const (
	SnakeGrid     = 20
	SnakeTick     = 100 * time.Millisecond
	snakeFoodGain = 10
)

type Point struct{ X, Y int }

type Direction int

const (
	Still Direction = iota
	Up
	Down
	Left
	Right
)

func (d Direction) delta() Point {
	switch d {
	case Up:
		return Point{0, -1}
	case Down:
		return Point{0, 1}
	case Left:
		return Point{-1, 0}
	case Right:
		return Point{1, 0}
	}
	return Point{}
}

func (d Direction) opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return Still
}

// Scores persists the best score. store.Persistence satisfies it.
type Scores interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Snake is the arcade game. The snake sits still until the first turn.
type Snake struct {
	Body    []Point
	Food    Point
	Dir     Direction
	Score   int
	Running bool

	scores Scores
	rnd    *rand.Rand
}

func NewSnake(scores Scores, seed int64) *Snake {
	s := &Snake{scores: scores, rnd: rand.New(rand.NewSource(seed))}
	s.Reset()
	return s
}

// Reset starts a new round.
func (s *Snake) Reset() {
	s.Body = []Point{{10, 10}}
	s.Food = Point{15, 15}
	s.Dir = Still
	s.Score = 0
	s.Running = true
}

// Turn changes direction unless it reverses onto the body.
func (s *Snake) Turn(d Direction) {
	if !s.Running || d == Still {
		return
	}
	if s.Dir != Still && d == s.Dir.opposite() {
		return
	}
	s.Dir = d
}

// HighScore reads the stored best, 0 when unset.
func (s *Snake) HighScore() int {
	if s.scores == nil {
		return 0
	}
	raw, ok := s.scores.Get(store.KeySnakeHighScore)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Step advances one tick. When the round ends it returns the messages to show
// and records a new high score.
func (s *Snake) Step() ([]string, error) {
	if !s.Running {
		return nil, nil
	}
	d := s.Dir.delta()
	head := Point{s.Body[0].X + d.X, s.Body[0].Y + d.Y}
	s.Body = append([]Point{head}, s.Body...)

	if head == s.Food {
		s.Score += snakeFoodGain
		s.Food = Point{s.rnd.Intn(SnakeGrid), s.rnd.Intn(SnakeGrid)}
	} else {
		s.Body = s.Body[:len(s.Body)-1]
	}

	if !s.collided(head) {
		return nil, nil
	}
	s.Running = false
	msgs := []string{fmt.Sprintf("Game Over! Final Score: %d", s.Score)}
	if s.Score > s.HighScore() && s.scores != nil {
		if err := s.scores.Set(store.KeySnakeHighScore, strconv.Itoa(s.Score)); err != nil {
			return msgs, err
		}
		msgs = append(msgs, "New High Score!")
	}
	return msgs, nil
}

func (s *Snake) collided(head Point) bool {
	if head.X < 0 || head.X >= SnakeGrid || head.Y < 0 || head.Y >= SnakeGrid {
		return true
	}
	for _, p := range s.Body[1:] {
		if p == head {
			return true
		}
	}
	return false
}

// Occupied reports whether p is part of the snake.
func (s *Snake) Occupied(p Point) bool {
	for _, b := range s.Body {
		if b == p {
			return true
		}
	}
	return false
}
