package games

import (
	"errors"
	"strconv"
	"testing"

	"tableflip.dev/zdash/pkg/store"
)

func TestTicTacToe(t *testing.T) {
	tests := map[string]struct {
		moves  []int
		want   string
		winner Mark
		x, o   int
		draws  int
	}{
		"x wins row": {
			moves:  []int{0, 3, 1, 4, 2},
			want:   "Player X wins!",
			winner: X,
			x:      1,
		},
		"o wins diagonal": {
			moves:  []int{0, 2, 1, 4, 8, 6},
			want:   "Player O wins!",
			winner: O,
			o:      1,
		},
		"draw": {
			moves: []int{0, 1, 2, 4, 3, 5, 7, 6, 8},
			want:  "It's a draw!",
			draws: 1,
		},
	}
	for n, tc := range tests {
		t.Run(n, func(t *testing.T) {
			g := NewTicTacToe()
			var got string
			for _, m := range tc.moves {
				msg, err := g.Play(m)
				if err != nil {
					t.Fatalf("Play(%d): %v", m, err)
				}
				got = msg
			}
			if got != tc.want {
				t.Errorf("message = %q, want %q", got, tc.want)
			}
			if !g.Over || g.Winner != tc.winner {
				t.Errorf("over=%v winner=%v", g.Over, g.Winner)
			}
			if g.XWins != tc.x || g.OWins != tc.o || g.Draws != tc.draws {
				t.Errorf("tally = %d/%d/%d", g.XWins, g.OWins, g.Draws)
			}
			if g.Status() != "Game Over" {
				t.Errorf("status = %q", g.Status())
			}
		})
	}
}

func TestTicTacToeIllegal(t *testing.T) {
	g := NewTicTacToe()
	if _, err := g.Play(4); err != nil {
		t.Fatal(err)
	}
	for _, cell := range []int{4, -1, 9} {
		if _, err := g.Play(cell); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("Play(%d) = %v, want ErrIllegalMove", cell, err)
		}
	}
	if g.Status() != "Player O's turn" {
		t.Errorf("status = %q", g.Status())
	}
}

func TestTicTacToeResetKeepsTally(t *testing.T) {
	g := NewTicTacToe()
	for _, m := range []int{0, 3, 1, 4, 2} {
		g.Play(m)
	}
	g.Reset()
	if g.Over || g.Turn != X || g.Board != [9]Mark{} {
		t.Errorf("reset left state: %+v", g)
	}
	if g.XWins != 1 {
		t.Errorf("XWins = %d, want 1", g.XWins)
	}
}

func TestMemoryDeal(t *testing.T) {
	a, b := NewMemory(7), NewMemory(7)
	if len(a.Cards) != 16 {
		t.Fatalf("cards = %d", len(a.Cards))
	}
	counts := map[string]int{}
	for i, c := range a.Cards {
		counts[c.Symbol]++
		if b.Cards[i].Symbol != c.Symbol {
			t.Errorf("seeded deal differs at %d", i)
		}
	}
	for _, s := range MemorySymbols {
		if counts[s] != 2 {
			t.Errorf("symbol %s appears %d times", s, counts[s])
		}
	}
}

func TestMemoryPlay(t *testing.T) {
	m := NewMemory(1)
	pos := map[string][]int{}
	for i, c := range m.Cards {
		pos[c.Symbol] = append(pos[c.Symbol], i)
	}

	// A miss turns both cards back down.
	first, second := pos[MemorySymbols[0]][0], pos[MemorySymbols[1]][0]
	if done, err := m.Flip(first); err != nil || done {
		t.Fatalf("first flip = %v, %v", done, err)
	}
	if _, err := m.Flip(first); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("reflip = %v", err)
	}
	if done, err := m.Flip(second); err != nil || !done {
		t.Fatalf("second flip = %v, %v", done, err)
	}
	if _, err := m.Flip(pos[MemorySymbols[2]][0]); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("flip while locked = %v", err)
	}
	m.Settle()
	if m.Cards[first].Flipped || m.Cards[second].Flipped {
		t.Error("miss stayed face up")
	}

	var msg string
	for _, s := range MemorySymbols {
		m.Flip(pos[s][0])
		m.Flip(pos[s][1])
		msg = m.Settle()
	}
	if !m.Won() || m.Matches != 8 {
		t.Fatalf("matches = %d", m.Matches)
	}
	if want := "Congratulations! You won in 9 moves!"; msg != want {
		t.Errorf("msg = %q, want %q", msg, want)
	}
}

type memScores map[string]string

func (m memScores) Get(k string) (string, bool) { v, ok := m[k]; return v, ok }
func (m memScores) Set(k, v string) error      { m[k] = v; return nil }

func TestSnakeWallGameOver(t *testing.T) {
	scores := memScores{}
	s := NewSnake(scores, 1)
	s.Body = []Point{{0, 0}}
	s.Food = Point{5, 5}
	s.Turn(Left)
	msgs, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	if s.Running {
		t.Fatal("still running after hitting the wall")
	}
	if len(msgs) != 1 || msgs[0] != "Game Over! Final Score: 0" {
		t.Errorf("msgs = %q", msgs)
	}
	if _, ok := scores[store.KeySnakeHighScore]; ok {
		t.Error("zero score recorded as high score")
	}
}

func TestSnakeEatAndHighScore(t *testing.T) {
	scores := memScores{store.KeySnakeHighScore: "5"}
	s := NewSnake(scores, 1)
	s.Body = []Point{{SnakeGrid - 2, 0}}
	s.Food = Point{SnakeGrid - 1, 0}
	s.Turn(Right)

	if msgs, _ := s.Step(); msgs != nil {
		t.Fatalf("eating ended the game: %q", msgs)
	}
	if s.Score != 10 || len(s.Body) != 2 {
		t.Fatalf("score=%d len=%d", s.Score, len(s.Body))
	}
	s.Food = Point{0, SnakeGrid - 1}
	msgs, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Game Over! Final Score: 10", "New High Score!"}
	if len(msgs) != 2 || msgs[0] != want[0] || msgs[1] != want[1] {
		t.Errorf("msgs = %q, want %q", msgs, want)
	}
	if scores[store.KeySnakeHighScore] != strconv.Itoa(10) || s.HighScore() != 10 {
		t.Errorf("high score = %q", scores[store.KeySnakeHighScore])
	}
}

func TestSnakeNoReverse(t *testing.T) {
	s := NewSnake(nil, 1)
	s.Turn(Right)
	s.Turn(Left)
	if s.Dir != Right {
		t.Errorf("dir = %v, want Right", s.Dir)
	}
	s.Turn(Up)
	if s.Dir != Up {
		t.Errorf("dir = %v, want Up", s.Dir)
	}
}

func TestSnakeStillUntilTurn(t *testing.T) {
	s := NewSnake(nil, 1)
	for i := 0; i < 3; i++ {
		if msgs, _ := s.Step(); msgs != nil {
			t.Fatalf("still snake died: %q", msgs)
		}
	}
	if s.Body[0] != (Point{10, 10}) {
		t.Errorf("head moved to %v", s.Body[0])
	}
}
