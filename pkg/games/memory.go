package games

import (
	"fmt"
	"math/rand"
)

// MemorySymbols are the eight card faces; each appears twice.
var MemorySymbols = []string{"♠", "♥", "♦", "♣", "★", "☀", "☂", "♪"}

type Card struct {
	Symbol  string
	Flipped bool
	Matched bool
}

// Memory is the pair matching game. Flipping a second card locks the board
// until Settle resolves the pair.
type Memory struct {
	Cards   []Card
	Moves   int
	Matches int

	pending []int
	rnd     *rand.Rand
}

// NewMemory deals a shuffled board. The same seed deals the same board.
func NewMemory(seed int64) *Memory {
	m := &Memory{rnd: rand.New(rand.NewSource(seed))}
	m.Reset()
	return m
}

func (m *Memory) Reset() {
	m.Cards = m.Cards[:0]
	for _, s := range MemorySymbols {
		m.Cards = append(m.Cards, Card{Symbol: s}, Card{Symbol: s})
	}
	m.rnd.Shuffle(len(m.Cards), func(i, j int) { m.Cards[i], m.Cards[j] = m.Cards[j], m.Cards[i] })
	m.Moves = 0
	m.Matches = 0
	m.pending = nil
}

// Pairs is the number of matches that wins the game.
func (m *Memory) Pairs() int { return len(MemorySymbols) }

func (m *Memory) Won() bool { return m.Matches == m.Pairs() }

// Locked reports whether two cards are face up awaiting Settle.
func (m *Memory) Locked() bool { return len(m.pending) == 2 }

// Flip turns card i face up. The second flip of a move counts the move and
// reports true; the caller settles it after a short delay.
func (m *Memory) Flip(i int) (bool, error) {
	if m.Locked() || i < 0 || i >= len(m.Cards) {
		return false, ErrIllegalMove
	}
	c := &m.Cards[i]
	if c.Flipped || c.Matched {
		return false, ErrIllegalMove
	}
	c.Flipped = true
	m.pending = append(m.pending, i)
	if len(m.pending) < 2 {
		return false, nil
	}
	m.Moves++
	return true, nil
}

// Settle resolves a pending pair: matched cards stay up, others turn back
// down. The returned message is non-empty when the last pair is found.
func (m *Memory) Settle() string {
	if !m.Locked() {
		return ""
	}
	a, b := &m.Cards[m.pending[0]], &m.Cards[m.pending[1]]
	m.pending = nil
	if a.Symbol != b.Symbol {
		a.Flipped, b.Flipped = false, false
		return ""
	}
	a.Matched, b.Matched = true, true
	m.Matches++
	if m.Won() {
		return fmt.Sprintf("Congratulations! You won in %d moves!", m.Moves)
	}
	return ""
}
