package games

import "errors"

// Mark is a tic-tac-toe cell value.
type Mark byte

const (
	Empty Mark = 0
	X     Mark = 'X'
	O     Mark = 'O'
)

func (m Mark) String() string {
	if m == Empty {
		return " "
	}
	return string(m)
}

var ErrIllegalMove = errors.New("illegal move")

var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// TicTacToe is a two player game on a 3x3 board. The win tally survives Reset.
type TicTacToe struct {
	Board  [9]Mark
	Turn   Mark
	Over   bool
	Winner Mark

	XWins, OWins, Draws int
}

func NewTicTacToe() *TicTacToe {
	return &TicTacToe{Turn: X}
}

// Reset clears the board and gives X the first move.
func (g *TicTacToe) Reset() {
	g.Board = [9]Mark{}
	g.Turn = X
	g.Over = false
	g.Winner = Empty
}

// Play puts the current player's mark on cell 0-8. It returns a message when
// the move ends the game.
func (g *TicTacToe) Play(cell int) (string, error) {
	if g.Over || cell < 0 || cell >= len(g.Board) || g.Board[cell] != Empty {
		return "", ErrIllegalMove
	}
	g.Board[cell] = g.Turn

	if g.won(g.Turn) {
		g.Over = true
		g.Winner = g.Turn
		if g.Turn == X {
			g.XWins++
		} else {
			g.OWins++
		}
		return "Player " + g.Turn.String() + " wins!", nil
	}
	if g.full() {
		g.Over = true
		g.Draws++
		return "It's a draw!", nil
	}
	if g.Turn == X {
		g.Turn = O
	} else {
		g.Turn = X
	}
	return "", nil
}

// Status is the line shown above the board.
func (g *TicTacToe) Status() string {
	if g.Over {
		return "Game Over"
	}
	return "Player " + g.Turn.String() + "'s turn"
}

func (g *TicTacToe) won(m Mark) bool {
	for _, line := range winLines {
		if g.Board[line[0]] == m && g.Board[line[1]] == m && g.Board[line[2]] == m {
			return true
		}
	}
	return false
}

func (g *TicTacToe) full() bool {
	for _, c := range g.Board {
		if c == Empty {
			return false
		}
	}
	return true
}
