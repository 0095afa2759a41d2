package sections

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"tableflip.dev/zdash/pkg/games"
	"tableflip.dev/zdash/pkg/nav"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/view"
)

// memorySettle is how long a mismatched pair stays face up.
const memorySettle = time.Second

// TicTacToe plays on g, so the win tally outlives the section.
func (d Deps) TicTacToe(g *games.TicTacToe) nav.Loader {
	return nav.LoaderFunc(func(_ context.Context, c nav.Container) (nav.Cleanup, error) {
		var mu sync.Mutex
		render := func() { c.Render(tictactoePanel(g)) }

		mu.Lock()
		g.Reset()
		render()
		mu.Unlock()

		release := d.Keys.Bind(func(key string) bool {
			mu.Lock()
			defer mu.Unlock()
			switch {
			case key == "n":
				g.Reset()
			case len(key) == 1 && key[0] >= '1' && key[0] <= '9':
				msg, err := g.Play(int(key[0] - '1'))
				if err != nil {
					return true
				}
				sev := notify.Success
				if g.Over && g.Winner == games.Empty {
					sev = notify.Info
				}
				d.notify(msg, sev)
			default:
				return false
			}
			render()
			return true
		})
		return release, nil
	})
}

func tictactoePanel(g *games.TicTacToe) view.Panel {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", g.Status())
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			i := row*3 + col
			if m := g.Board[i]; m != games.Empty {
				cells[col] = " " + m.String() + " "
			} else {
				cells[col] = "(" + strconv.Itoa(i+1) + ")"
			}
		}
		b.WriteString(strings.Join(cells, "|") + "\n")
		if row < 2 {
			b.WriteString("---+---+---\n")
		}
	}
	return view.Panel{
		Title:   "Tic Tac Toe",
		Message: "Classic strategy game for two players. Press 1-9 to place a mark.",
		Body:    b.String(),
		Fields: []view.Field{
			{Label: "Player X Wins", Value: strconv.Itoa(g.XWins)},
			{Label: "Player O Wins", Value: strconv.Itoa(g.OWins)},
			{Label: "Draws", Value: strconv.Itoa(g.Draws)},
		},
		Actions: []view.Action{{ID: "tictactoe-reset", Label: "Reset Game", Key: "n"}},
	}
}

// Memory deals a new board per visit. Arrow keys move the cursor, space or
// enter flips.
func (d Deps) Memory() nav.Loader {
	return nav.LoaderFunc(func(_ context.Context, c nav.Container) (nav.Cleanup, error) {
		var (
			mu      sync.Mutex
			cursor  int
			pending notify.Timer
			stopped bool
		)
		m := games.NewMemory(d.Seed())
		render := func() { c.Render(memoryPanel(m, cursor)) }

		mu.Lock()
		render()
		mu.Unlock()

		settle := func() {
			mu.Lock()
			defer mu.Unlock()
			pending = nil
			if stopped {
				return
			}
			d.notify(m.Settle(), notify.Success)
			render()
		}

		release := d.Keys.Bind(func(key string) bool {
			mu.Lock()
			defer mu.Unlock()
			switch key {
			case "left":
				cursor = (cursor + len(m.Cards) - 1) % len(m.Cards)
			case "right":
				cursor = (cursor + 1) % len(m.Cards)
			case "up":
				cursor = (cursor + len(m.Cards) - 4) % len(m.Cards)
			case "down":
				cursor = (cursor + 4) % len(m.Cards)
			case "space", " ", "enter":
				done, err := m.Flip(cursor)
				if err == nil && done {
					pending = d.AfterFunc(memorySettle, settle)
				}
			case "n":
				if pending != nil {
					pending.Stop()
					pending = nil
				}
				m.Reset()
				cursor = 0
			default:
				return false
			}
			render()
			return true
		})

		return func() {
			release()
			mu.Lock()
			defer mu.Unlock()
			stopped = true
			if pending != nil {
				pending.Stop()
			}
		}, nil
	})
}

func memoryPanel(m *games.Memory, cursor int) view.Panel {
	var b strings.Builder
	for i, card := range m.Cards {
		face := "?"
		if card.Flipped || card.Matched {
			face = card.Symbol
		}
		if i == cursor {
			fmt.Fprintf(&b, "[%s]", face)
		} else {
			fmt.Fprintf(&b, " %s ", face)
		}
		if i%4 == 3 {
			b.WriteString("\n")
		}
	}
	return view.Panel{
		Title:   "Memory Game",
		Message: "Test your memory by matching pairs of cards. Arrows move, space flips.",
		Body:    b.String(),
		Fields: []view.Field{
			{Label: "Moves", Value: strconv.Itoa(m.Moves)},
			{Label: "Matches", Value: fmt.Sprintf("%d/%d", m.Matches, m.Pairs())},
		},
		Actions: []view.Action{{ID: "memory-new", Label: "New Game", Key: "n"}},
	}
}

// Snake runs a round per "s" press. The tick loop stops with the round or
// when the section is left.
func (d Deps) Snake() nav.Loader {
	return nav.LoaderFunc(func(ctx context.Context, c nav.Container) (nav.Cleanup, error) {
		var (
			mu     sync.Mutex
			s      = games.NewSnake(d.Scores, d.Seed())
			cancel context.CancelFunc
			wg     sync.WaitGroup
		)
		s.Running = false
		render := func() { c.Render(snakePanel(s)) }

		mu.Lock()
		render()
		mu.Unlock()

		loop := func(ctx context.Context) {
			defer wg.Done()
			ticker := d.NewTicker(games.SnakeTick)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C():
				}
				mu.Lock()
				msgs, err := s.Step()
				render()
				running := s.Running
				mu.Unlock()
				if err != nil {
					d.notify("Could not save high score: "+err.Error(), notify.Warning)
				}
				for i, msg := range msgs {
					sev := notify.Info
					if i > 0 {
						sev = notify.Success
					}
					d.notify(msg, sev)
				}
				if !running {
					return
				}
			}
		}

		stop := func() {
			if cancel != nil {
				cancel()
				cancel = nil
			}
		}

		// Rounds outlive the loader call, so they hang off a fresh context.
		base, cancelAll := context.WithCancel(context.WithoutCancel(ctx))

		release := d.Keys.Bind(func(key string) bool {
			mu.Lock()
			defer mu.Unlock()
			switch key {
			case "s":
				stop()
				s.Reset()
				var roundCtx context.Context
				roundCtx, cancel = context.WithCancel(base)
				wg.Add(1)
				go loop(roundCtx)
			case "up":
				s.Turn(games.Up)
			case "down":
				s.Turn(games.Down)
			case "left":
				s.Turn(games.Left)
			case "right":
				s.Turn(games.Right)
			default:
				return false
			}
			render()
			return true
		})

		return func() {
			release()
			mu.Lock()
			stop()
			mu.Unlock()
			cancelAll()
			wg.Wait()
		}, nil
	})
}

func snakePanel(s *games.Snake) view.Panel {
	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", games.SnakeGrid) + "+\n")
	for y := 0; y < games.SnakeGrid; y++ {
		b.WriteString("|")
		for x := 0; x < games.SnakeGrid; x++ {
			p := games.Point{X: x, Y: y}
			switch {
			case len(s.Body) > 0 && s.Body[0] == p:
				b.WriteString("@")
			case s.Occupied(p):
				b.WriteString("o")
			case s.Food == p:
				b.WriteString("*")
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString("+" + strings.Repeat("-", games.SnakeGrid) + "+")

	label := "Start Game"
	if s.Running || s.Score > 0 {
		label = "Reset Game"
	}
	return view.Panel{
		Title:   "Snake Game",
		Message: "Classic arcade-style game. Use arrow keys to control the snake.",
		Body:    b.String(),
		Fields: []view.Field{
			{Label: "Score", Value: strconv.Itoa(s.Score)},
			{Label: "High Score", Value: strconv.Itoa(s.HighScore())},
		},
		Actions: []view.Action{{ID: "snake-start", Label: label, Key: "s"}},
	}
}
