// Command sweep plays one game in the terminal. Commands are read one per
// line: "o row col" reveals, "f row col" toggles a flag, "n" starts over and
// "q" quits.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/vancomm/pumpkin-sweeper/internal/config"
	"github.com/vancomm/pumpkin-sweeper/internal/mines"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	mines.Log = logger

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("failed to load .env", slog.Any("error", err))
		os.Exit(1)
	}
	game, err := config.NewGame()
	if err != nil {
		logger.Error("failed to read game config", slog.Any("error", err))
		os.Exit(1)
	}
	s, err := game.NewSession()
	if err != nil {
		logger.Error("failed to start game", slog.Any("error", err))
		os.Exit(1)
	}
	defer s.Close()

	play(s, os.Stdin, os.Stdout)
}

func play(s *mines.Session, in io.Reader, out io.Writer) {
	render(s, out)
	scanner := bufio.NewScanner(in)
	for fmt.Fprint(out, "> "); scanner.Scan(); fmt.Fprint(out, "> ") {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "q":
			return
		case "n":
			s.Restart()
		case "o", "f":
			if len(parts) != 3 {
				fmt.Fprintln(out, "usage: o|f row col")
				continue
			}
			row, err1 := strconv.Atoi(parts[1])
			col, err2 := strconv.Atoi(parts[2])
			if err1 != nil || err2 != nil {
				fmt.Fprintln(out, "row and col must be ints")
				continue
			}
			var outcome mines.Outcome
			if parts[0] == "o" {
				outcome = s.Reveal(row, col)
			} else {
				outcome = s.ToggleFlag(row, col)
			}
			if outcome == mines.Ignored {
				fmt.Fprintln(out, "ignored")
				continue
			}
		default:
			fmt.Fprintln(out, "unknown command")
			continue
		}
		render(s, out)
	}
}

func render(s *mines.Session, out io.Writer) {
	v := s.View()
	fmt.Fprint(out, v.String())
	fmt.Fprintf(out, "phase: %s  flags: %d  score: %d  time: %ds\n",
		v.Phase, v.FlagsRemaining, v.Score, v.ElapsedSeconds)
}
