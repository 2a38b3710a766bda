package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/kinema/internal/engine"
	"github.com/olivier-w/kinema/internal/ui"
)

func main() {
	scene := ui.SceneSprings
	if len(os.Args) > 1 {
		s, ok := ui.SceneByName(os.Args[1])
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown scene %q (want springs, stagger, timeline or transition)\n", os.Args[1])
			os.Exit(1)
		}
		scene = s
	}

	logger, closeLog, err := buildLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	eng := engine.New(engine.Config{
		Driver: ui.NewFadeDriver(),
		Logger: logger,
	})
	defer eng.Destroy()

	p := tea.NewProgram(ui.New(eng, scene), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildLogger writes engine debug logs to the file named by KINEMA_LOG.
// Unset means silent; the TUI owns the terminal.
func buildLogger() (*slog.Logger, func(), error) {
	path := os.Getenv("KINEMA_LOG")
	if path == "" {
		return nil, nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}
