package main

import (
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"orkio/internal/app"
	"orkio/internal/client"
	"orkio/internal/config"
	"orkio/internal/logging"
	"orkio/internal/session"
	"orkio/internal/store"
)

type UICommand struct {
	stderr io.Writer
	newEnv envFactory
}

func NewUICommand(stderr io.Writer, newEnv envFactory) *UICommand {
	return &UICommand{stderr: stderr, newEnv: newEnv}
}

// Run starts the full-screen console. The log stream moves to a file
// because stderr is hidden behind the alternate screen.
func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logPath, err := config.LogPath()
	if err != nil {
		return err
	}
	logFile, err := logging.OpenFile(logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := logging.New(logFile, logging.ParseLevel(cfg.LogLevel()))

	dbPath, err := config.ConsoleDBPath()
	if err != nil {
		return err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	creds := session.NewResolver(db)
	if _, err := creds.Resolve(); err != nil {
		return fmt.Errorf("%w (try `orkio login` first)", err)
	}
	apiClient := client.New(cfg, creds, log)

	model := app.NewModel(cfg, apiClient, db, log)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
