package main

import (
	"io"
	"os"

	"orkio/internal/client"
	"orkio/internal/config"
	"orkio/internal/logging"
	"orkio/internal/session"
	"orkio/internal/store"
)

type commandRunner interface {
	Run(args []string) error
}

type envFactory func() (*consoleEnv, error)

type commandWiring struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout: stdout,
		stderr: stderr,
		newEnv: func() (*consoleEnv, error) {
			return newConsoleEnv(stderr)
		},
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"login":  NewLoginCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"logout": NewLogoutCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"agents": NewAgentsCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"chats":  NewChatsCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"ask":    NewAskCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"search": NewSearchCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"hive":   NewHiveCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"ui":     NewUICommand(wiring.stderr, wiring.newEnv),
		"config": NewConfigCommand(wiring.stdout, wiring.stderr),
	}
}

// consoleEnv bundles the shared pieces every command needs: effective
// configuration, the local credential store, and the API client.
type consoleEnv struct {
	cfg    config.Config
	store  *store.Store
	creds  *session.Resolver
	client *client.Client
	log    logging.Logger
}

func newConsoleEnv(logOut io.Writer) (*consoleEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dbPath, err := config.ConsoleDBPath()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	log := logging.New(logOut, logging.ParseLevel(cfg.LogLevel()))
	creds := session.NewResolver(db)
	return &consoleEnv{
		cfg:    cfg,
		store:  db,
		creds:  creds,
		client: client.New(cfg, creds, log),
		log:    log,
	}, nil
}

func (e *consoleEnv) Close() {
	if e != nil && e.store != nil {
		_ = e.store.Close()
	}
}
