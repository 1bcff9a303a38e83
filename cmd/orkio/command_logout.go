package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"orkio/internal/logging"
)

type LogoutCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewLogoutCommand(stdout, stderr io.Writer, newEnv envFactory) *LogoutCommand {
	return &LogoutCommand{stdout: stdout, stderr: stderr, newEnv: newEnv}
}

func (c *LogoutCommand) Run(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	// Server-side invalidation is best effort; local slots are always
	// cleared.
	if err := env.client.Logout(context.Background()); err != nil {
		env.log.Warn("server logout", logging.F("err", err))
	}
	if err := env.creds.ClearAll(); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "signed out")
	return nil
}
