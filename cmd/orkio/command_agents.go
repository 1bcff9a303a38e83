package main

import (
	"context"
	"flag"
	"io"
)

type AgentsCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewAgentsCommand(stdout, stderr io.Writer, newEnv envFactory) *AgentsCommand {
	return &AgentsCommand{stdout: stdout, stderr: stderr, newEnv: newEnv}
}

func (c *AgentsCommand) Run(args []string) error {
	fs := flag.NewFlagSet("agents", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	agents, err := env.client.Agents(context.Background())
	if err != nil {
		return err
	}
	printAgents(c.stdout, agents)
	return nil
}
