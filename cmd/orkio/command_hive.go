package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"orkio/internal/client"
)

type HiveCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewHiveCommand(stdout, stderr io.Writer, newEnv envFactory) *HiveCommand {
	return &HiveCommand{stdout: stdout, stderr: stderr, newEnv: newEnv}
}

// Run exposes the operator views of agent-to-agent traffic: retrieval
// events, recorded dialogs, and direct sends between agents.
func (c *HiveCommand) Run(args []string) error {
	fs := flag.NewFlagSet("hive", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	events := fs.Bool("events", false, "list recorded retrieval events")
	dialogs := fs.Bool("dialogs", false, "list agent-to-agent dialogs")
	from := fs.Int64("from", 0, "sending agent id for --send")
	to := fs.Int64("to", 0, "receiving agent id for --send")
	send := fs.String("send", "", "message to deliver from one agent to another")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	switch {
	case strings.TrimSpace(*send) != "":
		if *from <= 0 || *to <= 0 {
			return errors.New("--from and --to are required with --send")
		}
		resp, err := env.client.SendAgentMessage(ctx, client.AgentSendRequest{
			FromAgentID: *from,
			ToAgentID:   *to,
			Message:     strings.TrimSpace(*send),
		})
		if err != nil {
			return err
		}
		if resp.Reply != "" {
			fmt.Fprintln(c.stdout, resp.Reply)
		} else {
			fmt.Fprintln(c.stdout, "delivered")
		}
		return nil

	case *dialogs:
		list, err := env.client.AgentDialogs(ctx)
		if err != nil {
			return err
		}
		for _, dialog := range list {
			from := dialog.FromAgentName
			if from == "" {
				from = fmt.Sprintf("agent %d", dialog.FromAgentID)
			}
			to := dialog.ToAgentName
			if to == "" {
				to = fmt.Sprintf("agent %d", dialog.ToAgentID)
			}
			fmt.Fprintf(c.stdout, "%s -> %s: %s\n", from, to, dialog.Message)
		}
		return nil

	case *events:
		list, err := env.client.RAGEvents(ctx)
		if err != nil {
			return err
		}
		for _, event := range list {
			fmt.Fprintf(c.stdout, "%s hits=%d %dms %q\n", event.Status, event.HitCount, event.LatencyMS, event.Query)
		}
		return nil
	}
	return errors.New("one of --events, --dialogs or --send is required")
}
