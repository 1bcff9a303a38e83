package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"orkio/internal/client"
	"orkio/internal/types"
)

type AskCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewAskCommand(stdout, stderr io.Writer, newEnv envFactory) *AskCommand {
	return &AskCommand{stdout: stdout, stderr: stderr, newEnv: newEnv}
}

// Run sends one message and streams the answer to stdout. With no
// --chat a fresh conversation is created for the given agent first.
func (c *AskCommand) Run(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	chatID := fs.Int64("chat", 0, "conversation id (created when omitted)")
	agentID := fs.Int64("agent", 0, "agent id (required when creating a conversation)")
	useRAG := fs.Bool("rag", false, "force retrieval on for this turn")
	if err := fs.Parse(args); err != nil {
		return err
	}
	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		return errors.New("message is required")
	}

	env, err := c.newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	conversationID := *chatID
	resolvedAgent := *agentID
	if conversationID == 0 {
		if resolvedAgent == 0 {
			return errors.New("--agent is required when no --chat is given")
		}
		conversation, err := env.client.CreateConversation(ctx, resolvedAgent, "")
		if err != nil {
			return err
		}
		conversationID = conversation.ID
		fmt.Fprintf(c.stderr, "started conversation %d\n", conversationID)
	}

	req := client.StreamRequest{
		ConversationID: conversationID,
		AgentID:        resolvedAgent,
		Message:        message,
	}
	if *useRAG {
		on := true
		req.UseRAG = &on
	}

	events, cancel, err := env.client.StreamChat(ctx, req)
	if err != nil {
		return err
	}
	defer cancel()

	for event := range events {
		switch event.Kind {
		case types.StreamDelta:
			fmt.Fprint(c.stdout, event.Delta)
		case types.StreamDone:
			fmt.Fprintln(c.stdout)
			printCitations(c.stdout, event.Sources)
			return nil
		case types.StreamError:
			fmt.Fprintln(c.stdout)
			return event.Err
		}
	}
	return nil
}

func printCitations(output io.Writer, sources []types.RAGSource) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(output, "\nsources:")
	for _, source := range sources {
		title := source.DocumentTitle
		if title == "" {
			title = fmt.Sprintf("document %d", source.DocumentID)
		}
		fmt.Fprintf(output, "  - %s\n", title)
	}
}
