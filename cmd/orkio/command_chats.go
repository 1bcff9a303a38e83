package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

type ChatsCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewChatsCommand(stdout, stderr io.Writer, newEnv envFactory) *ChatsCommand {
	return &ChatsCommand{stdout: stdout, stderr: stderr, newEnv: newEnv}
}

func (c *ChatsCommand) Run(args []string) error {
	fs := flag.NewFlagSet("chats", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	rename := fs.Int64("rename", 0, "conversation id to rename (with --title)")
	title := fs.String("title", "", "new title for --rename")
	remove := fs.Int64("delete", 0, "conversation id to delete")
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
	case *rename > 0:
		if strings.TrimSpace(*title) == "" {
			return errors.New("--title is required with --rename")
		}
		if err := env.client.RenameConversation(ctx, *rename, *title); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "conversation %d renamed\n", *rename)
		return nil
	case *remove > 0:
		if err := env.client.DeleteConversation(ctx, *remove); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "conversation %d deleted\n", *remove)
		return nil
	}

	conversations, err := env.client.Conversations(ctx)
	if err != nil {
		return err
	}
	printConversations(c.stdout, conversations)
	return nil
}
