package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"orkio/internal/types"
)

func printAgents(output io.Writer, agents []types.Agent) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tMODEL\tRAG")
	for _, agent := range agents {
		rag := "-"
		if agent.UseRAG {
			rag = "yes"
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", agent.ID, agent.Name, agent.Model, rag)
	}
	_ = writer.Flush()
}

func printConversations(output io.Writer, conversations []types.Conversation) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tAGENT\tTITLE\tCREATED")
	for _, conversation := range conversations {
		agent := conversation.AgentName
		if agent == "" {
			agent = fmt.Sprintf("%d", conversation.AgentID)
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", conversation.ID, agent, conversation.DisplayTitle(), conversation.CreatedAt)
	}
	_ = writer.Flush()
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
