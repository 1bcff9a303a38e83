package main

import (
	"fmt"
	"os"
)

const usageText = `orkio is a terminal console for multi-tenant AI agents.

Usage:
  orkio <command> [flags]

Commands:
  login    sign in and store a credential
  logout   sign out and clear stored credentials
  agents   list available agents
  chats    list, rename or delete conversations
  ask      send one message and stream the answer
  search   query the knowledge base
  hive     inspect agent-to-agent traffic (operator)
  ui       run the full-screen console
  config   print the effective configuration
  help     show help

Flags:
  -h, --help   show help

Examples:
  orkio login --email you@example.com
  orkio ask --agent 6 "Qual o saldo de caixa?"
  orkio search --top 5 "orçamento"
  orkio chats --rename 42 --title "Planning"
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
