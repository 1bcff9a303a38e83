package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"orkio/internal/types"
)

type LoginCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewLoginCommand(stdout, stderr io.Writer, newEnv envFactory) *LoginCommand {
	return &LoginCommand{stdout: stdout, stderr: stderr, newEnv: newEnv}
}

func (c *LoginCommand) Run(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when omitted)")
	operator := fs.Bool("operator", false, "sign in to the operator console")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	secret := *password
	if secret == "" {
		entered, err := promptPassword(c.stderr)
		if err != nil {
			return err
		}
		secret = entered
	}
	if secret == "" {
		return errors.New("password is required")
	}

	env, err := c.newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	domain := types.DomainEndUser
	if *operator {
		domain = types.DomainOperator
	}
	cred, err := env.client.Login(context.Background(), domain, strings.TrimSpace(*email), secret)
	if err != nil {
		return err
	}
	if err := env.creds.Save(cred); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "signed in as %s (%s)\n", cred.Email, domain)
	return nil
}

func promptPassword(stderr io.Writer) (string, error) {
	fmt.Fprint(stderr, "password: ")
	defer fmt.Fprintln(stderr)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; pass --password")
	}
	raw, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
