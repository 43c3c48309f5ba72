package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in: run `studyctl login` first")

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login USERNAME PASSWORD",
		Short: "Log in and persist the session identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.ws.Sessions.Login(cmd.Context(), args[0], args[1]) {
				return errors.New("invalid username or password")
			}
			identity := c.ws.Sessions.Current().Identity
			fmt.Fprintf(c.out, "Logged in as %s (%s)\n", identity.Name, identity.LoginName)
			return nil
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clean up uploads and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.ws.Sessions.Logout(cmd.Context())
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and gateway circuit states",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			session := c.ws.Sessions.Current()
			if session.Authenticated && session.Identity != nil {
				fmt.Fprintf(c.out, "session:  %s (%s)\n", session.Identity.Name, session.Identity.LoginName)
			} else {
				fmt.Fprintln(c.out, "session:  logged out")
			}
			fmt.Fprintf(c.out, "gateway:  %s\n", c.cfg.GatewayURL)

			ops := []string{"upload", "cleanup", "chat", "questions", "flashcards", "summarize", "keywords"}
			sort.Strings(ops)
			for _, op := range ops {
				fmt.Fprintf(c.out, "circuit:  %-10s %s\n", op, c.ws.Gateway.BreakerState(op))
			}
			return nil
		},
	}
}

func (c *cli) requireLogin() error {
	if !c.ws.Sessions.Current().Authenticated {
		return errNotLoggedIn
	}
	return nil
}
