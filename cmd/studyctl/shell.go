package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/doc-study-gateway/internal/core/usecase"
)

const shellHelp = `Type a message to chat with the active document, or a command:
  /upload PATH       upload a document and make it active
  /questions         show study questions
  /flashcards        show flashcards
  /summary           show the document summary
  /keywords          show extracted keywords
                     (add "regenerate" to any of these to ask again)
  /export KIND [OUT] write questions, flashcards or summary to a file
  /transcript        print the chat so far
  /logout            clean up and log out
  /quit              leave the shell`

func (c *cli) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive study session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			return c.runShell(cmd.Context())
		},
	}
}

func (c *cli) runShell(ctx context.Context) error {
	fmt.Fprintln(c.out, usecase.GreetingMessage)
	fmt.Fprintln(c.out, shellHelp)

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		quit, err := c.shellLine(ctx, line)
		if err != nil {
			fmt.Fprintln(c.out, "error:", err)
		}
		if quit {
			return nil
		}
	}
}

func (c *cli) shellLine(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		return false, c.chat(ctx, line)
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(c.out, shellHelp)
		return false, nil
	case "/upload":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /upload PATH")
		}
		return false, c.upload(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/upload")))
	case "/questions":
		return false, c.questions(ctx, regenerate(fields))
	case "/flashcards":
		return false, c.flashcards(ctx, regenerate(fields))
	case "/summary":
		return false, c.summarize(ctx, regenerate(fields))
	case "/keywords":
		return false, c.keywords(ctx, regenerate(fields))
	case "/export":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /export questions|flashcards|summary [OUT]")
		}
		out := ""
		if len(fields) > 2 {
			out = fields[2]
		}
		return false, c.export(ctx, fields[1], out)
	case "/transcript":
		for _, msg := range c.ws.Chat.Transcript() {
			fmt.Fprintf(c.out, "%s: ", msg.Role)
			printChatMessage(c.out, msg)
		}
		return false, nil
	case "/logout":
		c.ws.Sessions.Logout(ctx)
		fmt.Fprintln(c.out, "Logged out")
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
}

func regenerate(fields []string) bool {
	return len(fields) > 1 && fields[1] == "regenerate"
}
