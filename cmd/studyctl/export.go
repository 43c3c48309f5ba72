package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/export"
)

var exportKinds = map[string]string{
	"questions":  "questions.xlsx",
	"flashcards": "flashcards.xlsx",
	"summary":    "summary.html",
}

func (c *cli) exportCmd() *cobra.Command {
	var out string
	cmd := c.toolCmd("export questions|flashcards|summary", "Write an artifact to an xlsx or html file",
		cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		func(ctx context.Context, args []string) error {
			return c.export(ctx, args[0], out)
		})
	cmd.ValidArgs = []string{"questions", "flashcards", "summary"}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <kind>.xlsx or summary.html)")
	return cmd
}

// export writes the cached artifact, generating it first when absent.
func (c *cli) export(ctx context.Context, kind, path string) error {
	defaultPath, ok := exportKinds[kind]
	if !ok {
		return fmt.Errorf("unknown export %q", kind)
	}
	if path == "" {
		path = defaultPath
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := c.writeExport(ctx, kind, file); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(c.out, "Wrote %s\n", path)
	return nil
}

func (c *cli) writeExport(ctx context.Context, kind string, file *os.File) error {
	switch kind {
	case "questions":
		questions, ok := c.ws.Cache.Questions()
		if !ok {
			var err error
			if questions, err = c.ws.Tools.GenerateQuestions(ctx); err != nil {
				return err
			}
		}
		return export.WriteQuestions(file, questions)
	case "flashcards":
		cards, ok := c.ws.Cache.Flashcards()
		if !ok {
			var err error
			if cards, err = c.ws.Tools.GenerateFlashcards(ctx); err != nil {
				return err
			}
		}
		return export.WriteFlashcards(file, cards)
	default:
		summary, ok := c.ws.Cache.Summary()
		if !ok {
			var err error
			if summary, err = c.ws.Tools.GenerateSummary(ctx); err != nil {
				return err
			}
		}
		name := ""
		if doc, ok := c.ws.Docs.Current(); ok {
			name = doc.Identifier
		}
		return export.WriteSummaryHTML(file, name, summary)
	}
}
