package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/core/usecase"
)

func (c *cli) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a document and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			return c.upload(cmd.Context(), args[0])
		},
	}
}

func (c *cli) upload(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	doc, err := c.ws.Tools.Upload(ctx, filepath.Base(path), file)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Uploaded %s (%s)\n", doc.Identifier, doc.StorageLocator)
	return nil
}

// toolCmd builds a one-shot command that selects --document and runs fn.
func (c *cli) toolCmd(use, short string, args cobra.PositionalArgs, fn func(ctx context.Context, args []string) error) *cobra.Command {
	var document string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			if err := c.useDocument(document); err != nil {
				return err
			}
			return fn(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVarP(&document, "document", "d", "", "filename of a previously uploaded document")
	return cmd
}

func (c *cli) useDocument(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return c.ws.Docs.Select(domain.ActiveDocument{Identifier: name})
}

func (c *cli) chatCmd() *cobra.Command {
	return c.toolCmd("chat MESSAGE...", "Ask a question about the active document", cobra.MinimumNArgs(1),
		func(ctx context.Context, args []string) error {
			return c.chat(ctx, strings.Join(args, " "))
		})
}

func (c *cli) chat(ctx context.Context, text string) error {
	reply, err := c.ws.Chat.OnUserMessage(ctx, text)
	if reply.Content != "" {
		printChatMessage(c.out, reply)
	}
	return err
}

func printChatMessage(w io.Writer, msg domain.ChatMessage) {
	fmt.Fprintln(w, msg.Content)
	for _, source := range msg.Sources {
		fmt.Fprintf(w, "  [p. %d] %s\n", source.Page, source.Text)
	}
}

func (c *cli) questionsCmd() *cobra.Command {
	return c.toolCmd("questions", "Generate study questions", cobra.NoArgs,
		func(ctx context.Context, _ []string) error { return c.questions(ctx, true) })
}

// questions and its siblings print the stored artifact when there is one
// and regenerate is false.
func (c *cli) questions(ctx context.Context, regenerate bool) error {
	questions, ok := c.ws.Cache.Questions()
	if !ok || regenerate {
		var err error
		if questions, err = c.ws.Tools.GenerateQuestions(ctx); err != nil {
			return err
		}
	}
	printQuestions(c.out, questions)
	return nil
}

func printQuestions(w io.Writer, questions domain.QuestionSet) {
	if len(questions) == 0 {
		fmt.Fprintln(w, "No questions generated.")
		return
	}
	for i, q := range questions {
		fmt.Fprintf(w, "%d. [%s] %s\n   Answer: %s\n", i+1, q.Type, q.Question, q.Answer)
		if q.Location != "" {
			fmt.Fprintf(w, "   Location: %s\n", q.Location)
		}
	}
}

func (c *cli) flashcardsCmd() *cobra.Command {
	return c.toolCmd("flashcards", "Generate flashcards", cobra.NoArgs,
		func(ctx context.Context, _ []string) error { return c.flashcards(ctx, true) })
}

func (c *cli) flashcards(ctx context.Context, regenerate bool) error {
	cards, ok := c.ws.Cache.Flashcards()
	if !ok || regenerate {
		var err error
		if cards, err = c.ws.Tools.GenerateFlashcards(ctx); err != nil {
			return err
		}
	}
	printFlashcards(c.out, cards)
	return nil
}

func printFlashcards(w io.Writer, cards domain.FlashcardSet) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No flashcards generated.")
		return
	}
	for i, card := range cards {
		fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, card.Front, card.Back)
	}
}

func (c *cli) summarizeCmd() *cobra.Command {
	return c.toolCmd("summarize", "Summarize the active document", cobra.NoArgs,
		func(ctx context.Context, _ []string) error { return c.summarize(ctx, true) })
}

func (c *cli) summarize(ctx context.Context, regenerate bool) error {
	summary, ok := c.ws.Cache.Summary()
	if !ok || regenerate {
		var err error
		if summary, err = c.ws.Tools.GenerateSummary(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.out, string(summary))
	return nil
}

func (c *cli) keywordsCmd() *cobra.Command {
	return c.toolCmd("keywords", "Extract categorized keywords", cobra.NoArgs,
		func(ctx context.Context, _ []string) error { return c.keywords(ctx, true) })
}

func (c *cli) keywords(ctx context.Context, regenerate bool) error {
	view, ok := c.ws.Cache.Keywords()
	if !ok || regenerate {
		var err error
		if view, err = c.ws.Tools.GenerateKeywords(ctx); err != nil {
			return err
		}
	}
	printKeywords(c.out, view)
	return nil
}

func printKeywords(w io.Writer, view usecase.KeywordView) {
	if len(view.Categories) == 0 {
		if view.Raw == "" {
			fmt.Fprintln(w, "No keywords found.")
			return
		}
		fmt.Fprintln(w, view.Raw)
		return
	}
	for _, category := range view.Categories {
		fmt.Fprintf(w, "%s: %s\n", category.Name, strings.Join(category.Items, ", "))
	}
}
