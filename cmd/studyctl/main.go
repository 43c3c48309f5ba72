package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirillkom/doc-study-gateway/internal/bootstrap"
	"github.com/kirillkom/doc-study-gateway/internal/config"
	"github.com/kirillkom/doc-study-gateway/internal/observability/logging"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()
	logger, closeLog := logging.Setup(os.Stderr, "studyctl", cfg.LogLevel, cfg.LogFile)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(cfg, os.Stdin, os.Stdout).ExecuteContext(ctx)
	stop()
	_ = closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cli carries the workspace opened for one command invocation.
type cli struct {
	cfg      config.Config
	in       io.Reader
	out      io.Writer
	document string
	ws       *bootstrap.Workspace
}

func newRootCmd(cfg config.Config, in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{cfg: cfg, in: in, out: out}

	root := &cobra.Command{
		Use:           "studyctl",
		Short:         "Study documents through the doc-study gateway",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := bootstrap.NewClient(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			c.ws = ws
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.ws != nil {
				c.ws.Close()
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.cfg.GatewayURL, "gateway", cfg.GatewayURL, "gateway base URL")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.uploadCmd(),
		c.chatCmd(),
		c.questionsCmd(),
		c.flashcardsCmd(),
		c.summarizeCmd(),
		c.keywordsCmd(),
		c.exportCmd(),
		c.shellCmd(),
		c.mcpCmd(),
	)
	return root
}
