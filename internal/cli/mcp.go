package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/zmem-project/zmem/internal/config"
	"github.com/zmem-project/zmem/internal/logging"
	"github.com/zmem-project/zmem/internal/mcptools"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP tool server for LLM agents on stdio",
		Run:   runMCP,
	}

	RootCmd.AddCommand(cmd)
}

func runMCP(cmd *cobra.Command, args []string) {
	engine, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	// stdout is reserved for ServeStdio's JSON-RPC stream, so the tool
	// server's own logger (and its verbose diagnostics) must write to
	// stderr instead of the stdout logger openEngine built for the CLI.
	mcpLog := logging.NewStderr(logging.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty, Console: cfg.Logging.Console})
	engine.Log = mcpLog

	server := mcptools.NewServer("zmem", "0.1.0", engine, cfg, mcpLog, config.ReindexToolEnabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() { serverErr <- mcpserver.ServeStdio(server) }()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "mcp: shutdown signal received")
		if err := engine.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "mcp: error closing engine: %v\n", err)
		}
	case err := <-serverErr:
		engine.Close(context.Background())
		if err != nil {
			exitErr("mcp server", err)
		}
	}
}
