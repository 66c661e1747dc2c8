package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zmem-project/zmem/internal/ingest"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run the ingestion pipeline once for a workspace",
		Run:   runIngest,
	}

	cmd.Flags().String("root", "", "Root path to scan (default: the workspace's configured root)")
	cmd.Flags().StringSlice("pattern", nil, "Glob patterns to include (default: the workspace's configured patterns)")

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	root, _ := cmd.Flags().GetString("root")
	patterns, _ := cmd.Flags().GetStringSlice("pattern")

	engine, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer engine.Close(cmd.Context())

	workspace := resolveWorkspace(cfg)
	if root == "" || len(patterns) == 0 {
		if ws := cfg.Workspace(workspace); ws != nil {
			if root == "" {
				root = ws.Root
			}
			if len(patterns) == 0 {
				patterns = ws.Patterns
			}
		}
	}
	if root == "" {
		exitErr("ingest", fmt.Errorf("no root path given and no matching workspace %q configured", workspace))
	}

	result, err := engine.Ingest(cmd.Context(), ingest.Options{
		Workspace: workspace, RootPath: root, Patterns: patterns,
	})
	if err != nil {
		exitErr("ingest", err)
	}

	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}
