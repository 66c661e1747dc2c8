package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show item and embedding counts for a workspace",
		Run:   runStatus,
	}

	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	engine, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer engine.Close(cmd.Context())

	status, err := engine.Status(cmd.Context(), resolveWorkspace(cfg))
	if err != nil {
		exitErr("status", err)
	}

	b, _ := json.MarshalIndent(status, "", "  ")
	fmt.Println(string(b))
}
