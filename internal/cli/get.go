package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Fetch a memory by id",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	engine, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer engine.Close(cmd.Context())

	item, err := engine.Get(cmd.Context(), resolveWorkspace(cfg), args[0])
	if err != nil {
		exitErr("get", err)
	}
	if item == nil {
		exitErr("get", fmt.Errorf("not found"))
	}

	b, _ := json.MarshalIndent(item, "", "  ")
	fmt.Println(string(b))
}
