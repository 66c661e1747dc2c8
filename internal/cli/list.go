package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zmem-project/zmem/internal/core"
	"github.com/zmem-project/zmem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories in a workspace",
		Run:   runList,
	}

	cmd.Flags().String("type", "", "Filter by type")
	cmd.Flags().String("scope", "", "Filter by scope")
	cmd.Flags().String("status", "", "Filter by status (default: active)")
	cmd.Flags().IntP("limit", "l", 50, "Max results")
	cmd.Flags().Int("offset", 0, "Offset for pagination")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	typ, _ := cmd.Flags().GetString("type")
	scope, _ := cmd.Flags().GetString("scope")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	engine, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer engine.Close(cmd.Context())

	items, total, err := engine.List(cmd.Context(), core.ListFilters{
		Workspace: resolveWorkspace(cfg), Type: model.Type(typ), Scope: model.Scope(scope),
		Status: model.Status(status), Limit: limit, Offset: offset,
	})
	if err != nil {
		exitErr("list", err)
	}

	b, _ := json.MarshalIndent(map[string]any{"items": items, "total": total}, "", "  ")
	fmt.Println(string(b))
}
