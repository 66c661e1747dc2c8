package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Soft-delete a memory",
		Args:  cobra.ExactArgs(1),
		Run:   runDelete,
	}

	RootCmd.AddCommand(cmd)
}

func runDelete(cmd *cobra.Command, args []string) {
	engine, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer engine.Close(cmd.Context())

	deleted, err := engine.Delete(cmd.Context(), resolveWorkspace(cfg), args[0])
	if err != nil {
		exitErr("delete", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"deleted":%v,"id":%q}`+"\n", deleted, args[0])
}
