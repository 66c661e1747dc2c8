package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zmem-project/zmem/internal/core"
	"github.com/zmem-project/zmem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [query]",
		Short: "Recall memories relevant to a query",
		Long:  "Recall memories via lexical, vector, or hybrid retrieval, fused and ranked.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecall,
	}

	cmd.Flags().String("mode", "hybrid", "Retrieval mode: lexical, vector, hybrid")
	cmd.Flags().StringP("scopes", "s", "", "Comma-separated scopes")
	cmd.Flags().String("types", "", "Comma-separated types")
	cmd.Flags().IntP("limit", "l", 30, "Max results")
	cmd.Flags().Bool("include-superseded", false, "Include archived/superseded items")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	mode, _ := cmd.Flags().GetString("mode")
	scopesStr, _ := cmd.Flags().GetString("scopes")
	typesStr, _ := cmd.Flags().GetString("types")
	limit, _ := cmd.Flags().GetInt("limit")
	includeSuperseded, _ := cmd.Flags().GetBool("include-superseded")

	engine, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer engine.Close(cmd.Context())

	results, err := engine.Recall(cmd.Context(), resolveWorkspace(cfg), strings.Join(args, " "), core.RecallFilters{
		Mode: mode, Scopes: parseScopes(scopesStr), Types: parseTypes(typesStr),
		TopK: limit, IncludeSuperseded: includeSuperseded,
	})
	if err != nil {
		exitErr("recall", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}

func parseScopes(s string) []model.Scope {
	if s == "" {
		return nil
	}
	var out []model.Scope
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, model.Scope(v))
		}
	}
	return out
}

func parseTypes(s string) []model.Type {
	if s == "" {
		return nil
	}
	var out []model.Type
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, model.Type(v))
		}
	}
	return out
}
