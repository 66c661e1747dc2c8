package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zmem-project/zmem/internal/core"
	"github.com/zmem-project/zmem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "save [content]",
		Short: "Save a memory",
		Long:  "Save a memory. Content can be a positional arg or piped via stdin.",
		Run:   runSave,
	}

	cmd.Flags().String("title", "", "Title (required)")
	cmd.Flags().String("type", "fact", "Type: fact, decision, preference, event, goal, todo")
	cmd.Flags().String("scope", "workspace", "Scope: workspace, global, user")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	cmd.Flags().Float64("importance", core.DefaultImportance, "Importance, 0-1")
	cmd.Flags().String("supersedes", "", "Id of an active item this save replaces")

	cmd.MarkFlagRequired("title")

	RootCmd.AddCommand(cmd)
}

func runSave(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")
	typ, _ := cmd.Flags().GetString("type")
	scope, _ := cmd.Flags().GetString("scope")
	tagsStr, _ := cmd.Flags().GetString("tags")
	importance, _ := cmd.Flags().GetFloat64("importance")
	supersedes, _ := cmd.Flags().GetString("supersedes")

	content := readContentArg(args)
	if strings.TrimSpace(content) == "" {
		exitErr("save", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	var tags []string
	if tagsStr != "" {
		for _, t := range strings.Split(tagsStr, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	engine, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer engine.Close(cmd.Context())

	out, err := engine.Save(cmd.Context(), resolveWorkspace(cfg), core.SaveInput{
		Type: model.Type(typ), Title: title, Content: strings.TrimSpace(content),
		Scope: model.Scope(scope), Tags: tags, Importance: importance, SupersedesID: supersedes,
	})
	if err != nil {
		exitErr("save", err)
	}

	b, _ := json.Marshal(out)
	fmt.Println(string(b))
}

func readContentArg(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err == nil {
			return string(b)
		}
	}
	return ""
}
