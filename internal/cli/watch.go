package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/zmem-project/zmem/internal/ingest"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a workspace's root path and re-ingest on change",
		Run:   runWatch,
	}

	cmd.Flags().String("root", "", "Root path to watch (default: the workspace's configured root)")
	cmd.Flags().StringSlice("pattern", nil, "Glob patterns to include (default: the workspace's configured patterns)")

	RootCmd.AddCommand(cmd)
}

const watchDebounce = 250 * time.Millisecond

func runWatch(cmd *cobra.Command, args []string) {
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
		exitErr("watch", fmt.Errorf("no root path given and no matching workspace %q configured", workspace))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		exitErr("create watcher", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		exitErr("watch root", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := ingest.Options{Workspace: workspace, RootPath: root, Patterns: patterns}
	runOnce := func() {
		result, err := engine.Ingest(ctx, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "watch: ingest error: %v\n", err)
			return
		}
		fmt.Printf("watch: scanned=%d inserted=%d updated=%d removed=%d\n",
			result.Scanned, result.Inserted, result.Updated, result.Removed)
	}

	fmt.Printf("watch: running initial ingest for workspace %q at %s\n", workspace, root)
	runOnce()

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	scheduleReingest := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watcher.Add(event.Name)
				}
			}
			scheduleReingest()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch: watcher error: %v\n", err)
		case <-pending:
			runOnce()
		}
	}
}

// addRecursive registers every directory under root with watcher, since
// fsnotify does not watch subtrees on its own.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
