package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/giotroni/DB-VP/internal/importer"
	"github.com/giotroni/DB-VP/internal/report"
	"github.com/giotroni/DB-VP/internal/schema"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-import whenever a table file changes",
	Long: `Watches the input directory and schedules a full import run after
each change to a recognized table file. Rapid successive writes (editors
save in bursts) collapse into a single run via the debounce window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		modeStr := viper.GetString("import.mode")
		if v, _ := cmd.Flags().GetString("mode"); v != "" {
			modeStr = v
		}
		mode, err := importer.ParseMode(modeStr)
		if err != nil {
			return err
		}
		dir := viper.GetString("import.dir")
		if v, _ := cmd.Flags().GetString("input-dir"); v != "" {
			dir = v
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create input dir %s: %w", dir, err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := importer.Options{
			Mode:          mode,
			InputDir:      dir,
			RowErrorLimit: c.Import.RowErrorLimit,
		}

		// One timer for the whole directory: any recognized change
		// resets it, so a burst of saves triggers a single run. runMu
		// keeps a slow run from overlapping the next trigger.
		var (
			timer *time.Timer
			runMu sync.Mutex
		)
		runOnce := func(name string) {
			runMu.Lock()
			defer runMu.Unlock()

			slog.Info("file changed, starting import", "file", name)
			conn, err := openConn(ctx, c)
			if err != nil {
				slog.Error("import aborted", "error", err)
				return
			}
			defer closeConn(conn)

			runner := &importer.Runner{DB: conn, Log: slog.Default()}
			rep, err := runner.Run(ctx, opts)
			if err != nil {
				slog.Error("import failed", "error", err)
				return
			}
			report.RenderConsole(os.Stdout, rep)
		}

		slog.Info("watching for changes", "dir", dir, "debounce", watchDebounce)

		for {
			select {
			case <-ctx.Done():
				slog.Info("watch stopped")
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !recognizedFile(event.Name) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				name := filepath.Base(event.Name)
				timer = time.AfterFunc(watchDebounce, func() { runOnce(name) })

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				slog.Warn("watcher error", "error", err)
			}
		}
	},
}

// recognizedFile reports whether path names an input file for a
// registered table, e.g. clients.csv or invoices.tsv.
func recognizedFile(path string) bool {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	switch ext {
	case ".csv", ".txt", ".tsv":
	default:
		return false
	}
	_, ok := schema.Get(strings.TrimSuffix(base, ext))
	return ok
}

func init() {
	watchCmd.Flags().String("input-dir", "", "directory to watch for table files")
	watchCmd.Flags().String("mode", "", "write strategy: insert, update or upsert")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a change triggers a run")

	rootCmd.AddCommand(watchCmd)
}
