package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/giotroni/DB-VP/internal/importer"
	"github.com/giotroni/DB-VP/internal/report"
)

var (
	importTruncate bool
	importProgress bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run one full import over the input directory",
	Long: `Discovers the table input files, imports every available table in
foreign-key dependency order and prints the run report. Row errors do not
fail the command; they are carried in the report. The exit code is non-zero
only for run-level faults such as an unreachable database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}

		mode, err := importer.ParseMode(viper.GetString("import.mode"))
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		conn, err := openConn(ctx, c)
		if err != nil {
			return err
		}
		defer closeConn(conn)

		runner := &importer.Runner{DB: conn, Log: slog.Default()}

		if importProgress {
			uiprogress.Start()
			bars := make(map[string]*uiprogress.Bar)
			runner.Progress = func(table string, current, total int) {
				bar, ok := bars[table]
				if !ok {
					bar = uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
					name := table
					bar.PrependFunc(func(b *uiprogress.Bar) string {
						return fmt.Sprintf("%-20s", name)
					})
					bars[table] = bar
				}
				_ = bar.Set(current)
			}
		}

		rep, err := runner.Run(ctx, importer.Options{
			Mode:          mode,
			Truncate:      importTruncate,
			InputDir:      viper.GetString("import.dir"),
			RowErrorLimit: c.Import.RowErrorLimit,
		})
		if importProgress {
			uiprogress.Stop()
		}
		if err != nil {
			return err
		}
		report.RenderConsole(os.Stdout, rep)
		return nil
	},
}

func init() {
	importCmd.Flags().String("mode", "", "write strategy: insert, update or upsert")
	importCmd.Flags().String("input-dir", "", "directory holding the table input files")
	importCmd.Flags().BoolVar(&importTruncate, "truncate", false, "wipe each table before importing it")
	importCmd.Flags().BoolVar(&importProgress, "progress", false, "show a per-table progress bar")

	viper.BindPFlag("import.mode", importCmd.Flags().Lookup("mode"))
	viper.BindPFlag("import.dir", importCmd.Flags().Lookup("input-dir"))

	rootCmd.AddCommand(importCmd)
}
