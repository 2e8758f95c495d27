package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/giotroni/DB-VP/internal/sample"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate sample CSV files for every table",
	Long: `Writes one <table>.csv per registered table into the input directory.
The files are coherent across tables (foreign keys point at generated rows)
and deliberately messy in the right ways: DD/MM/YYYY dates, empty enums and
plaintext secrets, so an import exercises the whole transform chain.
Only files are written; the database is never touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString("import.dir")
		if v, _ := cmd.Flags().GetString("input-dir"); v != "" {
			dir = v
		}
		rows := viper.GetInt("seed.rows")

		if err := sample.New(rows, 0).WriteAll(dir); err != nil {
			return err
		}
		fmt.Printf("wrote sample files to %s (%d rows per table)\n", dir, rows)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("rows", sample.DefaultRows, "data rows to generate per table")
	seedCmd.Flags().String("input-dir", "", "directory to write the sample files into")

	viper.BindPFlag("seed.rows", seedCmd.Flags().Lookup("rows"))

	rootCmd.AddCommand(seedCmd)
}
