// Package cli implements the dbvp command tree: import, seed, serve and
// watch. Option precedence follows viper: flags first, then the dbvp.yaml
// config file, then DBVP_* environment variables, then defaults.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/giotroni/DB-VP/internal/config"
	"github.com/giotroni/DB-VP/internal/logging"
)

var (
	cfgFile   string
	envFile   string
	logLevel  string
	logFormat string

	// cfg is the environment-backed configuration, loaded once per
	// invocation. Commands that need the database require it; seed
	// works without one.
	cfg    *config.Config
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "dbvp",
	Short: "DB-VP tabular data importer",
	Long: `dbvp imports delimited data files into the seven DB-VP tables,
in foreign-key dependency order, with insert, update or upsert semantics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env first, so config.Load sees its values.
		if envFile != "" {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("load env file %s: %w", envFile, err)
			}
		} else {
			// Best effort: a missing default .env is fine.
			_ = godotenv.Overload()
		}

		cfg, cfgErr = config.Load()

		level, format := logLevel, logFormat
		if cfg != nil {
			if level == "" {
				level = cfg.Logging.Level
			}
			if format == "" {
				format = cfg.Logging.Format
			}
		}
		logging.Setup(level, format)

		if cfg != nil {
			viper.SetDefault("import.dir", cfg.Import.Dir)
			viper.SetDefault("import.mode", cfg.Import.DefaultMode)
		}
		return nil
	},
}

// Execute runs the command tree. It is the only entry point main uses.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dbvp.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default is ./.env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")

	viper.SetDefault("import.dir", "./import")
	viper.SetDefault("import.mode", "insert")
	viper.SetDefault("seed.rows", 25)
}

// initConfig reads the config file and DBVP_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("dbvp")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DBVP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// requireConfig returns the loaded configuration or the load failure.
// Used by every command that talks to the database.
func requireConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	return cfg, nil
}

// openConn opens the single database connection an import run uses.
func openConn(ctx context.Context, c *config.Config) (*pgx.Conn, error) {
	connectCtx, cancel := context.WithTimeout(ctx, c.Database.ConnectTimeout)
	defer cancel()

	conn, err := pgx.Connect(connectCtx, c.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := conn.Ping(connectCtx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return conn, nil
}

// closeConn closes a connection with a short deadline of its own, so a
// wedged server cannot hang process exit.
func closeConn(conn *pgx.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = conn.Close(ctx)
}
