package kgcurate

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "kgcurate",
		Short: "kgcurate: link prediction dataset builder",
		Long: `kgcurate turns knowledge graph triplet files ("head relation tail" per line) into
link prediction datasets: cleaned relations, leakage-free train/valid/test splits pruned
to graph-reachable triplets, and random-walk negative samples.

Configuration is read from $HOME/.kgcurate.yaml or ./.kgcurate.yaml, a .env file,
KGCURATE_* environment variables and command-line flags, in increasing precedence.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kgcurate.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json, logfmt)")
	rootCmd.PersistentFlags().Int("workers", 0, "worker pool size (0 means one per CPU)")
	rootCmd.PersistentFlags().String("compression", "none", "output compression (none, gzip, zstd)")
	rootCmd.PersistentFlags().String("parquet-dir", "", "also export splits and negatives as Parquet into this directory")
	rootCmd.PersistentFlags().String("telemetry-parquet-path", "", "directory receiving warning and error log records")

	// Bind flags to viper
	bindFlags(rootCmd, map[string]string{
		"log.level":              "log-level",
		"log.format":             "log-format",
		"workers":                "workers",
		"output.compression":     "compression",
		"export.parquet_dir":     "parquet-dir",
		"telemetry.parquet_path": "telemetry-parquet-path",
	}, true)
}

// bindFlags binds viper keys to the named flags of cmd.
func bindFlags(cmd *cobra.Command, keys map[string]string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for key, name := range keys {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(name)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using system environment variables")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".kgcurate" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kgcurate")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		cobra.CheckErr(fmt.Errorf("failed to read config %s: %w", cfgFile, err))
	}
}
