package cmd

import (
	"fmt"
	"os"
	"strings"

	"codemeta/internal/application/common/logging"
	"codemeta/internal/application/common/slogger"
	"codemeta/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codemeta",
	Short: "A source code metadata extraction system",
	Long: `CodeMeta extracts declaration metadata from source trees: attribute
annotations and their values, and the documentation text attached to each
declaration, merged from doc comments and doc attributes in source order.

The system supports:
- Rust source parsing using tree-sitter
- Attribute enumeration and key/value queries per declaration
- Documentation reconstruction from doc comments and doc attributes
- Metadata storage in PostgreSQL
- File-indexed event publishing with NATS JetStream`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format (json, text)")

	// Bind flags to viper
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
	}
	if err := viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-format flag: %v\n", err)
	}
}

func initConfig() {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Set config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix("CODEMETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
		// Config file not found; use defaults and environment
	}

	// Load configuration
	cfg = config.New(v)

	applyLogConfig(cfg.Log)
}

// applyLogConfig points the global logger at the configured level and format.
func applyLogConfig(logCfg config.LogConfig) {
	logger, err := logging.NewApplicationLogger(logging.Config{
		Level:  logCfg.Level,
		Format: logCfg.Format,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		return
	}
	slogger.SetGlobalLogger(logger)
}

func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "codemeta")
	v.SetDefault("database.name", "codemeta")
	v.SetDefault("database.schema", "codemeta")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 10)

	// NATS defaults
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", 5)
	v.SetDefault("nats.reconnect_wait", "2s")

	// Extractor defaults
	v.SetDefault("extractor.max_source_size", 10*1024*1024)
	v.SetDefault("extractor.parse_timeout", "30s")
	v.SetDefault("extractor.concurrency", 4)

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
