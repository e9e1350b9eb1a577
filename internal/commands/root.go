// internal/commands/root.go
package biasprobe

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/biasprobe/internal/appconfig"
	"github.com/mwiater/biasprobe/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "biasprobe",
	Short: "biasprobe is a cognitive-bias evaluation engine for generative models",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		for _, name := range []string{"debug", "noTui"} {
			if !cmd.Flags().Changed(name) {
				val := viper.GetBool(name)
				_ = cmd.Flags().Set(name, strconv.FormatBool(val))
			}
		}
		if !cmd.Flags().Changed("adaptive") {
			_ = cmd.Flags().Set("adaptive", strconv.FormatBool(viper.GetBool("adaptive.enabled")))
		}
		for _, name := range []string{"provider", "model", "baseUrl", "determinism", "export", "logFile", "testSuite"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, viper.GetString(name))
			}
		}
		for _, name := range []string{"iterations", "timeout"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, strconv.Itoa(viper.GetInt(name)))
			}
		}
		if !cmd.Flags().Changed("seed") {
			_ = cmd.Flags().Set("seed", strconv.FormatInt(viper.GetInt64("seed"), 10))
		}

		cfg, err := decodeConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg.ConfigPath = cfgFile
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("BIASPROBE_API_KEY")
		}
		currentConfig = cfg

		if err := logging.Init(currentConfig.LogFile); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.json", "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().String("provider", "", "target provider (openai, anthropic, ollama)")
	rootCmd.PersistentFlags().String("model", "", "model identifier to evaluate")
	rootCmd.PersistentFlags().String("baseUrl", "", "provider base URL (required for ollama)")
	rootCmd.PersistentFlags().Int("iterations", 0, "iteration budget per test case (0 = default)")
	rootCmd.PersistentFlags().Bool("adaptive", false, "enable CV-based adaptive early stopping")
	rootCmd.PersistentFlags().String("determinism", "", "determinism mode: full, near, or disabled")
	rootCmd.PersistentFlags().Int64("seed", 0, "run seed for reproducibility (0 = default)")
	rootCmd.PersistentFlags().Int("timeout", 0, "per-request timeout in seconds (0 = default)")
	rootCmd.PersistentFlags().String("testSuite", "", "path to an external test-suite JSON file")
	rootCmd.PersistentFlags().String("export", "", "write the report JSON to this directory")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("noTui", false, "disable the interactive progress view")

	for _, name := range []string{"provider", "model", "baseUrl", "iterations", "determinism", "seed", "timeout", "testSuite", "export", "logFile", "debug", "noTui"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	_ = viper.BindPFlag("adaptive.enabled", rootCmd.PersistentFlags().Lookup("adaptive"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// decodeConfig unmarshals the viper state into a Config. The decoder
// matches keys to field names, so the "timeout" and "export" keys never
// reach TimeoutSeconds and ExportPath on their own and are filled
// explicitly.
func decodeConfig(v *viper.Viper) (*appconfig.Config, error) {
	var cfg appconfig.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = v.GetInt("timeout")
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = v.GetString("export")
	}
	return &cfg, nil
}

// ensureConfigLoaded reads the config and sets safe defaults.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
