// Package cmd provides the command-line interface of the userapi service.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"userapi/internal/application/common/logging"
	"userapi/internal/application/common/slogger"
	"userapi/internal/config"
	"userapi/internal/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override, e.g. USERAPI_APP_ENVIRONMENT.
const EnvPrefix = "USERAPI"

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "userapi",
	Short: "User and post API",
	Long: `UserAPI serves users and their posts over HTTP backed by PostgreSQL.

Every failure is classified once and rendered according to the deployment mode:
development responses carry full diagnostics, production responses only disclose
anticipated failures.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (json, text)")

	rootCmd.Version = version.Get().Version
	rootCmd.SetVersionTemplate(version.Get().String())
}

func initConfig() {
	v := newViper(cfgFile)
	bindLogFlags(v, rootCmd)

	cfg = config.New(v)

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	slogger.SetGlobalLogger(logger)
}

// newViper loads defaults, the config file and USERAPI_* environment overrides.
func newViper(file string) *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
		// Config file not found; use defaults and environment
	}
	return v
}

// bindLogFlags lets explicitly set --log-level and --log-format win over the config file.
func bindLogFlags(v *viper.Viper, cmd *cobra.Command) {
	flags := map[string]string{"log.level": "log-level", "log.format": "log-format"}
	for key, name := range flags {
		if flag := cmd.PersistentFlags().Lookup(name); flag != nil && flag.Changed {
			v.Set(key, flag.Value.String())
		}
	}
}

func newLogger(c *config.Config) (logging.ApplicationLogger, error) {
	return logging.NewApplicationLogger(logging.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: "stdout",
	})
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}
