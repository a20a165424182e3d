package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/omie-client/cmd/omie/commands"
	"github.com/fivetwenty-io/omie-client/internal/constants"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const envPrefix = "OMIE"

var rootCmd = &cobra.Command{
	Use:   "omie",
	Short: "Omie ERP API CLI",
	Long: `A command-line interface for querying the Omie ERP API.

Credentials come from --app-key/--app-secret, OMIE_APP_KEY/OMIE_APP_SECRET,
a .env file in the working directory or $HOME/.omie/config.yml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP(commands.KeyConfig, "c", "", "config file (default is $HOME/.omie/config.yml)")
	flags.String("app-key", "", "Omie app key (or env:VAR / file:PATH)")
	flags.String("app-secret", "", "Omie app secret (or env:VAR / file:PATH)")
	flags.String("url-prefix", constants.DefaultURLPrefix, "API base URL")
	flags.StringP(commands.KeyOutput, "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP(commands.KeyVerbose, "v", false, "verbose output")
	flags.Duration("cache-ttl", constants.DefaultCacheTTL, "how long responses are reused")
	flags.Float64(commands.KeyRPS, 0, "maximum requests per second (0 for unlimited)")
	flags.String(commands.KeyCache, string(omie.CacheTypeMemory), "response cache backend (memory, nats, none)")
	flags.String("nats-url", "", "NATS server URL for the nats cache backend")

	_ = viper.BindPFlag(commands.KeyConfig, flags.Lookup(commands.KeyConfig))
	_ = viper.BindPFlag(commands.KeyAppKey, flags.Lookup("app-key"))
	_ = viper.BindPFlag(commands.KeyAppSecret, flags.Lookup("app-secret"))
	_ = viper.BindPFlag(commands.KeyURLPrefix, flags.Lookup("url-prefix"))
	_ = viper.BindPFlag(commands.KeyOutput, flags.Lookup(commands.KeyOutput))
	_ = viper.BindPFlag(commands.KeyVerbose, flags.Lookup(commands.KeyVerbose))
	_ = viper.BindPFlag(commands.KeyCacheTTL, flags.Lookup("cache-ttl"))
	_ = viper.BindPFlag(commands.KeyRPS, flags.Lookup(commands.KeyRPS))
	_ = viper.BindPFlag(commands.KeyCache, flags.Lookup(commands.KeyCache))
	_ = viper.BindPFlag(commands.KeyNATSURL, flags.Lookup("nats-url"))

	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewMethodsCommand())
	rootCmd.AddCommand(commands.NewCallCommand())
	rootCmd.AddCommand(commands.NewListCommand())
}

func initConfig() {
	cfgFile := viper.GetString(commands.KeyConfig)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".omie"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	loadDotEnv(".env")

	err := viper.ReadInConfig()
	if err == nil {
		if viper.GetBool(commands.KeyVerbose) {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}

		return
	}

	var notFound viper.ConfigFileNotFoundError
	if cfgFile != "" || !errors.As(err, &notFound) {
		fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
	}
}

// loadDotEnv reads OMIE_* entries of a dotenv file as defaults, below flags,
// the environment and the config file.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")

	err := dotenv.ReadInConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)

		return
	}

	prefix := strings.ToLower(envPrefix) + "_"

	for _, key := range dotenv.AllKeys() {
		if name, ok := strings.CutPrefix(key, prefix); ok {
			viper.SetDefault(name, dotenv.Get(key))
		}
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
