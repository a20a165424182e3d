package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/omie-client/internal/auth"
	"github.com/fivetwenty-io/omie-client/internal/constants"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

// Config is the persisted CLI configuration.
type Config struct {
	AppKey    string  `json:"app_key,omitempty"    yaml:"app_key,omitempty"`
	AppSecret string  `json:"app_secret,omitempty" yaml:"app_secret,omitempty"`
	URLPrefix string  `json:"url_prefix,omitempty" yaml:"url_prefix,omitempty"`
	Output    string  `json:"output,omitempty"     yaml:"output,omitempty"`
	CacheTTL  string  `json:"cache_ttl,omitempty"  yaml:"cache_ttl,omitempty"`
	RPS       float64 `json:"rps,omitempty"        yaml:"rps,omitempty"`
	Cache     string  `json:"cache,omitempty"      yaml:"cache,omitempty"`
	NATSURL   string  `json:"nats_url,omitempty"   yaml:"nats_url,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the omie CLI configuration file and credentials",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigSetCredentialsCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after flags, environment and config file are merged. Secrets are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			config := effectiveConfig()
			config.AppSecret = maskSecret(config.AppSecret)

			out := cmd.OutOrStdout()

			done, err := writeStructured(out, format, config)
			if done || err != nil {
				return err
			}

			return renderTable(out, []string{"Property", "Value"}, [][]string{
				{"Config File", configFilePath()},
				{"App Key", orNotAvailable(config.AppKey)},
				{"App Secret", orNotAvailable(config.AppSecret)},
				{"URL Prefix", orNotAvailable(config.URLPrefix)},
				{"Output", orNotAvailable(config.Output)},
				{"Cache TTL", orNotAvailable(config.CacheTTL)},
				{"Requests/s", cast.ToString(config.RPS)},
				{"Cache", orNotAvailable(config.Cache)},
				{"NATS URL", orNotAvailable(config.NATSURL)},
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the config file.

Keys: app_key, app_secret, url_prefix, output, cache_ttl, rps, cache, nats_url.
Credentials may be given as env:VAR or file:PATH references.`,
		Args: cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFilePath()

			config, err := loadConfigFile(path)
			if err != nil {
				return err
			}

			err = setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigFile(path, config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)

			return nil
		},
	}
}

func newConfigSetCredentialsCommand() *cobra.Command {
	var appKey string

	cmd := &cobra.Command{
		Use:   "set-credentials",
		Short: "Store the app key and secret",
		Long:  "Prompt for the Omie app key and app secret and store them in the config file. The secret is read without echo on a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			out := cmd.OutOrStdout()
			reader := bufio.NewReader(in)

			if appKey == "" {
				_, _ = io.WriteString(out, "App key: ")

				line, err := readLine(reader)
				if err != nil {
					return fmt.Errorf("failed to read app key: %w", err)
				}

				appKey = line
			}

			_, _ = io.WriteString(out, "App secret: ")

			appSecret, err := readSecret(in, reader, out)
			if err != nil {
				return fmt.Errorf("failed to read app secret: %w", err)
			}

			if appKey == "" || appSecret == "" {
				return constants.ErrCredentialsRequired
			}

			path := configFilePath()

			config, err := loadConfigFile(path)
			if err != nil {
				return err
			}

			config.AppKey = appKey
			config.AppSecret = appSecret

			err = saveConfigFile(path, config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "Credentials saved to %s\n", path)

			return nil
		},
	}

	cmd.Flags().StringVar(&appKey, "app-key", "", "app key (prompted when omitted)")

	return cmd
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// readSecret reads without echo when in is a terminal and falls back to a
// plain line otherwise.
func readSecret(in io.Reader, reader *bufio.Reader, out io.Writer) (string, error) {
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		_, _ = io.WriteString(out, "\n")

		if err != nil {
			return "", err
		}

		return strings.TrimSpace(string(secret)), nil
	}

	return readLine(reader)
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case KeyAppKey:
		config.AppKey = value
	case KeyAppSecret:
		config.AppSecret = value
	case KeyURLPrefix:
		config.URLPrefix = value
	case KeyOutput:
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		default:
			return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, value)
		}

		config.Output = value
	case KeyCacheTTL:
		_, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", KeyCacheTTL, err)
		}

		config.CacheTTL = value
	case KeyRPS:
		rps, err := cast.ToFloat64E(value)
		if err != nil || rps < 0 {
			return fmt.Errorf("invalid %s: %q", KeyRPS, value)
		}

		config.RPS = rps
	case KeyCache:
		cacheType, err := omie.ParseCacheType(value)
		if err != nil {
			return err
		}

		config.Cache = string(cacheType)
	case KeyNATSURL:
		config.NATSURL = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func effectiveConfig() *Config {
	config := &Config{
		AppKey:    viper.GetString(KeyAppKey),
		AppSecret: viper.GetString(KeyAppSecret),
		URLPrefix: viper.GetString(KeyURLPrefix),
		Output:    viper.GetString(KeyOutput),
		RPS:       viper.GetFloat64(KeyRPS),
		Cache:     viper.GetString(KeyCache),
		NATSURL:   viper.GetString(KeyNATSURL),
	}

	if ttl := viper.GetDuration(KeyCacheTTL); ttl > 0 {
		config.CacheTTL = ttl.String()
	}

	return config
}

func maskSecret(value string) string {
	if value == "" || auth.IsReference(value) {
		return value
	}

	return constants.MaskedSecret
}

func orNotAvailable(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func configFilePath() string {
	if path := viper.GetString(KeyConfig); path != "" {
		return path
	}

	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".omie", "config.yml")
	}

	return filepath.Join(home, ".omie", "config.yml")
}

func loadConfigFile(path string) (*Config, error) {
	config := &Config{}

	// #nosec G304 -- the path is the user's own config file
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

func saveConfigFile(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
