package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DenisStobert/hh-autoapply-backend/internal/enrichment"
	"github.com/DenisStobert/hh-autoapply-backend/internal/headhunter"
	"github.com/DenisStobert/hh-autoapply-backend/internal/logger"
	"github.com/DenisStobert/hh-autoapply-backend/internal/secrets"
)

const (
	app = "hh-autoapply-backend"

	defaultPort = "3000"
)

type Config struct {
	Port             string         `mapstructure:"port"`
	ClientID         string         `mapstructure:"client-id"`
	ClientSecret     string         `mapstructure:"client-secret"`
	ClientSecretFile string         `mapstructure:"client-secret-file"`
	RedirectURI      string         `mapstructure:"redirect-uri"`
	UserAgent        string         `mapstructure:"user-agent"`
	State            string         `mapstructure:"state"`
	DeepLink         string         `mapstructure:"deep-link"`
	CORSOrigins      []string       `mapstructure:"cors-origins"`
	Dialogs          *DialogsConfig `mapstructure:"dialogs"`
}

type DialogsConfig struct {
	// Concurrency caps parallel employer lookups, zero or less disables the cap.
	Concurrency int `mapstructure:"concurrency"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"port":               "PORT",
	"client-id":          "HH_CLIENT_ID",
	"client-secret":      "HH_CLIENT_SECRET",
	"client-secret-file": "HH_CLIENT_SECRET_FILE",
	"redirect-uri":       "REDIRECT_URI",
	"user-agent":         "HH_USER_AGENT",
	"state":              "HH_OAUTH_STATE",
	"deep-link":          "DEEP_LINK",
	"cors-origins":       "CORS_ORIGINS",
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-autoapply-backend is a small OAuth proxy between a mobile app and the hh.ru API",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("port", defaultPort)
	viper.SetDefault("dialogs.concurrency", enrichment.DefaultConcurrency)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-autoapply-backend.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// .env is optional, real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// Without an explicit --config the file is optional, the environment is enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}

	config.CORSOrigins = splitOrigins(config.CORSOrigins)

	return config, nil
}

// splitOrigins accepts both a yaml list and a comma separated environment value.
func splitOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func newLogger() *zap.Logger {
	logger, err := logger.New(app, viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return logger
}

// newHeadHunter builds the hh.ru client from the config.
func newHeadHunter(config *Config, logger *zap.Logger) (*headhunter.Client, error) {
	if strings.TrimSpace(config.ClientID) == "" {
		return nil, errors.New("hh client id is not configured")
	}

	secret, err := secrets.Load(secrets.Source{
		Name:  "hh client secret",
		Value: config.ClientSecret,
		File:  config.ClientSecretFile,
	})
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(config.RedirectURI) == "" {
		return nil, errors.New("redirect uri is not configured")
	}

	hh := headhunter.New(logger, headhunter.Credentials{
		ClientID:     strings.TrimSpace(config.ClientID),
		ClientSecret: secret,
		RedirectURI:  strings.TrimSpace(config.RedirectURI),
	})

	if config.UserAgent != "" {
		hh.UserAgent = config.UserAgent
	}

	return hh, nil
}

func (c *Config) addr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = defaultPort
	}
	return fmt.Sprintf(":%s", port)
}
