package main

import (
	"context"
	"fmt"
	"github.com/DataDog/datadog-go/statsd"
	"github.com/hightouchio/cftpipe/cloudflare"
	"github.com/hightouchio/cftpipe/log"
	"github.com/hightouchio/cftpipe/pkg/ports"
	"github.com/hightouchio/cftpipe/pkg/prompt"
	"github.com/hightouchio/cftpipe/pkg/store"
	"github.com/hightouchio/cftpipe/stats"
	"github.com/hightouchio/cftpipe/tunnel"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	ConfigDir = "config_dir"

	ConfigCloudflareAPIToken  = "cloudflare.api_token"
	ConfigCloudflareAccountID = "cloudflare.account_id"
	ConfigCloudflareAPIURL    = "cloudflare.api_url"

	ConfigAPIRetryMax = "api.retry_max"
	ConfigAPITimeout  = "api.timeout"

	ConfigCloudflaredPath = "cloudflared.path"

	ConfigLogLevel   = "log.level"
	ConfigLogFormat  = "log.format"
	ConfigStatsdAddr = "statsd.addr"
)

const configFileName = "cftpipe"

func initDefaults(config *viper.Viper) {
	config.SetDefault(ConfigDir, defaultConfigDir())
	config.SetDefault(ConfigCloudflareAPIURL, cloudflare.DefaultBaseURL)
	config.SetDefault(ConfigAPIRetryMax, 0)
	config.SetDefault(ConfigAPITimeout, time.Duration(0))
	config.SetDefault(ConfigCloudflaredPath, tunnel.DefaultDaemonBinary)
	config.SetDefault(ConfigLogLevel, "warn")
	config.SetDefault(ConfigLogFormat, "text")
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "cftpipe")
	}
	return filepath.Join(home, ".config", "cftpipe")
}

type configError struct {
	msg string
}

func (e configError) Error() string {
	return e.msg
}

func newConfigError(parts ...string) error {
	return configError{strings.Join(parts, " ")}
}

// newConfig reads CFTPIPE_* environment variables, the Cloudflare credentials and an optional cftpipe.yaml.
func newConfig(cmd *cobra.Command) (*viper.Viper, error) {
	config := viper.New()
	config.AutomaticEnv()
	config.SetEnvPrefix("CFTPIPE")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	initDefaults(config)

	if err := config.BindEnv(ConfigCloudflareAPIToken, "CF_API_TOKEN"); err != nil {
		return nil, errors.Wrap(err, "bind CF_API_TOKEN")
	}
	if err := config.BindEnv(ConfigCloudflareAccountID, "CF_ACCOUNT_ID"); err != nil {
		return nil, errors.Wrap(err, "bind CF_ACCOUNT_ID")
	}
	if flag := cmd.Flags().Lookup("config-dir"); flag != nil {
		if err := config.BindPFlag(ConfigDir, flag); err != nil {
			return nil, errors.Wrap(err, "bind --config-dir")
		}
	}

	config.SetConfigName(configFileName)
	config.SetConfigType("yaml")
	config.AddConfigPath(config.GetString(ConfigDir))
	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	if config.GetInt(ConfigAPIRetryMax) < 0 {
		return nil, newConfigError(ConfigAPIRetryMax, "must not be negative")
	}
	if config.GetDuration(ConfigAPITimeout) < 0 {
		return nil, newConfigError(ConfigAPITimeout, "must not be negative")
	}

	return config, nil
}

func newLogger(config *viper.Viper) (*logrus.Logger, error) {
	logger, err := log.Init(config.GetString(ConfigLogLevel), config.GetString(ConfigLogFormat))
	if err != nil {
		return nil, configError{err.Error()}
	}
	return logger, nil
}

// newStats initializes a Stats client for the command
func newStats(config *viper.Viper, logger logrus.FieldLogger) (stats.Stats, error) {
	var statsdClient statsd.ClientInterface

	if statsdAddr := config.GetString(ConfigStatsdAddr); statsdAddr != "" {
		var err error
		statsdClient, err = statsd.New(statsdAddr, statsd.WithMaxBytesPerPayload(4096))
		if err != nil {
			return stats.Stats{}, errors.Wrap(err, "could not initialize statsd client")
		}
	} else {
		statsdClient = &statsd.NoOpClient{}
	}
	st := stats.New(statsdClient, logger).WithPrefix("cftpipe")
	if version != "" {
		st = st.WithTags(stats.Tags{"version": version})
	}
	return st, nil
}

// application holds everything a command needs, built from the configuration.
type application struct {
	config  *viper.Viper
	logger  *logrus.Logger
	stats   stats.Stats
	service tunnel.Service
}

func newApplication(cmd *cobra.Command) (*application, error) {
	config, err := newConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(config)
	if err != nil {
		return nil, err
	}
	st, err := newStats(config, logger)
	if err != nil {
		return nil, err
	}

	files := store.NewOsFiles(config.GetString(ConfigDir))
	logger.WithField("dir", files.Dir()).Debug("using config directory")

	providerOptions := cloudflare.Options{
		BaseURL:  config.GetString(ConfigCloudflareAPIURL),
		RetryMax: config.GetInt(ConfigAPIRetryMax),
		Timeout:  config.GetDuration(ConfigAPITimeout),
		Logger:   logger.WithField("component", "cloudflare"),
	}

	return &application{
		config: config,
		logger: logger,
		stats:  st,
		service: tunnel.Service{
			APIToken: config.GetString(ConfigCloudflareAPIToken),
			NewProvider: func(token string) tunnel.Provider {
				return cloudflare.NewClient(token, providerOptions)
			},
			Config:  files,
			History: files,
			Prober:  ports.NewProber(),
			Prompt:  prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr()),
			Daemon: tunnel.CloudflaredDaemon{
				Binary: config.GetString(ConfigCloudflaredPath),
				Stdin:  cmd.InOrStdin(),
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			},
			Out: cmd.OutOrStdout(),
		},
	}, nil
}

// context carries the logger and stats to the handlers.
func (a *application) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithLogger(ctx, a.logger)
	return stats.InjectContext(ctx, a.stats)
}

// workingDirectory is recorded with every session and seeds generated names.
func workingDirectory() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "get working directory")
	}
	return dir, nil
}

func printError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
}
