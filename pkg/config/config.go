package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"xmr_faucet_back/internal/address"
	"xmr_faucet_back/pkg/utils"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	RPC    RPCConfig    `mapstructure:"rpc"`
	Wallet WalletConfig `mapstructure:"wallet"`
	Faucet FaucetConfig `mapstructure:"faucet"`
	DB     DBConfig     `mapstructure:"db"`
	Alerts AlertsConfig `mapstructure:"alerts"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AdminToken      string        `mapstructure:"admin_token"`
}

type RPCConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type WalletConfig struct {
	File     string `mapstructure:"file"`
	Password string `mapstructure:"password"`
}

type FaucetConfig struct {
	Network         string        `mapstructure:"network"`
	DripAmount      string        `mapstructure:"drip_amount"`
	BalanceCacheTTL time.Duration `mapstructure:"balance_cache_ttl"`
}

// DBConfig configures the optional Postgres journal. An empty Host keeps the journal in memory.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type AlertsConfig struct {
	Provider            string `mapstructure:"provider"` // "", "mailjet" or "smtp"
	LowBalanceThreshold string `mapstructure:"low_balance_threshold"`
	From                string `mapstructure:"from"`
	To                  string `mapstructure:"to"`
	MailjetAPIKey       string `mapstructure:"mailjet_api_key"`
	MailjetSecretKey    string `mapstructure:"mailjet_secret_key"`
	SMTPHost            string `mapstructure:"smtp_host"`
	SMTPPort            int    `mapstructure:"smtp_port"`
	SMTPUsername        string `mapstructure:"smtp_username"`
	SMTPPassword        string `mapstructure:"smtp_password"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ConfigurationError lists every required setting that is absent or unusable.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required settings: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid settings: "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

var envBindings = map[string]string{
	"server.port":               "PORT",
	"server.admin_token":        "ADMIN_TOKEN",
	"rpc.host":                  "RPC_HOST",
	"rpc.port":                  "RPC_PORT",
	"rpc.username":              "RPC_USER",
	"rpc.password":              "RPC_PASSWORD",
	"wallet.file":               "WALLET_FILE",
	"wallet.password":           "WALLET_PASSWORD",
	"faucet.network":            "NETWORK",
	"db.host":                   "DB_HOST",
	"db.password":               "DB_PASS",
	"alerts.mailjet_api_key":    "MAILJET_API_KEY",
	"alerts.mailjet_secret_key": "MAILJET_SECRET_KEY",
	"alerts.smtp_password":      "SMTP_PASSWORD",
	"log.level":                 "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("rpc.host", "127.0.0.1")
	v.SetDefault("rpc.port", "28088")
	v.SetDefault("rpc.timeout", 60*time.Second)
	v.SetDefault("faucet.network", string(address.Testnet))
	v.SetDefault("faucet.drip_amount", "1")
	v.SetDefault("faucet.balance_cache_ttl", 5*time.Second)
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("alerts.smtp_port", 587)
	v.SetDefault("log.level", "info")
}

// Load reads config.yaml from dir (if present) and overlays the environment.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind %s", env)
		}
	}

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
		logrus.Infof("no config file in %s, using defaults and environment", dir)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	cfgErr := &ConfigurationError{}

	required := []struct {
		key, env, value string
	}{
		{"rpc.host", "RPC_HOST", c.RPC.Host},
		{"rpc.port", "RPC_PORT", c.RPC.Port},
		{"rpc.username", "RPC_USER", c.RPC.Username},
		{"rpc.password", "RPC_PASSWORD", c.RPC.Password},
		{"wallet.file", "WALLET_FILE", c.Wallet.File},
		{"wallet.password", "WALLET_PASSWORD", c.Wallet.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			cfgErr.Missing = append(cfgErr.Missing, fmt.Sprintf("%s (%s)", r.key, r.env))
		}
	}

	if c.RPC.Timeout <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "rpc.timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "server.shutdown_timeout must be positive")
	}
	if _, err := address.ParseNetwork(c.Faucet.Network); err != nil {
		cfgErr.Invalid = append(cfgErr.Invalid, "faucet.network: "+err.Error())
	}
	if drip, err := utils.XMRToAtomic(c.Faucet.DripAmount); err != nil || drip == 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "faucet.drip_amount must be a positive XMR amount")
	}
	if c.Alerts.LowBalanceThreshold != "" {
		if _, err := utils.XMRToAtomic(c.Alerts.LowBalanceThreshold); err != nil {
			cfgErr.Invalid = append(cfgErr.Invalid, "alerts.low_balance_threshold: "+err.Error())
		}
	}
	switch c.Alerts.Provider {
	case "", "mailjet", "smtp":
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, "alerts.provider must be mailjet or smtp")
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return cfgErr
	}
	return nil
}

// Network returns the validated address network.
func (c *Config) Network() address.Network {
	n, _ := address.ParseNetwork(c.Faucet.Network)
	return n
}
