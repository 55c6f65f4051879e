package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xmr_faucet_back/internal/address"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("RPC_USER", "rpcuser")
	t.Setenv("RPC_PASSWORD", "rpcpass")
	t.Setenv("WALLET_FILE", "faucet_wallet")
	t.Setenv("WALLET_PASSWORD", "walletpass")
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RPC_PORT", "38088")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.RPC.Host)
	assert.Equal(t, "38088", cfg.RPC.Port)
	assert.Equal(t, "rpcuser", cfg.RPC.Username)
	assert.Equal(t, "faucet_wallet", cfg.Wallet.File)
	assert.Equal(t, "1", cfg.Faucet.DripAmount)
	assert.Equal(t, 5*time.Second, cfg.Faucet.BalanceCacheTTL)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, address.Testnet, cfg.Network())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("RPC_USER", "rpcuser")

	_, err := Load(t.TempDir())
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.ElementsMatch(t, []string{
		"rpc.password (RPC_PASSWORD)",
		"wallet.file (WALLET_FILE)",
		"wallet.password (WALLET_PASSWORD)",
	}, cfgErr.Missing)
}

func TestLoadConfigFile(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()
	yaml := []byte("faucet:\n  network: stagenet\n  drip_amount: \"0.25\"\nrpc:\n  host: wallet.internal\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, address.Stagenet, cfg.Network())
	assert.Equal(t, "0.25", cfg.Faucet.DripAmount)
	assert.Equal(t, "wallet.internal", cfg.RPC.Host)
}

func TestValidateInvalid(t *testing.T) {
	cfg := Config{
		Server: ServerConfig{ShutdownTimeout: time.Second},
		RPC:    RPCConfig{Host: "h", Port: "1", Username: "u", Password: "p", Timeout: time.Second},
		Wallet: WalletConfig{File: "f", Password: "p"},
		Faucet: FaucetConfig{Network: "regtest", DripAmount: "0"},
		Alerts: AlertsConfig{Provider: "pigeon"},
	}

	err := cfg.Validate()
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Empty(t, cfgErr.Missing)
	assert.Len(t, cfgErr.Invalid, 3)
}

func TestLoadRejectsNonPositiveTimeouts(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()
	yaml := []byte("rpc:\n  timeout: 0s\nserver:\n  shutdown_timeout: -1s\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	_, err := Load(dir)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.ElementsMatch(t, []string{
		"rpc.timeout must be positive",
		"server.shutdown_timeout must be positive",
	}, cfgErr.Invalid)
}
