package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xmr_faucet_back/pkg/config"
)

// fakeWalletRPC stands in for monero-wallet-rpc and records the order of calls.
type fakeWalletRPC struct {
	t          *testing.T
	faucetPort string
	openErr    bool
	db         *sqlx.DB

	balanceDelay   time.Duration
	balanceStarted chan struct{}
	startOnce      sync.Once

	mu                  sync.Mutex
	methods             []string
	faucetBoundAtOpen   bool
	faucetBoundAtClose  bool
	dbOpenAtCloseWallet bool
}

func (f *fakeWalletRPC) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var call struct {
		Method string `json:"method"`
	}
	assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&call))

	reply := `{"jsonrpc":"2.0","id":"1","result":{}}`
	switch call.Method {
	case "open_wallet":
		f.mu.Lock()
		f.faucetBoundAtOpen = listening(f.faucetPort)
		f.mu.Unlock()
		if f.openErr {
			reply = `{"jsonrpc":"2.0","id":"1","error":{"code":-1,"message":"Failed to open wallet"}}`
		}
	case "get_balance":
		f.startOnce.Do(func() { close(f.balanceStarted) })
		time.Sleep(f.balanceDelay)
		reply = `{"jsonrpc":"2.0","id":"1","result":{"balance":5000000000000,"unlocked_balance":5000000000000}}`
	case "close_wallet":
		f.mu.Lock()
		f.faucetBoundAtClose = listening(f.faucetPort)
		f.dbOpenAtCloseWallet = f.db != nil && f.db.Ping() == nil
		f.mu.Unlock()
	}

	f.mu.Lock()
	f.methods = append(f.methods, call.Method)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(reply))
}

func (f *fakeWalletRPC) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.methods...)
}

func listening(port string) bool {
	conn, err := net.DialTimeout("tcp", "127.0.0.1:"+port, 200*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func testConfig(t *testing.T, rpc *httptest.Server, port string) *config.Config {
	t.Helper()
	u, err := url.Parse(rpc.URL)
	require.NoError(t, err)
	host, rpcPort, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)

	return &config.Config{
		Server: config.ServerConfig{Port: port, AllowOrigins: []string{"*"}, ShutdownTimeout: 5 * time.Second},
		RPC:    config.RPCConfig{Host: host, Port: rpcPort, Timeout: 5 * time.Second},
		Wallet: config.WalletConfig{File: "faucet_wallet", Password: "secret"},
		Faucet: config.FaucetConfig{Network: "testnet", DripAmount: "1"},
	}
}

func TestRunFailsBeforeBindingWhenWalletDoesNotOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	port := freePort(t)
	rpc := &fakeWalletRPC{t: t, faucetPort: port, openErr: true, balanceStarted: make(chan struct{})}
	server := httptest.NewServer(rpc)
	defer server.Close()

	err := run(context.Background(), testConfig(t, server, port))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to open wallet")
	assert.Equal(t, []string{"open_wallet"}, rpc.calls())
	rpc.mu.Lock()
	assert.False(t, rpc.faucetBoundAtOpen)
	rpc.mu.Unlock()
	assert.False(t, listening(port), "faucet port must stay unbound")
}

func TestRunRejectsBadThresholdBeforeWalletCalls(t *testing.T) {
	port := freePort(t)
	rpc := &fakeWalletRPC{t: t, faucetPort: port, balanceStarted: make(chan struct{})}
	server := httptest.NewServer(rpc)
	defer server.Close()

	cfg := testConfig(t, server, port)
	cfg.Alerts.LowBalanceThreshold = "lots"

	err := run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alerts.low_balance_threshold")
	assert.Empty(t, rpc.calls())
}

func TestRunShutdownOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	db := sqlx.NewDb(mockDB, "sqlmock")
	openJournalDB = func(context.Context, config.DBConfig) (*sqlx.DB, error) { return db, nil }
	t.Cleanup(func() { openJournalDB = initDB })

	port := freePort(t)
	rpc := &fakeWalletRPC{
		t:              t,
		faucetPort:     port,
		db:             db,
		balanceDelay:   300 * time.Millisecond,
		balanceStarted: make(chan struct{}),
	}
	server := httptest.NewServer(rpc)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, testConfig(t, server, port)) }()

	base := "http://127.0.0.1:" + port
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	inFlight := make(chan int, 1)
	go func() {
		resp, err := http.Get(base + "/faucet/balance")
		if err != nil {
			inFlight <- 0
			return
		}
		resp.Body.Close()
		inFlight <- resp.StatusCode
	}()

	<-rpc.balanceStarted
	cancel()

	assert.Equal(t, http.StatusOK, <-inFlight, "in-flight request must complete")
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	assert.Equal(t, []string{"open_wallet", "get_balance", "close_wallet"}, rpc.calls())
	rpc.mu.Lock()
	defer rpc.mu.Unlock()
	assert.False(t, rpc.faucetBoundAtClose, "http server must stop before the wallet closes")
	assert.True(t, rpc.dbOpenAtCloseWallet, "database must close after the wallet")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLowBalanceThreshold(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		{name: "empty_disables", input: "", want: 0},
		{name: "fractional", input: "0.5", want: 500_000_000_000},
		{name: "garbage", input: "lots", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lowBalanceThreshold(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
