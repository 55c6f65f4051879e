package walletrpc

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"xmr_faucet_back/models"
)

const jsonRPCPath = "/json_rpc"

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Timeout  time.Duration
}

func (c Config) URL() string {
	return "http://" + net.JoinHostPort(c.Host, c.Port)
}

// Client talks JSON-RPC 2.0 to monero-wallet-rpc.
type Client struct {
	http   *resty.Client
	nextID atomic.Uint64
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	http := resty.New().
		SetBaseURL(cfg.URL()).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Username != "" {
		http.SetDigestAuth(cfg.Username, cfg.Password)
	}

	return &Client{http: http}
}

func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	id := strconv.FormatUint(c.nextID.Add(1), 10)

	var out response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request{JSONRPC: "2.0", ID: id, Method: method, Params: params}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(jsonRPCPath)
	if err != nil {
		return errors.Wrapf(err, "wallet rpc %s", method)
	}
	if resp.IsError() {
		return errors.Errorf("wallet rpc %s: http status %d", method, resp.StatusCode())
	}
	if out.Error != nil {
		logrus.WithFields(logrus.Fields{
			"method": method,
			"code":   out.Error.Code,
		}).Debug(out.Error.Message)
		return errors.Wrapf(out.Error, "wallet rpc %s", method)
	}

	if result == nil || len(out.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(out.Result, result); err != nil {
		return errors.Wrapf(err, "wallet rpc %s: decode result", method)
	}
	return nil
}

func (c *Client) OpenWallet(ctx context.Context, filename, password string) error {
	return c.call(ctx, "open_wallet", openWalletParams{Filename: filename, Password: password}, nil)
}

// CloseWallet stores the wallet file and closes it on the daemon side.
func (c *Client) CloseWallet(ctx context.Context) error {
	return c.call(ctx, "close_wallet", closeWalletParams{AutosaveCurrent: true}, nil)
}

func (c *Client) GetBalance(ctx context.Context, accountIndex uint32) (models.Balance, error) {
	var res getBalanceResult
	if err := c.call(ctx, "get_balance", getBalanceParams{AccountIndex: accountIndex}, &res); err != nil {
		return models.Balance{}, err
	}
	return models.Balance{Total: res.Balance, Unlocked: res.UnlockedBalance}, nil
}

// RescanSpent asks the daemon to recheck which wallet outputs are already spent.
func (c *Client) RescanSpent(ctx context.Context) error {
	return c.call(ctx, "rescan_spent", nil, nil)
}

// Transfer builds a transaction and, unless DoNotRelay is set, broadcasts it.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	var res TransferResult
	if err := c.call(ctx, "transfer", req, &res); err != nil {
		return TransferResult{}, err
	}
	if res.TxHash == "" {
		return TransferResult{}, errors.New("wallet rpc transfer: empty tx_hash in result")
	}
	return res, nil
}
