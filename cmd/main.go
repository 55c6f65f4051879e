package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	faucet "xmr_faucet_back"
	"xmr_faucet_back/pkg/config"
	"xmr_faucet_back/pkg/handler"
	"xmr_faucet_back/pkg/metrics"
	"xmr_faucet_back/pkg/notify"
	"xmr_faucet_back/pkg/repository"
	"xmr_faucet_back/pkg/service"
	"xmr_faucet_back/pkg/utils"
	"xmr_faucet_back/pkg/walletrpc"
)

// openJournalDB is replaced in tests.
var openJournalDB = initDB

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Infoln("starting xmr faucet")
	if err := godotenv.Load(); err != nil {
		logrus.Infof(".env not loaded: %s", err)
	}

	cfg, err := config.Load("configs")
	if err != nil {
		logrus.Fatalf("refusing to start: %s", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	}
	if logrus.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		logrus.Fatalf("faucet: %s", err)
	}
	logrus.Info("faucet stopped")
}

// run serves the faucet until ctx is cancelled or the HTTP server fails. The wallet
// session is opened before the port is bound; on the way out the HTTP server is
// drained first, then the wallet is closed, then the database.
func run(ctx context.Context, cfg *config.Config) error {
	threshold, err := lowBalanceThreshold(cfg.Alerts.LowBalanceThreshold)
	if err != nil {
		return err
	}

	db, err := openJournalDB(ctx, cfg.DB)
	if err != nil {
		return errors.Wrap(err, "postgres journal")
	}
	defer closeDB(db)
	if db != nil {
		logrus.Info("disbursement journal stored in postgres")
	} else {
		logrus.Info("disbursement journal kept in memory")
	}

	rpcCfg := walletrpc.Config{
		Host:     cfg.RPC.Host,
		Port:     cfg.RPC.Port,
		Username: cfg.RPC.Username,
		Password: cfg.RPC.Password,
		Timeout:  cfg.RPC.Timeout,
	}
	session := walletrpc.NewSession(walletrpc.NewClient(rpcCfg), cfg.Wallet.File, cfg.Wallet.Password)
	openCtx, cancelOpen := context.WithTimeout(ctx, cfg.RPC.Timeout)
	err = session.Open(openCtx)
	cancelOpen()
	if err != nil {
		return errors.Wrapf(err, "wallet session at %s", rpcCfg.URL())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repos := repository.NewRepository(db)
	services := service.NewService(repos, session, service.FaucetOptions{
		Network:             cfg.Network(),
		DripAmount:          cfg.Faucet.DripAmount,
		BalanceCacheTTL:     cfg.Faucet.BalanceCacheTTL,
		LowBalanceThreshold: threshold,
		Notifier:            newNotifier(cfg.Alerts),
		Metrics:             metrics.New(reg),
	})
	handlers := handler.NewHandler(services, handler.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AdminToken:   cfg.Server.AdminToken,
		Gatherer:     reg,
	})

	srv := faucet.NewServer(cfg.Server.Port, handlers.InitRoute())
	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("listening on port %s, network %s", cfg.Server.Port, cfg.Network())
		serveErr <- srv.Run()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logrus.Info("shutdown signal received")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = errors.Wrap(err, "http server")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http shutdown: %s", err)
	}
	cancelShutdown()
	services.Close()

	closeCtx, cancelClose := context.WithTimeout(context.Background(), cfg.RPC.Timeout)
	defer cancelClose()
	if err := session.Close(closeCtx); err != nil && runErr == nil {
		runErr = errors.Wrap(err, "close wallet session")
	}
	return runErr
}

// lowBalanceThreshold parses the alert threshold in XMR. An empty value disables alerts.
func lowBalanceThreshold(xmr string) (uint64, error) {
	if xmr == "" {
		return 0, nil
	}
	threshold, err := utils.XMRToAtomic(xmr)
	if err != nil {
		return 0, errors.Wrap(err, "alerts.low_balance_threshold")
	}
	return threshold, nil
}

// initDB connects and migrates the journal database, or returns nil when none is configured.
func initDB(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	db, err := repository.NewPostgresDB(ctx, repository.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
	})
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func closeDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logrus.Errorf("postgres close: %s", err)
	}
}

func newNotifier(cfg config.AlertsConfig) notify.Notifier {
	switch cfg.Provider {
	case "mailjet":
		if cfg.MailjetAPIKey == "" || cfg.MailjetSecretKey == "" {
			logrus.Warn("MAILJET_API_KEY or MAILJET_SECRET_KEY not set, low balance alerts disabled")
			return notify.Nop{}
		}
		return notify.NewMailjetNotifier(cfg.MailjetAPIKey, cfg.MailjetSecretKey, cfg.From, cfg.To)
	case "smtp":
		return notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From, cfg.To)
	default:
		return notify.Nop{}
	}
}
