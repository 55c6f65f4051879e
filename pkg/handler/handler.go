package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"xmr_faucet_back/pkg/middleware"
	"xmr_faucet_back/pkg/service"
)

type Config struct {
	AllowOrigins []string
	AdminToken   string
	Gatherer     prometheus.Gatherer
}

type Handler struct {
	service *service.Service
	cfg     Config
}

func NewHandler(service *service.Service, cfg Config) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
	}
}

func (h *Handler) InitRoute() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.Use(cors.New(h.corsConfig()))

	faucet := router.Group("/faucet")
	{
		faucet.GET("/balance", h.GetBalance)
		faucet.POST("/send", h.Send)
		faucet.GET("/history", middleware.AdminAuth(h.cfg.AdminToken), h.History)
	}

	router.GET("/healthz", h.Health)
	if h.cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}
	for _, origin := range h.cfg.AllowOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(h.cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = h.cfg.AllowOrigins
	return cfg
}
