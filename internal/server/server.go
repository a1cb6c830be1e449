package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/handler"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/repository"
)

// Server exposes the read-only analytical API over the warehouse tables.
type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	logger *zap.Logger
}

func NewServer(db *sqlx.DB, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		logger: logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	warehouseRepo := repository.NewWarehouseRepository(s.db, s.logger)
	analytics := handler.NewAnalyticsHandler(warehouseRepo, s.logger)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := s.router.Group("/api")
	{
		api.GET("/channels", analytics.GetChannels)
		api.GET("/channels/:name/activity", analytics.GetChannelActivity)
		api.GET("/search/messages", analytics.SearchMessages)
		api.GET("/reports/medical-content", analytics.GetMedicalContentStats)
		api.GET("/reports/engagement-trends", analytics.GetEngagementTrends)
		api.GET("/reports/top-products", analytics.GetTopProducts)
	}
}

func (s *Server) Run(addr string) error {
	s.logger.Info("API server starting", zap.String("addr", addr))
	return s.router.Run(addr)
}
