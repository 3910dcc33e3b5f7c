package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
	"github.com/sudip490/goldsilver-sub000/src/service"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Refresh    *service.RefreshService
	Dispatcher interfaces.IDispatcher
	engine     *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MLatestData // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client

	// Local cache
	latestState *models.MLatestData
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, log *logger.Logger, refresh *service.RefreshService, dispatcher interfaces.IDispatcher) *APIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:     cfg,
		Logger:     log,
		Refresh:    refresh,
		Dispatcher: dispatcher,
		engine:     gin.Default(),
		clients:    make(map[*Client]struct{}),
		// Buffered channel so a slow client cannot stall a cycle
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MLatestData{
			Type: "INITIAL",
		},
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/price", s.getPrice)
	s.engine.POST("/api/notify/bulk", s.postNotifyBulk)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	// Clean shutdown
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// getPrice serves the latest market snapshot. The response never blocks on
// notification bookkeeping: a cached snapshot is returned immediately and a
// background refresh is kicked off; only the very first request with no
// cached state runs a cycle inline.
func (s *APIServer) getPrice(c *gin.Context) {
	snapshot := s.Refresh.Latest()

	if snapshot == nil {
		// RunCycle returns the snapshot alongside a persistence error; a store
		// failure must not hide quotes that were fetched fine.
		fresh, err := s.Refresh.RunCycle(c.Request.Context())
		if err != nil {
			s.Logger.Error("Inline cycle failed: %v", err)
		}
		if fresh == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "price data unavailable"})
			return
		}
		snapshot = fresh
	} else {
		// Background refresh must outlive this request, so it cannot use the
		// request context.
		s.Refresh.TriggerAsync(context.Background())
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes":         snapshot.Quotes,
		"spot":           snapshot.Spot,
		"exchange_rates": snapshot.Rates,
		"gold_history":   snapshot.GoldHistory,
		"silver_history": snapshot.SilverHistory,
		"timestamp":      snapshot.FetchedAt.Unix(),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) postNotifyBulk(c *gin.Context) {
	var payload models.MPricePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	if payload.GoldPrice <= 0 || payload.SilverPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gold and silver prices must be positive"})
		return
	}

	result := s.Dispatcher.DispatchAll(payload)
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": timestamp,
	})
}
