package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.InventoryHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/dealership", handler.Dealership)

	vehicles := r.Group("/vehicles")
	{
		vehicles.GET("", handler.ListVehicles)
		vehicles.POST("", handler.AddVehicle)
		vehicles.GET("/:vin", handler.GetVehicle)
		vehicles.DELETE("/:vin", handler.RemoveVehicle)
		vehicles.GET("/:vin/quote", handler.Quote)

		search := vehicles.Group("/search")
		search.GET("/price", handler.SearchByPrice)
		search.GET("/make-model", handler.SearchByMakeModel)
		search.GET("/year", handler.SearchByYear)
		search.GET("/color", handler.SearchByColor)
		search.GET("/mileage", handler.SearchByMileage)
		search.GET("/type", handler.SearchByType)
	}

	r.GET("/load-report", handler.LoadReport)
	r.POST("/load-report/repairs", handler.Repair)

	r.POST("/contracts/sales", handler.CreateSale)
	r.POST("/contracts/leases", handler.CreateLease)

	r.GET("/reports/summary", handler.Summary)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
