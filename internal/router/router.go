package router

import (
	"fmt"
	"strings"

	"github.com/comanda-next/internal/cache"
	"github.com/comanda-next/internal/config"
	publichandlers "github.com/comanda-next/internal/http/handlers/public"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	return buildEngine(cfg, c, cache.Client(), log)
}

func buildEngine(cfg *config.Config, c *provider.Container, redisClient *redis.Client, log *zap.Logger) *gin.Engine {
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "cmd"
	}
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}
	sessionRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:session", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests * 3,
		MessageKey:    "error.rate_limited",
	}
	checkoutLimiter := RateLimitMiddleware(redisClient, checkoutRule, KeyBySessionAndUnit)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 会话接口（无需鉴权）
		apiV1.POST("/sessions", RateLimitMiddleware(redisClient, sessionRule, KeyByIP), publicHandler.CreateSession)

		// 桌台会话接口
		unit := apiV1.Group("/units/:unit_id")
		unit.Use(SessionAuthMiddleware(c.SessionService))
		{
			unit.PUT("/table", publicHandler.BindTable)
			unit.GET("/table", publicHandler.GetTable)
			unit.DELETE("/table", publicHandler.ClearTable)

			unit.GET("/catalog", publicHandler.GetCatalog)
			unit.GET("/catalog/categories", publicHandler.GetCategories)

			unit.GET("/cart", publicHandler.GetCart)
			unit.DELETE("/cart", publicHandler.ClearCart)
			unit.PUT("/cart/items/:product_id", publicHandler.SetCartItem)
			unit.DELETE("/cart/items/:product_id", publicHandler.RemoveCartItem)
			unit.GET("/cart/totals", publicHandler.GetCartTotals)

			unit.POST("/checkout/orders", checkoutLimiter, publicHandler.SubmitOrder)
			unit.GET("/checkout/orders", publicHandler.ListOrders)
			unit.POST("/checkout/bill", checkoutLimiter, publicHandler.FinalizeBill)
			unit.GET("/checkout/state", publicHandler.GetCheckoutState)
		}
	}

	return r
}
