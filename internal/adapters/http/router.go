package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/adapters/ws"
	"github.com/dkeye/Cinema/internal/app"
	"github.com/dkeye/Cinema/internal/config"
)

// ClientTokenMiddleware gives every browser a stable opaque token; the
// user directory turns it into an identity. No credentials anywhere.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, engine *app.Engine, hub *ws.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("CinemaSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	roomAPI := &RoomAPI{Engine: engine}
	socket := ws.NewController(engine, hub, cfg.ReadLimit, cfg.SendBuffer, cfg.PingPeriod)

	api := r.Group("/api")
	api.GET("/whoami", roomAPI.whoAmI)
	api.PUT("/profile", roomAPI.updateProfile)
	api.POST("/rooms", roomAPI.createRoom)
	api.GET("/rooms", roomAPI.listRooms)
	api.GET("/rooms/:id", roomAPI.getRoom)
	api.DELETE("/rooms/:id", roomAPI.deleteRoom)
	api.GET("/rooms/:id/messages", roomAPI.getMessages)
	api.GET("/ws", func(c *gin.Context) {
		socket.HandleSocket(ctx, c)
	})

	return r
}
