package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/app"
	"github.com/dkeye/Cinema/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller owns the websocket endpoint: upgrades, pumps, and the
// inbound event dispatch into the engine.
type Controller struct {
	Engine     *app.Engine
	Hub        *Hub
	ReadLimit  int64
	SendBuf    int
	PingPeriod time.Duration
	chatLimit  *RateLimiter
}

func NewController(engine *app.Engine, hub *Hub, readLimit int64, sendBuf int, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{
		Engine:     engine,
		Hub:        hub,
		ReadLimit:  readLimit,
		SendBuf:    sendBuf,
		PingPeriod: pingPeriod,
		chatLimit:  NewRateLimiter(10, 10*time.Second),
	}
}

// pongWait is the read deadline; pings go out at 9/10 of it so a live
// peer always answers in time.
func (ctl *Controller) pongWait() time.Duration {
	return ctl.PingPeriod * 10 / 9
}

// HandleSocket upgrades the request and binds a fresh connection id.
// The client token cookie identifies the user; the connection id is
// minted per socket so two tabs of one user stay distinguishable.
func (ctl *Controller) HandleSocket(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		sock.SetReadLimit(ctl.ReadLimit)
	}

	connID := domain.ConnectionID(uuid.NewString())
	conn := newWSConn(sock, ctl.SendBuf)
	user := ctl.Engine.Directory.GetOrCreate(token)

	ctl.Hub.add(connID, conn)
	ctl.Engine.Registry.Bind(connID, user.ID)
	log.Info().Str("module", "ws").Str("conn", string(connID)).Str("user", string(user.ID)).Msg("new connection")

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ctl.writePump(ctx, conn)
		cancel()
	}()
	go func() {
		ctl.readPump(ctx, connID, conn)
		cancel()
		ctl.Hub.remove(connID)
		ctl.Engine.Disconnect(connID)
	}()
}
