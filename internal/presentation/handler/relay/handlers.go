package relay

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/chatrelay/internal/infrastructure/configs"
	"github.com/hilthontt/chatrelay/internal/infrastructure/logging"
	"github.com/hilthontt/chatrelay/internal/infrastructure/ws"
)

type Handler struct {
	core     *ws.Core
	cfg      configs.RelayConfig
	upgrader websocket.Upgrader
	logger   logging.Logger
}

func NewHandler(core *ws.Core, httpCfg configs.HTTPConfig, relayCfg configs.RelayConfig, logger logging.Logger) *Handler {
	return &Handler{
		core: core,
		cfg:  relayCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(httpCfg.AllowedOrigins),
		},
		logger: logger,
	}
}

// originChecker admits requests with no Origin header (non-browser clients)
// and browser requests from the configured allow-list.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWS godoc
// @Summary      Connect to the relay
// @Description  Upgrades the request to a WebSocket session; join, message and typing frames flow over it
// @Tags         relay
// @Success      101 {object} map[string]interface{} "Switching Protocols"
// @Failure      403 {object} map[string]interface{} "Origin not allowed"
// @Router       /ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Warn(logging.Relay, logging.Connection, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ClientIp:     r.RemoteAddr,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, h.cfg.SendBuffer)
	h.core.Register() <- client

	h.logger.Info(logging.Relay, logging.Connection, "websocket session established", map[logging.ExtraKey]any{
		logging.ClientIp: r.RemoteAddr,
	})

	go client.WritePump(h.cfg.PingInterval, h.cfg.WriteWait)
	go client.ReadPump(h.core, h.cfg.PongWait)
}
