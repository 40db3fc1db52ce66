package ws

import (
	"context"
	"encoding/json"
	"time"

	"buzzergo/internal/common/uuid"
	"buzzergo/internal/services/buzzer"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be < pongWait
	maxMessageSize = 4096
)

// Engine is the part of the room engine the socket server drives.
type Engine interface {
	Handle(in buzzer.Inbound) []buzzer.Effect
}

type WsServer struct {
	hub      *Hub
	router   *Router
	engine   Engine
	ids      uuid.UUID
	upgrader websocket.Upgrader
}

func NewWsServer(h *Hub, engine Engine, ids uuid.UUID, allowedOrigins []string) *WsServer {
	policy := newOriginPolicy(allowedOrigins)
	srv := &WsServer{
		hub:    h,
		router: NewRouter(),
		engine: engine,
		ids:    ids,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.check,
		},
	}
	srv.registerHandlers() // ← all WS events configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry‑point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(maxMessageSize)

	// ─────────────────── Client connected ─────────────────────
	conn := newClientConn(s.ids.NewUUID(), rawConn)
	s.hub.register(conn)
	zap.L().Info("ws.connect", zap.String("conn", conn.id), zap.String("addr", ginCtx.Request.RemoteAddr))

	go conn.writePump()
	go s.reader(conn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	Register(s.router, buzzer.EventCreateRoom,
		func(_ context.Context, cc *ConnContext, _ CreateRoomRequest) error {
			s.engine.Handle(buzzer.Inbound{Kind: buzzer.KindCreate, ConnID: cc.ConnID})
			return nil
		},
	)
	Register(s.router, buzzer.EventJoinRoom,
		func(_ context.Context, cc *ConnContext, req JoinRoomRequest) error {
			s.engine.Handle(buzzer.Inbound{
				Kind:       buzzer.KindJoin,
				ConnID:     cc.ConnID,
				RoomCode:   req.RoomCode,
				PlayerName: req.PlayerName,
			})
			return nil
		},
	)
	Register(s.router, buzzer.EventStartGame,
		func(_ context.Context, cc *ConnContext, req RoomRequest) error {
			s.engine.Handle(buzzer.Inbound{Kind: buzzer.KindStart, ConnID: cc.ConnID, RoomCode: req.RoomCode})
			return nil
		},
	)
	Register(s.router, buzzer.EventBuzz,
		func(_ context.Context, cc *ConnContext, req BuzzRequest) error {
			s.engine.Handle(buzzer.Inbound{Kind: buzzer.KindBuzz, ConnID: cc.ConnID, RoomCode: req.RoomCode})
			return nil
		},
	)
	Register(s.router, buzzer.EventNextRound,
		func(_ context.Context, cc *ConnContext, req RoomRequest) error {
			s.engine.Handle(buzzer.Inbound{Kind: buzzer.KindNextRound, ConnID: cc.ConnID, RoomCode: req.RoomCode})
			return nil
		},
	)
}

func (s *WsServer) reader(conn *clientConn) {
	defer func() {
		s.engine.Handle(buzzer.Inbound{Kind: buzzer.KindDisconnect, ConnID: conn.id})
		s.hub.unregister(conn)
		zap.L().Info("ws.disconnect", zap.String("conn", conn.id))
	}()

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{ConnID: conn.id}

	for {
		_, raw, err := conn.rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("ws.read", zap.String("conn", conn.id), zap.Error(err))
			}
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.hub.Send(conn.id, buzzer.EventError, buzzer.ErrorBody{Error: errInvalidPayload.Error()})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			s.hub.Send(conn.id, buzzer.EventError, buzzer.ErrorBody{Error: err.Error()})
		}
	}
}
