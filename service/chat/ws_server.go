package chat

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"marketgram/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and runs the connection's event loop: one
// reader goroutine dispatching frames to completion, one writer pump behind
// the Send queue. Teardown runs exactly once when the reader exits.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	client := NewClient(uuid.NewString(), ws, s.opts.SendQueueSize)
	s.addClient(client)
	logger.Infof("[ws] connected conn=%s remote=%s", client.ConnID, ws.RemoteAddr())

	go client.writePump(s.opts.PingPeriod, s.opts.WriteWait)

	pongWait := s.opts.PingPeriod * 10 / 9
	ws.SetReadLimit(s.opts.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s err=%v", client.ConnID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s err=%v", client.ConnID, rerr)
			} else {
				logger.Infof("[ws] read err conn=%s err=%v", client.ConnID, rerr)
			}
			break
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			// malformed frame is a protocol violation: fatal to this connection
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[ws] bad frame conn=%s err=%v sample=%q", client.ConnID, perr, sample)
			break
		}

		if derr := s.disp.Dispatch(context.Background(), &Context{S: s}, frame, client); derr != nil {
			// unknown types and bad payloads are logged and skipped; only
			// the transport decides when the connection dies
			logger.Infof("[ws] dispatch conn=%s type=%s err=%v", client.ConnID, frame.Type, derr)
			continue
		}
	}

	s.Teardown(client)
}
