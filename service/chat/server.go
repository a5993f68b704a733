package chat

import (
	"sync"
	"time"

	"marketgram/logger"
	"marketgram/service/storage"
)

// Options tunes the gateway. Zero values fall back to safe defaults.
type Options struct {
	SendQueueSize  int
	FanoutWorkers  int
	FanoutQueue    int
	PingPeriod     time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

func (o *Options) norm() {
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = 64
	}
	if o.FanoutWorkers <= 0 {
		o.FanoutWorkers = 4
	}
	if o.FanoutQueue <= 0 {
		o.FanoutQueue = 256
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 54 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 64 * 1024
	}
}

// Server owns the relay state: the presence registry, the room table, the
// fanout pool and the delivery pipeline. All of it lives and dies with the
// server, not with package initialization.
type Server struct {
	opts     Options
	registry *Registry
	rooms    *Rooms
	fanout   *Fanout
	disp     *Dispatcher
	pipeline *Pipeline

	mu    sync.RWMutex
	conns map[string]*Client // every live connection, associated or not

	closeOnce sync.Once
}

func NewServer(store storage.Store, opts Options) *Server {
	opts.norm()
	s := &Server{
		opts:     opts,
		registry: NewRegistry(),
		rooms:    NewRooms(),
		fanout:   NewFanout(opts.FanoutWorkers, opts.FanoutQueue),
		disp:     NewDispatcher(),
		conns:    make(map[string]*Client),
	}
	s.pipeline = NewPipeline(store, s.registry)

	s.disp.Register(NewAssociateHandler())
	s.disp.Register(NewJoinRoomHandler())
	s.disp.Register(NewSendMessageHandler())
	return s
}

func (s *Server) Registry() *Registry { return s.registry }
func (s *Server) Rooms() *Rooms       { return s.rooms }
func (s *Server) Disp() *Dispatcher   { return s.disp }
func (s *Server) Pipeline() *Pipeline { return s.pipeline }

func (s *Server) addClient(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.ConnID] = c
}

func (s *Server) removeClient(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c.ConnID)
}

// AllClients snapshots every live connection for broadcasts.
func (s *Server) AllClients() []*Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Client, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	return out
}

// BroadcastPresence pushes the associated-user snapshot to every live
// connection through the fanout pool.
func (s *Server) BroadcastPresence() {
	s.fanout.Broadcast(s.AllClients(), BuildPresenceSnapshot(s.registry.Snapshot()))
}

// Teardown runs the Closed-state cleanup for one connection: presence
// release (identifier-checked), room purge, and a presence broadcast when
// the connection had been associated.
func (s *Server) Teardown(c *Client) {
	c.Close()
	s.removeClient(c)
	s.registry.Release(c)
	s.rooms.LeaveAll(c)
	if c.Associated() {
		s.BroadcastPresence()
	}
	logger.Infof("[ws] closed conn=%s user=%s", c.ConnID, c.UserID())
}

// Close shuts every live connection down and stops the fanout workers.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		for _, c := range s.AllClients() {
			s.Teardown(c)
		}
		s.fanout.Close()
	})
}
