package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"BitSight/pkg/logger"
)

// TickHandler receives each pushed price update.
type TickHandler func(symbol string, price float64, at time.Time)

// StreamConfig holds the WebSocket stream settings.
type StreamConfig struct {
	URL            string // e.g. wss://stream.binance.com:9443/ws
	Symbol         string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// Stream subscribes to the miniTicker WebSocket channel for one symbol and
// pushes price updates into a handler. It reconnects on read failures until
// the context is cancelled.
type Stream struct {
	cfg     StreamConfig
	handler TickHandler
	log     *logger.Logger

	// mu guards conn and connected; the read loop, the ping loop and the
	// shutdown path all touch them.
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewStream creates a miniTicker stream.
func NewStream(cfg StreamConfig, handler TickHandler, log *logger.Logger) *Stream {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Stream{cfg: cfg, handler: handler, log: log}
}

// Connect establishes the WebSocket connection to the symbol's channel.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s/%s@miniTicker", s.cfg.URL, strings.ToLower(s.cfg.Symbol))
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance stream connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.log.Info("binance stream connected", logger.String("symbol", s.cfg.Symbol))
	return nil
}

// current returns the live connection, nil when disconnected.
func (s *Stream) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Start connects and runs the read loop in the background, reconnecting on
// failures until ctx is cancelled.
func (s *Stream) Start(ctx context.Context) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	go s.pingLoop(ctx)
	go s.readLoop(ctx)
	return nil
}

type miniTicker struct {
	Event  string `json:"e"`
	TimeMs int64  `json:"E"`
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

func (s *Stream) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		default:
		}

		conn := s.current()
		if conn == nil {
			s.reconnect(ctx)
			continue
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("binance stream read failed", logger.Error(err))
			s.reconnect(ctx)
			continue
		}

		var m miniTicker
		if err := json.Unmarshal(b, &m); err != nil || m.Event != "24hrMiniTicker" {
			continue
		}
		price, err := strconv.ParseFloat(m.Close, 64)
		if err != nil {
			continue
		}
		s.handler(m.Symbol, price, time.UnixMilli(m.TimeMs).UTC())
	}
}

func (s *Stream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if conn := s.current(); conn != nil {
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

func (s *Stream) reconnect(ctx context.Context) {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.cfg.ReconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		s.log.Warn("binance stream reconnect failed", logger.Error(err))
	}
}

// Close closes the connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.connected = false
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
