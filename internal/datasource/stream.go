package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-edge/internal/models"
)

// OddsUpdate is a pushed odds refresh for one race
type OddsUpdate struct {
	Op     string           `json:"op"`
	RaceID string           `json:"race_id"`
	Odds   models.OddsTable `json:"odds"`
}

// OddsHandler is called for each odds update received from the stream
type OddsHandler func(update OddsUpdate)

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// OddsStreamClient maintains a WebSocket subscription to the odds push
// feed and fans updates out to registered handlers.
type OddsStreamClient struct {
	conn            *websocket.Conn
	streamURL       string
	apiKey          string
	mu              sync.RWMutex
	isConnected     bool
	closed          bool
	handlers        []OddsHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Logger
}

// NewOddsStreamClient creates a new stream client
func NewOddsStreamClient(streamURL, apiKey string, logger *logrus.Logger) *OddsStreamClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &OddsStreamClient{
		streamURL:       streamURL,
		apiKey:          apiKey,
		handlers:        make([]OddsHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// RegisterHandler adds an odds update handler
func (s *OddsStreamClient) RegisterHandler(handler OddsHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Connect establishes the WebSocket connection and starts the read loop
func (s *OddsStreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to odds stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.closed = false
	s.lastMessageTime = time.Now()

	s.logger.WithField("url", s.streamURL).Info("Connected to odds stream")

	go s.readMessages()

	return nil
}

// Subscribe sends a subscription message for the given race IDs
func (s *OddsStreamClient) Subscribe(raceIDs []string) error {
	s.mu.RLock()
	if !s.isConnected || s.conn == nil {
		s.mu.RUnlock()
		return fmt.Errorf("not connected to odds stream")
	}
	s.mu.RUnlock()

	msg := map[string]interface{}{
		"op":       "subscribe",
		"api_key":  s.apiKey,
		"race_ids": raceIDs,
	}
	return s.sendMessage(msg)
}

// Close shuts the connection down
func (s *OddsStreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if !s.isConnected || s.conn == nil {
		return nil
	}
	s.isConnected = false
	return s.conn.Close()
}

func (s *OddsStreamClient) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// IsConnected reports the connection state
func (s *OddsStreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

func (s *OddsStreamClient) sendMessage(msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

func (s *OddsStreamClient) readMessages() {
	for {
		s.mu.RLock()
		conn := s.conn
		connected := s.isConnected
		s.mu.RUnlock()

		if !connected || conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.WithError(err).Warn("Odds stream read failed")
			s.handleDisconnect()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		var update OddsUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			s.logger.WithError(err).Debug("Skipping malformed stream message")
			continue
		}
		if update.Op != "odds" || update.RaceID == "" {
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()
		for _, handler := range handlers {
			handler(update)
		}
	}
}

// handleDisconnect retries the connection with exponential backoff
func (s *OddsStreamClient) handleDisconnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.isConnected = false
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()

	backoff := s.reconnectConfig.InitialBackoff
	for attempt := 1; attempt <= s.reconnectConfig.MaxRetries; attempt++ {
		time.Sleep(backoff)

		if s.isClosed() {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := s.Connect(ctx)
		cancel()
		if err == nil {
			s.logger.WithField("attempt", attempt).Info("Odds stream reconnected")
			return
		}

		s.logger.WithError(err).WithField("attempt", attempt).Warn("Odds stream reconnect failed")
		backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
		if backoff > s.reconnectConfig.MaxBackoff {
			backoff = s.reconnectConfig.MaxBackoff
		}
	}

	s.logger.Error("Odds stream reconnect attempts exhausted")
}
