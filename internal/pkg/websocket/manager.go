package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetwatch/internal/pkg/constants"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/metrics"
	"github.com/piresc/fleetwatch/internal/pkg/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

// ErrClientClosed is returned when sending to a disconnected client
var ErrClientClosed = errors.New("websocket client closed")

// Client is a connected dashboard. Its filter may change while connected.
type Client struct {
	ID      string
	AgentID string

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	mu     sync.RWMutex
	filter models.Filter
}

// Filter returns the filter the dashboard currently watches
func (c *Client) Filter() models.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// SetFilter replaces the watched filter
func (c *Client) SetFilter(f models.Filter) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Manager manages dashboard connections. Every client has its own writer
// goroutine so a slow dashboard never blocks a broadcast.
type Manager struct {
	sync.RWMutex
	clients  map[*Client]struct{}
	upgrader websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager() *Manager {
	return &Manager{
		clients: make(map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Upgrade switches the request to a websocket and registers the client
func (m *Manager) Upgrade(c echo.Context, agentID string, filter models.Filter) (*Client, error) {
	conn, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:      uuid.NewString(),
		AgentID: agentID,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		filter:  filter,
	}
	m.AddClient(client)
	go m.writePump(client)

	logger.Info("Dashboard connected",
		logger.String("client_id", client.ID),
		logger.String("agent_id", agentID))
	return client, nil
}

// AddClient safely adds a client to the manager
func (m *Manager) AddClient(client *Client) {
	m.Lock()
	m.clients[client] = struct{}{}
	count := len(m.clients)
	m.Unlock()
	metrics.DashboardClients.Set(float64(count))
}

// RemoveClient safely removes and closes a client
func (m *Manager) RemoveClient(client *Client) {
	m.Lock()
	_, ok := m.clients[client]
	delete(m.clients, client)
	count := len(m.clients)
	m.Unlock()

	client.close()
	if ok {
		metrics.DashboardClients.Set(float64(count))
		logger.Info("Dashboard disconnected", logger.String("client_id", client.ID))
	}
}

// Clients returns the connected clients
func (m *Manager) Clients() []*Client {
	m.RLock()
	defer m.RUnlock()
	clients := make([]*Client, 0, len(m.clients))
	for c := range m.clients {
		clients = append(clients, c)
	}
	return clients
}

// Count returns the number of connected clients
func (m *Manager) Count() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.clients)
}

// ReadLoop blocks reading client messages until the connection drops, then
// unregisters the client
func (m *Manager) ReadLoop(client *Client, onMessage func(*Client, []byte)) {
	defer m.RemoveClient(client)

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Dashboard read failed",
					logger.String("client_id", client.ID),
					logger.Err(err))
			}
			return
		}
		if onMessage != nil {
			onMessage(client, msg)
		}
	}
}

// SendMessage queues an event for a client. A client whose buffer is full
// is disconnected.
func (m *Manager) SendMessage(client *Client, event string, data interface{}) error {
	payload, err := json.Marshal(models.WSMessage{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("error marshaling message data: %w", err)
	}

	select {
	case <-client.done:
		return ErrClientClosed
	default:
	}

	select {
	case client.send <- payload:
		return nil
	default:
		logger.Warn("Dashboard too slow, disconnecting", logger.String("client_id", client.ID))
		m.RemoveClient(client)
		return ErrClientClosed
	}
}

// SendErrorMessage sends an error message to a WebSocket client
func (m *Manager) SendErrorMessage(client *Client, code string, message string) error {
	return m.SendMessage(client, constants.EventError, models.WSErrorMessage{
		Code:    code,
		Message: message,
	})
}

// Close disconnects every client
func (m *Manager) Close() {
	for _, c := range m.Clients() {
		m.RemoveClient(c)
	}
}

func (m *Manager) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		m.RemoveClient(client)
	}()

	for {
		select {
		case <-client.done:
			return
		case msg := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
