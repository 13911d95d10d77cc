package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"RiskPulse/internal/domain/models"
	drepo "RiskPulse/internal/domain/repository"
	applogger "RiskPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a PriceStream backed by a WebSocket price feed.
type Client struct {
	logger         *applogger.Logger
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new WebSocket PriceStream.
func New(lgr *applogger.Logger, apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration) drepo.PriceStream {
	return &Client{
		logger:         lgr,
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := c.websocketURL
	if c.apiKey != "" {
		u = fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("pricefeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.logger.Info("pricefeed connected", applogger.String("url", c.websocketURL))
	return nil
}

// Subscribe subscribes to configured symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("pricefeed not connected")
	}
	for _, s := range c.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": s}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		c.logger.Debug("pricefeed subscribed", applogger.String("symbol", s))
	}
	return nil
}

type feedTick struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type feedMessage struct {
	Type string     `json:"type"`
	Data []feedTick `json:"data"`
}

// Read streams PriceUpdate events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.PriceUpdate, <-chan error) {
	updates := make(chan *models.PriceUpdate, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(updates)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("pricefeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("pricefeed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-price frames
					continue
				}
				if m.Type != "trade" && m.Type != "price" {
					continue
				}
				for _, d := range m.Data {
					u := &models.PriceUpdate{
						Symbol:       d.S,
						Denomination: models.DenomFiat,
						Price:        d.P,
						Timestamp:    d.T / 1000,
					}
					select {
					case updates <- u:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return updates, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
