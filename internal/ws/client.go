package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/cboy-pos/api/internal/auth"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingInterval = idleTimeout * 9 / 10

	// Terminals only send control frames.
	maxInboundBytes = 512
	sendQueueSize   = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Tokens are checked before upgrading.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Client is one signed-in terminal. Events queued on send are written to
// the connection in order, one frame each.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	staffID string
	role    string
	send    chan []byte
}

func (c *Client) staff() pos.Staff {
	return pos.Staff{ID: c.staffID, Role: c.role}
}

// ServeWS upgrades an authenticated request and attaches the terminal to
// the hub. The JWT is read from the token query parameter.
func ServeWS(hub *Hub, jwtSecret string, w http.ResponseWriter, r *http.Request) {
	claims, status := authorize(jwtSecret, r)
	if claims == nil {
		http.Error(w, http.StatusText(status), status)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade for %s: %v", claims.StaffID, err)
		return
	}

	c := &Client{
		hub:     hub,
		conn:    conn,
		staffID: claims.StaffID,
		role:    claims.Role,
		send:    make(chan []byte, sendQueueSize),
	}
	hub.register <- c

	go c.deliver()
	go c.listen()
}

func authorize(secret string, r *http.Request) (*auth.Claims, int) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return nil, http.StatusUnauthorized
	}
	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		return nil, http.StatusUnauthorized
	}
	return claims, http.StatusOK
}

// listen keeps the read deadline alive on pongs and detaches the client
// once the connection drops. Inbound data frames are discarded.
func (c *Client) listen() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundBytes)
	c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARN: websocket %s: %v", c.staffID, err)
			}
			return
		}
	}
}

// deliver writes queued events and periodic pings until the hub closes
// send or a write fails.
func (c *Client) deliver() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		var err error
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, nil)
				return
			}
			err = c.write(websocket.TextMessage, msg)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(kind, data)
}
