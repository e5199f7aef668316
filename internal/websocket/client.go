package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Inbound frames may carry base64 attachments up to the configured cap,
	// so the read limit sits above the 5 MiB default with room for encoding
	// overhead and the JSON envelope.
	maxMessageSize = 8 * 1024 * 1024
)

// Frame types exchanged over the live connection.
const (
	FrameTypeSendMessage = "send_message"
	FrameTypeMessage     = "message"
	FrameTypeAck         = "ack"
	FrameTypeError       = "error"
)

type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// UserID associated with this connection
	UserID uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte

	// Sink receives inbound send_message frames.
	Sink MessageSink
}

// readPump pumps messages from the websocket connection to the dispatcher.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			break
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.writeError("malformed frame")
			continue
		}

		c.handleFrame(&frame)
	}
}

func (c *Client) handleFrame(frame *Frame) {
	switch frame.Type {
	case FrameTypeSendMessage:
		if c.Sink == nil {
			c.writeError("messaging unavailable")
			return
		}
		res, err := c.Sink.HandleSendMessage(context.Background(), c.UserID, frame.Data)
		if err != nil {
			// A failed send never looks sent to the sender.
			c.writeError(err.Error())
			return
		}
		c.writeFrame(FrameTypeAck, res)

	default:
		c.Hub.logger.Debug("Client", "Unknown frame type", map[string]interface{}{"type": frame.Type, "user_id": c.UserID})
	}
}

func (c *Client) writeFrame(frameType string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	payload, _ := json.Marshal(Frame{Type: frameType, Data: raw})
	select {
	case c.Send <- payload:
	default:
	}
}

func (c *Client) writeError(message string) {
	c.writeFrame(FrameTypeError, map[string]string{"message": message})
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
