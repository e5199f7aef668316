package websocket

import (
	"context"

	"healthlink-be/internal/dto"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// MessageSink receives inbound send_message frames from live connections.
// Implemented by the chat service.
type MessageSink interface {
	HandleSendMessage(ctx context.Context, senderId uuid.UUID, payload []byte) (*dto.MessageResponse, error)
}

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID, sink MessageSink) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, Send: make(chan []byte, 256), Sink: sink}
	client.Hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
