package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/blogflow/backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Same policy as the CORS middleware
	},
}

// HandleFeed godoc
// @Summary Live post feed
// @Description WebSocket; delivers the full date-sorted post list on connect and after every change
// @Tags Posts
// @Router /ws/posts [get]
func (s *Server) HandleFeed(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return nil
	}

	client := services.NewFeedClient(s.Hub, conn, c.RealIP())
	s.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return nil
}

// FeedStats godoc
// @Summary Live feed statistics
// @Tags Posts
// @Produce json
// @Success 200 {object} map[string]interface{} "Subscriber count"
// @Router /ws/stats [get]
func (s *Server) FeedStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"clients": s.Hub.ClientCount(),
	})
}
