package events

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the editor frontend is served from another origin
	},
}

// WSHandler upgrades to a websocket, greets the client with the current
// dataset list and then subscribes it to dataset events. datasets may be nil.
func WSHandler(hub *Hub, datasets func() []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		// the welcome goes out before Add so it never races a broadcast
		if err := writeWelcome(ws, datasets); err != nil {
			log.Printf("[events] welcome failed: %v", err)
			_ = ws.Close()
			return
		}
		hub.Add(ws)
		log.Println("[events] client connected")

		ws.SetReadLimit(512)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(ws)
		log.Println("[events] client disconnected")
	}
}

func writeWelcome(ws *websocket.Conn, datasets func() []string) error {
	w := Welcome{Type: WelcomeType, Datasets: []string{}, At: time.Now().UTC()}
	if datasets != nil {
		if files := datasets(); files != nil {
			w.Datasets = files
		}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return err
	}
	_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
	return ws.WriteMessage(websocket.TextMessage, b)
}
