package routes

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production
	},
}

// Connected storefront clients map with mutex for thread safety
var viewClients = make(map[*websocket.Conn]bool)
var revalidations = make(chan []string, 100) // Buffered channel to prevent blocking
var viewMutex = &sync.Mutex{}
var revalidatorOnce sync.Once

type revalidateEvent struct {
	Revalidate []string `json:"revalidate"`
}

// revalidate signals that the given view paths are stale. Every
// successful mutation calls this; delivery is best-effort and must
// never block the mutation that triggered it.
func revalidate(paths ...string) {
	select {
	case revalidations <- paths:
	default:
		log.Println("Revalidation queue full, dropping event:", paths)
	}
}

// revalidationSocket upgrades the connection and keeps it registered
// until the client goes away.
var revalidationSocket = adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Error upgrading:", err)
		return
	}
	defer conn.Close()

	viewMutex.Lock()
	viewClients[conn] = true
	viewMutex.Unlock()
	log.Println("Storefront client connected:", conn.RemoteAddr())

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			viewMutex.Lock()
			delete(viewClients, conn)
			viewMutex.Unlock()
			log.Println("Storefront client disconnected:", conn.RemoteAddr())
			break
		}
	}
})

// startRevalidator launches the goroutine that fans revalidation events
// out to all connected clients.
func startRevalidator() {
	revalidatorOnce.Do(func() {
		go func() {
			for paths := range revalidations {
				message, err := json.Marshal(revalidateEvent{Revalidate: paths})
				if err != nil {
					continue
				}
				viewMutex.Lock()
				for client := range viewClients {
					if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
						log.Printf("WebSocket write error: %v", err)
						client.Close()
						delete(viewClients, client)
					}
				}
				viewMutex.Unlock()
			}
		}()
	})
}
