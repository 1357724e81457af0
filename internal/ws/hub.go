package ws

import (
	"encoding/json"
	"log"
	"sync"

	"go-commodity-ledger/internal/model"

	"github.com/gofiber/contrib/websocket"
)

// Hub fans committed stock updates out to connected dashboard clients.
type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte),
	}
}

// BroadcastStockUpdate pushes the post-commit stock snapshot for one
// commodity. Called from the ledger services after a mutation commits.
func (h *Hub) BroadcastStockUpdate(action string, asset *model.StockAsset) {
	payload := map[string]interface{}{
		"type":         "stock_update",
		"action":       action,
		"commodity_id": asset.CommodityID,
		"qty":          asset.Qty,
	}
	if asset.Commodity != nil {
		payload["commodity_name"] = asset.Commodity.Name
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.Broadcast <- msg
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.Println("New WS client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
