package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-restaurant-booking/database"
	"go-restaurant-booking/models"
)

var notificationCollection *mongo.Collection = database.OpenCollection(database.Client, "notification")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Message is the wire shape every broadcast uses.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub fans events out to every connected terminal and keeps a notification
// record so offline consoles can catch up. Delivery is best effort, which is
// all the booking core asks of its publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

var hub = NewHub()

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *Hub) Publish(event string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	messageBytes, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		fmt.Println("Error marshaling message:", err)
		return
	}
	for client := range h.clients {
		err := client.WriteMessage(websocket.TextMessage, messageBytes)
		if err != nil {
			fmt.Println("Error writing message:", err)
			client.Close()
			delete(h.clients, client)
		}
	}
	go recordNotification(event, payload)
}

func recordNotification(event string, payload interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification := models.Notification{
		ID:         primitive.NewObjectID(),
		Event:      event,
		Created_at: time.Now(),
	}
	if order, ok := payload.(models.Order); ok {
		notification.Order_id = order.Order_id
	}
	if orderID, ok := payload.(string); ok {
		notification.Order_id = orderID
	}
	if _, err := notificationCollection.InsertOne(ctx, notification); err != nil {
		log.Printf("notification insert failed: %v", err)
	}
}

func HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			fmt.Println("Error during connection upgrade:", err)
			return
		}
		defer conn.Close()

		hub.register(conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				hub.unregister(conn)
				break
			}
		}
	}
}
