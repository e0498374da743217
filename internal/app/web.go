// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/config"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// PoseHub keeps the latest fused report and streams every update to the
// connected websocket clients.
type PoseHub struct {
	mu       sync.RWMutex
	last     fusion.Report
	havePose bool
	clients  map[*wsClient]struct{}
	log      *zap.Logger
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewPoseHub(log *zap.Logger) *PoseHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &PoseHub{clients: make(map[*wsClient]struct{}), log: log}
}

// Update stores r and forwards it to every client. Slow clients that have
// fallen a full buffer behind are disconnected.
func (h *PoseHub) Update(r fusion.Report) {
	payload, err := json.Marshal(r)
	if err != nil {
		h.log.Warn("web: marshal report", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = r
	h.havePose = true
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.log.Warn("web: dropping slow websocket client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Latest returns the last report received.
func (h *PoseHub) Latest() (fusion.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.havePose
}

// Handler serves the JSON API, the websocket stream and the static UI in
// staticDir (skipped when empty).
func (h *PoseHub) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pose", h.handlePose)
	mux.HandleFunc("/ws", h.handleWS)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func (h *PoseHub) handlePose(w http.ResponseWriter, r *http.Request) {
	last, ok := h.Latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(last); err != nil {
		h.log.Warn("web: json encode error", zap.Error(err))
	}
}

func (h *PoseHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("web: websocket upgrade error", zap.Error(err))
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, 16)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.havePose {
		if payload, err := json.Marshal(h.last); err == nil {
			c.send <- payload
		}
	}
	h.mu.Unlock()

	go c.writeLoop(h.log)

	// Drain reads so close frames are handled.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("web: websocket read error", zap.Error(err))
			}
			break
		}
	}

	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (c *wsClient) writeLoop(log *zap.Logger) {
	defer c.conn.Close()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Debug("web: websocket write error", zap.Error(err))
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// RunWeb subscribes to the fused pose topic and serves it over HTTP until
// ctx is cancelled.
func RunWeb(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	hub := NewPoseHub(log)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Info("web: connected to MQTT broker", zap.String("broker", cfg.MQTTBroker))

	token := client.Subscribe(cfg.TopicPoseFused, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r fusion.Report
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Warn("web: MQTT payload unmarshal error", zap.Error(err))
			return
		}
		hub.Update(r)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Info("web: subscribed", zap.String("topic", cfg.TopicPoseFused))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           hub.Handler("web"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("web: server listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
