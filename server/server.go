package main

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrSize          = 256
	maxRecentEvents = 500
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// SetupRoutes configures HTTP routes. publicURL is the externally visible
// base URL used in join QR codes.
func SetupRoutes(hub *Hub, allowedOrigins []string, publicURL string) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{
			"sectors": len(hub.sectors.ListSectors()),
			"clients": hub.ClientCount(),
		})
	})

	r.Get("/sectors", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.sectors.ListSectors())
	})

	r.Get("/sectors/{id}/obstacles", func(w http.ResponseWriter, r *http.Request) {
		sec := hub.sectors.GetSector(chi.URLParam(r, "id"))
		if sec == nil {
			writeJSON(w, http.StatusNotFound, ErrorMsg{Msg: "sector not found"})
			return
		}
		q := r.URL.Query()
		x, errX := strconv.ParseFloat(q.Get("x"), 64)
		y, errY := strconv.ParseFloat(q.Get("y"), 64)
		radius, errR := strconv.ParseFloat(q.Get("r"), 64)
		if errX != nil || errY != nil || errR != nil || radius < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorMsg{Msg: "x, y and r are required"})
			return
		}
		obstacles := sec.Avoidance().Query(x, y, radius)
		if obstacles == nil {
			obstacles = []AvoidObstacle{}
		}
		writeJSON(w, http.StatusOK, obstacles)
	})

	r.Get("/sectors/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if hub.sectors.GetSector(id) == nil {
			writeJSON(w, http.StatusNotFound, ErrorMsg{Msg: "sector not found"})
			return
		}
		if q := r.URL.Query().Get("recent"); q != "" {
			limit, err := strconv.Atoi(q)
			if err != nil || limit <= 0 || limit > maxRecentEvents {
				writeJSON(w, http.StatusBadRequest, ErrorMsg{Msg: "invalid recent"})
				return
			}
			rows := []EventRow{}
			if hub.analytics != nil {
				found, err := hub.analytics.Recent(id, limit)
				if err != nil {
					log.Printf("recent events: %v", err)
					writeJSON(w, http.StatusInternalServerError, ErrorMsg{Msg: "query failed"})
					return
				}
				if found != nil {
					rows = found
				}
			}
			writeJSON(w, http.StatusOK, rows)
			return
		}
		if hub.analytics == nil {
			writeJSON(w, http.StatusOK, map[string]int{})
			return
		}
		counts, err := hub.analytics.EventCounts(id)
		if err != nil {
			log.Printf("event counts: %v", err)
			writeJSON(w, http.StatusInternalServerError, ErrorMsg{Msg: "query failed"})
			return
		}
		writeJSON(w, http.StatusOK, counts)
	})

	r.Get("/sectors/{id}/qr", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if hub.sectors.GetSector(id) == nil {
			writeJSON(w, http.StatusNotFound, ErrorMsg{Msg: "sector not found"})
			return
		}
		png, err := qrcode.Encode(joinURL(publicURL, r, id), qrcode.Medium, qrSize)
		if err != nil {
			log.Printf("qr encode: %v", err)
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	r.Post("/token", func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorMsg{Msg: "bad request"})
			return
		}
		token, err := hub.auth.IssueToken(req.Password, req.Name, req.SectorID)
		if errors.Is(err, ErrBadPassword) {
			writeJSON(w, http.StatusUnauthorized, ErrorMsg{Msg: err.Error()})
			return
		}
		if err != nil {
			log.Printf("issue token: %v", err)
			writeJSON(w, http.StatusInternalServerError, ErrorMsg{Msg: "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, TokenResponse{Token: token})
	})

	// WebSocket endpoint: /ws?sector=<id>&token=<jwt>
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}
		sec := hub.sectors.GetSector(r.URL.Query().Get("sector"))
		if sec == nil {
			http.Error(w, "sector not found", http.StatusNotFound)
			return
		}
		name, err := hub.auth.Authorize(r.URL.Query().Get("token"), sec.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip, sec, name)
		client.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
			SectorID: sec.ID,
			Name:     name,
			Tick:     sec.Tick(),
		}})
		// Queue the keyframe before the pumps start so it always follows welcome
		if err := sec.Subscribe(client); err != nil {
			log.Printf("sector %s: subscribe: %v", sec.ID, err)
			client.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "subscribe failed"}})
		}
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	return r
}

// joinURL builds the websocket URL an observer scans to join a sector
func joinURL(publicURL string, r *http.Request, sectorID string) string {
	base := publicURL
	if base == "" {
		base = "ws://" + r.Host
	}
	u, err := url.Parse(base)
	if err != nil {
		u = &url.URL{Scheme: "ws", Host: r.Host}
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"sector": {sectorID}}.Encode()
	return u.String()
}
