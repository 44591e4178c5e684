// Package apistub serves deterministic highscore payloads in the upstream
// API's XML-to-JSON shape. It exists for local development and integration
// testing: point the fetch client's base URL at it and the whole pipeline
// runs without touching the real game API.
//
// Payload fidelity matters more than realism: timestamps are floored to the
// hour like the real API's regeneration cadence, and every attribute value
// is a string, the way the XML-to-JSON converter emits them.
package apistub

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Default stub configuration constants.
const (
	defaultEntities = 25
)

// Server generates the stub payloads.
type Server struct {
	entities int
	now      func() time.Time
}

// New creates a stub server with configuration options.
func New(opts ...Option) *Server {
	s := &Server{
		entities: defaultEntities,
		now:      time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the HTTP handler serving the stubbed API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/highscore.xml", s.handleHighscore)
	mux.HandleFunc("/api/players.xml", s.handlePlayers)
	mux.HandleFunc("/api/alliances.xml", s.handleAlliances)
	return mux
}

// timestamp floors the clock to the hour, matching the upstream
// regeneration cadence: repeated fetches inside one hour see the same
// payload.
func (s *Server) timestamp() int64 {
	return s.now().Truncate(time.Hour).Unix()
}

// score derives a deterministic, hourly-advancing score for one entity.
func score(id int64, typ int, ts int64) int64 {
	base := id*1_000_003 + int64(typ)*7919
	hours := ts / 3600
	return base%5_000_000 + hours%1000*int64(typ+1)*100
}

func (s *Server) handleHighscore(w http.ResponseWriter, r *http.Request) {
	category, err := strconv.Atoi(r.URL.Query().Get("category"))
	if err != nil || (category != 1 && category != 2) {
		http.Error(w, "invalid category", http.StatusBadRequest)
		return
	}
	typ, err := strconv.Atoi(r.URL.Query().Get("type"))
	if err != nil || typ < 0 || typ > 11 {
		http.Error(w, "invalid type", http.StatusBadRequest)
		return
	}

	key := "player"
	if category == 2 {
		key = "alliance"
	}
	ts := s.timestamp()

	var sb strings.Builder
	fmt.Fprintf(&sb, `{"@attributes":{"timestamp":"%d","category":"%d","type":"%d"},"%s":[`,
		ts, category, typ, key)
	for i := 0; i < s.entities; i++ {
		id := int64(100_000 + i)
		if i > 0 {
			sb.WriteByte(',')
		}
		// Military scores carry a ships attribute, like the real API.
		if category == 1 && typ == 3 {
			fmt.Fprintf(&sb, `{"@attributes":{"id":"%d","position":"%d","score":"%d","ships":"%d"}}`,
				id, i+1, score(id, typ, ts), id%5000)
		} else {
			fmt.Fprintf(&sb, `{"@attributes":{"id":"%d","position":"%d","score":"%d"}}`,
				id, i+1, score(id, typ, ts))
		}
	}
	sb.WriteString(`]}`)

	writeJSON(w, sb.String())
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	ts := s.timestamp()

	var sb strings.Builder
	fmt.Fprintf(&sb, `{"@attributes":{"timestamp":"%d"},"player":[`, ts)
	for i := 0; i < s.entities; i++ {
		id := int64(100_000 + i)
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `{"@attributes":{"id":"%d","name":"Player%d","status":"","alliance":"%d"}}`,
			id, i+1, 500_000+i%5)
	}
	sb.WriteString(`]}`)

	writeJSON(w, sb.String())
}

func (s *Server) handleAlliances(w http.ResponseWriter, r *http.Request) {
	ts := s.timestamp()

	var sb strings.Builder
	fmt.Fprintf(&sb, `{"@attributes":{"timestamp":"%d"},"alliance":[`, ts)
	for i := 0; i < 5; i++ {
		id := int64(500_000 + i)
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `{"@attributes":{"id":"%d","name":"Alliance %d","tag":"AL%d"}}`,
			id, i+1, i+1)
	}
	sb.WriteString(`]}`)

	writeJSON(w, sb.String())
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
