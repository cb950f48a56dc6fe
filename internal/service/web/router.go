package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/openlend/lendsight/internal/observability"
)

func (s *Server) router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		s.keeper.addConn(conn)
		go s.keeper.keep(conn)
	})

	mux.HandleFunc("/markets", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			writeJSON(w, s.state.allMarkets())
			return
		}

		stats, ok := s.state.market(id)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, stats)
	})

	mux.HandleFunc("/financials", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.state.latestFinancials())
	})

	mux.Handle("/metrics", observability.Handler())

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}
