// Package web serves market stats and financials over HTTP and pushes
// per-market updates to websocket subscribers.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/openlend/lendsight/internal/event"
)

type Server struct {
	web    *http.Server
	keeper *keeper
	state  *state
}

func New(addr string) *Server {
	serv := &Server{
		web: &http.Server{
			Addr: addr,
		},
		keeper: newKeeper(),
		state:  newState(),
	}
	serv.web.Handler = serv.router()
	return serv
}

func (s *Server) Run(ctx context.Context) error {
	closed := make(chan error, 1)

	go func() {
		closed <- s.web.ListenAndServe()
	}()

	select {
	case err := <-closed:
		return err
	case <-ctx.Done():
		_ = s.web.Shutdown(ctx)
		return ctx.Err()
	}
}

// UpdateStats refreshes the served market state and fans the update
// out to every subscribed socket.
func (s *Server) UpdateStats(ctx context.Context, stats event.StatsUpdated) error {
	s.state.update(stats.Markets)

	err := s.keeper.walkSubs(func(conn *websocket.Conn, subs map[string]struct{}) error {
		for sub := range subs {
			ms, ok := stats.Markets[sub]
			if !ok {
				continue
			}

			msg := NewMessage(MarketUpdate{Market: sub, Stats: ms})
			js, err := json.MarshalIndent(msg, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal json: %w", err)
			}

			if err := conn.WriteMessage(websocket.TextMessage, js); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("walk subs: %w", err)
	}

	return nil
}

// UpdateFinancials keeps the latest daily financials snapshot for the
// /financials endpoint.
func (s *Server) UpdateFinancials(ctx context.Context, fin event.FinancialsUpdated) error {
	s.state.updateFinancials(fin.Snapshot)
	return nil
}
