// Package dashboard serves a live feed of collision notifications and
// body registry status over HTTP, for operators monitoring a running
// cell from a browser.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/elektrokombinacija/cobot-guard/internal/broker"
	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait  = time.Second
	pingPeriod = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server exposes a status endpoint and a live websocket feed of
// collision notifications.
type Server struct {
	registry *runtime.BodyRegistry
	feed     *broker.Channel

	router *mux.Router
}

// New wires a dashboard server over registry's state and feed's
// outbound collision notifications.
func New(registry *runtime.BodyRegistry, feed *broker.Channel) *Server {
	s := &Server{registry: registry, feed: feed, router: mux.NewRouter()}
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/bodies", s.handleBodies).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/notifications", s.handleNotifications)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type bodiesDoc struct {
	Humans []string `json:"humans"`
	Robots []string `json:"robots"`
}

func (s *Server) handleBodies(w http.ResponseWriter, _ *http.Request) {
	doc := bodiesDoc{Humans: s.registry.HumanIDs(), Robots: s.registry.RobotIDs()}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updates := make(chan runtime.CollisionNotificationMessage, 16)
	unsubscribe := s.feed.SubscribeCollisionNotification(func(msg runtime.CollisionNotificationMessage) {
		select {
		case updates <- msg:
		default:
		}
	})

	group, ctx := errgroup.WithContext(r.Context())
	var closeOnce sync.Once
	closeConn := func() {
		closeOnce.Do(func() {
			unsubscribe()
			_ = conn.Close()
		})
	}

	group.Go(func() error {
		defer closeConn()
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-updates:
				if !ok {
					return nil
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					return err
				}
			}
		}
	})

	group.Go(func() error {
		defer closeConn()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return err
				}
			}
		}
	})

	group.Go(func() error {
		defer closeConn()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return err
			}
		}
	})

	_ = group.Wait()
}

// Run starts an HTTP server on addr and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
