// Command cobotd runs the cobot-guard collision-prediction daemon: it
// wires a broker, body registry, dispatcher, worker pool, sender and
// dashboard together and runs until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/elektrokombinacija/cobot-guard/internal/broker"
	"github.com/elektrokombinacija/cobot-guard/internal/config"
	"github.com/elektrokombinacija/cobot-guard/internal/dashboard"
	"github.com/elektrokombinacija/cobot-guard/internal/netbroker"
	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, defaults apply otherwise)")
	udpPort := flag.Int("udp-port", 0, "UDP port to listen on for inter-process transport (0 disables UDP, using the in-process broker only)")
	peerList := flag.String("udp-peers", "", "comma-separated host:port list of UDP peers to broadcast to")
	flag.Parse()

	log.SetFlags(log.Ltime)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("[ERROR] loading config: %v", err)
		}
		cfg = loaded
	}

	var access runtime.BrokerAccess
	var closeBroker func() error

	if *udpPort != 0 {
		peers, err := parsePeers(*peerList)
		if err != nil {
			log.Fatalf("[ERROR] parsing --udp-peers: %v", err)
		}
		u, err := netbroker.New(*udpPort, peers)
		if err != nil {
			log.Fatalf("[ERROR] starting UDP broker: %v", err)
		}
		access = u
		closeBroker = u.Close
		log.Printf("[INFO] UDP broker listening on port %d with %d peer(s)", *udpPort, len(peers))
	} else {
		ch := broker.New()
		access = ch
		closeBroker = func() error { return nil }
		log.Println("[INFO] using in-process broker (no --udp-port given)")
	}
	defer closeBroker()

	registry := runtime.NewBodyRegistry()
	dispatcher := runtime.NewDispatcher(access, registry, runtime.DispatcherConfig{
		HistoryRetentionMS:      cfg.HistoryRetentionMS,
		HistoryPurgePeriodMS:    cfg.HistoryPurgePeriodMS,
		HumanRetentionTimeoutMS: cfg.HumanRetentionTimeoutMS,
		DefaultHumanSegments:    cfg.DefaultHumanSegments,
	})

	feed := broker.New()
	sender := runtime.NewSender(fanoutBroker{BrokerAccess: access, extra: feed})
	pool := runtime.NewWorkerPool(dispatcher, sender, cfg.WorkerPoolSize)

	board := dashboard.New(registry, feed)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[INFO] shutting down...")
		cancel()
	}()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { dispatcher.Run(ctx); return nil })
	group.Go(func() error { sender.Run(ctx); return nil })
	group.Go(func() error { return pool.Run(ctx) })
	group.Go(func() error { return board.Run(ctx, cfg.DashboardAddr) })

	log.Printf("[INFO] cobotd running, dashboard at %s, %d worker(s)", cfg.DashboardAddr, cfg.WorkerPoolSize)
	if err := group.Wait(); err != nil && ctx.Err() == nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

// fanoutBroker publishes collision notifications to both the primary
// transport and a local dashboard feed, while leaving subscriptions
// delegated to the primary transport.
type fanoutBroker struct {
	runtime.BrokerAccess
	extra *broker.Channel
}

func (f fanoutBroker) PublishCollisionNotification(msg runtime.CollisionNotificationMessage) {
	f.BrokerAccess.PublishCollisionNotification(msg)
	f.extra.PublishCollisionNotification(msg)
}

func parsePeers(list string) ([]*net.UDPAddr, error) {
	if list == "" {
		return nil, nil
	}
	var peers []*net.UDPAddr
	for _, host := range strings.Split(list, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		addr, err := net.ResolveUDPAddr("udp4", host)
		if err != nil {
			return nil, fmt.Errorf("resolve peer %q: %w", host, err)
		}
		peers = append(peers, addr)
	}
	return peers, nil
}
