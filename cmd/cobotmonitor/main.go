// Command cobotmonitor opens a live Gio window rendering the bodies
// and collision notifications of a cobotd instance reachable over
// UDP.
package main

import (
	"flag"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/cobot-guard/internal/history"
	"github.com/elektrokombinacija/cobot-guard/internal/mode"
	"github.com/elektrokombinacija/cobot-guard/internal/monitor"
	"github.com/elektrokombinacija/cobot-guard/internal/netbroker"
	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
)

func main() {
	udpPort := flag.Int("udp-port", 9991, "UDP port to listen on for body and notification traffic")
	flag.Parse()

	log.SetFlags(log.Ltime)

	transport, err := netbroker.New(*udpPort, nil)
	if err != nil {
		log.Fatalf("[ERROR] opening UDP listener: %v", err)
	}
	defer transport.Close()

	registry := runtime.NewBodyRegistry()
	transport.SubscribeBodyPresentation(registry.Insert)

	transport.SubscribeHumanState(func(msg runtime.HumanStateMessage) {
		for id, frame := range msg.Bodies {
			if !registry.Contains(id) {
				continue
			}
			if err := registry.AcquireHumanState(id, history.KeypointObservations(frame), msg.Timestamp); err != nil {
				log.Printf("[WARN] monitor: discarding human state for %s: %v", id, err)
			}
		}
	})

	transport.SubscribeRobotState(func(msg runtime.RobotStateMessage) {
		if !registry.Contains(msg.ID) {
			return
		}
		m := mode.New(msg.Mode)
		if err := registry.AcquireRobotState(msg.ID, m, history.KeypointObservations(msg.Observations), msg.Timestamp); err != nil {
			log.Printf("[WARN] monitor: discarding robot state for %s: %v", msg.ID, err)
		}
	})

	view := monitor.NewView(registry)
	transport.SubscribeCollisionNotification(view.OnCollisionNotification)

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("cobot-guard monitor"),
			app.Size(unit.Dp(1200), unit.Dp(800)),
		)

		application := monitor.NewApp(view)
		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
