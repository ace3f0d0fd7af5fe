// Command cobotsim generates a deterministic synthetic stream of
// human and robot keypoint observations, for driving a cobotd
// instance end-to-end without real sensors.
package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"net"
	"strconv"
	"time"

	"github.com/elektrokombinacija/cobot-guard/internal/geom"
	"github.com/elektrokombinacija/cobot-guard/internal/netbroker"
	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
)

// simParams controls the synthetic scenario's shape.
type simParams struct {
	Seed       int64
	HumanCount int
	RobotCount int
	TickMS     int64
	CellRadius float64
}

func main() {
	target := flag.String("target", "127.0.0.1:9990", "host:port of the cobotd UDP listener")
	seed := flag.Int64("seed", 1, "random seed for deterministic playback")
	humans := flag.Int("humans", 1, "number of simulated humans")
	robots := flag.Int("robots", 1, "number of simulated robots")
	tickMS := flag.Int64("tick-ms", 100, "milliseconds between frames")
	radius := flag.Float64("cell-radius", 1500, "radius in millimeters of the circular path each body walks")
	flag.Parse()

	log.SetFlags(log.Ltime)

	addr, err := net.ResolveUDPAddr("udp4", *target)
	if err != nil {
		log.Fatalf("[ERROR] resolving --target: %v", err)
	}
	transport, err := netbroker.New(0, []*net.UDPAddr{addr})
	if err != nil {
		log.Fatalf("[ERROR] opening UDP socket: %v", err)
	}
	defer transport.Close()

	params := simParams{Seed: *seed, HumanCount: *humans, RobotCount: *robots, TickMS: *tickMS, CellRadius: *radius}
	sim := newSimulation(params)

	sim.presentAll(transport)

	ticker := time.NewTicker(time.Duration(params.TickMS) * time.Millisecond)
	defer ticker.Stop()

	log.Printf("[INFO] cobotsim streaming %d human(s), %d robot(s) to %s every %dms", params.HumanCount, params.RobotCount, *target, params.TickMS)
	for range ticker.C {
		sim.tick(transport)
	}
}

type bodyOrbit struct {
	id       string
	phase    float64
	angular  float64
	centreX  float64
	centreY  float64
	isHuman  bool
	modeName string
}

type simulation struct {
	params   simParams
	rng      *rand.Rand
	bodies   []bodyOrbit
	ts       uint64
	modeTick int
}

func newSimulation(p simParams) *simulation {
	rng := rand.New(rand.NewSource(p.Seed))
	s := &simulation{params: p, rng: rng}

	for i := 0; i < p.HumanCount; i++ {
		s.bodies = append(s.bodies, bodyOrbit{
			id:      humanID(i),
			phase:   rng.Float64() * 2 * math.Pi,
			angular: 0.15 + rng.Float64()*0.1,
			centreX: rng.Float64() * p.CellRadius,
			centreY: rng.Float64() * p.CellRadius,
			isHuman: true,
		})
	}
	for i := 0; i < p.RobotCount; i++ {
		s.bodies = append(s.bodies, bodyOrbit{
			id:       robotID(i),
			phase:    rng.Float64() * 2 * math.Pi,
			angular:  0.2 + rng.Float64()*0.15,
			centreX:  rng.Float64() * p.CellRadius,
			centreY:  rng.Float64() * p.CellRadius,
			isHuman:  false,
			modeName: "idle",
		})
	}
	return s
}

func humanID(i int) string { return "sim-human-" + strconv.Itoa(i) }
func robotID(i int) string { return "sim-robot-" + strconv.Itoa(i) }

func (s *simulation) presentAll(transport *netbroker.UDP) {
	for _, b := range s.bodies {
		transport.PublishBodyPresentation(runtime.BodyPresentationMessage{
			ID:      b.id,
			IsHuman: b.isHuman,
			SegmentPairs: []runtime.SegmentPairSpec{
				{A: "head", B: "torso"},
				{A: "torso", B: "left_hand"},
				{A: "torso", B: "right_hand"},
			},
			Thicknesses: []float64{250, 100, 100},
			Frequency:   uint(1000 / s.params.TickMS),
		})
	}
}

func (s *simulation) tick(transport *netbroker.UDP) {
	s.ts += uint64(s.params.TickMS)
	s.modeTick++

	humanFrame := runtime.HumanStateMessage{Bodies: make(map[string]runtime.KeypointFrame), Timestamp: s.ts}

	for i := range s.bodies {
		b := &s.bodies[i]
		b.phase += b.angular

		head := orbitPoint(b.centreX, b.centreY, 1700, b.phase)
		torso := orbitPoint(b.centreX, b.centreY, 1200, b.phase)
		leftHand := orbitPoint(b.centreX, b.centreY, 900, b.phase+0.8)
		rightHand := orbitPoint(b.centreX, b.centreY, 900, b.phase-0.8)

		frame := runtime.KeypointFrame{
			"head":       {head},
			"torso":      {torso},
			"left_hand":  {leftHand},
			"right_hand": {rightHand},
		}

		if b.isHuman {
			humanFrame.Bodies[b.id] = frame
			continue
		}

		if s.modeTick%50 == 0 {
			b.modeName = nextMode(b.modeName)
		}
		transport.PublishRobotState(runtime.RobotStateMessage{
			ID:           b.id,
			Mode:         map[string]string{"state": b.modeName},
			Observations: frame,
			Timestamp:    s.ts,
		})
	}

	if len(humanFrame.Bodies) > 0 {
		transport.PublishHumanState(humanFrame)
	}
}

func nextMode(current string) string {
	switch current {
	case "idle":
		return "moving"
	case "moving":
		return "working"
	default:
		return "idle"
	}
}

func orbitPoint(cx, cy, r, phase float64) geom.Point {
	return geom.Point{X: cx + r*math.Cos(phase), Y: cy + r*math.Sin(phase), Z: 0}
}
