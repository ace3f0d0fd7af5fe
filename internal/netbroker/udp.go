// Package netbroker implements runtime.BrokerAccess over UDP sockets,
// for multi-process demos, adapted from the ROJ node's UDP transport.
package netbroker

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
	"github.com/elektrokombinacija/cobot-guard/internal/wire"
)

// MaxMsgSize is the largest UDP datagram this broker will read.
const MaxMsgSize = 65536

const (
	topicBodyPresentation = "body_presentation"
	topicHumanState       = "human_state"
	topicRobotState       = "robot_state"
	topicCollisionNotify  = "collision_notification"
)

type envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// UDP is a runtime.BrokerAccess implementation that broadcasts every
// published message to a fixed peer list and dispatches every
// received message to local subscribers.
type UDP struct {
	conn  *net.UDPConn
	peers []*net.UDPAddr
	stop  chan struct{}

	mu            sync.RWMutex
	bodySubs      map[int]func(runtime.BodyPresentationMessage)
	humanSubs     map[int]func(runtime.HumanStateMessage)
	robotSubs     map[int]func(runtime.RobotStateMessage)
	collisionSubs map[int]func(runtime.CollisionNotificationMessage)
	nextID        int
}

// New binds a UDP socket on port and configures it to broadcast to
// peers.
func New(port int, peers []*net.UDPAddr) (*UDP, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: port})
	if err != nil {
		return nil, fmt.Errorf("netbroker: bind UDP: %w", err)
	}
	u := &UDP{
		conn:      conn,
		peers:     peers,
		stop:      make(chan struct{}),
		bodySubs:      make(map[int]func(runtime.BodyPresentationMessage)),
		humanSubs:     make(map[int]func(runtime.HumanStateMessage)),
		robotSubs:     make(map[int]func(runtime.RobotStateMessage)),
		collisionSubs: make(map[int]func(runtime.CollisionNotificationMessage)),
	}
	go u.receiveLoop()
	return u, nil
}

// Close shuts the socket down, terminating the receive loop.
func (u *UDP) Close() error {
	close(u.stop)
	return u.conn.Close()
}

func (u *UDP) receiveLoop() {
	buf := make([]byte, MaxMsgSize)
	for {
		select {
		case <-u.stop:
			return
		default:
		}

		n, _, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-u.stop:
				return
			default:
				log.Printf("[WARN] netbroker: receive error: %v", err)
				continue
			}
		}

		var env envelope
		if err := json.Unmarshal(buf[:n], &env); err != nil {
			log.Printf("[WARN] netbroker: malformed envelope: %v", err)
			continue
		}
		u.dispatch(env)
	}
}

func (u *UDP) dispatch(env envelope) {
	switch env.Topic {
	case topicBodyPresentation:
		msg, err := wire.DecodeBodyPresentation(env.Payload)
		if err != nil {
			log.Printf("[WARN] netbroker: %v", err)
			return
		}
		u.mu.RLock()
		defer u.mu.RUnlock()
		for _, cb := range u.bodySubs {
			cb(msg)
		}
	case topicHumanState:
		msg, err := wire.DecodeHumanState(env.Payload)
		if err != nil {
			log.Printf("[WARN] netbroker: %v", err)
			return
		}
		u.mu.RLock()
		defer u.mu.RUnlock()
		for _, cb := range u.humanSubs {
			cb(msg)
		}
	case topicRobotState:
		msg, err := wire.DecodeRobotState(env.Payload)
		if err != nil {
			log.Printf("[WARN] netbroker: %v", err)
			return
		}
		u.mu.RLock()
		defer u.mu.RUnlock()
		for _, cb := range u.robotSubs {
			cb(msg)
		}
	case topicCollisionNotify:
		msg, err := wire.DecodeCollisionNotification(env.Payload)
		if err != nil {
			log.Printf("[WARN] netbroker: %v", err)
			return
		}
		u.mu.RLock()
		defer u.mu.RUnlock()
		for _, cb := range u.collisionSubs {
			cb(msg)
		}
	default:
		log.Printf("[WARN] netbroker: unknown topic %q", env.Topic)
	}
}

func (u *UDP) broadcast(topic string, payload []byte) {
	data, err := json.Marshal(envelope{Topic: topic, Payload: payload})
	if err != nil {
		log.Printf("[WARN] netbroker: marshal envelope: %v", err)
		return
	}
	for _, peer := range u.peers {
		if _, err := u.conn.WriteToUDP(data, peer); err != nil {
			log.Printf("[WARN] netbroker: send to %s: %v", peer, err)
		}
	}
}

// SubscribeBodyPresentation registers cb for body presentation events.
func (u *UDP) SubscribeBodyPresentation(cb func(runtime.BodyPresentationMessage)) func() {
	u.mu.Lock()
	id := u.nextID
	u.nextID++
	u.bodySubs[id] = cb
	u.mu.Unlock()
	return func() { u.mu.Lock(); delete(u.bodySubs, id); u.mu.Unlock() }
}

// SubscribeHumanState registers cb for human state events.
func (u *UDP) SubscribeHumanState(cb func(runtime.HumanStateMessage)) func() {
	u.mu.Lock()
	id := u.nextID
	u.nextID++
	u.humanSubs[id] = cb
	u.mu.Unlock()
	return func() { u.mu.Lock(); delete(u.humanSubs, id); u.mu.Unlock() }
}

// SubscribeRobotState registers cb for robot state events.
func (u *UDP) SubscribeRobotState(cb func(runtime.RobotStateMessage)) func() {
	u.mu.Lock()
	id := u.nextID
	u.nextID++
	u.robotSubs[id] = cb
	u.mu.Unlock()
	return func() { u.mu.Lock(); delete(u.robotSubs, id); u.mu.Unlock() }
}

// SubscribeCollisionNotification registers cb for collision
// notifications received from the wire.
func (u *UDP) SubscribeCollisionNotification(cb func(runtime.CollisionNotificationMessage)) func() {
	u.mu.Lock()
	id := u.nextID
	u.nextID++
	u.collisionSubs[id] = cb
	u.mu.Unlock()
	return func() { u.mu.Lock(); delete(u.collisionSubs, id); u.mu.Unlock() }
}

// PublishCollisionNotification broadcasts msg to every peer.
func (u *UDP) PublishCollisionNotification(msg runtime.CollisionNotificationMessage) {
	data, err := wire.EncodeCollisionNotification(msg)
	if err != nil {
		log.Printf("[WARN] netbroker: encode collision notification: %v", err)
		return
	}
	u.broadcast(topicCollisionNotify, data)
}

// PublishBodyPresentation broadcasts msg to every peer.
func (u *UDP) PublishBodyPresentation(msg runtime.BodyPresentationMessage) {
	data, err := wire.EncodeBodyPresentation(msg)
	if err != nil {
		log.Printf("[WARN] netbroker: encode body presentation: %v", err)
		return
	}
	u.broadcast(topicBodyPresentation, data)
}

// PublishHumanState broadcasts msg to every peer.
func (u *UDP) PublishHumanState(msg runtime.HumanStateMessage) {
	data, err := wire.EncodeHumanState(msg)
	if err != nil {
		log.Printf("[WARN] netbroker: encode human state: %v", err)
		return
	}
	u.broadcast(topicHumanState, data)
}

// PublishRobotState broadcasts msg to every peer.
func (u *UDP) PublishRobotState(msg runtime.RobotStateMessage) {
	data, err := wire.EncodeRobotState(msg)
	if err != nil {
		log.Printf("[WARN] netbroker: encode robot state: %v", err)
		return
	}
	u.broadcast(topicRobotState, data)
}

var _ runtime.BrokerAccess = (*UDP)(nil)
