// Package broker provides an in-process, channel-backed implementation
// of runtime.BrokerAccess for single-binary demos and tests.
package broker

import (
	"sync"

	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
)

// Channel is an in-process publish/subscribe hub. The zero value is
// not usable; construct with New.
type Channel struct {
	mu sync.RWMutex

	bodySubs         map[int]func(runtime.BodyPresentationMessage)
	humanSubs        map[int]func(runtime.HumanStateMessage)
	robotSubs        map[int]func(runtime.RobotStateMessage)
	notificationSubs map[int]func(runtime.CollisionNotificationMessage)
	nextID           int
}

// New returns an empty in-process broker.
func New() *Channel {
	return &Channel{
		bodySubs:  make(map[int]func(runtime.BodyPresentationMessage)),
		humanSubs: make(map[int]func(runtime.HumanStateMessage)),
		robotSubs: make(map[int]func(runtime.RobotStateMessage)),
	}
}

// SubscribeBodyPresentation registers cb for body presentation events.
func (c *Channel) SubscribeBodyPresentation(cb func(runtime.BodyPresentationMessage)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.bodySubs[id] = cb
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.bodySubs, id)
		c.mu.Unlock()
	}
}

// SubscribeHumanState registers cb for human state events.
func (c *Channel) SubscribeHumanState(cb func(runtime.HumanStateMessage)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.humanSubs[id] = cb
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.humanSubs, id)
		c.mu.Unlock()
	}
}

// SubscribeRobotState registers cb for robot state events.
func (c *Channel) SubscribeRobotState(cb func(runtime.RobotStateMessage)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.robotSubs[id] = cb
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.robotSubs, id)
		c.mu.Unlock()
	}
}

// PublishCollisionNotification is a no-op sink for the outbound topic
// unless a consumer subscribes via SubscribeCollisionNotification.
func (c *Channel) PublishCollisionNotification(msg runtime.CollisionNotificationMessage) {
	c.mu.RLock()
	subs := c.notificationSubs
	c.mu.RUnlock()
	for _, cb := range subs {
		cb(msg)
	}
}

// SubscribeCollisionNotification registers cb for outbound collision
// notifications, used by dashboard/monitor consumers.
func (c *Channel) SubscribeCollisionNotification(cb func(runtime.CollisionNotificationMessage)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	if c.notificationSubs == nil {
		c.notificationSubs = make(map[int]func(runtime.CollisionNotificationMessage))
	}
	c.notificationSubs[id] = cb
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.notificationSubs, id)
		c.mu.Unlock()
	}
}

// PublishBodyPresentation fans msg out to every subscriber.
func (c *Channel) PublishBodyPresentation(msg runtime.BodyPresentationMessage) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cb := range c.bodySubs {
		cb(msg)
	}
}

// PublishHumanState fans msg out to every subscriber.
func (c *Channel) PublishHumanState(msg runtime.HumanStateMessage) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cb := range c.humanSubs {
		cb(msg)
	}
}

// PublishRobotState fans msg out to every subscriber.
func (c *Channel) PublishRobotState(msg runtime.RobotStateMessage) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cb := range c.robotSubs {
		cb(msg)
	}
}

var _ runtime.BrokerAccess = (*Channel)(nil)
