package netbroker

import (
	"net"
	"testing"
	"time"

	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
)

func TestUDPRoundTripsRobotState(t *testing.T) {
	receiver, err := New(0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer receiver.Close()

	sender, err := New(0, []*net.UDPAddr{receiver.conn.LocalAddr().(*net.UDPAddr)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sender.Close()

	received := make(chan runtime.RobotStateMessage, 1)
	receiver.SubscribeRobotState(func(msg runtime.RobotStateMessage) { received <- msg })

	sender.PublishRobotState(runtime.RobotStateMessage{ID: "r0", Timestamp: 7})

	select {
	case msg := <-received:
		if msg.ID != "r0" || msg.Timestamp != 7 {
			t.Errorf("unexpected message: %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for UDP delivery")
	}
}

func TestUDPRoundTripsCollisionNotification(t *testing.T) {
	receiver, err := New(0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer receiver.Close()

	sender, err := New(0, []*net.UDPAddr{receiver.conn.LocalAddr().(*net.UDPAddr)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sender.Close()

	received := make(chan runtime.CollisionNotificationMessage, 1)
	receiver.SubscribeCollisionNotification(func(msg runtime.CollisionNotificationMessage) { received <- msg })

	sender.PublishCollisionNotification(runtime.CollisionNotificationMessage{HumanID: "h0", RobotID: "r0", Likelihood: 0.8})

	select {
	case msg := <-received:
		if msg.HumanID != "h0" || msg.RobotID != "r0" {
			t.Errorf("unexpected message: %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for UDP delivery")
	}
}
