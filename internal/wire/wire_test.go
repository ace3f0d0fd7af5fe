package wire

import (
	"testing"

	"github.com/elektrokombinacija/cobot-guard/internal/geom"
	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
)

func TestRobotStateRoundTrip(t *testing.T) {
	msg := runtime.RobotStateMessage{
		ID:   "r0",
		Mode: map[string]string{"robot": "first"},
		Observations: runtime.KeypointFrame{
			"a": {geom.Point{X: 1, Y: 2, Z: 3}},
		},
		Timestamp: 42,
	}
	data, err := EncodeRobotState(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := DecodeRobotState(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != msg.ID || got.Timestamp != msg.Timestamp || got.Mode["robot"] != "first" {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if len(got.Observations["a"]) != 1 || got.Observations["a"][0].X != 1 {
		t.Errorf("observation round-trip mismatch: %+v", got.Observations)
	}
}

func TestDecodeBodyPresentationRejectsGarbage(t *testing.T) {
	if _, err := DecodeBodyPresentation([]byte("not json")); err == nil {
		t.Errorf("expected a parse error for malformed input")
	}
}

func TestCollisionNotificationRoundTrip(t *testing.T) {
	msg := runtime.CollisionNotificationMessage{
		HumanID: "h0", HumanSegment: 1, RobotID: "r0", RobotSegment: 2,
		FromTimestamp: 100, ToTimestamp: 200,
		Mode: map[string]string{"robot": "first"}, Likelihood: 0.75,
	}
	data, err := EncodeCollisionNotification(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := DecodeCollisionNotification(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HumanID != msg.HumanID || got.RobotID != msg.RobotID || got.Likelihood != msg.Likelihood || got.Mode["robot"] != "first" {
		t.Errorf("round-trip mismatch: got %+v want %+v", got, msg)
	}
}
