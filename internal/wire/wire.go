// Package wire implements the JSON wire encoding for the runtime's
// three inbound message types and its one outbound message type, used
// by internal/netbroker to move messages between processes.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/elektrokombinacija/cobot-guard/internal/cgerr"
	"github.com/elektrokombinacija/cobot-guard/internal/geom"
	"github.com/elektrokombinacija/cobot-guard/internal/runtime"
)

type pointDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toPointDoc(p geom.Point) pointDoc { return pointDoc{X: p.X, Y: p.Y, Z: p.Z} }
func fromPointDoc(d pointDoc) geom.Point { return geom.Point{X: d.X, Y: d.Y, Z: d.Z} }

type segmentPairDoc struct {
	A string `json:"a"`
	B string `json:"b"`
}

type bodyPresentationDoc struct {
	ID           string           `json:"id"`
	IsHuman      bool             `json:"is_human"`
	SegmentPairs []segmentPairDoc `json:"segment_pairs"`
	Thicknesses  []float64        `json:"thicknesses"`
	Frequency    uint             `json:"frequency,omitempty"`
}

// EncodeBodyPresentation serialises a body presentation message.
func EncodeBodyPresentation(msg runtime.BodyPresentationMessage) ([]byte, error) {
	doc := bodyPresentationDoc{
		ID:          msg.ID,
		IsHuman:     msg.IsHuman,
		Thicknesses: msg.Thicknesses,
		Frequency:   msg.Frequency,
	}
	doc.SegmentPairs = make([]segmentPairDoc, len(msg.SegmentPairs))
	for i, p := range msg.SegmentPairs {
		doc.SegmentPairs[i] = segmentPairDoc{A: p.A, B: p.B}
	}
	return json.Marshal(doc)
}

// DecodeBodyPresentation deserialises a body presentation message.
func DecodeBodyPresentation(data []byte) (runtime.BodyPresentationMessage, error) {
	var doc bodyPresentationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return runtime.BodyPresentationMessage{}, fmt.Errorf("wire: decode body presentation: %w: %v", cgerr.ErrParse, err)
	}
	msg := runtime.BodyPresentationMessage{
		ID:          doc.ID,
		IsHuman:     doc.IsHuman,
		Thicknesses: doc.Thicknesses,
		Frequency:   doc.Frequency,
	}
	msg.SegmentPairs = make([]runtime.SegmentPairSpec, len(doc.SegmentPairs))
	for i, p := range doc.SegmentPairs {
		msg.SegmentPairs[i] = runtime.SegmentPairSpec{A: p.A, B: p.B}
	}
	return msg, nil
}

type keypointFrameDoc map[string][]pointDoc

func toKeypointFrameDoc(f runtime.KeypointFrame) keypointFrameDoc {
	doc := make(keypointFrameDoc, len(f))
	for k, pts := range f {
		ds := make([]pointDoc, len(pts))
		for i, p := range pts {
			ds[i] = toPointDoc(p)
		}
		doc[k] = ds
	}
	return doc
}

func fromKeypointFrameDoc(doc keypointFrameDoc) runtime.KeypointFrame {
	f := make(runtime.KeypointFrame, len(doc))
	for k, ds := range doc {
		pts := make([]geom.Point, len(ds))
		for i, d := range ds {
			pts[i] = fromPointDoc(d)
		}
		f[k] = pts
	}
	return f
}

type humanStateDoc struct {
	Bodies    map[string]keypointFrameDoc `json:"bodies"`
	Timestamp uint64                      `json:"timestamp"`
}

// EncodeHumanState serialises a human state message.
func EncodeHumanState(msg runtime.HumanStateMessage) ([]byte, error) {
	doc := humanStateDoc{Bodies: make(map[string]keypointFrameDoc, len(msg.Bodies)), Timestamp: msg.Timestamp}
	for id, f := range msg.Bodies {
		doc.Bodies[id] = toKeypointFrameDoc(f)
	}
	return json.Marshal(doc)
}

// DecodeHumanState deserialises a human state message.
func DecodeHumanState(data []byte) (runtime.HumanStateMessage, error) {
	var doc humanStateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return runtime.HumanStateMessage{}, fmt.Errorf("wire: decode human state: %w: %v", cgerr.ErrParse, err)
	}
	msg := runtime.HumanStateMessage{Bodies: make(map[string]runtime.KeypointFrame, len(doc.Bodies)), Timestamp: doc.Timestamp}
	for id, f := range doc.Bodies {
		msg.Bodies[id] = fromKeypointFrameDoc(f)
	}
	return msg, nil
}

type robotStateDoc struct {
	ID           string            `json:"id"`
	Mode         map[string]string `json:"mode"`
	Observations keypointFrameDoc  `json:"observations"`
	Timestamp    uint64            `json:"timestamp"`
}

// EncodeRobotState serialises a robot state message.
func EncodeRobotState(msg runtime.RobotStateMessage) ([]byte, error) {
	doc := robotStateDoc{
		ID:           msg.ID,
		Mode:         msg.Mode,
		Observations: toKeypointFrameDoc(msg.Observations),
		Timestamp:    msg.Timestamp,
	}
	return json.Marshal(doc)
}

// DecodeRobotState deserialises a robot state message.
func DecodeRobotState(data []byte) (runtime.RobotStateMessage, error) {
	var doc robotStateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return runtime.RobotStateMessage{}, fmt.Errorf("wire: decode robot state: %w: %v", cgerr.ErrParse, err)
	}
	return runtime.RobotStateMessage{
		ID:           doc.ID,
		Mode:         doc.Mode,
		Observations: fromKeypointFrameDoc(doc.Observations),
		Timestamp:    doc.Timestamp,
	}, nil
}

type collisionNotificationDoc struct {
	NotificationID string            `json:"notification_id"`
	HumanID        string            `json:"human_id"`
	HumanSegment   int               `json:"human_segment"`
	RobotID        string            `json:"robot_id"`
	RobotSegment   int               `json:"robot_segment"`
	FromTimestamp  uint64            `json:"from_timestamp"`
	ToTimestamp    uint64            `json:"to_timestamp"`
	Mode           map[string]string `json:"mode"`
	Likelihood     float64           `json:"likelihood"`
}

// EncodeCollisionNotification serialises a collision notification.
func EncodeCollisionNotification(msg runtime.CollisionNotificationMessage) ([]byte, error) {
	doc := collisionNotificationDoc{
		NotificationID: msg.NotificationID,
		HumanID:        msg.HumanID,
		HumanSegment:   msg.HumanSegment,
		RobotID:        msg.RobotID,
		RobotSegment:   msg.RobotSegment,
		FromTimestamp:  msg.FromTimestamp,
		ToTimestamp:    msg.ToTimestamp,
		Mode:           msg.Mode,
		Likelihood:     msg.Likelihood,
	}
	return json.Marshal(doc)
}

// DecodeCollisionNotification deserialises a collision notification.
func DecodeCollisionNotification(data []byte) (runtime.CollisionNotificationMessage, error) {
	var doc collisionNotificationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return runtime.CollisionNotificationMessage{}, fmt.Errorf("wire: decode collision notification: %w: %v", cgerr.ErrParse, err)
	}
	return runtime.CollisionNotificationMessage{
		NotificationID: doc.NotificationID,
		HumanID:        doc.HumanID,
		HumanSegment:   doc.HumanSegment,
		RobotID:        doc.RobotID,
		RobotSegment:   doc.RobotSegment,
		FromTimestamp:  doc.FromTimestamp,
		ToTimestamp:    doc.ToTimestamp,
		Mode:           doc.Mode,
		Likelihood:     doc.Likelihood,
	}, nil
}
