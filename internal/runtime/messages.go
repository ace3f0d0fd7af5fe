package runtime

import "github.com/elektrokombinacija/cobot-guard/internal/geom"

// SegmentPairSpec names one segment of a presented body by its two
// keypoint identifiers.
type SegmentPairSpec struct {
	A string
	B string
}

// BodyPresentationMessage registers a new human or robot body and its
// static segment layout.
type BodyPresentationMessage struct {
	ID           string
	IsHuman      bool
	SegmentPairs []SegmentPairSpec
	Thicknesses  []float64
	Frequency    uint // meaningful for robots only
}

// KeypointFrame maps a keypoint identifier to its candidate
// observations within a single frame.
type KeypointFrame map[string][]geom.Point

// HumanStateMessage carries one frame of keypoint observations for one
// or more humans.
type HumanStateMessage struct {
	Bodies    map[string]KeypointFrame
	Timestamp uint64
}

// RobotStateMessage carries one frame of keypoint observations and the
// reported discrete mode for a single robot.
type RobotStateMessage struct {
	ID           string
	Mode         map[string]string
	Observations KeypointFrame
	Timestamp    uint64
}

// CollisionNotificationMessage reports a predicted or actual contact
// between a human segment and a robot segment.
type CollisionNotificationMessage struct {
	// NotificationID identifies this particular notification, so a
	// dashboard or monitor consumer can deduplicate deliveries after a
	// retry.
	NotificationID string
	HumanID        string
	HumanSegment   int
	RobotID        string
	RobotSegment   int
	FromTimestamp  uint64
	ToTimestamp    uint64
	Mode           map[string]string
	Likelihood     float64
}
