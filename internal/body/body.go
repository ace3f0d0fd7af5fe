package body

// Body is implemented by Human and Robot: the two body variants that
// own an ordered list of segments and present a shared id/segment
// surface to the registry and history engine.
type Body interface {
	ID() string
	Segments() []Segment
}

// Human is a body with no mode: its state is simply samples produced
// per keypoint.
type Human struct {
	IDValue     string
	SegmentList []Segment
}

// ID returns the human's body id.
func (h *Human) ID() string { return h.IDValue }

// Segments returns the human's ordered segment list.
func (h *Human) Segments() []Segment { return h.SegmentList }

// Robot is a body whose state additionally carries a discrete mode at
// each reported timestamp.
type Robot struct {
	IDValue          string
	SegmentList      []Segment
	MessageFrequency uint
}

// ID returns the robot's body id.
func (r *Robot) ID() string { return r.IDValue }

// Segments returns the robot's ordered segment list.
func (r *Robot) Segments() []Segment { return r.SegmentList }

var (
	_ Body = (*Human)(nil)
	_ Body = (*Robot)(nil)
)
