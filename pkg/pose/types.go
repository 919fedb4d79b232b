package pose

// NumLandmarks is the number of keypoints in a well formed body landmark set
const NumLandmarks = 33

// Landmark indices of the 33 point body schema (BlazePose full-body layout).
// Scoring and drawing address landmarks only through these names.
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
)

// Torso index range used by the body part score (shoulders through hips inclusive)
const (
	torsoFirst = LeftShoulder
	torsoLast  = RightHip
)

// Point is a single keypoint in pixel space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks is one frame's keypoint set, index addressed by the schema above.
// A set with fewer than NumLandmarks entries is treated as "undetected": scoring
// returns the worst grade and drawing skips out of range connections.
type Landmarks []Point

// WellFormed reports whether the set carries the full landmark schema
func (l Landmarks) WellFormed() bool {
	return len(l) >= NumLandmarks
}

// Clone returns a defensive copy, used when a snapshot must outlive the live set
func (l Landmarks) Clone() Landmarks {
	if l == nil {
		return nil
	}
	out := make(Landmarks, len(l))
	copy(out, l)
	return out
}
