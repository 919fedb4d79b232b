package pose

// Group tags a skeleton connection with the body region it belongs to, so the
// display can style each region distinctly
type Group int

const (
	GroupFace Group = iota
	GroupTorso
	GroupLeftArm
	GroupRightArm
	GroupLeftLeg
	GroupRightLeg
)

// Connection is one bone of the fixed anatomical graph
type Connection struct {
	A, B  int
	Group Group
}

// Connections is the fixed anatomical connection table drawn by the overlay.
// Indices follow the landmark schema in types.go.
var Connections = []Connection{
	//face
	{Nose, LeftEyeInner, GroupFace},
	{LeftEyeInner, LeftEye, GroupFace},
	{LeftEye, LeftEyeOuter, GroupFace},
	{LeftEyeOuter, LeftEar, GroupFace},
	{Nose, RightEyeInner, GroupFace},
	{RightEyeInner, RightEye, GroupFace},
	{RightEye, RightEyeOuter, GroupFace},
	{RightEyeOuter, RightEar, GroupFace},
	{MouthLeft, MouthRight, GroupFace},
	//torso
	{LeftShoulder, RightShoulder, GroupTorso},
	{LeftShoulder, LeftHip, GroupTorso},
	{RightShoulder, RightHip, GroupTorso},
	{LeftHip, RightHip, GroupTorso},
	//left arm
	{LeftShoulder, LeftElbow, GroupLeftArm},
	{LeftElbow, LeftWrist, GroupLeftArm},
	{LeftWrist, LeftPinky, GroupLeftArm},
	{LeftWrist, LeftIndex, GroupLeftArm},
	{LeftWrist, LeftThumb, GroupLeftArm},
	{LeftPinky, LeftIndex, GroupLeftArm},
	//right arm
	{RightShoulder, RightElbow, GroupRightArm},
	{RightElbow, RightWrist, GroupRightArm},
	{RightWrist, RightPinky, GroupRightArm},
	{RightWrist, RightIndex, GroupRightArm},
	{RightWrist, RightThumb, GroupRightArm},
	{RightPinky, RightIndex, GroupRightArm},
	//left leg
	{LeftHip, LeftKnee, GroupLeftLeg},
	{LeftKnee, LeftAnkle, GroupLeftLeg},
	{LeftAnkle, LeftHeel, GroupLeftLeg},
	{LeftHeel, LeftFootIndex, GroupLeftLeg},
	{LeftAnkle, LeftFootIndex, GroupLeftLeg},
	//right leg
	{RightHip, RightKnee, GroupRightLeg},
	{RightKnee, RightAnkle, GroupRightLeg},
	{RightAnkle, RightHeel, GroupRightLeg},
	{RightHeel, RightFootIndex, GroupRightLeg},
	{RightAnkle, RightFootIndex, GroupRightLeg},
}

// Line is a single bone draw command
type Line struct {
	From, To Point
	Group    Group
}

// Marker is a single joint draw command
type Marker struct {
	At Point
}

// DrawList is the overlay's output for one frame. Mirrored asks the display to
// flip the whole surface horizontally at presentation time; the command
// coordinates themselves stay in sensor native space so scoring and drawing
// never disagree about where a joint is.
type DrawList struct {
	Mirrored bool
	Lines    []Line
	Markers  []Marker
}

// Render maps a keypoint set onto the connection table. A hidden overlay or an
// empty set yields no commands. Connections whose endpoints are beyond the set
// length are skipped rather than failing.
func Render(kps Landmarks, visible, mirror bool) DrawList {
	dl := DrawList{Mirrored: mirror}
	if !visible || len(kps) == 0 {
		return dl
	}

	for _, c := range Connections {
		if c.A >= len(kps) || c.B >= len(kps) {
			continue
		}
		dl.Lines = append(dl.Lines, Line{From: kps[c.A], To: kps[c.B], Group: c.Group})
	}

	for _, p := range kps {
		dl.Markers = append(dl.Markers, Marker{At: p})
	}

	return dl
}
