package pose

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// WorstGrade is returned for every grade field when a keypoint set is undetected
const WorstGrade = "E"

// Score is the result of comparing a live keypoint set against a reference.
// Produced fresh on every evaluation, no history is kept.
type Score struct {
	Overall      int    `json:"overall"`
	OverallGrade string `json:"overall_grade"`
	ArmGrade     string `json:"arm_grade"`
	LegGrade     string `json:"leg_grade"`
	BodyGrade    string `json:"body_grade"`
}

// Calibration holds the fixed scoring constants. The values are calibration,
// not derived, and are kept configurable for compatibility tuning.
type Calibration struct {
	PixelScale       float64 //distance at which per point similarity reaches zero
	SilhouetteWeight float64
	AngleWeight      float64
}

// DefaultCalibration returns the stock scoring constants
func DefaultCalibration() Calibration {
	return Calibration{
		PixelScale:       100,
		SilhouetteWeight: 0.7,
		AngleWeight:      0.3,
	}
}

// angleTriplets are the four anatomical joints scored by angle: the middle
// index is the joint, the outer two span the adjacent bones. First two are
// arms, last two are legs.
var angleTriplets = [4][3]int{
	{LeftShoulder, LeftElbow, LeftWrist},
	{RightShoulder, RightElbow, RightWrist},
	{LeftHip, LeftKnee, LeftAnkle},
	{RightHip, RightKnee, RightAnkle},
}

// Evaluate compares a live keypoint set against a reference using the default
// calibration. Stateless and safe to call concurrently.
func Evaluate(current, reference Landmarks) Score {
	return EvaluateWith(DefaultCalibration(), current, reference)
}

// EvaluateWith compares a live keypoint set against a reference. If either set
// is missing landmarks the worst grade is returned without touching any index.
func EvaluateWith(cal Calibration, current, reference Landmarks) Score {
	if !current.WellFormed() || !reference.WellFormed() {
		return Score{
			Overall:      0,
			OverallGrade: WorstGrade,
			ArmGrade:     WorstGrade,
			LegGrade:     WorstGrade,
			BodyGrade:    WorstGrade,
		}
	}

	silhouette, torso := silhouetteSimilarity(cal, current, reference)

	tripletSims := make([]float64, len(angleTriplets))
	for i, t := range angleTriplets {
		a := jointAngle(current[t[0]], current[t[1]], current[t[2]])
		b := jointAngle(reference[t[0]], reference[t[1]], reference[t[2]])
		tripletSims[i] = math.Max(0, 1-math.Abs(a-b)/180)
	}
	angles := stat.Mean(tripletSims, nil) * 100

	overall := math.Round(silhouette*cal.SilhouetteWeight + angles*cal.AngleWeight)
	armScore := stat.Mean(tripletSims[:2], nil) * 100
	legScore := stat.Mean(tripletSims[2:], nil) * 100

	return Score{
		Overall:      int(overall),
		OverallGrade: gradeFor(overall),
		ArmGrade:     gradeFor(armScore),
		LegGrade:     gradeFor(legScore),
		BodyGrade:    gradeFor(torso),
	}
}

// silhouetteSimilarity centers both sets on their own centroid and converts the
// per index distances into similarities on a 0-100 scale. The second return
// value is the same similarity restricted to the torso landmarks.
func silhouetteSimilarity(cal Calibration, current, reference Landmarks) (full, torso float64) {
	curCX, curCY := centroid(current)
	refCX, refCY := centroid(reference)

	sims := make([]float64, NumLandmarks)
	for i := 0; i < NumLandmarks; i++ {
		dx := (current[i].X - curCX) - (reference[i].X - refCX)
		dy := (current[i].Y - curCY) - (reference[i].Y - refCY)
		d := math.Hypot(dx, dy)
		sims[i] = math.Max(0, 1-d/cal.PixelScale)
	}

	full = stat.Mean(sims, nil) * 100
	torso = stat.Mean(sims[torsoFirst:torsoLast+1], nil) * 100
	return full, torso
}

// centroid returns the mean x and y of a keypoint set
func centroid(l Landmarks) (float64, float64) {
	xs := make([]float64, NumLandmarks)
	ys := make([]float64, NumLandmarks)
	for i := 0; i < NumLandmarks; i++ {
		xs[i] = l[i].X
		ys[i] = l[i].Y
	}
	return stat.Mean(xs, nil), stat.Mean(ys, nil)
}

// jointAngle returns the angle in degrees at joint between the bones
// joint->a and joint->b. A zero length bone yields angle 0 instead of failing.
func jointAngle(a, joint, b Point) float64 {
	v1x, v1y := a.X-joint.X, a.Y-joint.Y
	v2x, v2y := b.X-joint.X, b.Y-joint.Y

	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	if n1 == 0 || n2 == 0 {
		return 0
	}

	cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// gradeFor maps a numeric score to its letter grade
func gradeFor(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return WorstGrade
	}
}
