package models

// Landmark is a single pose point in normalized image coordinates.
type Landmark struct {
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	Z          float32 `json:"z"`
	Visibility float32 `json:"visibility"`
}

// PoseResult is one detected pose: 33 landmarks in model order.
type PoseResult struct {
	Landmarks []Landmark `json:"landmarks"`
}

const (
	DelegateGPU      = "GPU"
	RunningModeVideo = "VIDEO"

	ModelFileName = "pose_landmarker_heavy.task"
)

// LandmarkerOptions mirrors the fixed detector configuration: GPU delegate,
// video streaming mode, a single pose. Not user-configurable.
type LandmarkerOptions struct {
	ModelAssetPath string
	Delegate       string
	RunningMode    string
	NumPoses       int
}

func DefaultLandmarkerOptions(modelAssetPath string) LandmarkerOptions {
	return LandmarkerOptions{
		ModelAssetPath: modelAssetPath,
		Delegate:       DelegateGPU,
		RunningMode:    RunningModeVideo,
		NumPoses:       1,
	}
}

// PoseConnections lists the landmark index pairs that form the skeleton
// drawn over the video.
var PoseConnections = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 7},
	{0, 4}, {4, 5}, {5, 6}, {6, 8},
	{9, 10},
	{11, 12},
	{11, 13}, {13, 15}, {15, 17}, {15, 19}, {15, 21}, {17, 19},
	{12, 14}, {14, 16}, {16, 18}, {16, 20}, {16, 22}, {18, 20},
	{11, 23}, {12, 24}, {23, 24},
	{23, 25}, {25, 27}, {27, 29}, {29, 31}, {27, 31},
	{24, 26}, {26, 28}, {28, 30}, {30, 32}, {28, 32},
}
