// Package session holds the transient viewer state: which video source the
// user picked and the feedback line shown in the UI. Selecting one source
// always clears the other before the selection gate opens.
package session

import (
	"io"
	"sync"

	"poseview/internal/assets"
)

type State struct {
	mu sync.Mutex

	useWebcam      bool
	videoSrc       string
	sourceSelected bool
	feedback       string

	// staged is the tracker-owned copy of an uploaded video, if any.
	staged  string
	tracker *assets.Tracker
}

func New(tracker *assets.Tracker) *State {
	return &State{tracker: tracker}
}

// SelectWebcam clears any previously selected file source, then marks the
// webcam as the active source.
func (s *State) SelectWebcam() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseStagedLocked()
	s.videoSrc = ""
	s.useWebcam = true
	s.sourceSelected = true
}

// SelectFile clears the webcam flag, then marks path as the active source.
func (s *State) SelectFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.useWebcam = false
	s.releaseStagedLocked()
	s.videoSrc = path
	s.sourceSelected = true
}

// StageAndSelect copies an uploaded video into the asset tracker and selects
// the staged copy. A previously staged copy is released.
func (s *State) StageAndSelect(name string, r io.Reader) (string, error) {
	path, err := s.tracker.Create(name, r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.useWebcam = false
	s.releaseStagedLocked()
	s.staged = path
	s.videoSrc = path
	s.sourceSelected = true

	return path, nil
}

// Reset returns to the source selection gate and releases any staged copy.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseStagedLocked()
	s.useWebcam = false
	s.videoSrc = ""
	s.sourceSelected = false
	s.feedback = ""
}

func (s *State) releaseStagedLocked() {
	if s.staged != "" {
		s.tracker.Release(s.staged)
		s.staged = ""
	}
}

func (s *State) UseWebcam() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useWebcam
}

func (s *State) VideoSrc() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoSrc
}

func (s *State) SourceSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceSelected
}

func (s *State) SetFeedback(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = msg
}

func (s *State) Feedback() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback
}
