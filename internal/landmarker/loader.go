package landmarker

import (
	"context"
	"sync"

	"poseview/internal/models"
	"poseview/pkg/log"
)

// ResolveFunc resolves the model asset to a local path.
type ResolveFunc func(ctx context.Context) (string, error)

// ConnectFunc builds a detector handle for the given options.
type ConnectFunc func(opts models.LandmarkerOptions) (*Landmarker, error)

// DefaultConnect dials the engine at wsURL and starts its read/write loops.
func DefaultConnect(wsURL string) ConnectFunc {
	return func(opts models.LandmarkerOptions) (*Landmarker, error) {
		engine := NewEngine(wsURL)
		engine.Start()
		return newLandmarker(opts, engine), nil
	}
}

// Loader runs the one-shot initialization sequence per source selection:
// resolve the model asset, construct the detector in video mode. Loads are
// numbered; a load superseded by a newer one discards its result instead of
// replacing the current handle, so reselecting a source mid-load cannot
// install a stale detector.
type Loader struct {
	resolve ResolveFunc
	connect ConnectFunc

	onReady func(*Landmarker)
	onError func(error)

	mu         sync.Mutex
	generation uint64
	current    *Landmarker
}

func NewLoader(resolve ResolveFunc, connect ConnectFunc, onReady func(*Landmarker), onError func(error)) *Loader {
	return &Loader{
		resolve: resolve,
		connect: connect,
		onReady: onReady,
		onError: onError,
	}
}

// Load starts an asynchronous initialization. A newer Load or Close
// invalidates it.
func (ld *Loader) Load(ctx context.Context) {
	ld.mu.Lock()
	ld.generation++
	gen := ld.generation
	ld.mu.Unlock()

	go ld.run(ctx, gen)
}

func (ld *Loader) run(ctx context.Context, gen uint64) {
	path, err := ld.resolve(ctx)
	if err != nil {
		ld.fail(gen, err)
		return
	}

	lm, err := ld.connect(models.DefaultLandmarkerOptions(path))
	if err != nil {
		ld.fail(gen, err)
		return
	}

	ld.mu.Lock()
	if gen != ld.generation {
		ld.mu.Unlock()
		lm.Close()
		log.Debug(log.Fields{"generation": gen}, "discarding superseded landmarker load")
		return
	}
	prev := ld.current
	ld.current = lm
	ld.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	if ld.onReady != nil {
		ld.onReady(lm)
	}
}

func (ld *Loader) fail(gen uint64, err error) {
	ld.mu.Lock()
	stale := gen != ld.generation
	ld.mu.Unlock()

	if stale {
		return
	}

	log.Error(log.Fields{"error": err.Error()}, "landmarker load failed")
	if ld.onError != nil {
		ld.onError(err)
	}
}

// Current returns the live detector handle, or nil while none is loaded.
func (ld *Loader) Current() *Landmarker {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.current
}

// Close invalidates any in-flight load and releases the current handle.
func (ld *Loader) Close() {
	ld.mu.Lock()
	ld.generation++
	cur := ld.current
	ld.current = nil
	ld.mu.Unlock()

	if cur != nil {
		cur.Close()
	}
}
