package ui

import (
	"context"
	"fmt"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"poseview/internal/assets"
	"poseview/internal/config"
	"poseview/internal/landmarker"
	"poseview/internal/modelapi"
	"poseview/internal/session"
	"poseview/internal/ui/cwidget"
	"poseview/processing/capture"
	"poseview/processing/overlay"
)

// ViewerApp is the desktop viewer. It shows the source selection gate until
// a source is picked, then the video view with the pose overlay.
type ViewerApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	cfg     *config.Config
	state   *session.State
	client  *modelapi.Client
	tracker *assets.Tracker

	loader    *landmarker.Loader
	processor *overlay.Processor

	videoCanvas   *canvas.Image
	latencyLabel  *widget.Label
	fpsLabel      *widget.Label
	feedbackLabel *widget.Label
}

func CreateApp(cfg *config.Config, client *modelapi.Client, tracker *assets.Tracker) *ViewerApp {
	a := app.New()
	w := a.NewWindow("Pose Viewer")
	w.Resize(fyne.NewSize(1200, 600))

	v := &ViewerApp{
		fyneApp: a,
		mainWin: w,
		cfg:     cfg,
		state:   session.New(tracker),
		client:  client,
		tracker: tracker,
	}

	v.loader = landmarker.NewLoader(
		func(ctx context.Context) (string, error) {
			return client.ResolveModel(ctx, tracker)
		},
		landmarker.DefaultConnect(client.EngineWSURL()),
		func(lm *landmarker.Landmarker) {
			v.setFeedback("")
		},
		func(err error) {
			v.setFeedback(fmt.Sprintf("Model load failed: %v", err))
		},
	)

	v.processor = overlay.NewProcessor(cfg, v.loader)

	return v
}

func (v *ViewerApp) Run() {
	v.videoCanvas = canvas.NewImageFromImage(nil)
	v.videoCanvas.FillMode = canvas.ImageFillContain
	v.videoCanvas.SetMinSize(fyne.NewSize(640, 480))

	v.latencyLabel = widget.NewLabel("Latency: 0 ms")
	v.fpsLabel = widget.NewLabel("FPS: 0")
	v.feedbackLabel = widget.NewLabel("")
	v.feedbackLabel.Importance = widget.DangerImportance
	v.feedbackLabel.Hidden = true

	v.mainWin.SetContent(v.selectorView())

	v.mainWin.SetCloseIntercept(func() {
		v.teardown()
		v.cfg.SaveByDefault()
		v.fyneApp.Quit()
	})

	v.mainWin.CenterOnScreen()
	v.mainWin.ShowAndRun()
}

// selectorView is the gate shown until a source is selected.
func (v *ViewerApp) selectorView() fyne.CanvasObject {
	title := widget.NewLabelWithStyle("Select a video source", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	deviceSelect := widget.NewSelect([]string{"Loading cameras..."}, func(s string) {
		if s != "Loading cameras..." && s != "No cameras found" {
			v.cfg.Webcam.DeviceID = s
		}
	})
	deviceSelect.SetSelected("Loading cameras...")
	deviceSelect.Disable()

	go func() {
		devices, err := capture.ListCameras()
		fyne.Do(func() {
			if err != nil || len(devices) == 0 {
				deviceSelect.Options = []string{"No cameras found"}
			} else {
				deviceSelect.Options = devices
				deviceSelect.Enable()
				if v.cfg.Webcam.DeviceID != "" {
					deviceSelect.SetSelected(v.cfg.Webcam.DeviceID)
				} else {
					deviceSelect.SetSelected(devices[0])
				}
			}
			deviceSelect.Refresh()
		})
	}()

	webcamBtn := widget.NewButtonWithIcon("Use Webcam", theme.MediaVideoIcon(), func() {
		v.state.SelectWebcam()
		v.cfg.ActiveSource = config.SourceWebcam
		v.onSourceSelected()
	})

	pathEntry := widget.NewEntry()
	pathEntry.SetPlaceHolder("/path/to/video.mp4")
	pathEntry.SetText(v.cfg.File.Path)
	pathEntry.OnChanged = func(s string) {
		v.cfg.File.Path = s
	}

	fileBtn := widget.NewButtonWithIcon("Open File", theme.FolderOpenIcon(), func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err == nil && reader != nil {
				pathEntry.SetText(reader.URI().Path())
			}
		}, v.mainWin)
	})

	playBtn := widget.NewButtonWithIcon("Play Video", theme.MediaPlayIcon(), func() {
		if v.cfg.File.Path == "" {
			v.setFeedback("Pick a video file first")
			return
		}
		v.state.SelectFile(v.cfg.File.Path)
		v.cfg.ActiveSource = config.SourceFile
		v.onSourceSelected()
	})

	return container.NewVBox(
		title,
		v.feedbackLabel,
		widget.NewSeparator(),
		widget.NewLabel("Webcam:"),
		deviceSelect,
		webcamBtn,
		widget.NewSeparator(),
		widget.NewLabel("Video file:"),
		container.NewBorder(nil, nil, nil, fileBtn, pathEntry),
		playBtn,
		widget.NewSeparator(),
		v.settingsPanel(),
	)
}

func (v *ViewerApp) videoView() fyne.CanvasObject {
	backBtn := widget.NewButtonWithIcon("Change Source", theme.NavigateBackIcon(), func() {
		v.stopProcessing()
		v.loader.Close()
		v.state.Reset()
		v.mainWin.SetContent(v.selectorView())
	})

	stats := container.NewHBox(
		backBtn,
		widget.NewSeparator(),
		v.fpsLabel,
		widget.NewSeparator(),
		v.latencyLabel,
		v.feedbackLabel,
	)

	return container.NewBorder(stats, nil, nil, nil, v.videoCanvas)
}

// onSourceSelected runs the one-shot load sequence for the newly selected
// source and switches to the video view.
func (v *ViewerApp) onSourceSelected() {
	if !v.state.SourceSelected() {
		return
	}

	v.setFeedback("")
	v.loader.Load(context.Background())

	if err := v.startProcessing(); err != nil {
		dialog.ShowError(err, v.mainWin)
		v.state.Reset()
		return
	}

	v.mainWin.SetContent(v.videoView())
}

func (v *ViewerApp) stopProcessing() {
	if v.processor.IsActive {
		close(v.processor.StopChan)
		time.Sleep(50 * time.Millisecond)
	}

	if v.processor.InImageStream != nil {
		v.processor.InImageStream.Stop()
	}
}

func (v *ViewerApp) startProcessing() error {
	v.stopProcessing()
	v.processor.StopChan = make(chan struct{})

	streamer, err := capture.NewStreamer(v.cfg)
	if err != nil {
		return err
	}

	v.processor.InImageStream = streamer
	if err := streamer.Start(); err != nil {
		return err
	}

	v.processor.Start()
	go v.runPlayerLoop()
	go v.runStatLoop()

	return nil
}

func (v *ViewerApp) runStatLoop() {
	uiTicker := time.NewTicker(200 * time.Millisecond)
	currentStopChan := v.processor.StopChan
	defer uiTicker.Stop()

	for {
		select {
		case <-uiTicker.C:
			fyne.Do(func() {
				v.latencyLabel.SetText(fmt.Sprintf("Latency: %d ms", v.processor.Latency.Milliseconds()))
				v.fpsLabel.SetText(fmt.Sprintf("FPS: %d", v.processor.FPS))
			})
		case <-currentStopChan:
			return
		}
	}
}

func (v *ViewerApp) runPlayerLoop() {
	currentStopChan := v.processor.StopChan
	frameChan := v.processor.OutImageStream

	fps := v.cfg.GetFPS()
	if fps == 0 {
		fps = 24
	}
	displayTicker := time.NewTicker(time.Second / time.Duration(fps))
	defer displayTicker.Stop()

	var lastFrame image.Image

	for {
		select {
		case frame, ok := <-frameChan:
			if !ok {
				return
			}
			if frame != nil {
				lastFrame = frame
			}

		case <-displayTicker.C:
			if lastFrame != nil {
				fyne.Do(func() {
					v.videoCanvas.Image = lastFrame
					v.videoCanvas.Refresh()
				})
			}

		case <-currentStopChan:
			return
		}
	}
}

func (v *ViewerApp) settingsPanel() fyne.CanvasObject {
	fpsInput := cwidget.NewIntInput("FPS", "Enter integer", int(v.cfg.TargetFPS), func(i int) {
		v.cfg.SetFPS(uint(i))
	})

	widthInput := cwidget.NewIntInput("Width", "Enter integer", v.cfg.ScaledWidth, func(i int) {
		v.cfg.SetWidth(i)
	})

	heightInput := cwidget.NewIntInput("Height", "Enter integer", v.cfg.ScaledHeight, func(i int) {
		v.cfg.SetHeight(i)
	})

	return container.NewVBox(
		widget.NewLabelWithStyle("Capture settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		fpsInput,
		widthInput,
		heightInput,
	)
}

func (v *ViewerApp) setFeedback(msg string) {
	v.state.SetFeedback(msg)
	fyne.Do(func() {
		v.feedbackLabel.SetText(msg)
		v.feedbackLabel.Hidden = msg == ""
		v.feedbackLabel.Refresh()
	})
}

func (v *ViewerApp) teardown() {
	v.stopProcessing()
	v.loader.Close()
	v.state.Reset()
	v.tracker.ReleaseAll()
}
