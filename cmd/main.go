package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/viper"
	"gocv.io/x/gocv"

	"github.com/poselab/pose-mirror/pkg/api"
	"github.com/poselab/pose-mirror/pkg/camera"
	"github.com/poselab/pose-mirror/pkg/estimate"
	"github.com/poselab/pose-mirror/pkg/pose"
	"github.com/poselab/pose-mirror/pkg/session"
)

func main() {
	log := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}),
	)

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	setDefaults()
	if err := viper.ReadInConfig(); err != nil {
		log.Error("could not read config file", "err", err)
		os.Exit(1)
	}

	if len(viper.GetStringSlice("estimator.command")) == 0 {
		log.Error("missing critical configuration: estimator.command")
		os.Exit(1)
	}

	cap, err := camera.Open(
		viper.GetInt("camera.device_id"),
		viper.GetInt("camera.width"),
		viper.GetInt("camera.height"),
	)
	if err != nil {
		log.Error("could not open camera", "err", err)
		os.Exit(1)
	}
	defer cap.Close()

	window := camera.NewWindow("pose-mirror")
	defer window.Close()

	landmarker, err := estimate.Start(viper.GetStringSlice("estimator.command"), log)
	if err != nil {
		log.Error("could not start pose estimator", "err", err)
		os.Exit(1)
	}

	cfg := session.Config{
		TargetFPS:         viper.GetInt("pacing.target_fps"),
		CountdownSeconds:  viper.GetInt("capture.countdown_seconds"),
		ReconcileInterval: viper.GetDuration("mirror.reconcile_interval"),
		Calibration: pose.Calibration{
			PixelScale:       viper.GetFloat64("score.pixel_scale"),
			SilhouetteWeight: viper.GetFloat64("score.silhouette_weight"),
			AngleWeight:      viper.GetFloat64("score.angle_weight"),
		},
	}

	s := session.New(cfg, landmarker, cap, window, window, log)
	s.Start(context.Background())
	defer s.Close()

	log.Info("session started", "session", s.ID(), "target_fps", cfg.TargetFPS)

	go func() {
		r := api.SetRouter(s)
		if err := r.Run(":" + viper.GetString("http.port")); err != nil {
			log.Error("http server stopped", "err", err)
		}
	}()

	runPreview(cap, window, s, log)
}

// runPreview is the camera read loop: it feeds the admission gate and presents
// every frame with the current overlay and text state. Returns when the quit
// key is pressed or the device stops delivering frames.
func runPreview(cap *camera.Capture, window *camera.Window, s *session.Session, log *slog.Logger) {
	frame := gocv.NewMat()
	defer frame.Close()

	for {
		if !cap.Read(&frame) {
			log.Warn("camera stopped delivering frames")
			return
		}

		s.OfferFrame(time.Now().UnixMilli(), func() ([]byte, error) {
			return camera.EncodeJPEG(frame)
		})

		st := s.Status()
		window.Present(frame, cap.Mirrored(), s.Overlay(), st.Counting)

		switch window.PollKey(1) {
		case camera.TriggerQuit:
			return
		case camera.TriggerToggleSkeleton:
			s.ToggleSkeleton()
		case camera.TriggerStartCapture:
			s.StartCapture()
		case camera.TriggerToggleMirror:
			s.ToggleMirror()
		case camera.TriggerDynamicCapture:
			s.StartDynamic()
		}
	}
}

// setDefaults registers the stock configuration values; the yaml file can
// override any of them
func setDefaults() {
	viper.SetDefault("http.port", "8080")
	viper.SetDefault("camera.device_id", 0)
	viper.SetDefault("camera.width", 1280)
	viper.SetDefault("camera.height", 720)
	viper.SetDefault("pacing.target_fps", 10)
	viper.SetDefault("capture.countdown_seconds", 5)
	viper.SetDefault("mirror.reconcile_interval", time.Second)
	viper.SetDefault("score.pixel_scale", 100.0)
	viper.SetDefault("score.silhouette_weight", 0.7)
	viper.SetDefault("score.angle_weight", 0.3)
}
