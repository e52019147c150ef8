// Command rfbreplay replays a captured VNC session from a packet
// capture file, decoding the RFB protocol exchange and writing a
// screenshot of the final framebuffer plus a session index entry.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/rjsadow/rfbreplay/internal/capture"
	"github.com/rjsadow/rfbreplay/internal/config"
	"github.com/rjsadow/rfbreplay/internal/index"
	"github.com/rjsadow/rfbreplay/internal/rfb"
	"github.com/rjsadow/rfbreplay/internal/rfberrors"
	"github.com/rjsadow/rfbreplay/internal/storage"
	"github.com/rjsadow/rfbreplay/internal/wire"
)

const (
	exitOK            = 0
	exitCaptureError  = 1
	exitProtocolError = 2
	exitUnrecoverable = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.LoadWithFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCaptureError
	}

	slog.SetDefault(slog.New(newLogHandler(cfg)))

	var idx *index.DB
	if cfg.IndexPath != "" {
		idx, err = index.Open(cfg.IndexPath)
		if err != nil {
			slog.Error("failed to open session index", "phase", "index", "error", err)
			return exitUnrecoverable
		}
		defer idx.Close()
	}

	if cfg.PruneOlderThan != "" {
		age, err := time.ParseDuration(cfg.PruneOlderThan)
		if err != nil {
			slog.Error("invalid -prune duration", "phase", "index", "error", err)
			return exitCaptureError
		}
		if idx == nil {
			slog.Error("prune requested but indexing is disabled (-index is empty)", "phase", "index")
			return exitCaptureError
		}
		n, err := idx.PruneOlderThan(context.Background(), age)
		if err != nil {
			slog.Error("prune failed", "phase", "index", "error", err)
			return exitUnrecoverable
		}
		slog.Info("pruned session index", "phase", "index", "removed", n)
		if cfg.CapturePath == "" {
			return exitOK
		}
	}

	return replay(cfg, idx)
}

func replay(cfg *config.Config, idx *index.DB) int {
	sessions, err := capture.ReadFile(cfg.CapturePath)
	if err != nil {
		slog.Error("failed to read capture", "phase", "capture", "error", err)
		return exitCaptureError
	}

	server, client, err := wire.Locate(sessions)
	if err != nil {
		slog.Error("no RFB session found in capture", "phase", "capture", "error", err)
		return exitCaptureError
	}

	var lastOpcode uint8
	var lastOrigin wire.Origin
	trace := func(_ time.Time, origin wire.Origin, opcode uint8) {
		lastOrigin, lastOpcode = origin, opcode
	}

	sess, err := rfb.NewSession(server, client, trace)
	if err != nil {
		slog.Error("RFB handshake failed", "phase", "handshake", "error", err)
		return exitProtocolError
	}

	if err := sess.Run(); err != nil {
		slog.Error("replay failed", "phase", "replay", "origin", lastOrigin, "opcode", lastOpcode, "error", err)
		if isProtocolError(err) {
			return exitProtocolError
		}
		return exitUnrecoverable
	}

	store, err := newStore(cfg)
	if err != nil {
		slog.Error("failed to configure artifact storage", "phase", "replay", "error", err)
		return exitUnrecoverable
	}

	id := uuid.New().String()
	screenshotPath, err := saveScreenshot(store, id, sess.Context.Framebuffer)
	if err != nil {
		slog.Error("failed to save screenshot", "phase", "replay", "error", err)
		return exitUnrecoverable
	}

	if idx != nil {
		rec := &index.SessionRecord{
			ID:                id,
			CapturePath:       cfg.CapturePath,
			ServerName:        sess.Context.Name,
			ProtocolVersion:   sess.Context.Version.String(),
			SecurityType:      sess.Context.Security.String(),
			Width:             sess.Context.Framebuffer.Width,
			Height:            sess.Context.Framebuffer.Height,
			ScreenshotPath:    screenshotPath,
			OutputDir:         outputLocation(cfg),
			TypedText:         sess.Context.TypedText.String(),
			Clipboard:         sess.Context.Clipboard,
			ClientEventCounts: index.EventCounts(sess.Context.ClientEventCounts),
			ServerEventCounts: index.EventCounts(sess.Context.ServerEventCounts),
		}
		if err := idx.RecordSession(context.Background(), rec); err != nil {
			slog.Error("failed to record session in index", "phase", "replay", "error", err)
			return exitUnrecoverable
		}
	}

	slog.Info("replay complete",
		"phase", "replay",
		"server_name", sess.Context.Name,
		"width", sess.Context.Framebuffer.Width,
		"height", sess.Context.Framebuffer.Height,
		"screenshot", screenshotPath,
	)
	return exitOK
}

func isProtocolError(err error) bool {
	var pe *rfberrors.ProtocolError
	return errors.As(err, &pe)
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.UsesS3() {
		return storage.NewS3Store(cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint, cfg.S3Prefix, cfg.S3AccessKeyID, cfg.S3SecretAccessKey)
	}
	return storage.NewLocalStore(cfg.OutputDir), nil
}

// outputLocation reports where this run's artifacts actually landed,
// for the session index's output-location field: the local directory,
// or an s3:// URI when S3Bucket is configured.
func outputLocation(cfg *config.Config) string {
	if cfg.UsesS3() {
		if cfg.S3Prefix == "" {
			return fmt.Sprintf("s3://%s", cfg.S3Bucket)
		}
		return fmt.Sprintf("s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
	}
	return cfg.OutputDir
}

// saveScreenshot renders the final framebuffer screen to a PNG and
// saves it via store, returning the storage path.
func saveScreenshot(store storage.Store, name string, fb *rfb.Framebuffer) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			srcOff := (y*fb.Width + x) * 3
			img.SetRGBA(x, y, color.RGBA{
				R: fb.Screen[srcOff],
				G: fb.Screen[srcOff+1],
				B: fb.Screen[srcOff+2],
				A: 0xff,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode screenshot png: %w", err)
	}
	return store.Save(name, &buf)
}

func newLogHandler(cfg *config.Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.LogFormat == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
