// detector-sim stands in for a real detection pipeline: it publishes
// synthetic fire/smoke alerts to NATS at a fixed interval so the monitor
// can be exercised end to end without cameras or a vision model.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/observability"
	"github.com/your-org/firewatch/internal/queue"
)

var samples = []struct {
	severity    models.Severity
	description string
}{
	{models.SeverityFire, "Fire detected in monitoring area"},
	{models.SeveritySmoke, "Smoke detected in monitoring area"},
}

func main() {
	natsURL := flag.String("nats", "nats://localhost:4222", "NATS server URL")
	cameras := flag.String("cameras", "CAM001,CAM002,CAM003", "comma-separated camera labels")
	interval := flag.Duration("interval", 10*time.Second, "time between alerts")
	flag.Parse()

	observability.SetupLogger("info", "text")

	producer, err := queue.NewProducer(*natsURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to nats: %v\n", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStream(context.Background()); err != nil {
		slog.Error("ensure nats stream", "error", err)
		os.Exit(1)
	}

	labels := strings.Split(*cameras, ",")
	slog.Info("detector-sim running", "cameras", len(labels), "interval", interval.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()

		n := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			cameraID := strings.TrimSpace(labels[n%len(labels)])
			sample := samples[n%len(samples)]
			n++

			msg := models.AlertMessage{
				CameraID:    cameraID,
				Timestamp:   time.Now().UTC(),
				Severity:    sample.severity,
				Location:    "Simulated zone " + cameraID,
				Description: sample.description,
			}

			if err := producer.PublishAlert(ctx, cameraID, msg); err != nil {
				slog.Warn("publish alert", "camera_id", cameraID, "error", err)
				continue
			}
			slog.Info("alert published", "camera_id", cameraID, "severity", sample.severity)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("detector-sim stopped")
}
