package announce

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"lorestream/internal/config"
	"lorestream/internal/logging"
	"lorestream/internal/services"
)

const userAgent = "lorestream/0.1.0"

const snapshotJPEGQuality = 85

// Announcement describes one slide event.
type Announcement struct {
	Year     string
	Label    string
	Era      string
	Special  bool
	Snapshot image.Image
}

// Service is the announcement surface exposed to the pipeline.
type Service interface {
	// AnnounceSlide queues a slide announcement. Mode filtering and queue
	// overflow are handled here; delivery failures are logged, never fatal.
	AnnounceSlide(ctx context.Context, ann Announcement)
	// TestAnnouncement sends a synchronous probe so operators can verify
	// the webhook before going live.
	TestAnnouncement(ctx context.Context) error
	// Close drains the queue and stops the worker.
	Close()
}

// NewService builds a webhook announcer, or a noop when the webhook is
// unconfigured or the mode is "none".
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	url := strings.TrimSpace(cfg.Announce.WebhookURL)
	if url == "" || cfg.Announce.Mode == "none" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Announce.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	queueSize := cfg.Announce.QueueSize
	if queueSize <= 0 {
		queueSize = 50
	}

	svc := &webhookService{
		url:    url,
		mode:   cfg.Announce.Mode,
		client: &http.Client{Timeout: timeout},
		logger: logging.NewComponentLogger(logger, "announce"),
		queue:  make(chan Announcement, queueSize),
		done:   make(chan struct{}),
	}
	go svc.worker()
	return svc
}

type webhookService struct {
	url    string
	mode   string
	client *http.Client
	logger *slog.Logger
	queue  chan Announcement
	done   chan struct{}

	closeOnce sync.Once
}

func (w *webhookService) AnnounceSlide(_ context.Context, ann Announcement) {
	if w.mode == "special" && !ann.Special {
		return
	}
	select {
	case w.queue <- ann:
	default:
		w.logger.Warn("announcement queue full, dropping slide announcement",
			logging.String("label", ann.Label))
	}
}

func (w *webhookService) TestAnnouncement(ctx context.Context) error {
	return w.send(ctx, Announcement{
		Year:  "0",
		Label: "Webhook test",
		Era:   "Diagnostics",
	})
}

func (w *webhookService) Close() {
	w.closeOnce.Do(func() {
		close(w.queue)
		<-w.done
	})
}

func (w *webhookService) worker() {
	defer close(w.done)
	for ann := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.client.Timeout)
		if err := w.send(ctx, ann); err != nil {
			w.logger.Warn("announcement delivery failed",
				logging.String("label", ann.Label), logging.Error(err))
		}
		cancel()
	}
}

func (w *webhookService) send(ctx context.Context, ann Announcement) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	fields := map[string]string{
		"year":    ann.Year,
		"label":   ann.Label,
		"era":     ann.Era,
		"special": strconv.FormatBool(ann.Special),
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return services.Wrap(services.ErrAnnouncement, "announce", "send", "encode form field", err)
		}
	}
	if ann.Snapshot != nil {
		part, err := form.CreateFormFile("snapshot", "slide.jpg")
		if err != nil {
			return services.Wrap(services.ErrAnnouncement, "announce", "send", "create snapshot part", err)
		}
		if err := jpeg.Encode(part, ann.Snapshot, &jpeg.Options{Quality: snapshotJPEGQuality}); err != nil {
			return services.Wrap(services.ErrAnnouncement, "announce", "send", "encode snapshot", err)
		}
	}
	if err := form.Close(); err != nil {
		return services.Wrap(services.ErrAnnouncement, "announce", "send", "finalize form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, &body)
	if err != nil {
		return services.Wrap(services.ErrAnnouncement, "announce", "send", "build webhook request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrAnnouncement, "announce", "send", "post webhook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrAnnouncement, "announce", "send",
			fmt.Sprintf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) AnnounceSlide(context.Context, Announcement) {}

func (noopService) TestAnnouncement(context.Context) error { return nil }

func (noopService) Close() {}
