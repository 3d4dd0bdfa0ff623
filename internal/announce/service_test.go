package announce_test

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"lorestream/internal/announce"
	"lorestream/internal/config"
)

type capture struct {
	mu       sync.Mutex
	requests []map[string]string
	hadFile  []bool
	status   int
}

func (c *capture) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields := map[string]string{}
		for key := range r.MultipartForm.Value {
			fields[key] = r.FormValue(key)
		}
		_, _, fileErr := r.FormFile("snapshot")

		c.mu.Lock()
		c.requests = append(c.requests, fields)
		c.hadFile = append(c.hadFile, fileErr == nil)
		status := c.status
		c.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
		}
	}
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func serviceFor(t *testing.T, url, mode string) announce.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Announce.WebhookURL = url
	cfg.Announce.Mode = mode
	return announce.NewService(&cfg, nil)
}

func TestAnnounceSlideDeliversMultipart(t *testing.T) {
	cap := &capture{}
	server := httptest.NewServer(cap.handler())
	defer server.Close()

	svc := serviceFor(t, server.URL, "all")
	snapshot := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			snapshot.Set(x, y, color.RGBA{R: 50, G: 100, B: 150, A: 255})
		}
	}
	svc.AnnounceSlide(context.Background(), announce.Announcement{
		Year:     "1969",
		Label:    "1969",
		Era:      "Space Age",
		Special:  true,
		Snapshot: snapshot,
	})
	svc.Close()

	if cap.count() != 1 {
		t.Fatalf("got %d deliveries, want 1", cap.count())
	}
	fields := cap.requests[0]
	if fields["year"] != "1969" || fields["era"] != "Space Age" || fields["special"] != "true" {
		t.Fatalf("fields = %v", fields)
	}
	if !cap.hadFile[0] {
		t.Fatal("expected snapshot file part")
	}
}

func TestSpecialModeFiltersOrdinarySlides(t *testing.T) {
	cap := &capture{}
	server := httptest.NewServer(cap.handler())
	defer server.Close()

	svc := serviceFor(t, server.URL, "special")
	svc.AnnounceSlide(context.Background(), announce.Announcement{Label: "1969", Special: false})
	svc.AnnounceSlide(context.Background(), announce.Announcement{Label: "1970", Special: true})
	svc.Close()

	if cap.count() != 1 {
		t.Fatalf("got %d deliveries, want 1", cap.count())
	}
	if cap.requests[0]["label"] != "1970" {
		t.Fatalf("wrong slide announced: %v", cap.requests[0])
	}
}

func TestUnconfiguredWebhookIsNoop(t *testing.T) {
	svc := serviceFor(t, "", "all")
	svc.AnnounceSlide(context.Background(), announce.Announcement{Label: "1969"})
	if err := svc.TestAnnouncement(context.Background()); err != nil {
		t.Fatalf("noop TestAnnouncement: %v", err)
	}
	svc.Close()
}

func TestModeNoneIsNoop(t *testing.T) {
	cap := &capture{}
	server := httptest.NewServer(cap.handler())
	defer server.Close()

	svc := serviceFor(t, server.URL, "none")
	svc.AnnounceSlide(context.Background(), announce.Announcement{Label: "1969", Special: true})
	svc.Close()

	if cap.count() != 0 {
		t.Fatalf("mode none delivered %d announcements", cap.count())
	}
}

func TestTestAnnouncementReportsServerError(t *testing.T) {
	cap := &capture{status: http.StatusBadGateway}
	server := httptest.NewServer(cap.handler())
	defer server.Close()

	svc := serviceFor(t, server.URL, "all")
	defer svc.Close()
	if err := svc.TestAnnouncement(context.Background()); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestDeliveryFailureDoesNotPropagate(t *testing.T) {
	svc := serviceFor(t, "http://127.0.0.1:1/unroutable", "all")
	// Must not panic or block; the worker logs and moves on.
	svc.AnnounceSlide(context.Background(), announce.Announcement{Label: "1969"})
	svc.Close()
}
