package synth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xob0t/covercraft/pkg/cache"
	"github.com/xob0t/covercraft/pkg/errors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestClientURLResponse(t *testing.T) {
	art := pngBytes(t, 64, 32)
	var got generationRequest

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /images/generations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": srv.URL + "/art.png"}},
		})
	})
	mux.HandleFunc("GET /art.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(art)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", Model: "seedream"})
	img, err := c.Synthesize(context.Background(), Request{Prompt: "calm gradient", Width: 3072, Height: 1306, Quality: "hd"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Errorf("decoded size = %v", img.Bounds().Size())
	}
	want := generationRequest{Model: "seedream", Prompt: "calm gradient", Size: "3072x1306", Quality: "hd", N: 1}
	if got != want {
		t.Errorf("request body = %+v, want %+v", got, want)
	}
}

func TestClientB64Response(t *testing.T) {
	art := pngBytes(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(art)}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	img, err := c.Synthesize(context.Background(), Request{Prompt: "p", Width: 10, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 10 {
		t.Errorf("size = %v", img.Bounds())
	}
}

func TestClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    errors.Code
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}, errors.ErrCodeNetwork},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{"))
		}, errors.ErrCodeNetwork},
		{"empty data", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[]}`))
		}, errors.ErrCodeNetwork},
		{"not an image", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[{"b64_json":"aGVsbG8="}]}`))
		}, errors.ErrCodeNetwork},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}, errors.ErrCodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 100 * time.Millisecond})
			_, err := c.Synthesize(context.Background(), Request{Prompt: "p", Width: 8, Height: 8})
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestClientRequiresKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := c.Synthesize(context.Background(), Request{Prompt: "p"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

type countingSynth struct {
	calls atomic.Int32
	err   error
}

func (s *countingSynth) Synthesize(ctx context.Context, req Request) (image.Image, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewNRGBA(image.Rect(0, 0, req.Width, req.Height))
	img.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 255})
	return img, nil
}

func TestCachedServesRepeats(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := &countingSynth{}
	s := NewCached(inner, fc, "m", time.Hour, log.New(&bytes.Buffer{}))
	req := Request{Prompt: "p", Width: 4, Height: 3, Quality: "hd"}

	for i := 0; i < 3; i++ {
		img, err := s.Synthesize(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if r, g, b, _ := img.At(0, 0).RGBA(); r>>8 != 1 || g>>8 != 2 || b>>8 != 3 {
			t.Errorf("pixel = %d,%d,%d", r>>8, g>>8, b>>8)
		}
	}
	if n := inner.calls.Load(); n != 1 {
		t.Errorf("inner calls = %d, want 1", n)
	}

	if s.Key(req) == s.Key(Request{Prompt: "p", Width: 4, Height: 3, Quality: "standard"}) {
		t.Error("quality should change the key")
	}
}

func TestCachedPassesErrorsThrough(t *testing.T) {
	inner := &countingSynth{err: errors.New(errors.ErrCodeTimeout, "slow")}
	s := NewCached(inner, nil, "m", 0, log.New(&bytes.Buffer{}))
	if _, err := s.Synthesize(context.Background(), Request{Prompt: "p", Width: 1, Height: 1}); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("err = %v", err)
	}
}
