package mdstyle

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

// encodePNG returns a w x h PNG.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// forgedPNG returns a PNG whose IHDR declares a w x h RGBA canvas, followed
// by an empty IDAT and IEND. It is a few dozen bytes whatever the size.
func forgedPNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		buf.Write(body)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // truecolor with alpha
	chunk("IHDR", ihdr)
	chunk("IDAT", nil)
	chunk("IEND", nil)
	return buf.Bytes()
}

// newImageServer serves fixed bodies by path and 404 for anything else.
func newImageServer(t *testing.T, bodies map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScaleBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		width, height float64
		maxWidth      float64
		wantW, wantH  float64
	}{
		{"wider than max", 200, 100, 100, 100, 50},
		{"narrower than max", 50, 40, 100, 50, 40},
		{"equal to max", 100, 30, 100, 100, 30},
		{"tall image", 400, 1000, 200, 200, 500},
		{"zero max keeps size", 200, 100, 0, 200, 100},
		{"negative max keeps size", 200, 100, -1, 200, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, h := ScaleBounds(tt.width, tt.height, tt.maxWidth)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ScaleBounds(%v, %v, %v) = (%v, %v), want (%v, %v)",
					tt.width, tt.height, tt.maxWidth, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestValidateImageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"http://x/img.png", false},
		{"https://example.com/a/b.jpg?size=2", false},
		{"HTTPS://EXAMPLE.COM/a.png", false},
		{"  https://example.com/a.png  ", false},
		{"", true},
		{"img.png", true},
		{"/abs/img.png", true},
		{"file:///etc/passwd", true},
		{"ftp://x/img.png", true},
		{"data:image/png;base64,AAAA", true},
		{"http:///nohost.png", true},
		{"http://[::1", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			_, err := ValidateImageURL(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidImageURL) {
					t.Errorf("ValidateImageURL(%q) error = %v, want ErrInvalidImageURL", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateImageURL(%q) unexpected error: %v", tt.raw, err)
			}
		})
	}
}

func TestDecodeAttachment(t *testing.T) {
	t.Parallel()

	t.Run("png scaled to max width", func(t *testing.T) {
		t.Parallel()
		att, err := DecodeAttachment("u", encodePNG(t, 200, 100), 100)
		if err != nil {
			t.Fatalf("DecodeAttachment() error: %v", err)
		}
		if att.Format != "png" || att.NativeWidth != 200 || att.NativeHeight != 100 {
			t.Errorf("attachment = %+v", att)
		}
		want := Rect{Y: -5, Width: 100, Height: 50}
		if att.Bounds != want {
			t.Errorf("Bounds = %+v, want %+v", att.Bounds, want)
		}
		if att.Source != "u" || att.Image == nil {
			t.Errorf("Source = %q, Image = %v", att.Source, att.Image)
		}
	})

	t.Run("gif", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		img := image.NewPaletted(image.Rect(0, 0, 10, 20), color.Palette{color.Black, color.White})
		if err := gif.Encode(&buf, img, nil); err != nil {
			t.Fatalf("encoding gif: %v", err)
		}
		att, err := DecodeAttachment("u", buf.Bytes(), 100)
		if err != nil {
			t.Fatalf("DecodeAttachment() error: %v", err)
		}
		if att.Format != "gif" || att.Bounds.Width != 10 || att.Bounds.Height != 20 {
			t.Errorf("attachment = %+v", att)
		}
	})

	errTests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"plain text", []byte("not an image at all"), ErrUnsupportedImage},
		{"html", []byte("<html><body>404</body></html>"), ErrUnsupportedImage},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"), ErrUnsupportedImage},
		{"empty", nil, ErrUnsupportedImage},
		{"huge declared canvas", forgedPNG(20000, 20000), ErrImageTooLarge},
		{"wide declared canvas", forgedPNG(1<<30, 1), ErrImageTooLarge},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeAttachment("u", tt.data, 100)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeAttachment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPImageLoader_Load(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t, map[string][]byte{
		"/img.png":  encodePNG(t, 200, 100),
		"/text.txt": []byte("hello"),
	})

	tests := []struct {
		name    string
		url     string
		opts    []LoaderOption
		wantErr error
	}{
		{name: "ok", url: srv.URL + "/img.png"},
		{name: "not found", url: srv.URL + "/missing.png", wantErr: ErrImageFetch},
		{name: "not an image", url: srv.URL + "/text.txt", wantErr: ErrUnsupportedImage},
		{name: "too large", url: srv.URL + "/img.png", opts: []LoaderOption{WithMaxBytes(16)}, wantErr: ErrImageTooLarge},
		{name: "too many pixels", url: srv.URL + "/img.png", opts: []LoaderOption{WithMaxPixels(200*100 - 1)}, wantErr: ErrImageTooLarge},
		{name: "pixel cap reached exactly", url: srv.URL + "/img.png", opts: []LoaderOption{WithMaxPixels(200 * 100)}},
		{name: "invalid url", url: "not a url", wantErr: ErrInvalidImageURL},
		{name: "unreachable", url: "http://127.0.0.1:1/img.png", wantErr: ErrImageFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := NewHTTPImageLoader(append(tt.opts, WithLoaderLogger(zaptest.NewLogger(t)))...)
			att, err := l.Load(context.Background(), tt.url, 100)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load(%q) error = %v, want %v", tt.url, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load(%q) unexpected error: %v", tt.url, err)
			}
			if att.Bounds.Width != 100 || att.Bounds.Height != 50 {
				t.Errorf("Bounds = %+v, want 100x50", att.Bounds)
			}
		})
	}
}

func TestHTTPImageLoader_UserAgent(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, 1, 1)
	var (
		mu  sync.Mutex
		got string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = r.Header.Get("User-Agent")
		mu.Unlock()
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)

	l := NewHTTPImageLoader(WithUserAgent("mdstyle-test/1.0"), WithHTTPClient(srv.Client()))
	if _, err := l.Load(context.Background(), srv.URL+"/a.png", 100); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if got != "mdstyle-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", got, "mdstyle-test/1.0")
	}
}

func TestHTTPImageLoader_Handle(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t, map[string][]byte{"/img.png": encodePNG(t, 50, 50)})
	l := NewHTTPImageLoader(WithLoaderLogger(zaptest.NewLogger(t)))

	t.Run("success", func(t *testing.T) {
		var got *Attachment
		calls := 0
		l.Handle(srv.URL+"/img.png", 100, func(a *Attachment) {
			calls++
			got = a
		})
		if calls != 1 || got == nil {
			t.Fatalf("calls = %d, attachment = %v", calls, got)
		}
		if got.Bounds.Width != 50 {
			t.Errorf("Width = %v, want 50 (not upscaled)", got.Bounds.Width)
		}
	})

	t.Run("failure resolves nil", func(t *testing.T) {
		calls := 0
		var got *Attachment
		l.Handle(srv.URL+"/missing.png", 100, func(a *Attachment) {
			calls++
			got = a
		})
		if calls != 1 || got != nil {
			t.Errorf("calls = %d, attachment = %v, want one nil callback", calls, got)
		}
	})
}

func TestDecodeAttachment_HugeCanvasDoesNotAllocate(t *testing.T) {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	_, err := DecodeAttachment("u", forgedPNG(20000, 20000), 100)

	runtime.ReadMemStats(&after)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("DecodeAttachment() error = %v, want ErrImageTooLarge", err)
	}
	if grew := after.TotalAlloc - before.TotalAlloc; grew > 64<<20 {
		t.Errorf("allocated %d MiB for a rejected image", grew>>20)
	}
}

func TestWithMaxPixels_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithMaxPixels(0) should panic")
		}
	}()
	WithMaxPixels(0)
}

func TestWithMaxBytes_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithMaxBytes(0) should panic")
		}
	}()
	WithMaxBytes(0)
}
