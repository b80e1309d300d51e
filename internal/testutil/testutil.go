// Package testutil provides shared test helpers and fixtures for the
// voxel packages.
package testutil

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// Get serves a GET for path through h and returns the recorder.
func Get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// GetJSON serves a GET for path through h, decodes the body into v and
// returns the status code.
func GetJSON(t testing.TB, h http.Handler, path string, v interface{}) int {
	t.Helper()
	rec := Get(h, path)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("%s: Content-Type = %q, want application/json", path, ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("%s: decode body: %v", path, err)
	}
	return rec.Code
}

// UniformImage returns a w×h opaque image filled with c.
func UniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// GreyImage returns a w×h opaque grey image with every channel set to v.
func GreyImage(w, h int, v uint8) *image.NRGBA {
	return UniformImage(w, h, color.NRGBA{R: v, G: v, B: v, A: 255})
}

// EncodePNG encodes img as PNG and fails the test on error.
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
