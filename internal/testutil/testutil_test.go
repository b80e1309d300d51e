package testutil

import (
	"bytes"
	"image/color"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertStatusCode_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("status mismatch", func(t *testing.T) {
		AssertStatusCode(t, http.StatusOK, http.StatusBadRequest)
	})
	if ok {
		t.Fatal("expected subtest to fail on mismatched status code")
	}
}

func TestGetJSON(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	})

	var body map[string]string
	code := GetJSON(t, h, "/kettle", &body)
	AssertStatusCode(t, code, http.StatusTeapot)
	assert.Equal(t, "/kettle", body["path"])
}

func TestImageFixtures(t *testing.T) {
	t.Parallel()

	img := GreyImage(3, 2, 128)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}, img.NRGBAAt(2, 1))

	decoded, err := png.Decode(bytes.NewReader(EncodePNG(t, img)))
	require.NoError(t, err)
	r, _, _, a := decoded.At(1, 1).RGBA()
	assert.Equal(t, uint32(128*0x101), r)
	assert.Equal(t, uint32(0xffff), a)
}
