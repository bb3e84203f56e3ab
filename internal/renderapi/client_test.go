package renderapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/fourier-studio/internal/geometry"
	"github.com/iburimskiy/fourier-studio/internal/params"
)

// pngDataURL renders a tiny solid image as the service would return it.
func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestMixSendsRegionAndWeights(t *testing.T) {
	var got mixPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/process_mix", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"image": pngDataURL(t, 8, 8)})
	}))
	defer srv.Close()

	snap := params.Snapshot{
		Weights: params.MagPhaseWeights{{Magnitude: 0.9, Phase: 0.1}},
		Region: geometry.Region{
			CenterX: 0.4, CenterY: 0.6, Width: 0.3, Height: 0.2, Kind: geometry.Outer,
		},
	}
	c := New(srv.URL, 5*time.Second)
	img, err := c.Mix(context.Background(), BuildMixParams(snap))
	require.NoError(t, err)
	require.NotNil(t, img)

	assert.Equal(t, "outer", got.RegionType)
	assert.Equal(t, 0.4, got.RegionX)
	assert.Equal(t, 0.6, got.RegionY)
	assert.Equal(t, 0.3, got.RegionWidth)
	assert.Equal(t, 0.2, got.RegionHeight)
	assert.Equal(t, "mag-phase", got.MixMode)
	require.Len(t, got.Weights, params.NumSlots)
	assert.Equal(t, 0.9, got.Weights[0]["magnitude"])
	assert.Equal(t, 0.1, got.Weights[0]["phase"])
	_, hasReal := got.Weights[0]["real"]
	assert.False(t, hasReal, "mag-phase payload must not carry real/imag fields")
}

func TestBeamPayloads(t *testing.T) {
	var mapBody, profileBody beamPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/simulate_beam":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&mapBody))
			json.NewEncoder(w).Encode(map[string]string{"map": pngDataURL(t, 4, 4)})
		case "/get_beam_profile":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&profileBody))
			json.NewEncoder(w).Encode(map[string]string{"profile": pngDataURL(t, 4, 4)})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	snap := params.Snapshot{
		Arrays: []params.ArraySpec{
			{Count: 8, Geometry: params.GeometryLinear, Steering: 200, Spacing: 0.5},
			{
				Count: 6, Geometry: params.GeometryCurved, Curvature: 40, Steering: -30,
				Offsets:         map[int]params.Offset{2: {X: 0.1, Y: -0.2}},
				FreqMultipliers: map[int]float64{1: 2.0},
			},
		},
		Active: 1,
	}

	c := New(srv.URL, 5*time.Second)
	_, err := c.SimulateMap(context.Background(), BuildArrayPayloads(snap), 300)
	require.NoError(t, err)
	_, err = c.SimulateProfile(context.Background(), BuildActiveArrayPayload(snap))
	require.NoError(t, err)

	require.Len(t, mapBody.Arrays, 2)
	assert.Equal(t, 300, mapBody.Resolution)
	// Steering 200 wraps to -160.
	assert.InDelta(t, -160, mapBody.Arrays[0].Steering, 1e-9)
	assert.Equal(t, "curved", mapBody.Arrays[1].Geo)
	assert.Equal(t, OffsetPayload{X: 0.1, Y: -0.2}, mapBody.Arrays[1].AntennaOffsets["2"])
	assert.Equal(t, 2.0, mapBody.Arrays[1].FreqMultipliers["1"])

	// Profile carries only the active array, first.
	require.Len(t, profileBody.Arrays, 1)
	assert.Equal(t, 6, profileBody.Arrays[0].Count)
}

func TestComponentRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got componentPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, 2, got.ID)
		assert.Equal(t, "Magnitude", got.TypeStr)
		json.NewEncoder(w).Encode(map[string]string{"image": pngDataURL(t, 4, 4)})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	img, err := c.Component(context.Background(), 2, params.ComponentMagnitude.String())
	require.NoError(t, err)
	require.NotNil(t, img)
}

func TestUploadMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload/3", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "cat.png", hdr.Filename)
		json.NewEncoder(w).Encode(UploadAck{Status: "success", Shape: []int{256, 256}})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	ack, err := c.Upload(context.Background(), 3, "cat.png", []byte("not-really-a-png"))
	require.NoError(t, err)
	assert.Equal(t, "success", ack.Status)
	assert.Equal(t, []int{256, 256}, ack.Shape)
}

func TestServerErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "no images uploaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Mix(context.Background(), MixParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "no images uploaded")
}

func TestCancellationPropagates(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Mix(ctx, MixParams{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeDataURLRejectsGarbage(t *testing.T) {
	for _, s := range []string{
		"",
		"http://example.com/img.png",
		"data:image/png;base64,!!!!",
		fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString([]byte("nope"))),
	} {
		if _, err := decodeDataURL(s); err == nil {
			t.Errorf("decodeDataURL(%q) accepted", s)
		}
	}
}

func TestNormalizeSteering(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		90:   90,
		180:  -180,
		200:  -160,
		-270: 90,
		360:  0,
		540:  -180,
	}
	for in, want := range cases {
		if got := NormalizeSteering(in); !assert.InDelta(t, want, got, 1e-9) {
			t.Errorf("NormalizeSteering(%v) = %v, want %v", in, got, want)
		}
	}
}
