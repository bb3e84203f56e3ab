// Package renderapi is the HTTP client for the remote render service. The
// service owns all Fourier and beamforming math; this side only ships
// parameter payloads and decodes the PNG artifacts that come back as base64
// data URLs. Every call takes a context and honors its cancellation.
package renderapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to one render service instance.
type Client struct {
	base string
	http *http.Client
}

// New builds a client for the service at base (scheme://host[:port]).
func New(base string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// UploadAck is the service's answer to a source upload.
type UploadAck struct {
	Status string `json:"status"`
	Shape  []int  `json:"shape"`
}

type componentPayload struct {
	ID      int    `json:"id"`
	TypeStr string `json:"type_str"`
}

type mixPayload struct {
	Weights      []map[string]float64 `json:"weights"`
	RegionType   string               `json:"region_type"`
	RegionWidth  float64              `json:"region_width"`
	RegionHeight float64              `json:"region_height"`
	RegionX      float64              `json:"region_x"`
	RegionY      float64              `json:"region_y"`
	MixMode      string               `json:"mix_mode"`
}

// OffsetPayload is one element's spatial override on the wire.
type OffsetPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ArrayPayload is one phased array on the wire. Sparse override maps are
// keyed by stringified element index, matching the service's schema.
type ArrayPayload struct {
	Count           int                      `json:"count"`
	Geo             string                   `json:"geo"`
	Curve           float64                  `json:"curve"`
	X               float64                  `json:"x"`
	Y               float64                  `json:"y"`
	Spacing         float64                  `json:"spacing"`
	Steering        float64                  `json:"steering"`
	AntennaOffsets  map[string]OffsetPayload `json:"antennaOffsets,omitempty"`
	FreqMultipliers map[string]float64       `json:"freqMultipliers,omitempty"`
}

type beamPayload struct {
	Arrays     []ArrayPayload `json:"arrays"`
	Resolution int            `json:"resolution,omitempty"`
}

// MixParams carries everything /process_mix needs.
type MixParams struct {
	Weights      []map[string]float64
	RegionType   string
	RegionWidth  float64
	RegionHeight float64
	RegionX      float64
	RegionY      float64
	MixMode      string
}

// Mix requests a mixed reconstruction for the given weights and region.
func (c *Client) Mix(ctx context.Context, p MixParams) (image.Image, error) {
	return c.postImage(ctx, "/process_mix", mixPayload{
		Weights:      p.Weights,
		RegionType:   p.RegionType,
		RegionWidth:  p.RegionWidth,
		RegionHeight: p.RegionHeight,
		RegionX:      p.RegionX,
		RegionY:      p.RegionY,
		MixMode:      p.MixMode,
	}, "image")
}

// SimulateMap requests the 2-D interference field for the whole array list.
func (c *Client) SimulateMap(ctx context.Context, arrays []ArrayPayload, resolution int) (image.Image, error) {
	return c.postImage(ctx, "/simulate_beam", beamPayload{Arrays: arrays, Resolution: resolution}, "map")
}

// SimulateProfile requests the 1-D beam pattern. The service only reads the
// first array, so callers put the active one first.
func (c *Client) SimulateProfile(ctx context.Context, arrays []ArrayPayload) (image.Image, error) {
	return c.postImage(ctx, "/get_beam_profile", beamPayload{Arrays: arrays}, "profile")
}

// Component fetches one frequency-domain component view of a source slot.
func (c *Client) Component(ctx context.Context, slot int, kind string) (image.Image, error) {
	return c.postImage(ctx, "/get_component", componentPayload{ID: slot, TypeStr: kind}, "image")
}

// Upload sends source image bytes to a slot as a multipart form.
func (c *Client) Upload(ctx context.Context, slot int, filename string, data []byte) (UploadAck, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadAck{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return UploadAck{}, fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadAck{}, fmt.Errorf("build upload form: %w", err)
	}

	url := fmt.Sprintf("%s/upload/%d", c.base, slot)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return UploadAck{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return UploadAck{}, fmt.Errorf("upload slot %d: %w", slot, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return UploadAck{}, statusError(resp)
	}
	var ack UploadAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return UploadAck{}, fmt.Errorf("decode upload ack: %w", err)
	}
	return ack, nil
}

// postImage POSTs a JSON payload and decodes the data-URL artifact stored
// under key in the response object.
func (c *Client) postImage(ctx context.Context, path string, payload interface{}, key string) (image.Image, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	dataURL, ok := out[key]
	if !ok {
		return nil, fmt.Errorf("%s response missing %q", path, key)
	}
	img, err := decodeDataURL(dataURL)
	if err != nil {
		return nil, fmt.Errorf("decode %s artifact: %w", path, err)
	}
	return img, nil
}

func statusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(detail))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("render service returned %d: %s", resp.StatusCode, msg)
}

// decodeDataURL turns "data:image/png;base64,...." into an image.
func decodeDataURL(s string) (image.Image, error) {
	idx := strings.Index(s, "base64,")
	if idx < 0 || !strings.HasPrefix(s, "data:image/") {
		return nil, fmt.Errorf("not a base64 image data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(s[idx+len("base64,"):])
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	return img, nil
}
