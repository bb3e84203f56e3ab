package renderapi

import (
	"context"
	"image"

	"github.com/iburimskiy/fourier-studio/internal/params"
)

// Service adapts Client to the snapshot-shaped calls the orchestrator makes.
type Service struct {
	Client         *Client
	BeamResolution int
}

func (s *Service) Mix(ctx context.Context, snap params.Snapshot) (image.Image, error) {
	return s.Client.Mix(ctx, BuildMixParams(snap))
}

func (s *Service) BeamMap(ctx context.Context, snap params.Snapshot) (image.Image, error) {
	return s.Client.SimulateMap(ctx, BuildArrayPayloads(snap), s.BeamResolution)
}

func (s *Service) BeamProfile(ctx context.Context, snap params.Snapshot) (image.Image, error) {
	return s.Client.SimulateProfile(ctx, BuildActiveArrayPayload(snap))
}

func (s *Service) Component(ctx context.Context, slot int, kind params.ComponentKind) (image.Image, error) {
	return s.Client.Component(ctx, slot, kind.String())
}

func (s *Service) Upload(ctx context.Context, slot int, filename string, data []byte) error {
	_, err := s.Client.Upload(ctx, slot, filename, data)
	return err
}
