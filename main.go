package main

import (
	"errors"
	"flag"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/fourier-studio/internal/config"
	"github.com/iburimskiy/fourier-studio/internal/game"
	"github.com/iburimskiy/fourier-studio/internal/monitoring"
	"github.com/iburimskiy/fourier-studio/internal/orchestrator"
	"github.com/iburimskiy/fourier-studio/internal/params"
	"github.com/iburimskiy/fourier-studio/internal/renderapi"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON settings file")
	flag.Parse()

	settings := config.DefaultSettings()
	if *configPath != "" {
		loaded, err := config.LoadSettings(*configPath)
		if err != nil {
			monitoring.Logf("settings %s: %v, using defaults", *configPath, err)
		} else {
			settings = loaded
		}
	}

	client := renderapi.New(settings.GetServerURL(), settings.GetRequestTimeout())
	svc := &renderapi.Service{Client: client, BeamResolution: settings.GetBeamResolution()}

	store := params.NewStore()
	orch := orchestrator.New(store, svc, orchestrator.Options{
		MixWindow:      settings.GetMixDebounce(),
		BeamWindow:     settings.GetBeamDebounce(),
		RequestTimeout: settings.GetRequestTimeout(),
	})

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Fourier Studio - Space: render now, M: mix mode, Esc/Q: Quit")

	g := game.New(store, orch)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		panic(err)
	}
	orch.Close()
}
