package config

const (
	WindowWidth  = 1280
	WindowHeight = 800

	// Source slot panels (left column)
	SlotPanelX      = 20
	SlotPanelY      = 50
	SlotPanelWidth  = 170
	SlotPanelHeight = 170
	SlotPanelGap    = 12

	// Mix viewer (center), also the region editor surface
	MixViewX      = 220
	MixViewY      = 50
	MixViewWidth  = 512
	MixViewHeight = 512

	// Beam viewers (right column)
	BeamMapX      = 760
	BeamMapY      = 50
	BeamMapWidth  = 500
	BeamMapHeight = 340
	BeamProfileX  = 760
	BeamProfileY  = 410
	BeamProfileW  = 500
	BeamProfileH  = 200

	// Control strip below the mix viewer
	ControlsX    = 220
	ControlsY    = 590
	SliderWidth  = 160
	SliderHeight = 14
	SliderGap    = 26
	ButtonWidth  = 120
	ButtonHeight = 28

	// Region editor feel
	HandleRadius  = 10
	ClickDeadZone = 4
)
