package keymap

// DefaultConfig is a small 4x12 layout with a function layer. It carries
// every plugin-reserved key so a fresh install can exercise each resolver.
func DefaultConfig() Config {
	return Config{
		Name: "default",
		Rows: 4,
		Cols: 12,
		Layers: []LayerConfig{
			{
				Name: "base",
				Rows: []string{
					"Esc      Q W E R T Y U I O P Backspace",
					"CapsLock A S D F G H J K L ; Enter",
					"LeftShift Z X C V B N M , . / RightShift",
					"LeftControl LeftGUI LeftAlt MultiTap(0) Space Space MultiTap(1) RapidFire RightAlt AutoShiftToggle HoldTapEnable HoldTapDisable",
				},
			},
			{
				Name: "function",
				Rows: []string{
					"`  1 2 3 4 5 6 7 8 9 0 Delete",
					"___ F1 F2 F3 F4 F5 F6 - = [ ] \\",
					"___ F7 F8 F9 F10 F11 F12 Home PageDown PageUp End ___",
					"___ ___ ___ Syster ___ ___ Macro(0) Macro(1) ___ ___ ___ ___",
				},
			},
		},
	}
}

// Default builds DefaultConfig.
func Default() *Keymap {
	km, err := DefaultConfig().Build()
	if err != nil {
		panic("keymap: default layout: " + err.Error())
	}
	return km
}
