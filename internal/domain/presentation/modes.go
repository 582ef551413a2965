package presentation

import "strings"

// ModeInfo is how an operating mode is shown.
type ModeInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

const ModeStandby = "standby"

var modes = map[string]ModeInfo{
	ModeStandby: {Key: ModeStandby, Icon: "mdi:power-sleep", Color: "#9e9e9e", Label: "Standby"},
	"brew":      {Key: "brew", Icon: "mdi:coffee", Color: "#8B4513", Label: "Brew"},
	"steam":     {Key: "steam", Icon: "mdi:kettle-steam", Color: "#FF6B6B", Label: "Steam"},
	"hot water": {Key: "hot water", Icon: "mdi:water", Color: "#4FC3F7", Label: "Hot Water"},
	"grind":     {Key: "grind", Icon: "mdi:grain", Color: "#795548", Label: "Grind"},
}

// LookupMode maps a mode sensor state to its display info. Unknown or empty
// states show as standby.
func LookupMode(state string) ModeInfo {
	if m, ok := modes[strings.ToLower(state)]; ok {
		return m
	}
	return modes[ModeStandby]
}
