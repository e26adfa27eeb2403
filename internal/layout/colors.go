package layout

import (
	"fmt"
	"sync"

	"firewall-network-graph/internal/model"
)

func rgba(r, g, b int) model.ZoneColor {
	return model.ZoneColor{
		Background: fmt.Sprintf("rgba(%d, %d, %d, 0.15)", r, g, b),
		Border:     fmt.Sprintf("rgba(%d, %d, %d, 0.9)", r, g, b),
	}
}

var (
	colorBlue   = rgba(59, 130, 246)
	colorGreen  = rgba(16, 185, 129)
	colorPurple = rgba(139, 92, 246)
	colorPink   = rgba(236, 72, 153)
	colorRed    = rgba(239, 68, 68)
	colorCyan   = rgba(34, 211, 238)
	colorOrange = rgba(251, 146, 60)
	colorGray   = rgba(107, 114, 128)
)

// palette is indexed by hash modulo len(palette)-1, so the last slot (gray)
// is only reachable through the predefined placeholder mapping.
var palette = []model.ZoneColor{
	colorBlue, colorGreen, colorPurple, colorPink,
	colorRed, colorCyan, colorOrange, colorGray,
}

var predefinedZoneColors = map[string]model.ZoneColor{
	"Server Farm":     colorGreen,
	"Intranet RD":     colorOrange,
	"Intranet Office": colorPurple,
	model.UnknownZone: colorGray,
}

// ColorAssigner memoizes zone colors until Clear is called. Names are matched
// exactly.
type ColorAssigner struct {
	mu    sync.Mutex
	cache map[string]model.ZoneColor
}

func NewColorAssigner() *ColorAssigner {
	return &ColorAssigner{cache: make(map[string]model.ZoneColor)}
}

func (a *ColorAssigner) Assign(zone string) model.ZoneColor {
	a.mu.Lock()
	defer a.mu.Unlock()

	if color, ok := a.cache[zone]; ok {
		return color
	}
	color, ok := predefinedZoneColors[zone]
	if !ok {
		color = palette[HashString(zone)%uint32(len(palette)-1)]
	}
	a.cache[zone] = color
	return color
}

// Colors assigns every zone and returns the mapping.
func (a *ColorAssigner) Colors(zones []string) map[string]model.ZoneColor {
	out := make(map[string]model.ZoneColor, len(zones))
	for _, zone := range zones {
		out[zone] = a.Assign(zone)
	}
	return out
}

func (a *ColorAssigner) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.cache)
}

// Len reports the number of cached assignments.
func (a *ColorAssigner) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cache)
}
