package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"firewall-network-graph/internal/model"
)

func TestColorAssignerPredefined(t *testing.T) {
	a := NewColorAssigner()

	assert.Equal(t, colorGreen, a.Assign("Server Farm"))
	assert.Equal(t, colorOrange, a.Assign("Intranet RD"))
	assert.Equal(t, colorPurple, a.Assign("Intranet Office"))
	assert.Equal(t, colorGray, a.Assign(model.UnknownZone))
	assert.Equal(t, "rgba(16, 185, 129, 0.15)", colorGreen.Background)
	assert.Equal(t, "rgba(16, 185, 129, 0.9)", colorGreen.Border)
}

func TestColorAssignerHashedFallback(t *testing.T) {
	a := NewColorAssigner()

	// HashString("DMZ") % 7 == 2, HashString("LAN") % 7 == 5.
	assert.Equal(t, colorPurple, a.Assign("DMZ"))
	assert.Equal(t, colorCyan, a.Assign("LAN"))
	// "a" hashes to 97, 97 % 7 == 6.
	assert.Equal(t, colorOrange, a.Assign("a"))

	// Exact names only: a different spelling is a different zone.
	assert.Equal(t, palette[HashString("server farm")%7], a.Assign("server farm"))
}

func TestColorAssignerCache(t *testing.T) {
	a := NewColorAssigner()
	colors := a.Colors([]string{"DMZ", "LAN", "DMZ"})

	assert.Len(t, colors, 2)
	assert.Equal(t, 2, a.Len())

	a.Clear()
	assert.Zero(t, a.Len())
	assert.Equal(t, colors["DMZ"], a.Assign("DMZ"))
}

func TestPaletteNeverHashesToGray(t *testing.T) {
	a := NewColorAssigner()
	for _, zone := range []string{"A", "B", "Core", "Edge", "Guest", "VPN", "OT", "Lab", "Cloud", "Backup"} {
		assert.NotEqual(t, colorGray, a.Assign(zone), zone)
	}
}
