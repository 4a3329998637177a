package palette

import "github.com/yabaduma/retheme/internal/color"

// Derivation constants.
const (
	ElevationOffset = 25
	SelectionRatio  = 0.25
)

// Role names a semantic color slot.
type Role string

const (
	RoleBackground          Role = "background"
	RoleForeground          Role = "foreground"
	RoleAccent              Role = "accent"
	RoleIcon                Role = "icon"
	RoleLabel               Role = "label"
	RoleMuted               Role = "muted"
	RoleSuccess             Role = "success"
	RoleWarning             Role = "warning"
	RoleBackgroundLightened Role = "background-lightened"
	RoleSelection           Role = "selection-background"
)

// Derived holds the semantic roles computed from a Palette.
type Derived struct {
	Background          color.Color
	Foreground          color.Color
	Accent              color.Color
	Icon                color.Color
	Label               color.Color
	Muted               color.Color
	Success             color.Color
	Warning             color.Color
	BackgroundLightened color.Color
	Selection           color.Color
}

// RoleColor pairs a role with its color.
type RoleColor struct {
	Role  Role
	Color color.Color
}

// Derive maps a palette onto semantic roles. It is a pure function of p.
func Derive(p *Palette) *Derived {
	if p == nil {
		return nil
	}
	return &Derived{
		Background:          p.Background,
		Foreground:          p.Foreground,
		Accent:              p.Accent(1),
		Success:             p.Accent(2),
		Warning:             p.Accent(3),
		Icon:                p.Accent(4),
		Label:               p.Accent(6),
		Muted:               p.Accent(8),
		BackgroundLightened: color.LightenByOffset(p.Background, ElevationOffset),
		Selection:           color.LightenByRatio(p.Background, SelectionRatio),
	}
}

// Roles returns every role in display order.
func (d *Derived) Roles() []RoleColor {
	return []RoleColor{
		{RoleBackground, d.Background},
		{RoleForeground, d.Foreground},
		{RoleAccent, d.Accent},
		{RoleIcon, d.Icon},
		{RoleLabel, d.Label},
		{RoleMuted, d.Muted},
		{RoleSuccess, d.Success},
		{RoleWarning, d.Warning},
		{RoleBackgroundLightened, d.BackgroundLightened},
		{RoleSelection, d.Selection},
	}
}

// Lookup returns the color for a role.
func (d *Derived) Lookup(role Role) (color.Color, bool) {
	for _, rc := range d.Roles() {
		if rc.Role == role {
			return rc.Color, true
		}
	}
	return color.Color{}, false
}
