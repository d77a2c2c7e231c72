package render

import "github.com/charmbracelet/lipgloss"

// Role names one semantic part of a rendered trace.
type Role string

const (
	RoleMessage    Role = "message"
	RolePrefix     Role = "prefix"
	RoleTree       Role = "tree"
	RoleFunction   Role = "function"
	RoleSeparator  Role = "separator"
	RoleNative     Role = "native"
	RolePath       Role = "path"
	RoleLinePrefix Role = "linePrefix"
	RoleLine       Role = "line"
	RoleColumn     Role = "column"
)

// Roles lists every role in display order.
var Roles = []Role{
	RoleMessage, RolePrefix, RoleTree, RoleFunction, RoleSeparator,
	RoleNative, RolePath, RoleLinePrefix, RoleLine, RoleColumn,
}

// Style transforms the text of one role, typically by adding ANSI codes.
type Style func(string) string

// Palette maps roles to styles. Roles without a style render verbatim.
type Palette map[Role]Style

// Apply styles s for role.
func (p Palette) Apply(role Role, s string) string {
	if st := p[role]; st != nil {
		return st(s)
	}
	return s
}

// Merge returns a copy of p with the styles of other laid over it.
func (p Palette) Merge(other Palette) Palette {
	out := make(Palette, len(p)+len(other))
	for r, s := range p {
		out[r] = s
	}
	for r, s := range other {
		if s != nil {
			out[r] = s
		}
	}
	return out
}

// Plain leaves text untouched.
func Plain(s string) string { return s }

// FromLipgloss adapts a lipgloss style to a Style.
func FromLipgloss(st lipgloss.Style) Style {
	return func(s string) string {
		if s == "" {
			return s
		}
		return st.Render(s)
	}
}

// DefaultTheme returns the vibrant palette: red tree on a red prefix badge,
// yellow callees, cyan locations, gray punctuation.
func DefaultTheme(r *lipgloss.Renderer) Palette {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	fg := func(c string) Style { return FromLipgloss(r.NewStyle().Foreground(lipgloss.Color(c))) }
	return Palette{
		RoleMessage:    Plain,
		RolePrefix:     FromLipgloss(r.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15")).Bold(true)),
		RoleTree:       fg("1"),  // red
		RoleFunction:   fg("11"), // bright yellow
		RoleSeparator:  fg("8"),  // gray
		RoleNative:     fg("8"),
		RolePath:       fg("6"), // cyan
		RoleLinePrefix: fg("8"),
		RoleLine:       fg("6"),
		RoleColumn:     fg("6"),
	}
}

// OrcaTheme returns a muted, professional palette.
func OrcaTheme(r *lipgloss.Renderer) Palette {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	fg := func(c string) Style { return FromLipgloss(r.NewStyle().Foreground(lipgloss.Color(c))) }
	return Palette{
		RoleMessage:    Plain,
		RolePrefix:     FromLipgloss(r.NewStyle().Foreground(lipgloss.Color("167")).Bold(true)), // muted red
		RoleTree:       fg("167"),
		RoleFunction:   fg("179"), // muted gold
		RoleSeparator:  fg("245"), // lighter gray
		RoleNative:     fg("245"),
		RolePath:       fg("75"), // pale blue
		RoleLinePrefix: fg("245"),
		RoleLine:       fg("75"),
		RoleColumn:     fg("75"),
	}
}

// MonoTheme returns a palette that leaves every role unstyled.
func MonoTheme() Palette {
	p := make(Palette, len(Roles))
	for _, r := range Roles {
		p[r] = Plain
	}
	return p
}

// ThemeByName returns a palette by name, defaulting to DefaultTheme.
func ThemeByName(name string, r *lipgloss.Renderer) Palette {
	switch name {
	case "orca":
		return OrcaTheme(r)
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme(r)
	}
}
