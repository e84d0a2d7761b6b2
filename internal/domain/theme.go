package domain

type ThemePreference struct {
	IsDark bool
}

func (p ThemePreference) Toggled() ThemePreference {
	return ThemePreference{IsDark: !p.IsDark}
}

func (p ThemePreference) Label() string {
	if p.IsDark {
		return "dark"
	}

	return "light"
}
