package ports

// SystemTheme reports the environment's dark/light preference.
type SystemTheme interface {
	PrefersDark() bool
}

type SystemThemeFunc func() bool

func (f SystemThemeFunc) PrefersDark() bool {
	return f()
}
