package config

const (
	LightTheme string = "light-theme"
	DarkTheme  string = "dark-theme"

	DefaultDarkSyntaxTheme  string = "gruvbox"
	DefaultLightSyntaxTheme string = "catppuccin-latte"

	DefaultTheme string = DarkTheme
)
