package ui

// Config holds window settings for the ebiten shell.
type Config struct {
	Title string
	Scale int
}

// Defaults fills unset fields.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}
