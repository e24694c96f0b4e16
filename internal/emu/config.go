package emu

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace        bool // carried for front ends; Machine never reads it and logs nothing
	UseFetcherBG bool // render BG via the fetcher/FIFO scanline path
}
