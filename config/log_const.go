package config

// Color constants for logger prefixes.
const (
	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorMagenta = "\033[35m"
	ColorCyan    = "\033[36m"
	ColorReset   = "\033[0m"
)

// Component colors, one per logger name.
const (
	AppLogColor   = ColorGreen
	AuthLogColor  = ColorCyan
	DBLogColor    = ColorBlue
	CacheLogColor = ColorMagenta
	HTTPLogColor  = ColorYellow
)
