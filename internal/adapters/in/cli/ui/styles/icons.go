package styles

// Icons are plain Unicode so they render in any UTF-8 terminal.
const (
	IconSuccess = "✓"
	IconWarning = "!"
	IconInfo    = "i"
	IconLock    = "●"
	IconOpen    = "○"
)
