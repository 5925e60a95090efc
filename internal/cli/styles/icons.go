package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconCheck    = "" // check
	IconX        = "" // x
	IconWarning  = "" // warning
	IconInfo     = "" // info
	IconDatabase = "" // database
	IconTrash    = "" // trash
	IconClock    = "" // clock
	IconLock     = "" // lock
	IconUnlock   = "" // unlock
	IconQuestion = "" // question
	IconGlobe    = "" // web
	IconCursor   = "" // chevron-right
)
