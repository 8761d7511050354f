package smoke

// Roster generator constants.
const (
	minRating         = 800
	ratingSpread      = 800
	maxSynergy        = 150
	playerNamePattern = "player-%03d"
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
)
