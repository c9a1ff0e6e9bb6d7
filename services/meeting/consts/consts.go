package consts

const (
	// Upload limits
	MaxAudioSize = 25 * 1024 * 1024 // 25MB

	// Fallback strings returned when a result is not (yet) available
	NoTranscriptFallback = "No transcript available"
	NoSummaryFallback    = "No summary available"
	ConversationFallback = "Not available"

	// Public path uploaded audio is served from
	UploadURLPrefix = "/uploads"
)

// DefaultRoles maps positional speaker keys to role labels used when a clip
// carries no explicit role.
var DefaultRoles = map[string]string{
	"user1": "attendee",
	"user2": "moderator",
}
