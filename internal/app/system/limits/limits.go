// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBody is the maximum size for JSON API request bodies.
	MaxJSONBody = 64 << 10 // 64 KB

	// MaxMessageText is the maximum length of a message body in runes.
	MaxMessageText = 4000

	// MaxCircleName is the maximum length of a circle name in runes.
	MaxCircleName = 120

	// MaxPreview is the length messages are truncated to when embedded
	// in push-notification payloads.
	MaxPreview = 120
)
