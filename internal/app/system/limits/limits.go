// internal/app/system/limits/limits.go
package limits

// Size limits for client input.
const (
	// MaxJSONBody is the largest request body DecodeJSON will read.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxSocketFrame is the largest frame a websocket client may send.
	MaxSocketFrame = 4096
)
