package llm

import "strings"

// Messages returned in place of raw provider errors.
const (
	MsgAccountLimits = "The AI service is temporarily unavailable due to account limits. Please try again later or contact support."
	MsgAuthFailed    = "AI service authentication failed. Please contact the administrator."
	MsgModelMissing  = "AI model not available. Please contact the administrator."
	MsgGeneric       = "AI service encountered an error. Please try again."
)

var accountLimitMarkers = []string{"credit", "billing", "license", "quota", "console.x.ai", "platform.openai", "team/"}

// SanitizeError maps a provider error onto a message that never leaks
// billing links, team ids or keys.
func SanitizeError(err error) string {
	if err == nil {
		return MsgGeneric
	}
	raw := err.Error()
	lower := strings.ToLower(raw)

	for _, marker := range accountLimitMarkers {
		if strings.Contains(lower, marker) {
			return MsgAccountLimits
		}
	}
	if strings.Contains(raw, "401") || strings.Contains(raw, "invalid_api_key") || strings.Contains(lower, "api key") {
		return MsgAuthFailed
	}
	if strings.Contains(raw, "404") || strings.Contains(lower, "not found") {
		return MsgModelMissing
	}
	return MsgGeneric
}
