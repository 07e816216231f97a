package speech

// SpeakRequest is the body of POST /speak.
type SpeakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// DefaultLanguage is used when a speak request omits the language.
const DefaultLanguage = "en"
