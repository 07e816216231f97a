package speech

// TranscribeResponse is the body returned by POST /transcribe.
type TranscribeResponse struct {
	Text string `json:"text"`
}

// Audio is synthesized speech together with its media type.
type Audio struct {
	Data      []byte
	MediaType string
}
