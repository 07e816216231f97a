package chat

// HistoryWindow is the maximum number of prior turns sent with a chat request.
const HistoryWindow = 10

// Turn is a role/content pair carried in a chat request's history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the body of POST /chat.
type Request struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

// Response is the body returned by POST /chat.
type Response struct {
	Reply      string `json:"reply"`
	TokensUsed *int   `json:"tokens_used"`
	Mock       bool   `json:"mock"`
}

// ErrorBody is the error shape returned by every backend endpoint.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// LastTurns returns at most n trailing entries of history, oldest first.
func LastTurns(history []Turn, n int) []Turn {
	if n <= 0 || len(history) == 0 {
		return []Turn{}
	}
	start := 0
	if len(history) > n {
		start = len(history) - n
	}
	out := make([]Turn, len(history)-start)
	copy(out, history[start:])
	return out
}
