package domain

const (
	ToneNormal = "normal"
	ToneError  = "error"

	// FallbackReplyText is sent when the upstream provider cannot answer.
	FallbackReplyText = "Failed to send message, please try again later."
)

// ChatReply is the chatbot answer returned to the client.
type ChatReply struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

// FallbackReply is the degraded reply used on upstream failure.
func FallbackReply() ChatReply {
	return ChatReply{Text: FallbackReplyText, Tone: ToneError}
}
