package domain

// ChatMessage is the payload a client sends for a room. The relay never
// validates, persists, or deduplicates it; the fields exist so collaborators
// (audit, clients) can decode what flows through.
type ChatMessage struct {
	ID         string `json:"id"`
	RoomID     string `json:"roomId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	MediaURL   string `json:"mediaUrl,omitempty"`
	MediaType  string `json:"mediaType,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// TypingStatus is an ephemeral presence signal. Never persisted.
type TypingStatus struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}
