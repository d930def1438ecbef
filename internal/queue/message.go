package queue

import "encoding/json"

// KindReport asks the moderation worker to review a reported target.
const KindReport = "report"

// Message is the payload sent to downstream queue consumers.
type Message struct {
	Kind       string `json:"kind"`
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	ReportID   string `json:"reportId,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
