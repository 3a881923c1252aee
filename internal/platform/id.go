package platform

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const conversationIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const conversationIDLength = 16

func NewID() string {
	return uuid.New().String()
}

// NewConversationID generates a random identifier used to correlate a local
// subscription with gateway requests and webhook deliveries.
func NewConversationID() string {
	b := make([]byte, conversationIDLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = conversationIDAlphabet[b[i]%byte(len(conversationIDAlphabet))]
	}
	return string(b)
}
