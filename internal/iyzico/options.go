package iyzico

// Options holds the gateway credentials and endpoint. It is resolved once at
// process start from configuration and treated as read-only afterwards.
type Options struct {
	APIKey    string
	SecretKey string
	BaseURL   string
}
