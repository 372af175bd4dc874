package razorpay

// Config holds Razorpay credentials
type Config struct {
	// KeyID is the public key id, also returned to the browser checkout
	KeyID string

	// KeySecret authenticates API calls
	KeySecret string

	// WebhookSecret signs inbound webhooks
	WebhookSecret string

	// BaseURL defaults to https://api.razorpay.com/v1
	BaseURL string
}

const DefaultBaseURL = "https://api.razorpay.com/v1"

func (c *Config) Validate() error {
	if c.KeyID == "" || c.KeySecret == "" {
		return ErrInvalidConfig
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	return nil
}
