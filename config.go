package updraft

import (
	"net/http"

	"go.uber.org/zap"
)

// Config holds the configuration for a Bot.
type Config struct {
	// Token is the bot token from @BotFather.
	Token string

	// APIEndpoint overrides the Bot API endpoint.
	// Defaults to the public endpoint.
	APIEndpoint string

	// Logger is the logger to use. If nil, logging is disabled.
	Logger *zap.Logger

	// HTTPClient overrides the HTTP client used for API calls.
	HTTPClient *http.Client

	// Poll configures the long-polling transport used by Run.
	Poll LongPollOptions

	// Webhook configures the webhook transport used by RunWebhook.
	Webhook WebhookOptions

	// ErrorHandler replaces the default log-and-drop error handler.
	ErrorHandler ErrorHandler
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

func (c *Config) validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

func (c *Config) clientOptions() []ClientOption {
	var opts []ClientOption
	if c.APIEndpoint != "" {
		opts = append(opts, WithEndpoint(c.APIEndpoint))
	}
	if c.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(c.HTTPClient))
	}
	return opts
}
