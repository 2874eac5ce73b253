package updraft

import (
	"context"

	"github.com/quorik/updraft/types"
)

// Bot ties the pieces together: an API client, a service context, a handler
// pipeline and a transport.
//
// It is a convenience layer; the Dispatcher and the transports compose just
// as well by hand.
type Bot struct {
	config     Config
	client     *Client
	context    *Context
	builder    *DispatcherBuilder
	dispatcher *Dispatcher
}

// New creates a new Bot with the given configuration.
func New(cfg Config) (*Bot, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := NewClient(cfg.Token, cfg.clientOptions()...)
	if err != nil {
		return nil, err
	}

	serviceContext := NewContext()
	serviceContext.MustRegister(client)

	builder := NewDispatcher().WithLogger(cfg.Logger)
	if cfg.ErrorHandler != nil {
		builder.WithErrorHandler(cfg.ErrorHandler)
	}

	return &Bot{
		config:  cfg,
		client:  client,
		context: serviceContext,
		builder: builder,
	}, nil
}

// Client returns the Bot API client.
func (b *Bot) Client() *Client {
	return b.client
}

// Register adds a service to the context.
// Must be called before Run or RunWebhook.
func (b *Bot) Register(value any) error {
	return b.context.Register(value)
}

// Handle appends a handler to the pipeline.
// Handlers run in registration order.
func (b *Bot) Handle(h Handler) *Bot {
	b.builder.AddHandler(h)
	return b
}

// OnMessage appends a message handler.
func (b *Bot) OnMessage(fn func(ctx context.Context, in Input, msg *types.Message) error) *Bot {
	return b.Handle(OnMessage(fn))
}

// OnCommand appends a handler for a specific command name ("/start").
func (b *Bot) OnCommand(name string, fn func(ctx context.Context, in Input, cmd *types.Command) error) *Bot {
	return b.Handle(OnCommand(name, fn))
}

// OnCallbackQuery appends a callback query handler.
func (b *Bot) OnCallbackQuery(fn func(ctx context.Context, in Input, query *types.CallbackQuery) error) *Bot {
	return b.Handle(OnCallbackQuery(fn))
}

// Dispatcher builds (once) and returns the dispatcher.
// Building seals the service context.
func (b *Bot) Dispatcher() *Dispatcher {
	if b.dispatcher == nil {
		b.dispatcher = b.builder.Build(b.context)
	}
	return b.dispatcher
}

// Run starts long polling and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	lp, err := NewLongPoll(b.client, b.Dispatcher(), b.config.Poll, b.config.Logger)
	if err != nil {
		return err
	}
	b.config.Logger.Info("starting long polling")
	return lp.Run(ctx)
}

// RunWebhook starts the webhook server and blocks until ctx is cancelled.
func (b *Bot) RunWebhook(ctx context.Context) error {
	srv, err := NewWebhookServer(b.Dispatcher(), b.config.Webhook, b.config.Logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
