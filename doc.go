// Package updraft routes inbound chat-bot updates through an ordered,
// composable pipeline of typed handlers.
//
// Updates arrive over one of two transports (long polling or a webhook)
// and flow through a Dispatcher that runs handlers in registration order,
// stopping at the first Stop or error. Extractors gate each handler on the
// shape of the update, predicates add conditional execution (including
// token-bucket rate limiting), and chains group handlers under first-match
// or run-all policies.
//
// Basic usage:
//
//	bot, err := updraft.New(updraft.Config{Token: token})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	bot.OnCommand("/start", func(ctx context.Context, in updraft.Input, cmd *types.Command) error {
//	    client, _ := updraft.Lookup[*updraft.Client](in.Context)
//	    _, err := client.SendMessage(ctx, updraft.SendMessageRequest{
//	        ChatID: cmd.Message.Chat.ID,
//	        Text:   "Hello!",
//	    })
//	    return err
//	})
//
//	if err := bot.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// The lower-level pieces (Dispatcher, Chain, Predicate, LongPoll,
// WebhookServer) compose directly for applications that outgrow the Bot
// convenience wrapper.
package updraft
