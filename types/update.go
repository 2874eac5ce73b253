package types

// Update is a single inbound event received from the Bot API.
//
// Exactly one of the optional fields is set. The dispatch core treats an
// update as opaque and only relies on the accessor methods below.
type Update struct {
	// ID is the unique, monotonically increasing update identifier.
	ID int64 `json:"update_id"`

	Message            *Message            `json:"message,omitempty"`
	EditedMessage      *Message            `json:"edited_message,omitempty"`
	ChannelPost        *Message            `json:"channel_post,omitempty"`
	EditedChannelPost  *Message            `json:"edited_channel_post,omitempty"`
	CallbackQuery      *CallbackQuery      `json:"callback_query,omitempty"`
	InlineQuery        *InlineQuery        `json:"inline_query,omitempty"`
	ChosenInlineResult *ChosenInlineResult `json:"chosen_inline_result,omitempty"`
	Poll               *Poll               `json:"poll,omitempty"`
	PollAnswer         *PollAnswer         `json:"poll_answer,omitempty"`
}

// AllowedUpdate names an update kind for the getUpdates allowed_updates filter.
type AllowedUpdate string

const (
	AllowedMessage            AllowedUpdate = "message"
	AllowedEditedMessage      AllowedUpdate = "edited_message"
	AllowedChannelPost        AllowedUpdate = "channel_post"
	AllowedEditedChannelPost  AllowedUpdate = "edited_channel_post"
	AllowedCallbackQuery      AllowedUpdate = "callback_query"
	AllowedInlineQuery        AllowedUpdate = "inline_query"
	AllowedChosenInlineResult AllowedUpdate = "chosen_inline_result"
	AllowedPoll               AllowedUpdate = "poll"
	AllowedPollAnswer         AllowedUpdate = "poll_answer"
)

// GetMessage returns the message the update carries, if any.
// Edited messages and channel posts count as messages.
func (u *Update) GetMessage() *Message {
	switch {
	case u.Message != nil:
		return u.Message
	case u.EditedMessage != nil:
		return u.EditedMessage
	case u.ChannelPost != nil:
		return u.ChannelPost
	case u.EditedChannelPost != nil:
		return u.EditedChannelPost
	}
	return nil
}

// GetChat returns the chat the update originates from, if any.
func (u *Update) GetChat() *Chat {
	if msg := u.GetMessage(); msg != nil {
		return &msg.Chat
	}
	if u.CallbackQuery != nil && u.CallbackQuery.Message != nil {
		return &u.CallbackQuery.Message.Chat
	}
	return nil
}

// GetChatID returns the chat ID the update originates from.
func (u *Update) GetChatID() (int64, bool) {
	if chat := u.GetChat(); chat != nil {
		return chat.ID, true
	}
	return 0, false
}

// GetChatUsername returns the public username of the originating chat.
func (u *Update) GetChatUsername() (string, bool) {
	if chat := u.GetChat(); chat != nil && chat.Username != "" {
		return chat.Username, true
	}
	return "", false
}

// GetUser returns the user the update originates from, if any.
func (u *Update) GetUser() *User {
	switch {
	case u.GetMessage() != nil:
		return u.GetMessage().From
	case u.CallbackQuery != nil:
		return &u.CallbackQuery.From
	case u.InlineQuery != nil:
		return &u.InlineQuery.From
	case u.ChosenInlineResult != nil:
		return &u.ChosenInlineResult.From
	case u.PollAnswer != nil:
		return u.PollAnswer.User
	}
	return nil
}

// GetUserID returns the ID of the user the update originates from.
func (u *Update) GetUserID() (int64, bool) {
	if user := u.GetUser(); user != nil {
		return user.ID, true
	}
	return 0, false
}

// GetUserUsername returns the username of the user the update originates from.
func (u *Update) GetUserUsername() (string, bool) {
	if user := u.GetUser(); user != nil && user.Username != "" {
		return user.Username, true
	}
	return "", false
}

// GetText returns the text carried by the update's message, if any.
func (u *Update) GetText() (string, bool) {
	if msg := u.GetMessage(); msg != nil && msg.Text != "" {
		return msg.Text, true
	}
	return "", false
}
