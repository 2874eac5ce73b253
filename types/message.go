package types

// ChatType describes the kind of a chat.
type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

// Chat is the conversation a message belongs to.
type Chat struct {
	ID       int64    `json:"id"`
	Type     ChatType `json:"type"`
	Title    string   `json:"title,omitempty"`
	Username string   `json:"username,omitempty"`
}

// User is a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// EntityType identifies a message entity kind.
type EntityType string

const (
	EntityBotCommand EntityType = "bot_command"
	EntityMention    EntityType = "mention"
	EntityHashtag    EntityType = "hashtag"
	EntityURL        EntityType = "url"
	EntityBold       EntityType = "bold"
	EntityItalic     EntityType = "italic"
	EntityCode       EntityType = "code"
	EntityPre        EntityType = "pre"
	EntityTextLink   EntityType = "text_link"
)

// Entity marks a region of message text.
//
// Offset and Length are measured in UTF-16 code units, as reported by the
// Bot API, not in bytes or runes.
type Entity struct {
	Type   EntityType `json:"type"`
	Offset int        `json:"offset"`
	Length int        `json:"length"`
	URL    string     `json:"url,omitempty"`
}

// Message is a message in a chat.
type Message struct {
	ID       int64    `json:"message_id"`
	Date     int64    `json:"date"`
	Chat     Chat     `json:"chat"`
	From     *User    `json:"from,omitempty"`
	Text     string   `json:"text,omitempty"`
	Entities []Entity `json:"entities,omitempty"`
	ReplyTo  *Message `json:"reply_to_message,omitempty"`
}

// CommandEntity returns the first bot_command entity of the message.
func (m *Message) CommandEntity() (Entity, bool) {
	for _, e := range m.Entities {
		if e.Type == EntityBotCommand {
			return e, true
		}
	}
	return Entity{}, false
}
