// Package access restricts update handling to configured chats and
// users, exposed as a predicate the dispatcher gates handlers with.
package access

import (
	"strings"

	"github.com/quorik/updraft/types"
)

// Principal matches the party behind an update.
type Principal func(update *types.Update) bool

// Anyone matches every update.
func Anyone() Principal {
	return func(*types.Update) bool {
		return true
	}
}

// UserID matches updates sent by the given user.
func UserID(id int64) Principal {
	return func(update *types.Update) bool {
		got, ok := update.GetUserID()
		return ok && got == id
	}
}

// Username matches updates sent by the given user. A leading @ is
// ignored and matching is case-insensitive.
func Username(name string) Principal {
	name = strings.TrimPrefix(name, "@")
	return func(update *types.Update) bool {
		got, ok := update.GetUserUsername()
		return ok && strings.EqualFold(got, name)
	}
}

// ChatID matches updates originating in the given chat.
func ChatID(id int64) Principal {
	return func(update *types.Update) bool {
		got, ok := update.GetChatID()
		return ok && got == id
	}
}

// ChatUser matches updates sent by the given user in the given chat.
func ChatUser(chatID, userID int64) Principal {
	return func(update *types.Update) bool {
		gotChat, ok := update.GetChatID()
		if !ok || gotChat != chatID {
			return false
		}
		gotUser, ok := update.GetUserID()
		return ok && gotUser == userID
	}
}
