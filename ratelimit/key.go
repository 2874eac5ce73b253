package ratelimit

import (
	"context"
	"strconv"

	"github.com/quorik/updraft"
)

// KeyFunc derives a bucket key from an incoming update. Returning false
// means the update carries no such key and is admitted without throttling.
type KeyFunc func(ctx context.Context, in updraft.Input) (string, bool)

// KeyChat buckets updates by chat ID.
func KeyChat(_ context.Context, in updraft.Input) (string, bool) {
	id, ok := in.Update.GetChatID()
	if !ok {
		return "", false
	}
	return "chat:" + strconv.FormatInt(id, 10), true
}

// KeyUser buckets updates by user ID.
func KeyUser(_ context.Context, in updraft.Input) (string, bool) {
	id, ok := in.Update.GetUserID()
	if !ok {
		return "", false
	}
	return "user:" + strconv.FormatInt(id, 10), true
}

// KeyChatUser buckets updates by the chat and user pair.
func KeyChatUser(_ context.Context, in updraft.Input) (string, bool) {
	chatID, ok := in.Update.GetChatID()
	if !ok {
		return "", false
	}
	userID, ok := in.Update.GetUserID()
	if !ok {
		return "", false
	}
	return "chat:" + strconv.FormatInt(chatID, 10) + ":user:" + strconv.FormatInt(userID, 10), true
}
