package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"refcontest/lib/sl"
)

// channelRef is the channel from the config: a public username, a numeric id, or both after lookup.
type channelRef struct {
	username string
	id       int64
}

// parseChannel accepts "@name", "name", "https://t.me/name", "t.me/name" or a numeric chat id.
func parseChannel(s string) (channelRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return channelRef{}, fmt.Errorf("channel is not configured")
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return channelRef{id: id}, nil
	}
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimPrefix(s, "www.")
	for _, prefix := range []string{"t.me/", "telegram.me/", "@"} {
		s = strings.TrimPrefix(s, prefix)
	}
	if i := strings.IndexAny(s, "/?"); i >= 0 {
		s = s[:i]
	}
	if s == "" || strings.HasPrefix(s, "+") {
		return channelRef{}, fmt.Errorf("channel must be a public username: %q", s)
	}
	return channelRef{username: s}, nil
}

func (c channelRef) chatId() string {
	if c.username != "" {
		return "@" + c.username
	}
	return strconv.FormatInt(c.id, 10)
}

func (c channelRef) link() string {
	if c.username == "" {
		return ""
	}
	return "https://t.me/" + c.username
}

// resolveChannel returns the numeric channel id, looking it up by username once.
func (t *TgBot) resolveChannel(ctx context.Context) (int64, error) {
	if id := t.channelId.Load(); id != 0 {
		return id, nil
	}
	raw, err := t.api.RequestWithContext(ctx, "getChat", map[string]string{
		"chat_id": t.channel.chatId(),
	}, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("get chat %s: %w", t.channel.chatId(), err)
	}
	var chat struct {
		Id int64 `json:"id"`
	}
	if err = json.Unmarshal(raw, &chat); err != nil {
		return 0, fmt.Errorf("decode chat: %w", err)
	}
	if chat.Id == 0 {
		return 0, fmt.Errorf("chat %s has no id", t.channel.chatId())
	}
	t.channelId.Store(chat.Id)
	return chat.Id, nil
}

// IsSubscribed reports whether the user is a member of the channel.
// Any failure of the platform call counts as not subscribed.
func (t *TgBot) IsSubscribed(ctx context.Context, userID int64) bool {
	channelId, err := t.resolveChannel(ctx)
	if err != nil {
		t.log.With(sl.UserID(userID)).Warn("resolve channel", sl.Err(err))
		return false
	}
	member, err := t.api.GetChatMemberWithContext(ctx, channelId, userID, nil)
	if err != nil {
		t.log.With(sl.UserID(userID)).Debug("get chat member", sl.Err(err))
		return false
	}
	return isMemberStatus(member.GetStatus())
}

func isMemberStatus(status string) bool {
	switch status {
	case "member", "administrator", "creator":
		return true
	default:
		return false
	}
}

// CurrentMemberCount returns the number of channel members as reported by Telegram.
func (t *TgBot) CurrentMemberCount(ctx context.Context) (int, error) {
	channelId, err := t.resolveChannel(ctx)
	if err != nil {
		return 0, err
	}
	count, err := t.api.GetChatMemberCountWithContext(ctx, channelId, nil)
	if err != nil {
		return 0, fmt.Errorf("get member count: %w", err)
	}
	return int(count), nil
}

// SendMessage delivers text as-is, without markup; it is the transport behind the notification dispatcher.
func (t *TgBot) SendMessage(ctx context.Context, chatId int64, text string) error {
	_, err := t.api.SendMessageWithContext(ctx, chatId, text, &tgbotapi.SendMessageOpts{})
	if err != nil {
		t.log.With(slog.Int64("id", chatId)).Debug("sending plain message", sl.Err(err))
		return err
	}
	return nil
}
