package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"refcontest/entity"
	"refcontest/internal/contest"
)

// start registers the sender, attributing the referral when the deep link carries one (/start ref<id>).
func (t *TgBot) start(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.core == nil {
		return nil
	}
	user := ctx.EffectiveUser
	chatId := user.Id

	req := contest.RegisterRequest{
		UserID:      chatId,
		DisplayName: displayName(user),
		Handle:      user.Username,
	}
	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) > 1 {
		req.Code = args[1]
	}

	reqCtx, cancel := requestContext()
	defer cancel()
	t.replyOutcome(chatId, t.core.Register(reqCtx, req))
	return nil
}

func (t *TgBot) replyOutcome(chatId int64, outcome entity.Outcome) {
	switch outcome.Kind {
	case entity.OutcomeContestEnded:
		t.plainResponse(chatId, contestEndedText(outcome.Cap))
	case entity.OutcomeNeedsSubscription:
		t.sendWithKeyboard(chatId, subscribePromptText(outcome.Remaining), buildSubscribeKeyboard(t.ChannelLink()))
	case entity.OutcomeWelcomed:
		t.sendWithKeyboard(chatId, welcomeText(t.inviteLink(outcome.Code), outcome.Remaining, outcome.Cap), buildMainKeyboard())
	default:
		t.plainResponse(chatId, tryLaterText())
	}
}

func (t *TgBot) stats(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.core == nil {
		return nil
	}
	_ = t.sendStats(ctx.EffectiveUser.Id)
	return nil
}

func (t *TgBot) top(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.core == nil {
		return nil
	}
	_ = t.sendTop(ctx.EffectiveUser.Id)
	return nil
}

func (t *TgBot) help(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	t.plainResponse(chatId, helpText(t.isAdmin(chatId)))
	return nil
}

// sendStats replies with the personal statistics; the error is already reported to the user.
func (t *TgBot) sendStats(chatId int64) error {
	reqCtx, cancel := requestContext()
	defer cancel()
	stats, err := t.core.Stats(reqCtx, chatId)
	if err != nil {
		t.reportError(chatId, "stats", err)
		return err
	}
	if stats.Participant == nil {
		t.plainResponse(chatId, notRegisteredText())
		return nil
	}
	t.sendWithKeyboard(chatId, statsText(stats, t.inviteLink(stats.Code)), buildMainKeyboard())
	return nil
}

func (t *TgBot) sendTop(chatId int64) error {
	reqCtx, cancel := requestContext()
	defer cancel()
	rows, err := t.core.Top(reqCtx, t.config.LeaderboardSize)
	if err != nil {
		t.reportError(chatId, "top", err)
		return err
	}
	summary, err := t.core.Summary(reqCtx)
	if err != nil {
		t.reportError(chatId, "top", fmt.Errorf("summary: %w", err))
		return err
	}
	t.sendWithKeyboard(chatId, topText(rows, summary.Remaining), buildMainKeyboard())
	return nil
}
