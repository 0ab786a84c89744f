package bot

import (
	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"refcontest/entity"
)

// Callback data values for inline keyboard buttons.
// Telegram limits callback data to 64 bytes.
const (
	cbCheckSub = "check_sub"
	cbMyStats  = "my_stats"
	cbTopList  = "top_list"
)

const inviteQuery = "Join the contest!"

// --- Keyboard builders ---

// buildSubscribeKeyboard links to the channel and offers a re-check once the user has joined.
func buildSubscribeKeyboard(channelLink string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 2)
	if channelLink != "" {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			{Text: "✅ Subscribe to the channel", Url: channelLink},
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		{Text: "🔁 Check subscription", CallbackData: cbCheckSub},
	})
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// buildMainKeyboard is attached to every participant-facing message once registered.
func buildMainKeyboard() tgbotapi.InlineKeyboardMarkup {
	query := inviteQuery
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{
				{Text: "📊 My stats", CallbackData: cbMyStats},
				{Text: "🏆 Top participants", CallbackData: cbTopList},
			},
			{
				{Text: "👥 Invite friends", SwitchInlineQuery: &query},
			},
		},
	}
}

// --- Callback handlers ---
// Every handler answers the callback query, which removes the loading spinner.

// onCheckSubCallback re-checks channel membership after the subscribe prompt.
// On success the subscribe keyboard is removed and the referral link is sent.
func (t *TgBot) onCheckSubCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	chatId := cq.From.Id
	if t.core == nil {
		_, _ = cq.Answer(t.api, nil)
		return nil
	}

	reqCtx, cancel := requestContext()
	defer cancel()
	outcome := t.core.Recheck(reqCtx, chatId)

	switch outcome.Kind {
	case entity.OutcomeWelcomed:
		if msg := cq.Message; msg != nil {
			if im, ok := msg.(tgbotapi.Message); ok {
				_, _, _ = t.api.EditMessageReplyMarkup(&tgbotapi.EditMessageReplyMarkupOpts{
					ChatId:      chatId,
					MessageId:   im.MessageId,
					ReplyMarkup: tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
				})
			}
		}
		name := displayName(&cq.From)
		t.sendWithKeyboard(chatId, subscribedText(name, t.inviteLink(outcome.Code)), buildMainKeyboard())
		_, _ = cq.Answer(t.api, nil)

	case entity.OutcomeNeedsSubscription:
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: notSubscribedAlert(), ShowAlert: true})

	case entity.OutcomeContestEnded:
		t.plainResponse(chatId, contestEndedText(outcome.Cap))
		_, _ = cq.Answer(t.api, nil)

	default:
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{
			Text:      "⚠️ Could not check the subscription. Please try again later.",
			ShowAlert: true,
		})
	}
	return nil
}

func (t *TgBot) onMyStatsCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	if t.core == nil {
		_, _ = cq.Answer(t.api, nil)
		return nil
	}
	if err := t.sendStats(cq.From.Id); err != nil {
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "⚠️ Could not load statistics", ShowAlert: true})
		return nil
	}
	_, _ = cq.Answer(t.api, nil)
	return nil
}

func (t *TgBot) onTopListCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	if t.core == nil {
		_, _ = cq.Answer(t.api, nil)
		return nil
	}
	if err := t.sendTop(cq.From.Id); err != nil {
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "⚠️ Could not load the leaderboard", ShowAlert: true})
		return nil
	}
	_, _ = cq.Answer(t.api, nil)
	return nil
}
