package bot

import (
	"context"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

// status probes the member count, then shows the contest state against the cap. Admin only.
func (t *TgBot) status(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.core == nil {
		return nil
	}
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	reqCtx, cancel := requestContext()
	defer cancel()
	text, err := t.statusReport(reqCtx)
	if err != nil {
		t.reportError(chatId, "/status", err)
		return nil
	}
	t.plainResponse(chatId, text)
	return nil
}

// statusReport runs a live cap check, which may end the contest, and renders the summary after it.
// A failed probe is shown in the report instead of failing the command.
func (t *TgBot) statusReport(ctx context.Context) (string, error) {
	_, _, checkErr := t.core.CheckCap(ctx)
	summary, err := t.core.Summary(ctx)
	if err != nil {
		return "", err
	}
	return statusText(summary, checkErr), nil
}
