package bot

import (
	"fmt"
	"strings"

	"refcontest/entity"
)

// All texts are MarkdownV2; every dynamic value passes through Sanitize.

func inviteLink(botUsername, code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, code)
}

func contestEndedText(limit int) string {
	return fmt.Sprintf("🏆 *%s*\n\n%s\n%s\n\n%s",
		Sanitize("The contest is over!"),
		Sanitize(fmt.Sprintf("We have reached the participant limit of %d.", limit)),
		Sanitize("Results will be announced soon."),
		Sanitize("Thank you for taking part! ❤️"),
	)
}

func subscribePromptText(remaining int) string {
	return fmt.Sprintf("📢 %s\n\n%s",
		Sanitize("To take part in the contest, subscribe to our channel!"),
		Sanitize(fmt.Sprintf("Free places left: %d", remaining)),
	)
}

func notSubscribedAlert() string {
	return "❌ You are not subscribed to the channel!\n\n" +
		"1. Press 'Subscribe to the channel'\n" +
		"2. Join the channel\n" +
		"3. Come back and press 'Check subscription'"
}

func welcomeText(link string, remaining, limit int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎁 *%s*\n\n", Sanitize("Referral contest")))
	sb.WriteString(fmt.Sprintf("🔗 *%s*\n`%s`\n\n", Sanitize("Your referral link:"), Sanitize(link)))
	sb.WriteString(fmt.Sprintf("📌 *%s*\n", Sanitize("How to win:")))
	sb.WriteString(Sanitize("• Invite friends with your link") + "\n")
	sb.WriteString(Sanitize("• Every referral = +1 point") + "\n\n")
	sb.WriteString(fmt.Sprintf("⏳ *%s* %d\n", Sanitize("Places left:"), remaining))
	sb.WriteString(fmt.Sprintf("📅 *%s* %s",
		Sanitize("Results:"),
		Sanitize(fmt.Sprintf("when the channel reaches %d members", limit)),
	))
	return sb.String()
}

func subscribedText(name, link string) string {
	return fmt.Sprintf("✅ *%s*\n\n%s\n\n🔗 %s\n`%s`",
		Sanitize(fmt.Sprintf("%s, you are subscribed!", name)),
		Sanitize("Now you can take part in the contest."),
		Sanitize("Your referral link:"),
		Sanitize(link),
	)
}

func tryLaterText() string {
	return "⚠️ " + Sanitize("Something went wrong. Please try again later.")
}

func notRegisteredText() string {
	return Sanitize("You are not registered yet. Send /start to join the contest.")
}

func statsText(stats entity.ParticipantStats, link string) string {
	p := stats.Participant
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *%s*\n\n", Sanitize("Your statistics:")))
	sb.WriteString(fmt.Sprintf("👤 ID: `%d`\n", p.UserID))
	sb.WriteString(fmt.Sprintf("👥 %s *%d*\n", Sanitize("Friends invited:"), p.ReferralCount))
	sb.WriteString(fmt.Sprintf("🏆 %s *%d*\n\n", Sanitize("Leaderboard position:"), stats.Rank))
	sb.WriteString(fmt.Sprintf("🔗 *%s*\n`%s`\n\n", Sanitize("Referral link:"), Sanitize(link)))
	sb.WriteString(fmt.Sprintf("⏳ *%s* %d", Sanitize("Places left:"), stats.Remaining))
	return sb.String()
}

func topText(rows []entity.LeaderboardRow, remaining int) string {
	var sb strings.Builder
	if len(rows) == 0 {
		sb.WriteString(Sanitize("No participants yet."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(fmt.Sprintf("🏆 *%s*\n\n", Sanitize("Top participants:")))
		for _, row := range rows {
			sb.WriteString(fmt.Sprintf("%d\\. %s: *%d* %s\n",
				row.Rank, Sanitize(row.Name()), row.ReferralCount, referralsWord(row.ReferralCount)))
		}
	}
	sb.WriteString(fmt.Sprintf("\n⏳ *%s* %d", Sanitize("Places left:"), remaining))
	return sb.String()
}

func referralsWord(n int) string {
	if n == 1 {
		return "referral"
	}
	return "referrals"
}

func statusText(s *entity.ContestSummary, checkErr error) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n", Sanitize("Contest status")))
	sb.WriteString(fmt.Sprintf("State: `%s`\n", Sanitize(string(s.Status))))
	if s.EndedAt != nil {
		sb.WriteString(fmt.Sprintf("Ended at: `%s`\n", Sanitize(s.EndedAt.Format("2006-01-02 15:04:05 MST"))))
	}
	sb.WriteString(fmt.Sprintf("Members: `%d` / `%d`\n", s.MemberCount, s.Cap))
	sb.WriteString(fmt.Sprintf("Places left: `%d`\n", s.Remaining))
	sb.WriteString(fmt.Sprintf("Participants: `%d`", s.Participants))
	if checkErr != nil {
		sb.WriteString("\n" + Sanitize("⚠️ Member count check failed, showing the last known count: "+checkErr.Error()))
	}
	return sb.String()
}

func helpText(isAdmin bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n\n", Sanitize("Referral contest bot")))
	sb.WriteString(Sanitize("/start - join the contest and get your referral link") + "\n")
	sb.WriteString(Sanitize("/stats - your referrals and position") + "\n")
	sb.WriteString(Sanitize("/top - leaderboard") + "\n")
	sb.WriteString(Sanitize("/help - this message"))
	if isAdmin {
		sb.WriteString("\n\n" + Sanitize("/status - contest state, member count and cap"))
	}
	return sb.String()
}

// StartupNotice is the admin message sent when the process comes up.
func StartupNotice(channelLink string, memberCount, limit int) string {
	return fmt.Sprintf("🤖 Bot started\n\n🔗 Channel: %s\n👥 Current members: %d\n🏆 Participant limit: %d",
		channelLink, memberCount, limit)
}

// ShutdownNotice is the admin message sent before the process exits.
func ShutdownNotice() string {
	return "🔴 Bot is shutting down..."
}
