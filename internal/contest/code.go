package contest

import (
	"strconv"
	"strings"
)

const codePrefix = "ref"

// ReferralCode is the deep-link payload that attributes registrations to userID.
func ReferralCode(userID int64) string {
	return codePrefix + strconv.FormatInt(userID, 10)
}

// ParseReferralCode extracts the referrer id from a deep-link payload.
func ParseReferralCode(code string) (int64, bool) {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, codePrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(code[len(codePrefix):], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
