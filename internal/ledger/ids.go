package ledger

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonSlug    = regexp.MustCompile(`[^a-z0-9_]`)
	underscore = regexp.MustCompile(`_+`)
)

func NewTransactionID() string {
	return "tx_" + randomHex(8)
}

func NewPlanID() string {
	return "plan_" + randomHex(8)
}

// NewAccountID derives an id from the account name plus a random suffix,
// e.g. "Daily Wallet" -> "daily_wallet_3f9a1c".
func NewAccountID(name string) string {
	return Slug(name, "account") + "_" + randomHex(6)
}

// Slug lower-cases s and replaces everything outside [a-z0-9_] with
// underscores. Empty results fall back to fallback.
func Slug(s, fallback string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(s), "_")
	slug = strings.Trim(underscore.ReplaceAllString(slug, "_"), "_")

	if slug == "" {
		return fallback
	}

	return slug
}

func randomHex(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
