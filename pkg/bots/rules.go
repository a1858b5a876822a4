package bots

import "strings"

// Keyword tables for the default rule set. These are plain data so the
// classifier's precedence order stays auditable.
var (
	nameKeywords = []string{
		"[bot]",
		"jenkins",
		"ci",
		"continuous integration",
		"github-actions",
		"dependabot",
		"renovate",
		"codecov",
		"travis",
		"circleci",
		"appveyor",
		"buildbot",
		"automation",
		"auto-commit",
	}

	emailKeywords = []string{
		"jenkins",
		"ci@",
		"automation@",
		"github-actions",
		"dependabot",
		"renovate",
		"codecov",
		"travis",
		"circleci",
		"appveyor",
		"buildbot",
	}

	botDomains = []string{
		"dependabot.com",
		"renovatebot.com",
		"codecov.io",
	}

	privacyBotKeywords = []string{
		"dependabot",
		"renovate",
		"github-actions",
		"bot",
	}

	noreplyKeywords = []string{
		"noreply",
		"donotreply",
		"no-reply",
	}
)

// DefaultRules returns the ordered match rules applied by the default
// classifier; the first match wins. The privacy-address carve-out must stay
// ahead of the bare and generic noreply rules: a human behind an
// address-hiding feature would otherwise be classified as automated.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "bot name keyword",
			Automated: true,
			Matches: func(name, email string) bool {
				return containsAny(name, nameKeywords)
			},
		},
		{
			Name:      "bot email keyword",
			Automated: true,
			Matches: func(name, email string) bool {
				return containsAny(email, emailKeywords)
			},
		},
		{
			Name:      "bot email domain",
			Automated: true,
			Matches: func(name, email string) bool {
				return hasSuffixAny(email, botDomains)
			},
		},
		{
			Name:      "privacy address with bot keyword",
			Automated: true,
			Matches: func(name, email string) bool {
				return strings.Contains(email, "users.noreply.") && containsAny(email, privacyBotKeywords)
			},
		},
		{
			Name:      "privacy address",
			Automated: false,
			Matches: func(name, email string) bool {
				return strings.Contains(email, "users.noreply.")
			},
		},
		{
			Name:      "bare noreply domain",
			Automated: true,
			Matches: func(name, email string) bool {
				return strings.Contains(email, "noreply.")
			},
		},
		{
			Name:      "generic noreply keyword",
			Automated: true,
			Matches: func(name, email string) bool {
				return containsAny(name, noreplyKeywords) || containsAny(email, noreplyKeywords)
			},
		},
	}
}
