package bots

import "testing"

func TestIsAutomated(t *testing.T) {
	t.Parallel()

	classifier := New()

	tests := []struct {
		name      string
		author    string
		email     string
		automated bool
	}{
		{
			name:      "Dependabot name marker",
			author:    "Dependabot[bot]",
			email:     "dependabot@example.org",
			automated: true,
		},
		{
			name:      "Github actions",
			author:    "github-actions[bot]",
			email:     "41898282+github-actions[bot]@users.noreply.github.com",
			automated: true,
		},
		{
			name:      "Jenkins name keyword",
			author:    "Jenkins CI",
			email:     "ci@example.org",
			automated: true,
		},
		{
			name:      "Bot email domain",
			author:    "Renovate",
			email:     "updates@renovatebot.com",
			automated: true,
		},
		{
			name:      "Bare noreply domain",
			author:    "build",
			email:     "noreply.github.com",
			automated: true,
		},
		{
			name:      "Generic noreply email",
			author:    "Release Robot",
			email:     "no-reply@example.org",
			automated: true,
		},
		{
			name:      "Human behind privacy address",
			author:    "Jane Doe",
			email:     "12345+janedoe@users.noreply.github.com",
			automated: false,
		},
		{
			name:      "Case folded matching",
			author:    "DEPENDABOT",
			email:     "DEPENDABOT@EXAMPLE.ORG",
			automated: true,
		},
		{
			name:      "Plain human",
			author:    "John Roe",
			email:     "john@example.org",
			automated: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := classifier.IsAutomated(tt.author, tt.email); got != tt.automated {
				t.Fatalf("IsAutomated(%q, %q) = %t, expected %t", tt.author, tt.email, got, tt.automated)
			}
		})
	}
}

func TestPrivacyCarveOutPrecedesNoreplyRules(t *testing.T) {
	t.Parallel()

	classifier := New()

	// The privacy-address rule must decide before the bare noreply domain
	// rule sees the same address.
	if classifier.IsAutomated("Jane Doe", "12345+janedoe@users.noreply.github.com") {
		t.Fatal("privacy address without bot keyword must classify as human")
	}
	if !classifier.IsAutomated("Dependabot", "49699333+dependabot[bot]@users.noreply.github.com") {
		t.Fatal("privacy address carrying a bot keyword must classify as automated")
	}
}

func TestNewWithRules(t *testing.T) {
	t.Parallel()

	classifier := NewWithRules([]Rule{
		{
			Name:      "everything is a bot",
			Automated: true,
			Matches:   func(name, email string) bool { return true },
		},
	})

	if !classifier.IsAutomated("Jane Doe", "jane@example.org") {
		t.Fatal("expected custom rule to classify everything as automated")
	}
}
