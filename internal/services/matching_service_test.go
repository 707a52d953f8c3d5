package services_test

import (
	"testing"

	"github.com/justsurfingit/lead-labeler/internal/services"
)

func TestLeadMatcher(t *testing.T) {
	m := services.NewLeadMatcher()

	cases := []struct {
		subject string
		sender  string
		want    bool
	}{
		{"Anything", "Upwork <donotreply@upwork.com>", true},
		{"Anything", "alerts@mail.upwork.com", true},
		{"Anything", "someone@notupwork.com", false},
		{"New job: Go developer needed", "feed@rss-bridge.io", true},
		{"Job posted in Web Development", "", true},
		{"Weekly newsletter", "news@example.com", false},
		{"", "garbage sender", false},
	}
	for _, c := range cases {
		if got := m.Matches(c.subject, c.sender); got != c.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", c.subject, c.sender, got, c.want)
		}
	}
}

func TestLeadMatcher_ShortKeywordsIgnored(t *testing.T) {
	m := &services.LeadMatcher{SubjectKeywords: []string{"go"}}
	if m.Matches("go go go", "a@b.com") {
		t.Error("keywords shorter than 3 characters should not match")
	}
}
