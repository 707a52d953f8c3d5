package services

import (
	"net/mail"
	"strings"
)

// LeadMatcher decides whether a mail is a lead notification worth labelling.
// A mail matches when its sender domain ends in one of Domains or its subject
// contains one of SubjectKeywords. Matching is case-insensitive.
type LeadMatcher struct {
	Domains         []string
	SubjectKeywords []string
}

func NewLeadMatcher() *LeadMatcher {
	return &LeadMatcher{
		Domains:         []string{"upwork.com"},
		SubjectKeywords: []string{"new job", "job posted", "upwork"},
	}
}

func (m *LeadMatcher) Matches(subject, rawSender string) bool {
	// "Upwork Notifications <donotreply@upwork.com>" -> donotreply@upwork.com
	senderAddr := strings.ToLower(rawSender)
	if parsed, err := mail.ParseAddress(rawSender); err == nil {
		senderAddr = strings.ToLower(parsed.Address)
	}

	if _, domain, ok := strings.Cut(senderAddr, "@"); ok {
		domain = strings.TrimSuffix(domain, ">")
		for _, d := range m.Domains {
			d = strings.ToLower(d)
			if domain == d || strings.HasSuffix(domain, "."+d) {
				return true
			}
		}
	}

	subjectLower := strings.ToLower(subject)
	for _, kw := range m.SubjectKeywords {
		// skip very short keywords, they match everything
		if len(kw) < 3 {
			continue
		}
		if strings.Contains(subjectLower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
