// Package extract turns a raw lead feed (an RSS item body with bold-tagged
// metadata lines) into the fixed set of lead fields.
package extract

import (
	"regexp"
	"strings"
	"time"
)

// PostedOnLayout is the DD/MM/YYYY HH:MM format used when a feed carries no
// metadata of its own.
const PostedOnLayout = "02/01/2006 15:04"

var (
	// <b>Label</b>: value<br> or <b>Label</b>: value\n
	metadataRe = regexp.MustCompile(`<b>(.*?)<br>|<b>(.*?)\n`)
	spaceRunRe = regexp.MustCompile(` +`)
)

const boldOpen = "<b>"

// Fields is the flat record produced from a feed. Every field is always
// present; text fields default to "" and prices to the empty Amount.
type Fields struct {
	PostedOn   string `json:"posted_on"`
	Category   string `json:"category"`
	Skills     string `json:"skills"`
	Country    string `json:"country"`
	Message    string `json:"message"`
	HourlyFrom Amount `json:"hourly_from"`
	HourlyTo   Amount `json:"hourly_to"`
	Budget     Amount `json:"budget"`
}

// Extractor parses feeds. Now is the clock used for feeds with no metadata.
type Extractor struct {
	Now func() time.Time
}

// New returns an Extractor reading the wall clock.
func New() *Extractor {
	return &Extractor{Now: time.Now}
}

// Extract parses raw with the wall clock.
func Extract(raw string) Fields {
	return New().Extract(raw)
}

type metadata struct {
	postedOn    string
	category    string
	skills      string
	country     string
	budget      string
	hourlyRange string
	hasBudget   bool
	hasHourly   bool
}

// Extract pulls the labelled values out of raw, cleans the free-text message
// and converts the budget or hourly range into amounts.
func (e *Extractor) Extract(raw string) Fields {
	md := e.parseMetadata(raw)

	f := Fields{
		PostedOn: md.postedOn,
		Category: md.category,
		Skills:   md.skills,
		Country:  md.country,
		Message:  Normalize(messageText(raw)),
	}

	// A posting is either hourly or fixed price; the hourly range wins if a
	// feed somehow carries both.
	switch {
	case md.hasHourly:
		f.HourlyFrom, f.HourlyTo = SplitRange(md.hourlyRange)
	case md.hasBudget:
		f.Budget = SplitBudget(md.budget)
	}
	return f
}

// PostedOnNow is the posted_on value for a lead that carries none.
func (e *Extractor) PostedOnNow() string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return now().Format(PostedOnLayout)
}

func (e *Extractor) parseMetadata(raw string) metadata {
	matches := metadataRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return metadata{postedOn: e.PostedOnNow()}
	}

	var md metadata
	for _, m := range matches {
		item := m[1]
		if item == "" {
			item = m[2]
		}
		if item == "" {
			continue
		}
		value := valueAfterColon(item)

		switch {
		case strings.Contains(item, "Budget</b>"):
			md.budget, md.hasBudget = value, true
		case strings.Contains(item, "Hourly Range</b>"):
			md.hourlyRange, md.hasHourly = value, true
		case strings.Contains(item, "Skills</b>"):
			md.skills = spaceRunRe.ReplaceAllString(value, " ")
		case strings.Contains(item, "Category</b>"):
			md.category = value
		case strings.Contains(item, "Country</b>"):
			md.country = value
		case strings.Contains(item, "Posted On</b>"):
			md.postedOn = value
		}
	}
	return md
}

// valueAfterColon slices at the first colon so values that contain colons
// themselves ("August 06, 2023 09:40 UTC") survive intact.
func valueAfterColon(item string) string {
	i := strings.Index(item, ":")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(item[i+1:])
}

// messageText is everything before the first <b>, or the whole feed when it
// has no bold tags.
func messageText(raw string) string {
	if i := strings.Index(raw, boldOpen); i >= 0 {
		return raw[:i]
	}
	return raw
}
