package extract

import (
	"regexp"
	"strings"
)

var (
	tagRe  = regexp.MustCompile(`(?s)<.*?>`)
	urlRe  = regexp.MustCompile(`https?://\S+`)
	plusRe = regexp.MustCompile(`\++`)

	entityReplacer = strings.NewReplacer("&amp;", " ", "&nbsp;", " ")
)

// Normalize cleans a feed message body: tags, URLs and the &amp;/&nbsp;
// entities are dropped, runs of '+' become a space and all whitespace is
// collapsed. Anything between angle brackets is removed, tag or not.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(message string) string {
	s := tagRe.ReplaceAllString(message, "")
	s = urlRe.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)
	s = plusRe.ReplaceAllString(s, " ")
	return collapseSpaces(s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
