package pgnarchive

import "strings"

// Tag names copied into a GameRecord. Matching is case-sensitive.
const (
	TagEvent     = "Event"
	TagSite      = "Site"
	TagRound     = "Round"
	TagWhite     = "White"
	TagBlack     = "Black"
	TagResult    = "Result"
	TagWhiteElo  = "WhiteElo"
	TagBlackElo  = "BlackElo"
	TagEventDate = "EventDate"
)

var knownTags = map[string]struct{}{
	TagEvent:     {},
	TagSite:      {},
	TagRound:     {},
	TagWhite:     {},
	TagBlack:     {},
	TagResult:    {},
	TagWhiteElo:  {},
	TagBlackElo:  {},
	TagEventDate: {},
}

// IsKnownTag reports whether name is one of the tags kept in a GameRecord.
func IsKnownTag(name string) bool {
	_, ok := knownTags[name]
	return ok
}

// ExtractTag pulls a recognized tag pair out of a single tag-section line.
// ok is false for lines without a bracketed pair, for unknown tag names and
// for values that are not enclosed in two double quotes. It never fails.
func ExtractTag(line string) (name, value string, ok bool) {
	body, found := tagBody(line)
	if !found {
		return "", "", false
	}
	sp := strings.IndexByte(body, ' ')
	if sp <= 0 {
		return "", "", false
	}
	name = body[:sp]
	if !IsKnownTag(name) {
		return "", "", false
	}
	first := strings.IndexByte(body, '"')
	last := strings.LastIndexByte(body, '"')
	if first < 0 || last <= first {
		return "", "", false
	}
	return name, body[first+1 : last], true
}

// tagBody returns the text between the first '[' and its closing ']'. The
// closing bracket is the first ']' outside a quoted run, where \" does not end
// the run; when quotes are unbalanced it is the first ']' after '['. A line
// whose first ']' comes before its first '[' has no body.
func tagBody(line string) (string, bool) {
	open := strings.IndexByte(line, '[')
	if open < 0 {
		return "", false
	}
	first := strings.IndexByte(line, ']')
	if first < open {
		return "", false
	}
	quoted := false
	for i := open + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if quoted && i+1 < len(line) && line[i+1] == '"' {
				i++
			}
		case '"':
			quoted = !quoted
		case ']':
			if !quoted {
				return line[open+1 : i], true
			}
		}
	}
	return line[open+1 : first], true
}
