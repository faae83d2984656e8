package comment

import (
	"regexp"
	"strings"
)

var (
	openMarker  = regexp.MustCompile(`^\s*/\*+`)
	closeMarker = regexp.MustCompile(`\s*\*+/\s*$`)
	gutter      = regexp.MustCompile(`^\s*\*? ?`)
	tagLine     = regexp.MustCompile(`^@(\S+)`)
	braceType   = regexp.MustCompile(`^\{[^\}]*\}+`)
	bracketType = regexp.MustCompile(`^\[[^\[][^\]]*\]+`)
	hyphenLead  = regexp.MustCompile(`^-\s+`)
)

// textPhase tracks short-text accumulation. The first blank line after
// accumulated content switches all further prose into the long text.
type textPhase int

const (
	phaseEmpty textPhase = iota
	phaseAccumulating
	phaseSwitched
)

// lineKind is the classification of one gutter-stripped comment line given
// the current parser state.
type lineKind int

const (
	lineShortText lineKind = iota
	lineLongText
	lineTagStart
	lineTagContinuation
	lineBlankSkip
	lineBlankSwitch
)

// classifyLine decides what a single line does: start a tag, continue the
// open tag, switch phases, or contribute prose to the short or long text.
func classifyLine(line string, tagOpen bool, phase textPhase) lineKind {
	if tagLine.MatchString(line) {
		return lineTagStart
	}
	if tagOpen {
		return lineTagContinuation
	}
	if line == "" {
		if phase == phaseAccumulating {
			return lineBlankSwitch
		}
		if phase == phaseEmpty {
			return lineBlankSkip
		}
		return lineLongText
	}
	if phase == phaseSwitched {
		return lineLongText
	}
	return lineShortText
}

// Parse extracts a structured Comment from raw block-comment text. Comment
// markers and per-line gutter decoration are stripped first. When into is
// non-nil, prose and tags merge into it instead of a fresh comment; this is
// how an implementation's comment joins an overload comment that already
// holds content.
//
// Parse is total: malformed input degrades to empty fields, never an error.
func Parse(raw string, into *Comment) *Comment {
	c := into
	if c == nil {
		c = &Comment{}
	}

	body := openMarker.ReplaceAllString(raw, "")
	body = closeMarker.ReplaceAllString(body, "")

	var current *Tag
	phase := phaseEmpty
	for _, line := range splitLines(body) {
		line = gutter.ReplaceAllString(line, "")
		line = strings.TrimRight(line, " \t")

		switch classifyLine(line, current != nil, phase) {
		case lineTagStart:
			current = readTag(line)
			c.Tags = append(c.Tags, current)
		case lineTagContinuation:
			current.Text += "\n" + line
		case lineBlankSkip:
		case lineBlankSwitch:
			phase = phaseSwitched
		case lineLongText:
			c.Text = appendLine(c.Text, line)
		case lineShortText:
			c.ShortText = appendLine(c.ShortText, line)
			phase = phaseAccumulating
		}
	}
	return c
}

// readTag parses a tag-start line into a fresh Tag. The tag name is
// lowercased and return is normalized to returns. The param family consumes
// an optional leading type annotation, then the parameter name, then a
// second annotation and an optional list dash. returns consumes one leading
// annotation. All other tags keep their remainder verbatim.
func readTag(line string) *Tag {
	m := tagLine.FindStringSubmatch(line)
	name := strings.ToLower(m[1])
	rest := strings.TrimSpace(line[len(m[0]):])

	if name == "return" {
		name = "returns"
	}

	tag := &Tag{TagName: name}
	switch name {
	case "param", "typeparam", "template":
		rest = consumeTypeData(rest)
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			tag.ParamName = rest[:i]
			rest = strings.TrimSpace(rest[i+1:])
		} else {
			tag.ParamName = rest
			rest = ""
		}
		rest = consumeTypeData(rest)
		rest = hyphenLead.ReplaceAllString(rest, "")
	case "returns":
		rest = consumeTypeData(rest)
	}
	tag.Text = rest
	return tag
}

// consumeTypeData strips a leading {curly} annotation, then a leading
// [bracket] annotation, from the line.
func consumeTypeData(line string) string {
	line = braceType.ReplaceAllString(line, "")
	line = bracketType.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

func appendLine(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
