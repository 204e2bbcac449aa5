package status

import (
	"html"
	"strings"
)

const formatPrefix = '§'

var colorCodes = map[rune]string{
	'0': "#000000",
	'1': "#0000AA",
	'2': "#00AA00",
	'3': "#00AAAA",
	'4': "#AA0000",
	'5': "#AA00AA",
	'6': "#FFAA00",
	'7': "#AAAAAA",
	'8': "#555555",
	'9': "#5555FF",
	'a': "#55FF55",
	'b': "#55FFFF",
	'c': "#FF5555",
	'd': "#FF55FF",
	'e': "#FFFF55",
	'f': "#FFFFFF",
}

// MOTD is the message of the day in its raw, plain and HTML renderings.
type MOTD struct {
	Raw   string `json:"raw"`
	Clean string `json:"clean"`
	HTML  string `json:"html"`
}

type motdStyle struct {
	color         string
	bold          bool
	italic        bool
	underline     bool
	strikethrough bool
	obfuscated    bool
}

type motdSegment struct {
	text string
	motdStyle
}

// ParseMOTD renders a §-formatted message into plain text and HTML.
func ParseMOTD(raw string) MOTD {
	segments := parseFormatting(raw)

	var clean, out strings.Builder
	for _, seg := range segments {
		clean.WriteString(seg.text)
		out.WriteString(seg.html())
	}

	return MOTD{Raw: raw, Clean: clean.String(), HTML: out.String()}
}

// parseFormatting splits raw into runs of equally styled text.
// A colour code resets the active formatting, as the game client does.
func parseFormatting(raw string) []motdSegment {
	var (
		segments []motdSegment
		style    motdStyle
		text     strings.Builder
	)

	flush := func() {
		if text.Len() > 0 {
			segments = append(segments, motdSegment{text: text.String(), motdStyle: style})
			text.Reset()
		}
	}

	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != formatPrefix || i+1 >= len(runes) {
			text.WriteRune(r)
			continue
		}

		code := toLowerASCII(runes[i+1])
		if color, ok := colorCodes[code]; ok {
			flush()
			style = motdStyle{color: color}
			i++
			continue
		}

		switch code {
		case 'k':
			flush()
			style.obfuscated = true
		case 'l':
			flush()
			style.bold = true
		case 'm':
			flush()
			style.strikethrough = true
		case 'n':
			flush()
			style.underline = true
		case 'o':
			flush()
			style.italic = true
		case 'r':
			flush()
			style = motdStyle{}
		default:
			text.WriteRune(r)
			continue
		}
		i++
	}
	flush()

	return segments
}

func (s motdSegment) html() string {
	escaped := html.EscapeString(s.text)
	if s.obfuscated {
		// obfuscated text is random glyphs in game, there is nothing stable to show
		return ""
	}

	var css []string
	if s.color != "" {
		css = append(css, "color: "+s.color+";")
	}
	if s.bold {
		css = append(css, "font-weight: bold;")
	}
	if s.italic {
		css = append(css, "font-style: italic;")
	}

	var decorations []string
	if s.underline {
		decorations = append(decorations, "underline")
	}
	if s.strikethrough {
		decorations = append(decorations, "line-through")
	}
	if len(decorations) > 0 {
		css = append(css, "text-decoration: "+strings.Join(decorations, " ")+";")
	}

	if len(css) == 0 {
		return escaped
	}

	return `<span style="` + strings.Join(css, " ") + `">` + escaped + `</span>`
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}

	return r
}
