package sources

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// WebVTT subtitle parsing for tracks downloaded by yt-dlp.

var (
	// <c>, </c>, <c.colour>, <i>, <b>, <u>, <v Speaker>, <ruby>, <rt>, <lang en>
	vttStyleTagRe = regexp.MustCompile(`</?(?:c|i|b|u|v|ruby|rt|lang)(?:[.\s][^>]*)?>`)
	// per-word karaoke timing: <00:00:01.000> or <01.000>
	vttTimeTagRe = regexp.MustCompile(`<(?:\d+:)?\d{1,2}:\d{2}[.,]\d{1,3}>`)

	errBadTimestamp = errors.New("bad vtt timestamp")
)

// ParseVTT converts a WebVTT document into segments.
// Rolling auto-caption repeats are collapsed: repeated adjacent words within
// a cue, and cues whose text was already emitted, are dropped.
func ParseVTT(data []byte) engine.Transcript {
	var (
		out        engine.Transcript
		haveTS     bool
		start, end float64
		lines      []string
	)
	seen := make(map[string]bool)

	flush := func() {
		if haveTS && len(lines) > 0 {
			text := collapseRepeats(strings.Join(lines, " "))
			if text != "" && !seen[text] {
				seen[text] = true
				dur := end - start
				if dur < 0 {
					dur = 0
				}
				out = append(out, engine.Segment{Text: text, Start: start, Duration: dur})
			}
		}
		haveTS = false
		lines = nil
	}

	for _, raw := range strings.Split(string(data), "\n") {
		raw = strings.TrimRight(raw, "\r")
		if raw == "" {
			flush()
			continue
		}
		if strings.Contains(raw, "-->") {
			flush()
			s, e, err := parseCueTiming(raw)
			if err != nil {
				continue
			}
			start, end, haveTS = s, e, true
			continue
		}
		// Header, NOTE/STYLE/REGION blocks and cue identifiers all precede
		// any timestamp in their block.
		if !haveTS {
			continue
		}
		if text := cleanCueText(raw); text != "" {
			if n := len(lines); n == 0 || lines[n-1] != text {
				lines = append(lines, text)
			}
		}
	}
	flush()
	return out
}

// parseCueTiming parses "start --> end [positioning]".
func parseCueTiming(line string) (start, end float64, err error) {
	left, right, _ := strings.Cut(line, "-->")
	rightFields := strings.Fields(right)
	if len(rightFields) == 0 {
		return 0, 0, fmt.Errorf("%w: %q", errBadTimestamp, line)
	}
	if start, err = ParseTimestamp(strings.TrimSpace(left)); err != nil {
		return 0, 0, err
	}
	if end, err = ParseTimestamp(rightFields[0]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseTimestamp converts HH:MM:SS.mmm (or MM:SS.mmm, with "." or ",") to seconds.
func ParseTimestamp(ts string) (float64, error) {
	parts := strings.Split(strings.Replace(ts, ",", ".", 1), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", errBadTimestamp, ts)
	}
	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		if p == "" || (!last && strings.Contains(p, ".")) {
			return 0, fmt.Errorf("%w: %q", errBadTimestamp, ts)
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", errBadTimestamp, ts)
		}
		total = total*60 + v
	}
	return total, nil
}

func cleanCueText(line string) string {
	line = vttTimeTagRe.ReplaceAllString(line, "")
	line = vttStyleTagRe.ReplaceAllString(line, "")
	line = html.UnescapeString(line)
	return strings.Join(strings.Fields(line), " ")
}

// collapseRepeats drops a word identical to the one before it.
func collapseRepeats(s string) string {
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := len(out); n > 0 && out[n-1] == w {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
