package checklist

import "strings"

// ErrNoParallelName is the per-line error attached when a pasted rainbow
// line has an empty parallel name.
const ErrNoParallelName = "Missing parallel name"

// ParsedParallel is one line of a pasted rainbow list: a parallel name
// and an optional serial print run.
type ParsedParallel struct {
	Parallel         string `json:"parallel"`
	ParallelPrintRun string `json:"parallel_print_run,omitempty"`
	RawLine          string `json:"raw_line"`
	LineNumber       int    `json:"line_number"`
	Err              string `json:"error,omitempty"`
}

// Valid reports whether the line parsed cleanly and may be imported.
func (p *ParsedParallel) Valid() bool { return p.Err == "" }

// ParseRainbowText parses pasted parallel lines for a single rainbow
// card, one parallel per line:
//
//	Sky Blue – /499
//	Purple – /250
//	Platinum – 1/1
//	Base
//
// The separator may be a hyphen, en dash, or em dash. A line with no
// separator is a valid unnumbered parallel, not an error. For "x/y"
// serials only the denominator (the total print run) is kept.
func ParseRainbowText(text string) []ParsedParallel {
	var results []ParsedParallel

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		results = append(results, parseRainbowLine(line, len(results)+1))
	}

	return results
}

func parseRainbowLine(line string, lineNumber int) ParsedParallel {
	result := ParsedParallel{
		RawLine:    line,
		LineNumber: lineNumber,
	}

	name, serial, found := splitOnDash(line)
	if !found {
		// Whole line is an unnumbered parallel name.
		result.Parallel = strings.TrimSpace(line)
		if result.Parallel == "" {
			result.Err = ErrNoParallelName
		}
		return result
	}

	result.Parallel = strings.TrimSpace(name)
	result.ParallelPrintRun = parseSerialPart(strings.TrimSpace(serial))
	if result.Parallel == "" {
		result.Err = ErrNoParallelName
	}

	return result
}

// splitOnDash splits at the last dash that reads as a separator: an en
// or em dash anywhere, or a plain hyphen with whitespace on at least one
// side. A hyphen packed between letters ("X-Fractor") is part of the
// parallel name, not a separator.
func splitOnDash(line string) (name, serial string, found bool) {
	runes := []rune(line)
	for i := len(runes) - 1; i >= 0; i-- {
		switch runes[i] {
		case '–', '—': // en dash, em dash
			return string(runes[:i]), string(runes[i+1:]), true
		case '-':
			spacedBefore := i > 0 && runes[i-1] == ' '
			spacedAfter := i < len(runes)-1 && runes[i+1] == ' '
			if spacedBefore || spacedAfter {
				return string(runes[:i]), string(runes[i+1:]), true
			}
		}
	}
	return "", "", false
}

// parseSerialPart extracts a print run from the text after the dash:
// "/499" and "499" give "499", "1/1" gives "1" (the numerator is the
// copy number, not the run). Anything else means no print run.
func parseSerialPart(s string) string {
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "/") {
		return strings.TrimSpace(s[1:])
	}
	if idx := strings.Index(s, "/"); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	if isDigits(s) {
		return s
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
