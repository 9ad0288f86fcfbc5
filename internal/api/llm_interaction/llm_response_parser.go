package llmInteraction

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FACorreiaa/tripwise/internal/api/catalog"
	"github.com/FACorreiaa/tripwise/internal/types"
)

// dayMarker matches "Day 3", "## Day 3", "**Day 3:**", "day 3 -" and similar
// headers, including their Markdown decoration.
var dayMarker = regexp.MustCompile(`(?i)(?:#{1,6}[ \t]*)?\*{0,2}\bday\s+\d+[:.)*_\s–-]*`)

// SegmentDays splits generated text on day markers, drops the preamble and
// empty sections, keeps at most days sections and relabels them from Day 1.
// It never pads: fewer markers yield fewer days.
func SegmentDays(text string, days int) []types.DayPlan {
	if days <= 0 {
		return nil
	}
	parts := dayMarker.Split(text, -1)
	plans := make([]types.DayPlan, 0, min(days, len(parts)-1))
	for _, part := range parts[1:] {
		body := strings.TrimSpace(part)
		if body == "" {
			continue
		}
		n := len(plans) + 1
		plans = append(plans, types.DayPlan{Day: n, Label: fmt.Sprintf("Day %d", n), Body: body})
		if len(plans) == days {
			break
		}
	}
	return plans
}

// RenderItinerary joins day sections as "Day N\n<body>" separated by blank lines.
func RenderItinerary(plans []types.DayPlan) string {
	var b strings.Builder
	for _, p := range plans {
		fmt.Fprintf(&b, "%s\n%s\n\n", p.Label, p.Body)
	}
	return strings.TrimSpace(b.String())
}

// linkOrder sorts entries by descending name length; ties put islands first,
// then lower ids. The first entry with a given name wins.
func linkOrder(entries []types.CatalogEntry) []types.CatalogEntry {
	sorted := make([]types.CatalogEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if len(a.Name) != len(b.Name) {
			return len(a.Name) > len(b.Name)
		}
		if a.Kind != b.Kind {
			return a.Kind == catalog.KindIsland
		}
		return a.ID < b.ID
	})
	out := sorted[:0]
	for _, e := range sorted {
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e)
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func anchor(e types.CatalogEntry) string {
	path := "/place/"
	if e.Kind == catalog.KindIsland {
		path = "/island/"
	}
	return fmt.Sprintf("<a href='%s%d'>%s</a>", path, e.ID, html.EscapeString(e.Name))
}

// LinkEntities wraps whole-word occurrences of catalog names in anchors.
// The text is scanned once, left to right; at each position the longest
// name wins and the replaced span is never scanned again, so names nested
// inside other names or inside inserted markup are not linked twice.
func LinkEntities(text string, entries []types.CatalogEntry) string {
	ordered := linkOrder(entries)
	if len(ordered) == 0 || text == "" {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := rune(-1)
	i := 0
	for i < len(text) {
		if prev == -1 || !isWordRune(prev) {
			if e, ok := matchAt(text, i, ordered); ok {
				b.WriteString(anchor(e))
				i += len(e.Name)
				prev, _ = utf8.DecodeLastRuneInString(e.Name)
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		prev = r
		i += size
	}
	return b.String()
}

func matchAt(text string, i int, ordered []types.CatalogEntry) (types.CatalogEntry, bool) {
	rest := text[i:]
	for _, e := range ordered {
		if !strings.HasPrefix(rest, e.Name) {
			continue
		}
		// The trailing boundary only applies when the name ends in a word rune.
		last, _ := utf8.DecodeLastRuneInString(e.Name)
		end := i + len(e.Name)
		if end < len(text) && isWordRune(last) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if isWordRune(next) {
				continue
			}
		}
		return e, true
	}
	return types.CatalogEntry{}, false
}
