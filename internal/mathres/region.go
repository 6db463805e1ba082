package mathres

import (
	"sort"
	"strings"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

// Region is a delimited math span of a text. Start and End cover the
// delimiters; Content is the verbatim text between them.
type Region struct {
	Style   tree.Delimiter
	Start   int
	End     int
	Content string
}

// Span returns the region bounds as a tree.Span.
func (r Region) Span() tree.Span { return tree.NewSpan(r.Start, r.End) }

// segment is a stretch of text, either still raw or already claimed by a
// math region.
type segment struct {
	start, end int
	region     *Region
}

// FindRegions locates every math region in text. Styles are resolved in
// the fixed order of tree.Delimiters; each pass only scans text left raw by
// the previous passes, so regions never overlap. The result is sorted by
// Start.
func FindRegions(text string) []Region {
	segs := []segment{{start: 0, end: len(text)}}
	for _, style := range tree.Delimiters {
		next := make([]segment, 0, len(segs))
		for _, s := range segs {
			if s.region != nil {
				next = append(next, s)
				continue
			}
			next = append(next, scan(text, s.start, s.end, style)...)
		}
		segs = next
	}

	var regions []Region
	for _, s := range segs {
		if s.region != nil {
			regions = append(regions, *s.region)
		}
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start })
	return regions
}

// scan splits text[start:end] into raw and math segments for one style,
// taking the leftmost opener and the shortest closer after it.
func scan(text string, start, end int, style tree.Delimiter) []segment {
	open, closer := style.Delims()
	inline := !style.Display()
	minContent := 0
	if style == tree.InlineDollar {
		minContent = 1
	}

	var out []segment
	rawStart := start
	pos := start
	for pos < end {
		o := indexDelim(text, pos, end, open)
		if o < 0 {
			break
		}
		contentStart := o + len(open)
		c := indexDelim(text, contentStart+minContent, end, closer)
		if c < 0 {
			// No closer anywhere after this opener; later openers cannot
			// find one either.
			break
		}
		if inline && strings.ContainsAny(text[contentStart:c], "\r\n") {
			pos = o + 1
			continue
		}
		if o > rawStart {
			out = append(out, segment{start: rawStart, end: o})
		}
		regionEnd := c + len(closer)
		out = append(out, segment{
			start: o,
			end:   regionEnd,
			region: &Region{
				Style:   style,
				Start:   o,
				End:     regionEnd,
				Content: text[contentStart:c],
			},
		})
		pos = regionEnd
		rawStart = regionEnd
	}
	if rawStart < end {
		out = append(out, segment{start: rawStart, end: end})
	}
	return out
}

// indexDelim finds delim in text[from:end]. A delimiter preceded by an odd
// run of backslashes is escaped and skipped: `\$` is a literal dollar and
// `\\(` is a line break followed by a parenthesis, while `\\$` is a line
// break followed by a dollar delimiter.
func indexDelim(text string, from, end int, delim string) int {
	for from <= end-len(delim) {
		i := strings.Index(text[from:end], delim)
		if i < 0 {
			return -1
		}
		at := from + i
		if escaped(text, at) {
			from = at + 1
			continue
		}
		return at
	}
	return -1
}

// escaped reports whether the byte at i follows an odd run of backslashes.
func escaped(text string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
