package sheet

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxAttempts caps how many attempt columns a single course may span.
const MaxAttempts = 3

// courseCodeRegex accepts code-like headers: alphanumeric start, 3+ chars,
// dashes and underscores allowed. Anything else is narrative metadata.
var courseCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{2,}$`)

// IsCourseCode reports whether a header cell looks like a course code.
func IsCourseCode(h string) bool {
	return courseCodeRegex.MatchString(strings.TrimSpace(h))
}

// IsContinuationHeader reports whether a header cell denotes a continuation
// of the previous named column: blank, or the "Unnamed: N" placeholder some
// exports emit for merged header cells.
func IsContinuationHeader(h string) bool {
	t := strings.TrimSpace(h)
	return t == "" || strings.HasPrefix(t, "Unnamed")
}

// Group is one course's span of attempt columns.
type Group struct {
	Code  string
	Width int
}

// KeyedRow is one flattened data row: natural key plus one value per
// grouped column.
type KeyedRow struct {
	Key    string
	Values []string
}

// Grouped is the long-form output of attempt grouping: Columns holds either
// the bare course code (width 1) or CODE_AttemptK names, Rows are aligned
// with it, empty cells normalized to "-".
type Grouped struct {
	Columns []string
	Groups  []Group
	Rows    []KeyedRow

	// Skipped lists headers dropped as non-course metadata; Errors holds
	// groups rejected for spanning more than MaxAttempts columns.
	Skipped []string
	Errors  []error
}

// TooManyAttemptsError rejects a course whose header spans more continuation
// columns than attempt slots exist.
type TooManyAttemptsError struct {
	Code  string
	Width int
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("course %s spans %d attempt columns, max is %d", e.Code, e.Width, MaxAttempts)
}

type groupState int

const (
	stateIdle groupState = iota
	stateInGroup
)

// span is a contiguous run of header columns owned by one named header.
type span struct {
	code  string
	start int
	width int
	valid bool
}

// GroupAttempts scans the repeating-block header left-to-right, grouping each
// named column with its trailing continuation columns into one course span,
// then flattens the rows onto the retained columns. Header, keys and rows
// come from Segment; the sentinel boundary has already been applied.
//
// Transitions: a named header always opens a new span (Idle -> InGroup or
// InGroup -> InGroup); a continuation header widens the current span, or is
// ignored when no span is open yet.
func GroupAttempts(header []string, keys []string, rows [][]string) *Grouped {
	var spans []span
	state := stateIdle
	for i, h := range header {
		if IsContinuationHeader(h) {
			if state == stateInGroup {
				spans[len(spans)-1].width++
			}
			continue
		}
		code := strings.TrimSpace(h)
		spans = append(spans, span{code: code, start: i, width: 1, valid: IsCourseCode(code)})
		state = stateInGroup
	}

	g := &Grouped{}
	retained := make([]span, 0, len(spans))
	for _, sp := range spans {
		switch {
		case !sp.valid:
			g.Skipped = append(g.Skipped, sp.code)
		case sp.width > MaxAttempts:
			g.Errors = append(g.Errors, &TooManyAttemptsError{Code: sp.code, Width: sp.width})
		default:
			retained = append(retained, sp)
			g.Groups = append(g.Groups, Group{Code: sp.code, Width: sp.width})
			if sp.width == 1 {
				g.Columns = append(g.Columns, sp.code)
				continue
			}
			for k := 1; k <= sp.width; k++ {
				g.Columns = append(g.Columns, fmt.Sprintf("%s_Attempt%d", sp.code, k))
			}
		}
	}

	for ri, row := range rows {
		vals := make([]string, 0, len(g.Columns))
		for _, sp := range retained {
			for k := 0; k < sp.width; k++ {
				v := cellAt(row, sp.start+k)
				if v == "" {
					v = NotAttemptedToken
				}
				vals = append(vals, v)
			}
		}
		var key string
		if ri < len(keys) {
			key = keys[ri]
		}
		g.Rows = append(g.Rows, KeyedRow{Key: key, Values: vals})
	}
	return g
}

// CollapseYear1Exemptions rewrites the attempt-1 cells of the year-1 course
// set to "Exempted" on rows where every such cell holds a numeric 100 (the
// student tested out of first-year content entirely). All-or-nothing per
// row: partial 100s leave the row untouched. The year1 set is keyed by
// upper-cased course code.
func (g *Grouped) CollapseYear1Exemptions(year1 map[string]bool) {
	if len(year1) == 0 {
		return
	}

	var cols []int
	off := 0
	for _, grp := range g.Groups {
		if year1[strings.ToUpper(grp.Code)] {
			cols = append(cols, off) // attempt 1 is the span's first column
		}
		off += grp.Width
	}
	if len(cols) == 0 {
		return
	}

	for _, row := range g.Rows {
		all := true
		for _, c := range cols {
			if c >= len(row.Values) || !ParseValue(row.Values[c]).IsFullScore() {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		for _, c := range cols {
			row.Values[c] = ExemptedToken
		}
	}
}
