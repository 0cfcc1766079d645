package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CronSpec is a parsed 5-field expression: minute hour day-of-month month
// day-of-week. Each field accepts *, n, a-b, */s, a-b/s and comma lists.
// Day-of-week 7 is Sunday, like 0.
type CronSpec struct {
	fields [5]map[int]bool
	// domStar and dowStar record a literal "*" so the classic day rule applies:
	// when both day fields are restricted, either may match.
	domStar, dowStar bool
}

var cronBounds = [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 7}}

// ParseCron parses expr.
func ParseCron(expr string) (*CronSpec, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return nil, fmt.Errorf("cron %q: want 5 fields, got %d", expr, len(parts))
	}

	spec := &CronSpec{domStar: parts[2] == "*", dowStar: parts[4] == "*"}
	for i, p := range parts {
		set, err := parseField(p, cronBounds[i][0], cronBounds[i][1])
		if err != nil {
			return nil, fmt.Errorf("cron %q: field %d: %w", expr, i+1, err)
		}
		spec.fields[i] = set
	}
	if spec.fields[4][7] {
		spec.fields[4][0] = true
	}
	return spec, nil
}

func parseField(field string, lo, hi int) (map[int]bool, error) {
	set := make(map[int]bool)
	for _, part := range strings.Split(field, ",") {
		step := 1
		if i := strings.Index(part, "/"); i >= 0 {
			n, err := strconv.Atoi(part[i+1:])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("bad step in %q", part)
			}
			step = n
			part = part[:i]
		}

		from, to := lo, hi
		switch {
		case part == "*":
		case strings.Contains(part, "-"):
			a, b, _ := strings.Cut(part, "-")
			var err1, err2 error
			from, err1 = strconv.Atoi(a)
			to, err2 = strconv.Atoi(b)
			if err1 != nil || err2 != nil || from > to {
				return nil, fmt.Errorf("bad range %q", part)
			}
		default:
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("bad value %q", part)
			}
			from, to = n, n
		}
		if from < lo || to > hi {
			return nil, fmt.Errorf("%q out of range %d-%d", part, lo, hi)
		}

		for v := from; v <= to; v += step {
			set[v] = true
		}
	}
	return set, nil
}

// Matches reports whether t falls on the expression, to the minute.
func (c *CronSpec) Matches(t time.Time) bool {
	if !c.fields[0][t.Minute()] || !c.fields[1][t.Hour()] || !c.fields[3][int(t.Month())] {
		return false
	}
	dom := c.fields[2][t.Day()]
	dow := c.fields[4][int(t.Weekday())]
	if c.domStar || c.dowStar {
		return dom && dow
	}
	return dom || dow
}
