package broadcast

import (
	"strconv"
	"strings"
	"unicode"
)

// MaxRangeSize bounds a single "a-b" range so one typo cannot fan out to the whole table.
const MaxRangeSize = 5000

// ParseRows extracts row ids from operator arguments: integers and "a-b" ranges (either
// order) separated by whitespace or commas. Unparsable tokens, ranges touching ids <= 0 and
// ranges wider than MaxRangeSize are skipped. The result is deduplicated and keeps
// first-seen order.
func ParseRows(args string) []int64 {
	seen := make(map[int64]struct{})
	var rows []int64
	add := func(id int64) {
		if id <= 0 {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		rows = append(rows, id)
	}
	parts := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	for _, part := range parts {
		if from, to, ok := strings.Cut(part, "-"); ok {
			a, errA := strconv.ParseInt(from, 10, 64)
			b, errB := strconv.ParseInt(to, 10, 64)
			if errA != nil || errB != nil {
				continue
			}
			if a > b {
				a, b = b, a
			}
			// Both ends positive keeps b-a from overflowing.
			if a <= 0 || b-a >= MaxRangeSize {
				continue
			}
			for id := a; ; id++ {
				add(id)
				if id == b {
					break
				}
			}
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		add(n)
	}
	return rows
}
