package exchange

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ssnnd0/Saxon-Scout/storage"
)

var ErrNoMatchesFound = errors.New("no match rows found in schedule document")

// ParseMatchSchedule extracts matches from an FMS "Match Schedule" HTML
// report, the file event staff hand out before qualification rounds. The
// report is a plain table: time, match label, then six team-number columns
// (red 1-3, blue 1-3). Rows that don't fit that shape (headers, breaks,
// footer notes) are skipped.
func ParseMatchSchedule(r io.Reader) ([]storage.Match, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var matches []storage.Match
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 8 {
			return
		}

		var cols []string
		cells.Each(func(_ int, cell *goquery.Selection) {
			cols = append(cols, strings.TrimSpace(cell.Text()))
		})

		number := matchNumber(cols[1])
		if number == "" {
			return
		}

		m := storage.Match{
			Number:       number,
			RedAlliance:  cols[2:5],
			BlueAlliance: cols[5:8],
		}
		if t, err := parseScheduleTime(cols[0]); err == nil {
			m.Time = t
		}
		matches = append(matches, m)
	})

	if len(matches) == 0 {
		return nil, ErrNoMatchesFound
	}
	return matches, nil
}

// matchNumber pulls the numeric part out of a match label such as
// "Qualification 12" or a bare "12". Non-match rows yield "".
func matchNumber(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	candidate := fields[len(fields)-1]
	for _, r := range candidate {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return candidate
}

var scheduleTimeLayouts = []string{
	"3:04 PM",
	"15:04",
	"Mon 3:04 PM",
}

func parseScheduleTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range scheduleTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
