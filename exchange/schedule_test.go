package exchange

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scheduleHTML = `
<html><body>
<h1>Match Schedule</h1>
<table>
  <tr><th>Time</th><th>Match</th><th>Red 1</th><th>Red 2</th><th>Red 3</th><th>Blue 1</th><th>Blue 2</th><th>Blue 3</th></tr>
  <tr><td>9:00 AM</td><td>Qualification 1</td><td>611</td><td>254</td><td>1678</td><td>118</td><td>971</td><td>33</td></tr>
  <tr><td>9:09 AM</td><td>Qualification 2</td><td>2056</td><td>148</td><td>1114</td><td>611</td><td>27</td><td>16</td></tr>
  <tr><td colspan="8">Lunch Break</td></tr>
  <tr><td>1:00 PM</td><td>Qualification 3</td><td>3476</td><td>611</td><td>4414</td><td>1323</td><td>973</td><td>696</td></tr>
</table>
</body></html>`

func TestParseMatchSchedule(t *testing.T) {
	t.Run("Happy path - extracts matches and alliances", func(t *testing.T) {
		matches, err := ParseMatchSchedule(strings.NewReader(scheduleHTML))
		require.NoError(t, err)
		require.Len(t, matches, 3)

		assert.Equal(t, "1", matches[0].Number)
		assert.Equal(t, []string{"611", "254", "1678"}, matches[0].RedAlliance)
		assert.Equal(t, []string{"118", "971", "33"}, matches[0].BlueAlliance)
		assert.Equal(t, "3", matches[2].Number)
	})

	t.Run("Happy path - header and break rows are skipped", func(t *testing.T) {
		matches, err := ParseMatchSchedule(strings.NewReader(scheduleHTML))
		require.NoError(t, err)
		for _, m := range matches {
			assert.NotEmpty(t, m.Number)
		}
	})

	t.Run("Unhappy path - document without match rows", func(t *testing.T) {
		_, err := ParseMatchSchedule(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
		assert.ErrorIs(t, err, ErrNoMatchesFound)
	})
}

func TestMatchNumber(t *testing.T) {
	assert.Equal(t, "12", matchNumber("Qualification 12"))
	assert.Equal(t, "7", matchNumber("7"))
	assert.Equal(t, "", matchNumber("Lunch Break"))
	assert.Equal(t, "", matchNumber(""))
}
