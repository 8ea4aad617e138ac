// Package export renders the user's data in interchange formats: CSV
// for the two activity logs, iCalendar for the schedule, plus the
// optional object-storage archive for generated files.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"shuttlestats/backend/internal/domain"
)

// The CSV writer quotes every value and doubles embedded quotes,
// matching the files the app has always produced. encoding/csv quotes
// conditionally, which would change the output byte-for-byte.

var trainingHeaders = []string{
	"Date", "Duration", "Type", "Location", "Focus Areas",
	"Performance Rating", "Effort Level", "Notes", "Next Goals",
}

var matchHeaders = []string{
	"Date", "Type", "Opponent", "Result", "Score", "Sets Won", "Sets Lost",
	"Total Errors", "Total Winners", "Average Rating", "Venue", "Duration", "Notes",
}

// TrainingCSV renders the training log.
func TrainingCSV(sessions []*domain.TrainingSession) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		labels := make([]string, 0, len(s.FocusAreas))
		for _, area := range s.FocusAreas {
			labels = append(labels, domain.FocusAreaLabel(area))
		}
		rows = append(rows, []string{
			s.Date,
			fmt.Sprintf("%d minutes", s.Duration),
			s.Type,
			s.Location,
			strings.Join(labels, ", "),
			fmt.Sprintf("%d/10", s.Rating),
			fmt.Sprintf("%d/10", s.Effort),
			s.Notes,
			s.NextGoals,
		})
	}
	return document(trainingHeaders, rows)
}

// MatchCSV renders the match log.
func MatchCSV(matches []*domain.Match) string {
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		scores := make([]string, 0, len(m.Sets))
		for _, set := range m.PlayedSets() {
			scores = append(scores, fmt.Sprintf("%d-%d", set.You, set.Opp))
		}
		you, opp := m.SetsWon()

		duration := ""
		if m.Duration > 0 {
			duration = fmt.Sprintf("%d minutes", m.Duration)
		}
		rows = append(rows, []string{
			m.Date,
			m.Type,
			m.Opponent,
			m.Result,
			strings.Join(scores, ", "),
			strconv.Itoa(you),
			strconv.Itoa(opp),
			strconv.Itoa(m.Errors.Total()),
			strconv.Itoa(m.Winners.Total()),
			strconv.FormatFloat(m.Ratings.Average(), 'f', -1, 64),
			m.Venue,
			duration,
			m.Notes,
		})
	}
	return document(matchHeaders, rows)
}

func document(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		for i, value := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(value))
		}
	}
	return b.String()
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
