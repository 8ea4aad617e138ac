package service

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"shuttlestats/backend/internal/domain"
)

// Skill-rating thresholds for the strengths/weaknesses breakdown.
const (
	strengthThreshold = 7.0
	weaknessThreshold = 6.0
	analysisTopN      = 3
)

// SkillAverage pairs a skill with its average rating across matches.
type SkillAverage struct {
	Skill  string  `json:"skill"`
	Rating float64 `json:"rating"`
}

// MatchStats are the aggregate figures and analysis for the match list.
type MatchStats struct {
	Total         int                `json:"total"`
	Wins          int                `json:"wins"`
	Losses        int                `json:"losses"`
	WinRate       int                `json:"winRate"` // percent, rounded
	CurrentStreak string             `json:"currentStreak"`
	AvgRatings    map[string]float64 `json:"avgRatings"`
	Strengths     []SkillAverage     `json:"strengths"`
	Weaknesses    []SkillAverage     `json:"weaknesses"`
	ErrorTotals   map[string]int     `json:"errorTotals"`
}

// MatchManager owns the match collection for one owner.
type MatchManager struct {
	*Manager[*domain.Match]
}

// NewMatchManager builds the manager; call Start before use.
func NewMatchManager(owner string, source Source[*domain.Match], deps Deps) *MatchManager {
	m := newManager(domain.KindMatch, "match", owner, source, deps)
	m.prepare = func(match *domain.Match) {
		match.DeriveResult()
	}
	m.checkRecord = func(match *domain.Match) error {
		if len(match.PlayedSets()) == 0 {
			return errors.New("enter the score of at least one set")
		}
		return nil
	}
	return &MatchManager{Manager: m}
}

// Stats recomputes totals, the current win/loss streak and the skill
// analysis from the full collection.
func (m *MatchManager) Stats() MatchStats {
	matches := m.Snapshot()
	stats := MatchStats{
		Total:         len(matches),
		CurrentStreak: "0",
		AvgRatings:    map[string]float64{},
		ErrorTotals:   map[string]int{},
	}
	if len(matches) == 0 {
		return stats
	}

	ratingSums := map[string]int{}
	for _, match := range matches {
		if match.Result == domain.ResultWin {
			stats.Wins++
		} else {
			stats.Losses++
		}
		for skill, rating := range match.Ratings.Map() {
			ratingSums[skill] += rating
		}
		stats.ErrorTotals["netErrors"] += match.Errors.Net
		stats.ErrorTotals["outErrors"] += match.Errors.Out
		stats.ErrorTotals["liftErrors"] += match.Errors.Lift
		stats.ErrorTotals["serviceFaults"] += match.Errors.ServiceFaults
		stats.ErrorTotals["doubleFaults"] += match.Errors.DoubleFaults
	}
	stats.WinRate = int(math.Round(float64(stats.Wins) / float64(len(matches)) * 100))

	for skill, sum := range ratingSums {
		stats.AvgRatings[skill] = float64(sum) / float64(len(matches))
	}
	stats.Strengths = topSkills(stats.AvgRatings, func(r float64) bool { return r >= strengthThreshold }, true)
	stats.Weaknesses = topSkills(stats.AvgRatings, func(r float64) bool { return r < weaknessThreshold }, false)
	stats.CurrentStreak = m.streak(matches)
	return stats
}

// streak formats the run of identical results on the most recent
// matches, e.g. "3W" or "2L".
func (m *MatchManager) streak(matches []*domain.Match) string {
	if len(matches) == 0 {
		return "0"
	}
	byDate := append([]*domain.Match{}, matches...)
	sort.SliceStable(byDate, func(i, j int) bool { return byDate[i].Date > byDate[j].Date })

	latest := byDate[0].Result
	run := 0
	for _, match := range byDate {
		if match.Result != latest {
			break
		}
		run++
	}
	suffix := "L"
	if latest == domain.ResultWin {
		suffix = "W"
	}
	return fmt.Sprintf("%d%s", run, suffix)
}

func topSkills(avgs map[string]float64, keep func(float64) bool, best bool) []SkillAverage {
	picked := make([]SkillAverage, 0, len(avgs))
	for skill, rating := range avgs {
		if keep(rating) {
			picked = append(picked, SkillAverage{Skill: skill, Rating: rating})
		}
	}
	sort.Slice(picked, func(i, j int) bool {
		if picked[i].Rating != picked[j].Rating {
			if best {
				return picked[i].Rating > picked[j].Rating
			}
			return picked[i].Rating < picked[j].Rating
		}
		return picked[i].Skill < picked[j].Skill
	})
	if len(picked) > analysisTopN {
		picked = picked[:analysisTopN]
	}
	return picked
}
