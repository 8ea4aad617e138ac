package domain

import "math"

// Match result values.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// SetScore is the score of one set, from the player's perspective.
type SetScore struct {
	You int `bson:"you" json:"you"`
	Opp int `bson:"opp" json:"opp"`
}

// Played reports whether the set was actually contested. A 0-0 set is
// an unplayed third set, not a real one.
func (s SetScore) Played() bool { return s.You > 0 || s.Opp > 0 }

// MatchErrors counts unforced errors by type.
type MatchErrors struct {
	Net           int `bson:"netErrors" json:"netErrors"`
	Out           int `bson:"outErrors" json:"outErrors"`
	Lift          int `bson:"liftErrors" json:"liftErrors"`
	ServiceFaults int `bson:"serviceFaults" json:"serviceFaults"`
	DoubleFaults  int `bson:"doubleFaults" json:"doubleFaults"`
}

// Total sums all error counters.
func (e MatchErrors) Total() int {
	return e.Net + e.Out + e.Lift + e.ServiceFaults + e.DoubleFaults
}

// MatchWinners counts winning shots by type.
type MatchWinners struct {
	Smash       int `bson:"smashWinners" json:"smashWinners"`
	Drop        int `bson:"dropWinners" json:"dropWinners"`
	ServiceAces int `bson:"serviceAces" json:"serviceAces"`
}

// Total sums all winner counters.
func (w MatchWinners) Total() int {
	return w.Smash + w.Drop + w.ServiceAces
}

// SkillRatings are the player's self-assessed ratings for the match,
// each on a 1-10 scale.
type SkillRatings struct {
	Forehand int `bson:"forehand" json:"forehand" validate:"min=1,max=10"`
	Backhand int `bson:"backhand" json:"backhand" validate:"min=1,max=10"`
	Serving  int `bson:"serving" json:"serving" validate:"min=1,max=10"`
	Footwork int `bson:"footwork" json:"footwork" validate:"min=1,max=10"`
	Strategy int `bson:"strategy" json:"strategy" validate:"min=1,max=10"`
	Mental   int `bson:"mental" json:"mental" validate:"min=1,max=10"`
}

// Map returns the ratings keyed by skill name.
func (r SkillRatings) Map() map[string]int {
	return map[string]int{
		"forehand": r.Forehand,
		"backhand": r.Backhand,
		"serving":  r.Serving,
		"footwork": r.Footwork,
		"strategy": r.Strategy,
		"mental":   r.Mental,
	}
}

// Average returns the mean rating across all six skills, rounded to
// one decimal place.
func (r SkillRatings) Average() float64 {
	sum := r.Forehand + r.Backhand + r.Serving + r.Footwork + r.Strategy + r.Mental
	return math.Round(float64(sum)/6*10) / 10
}

// Match is one recorded competitive match.
type Match struct {
	Meta       `bson:",inline"`
	Date       string       `bson:"date" json:"date" validate:"required"`
	Type       string       `bson:"type,omitempty" json:"type,omitempty"` // singles, doubles, ...
	Opponent   string       `bson:"opponent,omitempty" json:"opponent,omitempty"`
	Venue      string       `bson:"venue,omitempty" json:"venue,omitempty"`
	Tournament string       `bson:"tournament,omitempty" json:"tournament,omitempty"`
	Duration   int          `bson:"duration,omitempty" json:"duration,omitempty"` // minutes
	Sets       []SetScore   `bson:"sets" json:"sets"`
	Result     string       `bson:"result" json:"result"`
	Errors     MatchErrors  `bson:"errors" json:"errors"`
	Winners    MatchWinners `bson:"winners" json:"winners"`
	Ratings    SkillRatings `bson:"ratings" json:"ratings"`
	Notes      string       `bson:"notes,omitempty" json:"notes,omitempty"`
	NextFocus  string       `bson:"nextFocus,omitempty" json:"nextFocus,omitempty"`
}

// SetsWon counts played sets won by each side.
func (m *Match) SetsWon() (you, opp int) {
	for _, s := range m.Sets {
		if !s.Played() {
			continue
		}
		if s.You > s.Opp {
			you++
		} else if s.Opp > s.You {
			opp++
		}
	}
	return you, opp
}

// DeriveResult computes and stores the win/loss outcome from the set
// scores. Called before the match is persisted.
func (m *Match) DeriveResult() string {
	you, opp := m.SetsWon()
	if you > opp {
		m.Result = ResultWin
	} else {
		m.Result = ResultLoss
	}
	return m.Result
}

// PlayedSets returns only the sets that were contested.
func (m *Match) PlayedSets() []SetScore {
	played := make([]SetScore, 0, len(m.Sets))
	for _, s := range m.Sets {
		if s.Played() {
			played = append(played, s)
		}
	}
	return played
}

// ErrorTypeLabels maps error counter keys to display names.
var ErrorTypeLabels = map[string]string{
	"netErrors":     "Net Errors",
	"outErrors":     "Out Errors",
	"liftErrors":    "Lift Errors",
	"serviceFaults": "Service Faults",
	"doubleFaults":  "Double Faults",
}
