package domain

// TrainingSession is one logged practice session.
type TrainingSession struct {
	Meta       `bson:",inline"`
	Date       string   `bson:"date" json:"date" validate:"required"`
	Duration   int      `bson:"duration" json:"duration" validate:"gt=0"` // minutes
	Location   string   `bson:"location,omitempty" json:"location,omitempty"`
	Type       string   `bson:"type" json:"type" validate:"required"`
	FocusAreas []string `bson:"focusAreas" json:"focusAreas" validate:"min=1"`
	Rating     int      `bson:"rating" json:"rating" validate:"min=1,max=10"`
	Effort     int      `bson:"effort" json:"effort" validate:"min=1,max=10"`
	Notes      string   `bson:"notes,omitempty" json:"notes,omitempty"`
	NextGoals  string   `bson:"nextGoals,omitempty" json:"nextGoals,omitempty"`
}

// FocusAreaLabels maps focus-area codes to display names, used by the
// CSV export and the top-focus-area stat.
var FocusAreaLabels = map[string]string{
	"smash":     "Smash",
	"clear":     "Clear",
	"drop":      "Drop Shot",
	"net":       "Net Play",
	"serve":     "Serve",
	"footwork":  "Footwork",
	"defense":   "Defense",
	"endurance": "Endurance",
}

// FocusAreaLabel returns the display name for a focus-area code,
// falling back to the code itself.
func FocusAreaLabel(code string) string {
	if label, ok := FocusAreaLabels[code]; ok {
		return label
	}
	return code
}
