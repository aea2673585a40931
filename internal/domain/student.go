package domain

import "time"

// Level is an individual student's training level.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists levels in menu order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l == LevelBeginner || l == LevelIntermediate || l == LevelAdvanced
}

// Specialization tags what an individual student trains for.
type Specialization string

const (
	SpecStrength   Specialization = "strength"
	SpecEndurance  Specialization = "endurance"
	SpecMobility   Specialization = "mobility"
	SpecWeightLoss Specialization = "weight_loss"
	SpecRehab      Specialization = "rehab"
)

// Specializations lists specializations in menu order.
var Specializations = []Specialization{SpecStrength, SpecEndurance, SpecMobility, SpecWeightLoss, SpecRehab}

// Valid reports whether s is a known specialization.
func (s Specialization) Valid() bool {
	for _, v := range Specializations {
		if v == s {
			return true
		}
	}
	return false
}

// IndividualStudent belongs to a coach directly, outside any team.
type IndividualStudent struct {
	ID             int64           `db:"id"`
	CoachID        int64           `db:"coach_id"`
	SubjectID      *int64          `db:"subject_id"`
	FirstName      string          `db:"first_name"`
	LastName       *string         `db:"last_name"`
	Specialization *Specialization `db:"specialization"`
	Level          Level           `db:"level"`
	CreatedAt      time.Time       `db:"created_at"`
	IsActive       bool            `db:"is_active"`
}

// NewStudent is the payload for adding an individual student.
type NewStudent struct {
	CoachID        int64
	FirstName      string
	LastName       *string
	Specialization *Specialization
	Level          Level
}
