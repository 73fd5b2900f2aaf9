// Package model defines shared data structures.
package model

import "time"

// Exercise is a single planned movement inside a routine.
type Exercise struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Sets     int     `json:"sets"`
	Reps     string  `json:"reps"` // single value or range, e.g. "10-12"
	Weight   float64 `json:"weight"`
	RestTime int     `json:"restTime"` // seconds
	Notes    string  `json:"notes,omitempty"`
}

// Routine is a named, ordered template of exercises.
type Routine struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// Clone returns a deep copy of the routine.
func (r Routine) Clone() Routine {
	out := r
	out.Exercises = make([]Exercise, len(r.Exercises))
	copy(out.Exercises, r.Exercises)
	return out
}

// WorkoutLog is the immutable record of a finished session.
type WorkoutLog struct {
	ID                 string    `json:"id"`
	RoutineID          string    `json:"routineId"`
	RoutineName        string    `json:"routineName"`
	Date               time.Time `json:"date"`
	DurationSeconds    int64     `json:"durationSeconds"`
	ExercisesCompleted int       `json:"exercisesCompleted"`
	TotalVolume        float64   `json:"totalVolume"`
}

// BodyStat is a timestamped body-composition reading.
type BodyStat struct {
	ID                string    `json:"id"`
	Date              time.Time `json:"date"`
	Weight            float64   `json:"weight"`
	BodyFatPercentage *float64  `json:"bodyFatPercentage,omitempty"`
	MuscleMass        *float64  `json:"muscleMass,omitempty"`
	FatMass           *float64  `json:"fatMass,omitempty"`
	VisceralFat       *float64  `json:"visceralFat,omitempty"`
}

// Float returns a pointer to v, for optional body metrics.
func Float(v float64) *float64 {
	return &v
}

// ValueOr dereferences an optional metric, returning def when unset.
func ValueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// CoachConfig holds settings for the coaching service.
type CoachConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// WorkoutConfig holds settings for the active workout screen.
type WorkoutConfig struct {
	RestTick time.Duration
}
