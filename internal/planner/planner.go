// Package planner builds, edits and validates routines and body readings.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/titanium/internal/model"
)

// Defaults for newly created routines and exercises.
const (
	DefaultRoutineName = "New Workout"
	DefaultSets        = 3
	DefaultReps        = "12"
	DefaultRestTime    = 60
)

// Validation errors. Callers match them with errors.Is.
var (
	ErrRoutineNameRequired = errors.New("routine name is required")
	ErrNoExercises         = errors.New("add at least one exercise")
	ErrInvalidExercise     = errors.New("invalid exercise")
	ErrExerciseIndex       = errors.New("exercise index out of range")
	ErrWeightRequired      = errors.New("body weight is required")
	ErrInvalidBodyStat     = errors.New("invalid body reading")
)

// RoutineWriter is the write side of the store used when saving routines.
type RoutineWriter interface {
	UpsertRoutine(ctx context.Context, routine model.Routine)
}

// BodyStatWriter is the write side of the store used when recording readings.
type BodyStatWriter interface {
	AppendBodyStat(ctx context.Context, stat model.BodyStat)
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// NewRoutine returns an empty routine with a fresh id.
func NewRoutine() model.Routine {
	return model.Routine{
		ID:        NewID(),
		Name:      DefaultRoutineName,
		Exercises: []model.Exercise{},
	}
}

// NewExercise returns an exercise with the default prescription.
func NewExercise() model.Exercise {
	return model.Exercise{
		ID:       NewID(),
		Sets:     DefaultSets,
		Reps:     DefaultReps,
		RestTime: DefaultRestTime,
	}
}

// ValidateRoutine checks that a routine may be saved.
func ValidateRoutine(r model.Routine) error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrRoutineNameRequired
	}
	if len(r.Exercises) == 0 {
		return ErrNoExercises
	}
	for i, e := range r.Exercises {
		if err := validateExercise(e); err != nil {
			return fmt.Errorf("exercise %d: %w", i+1, err)
		}
	}
	return nil
}

func validateExercise(e model.Exercise) error {
	if e.Sets <= 0 {
		return fmt.Errorf("%w: sets must be > 0", ErrInvalidExercise)
	}
	if !finite(e.Weight) || e.Weight < 0 {
		return fmt.Errorf("%w: weight must be a number >= 0", ErrInvalidExercise)
	}
	if e.RestTime < 0 {
		return fmt.Errorf("%w: rest time must be >= 0", ErrInvalidExercise)
	}
	return nil
}

// Save validates the routine and upserts it. Nothing is written on failure.
func Save(ctx context.Context, w RoutineWriter, r model.Routine) error {
	if err := ValidateRoutine(r); err != nil {
		return err
	}
	r.Name = strings.TrimSpace(r.Name)
	w.UpsertRoutine(ctx, r)
	return nil
}

// AddExercise returns a copy of r with e appended.
func AddExercise(r model.Routine, e model.Exercise) model.Routine {
	out := r.Clone()
	if e.ID == "" {
		e.ID = NewID()
	}
	out.Exercises = append(out.Exercises, e)
	return out
}

// RemoveExercise returns a copy of r without the exercise at index.
func RemoveExercise(r model.Routine, index int) (model.Routine, error) {
	if index < 0 || index >= len(r.Exercises) {
		return r, ErrExerciseIndex
	}
	out := r.Clone()
	out.Exercises = append(out.Exercises[:index], out.Exercises[index+1:]...)
	return out, nil
}

// ValidateBodyStat checks a body reading before it is recorded.
func ValidateBodyStat(s model.BodyStat) error {
	if !finite(s.Weight) {
		return fmt.Errorf("%w: weight must be a number", ErrInvalidBodyStat)
	}
	if s.Weight <= 0 {
		return ErrWeightRequired
	}
	optional := map[string]*float64{
		"body fat":     s.BodyFatPercentage,
		"muscle mass":  s.MuscleMass,
		"fat mass":     s.FatMass,
		"visceral fat": s.VisceralFat,
	}
	for name, v := range optional {
		if v != nil && (!finite(*v) || *v < 0) {
			return fmt.Errorf("%w: %s must be a number >= 0", ErrInvalidBodyStat, name)
		}
	}
	if s.BodyFatPercentage != nil && *s.BodyFatPercentage > 100 {
		return fmt.Errorf("%w: body fat must be <= 100", ErrInvalidBodyStat)
	}
	return nil
}

// RecordBodyStat validates and appends a reading, stamping id and date when unset.
func RecordBodyStat(ctx context.Context, w BodyStatWriter, s model.BodyStat, now time.Time) (model.BodyStat, error) {
	if err := ValidateBodyStat(s); err != nil {
		return model.BodyStat{}, err
	}
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.Date.IsZero() {
		s.Date = now
	}
	w.AppendBodyStat(ctx, s)
	return s, nil
}

// finite rejects NaN and ±Inf, which parse as floats but cannot be stored.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
