package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/titanium/internal/model"
)

// ExerciseUpdate changes one known field of an exercise. The set of updates
// is closed: only the constructors below produce values.
type ExerciseUpdate interface {
	apply(e *model.Exercise) error
	Field() string
}

type nameUpdate string
type setsUpdate int
type repsUpdate string
type weightUpdate float64
type restUpdate int
type notesUpdate string

// SetName renames an exercise.
func SetName(name string) ExerciseUpdate { return nameUpdate(name) }

// SetSets changes the target set count.
func SetSets(sets int) ExerciseUpdate { return setsUpdate(sets) }

// SetReps changes the rep specification.
func SetReps(reps string) ExerciseUpdate { return repsUpdate(reps) }

// SetWeight changes the working weight in kg.
func SetWeight(kg float64) ExerciseUpdate { return weightUpdate(kg) }

// SetRestTime changes the rest duration in seconds.
func SetRestTime(seconds int) ExerciseUpdate { return restUpdate(seconds) }

// SetNotes changes the free-text note.
func SetNotes(notes string) ExerciseUpdate { return notesUpdate(notes) }

func (u nameUpdate) Field() string   { return "name" }
func (u setsUpdate) Field() string   { return "sets" }
func (u repsUpdate) Field() string   { return "reps" }
func (u weightUpdate) Field() string { return "weight" }
func (u restUpdate) Field() string   { return "rest" }
func (u notesUpdate) Field() string  { return "notes" }

func (u nameUpdate) apply(e *model.Exercise) error {
	e.Name = strings.TrimSpace(string(u))
	return nil
}

func (u setsUpdate) apply(e *model.Exercise) error {
	if u <= 0 {
		return fmt.Errorf("%w: sets must be > 0", ErrInvalidExercise)
	}
	e.Sets = int(u)
	return nil
}

func (u repsUpdate) apply(e *model.Exercise) error {
	reps := strings.TrimSpace(string(u))
	if reps == "" {
		return fmt.Errorf("%w: reps must not be empty", ErrInvalidExercise)
	}
	e.Reps = reps
	return nil
}

func (u weightUpdate) apply(e *model.Exercise) error {
	if !finite(float64(u)) || u < 0 {
		return fmt.Errorf("%w: weight must be a number >= 0", ErrInvalidExercise)
	}
	e.Weight = float64(u)
	return nil
}

func (u restUpdate) apply(e *model.Exercise) error {
	if u < 0 {
		return fmt.Errorf("%w: rest time must be >= 0", ErrInvalidExercise)
	}
	e.RestTime = int(u)
	return nil
}

func (u notesUpdate) apply(e *model.Exercise) error {
	e.Notes = string(u)
	return nil
}

// ApplyUpdate returns a copy of r with the update applied to the exercise at
// index. r is not modified.
func ApplyUpdate(r model.Routine, index int, u ExerciseUpdate) (model.Routine, error) {
	if index < 0 || index >= len(r.Exercises) {
		return r, ErrExerciseIndex
	}
	out := r.Clone()
	if err := u.apply(&out.Exercises[index]); err != nil {
		return r, err
	}
	return out, nil
}

// ParseUpdate parses "field=value" into a typed update.
func ParseUpdate(s string) (ExerciseUpdate, error) {
	field, value, ok := strings.Cut(s, "=")
	if !ok {
		return nil, fmt.Errorf("expected field=value, got %q", s)
	}
	field = strings.ToLower(strings.TrimSpace(field))
	value = strings.TrimSpace(value)
	switch field {
	case "name":
		return SetName(value), nil
	case "sets":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: sets %q is not a number", ErrInvalidExercise, value)
		}
		return SetSets(n), nil
	case "reps":
		return SetReps(value), nil
	case "weight":
		kg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight %q is not a number", ErrInvalidExercise, value)
		}
		return SetWeight(kg), nil
	case "rest", "resttime":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: rest %q is not a number", ErrInvalidExercise, value)
		}
		return SetRestTime(n), nil
	case "notes":
		return SetNotes(value), nil
	default:
		return nil, fmt.Errorf("unknown exercise field %q (name, sets, reps, weight, rest, notes)", field)
	}
}

// ParseExercise parses "name:sets:reps:weight:rest[:notes]". Trailing fields
// may be omitted and take the defaults of NewExercise.
func ParseExercise(s string) (model.Exercise, error) {
	parts := strings.SplitN(s, ":", 6)
	e := NewExercise()
	e.Name = strings.TrimSpace(parts[0])
	if e.Name == "" {
		return model.Exercise{}, fmt.Errorf("%w: name is required in %q", ErrInvalidExercise, s)
	}
	fields := []string{"sets", "reps", "weight", "rest", "notes"}
	for i, raw := range parts[1:] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		u, err := ParseUpdate(fields[i] + "=" + raw)
		if err != nil {
			return model.Exercise{}, err
		}
		if err := u.apply(&e); err != nil {
			return model.Exercise{}, err
		}
	}
	return e, nil
}
