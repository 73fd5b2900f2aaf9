package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/titanium/internal/model"
	"github.com/verte-zerg/titanium/internal/planner"
	"github.com/verte-zerg/titanium/internal/stats"
)

var (
	routineAddName   string
	routineEditName  string
	routineExercises []string
	routineSets      []string
	routineRemove    []int
)

func newRoutinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "routines",
		Aliases: []string{"routine"},
		Short:   "Manage workout routines",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List routines",
		Args:  cobra.NoArgs,
		RunE:  runRoutinesList,
	}
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a routine and its exercises",
		Args:  cobra.ExactArgs(1),
		RunE:  runRoutinesShow,
	}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a routine",
		Long: `Create a routine. Each --exercise is "name:sets:reps:weight:rest[:notes]";
trailing fields may be omitted (defaults: 3 sets, 12 reps, 0 kg, 60 s rest).`,
		Example: `  titanium routines add --name "Push A" --exercise "Bench Press:4:8-10:60:90" --exercise "Dips:3:12"`,
		Args:    cobra.NoArgs,
		RunE:    runRoutinesAdd,
	}
	addCmd.Flags().StringVar(&routineAddName, "name", planner.DefaultRoutineName, "routine name")
	addCmd.Flags().StringArrayVar(&routineExercises, "exercise", nil, "exercise spec (repeatable)")

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a routine",
		Long: `Edit a routine. --set takes "index:field=value" with a 1-based exercise index and
field one of name, sets, reps, weight, rest, notes. Removals run before additions.`,
		Example: `  titanium routines edit 3f2a --set 1:weight=62.5 --set 2:reps=8-12 --exercise "Fly:3:15:10:45"`,
		Args:    cobra.ExactArgs(1),
		RunE:    runRoutinesEdit,
	}
	editCmd.Flags().StringVar(&routineEditName, "name", "", "new routine name")
	editCmd.Flags().StringArrayVar(&routineSets, "set", nil, "exercise update index:field=value (repeatable)")
	editCmd.Flags().StringArrayVar(&routineExercises, "exercise", nil, "exercise spec to append (repeatable)")
	editCmd.Flags().IntSliceVar(&routineRemove, "remove", nil, "1-based exercise index to remove")

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a routine",
		Args:    cobra.ExactArgs(1),
		RunE:    runRoutinesDelete,
	}

	cmd.AddCommand(listCmd, showCmd, addCmd, editCmd, deleteCmd)
	return cmd
}

func runRoutinesList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return stats.RenderRoutineTable(cmd.OutOrStdout(), a.records.ListRoutines(a.ctx))
}

func runRoutinesShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	r, err := findRoutine(a, args[0])
	if err != nil {
		return err
	}
	return stats.RenderRoutineDetail(cmd.OutOrStdout(), r)
}

func runRoutinesAdd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	r := planner.NewRoutine()
	r.Name = routineAddName
	for _, spec := range routineExercises {
		e, err := planner.ParseExercise(spec)
		if err != nil {
			return err
		}
		r = planner.AddExercise(r, e)
	}
	if err := planner.Save(a.ctx, a.records, r); err != nil {
		return fmt.Errorf("cannot save routine: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved routine %s (%s)\n", strings.TrimSpace(r.Name), r.ID)
	return err
}

func runRoutinesEdit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := findRoutine(a, args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("name") {
		r.Name = routineEditName
	}
	for _, spec := range routineSets {
		index, update, err := parseIndexedUpdate(spec)
		if err != nil {
			return err
		}
		if r, err = planner.ApplyUpdate(r, index, update); err != nil {
			return fmt.Errorf("--set %q: %w", spec, err)
		}
	}
	r, err = removeExercises(r, routineRemove)
	if err != nil {
		return err
	}
	for _, spec := range routineExercises {
		e, err := planner.ParseExercise(spec)
		if err != nil {
			return err
		}
		r = planner.AddExercise(r, e)
	}
	if err := planner.Save(a.ctx, a.records, r); err != nil {
		return fmt.Errorf("cannot save routine: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated routine %s (%s)\n", strings.TrimSpace(r.Name), r.ID)
	return err
}

func runRoutinesDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := findRoutine(a, args[0])
	if err != nil {
		return err
	}
	a.records.DeleteRoutine(a.ctx, r.ID)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted routine %s (%s)\n", r.Name, r.ID)
	return err
}

// findRoutine resolves an exact id or a unique id prefix.
func findRoutine(a *app, id string) (model.Routine, error) {
	if r, ok := a.records.GetRoutine(a.ctx, id); ok {
		return r, nil
	}
	var matches []model.Routine
	for _, r := range a.records.ListRoutines(a.ctx) {
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return model.Routine{}, fmt.Errorf("routine %q not found", id)
	case 1:
		return matches[0], nil
	default:
		return model.Routine{}, fmt.Errorf("routine id prefix %q is ambiguous (%d matches)", id, len(matches))
	}
}

// parseIndexedUpdate parses "index:field=value" with a 1-based index.
func parseIndexedUpdate(spec string) (int, planner.ExerciseUpdate, error) {
	rawIndex, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, nil, fmt.Errorf("--set %q: expected index:field=value", spec)
	}
	index, err := strconv.Atoi(strings.TrimSpace(rawIndex))
	if err != nil || index < 1 {
		return 0, nil, fmt.Errorf("--set %q: index must be a positive number", spec)
	}
	update, err := planner.ParseUpdate(rest)
	if err != nil {
		return 0, nil, fmt.Errorf("--set %q: %w", spec, err)
	}
	return index - 1, update, nil
}

// removeExercises drops 1-based indexes, highest first so earlier indexes stay valid.
func removeExercises(r model.Routine, indexes []int) (model.Routine, error) {
	sorted := append([]int(nil), indexes...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	var err error
	for i, idx := range sorted {
		if i > 0 && idx == sorted[i-1] {
			continue
		}
		if r, err = planner.RemoveExercise(r, idx-1); err != nil {
			return r, fmt.Errorf("--remove %d: %w", idx, err)
		}
	}
	return r, nil
}
