package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sebastianm/inventar/internal/app"
	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/artifact"
	"github.com/sebastianm/inventar/internal/lookup"
	"github.com/spf13/cobra"
)

func artifactCmd(o *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Create, edit, search and delete artifact records",
	}
	cmd.AddCommand(
		artifactAddCmd(o),
		artifactUpdateCmd(o),
		artifactShowCmd(o),
		artifactSearchCmd(o),
		artifactDeleteCmd(o),
	)
	return cmd
}

// refFlags are the flags selecting lookup rows. Values are an id or an
// exact name; an empty value or "none" clears the reference.
var refFlags = []struct {
	flag  string
	table lookup.Table
	usage string
}{
	{"type", lookup.Types, "Artifact type"},
	{"material", lookup.Materials, "Material"},
	{"period", lookup.Periods, "Historical period"},
	{"state", lookup.PreservationStates, "Preservation state"},
	{"method", lookup.RestorationMethods, "Restoration method"},
	{"location", lookup.StorageLocations, "Storage location"},
}

// artifactFlags collects the editable fields from the command line. Only
// flags that were set are applied, so update keeps every other field.
type artifactFlags struct {
	name, inventory, source, description, notes string
	restorationDate, row, col                   string
	weightUnit, editor, editingDate             string
	quantity                                    int
	length, width, diameter, thickness, weight  float64

	refs   map[lookup.Table]*string
	images []string
}

func (af *artifactFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&af.name, "name", "", "Artifact name")
	f.StringVar(&af.inventory, "inventory", "", "Inventory number")
	f.StringVar(&af.source, "source", "", "Source or provenance")
	f.IntVar(&af.quantity, "quantity", 1, "Number of pieces")
	f.StringVar(&af.restorationDate, "restoration-date", "", "Restoration date (YYYY-MM-DD)")
	f.StringVar(&af.row, "row", "", "Storage row")
	f.StringVar(&af.col, "col", "", "Storage column")
	f.Float64Var(&af.length, "length", 0, "Length in cm")
	f.Float64Var(&af.width, "width", 0, "Width in cm")
	f.Float64Var(&af.diameter, "diameter", 0, "Diameter in cm")
	f.Float64Var(&af.thickness, "thickness", 0, "Thickness in cm")
	f.Float64Var(&af.weight, "weight", 0, "Weight")
	f.StringVar(&af.weightUnit, "weight-unit", artifact.DefaultWeightUnit, "Weight unit")
	f.StringVar(&af.description, "description", "", "Description")
	f.StringVar(&af.notes, "notes", "", "Notes")
	f.StringVar(&af.editor, "editor", "", "Card editor")
	f.StringVar(&af.editingDate, "editing-date", "", "Card editing date (YYYY-MM-DD)")
	f.StringArrayVar(&af.images, "image", nil, "Image file to attach (repeatable)")

	af.refs = make(map[lookup.Table]*string, len(refFlags))
	for _, r := range refFlags {
		v := new(string)
		af.refs[r.table] = v
		f.StringVar(v, r.flag, "", r.usage+" (id or exact name)")
	}
}

// apply copies every flag that was set onto f.
func (af *artifactFlags) apply(ctx context.Context, cmd *cobra.Command, lookups *lookup.LookupService, f *artifact.Fields) error {
	changed := cmd.Flags().Changed
	for flag, p := range map[string]struct {
		dst *string
		v   string
	}{
		"name":             {&f.Name, af.name},
		"inventory":        {&f.InventoryNumber, af.inventory},
		"source":           {&f.Source, af.source},
		"restoration-date": {&f.RestorationDate, af.restorationDate},
		"row":              {&f.StorageRow, af.row},
		"col":              {&f.StorageColumn, af.col},
		"weight-unit":      {&f.WeightUnit, af.weightUnit},
		"description":      {&f.Description, af.description},
		"notes":            {&f.Notes, af.notes},
		"editor":           {&f.CardEditor, af.editor},
		"editing-date":     {&f.EditingDate, af.editingDate},
	} {
		if changed(flag) {
			*p.dst = p.v
		}
	}
	for flag, p := range map[string]struct {
		dst *float64
		v   float64
	}{
		"length":    {&f.Dimensions.Length, af.length},
		"width":     {&f.Dimensions.Width, af.width},
		"diameter":  {&f.Dimensions.Diameter, af.diameter},
		"thickness": {&f.Dimensions.Thickness, af.thickness},
		"weight":    {&f.Weight, af.weight},
	} {
		if changed(flag) {
			*p.dst = p.v
		}
	}
	if changed("quantity") {
		f.Quantity = af.quantity
	}

	for _, r := range refFlags {
		if !changed(r.flag) {
			continue
		}
		id, err := resolveRef(ctx, lookups, r.table, *af.refs[r.table])
		if err != nil {
			return err
		}
		*refField(f, r.table) = id
	}
	return nil
}

func refField(f *artifact.Fields, t lookup.Table) **int64 {
	switch t {
	case lookup.Types:
		return &f.TypeID
	case lookup.Materials:
		return &f.MaterialID
	case lookup.Periods:
		return &f.PeriodID
	case lookup.PreservationStates:
		return &f.PreservationStateID
	case lookup.RestorationMethods:
		return &f.RestorationMethodID
	default:
		return &f.StorageLocationID
	}
}

// resolveRef turns an id or name into a lookup reference.
func resolveRef(ctx context.Context, lookups *lookup.LookupService, t lookup.Table, v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "none") {
		return nil, nil
	}
	if id, err := strconv.ParseInt(v, 10, 64); err == nil {
		it, err := lookups.Get(ctx, t, id)
		if err != nil {
			return nil, err
		}
		return &it.ID, nil
	}
	it, err := lookups.FindByName(ctx, t, v)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Invalid(string(t), fmt.Sprintf("no entry named %q", v))
	}
	if err != nil {
		return nil, err
	}
	return &it.ID, nil
}

func artifactAddCmd(o *rootOpts) *cobra.Command {
	af := &artifactFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an artifact and assign the next code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var f artifact.Fields
				if err := af.apply(ctx, cmd, a.Lookups, &f); err != nil {
					return err
				}
				res, err := a.Artifacts.CreateArtifact(ctx, artifact.Input{Fields: f, ImagePaths: af.images})
				printWarnings(cmd, res.Warnings)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created artifact %d with code %s (%d images)\n",
					res.Artifact.ID, res.Artifact.Code, len(res.Images))
				return nil
			})
		},
	}
	af.register(cmd)
	return cmd
}

func artifactUpdateCmd(o *rootOpts) *cobra.Command {
	af := &artifactFlags{}
	var remove []int64
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an artifact; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				cur, err := a.Artifacts.GetArtifactForEdit(ctx, id)
				if err != nil {
					return err
				}
				f := cur.Fields
				if err := af.apply(ctx, cmd, a.Lookups, &f); err != nil {
					return err
				}
				res, err := a.Artifacts.UpdateArtifact(ctx, id, artifact.Input{
					Fields:         f,
					ImagePaths:     af.images,
					RemoveImageIDs: remove,
				})
				printWarnings(cmd, res.Warnings)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated artifact %d (%s)\n", res.Artifact.ID, res.Artifact.Code)
				return nil
			})
		},
	}
	af.register(cmd)
	cmd.Flags().Int64SliceVar(&remove, "remove-image", nil, "Image id to remove (repeatable)")
	return cmd
}

func artifactShowCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an artifact with its lookup names and images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				v, err := a.Artifacts.GetArtifact(ctx, id)
				if err != nil {
					return err
				}
				t := newTable(cmd.OutOrStdout(), "Field", "Value")
				t.AppendBulk([][]string{
					{"ID", itoa(v.ID)},
					{"Code", v.Code},
					{"Inventory", v.InventoryNumber},
					{"Name", v.Name},
					{"Source", v.Source},
					{"Quantity", strconv.Itoa(v.Quantity)},
					{"Type", v.TypeName},
					{"Material", v.MaterialName},
					{"Period", v.PeriodName},
					{"State", v.PreservationStateName},
					{"Restored", v.RestorationDate},
					{"Method", v.RestorationMethodName},
					{"Location", v.StorageLocationName},
					{"Row/Col", strings.Trim(v.StorageRow+"/"+v.StorageColumn, "/")},
					{"Dimensions", fmt.Sprintf("L %g  W %g  D %g  T %g cm",
						v.Dimensions.Length, v.Dimensions.Width, v.Dimensions.Diameter, v.Dimensions.Thickness)},
					{"Weight", fmt.Sprintf("%g %s", v.Weight, v.WeightUnit)},
					{"Description", v.Description},
					{"Notes", v.Notes},
					{"Editor", v.CardEditor},
					{"Edited", v.EditingDate},
					{"Created", v.CreatedAt.Local().Format("2006-01-02 15:04")},
				})
				for _, img := range v.Images {
					t.Append([]string{"Image " + itoa(img.ID), a.Images.Path(img)})
				}
				t.Render()
				return nil
			})
		},
	}
}

func artifactSearchCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "search [text]",
		Short: "Find artifacts by name, code or inventory number, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				found, err := a.Artifacts.SearchArtifacts(ctx, text)
				if err != nil {
					return err
				}
				t := newTable(cmd.OutOrStdout(), "ID", "Code", "Inventory", "Name", "Type", "Period", "Location")
				for _, s := range found {
					t.Append([]string{itoa(s.ID), s.Code, s.InventoryNumber, s.Name, s.TypeName, s.PeriodName, s.StorageLocationName})
				}
				t.Render()
				return nil
			})
		},
	}
}

func artifactDeleteCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an artifact together with its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				warnings, err := a.Artifacts.DeleteArtifact(ctx, id)
				if err != nil {
					return err
				}
				printWarnings(cmd, warnings)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted artifact %d\n", id)
				return nil
			})
		},
	}
}
