// Package export writes the artifact register as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/sebastianm/inventar/internal/artifact"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the single worksheet written.
const SheetName = "Artifacts"

// Header is the first row of the sheet, one title per column.
var Header = []string{
	"Code", "Inventory Number", "Name", "Type", "Material", "Period",
	"Quantity", "Source", "Preservation State", "Restoration Date",
	"Restoration Method", "Storage Location", "Row", "Column",
	"Length (cm)", "Width (cm)", "Diameter (cm)", "Thickness (cm)",
	"Weight", "Weight Unit", "Description", "Notes",
	"Card Editor", "Editing Date", "Created At", "Images",
}

// WriteArtifacts writes views as an XLSX workbook to w: a bold header row
// followed by one row per artifact in the given order.
func WriteArtifacts(w io.Writer, views []artifact.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("opening stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, len(Header), 18); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, v := range views {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(v)); err != nil {
			return fmt.Errorf("writing artifact %s: %w", v.Code, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func row(v artifact.View) []any {
	return []any{
		v.Code, v.InventoryNumber, v.Name, v.TypeName, v.MaterialName, v.PeriodName,
		v.Quantity, v.Source, v.PreservationStateName, v.RestorationDate,
		v.RestorationMethodName, v.StorageLocationName, v.StorageRow, v.StorageColumn,
		v.Dimensions.Length, v.Dimensions.Width, v.Dimensions.Diameter, v.Dimensions.Thickness,
		v.Weight, v.WeightUnit, v.Description, v.Notes,
		v.CardEditor, v.EditingDate, v.CreatedAt.Format("2006-01-02 15:04"), len(v.Images),
	}
}
