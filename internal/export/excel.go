// Package export writes admin spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"bpoc/internal/models"
	"bpoc/internal/repositories"

	"github.com/xuri/excelize/v2"
)

const (
	candidatesSheet = "Candidates"
	pipelineSheet   = "Pipeline"
)

// Stager maps a free-text application status onto a display stage.
type Stager func(status string) (stage string, percent int)

// Workbook writes candidates and, when given, the application pipeline.
func Workbook(w io.Writer, candidates []models.Candidate, pipeline []repositories.ApplicationSummary, stage Stager) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", candidatesSheet); err != nil {
		return err
	}
	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	if err := writeCandidates(f, header, candidates); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}
	if pipeline != nil {
		if _, err := f.NewSheet(pipelineSheet); err != nil {
			return err
		}
		if err := writePipeline(f, header, pipeline, stage); err != nil {
			return fmt.Errorf("failed to create pipeline sheet: %w", err)
		}
	}
	return f.Write(w)
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeCandidates(f *excelize.File, style int, candidates []models.Candidate) error {
	if err := writeHeader(f, candidatesSheet, style, []string{"Name", "Email", "Phone", "Headline", "Skills", "Active", "AI Summary"}); err != nil {
		return err
	}
	f.SetColWidth(candidatesSheet, "A", "B", 28)
	f.SetColWidth(candidatesSheet, "D", "E", 32)
	f.SetColWidth(candidatesSheet, "G", "G", 60)

	for i, c := range candidates {
		row := []any{c.FullName(), c.Email, c.Phone, c.Headline, strings.Join(c.Skills, ", "), c.IsActive, c.AISummary}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(candidatesSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writePipeline(f *excelize.File, style int, rows []repositories.ApplicationSummary, stage Stager) error {
	if err := writeHeader(f, pipelineSheet, style, []string{"Application", "Candidate", "Email", "Job", "Status", "Stage", "Progress %"}); err != nil {
		return err
	}
	f.SetColWidth(pipelineSheet, "A", "A", 38)
	f.SetColWidth(pipelineSheet, "B", "D", 28)

	for i, r := range rows {
		stageName, percent := "", 0
		if stage != nil {
			stageName, percent = stage(r.Status)
		}
		row := []any{r.ApplicationID, r.CandidateName, r.Email, r.JobTitle, r.Status, stageName, percent}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(pipelineSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
