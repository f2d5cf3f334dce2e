package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
)

const (
	exportSheet       = "Admissions"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportDateLayout  = "2006-01-02 15:04"
	exportColumnWidth = 18
)

var exportHeaders = []string{
	"Enquiry Number", "Admission No", "Student Name", "Class", "Session", "Gender", "Date of Birth",
	"Father Name", "Father Mobile", "Mother Name", "Mother Mobile", "City", "Category",
	"Siblings", "Academic Average %", "Status", "Submitted At",
}

func exportRow(a *models.Admission) []interface{} {
	admissionNo := ""
	if a.AdmissionNo != nil {
		admissionNo = *a.AdmissionNo
	}
	return []interface{}{
		a.EnquiryNumber, admissionNo, a.StudentName, a.Class, a.Session, a.Gender, a.DateOfBirth,
		a.Father.Name, a.Father.Mobile, a.Mother.Name, a.Mother.Mobile, a.City, string(a.Category),
		len(a.Siblings), academicAverage(a.Academics), string(a.Status), a.CreatedAt.Format(exportDateLayout),
	}
}

func academicAverage(records []models.AcademicRecord) string {
	if len(records) == 0 {
		return ""
	}
	var sum float64
	for _, r := range records {
		sum += r.Percentage
	}
	return strconv.FormatFloat(sum/float64(len(records)), 'f', 2, 64)
}

// writeAdmissionsWorkbook renders admissions as a single sheet workbook.
func writeAdmissionsWorkbook(admissions []*models.Admission) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeaders))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "A", lastCol, exportColumnWidth); err != nil {
		return nil, err
	}

	for i, a := range admissions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := exportRow(a)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *admissionServiceImpl) ExportAdmissions(ctx context.Context, status string) (*dto.GeneratedDocument, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	admissions, _, err := s.admissions.List(ctx, repositories.AdmissionFilter{Status: filter})
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}

	data, err := writeAdmissionsWorkbook(admissions)
	if err != nil {
		s.logger.Error().Err(err).Str("stage", "export").Msg("Failed to build admissions workbook")
		return nil, apperrors.NewUpstreamError("failed to build spreadsheet", err)
	}

	label := "all"
	if filter != nil {
		label = string(*filter)
	}
	return &dto.GeneratedDocument{
		Filename:    fmt.Sprintf("admissions_%s_%s.xlsx", label, helpers.FileTimestamp(s.now())),
		ContentType: xlsxContentType,
		Data:        data,
	}, nil
}
