package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/formgroup"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

// decodeAdmissionFields maps the flat form values onto the scalar admission fields, trimmed.
func decodeAdmissionFields(values map[string][]string) (*dto.AdmissionFormFields, error) {
	var fields dto.AdmissionFormFields
	if err := binding.MapFormWithTag(&fields, values, "form"); err != nil {
		return nil, err
	}
	validation.TrimStrings(&fields)
	return &fields, nil
}

// parseFlag reads an HTML checkbox or boolean-ish value.
func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "y", "on":
		return true
	}
	return false
}

// parseSiblings reads siblings[i].{name,age,school}. Entries without a name are dropped.
func parseSiblings(values map[string][]string) []models.Sibling {
	groups := formgroup.Parse(values, "siblings")
	out := make([]models.Sibling, 0, len(groups))
	for _, g := range groups {
		if g.Get("name") == "" {
			continue
		}
		out = append(out, models.Sibling{
			Name:   g.Get("name"),
			Age:    g.Get("age"),
			School: g.Get("school"),
		})
	}
	return out
}

// parseAcademics reads academics[i].{subject,maxMarks,marksObtained,remarks}.
// Entries with a blank subject, unparsable marks or a non-positive maximum are dropped.
func parseAcademics(values map[string][]string) []models.AcademicRecord {
	groups := formgroup.Parse(values, "academics")
	out := make([]models.AcademicRecord, 0, len(groups))
	for _, g := range groups {
		subject := g.Get("subject")
		if subject == "" {
			continue
		}
		maxMarks, err := strconv.ParseFloat(g.Get("maxMarks"), 64)
		if err != nil || math.IsNaN(maxMarks) || math.IsInf(maxMarks, 0) || maxMarks <= 0 {
			continue
		}
		obtained, err := strconv.ParseFloat(g.Get("marksObtained"), 64)
		if err != nil || math.IsNaN(obtained) || math.IsInf(obtained, 0) {
			continue
		}
		out = append(out, models.AcademicRecord{
			Subject:       subject,
			MaxMarks:      maxMarks,
			MarksObtained: obtained,
			Percentage:    Percentage(obtained, maxMarks),
			Remarks:       g.Get("remarks"),
		})
	}
	return out
}

// Percentage returns obtained/maxMarks*100 rounded to two decimals.
func Percentage(obtained, maxMarks float64) float64 {
	return math.Round(obtained/maxMarks*100*100) / 100
}

// warnOnGroupGaps logs repeated-group entries that parsing ignores because an earlier index is missing.
func warnOnGroupGaps(log zerolog.Logger, values map[string][]string) {
	for _, prefix := range []string{"siblings", "academics"} {
		indices := formgroup.Indices(values, prefix)
		for i, idx := range indices {
			if idx != i {
				log.Warn().
					Str("group", prefix).
					Int("missingIndex", i).
					Ints("ignored", indices[i:]).
					Msg("Repeated form group has a gap, later entries ignored")
				break
			}
		}
	}
}

// buildAdmission assembles the admission record from validated fields.
func buildAdmission(f *dto.AdmissionFormFields, values map[string][]string) *models.Admission {
	return &models.Admission{
		EnquiryNumber:      f.EnquiryNumber,
		StudentName:        f.StudentName,
		Class:              f.Class,
		Session:            f.Session,
		Gender:             f.Gender,
		DateOfBirth:        f.DateOfBirth,
		DateOfBirthInWords: f.DateOfBirthInWords,
		BloodGroup:         f.BloodGroup,
		Father: models.ParentDetails{
			Name:          f.FatherName,
			Occupation:    f.FatherOccupation,
			Qualification: f.FatherQualification,
			Mobile:        f.FatherMobile,
			Email:         f.FatherEmail,
		},
		Mother: models.ParentDetails{
			Name:          f.MotherName,
			Occupation:    f.MotherOccupation,
			Qualification: f.MotherQualification,
			Mobile:        f.MotherMobile,
			Email:         f.MotherEmail,
		},
		ResidentialAddress: f.ResidentialAddress,
		PermanentAddress:   f.PermanentAddress,
		City:               f.City,
		State:              f.State,
		PinCode:            f.PinCode,
		PreviousSchool:     f.PreviousSchool,
		PreviousClass:      f.PreviousClass,
		PreviousBoard:      f.PreviousBoard,
		IsSingleGirlChild:  parseFlag(f.IsSingleGirlChild),
		IsSpeciallyAbled:   parseFlag(f.IsSpeciallyAbled),
		IsEWS:              parseFlag(f.IsEWS),
		Category:           models.Category(f.Category),
		AadharNo:           f.AadharNo,
		Siblings:           parseSiblings(values),
		Academics:          parseAcademics(values),
		Status:             models.StatusPending,
	}
}
