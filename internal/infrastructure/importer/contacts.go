// Package importer loads contacts from spreadsheets.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"github.com/kesher-io/kesher/internal/application/crm"
	"github.com/kesher-io/kesher/internal/domain/contact"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

// ContactUpserter is satisfied by crm.ContactService.
type ContactUpserter interface {
	Upsert(ctx context.Context, cmd crm.ContactCommand, dryRun bool) (*contact.Contact, crm.UpsertOutcome, error)
}

type Options struct {
	Sheet  string
	DryRun bool
	Source string
}

const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
)

type RowResult struct {
	Row     int    `json:"row"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type Report struct {
	Sheet   string      `json:"sheet"`
	DryRun  bool        `json:"dry_run"`
	Created int         `json:"created"`
	Updated int         `json:"updated"`
	Skipped int         `json:"skipped"`
	Rows    []RowResult `json:"rows"`
}

func (r *Report) add(res RowResult) {
	switch res.Outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	default:
		r.Skipped++
	}
	r.Rows = append(r.Rows, res)
}

// contactRow is one spreadsheet row after header mapping.
type contactRow struct {
	FirstName string   `validate:"required,max=100"`
	LastName  string   `validate:"max=100"`
	Email     string   `validate:"required_without=Phone,omitempty,email,max=255"`
	Phone     string   `validate:"required_without=Email,omitempty,max=32"`
	Source    string   `validate:"max=50"`
	Notes     string   `validate:"max=2000"`
	Tags      []string `validate:"max=20,dive,max=50"`
}

type ContactImporter struct {
	contacts ContactUpserter
	validate *validator.Validate
	logger   logger.Interface
}

func NewContactImporter(contacts ContactUpserter, logger logger.Interface) *ContactImporter {
	return &ContactImporter{
		contacts: contacts,
		validate: validator.New(),
		logger:   logger,
	}
}

func (i *ContactImporter) ImportFile(ctx context.Context, path string, opts Options) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return i.importWorkbook(ctx, f, opts)
}

func (i *ContactImporter) Import(ctx context.Context, r io.Reader, opts Options) (*Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer f.Close()
	return i.importWorkbook(ctx, f, opts)
}

func (i *ContactImporter) importWorkbook(ctx context.Context, f *excelize.File, opts Options) (*Report, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = "import"
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	report := &Report{Sheet: sheet, DryRun: opts.DryRun, Rows: []RowResult{}}
	seen := make(map[string]int)

	for idx, cells := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rowNum := idx + 2
		if isBlank(cells) {
			continue
		}

		row := columns.extract(cells)
		if row.Source == "" {
			row.Source = source
		}
		res := RowResult{Row: rowNum, Email: row.Email, Phone: row.Phone}

		if err := i.validate.Struct(row); err != nil {
			res.Outcome = OutcomeSkipped
			res.Reason = describeValidation(err)
			report.add(res)
			continue
		}

		key := dedupeKey(row)
		if first, ok := seen[key]; ok {
			res.Outcome = OutcomeSkipped
			res.Reason = fmt.Sprintf("duplicate of row %d", first)
			report.add(res)
			continue
		}
		seen[key] = rowNum

		_, outcome, err := i.contacts.Upsert(ctx, crm.ContactCommand{
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email,
			Phone:     row.Phone,
			Source:    row.Source,
			Notes:     row.Notes,
			Tags:      row.Tags,
		}, opts.DryRun)
		if err != nil {
			if apperrors.IsValidationError(err) || apperrors.IsConflictError(err) {
				res.Outcome = OutcomeSkipped
				res.Reason = errorMessage(err)
				report.add(res)
				continue
			}
			return report, fmt.Errorf("row %d: %w", rowNum, err)
		}
		res.Outcome = string(outcome)
		report.add(res)
	}

	i.logger.Infow("contact import finished",
		"sheet", sheet,
		"dry_run", opts.DryRun,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
	)
	return report, nil
}

func dedupeKey(row contactRow) string {
	if email, err := contact.NormalizeEmail(row.Email); err == nil && email != "" {
		return "e:" + email
	}
	return "p:" + contact.NormalizePhone(row.Phone)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func errorMessage(err error) string {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		if appErr.Details != "" {
			return appErr.Message + ": " + appErr.Details
		}
		return appErr.Message
	}
	return err.Error()
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	var parts []string
	add := func(msg string) {
		for _, p := range parts {
			if p == msg {
				return
			}
		}
		parts = append(parts, msg)
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			add(fmt.Sprintf("%s is required", fieldLabel(fe.Field())))
		case "required_without":
			add("email or phone is required")
		case "email":
			add(fmt.Sprintf("invalid email %q", fe.Value()))
		case "max":
			add(fmt.Sprintf("%s is too long", fieldLabel(fe.Field())))
		default:
			add(fmt.Sprintf("%s failed %s", fieldLabel(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func fieldLabel(field string) string {
	switch field {
	case "FirstName":
		return "first name"
	case "LastName":
		return "last name"
	default:
		return strings.ToLower(field)
	}
}
