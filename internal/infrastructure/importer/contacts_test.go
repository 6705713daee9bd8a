package importer

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kesher-io/kesher/internal/application/crm"
	"github.com/kesher-io/kesher/internal/application/testutil"
	"github.com/kesher-io/kesher/internal/domain/contact"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func newTestImporter() (*ContactImporter, *testutil.MockContactRepository) {
	repo := testutil.NewMockContactRepository()
	svc := crm.NewContactService(repo, testutil.NewMockLogger())
	return NewContactImporter(svc, testutil.NewMockLogger()), repo
}

func outcomes(r *Report) map[int]string {
	m := make(map[int]string, len(r.Rows))
	for _, row := range r.Rows {
		m[row.Row] = row.Outcome
	}
	return m
}

func TestContactImporter_EnglishHeaders(t *testing.T) {
	imp, repo := newTestImporter()
	ctx := context.Background()

	existing, err := contact.NewContact("Noa", "", "noa@example.com", "", "website")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, existing))

	buf := buildWorkbook(t, "Sheet1", [][]any{
		{"First Name", "Last Name", "E-mail", "Phone", "Tags", "Ignored"},
		{"Dana", "Levi", "dana@example.com", "054-1234567", "pottery, weekend", "x"},
		{"Noa", "Katz", "NOA@example.com", "", "", ""},
		{"", "", "", "", "", ""},
		{"Bad", "Email", "not-an-email", "", "", ""},
		{"No", "Contact", "", "", "", ""},
		{"Dana", "Again", "dana@example.com", "", "", ""},
		{"", "Missing", "first@example.com", "", "", ""},
	})

	report, err := imp.Import(ctx, buf, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", report.Sheet)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 4, report.Skipped)
	assert.Equal(t, map[int]string{
		2: OutcomeCreated,
		3: OutcomeUpdated,
		5: OutcomeSkipped,
		6: OutcomeSkipped,
		7: OutcomeSkipped,
		8: OutcomeSkipped,
	}, outcomes(report))
	assert.Equal(t, "duplicate of row 2", report.Rows[4].Reason)
	assert.Equal(t, "email or phone is required", report.Rows[3].Reason)
	assert.Equal(t, "first name is required", report.Rows[5].Reason)

	dana, err := repo.GetByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	require.NotNil(t, dana)
	assert.Equal(t, "0541234567", dana.Phone())
	assert.Equal(t, "import", dana.Source())
	assert.Equal(t, []string{"pottery", "weekend"}, dana.Tags())

	noa, err := repo.GetByEmail(ctx, "noa@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Katz", noa.LastName())
}

func TestContactImporter_HebrewHeadersDryRun(t *testing.T) {
	imp, repo := newTestImporter()
	ctx := context.Background()

	buf := buildWorkbook(t, "אנשי קשר", [][]any{
		{"שם מלא", "טלפון", "מקור", "הערות"},
		{"Yael Mizrahi", "052-7654321", "facebook", "asked about evening classes"},
		{"Avi", "0501112222", "", ""},
	})

	report, err := imp.Import(ctx, buf, Options{Sheet: "אנשי קשר", DryRun: true, Source: "fair-2026"})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Created)

	found, err := repo.GetByPhone(ctx, "0527654321")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestContactImporter_ImportFile(t *testing.T) {
	imp, _ := newTestImporter()
	ctx := context.Background()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "Email"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Ori Ben David", "ori@example.com"}))
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	report, err := imp.ImportFile(ctx, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	_, err = imp.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.xlsx"), Options{})
	assert.Error(t, err)

	_, err = imp.ImportFile(ctx, path, Options{Sheet: "Nope"})
	assert.Error(t, err)
}

func TestMapHeader(t *testing.T) {
	_, err := mapHeader([]string{"Email", "Phone"})
	assert.Error(t, err)

	_, err = mapHeader([]string{"First Name", "City"})
	assert.Error(t, err)

	m, err := mapHeader([]string{"  FIRST   name ", "דוא\"ל", "email"})
	require.NoError(t, err)
	assert.Equal(t, 0, m[colFirstName])
	assert.Equal(t, 1, m[colEmail])

	row := m.extract([]string{"Shira"})
	assert.Equal(t, "Shira", row.FirstName)
	assert.Empty(t, row.Email)

	assert.Equal(t, []string{"a", "b", "c"}, splitTags(" a; b|c ,"))
	assert.Nil(t, splitTags(""))
}
