package importer

import (
	"fmt"
	"strings"
)

type column int

const (
	colFirstName column = iota
	colLastName
	colFullName
	colEmail
	colPhone
	colSource
	colNotes
	colTags
)

var headerAliases = map[string]column{
	"first name": colFirstName,
	"firstname":  colFirstName,
	"first_name": colFirstName,
	"first":      colFirstName,
	"שם פרטי":    colFirstName,

	"last name": colLastName,
	"lastname":  colLastName,
	"last_name": colLastName,
	"surname":   colLastName,
	"שם משפחה":  colLastName,

	"name":      colFullName,
	"full name": colFullName,
	"full_name": colFullName,
	"שם":        colFullName,
	"שם מלא":    colFullName,

	"email":         colEmail,
	"e-mail":        colEmail,
	"email address": colEmail,
	"mail":          colEmail,
	"אימייל":        colEmail,
	"מייל":          colEmail,
	"דואל":          colEmail,
	"דוא\"ל":        colEmail,
	"דואר אלקטרוני": colEmail,

	"phone":     colPhone,
	"mobile":    colPhone,
	"telephone": colPhone,
	"cell":      colPhone,
	"טלפון":     colPhone,
	"נייד":      colPhone,
	"פלאפון":    colPhone,

	"source": colSource,
	"מקור":   colSource,

	"notes":   colNotes,
	"note":    colNotes,
	"comment": colNotes,
	"הערות":   colNotes,
	"הערה":    colNotes,

	"tags":  colTags,
	"tag":   colTags,
	"תגיות": colTags,
}

// headerMap maps a known column to its cell index.
type headerMap map[column]int

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), " ")
}

// mapHeader resolves the header row. Unknown columns are ignored; the first
// occurrence of a repeated column wins.
func mapHeader(header []string) (headerMap, error) {
	m := make(headerMap)
	for idx, h := range header {
		col, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := m[col]; !dup {
			m[col] = idx
		}
	}

	_, hasFirst := m[colFirstName]
	_, hasFull := m[colFullName]
	if !hasFirst && !hasFull {
		return nil, fmt.Errorf("header row needs a first name or full name column")
	}
	_, hasEmail := m[colEmail]
	_, hasPhone := m[colPhone]
	if !hasEmail && !hasPhone {
		return nil, fmt.Errorf("header row needs an email or phone column")
	}
	return m, nil
}

func (m headerMap) cell(cells []string, col column) string {
	idx, ok := m[col]
	if !ok || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func (m headerMap) extract(cells []string) contactRow {
	row := contactRow{
		FirstName: m.cell(cells, colFirstName),
		LastName:  m.cell(cells, colLastName),
		Email:     m.cell(cells, colEmail),
		Phone:     m.cell(cells, colPhone),
		Source:    m.cell(cells, colSource),
		Notes:     m.cell(cells, colNotes),
		Tags:      splitTags(m.cell(cells, colTags)),
	}
	if row.FirstName == "" {
		first, last, _ := strings.Cut(m.cell(cells, colFullName), " ")
		row.FirstName = strings.TrimSpace(first)
		if row.LastName == "" {
			row.LastName = strings.TrimSpace(last)
		}
	}
	return row
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '|' })
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
