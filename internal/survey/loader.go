package survey

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook layout. Rows 1-4 describe the profile columns, row 5 is the
// header, fields start at row 6. Columns 1-10 describe the field, one
// extra column per profile.
const (
	rowCommunity    = 0
	rowProfileLabel = 1
	rowProfileCode  = 2
	rowContactType  = 3
	rowFirstField   = 5

	colLabel         = 0
	colPublicMini    = 1
	colPublicDefault = 2
	colPublicMaxi    = 3
	colValidate      = 4
	colMessage       = 5
	colOrganisation  = 6
	colName          = 7
	colType          = 8
	colFirstProfile  = 10
)

// Cell fill colours carrying the per-profile requirement code.
var fillCodes = map[string]string{
	"32CD32": CodeMandatory,
	"FFA500": CodeOptional,
	"C9211E": CodeNotApplicable,
}

// fieldTypes is the closed set of type tokens the form builder understands.
var fieldTypes = map[string]bool{
	"boolean": true, "boolink": true, "string": true,
	"textarea": true, "textarea300": true, "photo": true,
	"email": true, "tel": true, "password": true,
	"postcode": true, "url": true,
	"list": true, "listfree": true, "multi": true,
	"multifree": true, "multidual": true, "multiopt": true,
	"long": true, "country": true,
}

// Load parses the survey workbook at path and builds the meta-model.
func Load(path string) (*Model, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open survey workbook: %w", err)
	}
	defer f.Close()
	return parse(f)
}

// LoadReader parses a survey workbook from an in-memory stream.
func LoadReader(r io.Reader) (*Model, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open survey workbook: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(f *excelize.File) (*Model, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("survey workbook has no sheet")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read survey sheet %q: %w", sheet, err)
	}
	if len(rows) <= rowFirstField {
		return nil, fmt.Errorf("survey sheet %q: too few rows (%d)", sheet, len(rows))
	}

	profiles, err := parseProfiles(rows)
	if err != nil {
		return nil, err
	}
	fields, err := parseFields(rows)
	if err != nil {
		return nil, err
	}
	if err := parseGroups(f, sheet, rows, profiles, fields); err != nil {
		return nil, err
	}

	model := &Model{Fields: fields, Profiles: profiles}
	if err := model.validate(); err != nil {
		return nil, err
	}
	slog.Info("survey model loaded",
		"sheet", sheet,
		"profiles", len(model.Profiles),
		"fields", len(model.Fields))
	return model, nil
}

// parseProfiles reads the four header rows. Blank community and contact
// type cells inherit the value of the column to their left.
func parseProfiles(rows [][]string) ([]*Profile, error) {
	var (
		profiles    []*Profile
		community   string
		contactType string
	)
	for col := colFirstProfile; ; col++ {
		label := cell(rows, rowProfileLabel, col)
		if label == "" {
			break
		}
		code := cell(rows, rowProfileCode, col)
		if !profileCodes[code] {
			return nil, fmt.Errorf("column %d: unknown profile code %q", col+1, code)
		}
		if raw := cell(rows, rowCommunity, col); raw != "" {
			name, ok := communityLabels[raw]
			if !ok {
				return nil, fmt.Errorf("column %d: unknown community %q", col+1, raw)
			}
			community = name
		}
		if community == "" {
			return nil, fmt.Errorf("column %d: profile %q has no community", col+1, code)
		}
		if raw := cell(rows, rowContactType, col); raw != "" {
			contactType = strings.ToUpper(raw)
		}
		profiles = append(profiles, &Profile{
			ID:          fmt.Sprintf("P%03d", len(profiles)+1),
			Code:        code,
			Description: label,
			Community:   community,
			ContactType: contactType,
		})
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("survey workbook declares no profile")
	}
	return profiles, nil
}

// parseFields assigns sequential F%03d ids to the non-title field rows.
func parseFields(rows [][]string) (map[string]*Field, error) {
	fields := make(map[string]*Field)
	seen := make(map[string]string)
	seq := 0
	for row := rowFirstField; row < len(rows); row++ {
		name := cell(rows, row, colName)
		typ := cell(rows, row, colType)
		if typ == "title" || name == "" {
			continue
		}
		if base, _ := SplitType(typ); !fieldTypes[base] {
			return nil, fmt.Errorf("row %d: field %q has unknown type %q", row+1, name, typ)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("row %d: field name %q already used by %s", row+1, name, prev)
		}
		seq++
		field := &Field{
			ID:              fmt.Sprintf("F%03d", seq),
			Name:            name,
			Type:            typ,
			Description:     cell(rows, row, colLabel),
			UpperMessage:    cell(rows, row, colMessage),
			PublicMini:      cell(rows, row, colPublicMini) != "",
			PublicDefault:   cell(rows, row, colPublicDefault) != "",
			PublicMaxi:      cell(rows, row, colPublicMaxi) != "",
			ValidateChanges: cell(rows, row, colValidate) != "",
			IsOrganisation:  cell(rows, row, colOrganisation) != "",
		}
		fields[field.ID] = field
		seen[name] = field.ID
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("survey workbook declares no field")
	}
	return fields, nil
}

// parseGroups walks the field rows again, opening a group per title row
// and appending each field to every profile whose cell carries a
// mandatory or optional fill colour.
func parseGroups(f *excelize.File, sheet string, rows [][]string, profiles []*Profile, fields map[string]*Field) error {
	seq := 0
	open := false
	for row := rowFirstField; row < len(rows); row++ {
		name := cell(rows, row, colName)
		typ := cell(rows, row, colType)
		if typ == "title" {
			label := cell(rows, row, colLabel)
			for _, p := range profiles {
				p.Groups = append(p.Groups, Group{Label: label})
			}
			open = true
			continue
		}
		if name == "" {
			continue
		}
		seq++
		if !open {
			return fmt.Errorf("row %d: field %q appears before the first title row", row+1, name)
		}
		field := fields[fmt.Sprintf("F%03d", seq)]
		for i, p := range profiles {
			code, err := requirementCode(f, sheet, row, colFirstProfile+i)
			if err != nil {
				return err
			}
			if code != CodeMandatory && code != CodeOptional {
				continue
			}
			last := len(p.Groups) - 1
			p.Groups[last].Fields = append(p.Groups[last].Fields, GroupField{Field: field, Code: code})
		}
	}
	for _, p := range profiles {
		p.Groups = pruneEmptyGroups(p.Groups)
	}
	return nil
}

// requirementCode maps the fill colour of a profile cell to its code.
// Cells without a recognised fill are treated as not applicable.
func requirementCode(f *excelize.File, sheet string, row, col int) (string, error) {
	cellName, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "", err
	}
	styleID, err := f.GetCellStyle(sheet, cellName)
	if err != nil {
		return "", fmt.Errorf("cell %s: read style: %w", cellName, err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return "", fmt.Errorf("cell %s: resolve style: %w", cellName, err)
	}
	if style == nil || len(style.Fill.Color) == 0 {
		return CodeUnknown, nil
	}
	rgb := strings.ToUpper(style.Fill.Color[0])
	if len(rgb) == 8 {
		// ARGB, drop the alpha byte.
		rgb = rgb[2:]
	}
	if code, ok := fillCodes[rgb]; ok {
		return code, nil
	}
	return CodeUnknown, nil
}

func pruneEmptyGroups(groups []Group) []Group {
	out := groups[:0]
	for _, g := range groups {
		if len(g.Fields) > 0 {
			out = append(out, g)
		}
	}
	return out
}

func cell(rows [][]string, row, col int) string {
	if row >= len(rows) || col >= len(rows[row]) {
		return ""
	}
	return strings.TrimSpace(rows[row][col])
}
