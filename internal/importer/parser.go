package importer

import (
	"fmt"
	"strings"
)

// Column keys recognized in the header row.
const (
	colName    = "full_name"
	colPhone   = "phone"
	colCity    = "city"
	colZone    = "zone"
	colAddress = "address"
	colNotes   = "notes"
)

// headerSynonyms maps normalized header labels (lowercase, trimmed) to
// canonical column keys. French and English spellings are accepted.
var headerSynonyms = map[string]string{
	"nom":             colName,
	"nom complet":     colName,
	"nom et prenom":   colName,
	"nom et prénom":   colName,
	"client":          colName,
	"name":            colName,
	"full name":       colName,
	"fullname":        colName,
	"telephone":       colPhone,
	"téléphone":       colPhone,
	"tel":             colPhone,
	"tél":             colPhone,
	"gsm":             colPhone,
	"phone":           colPhone,
	"phone number":    colPhone,
	"mobile":          colPhone,
	"ville":           colCity,
	"city":            colCity,
	"zone":            colZone,
	"secteur":         colZone,
	"quartier":        colZone,
	"area":            colZone,
	"adresse":         colAddress,
	"address":         colAddress,
	"notes":           colNotes,
	"note":            colNotes,
	"remarque":        colNotes,
	"remarques":       colNotes,
	"commentaire":     colNotes,
	"commentaires":    colNotes,
	"comments":        colNotes,
}

// ParsedRow is a validated client record extracted from the file.
type ParsedRow struct {
	Row      int // 1-based line number in the source file
	FullName string
	Phone    string // normalized
	City     string
	Zone     string
	Address  string
	Notes    string
}

// InvalidRow records a rejected line with a human-readable reason.
type InvalidRow struct {
	Row    int
	Reason string
}

// DuplicateGroup lists the rows within the file sharing one phone number.
type DuplicateGroup struct {
	Phone string
	Rows  []int
}

// ParseResult is the outcome of the pure parse stage.
type ParseResult struct {
	Separator  rune
	Valid      []ParsedRow
	Invalid    []InvalidRow
	Duplicates []DuplicateGroup
	TotalRows  int // data rows, excluding the header
}

// DetectSeparator chooses among ';', ',' and '\t' by counting quote-aware
// occurrences in the header line. Tab wins only when its count is strictly
// greater than both others; semicolon beats comma on ties.
func DetectSeparator(header string) rune {
	var semis, commas, tabs int
	inQuotes := false
	for _, r := range header {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == ';':
			semis++
		case r == ',':
			commas++
		case r == '\t':
			tabs++
		}
	}
	if tabs > semis && tabs > commas {
		return '\t'
	}
	if semis >= commas {
		return ';'
	}
	return ','
}

// splitFields splits a line on sep honoring double quotes. A doubled quote
// inside a quoted field is an escaped literal quote.
func splitFields(line string, sep rune) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == sep && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}

// mapHeader resolves each header cell to a canonical column key. Unknown
// columns are ignored. Fails when no name or no phone column is present.
func mapHeader(cells []string) (map[int]string, error) {
	mapping := make(map[int]string, len(cells))
	seen := make(map[string]bool, len(cells))
	for i, cell := range cells {
		key, ok := headerSynonyms[strings.ToLower(strings.TrimSpace(cell))]
		if !ok || seen[key] {
			continue
		}
		mapping[i] = key
		seen[key] = true
	}
	if !seen[colName] {
		return nil, fmt.Errorf("no name column found in header")
	}
	if !seen[colPhone] {
		return nil, fmt.Errorf("no phone column found in header")
	}
	return mapping, nil
}

// Parse runs the pure parse stage over the raw file contents. It never
// touches the database; validation is per row and the whole file is only
// rejected when the header is unusable.
func Parse(data string) (*ParseResult, error) {
	data = strings.TrimPrefix(data, "\ufeff")
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	sep := DetectSeparator(lines[0])
	mapping, err := mapHeader(splitFields(lines[0], sep))
	if err != nil {
		return nil, err
	}

	res := &ParseResult{Separator: sep}
	byPhone := make(map[string][]int)

	for i, line := range lines[1:] {
		rowNum := i + 2 // 1-based, header is row 1
		if strings.TrimSpace(line) == "" {
			continue
		}
		res.TotalRows++

		cells := splitFields(line, sep)
		row := ParsedRow{Row: rowNum}
		for idx, key := range mapping {
			if idx >= len(cells) {
				continue
			}
			val := cells[idx]
			switch key {
			case colName:
				row.FullName = val
			case colPhone:
				row.Phone = val
			case colCity:
				row.City = val
			case colZone:
				row.Zone = val
			case colAddress:
				row.Address = val
			case colNotes:
				row.Notes = val
			}
		}

		if row.FullName == "" {
			res.Invalid = append(res.Invalid, InvalidRow{Row: rowNum, Reason: "missing name"})
			continue
		}
		if row.Phone == "" {
			res.Invalid = append(res.Invalid, InvalidRow{Row: rowNum, Reason: "missing phone"})
			continue
		}
		normalized, ok := NormalizePhone(row.Phone)
		if !ok {
			res.Invalid = append(res.Invalid, InvalidRow{Row: rowNum, Reason: fmt.Sprintf("invalid phone %q", row.Phone)})
			continue
		}
		row.Phone = normalized

		byPhone[normalized] = append(byPhone[normalized], rowNum)
		res.Valid = append(res.Valid, row)
	}

	for phone, rows := range byPhone {
		if len(rows) > 1 {
			res.Duplicates = append(res.Duplicates, DuplicateGroup{Phone: phone, Rows: rows})
		}
	}

	return res, nil
}

func splitLines(data string) []string {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")
	lines := strings.Split(data, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
