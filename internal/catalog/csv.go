package catalog

import (
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/slsoft/permission-portal/internal"
)

// The upload is semicolon separated with this exact header (order-independent):
// Gruppe;SubGruppe1..SubGruppe5;Berechtigungsname;Erlaubt;Lesen;Bearbeiten;Hinzufügen;Kopieren;Löschen;Drucken;Weitere

const separator = ";"

var requiredColumns = []string{
	"Gruppe", "SubGruppe1", "SubGruppe2", "SubGruppe3", "SubGruppe4", "SubGruppe5",
	"Berechtigungsname",
	"Erlaubt", "Lesen", "Bearbeiten", "Hinzufügen", "Kopieren", "Löschen", "Drucken",
	"Weitere",
}

// StandardActions are the seven fixed action codes, each bound to one CSV
// column. Order matters for display (access first).
var StandardActions = []struct {
	Column string
	Code   string
}{
	{"Erlaubt", "access"},
	{"Lesen", "read"},
	{"Bearbeiten", "edit"},
	{"Hinzufügen", "create"},
	{"Kopieren", "copy"},
	{"Löschen", "delete"},
	{"Drucken", "print"},
}

var truthyTokens = map[string]struct{}{
	"1": {}, "true": {}, "wahr": {}, "ja": {}, "j": {}, "x": {}, "y": {}, "yes": {},
}

var stripDiacritics = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeToken lowercases, strips diacritics via NFKD decomposition and
// drops every character outside [a-z0-9]. Idempotent; "Bestände" and
// "Bestande" map to the same token.
func NormalizeToken(s string) string {
	decomposed, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		decomposed = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(decomposed) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cleanLabel turns NBSP and any whitespace run into single spaces and trims.
func cleanLabel(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

func truthy(v string) bool {
	_, ok := truthyTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

func buildCategoryPath(group string, subs []string) []string {
	// columns are authoritative, never split on slashes here
	parts := make([]string, 0, len(subs)+1)
	if g := cleanLabel(group); g != "" {
		parts = append(parts, g)
	}
	for _, s := range subs {
		if c := cleanLabel(s); c != "" {
			parts = append(parts, c)
		}
	}
	return parts
}

func buildBaseKey(group string, subs []string, name string) string {
	parts := make([]string, 0, len(subs)+2)
	if t := NormalizeToken(group); t != "" {
		parts = append(parts, t)
	}
	for _, s := range subs {
		if t := NormalizeToken(s); t != "" {
			parts = append(parts, t)
		}
	}
	if t := NormalizeToken(name); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, ".")
}

// ParseCSV canonicalizes one uploaded file into deduplicated permission rows.
// Structural problems (missing column, no data) abort before anything is
// persisted.
func ParseCSV(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, internal.NewInternalError("failed to read upload", err)
	}

	text := strings.TrimPrefix(string(raw), "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, internal.NewEmptyInputError()
	}

	header := strings.Split(lines[0], separator)
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := idx[required]; !ok {
			return nil, internal.NewSchemaError(required)
		}
	}

	col := func(cols []string, name string) string {
		i := idx[name]
		if i >= len(cols) {
			return ""
		}
		return cols[i]
	}

	var pending []Row
	for _, line := range lines[1:] {
		cols := strings.Split(line, separator)
		if len(cols) < len(header) {
			continue
		}

		group := col(cols, "Gruppe")
		subs := []string{
			col(cols, "SubGruppe1"), col(cols, "SubGruppe2"), col(cols, "SubGruppe3"),
			col(cols, "SubGruppe4"), col(cols, "SubGruppe5"),
		}
		name := col(cols, "Berechtigungsname")

		categoryPath := buildCategoryPath(group, subs)
		category := strings.Join(categoryPath, " / ")
		baseKey := buildBaseKey(group, subs, name)

		functionTitle := strings.TrimSpace(name)
		descriptionPrefix := ""
		if functionTitle != "" {
			descriptionPrefix = functionTitle + " – "
		}

		for _, st := range StandardActions {
			if !truthy(col(cols, st.Column)) {
				continue
			}
			pending = append(pending, Row{
				Key:          baseKey + "." + st.Code,
				Category:     category,
				CategoryPath: categoryPath,
				Description:  descriptionPrefix + st.Column,
				BaseKey:      baseKey,
				ActionCode:   st.Code,
			})
		}

		// extras: comma separated free text, deduplicated per row by
		// canonical action code, later label wins
		if extra := col(cols, "Weitere"); strings.TrimSpace(extra) != "" {
			perRow := make(map[string]string)
			var order []string
			for _, part := range strings.Split(extra, ",") {
				label := cleanLabel(part)
				if label == "" {
					continue
				}
				code := NormalizeToken(label)
				if code == "" {
					continue
				}
				if _, seen := perRow[code]; !seen {
					order = append(order, code)
				}
				perRow[code] = label
			}
			for _, code := range order {
				pending = append(pending, Row{
					Key:          baseKey + "." + code,
					Category:     category,
					CategoryPath: categoryPath,
					Description:  descriptionPrefix + perRow[code],
					BaseKey:      baseKey,
					ActionCode:   code,
				})
			}
		}
	}

	// file-wide dedup: same key, later row wins
	byKey := make(map[string]int, len(pending))
	rows := make([]Row, 0, len(pending))
	for _, row := range pending {
		if at, seen := byKey[row.Key]; seen {
			rows[at] = row
			continue
		}
		byKey[row.Key] = len(rows)
		rows = append(rows, row)
	}
	return rows, nil
}
