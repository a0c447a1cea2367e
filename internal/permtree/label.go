package permtree

import (
	"strings"

	"github.com/slsoft/permission-portal/internal/catalog"
)

// LabelForPermission picks the display label: the description part after
// " – " when the import set one, otherwise a humanized action code.
func LabelForPermission(p catalog.Permission, fallbackCode string) string {
	if ix := strings.Index(p.Description, " – "); ix > -1 {
		if label := strings.TrimSpace(p.Description[ix+len(" – "):]); label != "" {
			return label
		}
	}
	return HumanizeCode(fallbackCode)
}

// HumanizeCode renders an action code readable:
// "belegstatus_setzen", "BelegStatusSetzen" -> "Belegstatus setzen".
func HumanizeCode(code string) string {
	if code == "" {
		return ""
	}
	var b strings.Builder
	var prev rune
	for _, r := range code {
		switch {
		case r == '_' || r == '-' || r == '.':
			r = ' '
		case r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z':
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	s := strings.ToLower(strings.Join(strings.Fields(b.String()), " "))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
