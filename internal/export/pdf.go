package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/slsoft/permission-portal/internal/permtree"
)

// actionLabels are the print labels. They deliberately differ from the matrix
// column titles for access, create and delete.
var actionLabels = map[string]string{
	"access": "Erlaubt",
	"read":   "Lesen",
	"edit":   "Bearbeiten",
	"create": "Anlegen",
	"copy":   "Kopieren",
	"delete": "Entfernen",
	"print":  "Drucken",
}

var standardOrder = []string{"access", "read", "edit", "create", "copy", "delete", "print"}

const (
	pageMarginLeft  = 17.0
	pageMarginTop   = 25.0
	pageMarginRight = 17.0
	labelColWidth   = 50.0
)

type renderer struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	doc   *Document
	names *RoleNames
}

// RenderPDF lays the shaped document out as an A4 PDF and returns the bytes.
func RenderPDF(doc *Document, names *RoleNames) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginLeft, pageMarginTop, pageMarginRight)
	pdf.SetAutoPageBreak(true, 20)

	r := &renderer{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		doc:   doc,
		names: names,
	}

	pdf.SetHeaderFunc(r.header)
	pdf.SetFooterFunc(r.footer)
	pdf.AliasNbPages("")
	pdf.AddPage()

	r.summaryBox()
	for _, section := range doc.Sections {
		r.section(section)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *renderer) header() {
	pdf := r.pdf
	width, _ := pdf.GetPageSize()
	usable := width - pageMarginLeft - pageMarginRight

	pdf.SetY(10)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(usable/2, 5, r.tr(r.doc.AppName), "", 0, "L", false, 0, "")
	pdf.CellFormat(usable/2, 5, time.Now().Format("02.01.2006 15:04"), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 15)
	pdf.SetTextColor(17, 24, 39)
	pdf.CellFormat(usable, 8, r.tr(r.doc.Title), "", 1, "L", false, 0, "")

	if r.doc.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(51, 65, 85)
		pdf.CellFormat(usable, 6, r.tr(r.doc.Subtitle), "", 1, "L", false, 0, "")
	}

	pdf.SetDrawColor(229, 231, 235)
	y := pdf.GetY() + 1
	pdf.Line(pageMarginLeft, y, width-pageMarginRight, y)
	pdf.SetY(y + 3)
}

func (r *renderer) footer() {
	pdf := r.pdf
	pdf.SetY(-15)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(148, 163, 184)
	pdf.CellFormat(0, 5, fmt.Sprintf("Seite %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
}

func (r *renderer) summaryBox() {
	pdf := r.pdf
	width, _ := pdf.GetPageSize()
	usable := width - pageMarginLeft - pageMarginRight

	y := pdf.GetY()
	pdf.SetFillColor(248, 250, 252)
	pdf.SetDrawColor(229, 231, 235)
	pdf.RoundedRect(pageMarginLeft, y, usable, 12, 2, "1234", "FD")

	pdf.SetXY(pageMarginLeft+4, y+3.5)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(usable/2, 5, r.tr(fmt.Sprintf("Rollen: %d", r.doc.RoleCount)), "", 0, "L", false, 0, "")
	pdf.CellFormat(usable/2-8, 5, r.tr(fmt.Sprintf("Berechtigungen: %d", r.doc.PermissionCount)), "", 1, "L", false, 0, "")
	pdf.SetY(y + 16)
}

func (r *renderer) section(section Section) {
	pdf := r.pdf

	r.ensureSpace(20)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(0, 7, r.tr(section.Category), "", 1, "L", false, 0, "")
	r.divider(241, 245, 249)

	for _, group := range section.Groups {
		r.functionGroup(group)
	}
}

func (r *renderer) functionGroup(group *permtree.FunctionGroup) {
	pdf := r.pdf
	r.ensureSpace(16)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(17, 24, 39)
	pdf.CellFormat(0, 6, r.tr(group.Title), "", 1, "L", false, 0, "")

	if group.OnlyAccess() {
		perm := group.Actions["access"]
		r.labelRow(actionLabels["access"], r.joinedNames(perm.ID))
		if r.doc.Variant == VariantAdmin {
			r.keyRow(perm.Key)
		}
	} else {
		for _, code := range standardOrder {
			perm, ok := group.Actions[code]
			if !ok {
				continue
			}
			r.labelRow(actionLabels[code], r.joinedNames(perm.ID))
			if r.doc.Variant == VariantAdmin {
				r.keyRow(perm.Key)
			}
		}

		if extras := group.ExtraCodes(); len(extras) > 0 {
			r.ensureSpace(10)
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(51, 65, 85)
			pdf.CellFormat(0, 5, r.tr("Weitere Aktionen"), "", 1, "L", false, 0, "")

			for _, code := range extras {
				perm := group.Extras[code]
				label := permtree.LabelForPermission(perm, code)
				if r.doc.Variant == VariantAdmin {
					label = fmt.Sprintf("%s (%s)", label, perm.Key)
				}
				r.bullet(fmt.Sprintf("%s: %s", label, r.joinedNames(perm.ID)))
			}
		}
	}

	pdf.Ln(1)
	r.divider(248, 250, 252)
}

func (r *renderer) joinedNames(permissionID string) string {
	names := r.names.For(permissionID)
	if len(names) == 0 {
		return "—"
	}
	return strings.Join(names, ", ")
}

func (r *renderer) labelRow(label, value string) {
	pdf := r.pdf
	r.ensureSpace(6)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(labelColWidth, 5.5, r.tr(label), "", 0, "L", false, 0, "")

	width, _ := pdf.GetPageSize()
	pdf.MultiCell(width-pageMarginLeft-pageMarginRight-labelColWidth, 5.5, r.tr(value), "", "L", false)
}

func (r *renderer) keyRow(key string) {
	pdf := r.pdf
	r.ensureSpace(5)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(labelColWidth, 4.5, "Key", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 4.5, r.tr(key), "", 1, "L", false, 0, "")
}

func (r *renderer) bullet(text string) {
	pdf := r.pdf
	r.ensureSpace(6)
	pdf.SetFillColor(100, 116, 139)
	pdf.Circle(pageMarginLeft+4, pdf.GetY()+2.6, 0.7, "F")

	pdf.SetX(pageMarginLeft + 8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(15, 23, 42)
	width, _ := pdf.GetPageSize()
	pdf.MultiCell(width-pageMarginLeft-pageMarginRight-8, 5, r.tr(text), "", "L", false)
}

func (r *renderer) divider(red, green, blue int) {
	pdf := r.pdf
	width, _ := pdf.GetPageSize()
	pdf.SetDrawColor(red, green, blue)
	y := pdf.GetY() + 0.5
	pdf.Line(pageMarginLeft, y, width-pageMarginRight, y)
	pdf.SetY(y + 2.5)
}

func (r *renderer) ensureSpace(need float64) {
	pdf := r.pdf
	_, height := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+need > height-bottom {
		pdf.AddPage()
	}
}
