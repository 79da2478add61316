package receipt

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"pdv/m/domain"
)

const margin = 15.0

var colWidths = [4]float64{80, 20, 25, 35}

// Render draws the receipt for sale on a single A4 page.
func Render(sale domain.SaleDetail) ([]byte, error) {
	doc, err := Layout(sale)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(sale.CreatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(doc.SaleLine, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	y := margin

	separator := func() {
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(margin, y, pageW-margin, y)
		y += 8
	}

	pdf.SetFont("Helvetica", "B", 20)
	centered(pdf, tr(doc.Title), pageW/2, y)
	y += 10

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(margin, y, tr(doc.SaleLine))
	pdf.Text(pageW/2, y, tr(doc.DateLine))
	y += 8
	separator()

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(margin, y, "DADOS DO CLIENTE")
	y += 6
	pdf.SetFont("Helvetica", "", 9)
	for i, line := range doc.Customer {
		pdf.Text(margin, y, tr(line))
		if i == len(doc.Customer)-1 {
			y += 8
		} else {
			y += 5
		}
	}
	separator()

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(margin, y, "ITENS DA VENDA")
	y += 8

	var cols [4]float64
	x := margin
	for i, w := range colWidths {
		cols[i] = x
		x += w
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(margin, y-5, pageW-2*margin, 6, "F")
	for i, title := range doc.Columns {
		pdf.Text(cols[i], y, tr(title))
	}
	y += 8

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range doc.Rows {
		if y > pageH-40 {
			pdf.AddPage()
			y = margin
		}
		pdf.Text(cols[0], y, tr(row.Product))
		pdf.Text(cols[1], y, row.Quantity)
		pdf.Text(cols[2], y, row.UnitPrice)
		pdf.Text(cols[3], y, row.Total)
		y += 6
	}
	y += 4
	separator()

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(margin, y, "RESUMO FINANCEIRO")
	y += 8
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range doc.Summary {
		pdf.Text(margin, y, tr(line.Text))
		if line.Value != "" {
			rightAligned(pdf, line.Value, pageW-margin-30, y)
		}
		y += 6
	}
	y += 8
	separator()

	pdf.SetFont("Helvetica", "I", 8)
	centered(pdf, tr(doc.Footer), pageW/2, pageH-15)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt %d: %w", sale.ID, err)
	}
	return buf.Bytes(), nil
}

func centered(pdf *fpdf.Fpdf, s string, cx, y float64) {
	pdf.Text(cx-pdf.GetStringWidth(s)/2, y, s)
}

func rightAligned(pdf *fpdf.Fpdf, s string, right, y float64) {
	pdf.Text(right-pdf.GetStringWidth(s), y, s)
}
