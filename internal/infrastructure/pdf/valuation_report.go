// Package pdf genera el reporte de valoración de inventario en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + tenant     │  fecha de corte               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ítem | Unidad | Stock | Costo prom. | Valor          │
//	│  TOTAL VALORADO                                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DÉFICITS: críticos / moderados + valor para cubrirlos       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el digest del snapshot XML                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorCritical = &props.Color{Red: 170, Green: 20, Blue: 20}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ValuationReportGenerator genera el reporte con Maroto v2.
type ValuationReportGenerator struct{}

// NewValuationReportGenerator construye el generador.
func NewValuationReportGenerator() *ValuationReportGenerator { return &ValuationReportGenerator{} }

// Generate genera el PDF y devuelve sus bytes. digest (opcional) es el SHA-256 del snapshot
// XML canónico del mismo reporte; se imprime con su QR para verificar el corte.
func (g *ValuationReportGenerator) Generate(_ context.Context, report *dto.ValuationReport, digest string) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Valoración de inventario", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(valuationHeaderRow())
	m.AddRows(valuationRows(report.Valuation.Items)...)
	m.AddRows(totalRow("TOTAL VALORADO:", report.Valuation.TotalValue))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(deficitRows(report.Deficits)...)

	if digest != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(digestRow(digest))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report *dto.ValuationReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("VALORACIÓN DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Tenant: "+report.TenantID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Corte: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(fmt.Sprintf("%d ítems valorados", len(report.Valuation.Items)), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func valuationHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ítem", 4, align.Left),
		h("Unidad", 1, align.Center),
		h("Stock", 2, align.Right),
		h("Costo prom.", 2, align.Right),
		h("Valor", 3, align.Right),
	)
}

func valuationRows(items []dto.ValuationItemDTO) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(it.ItemName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(it.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatQuantity(it.CurrentStock), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(it.UnitCost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(formatMoney(it.TotalValue), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalRow(label string, value decimal.Decimal) core.Row {
	return row.New(9).Add(
		col.New(6),
		col.New(3).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(formatMoney(value), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

func deficitRows(summary dto.DeficitSummaryResponse) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(text.New(
			fmt.Sprintf("DÉFICITS: %d ítems (%d críticos, %d moderados)",
				summary.TotalDeficitItems, len(summary.CriticalDeficits), len(summary.ModerateDeficits)),
			props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2},
		))),
	}
	if summary.TotalDeficitItems == 0 {
		return append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Sin ítems con stock negativo.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}
	add := func(list []dto.StockDeficitDTO, label string, color *props.Color) {
		for _, d := range list {
			rows = append(rows, row.New(5).Add(
				col.New(2).Add(text.New(label, props.Text{Size: 7, Style: fontstyle.Bold, Color: color, Top: 1})),
				col.New(7).Add(text.New(d.ItemName, props.Text{Size: 8, Top: 1})),
				col.New(3).Add(text.New("faltan "+formatQuantity(d.DeficitAmount)+" "+d.Unit, props.Text{
					Size: 8, Align: align.Right, Top: 1, Right: 1,
				})),
			))
		}
	}
	add(summary.CriticalDeficits, "CRÍTICO", colorCritical)
	add(summary.ModerateDeficits, "MODERADO", colorGray)
	return append(rows, totalRow("Valor para cubrir:", summary.TotalDeficitValue))
}

func digestRow(digest string) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(digest, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Digest SHA-256 del snapshot XML canónico:", props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 4, Left: 3,
			}),
			text.New(digest, props.Text{Size: 7, Top: 10, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney formato local: puntos de miles y coma decimal con 2 decimales.
// Ej: 1066.666 → "$1.066,67"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + "$" + groupThousands(intPart) + "," + frac
}

func formatQuantity(q int64) string {
	if q < 0 {
		return "-" + groupThousands(fmt.Sprint(-q))
	}
	return groupThousands(fmt.Sprint(q))
}

// groupThousands inserta puntos de miles en un string numérico sin signo.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
