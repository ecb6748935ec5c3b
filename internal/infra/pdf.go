package infra

// pdf.go — acta PDF generation using go-pdf/fpdf.
// Renders an A4 audit document for a solicitud de rectificacion:
// session snapshot, cash balances, per-method detail, itemized
// justifications / expenses / receipts, and the decision block.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"farmacuadra/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateActaPDF writes the acta of a solicitud to storagePath and
// returns the absolute file path.
func GenerateActaPDF(s *model.SolicitudRectificacion, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("acta_%s.pdf", s.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Acta de Rectificacion de Caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Solicitud %s", s.ID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Session snapshot ─────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Sesion", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	linea(pdf, contentW, "Sesion POS", fmt.Sprintf("%s (#%d)", s.SesionNombre, s.SesionID))
	linea(pdf, contentW, "Local", s.LocalNombre)
	linea(pdf, contentW, "Cajero", s.UsuarioNombre)
	if s.InicioSesion != nil {
		linea(pdf, contentW, "Inicio", s.InicioSesion.Format("02/01/2006 15:04"))
	}
	if s.CierreSesion != nil {
		linea(pdf, contentW, "Cierre", s.CierreSesion.Format("02/01/2006 15:04"))
	}
	pdf.Ln(3)

	// ── Cash balances ────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Efectivo", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	linea(pdf, contentW, "Saldo inicial", plata(s.SaldoInicial))
	linea(pdf, contentW, "Saldo final teorico", plata(s.SaldoFinalTeorico))
	linea(pdf, contentW, "Saldo final real", plata(s.SaldoFinalReal))
	linea(pdf, contentW, "Monto ajustado", plata(s.Detalle.AjusteSaldoEfectivo.MontoAjustado))
	pdf.Ln(3)

	// ── Per-method detail ────────────────────────────────────────────────
	if len(s.Detalle.JustificacionesPorMetodo) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Detalle por metodo de pago", "", 1, "L", false, 0, "")

		metodos := make([]string, 0, len(s.Detalle.JustificacionesPorMetodo))
		for m := range s.Detalle.JustificacionesPorMetodo {
			metodos = append(metodos, m)
		}
		sort.Strings(metodos)

		for _, metodo := range metodos {
			det := s.Detalle.JustificacionesPorMetodo[metodo]
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(contentW, 5, metodo, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			linea(pdf, contentW, "  Monto fisico ingresado", plata(det.MontoFisicoIngresado))
			for _, j := range det.Justificaciones {
				linea(pdf, contentW,
					fmt.Sprintf("  %s %s", j.Tipo, plata(j.Monto)), j.Motivo)
			}
		}
		pdf.Ln(3)
	}

	// ── Expenses and receipts ────────────────────────────────────────────
	if len(s.Detalle.GastosRendidos) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Gastos rendidos", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, g := range s.Detalle.GastosRendidos {
			linea(pdf, contentW,
				fmt.Sprintf("  Comprobante %s — %s", g.NumeroComprobante, plata(g.Monto)), g.Motivo)
		}
		pdf.Ln(3)
	}
	if len(s.Detalle.BoletasPendientes) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Boletas pendientes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, b := range s.Detalle.BoletasPendientes {
			linea(pdf, contentW,
				fmt.Sprintf("  Boleta %s — %s", b.NumeroBoleta, plata(b.Monto)), b.Estado)
		}
		pdf.Ln(3)
	}

	// ── Workflow block ───────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Estado", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	linea(pdf, contentW, "Enviada por", s.EnviadaPorEmail)
	linea(pdf, contentW, "Enviada el", s.EnviadaEn.Format("02/01/2006 15:04"))
	linea(pdf, contentW, "Estado", s.Estado)
	if s.AprobadaPorNombre != nil && s.AprobadaEn != nil {
		linea(pdf, contentW, "Resuelta por", *s.AprobadaPorNombre)
		linea(pdf, contentW, "Resuelta el", s.AprobadaEn.Format("02/01/2006 15:04"))
	}
	if s.MotivoRechazo != nil && *s.MotivoRechazo != "" {
		linea(pdf, contentW, "Motivo de rechazo", *s.MotivoRechazo)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write acta: %w", err)
	}
	return filePath, nil
}

func linea(pdf *fpdf.Fpdf, w float64, etiqueta, valor string) {
	pdf.CellFormat(w*0.45, 5, etiqueta, "", 0, "L", false, 0, "")
	pdf.CellFormat(w*0.55, 5, valor, "", 1, "L", false, 0, "")
}

// plata formats a CLP amount (no decimals).
func plata(d decimal.Decimal) string {
	return "$" + d.StringFixed(0)
}
