package service

import (
	"farmacuadra/internal/model"

	"github.com/shopspring/decimal"
)

// Pure discrepancy arithmetic. All amounts are CLP decimals; justification
// sign convention: faltante contributes +monto, sobrante -monto, so the
// net difference trends toward zero as justifications accumulate.

// sumaGastos totals rendered expense vouchers.
func sumaGastos(gastos []model.GastoRendido) decimal.Decimal {
	total := decimal.Zero
	for _, g := range gastos {
		total = total.Add(g.Monto)
	}
	return total
}

// efectoBoletas nets pending receipts: +monto while pending, -monto once
// sent to rectification.
func efectoBoletas(boletas []model.BoletaPendiente) decimal.Decimal {
	total := decimal.Zero
	for _, b := range boletas {
		total = total.Add(b.Efecto())
	}
	return total
}

// efectoJustificaciones sums the signed contributions of a list.
func efectoJustificaciones(justs []model.Justificacion) decimal.Decimal {
	total := decimal.Zero
	for _, j := range justs {
		total = total.Add(j.Efecto())
	}
	return total
}

// calcularEfectivo computes the three cash figures:
//
//	bruta      = fisico - teorico - Σgastos
//	conBoletas = bruta + Σefecto(boletas)
//	neta       = conBoletas + Σefecto(justificaciones)
func calcularEfectivo(fisico, teorico decimal.Decimal, gastos []model.GastoRendido,
	boletas []model.BoletaPendiente, justs []model.Justificacion) (bruta, conBoletas, neta decimal.Decimal) {

	bruta = fisico.Sub(teorico).Sub(sumaGastos(gastos))
	conBoletas = bruta.Add(efectoBoletas(boletas))
	neta = conBoletas.Add(efectoJustificaciones(justs))
	return bruta, conBoletas, neta
}

// calcularMetodo computes a non-cash method's gross and net difference.
func calcularMetodo(fisico, sistema decimal.Decimal, justs []model.Justificacion) (bruta, neta decimal.Decimal) {
	bruta = fisico.Sub(sistema)
	neta = bruta.Add(efectoJustificaciones(justs))
	return bruta, neta
}

// calcularDiferenciaGastos compares system-recorded expenses against the
// rendered vouchers.
func calcularDiferenciaGastos(transaccionesReales decimal.Decimal, gastos []model.GastoRendido) decimal.Decimal {
	return transaccionesReales.Sub(sumaGastos(gastos))
}
