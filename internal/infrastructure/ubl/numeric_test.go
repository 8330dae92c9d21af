package ubl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gestor-facturas/internal/infrastructure/ubl"
)

// TestNormalize_FormatosHeterogeneos valida la heurística de formatos
// numéricos en el orden calibrado: decimal con punto, decimal con coma,
// miles con coma, miles con punto y el recurso final de quitar todo.
func TestNormalize_FormatosHeterogeneos(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{"entero simple", "7", 7},
		{"decimal con punto", "19000.50", 19000.50},
		{"decimal con coma", "1,5", 1.5},
		{"miles con coma y decimal con punto", "1,234.56", 1234.56},
		{"miles con punto y decimal con coma", "1.234,56", 1234.56},
		{"miles con coma sin decimales", "1,234,567", 1234567},
		{"negativo", "-12.5", -12.5},
		{"espacios alrededor", "  42  ", 42},
		{"vacío vale cero", "", 0},
		{"texto vale cero", "abc", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ubl.Normalize(tc.input), 1e-9,
				"Normalize(%q) debe valer %v", tc.input, tc.want)
		})
	}
}

// TestNormalize_PuntoAmbiguoEsDecimal documenta la decisión del orden: un
// "1.234" calza primero como decimal con punto, no como miles.
func TestNormalize_PuntoAmbiguoEsDecimal(t *testing.T) {
	assert.InDelta(t, 1.234, ubl.Normalize("1.234"), 1e-9,
		"un punto único se interpreta como separador decimal")
}

// TestNormalize_NuncaFalla cualquier basura produce cero, jamás pánico.
func TestNormalize_NuncaFalla(t *testing.T) {
	for _, input := range []string{"NaN", "Inf", "-Inf", "..,,", "$ 100", "1e309"} {
		assert.Zero(t, ubl.Normalize(input), "Normalize(%q) debe valer 0", input)
	}
}
