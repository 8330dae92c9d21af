package ubl

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Clasificación ordenada de formatos numéricos. El orden importa: es la
// heurística calibrada para locales ambiguos (un "1.234" se lee como mil
// doscientos treinta y cuatro solo si no calza antes como decimal).
var (
	reDotDecimal     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	reCommaDecimal   = regexp.MustCompile(`^-?\d+(,\d+)?$`)
	reThousandsComma = regexp.MustCompile(`^-?[\d,]+(\.\d+)?$`)
	reThousandsDot   = regexp.MustCompile(`^-?[\d.]+(,\d+)?$`)
)

// Normalize convierte un número textual heterogéneo (decimal con punto o
// coma, separadores de miles mezclados, o dígitos sueltos) a float64.
// Nunca falla: cualquier cosa que no resulte en un número finito vale 0.
func Normalize(value string) float64 {
	v := strings.TrimSpace(value)
	switch {
	case reDotDecimal.MatchString(v):
		return parseFinite(v)
	case reCommaDecimal.MatchString(v):
		return parseFinite(strings.Replace(v, ",", ".", 1))
	case reThousandsComma.MatchString(v):
		return parseFinite(strings.ReplaceAll(v, ",", ""))
	case reThousandsDot.MatchString(v):
		return parseFinite(strings.Replace(strings.ReplaceAll(v, ".", ""), ",", ".", 1))
	default:
		// Último recurso: quitar todo punto y coma y leer como entero.
		return parseFinite(strings.NewReplacer(".", "", ",", "").Replace(v))
	}
}

func parseFinite(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
