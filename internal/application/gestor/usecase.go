package gestor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
	"github.com/jhoicas/gestor-facturas/internal/infrastructure/archive"
	"github.com/jhoicas/gestor-facturas/pkg/logger"
)

// UseCase clasificación y enrutado de los comprimidos descargados de una
// empresa. Secuencial por diseño: cada comprimido tiene su propio workspace
// aislado y ninguno puede corromper el estado de otro.
type UseCase struct {
	log *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(log *logger.Logger) *UseCase {
	return &UseCase{log: log}
}

// Result resumen de la corrida del gestor.
type Result struct {
	XMLFiles []string // rutas finales de los XML enrutados
	PDFFiles []string
	Failed   []string // comprimidos descartados o ilegibles
}

// Run procesa uno a uno los comprimidos del buzón de la empresa en orden de
// listado. Un comprimido fallido nunca aborta el lote.
func (uc *UseCase) Run(ctx context.Context, company entity.CompanyContext) (*Result, error) {
	zips, err := listZips(company.InboxFolder)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int("total", len(zips)).Str("empresa", company.Name).Msg("iniciando clasificación de comprimidos")

	router := archive.NewRouter(company, uc.log)
	result := &Result{}
	for _, zipPath := range zips {
		task := router.Process(zipPath)
		if task.Outcome == entity.OutcomeMoved {
			result.XMLFiles = append(result.XMLFiles, task.XMLPath)
			if task.PDFPath != "" {
				result.PDFFiles = append(result.PDFFiles, task.PDFPath)
			}
		} else {
			result.Failed = append(result.Failed, zipPath)
		}
	}

	uc.log.Info().
		Int("movidos", len(result.XMLFiles)).
		Int("fallidos", len(result.Failed)).
		Msg("clasificación completada")
	return result, nil
}

func listZips(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".zip") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
