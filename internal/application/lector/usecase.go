package lector

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/gestor-facturas/internal/domain"
	"github.com/jhoicas/gestor-facturas/internal/domain/repository"
	"github.com/jhoicas/gestor-facturas/internal/infrastructure/ubl"
	"github.com/jhoicas/gestor-facturas/pkg/logger"
)

// UseCase lectura de XMLs ya enrutados y carga a la base de datos plana.
// La corrida es una recarga completa: primero se vacían las tablas y luego
// se procesa archivo por archivo; un XML malo solo cuenta como error.
type UseCase struct {
	repo repository.InvoiceRecordRepository
	log  *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.InvoiceRecordRepository, log *logger.Logger) *UseCase {
	return &UseCase{repo: repo, log: log}
}

// Stats contadores de la corrida.
type Stats struct {
	Saved   int
	Skipped int // CUFE duplicado: guarda de idempotencia, no error
	Failed  int
}

// Run procesa los XML en el orden recibido. Si la limpieza inicial falla se
// aborta: recargar sobre datos viejos duplicaría registros.
func (uc *UseCase) Run(ctx context.Context, xmlPaths []string) (*Stats, error) {
	if err := uc.repo.Reset(ctx); err != nil {
		return nil, fmt.Errorf("limpiar la base de datos: %w", err)
	}

	stats := &Stats{}
	for _, path := range xmlPaths {
		if err := uc.processOne(ctx, path); err != nil {
			if errors.Is(err, domain.ErrDuplicateRecord) {
				uc.log.Info().Str("xml", path).Msg("CUFE ya registrado, se omite")
				stats.Skipped++
				continue
			}
			uc.log.Error().Err(err).Str("xml", path).Msg("no se pudo procesar el XML")
			stats.Failed++
			continue
		}
		stats.Saved++
	}

	uc.log.Info().
		Int("guardados", stats.Saved).
		Int("omitidos", stats.Skipped).
		Int("errores", stats.Failed).
		Msg("procesamiento completado")
	return stats, nil
}

func (uc *UseCase) processOne(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("leer %s: %w", path, err)
	}
	record, err := ubl.Extract(raw)
	if err != nil {
		return err
	}
	return uc.repo.Save(ctx, record)
}
