package reenviador

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
	"github.com/jhoicas/gestor-facturas/internal/infrastructure/archive"
	"github.com/jhoicas/gestor-facturas/internal/infrastructure/ubl"
	"github.com/jhoicas/gestor-facturas/pkg/logger"
)

// DefaultBatchLimit máximo de comprimidos evaluados por corrida.
const DefaultBatchLimit = 25

// UseCase conciliación contra el libro externo: cruza un lote de comprimidos
// con los códigos fiscales ya contabilizados y los reparte en despachados,
// pendientes y rechazados.
//
// La asimetría es deliberada: rechazados y despachados se MUEVEN (nunca se
// copian), los pendientes quedan en su lugar. Los códigos llegan al libro de
// forma asíncrona, así que un comprimido debe seguir siendo elegible corrida
// tras corrida hasta coincidir o quedar descalificado.
type UseCase struct {
	ledger   LedgerQuery
	notifier NotificationDispatch
	log      *logger.Logger

	Limit int
}

// NewUseCase construye el caso de uso.
func NewUseCase(ledger LedgerQuery, notifier NotificationDispatch, log *logger.Logger) *UseCase {
	return &UseCase{ledger: ledger, notifier: notifier, log: log, Limit: DefaultBatchLimit}
}

// Result rutas de los comprimidos por desenlace.
type Result struct {
	Dispatched []string
	Pending    []string
	Rejected   []string
}

// Run evalúa el lote de la empresa, del más antiguo al más reciente.
func (uc *UseCase) Run(ctx context.Context, company entity.CompanyContext) (*Result, error) {
	known := map[string]struct{}{}
	records, err := uc.ledger.PostedRecords(ctx, company.LedgerCompanyID)
	if err != nil {
		// Libro no disponible = cero códigos conocidos: todo queda pendiente,
		// nada se despacha por equivocación.
		uc.log.Warn().Err(err).Msg("libro externo no disponible; la corrida no despachará nada")
	}
	for _, rec := range records {
		known[rec.FiscalCode] = struct{}{}
	}

	zips, err := oldestZips(company.ZipSource, uc.Limit)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, zipPath := range zips {
		outcome := uc.processOne(company, known, zipPath)
		uc.log.Info().Str("zip", zipPath).Str("outcome", string(outcome)).Msg("comprimido evaluado")
		switch outcome {
		case entity.OutcomeDispatched:
			result.Dispatched = append(result.Dispatched, zipPath)
		case entity.OutcomeRejected:
			result.Rejected = append(result.Rejected, zipPath)
		default:
			result.Pending = append(result.Pending, zipPath)
		}
	}
	return result, nil
}

// processOne aplica la tabla de decisión a un comprimido.
func (uc *UseCase) processOne(company entity.CompanyContext, known map[string]struct{}, zipPath string) entity.Outcome {
	raw, err := archive.ReadXMLMember(zipPath)
	if err != nil {
		uc.log.Warn().Err(err).Str("zip", zipPath).Msg("sin XML legible")
		return uc.reject(company, zipPath)
	}

	cls, err := ubl.Classify(raw)
	if err != nil {
		uc.log.Warn().Err(err).Str("zip", zipPath).Msg("clasificación fallida")
		return uc.reject(company, zipPath)
	}
	if cls.DocumentType != entity.DocumentTypeInvoice || cls.PaymentType != entity.PaymentTypeCredit {
		uc.log.Info().
			Str("zip", zipPath).
			Str("document_type", string(cls.DocumentType)).
			Str("payment_type", string(cls.PaymentType)).
			Msg("no cumple condiciones para ser enviado")
		return uc.reject(company, zipPath)
	}

	if _, ok := known[cls.CUFE]; !ok || cls.CUFE == entity.NA {
		// El CUFE aún no figura en el libro: sin movimiento de archivo,
		// elegible para la próxima corrida.
		return entity.OutcomePending
	}

	if err := uc.notifier.SendInvoice(company.NotifyRecipient, zipPath); err != nil {
		uc.log.Error().Err(err).Str("zip", zipPath).Msg("notificación fallida; el comprimido queda en origen")
		return entity.OutcomePending
	}
	if err := moveTo(zipPath, company.ZipDest); err != nil {
		uc.log.Error().Err(err).Str("zip", zipPath).Msg("no se pudo mover a coincidencias")
	}
	return entity.OutcomeDispatched
}

func (uc *UseCase) reject(company entity.CompanyContext, zipPath string) entity.Outcome {
	if err := moveTo(zipPath, company.ZipRejected); err != nil {
		uc.log.Error().Err(err).Str("zip", zipPath).Msg("no se pudo mover a rechazados")
	}
	return entity.OutcomeRejected
}

// moveTo mueve (nunca copia) el comprimido al directorio dado, evitando
// colisiones de nombre.
func moveTo(zipPath, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(zipPath, archive.UniqueName(filepath.Join(dir, filepath.Base(zipPath))))
}

// oldestZips lista hasta limit comprimidos del directorio, del más antiguo
// al más reciente por fecha de modificación.
func oldestZips(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type zipEntry struct {
		path    string
		modTime int64
	}
	var zips []zipEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".zip") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		zips = append(zips, zipEntry{filepath.Join(dir, e.Name()), info.ModTime().UnixNano()})
	}
	sort.Slice(zips, func(i, j int) bool { return zips[i].modTime < zips[j].modTime })
	if limit > 0 && len(zips) > limit {
		zips = zips[:limit]
	}
	out := make([]string, len(zips))
	for i, z := range zips {
		out[i] = z.path
	}
	return out, nil
}
