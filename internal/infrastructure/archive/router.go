package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhoicas/gestor-facturas/internal/domain"
	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
	"github.com/jhoicas/gestor-facturas/internal/infrastructure/ubl"
	"github.com/jhoicas/gestor-facturas/pkg/logger"
)

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Carpetas de la taxonomía de destino. El layout en disco es contrato:
// lo consumen el contador y las macros de la empresa, no solo este programa.
const (
	folderPurchaseInvoices = "03 Facturas de Compra"
	folderCreditSubdir     = "credito"
	folderCreditNotes      = "04 Nota Credito Proveedores"
	subfolderInvoiceXML    = "00 XML Facturas de Compra"
	subfolderCreditXML     = "00 XML Nota Credito"
)

// Router clasifica un comprimido de factura y enruta sus miembros XML/PDF a
// la carpeta de destino de la empresa. Máquina de estados por comprimido:
// Opened → Extracted → Validated → Routed → Finalized, con Failed alcanzable
// desde cualquier estado. El workspace temporal se elimina siempre, haya o no
// fallo previo.
type Router struct {
	company entity.CompanyContext
	log     *logger.Logger

	// SettleDelay espera antes de eliminar el workspace (archivos que la
	// plataforma aún mantiene abiertos). Cero en tests.
	SettleDelay time.Duration
	OpenRetries int
	RetryDelay  time.Duration
}

// NewRouter construye el router para una empresa.
func NewRouter(company entity.CompanyContext, log *logger.Logger) *Router {
	return &Router{
		company:     company,
		log:         log,
		SettleDelay: 2 * time.Second,
		OpenRetries: DefaultOpenRetries,
		RetryDelay:  DefaultRetryDelay,
	}
}

// Process ejecuta la máquina de estados completa sobre un ZIP. Nunca retorna
// error: cada desenlace queda en el ArchiveTask y en el log de la corrida.
// Un comprimido malformado jamás aborta el lote.
func (r *Router) Process(zipPath string) *entity.ArchiveTask {
	task := &entity.ArchiveTask{SourcePath: zipPath, State: entity.StateOpened}

	ws, err := ExtractToWorkspace(zipPath, r.company.DownloadFolder, r.OpenRetries, r.RetryDelay)
	if err != nil {
		// Ilegible tras reintentos: el ZIP queda en origen para inspección manual.
		r.log.Error().Err(err).Str("zip", zipPath).Msg("no se pudo abrir el comprimido")
		task.State = entity.StateFailed
		task.Outcome = entity.OutcomeRejected
		return task
	}
	task.TempWorkspace = ws.Dir

	defer func() {
		if err := ws.Remove(r.SettleDelay); err != nil {
			r.log.Error().Err(err).Str("workspace", ws.Dir).Msg("no se pudo eliminar el workspace temporal")
		} else {
			r.log.Info().Str("workspace", ws.Dir).Msg("workspace temporal eliminado")
		}
		task.TempWorkspace = ""
		if task.State != entity.StateFailed {
			task.State = entity.StateFinalized
		}
	}()

	files, err := ws.Files()
	if err != nil {
		r.fail(task, err, "no se pudo listar el workspace")
		return task
	}
	xmlFile := firstWithSuffix(files, ".xml")
	if xmlFile == "" {
		r.fail(task, domain.ErrNoXMLMember, "comprimido sin miembro XML")
		return task
	}

	raw, err := os.ReadFile(xmlFile)
	if err != nil {
		r.discard(task, err, "no se pudo leer el miembro XML")
		return task
	}
	record, err := ubl.Extract(raw)
	if err != nil {
		// Política: un XML ilegible no se reintenta, el comprimido se descarta.
		r.discard(task, err, "extracción fallida")
		return task
	}
	task.Record = record
	task.State = entity.StateExtracted

	if !strings.Contains(record.CustomerNIT, r.company.NIT) {
		r.log.Warn().
			Str("zip", zipPath).
			Str("customer_nit", record.CustomerNIT).
			Str("expected_nit", r.company.NIT).
			Msg("el NIT del cliente no corresponde a la empresa")
		r.discard(task, domain.ErrValidationMismatch, "destinatario incorrecto")
		return task
	}
	task.State = entity.StateValidated

	monthPath, xmlDir, err := r.destination(record)
	if err != nil {
		r.discard(task, err, "sin destino para este documento")
		return task
	}
	task.DestinationFolder = monthPath

	if err := os.MkdirAll(xmlDir, 0o755); err != nil {
		r.discard(task, err, "no se pudo crear la carpeta destino")
		return task
	}

	stem := record.IssuerName + "_" + record.RelatedDocumentID
	finalXML := UniqueName(filepath.Join(xmlDir, stem+".xml"))
	if err := os.Rename(xmlFile, finalXML); err != nil {
		r.discard(task, err, "no se pudo mover el XML al destino")
		return task
	}
	task.XMLPath = finalXML
	task.State = entity.StateRouted
	r.log.Info().Str("xml", finalXML).Msg("XML renombrado en destino")

	// El PDF es opcional y su fallo no revierte nada: el XML ya quedó en su
	// sitio y la limpieza de los demás pasos debe continuar.
	if pdfFile := firstWithSuffix(files, ".pdf"); pdfFile != "" {
		finalPDF := UniqueName(filepath.Join(monthPath, stem+".pdf"))
		if err := os.Rename(pdfFile, finalPDF); err != nil {
			r.log.Error().Err(err).Str("pdf", pdfFile).Msg("no se pudo mover el PDF al destino")
		} else {
			task.PDFPath = finalPDF
			r.log.Info().Str("pdf", finalPDF).Msg("PDF renombrado en destino")
		}
	}

	task.Outcome = entity.OutcomeMoved
	return task
}

// destination resuelve <MM Mes>/<carpeta por tipo de documento y pago> y la
// subcarpeta del XML. Combinaciones no contempladas son fallo de validación.
func (r *Router) destination(record *entity.InvoiceRecord) (monthPath, xmlDir string, err error) {
	issue, err := time.Parse("2006-01-02", record.IssueDate)
	if err != nil {
		return "", "", fmt.Errorf("%w: fecha de emisión %q", domain.ErrValidationMismatch, record.IssueDate)
	}
	monthFolder := fmt.Sprintf("%02d %s", int(issue.Month()), monthNames[issue.Month()-1])

	var docFolder, xmlSub string
	switch {
	case record.DocumentType == entity.DocumentTypeInvoice && record.PaymentType == entity.PaymentTypeCash:
		docFolder = folderPurchaseInvoices
		xmlSub = subfolderInvoiceXML
	case record.DocumentType == entity.DocumentTypeInvoice && record.PaymentType == entity.PaymentTypeCredit:
		docFolder = filepath.Join(folderPurchaseInvoices, folderCreditSubdir)
		xmlSub = subfolderInvoiceXML
	case record.DocumentType == entity.DocumentTypeCreditNote:
		docFolder = folderCreditNotes
		xmlSub = subfolderCreditXML
	default:
		return "", "", fmt.Errorf("%w: tipo %q con pago %q", domain.ErrValidationMismatch,
			record.DocumentType, record.PaymentType)
	}

	monthPath = filepath.Join(r.company.DownloadFolder, monthFolder, docFolder)
	return monthPath, filepath.Join(monthPath, xmlSub), nil
}

// fail marca la tarea como fallida dejando el ZIP de origen intacto.
func (r *Router) fail(task *entity.ArchiveTask, err error, msg string) {
	r.log.Error().Err(err).Str("zip", task.SourcePath).Msg(msg)
	task.State = entity.StateFailed
	task.Outcome = entity.OutcomeRejected
}

// discard marca la tarea como fallida y elimina el ZIP de origen: los
// comprimidos con XML ilegible o destinatario ajeno no se vuelven a encolar.
func (r *Router) discard(task *entity.ArchiveTask, err error, msg string) {
	r.fail(task, err, msg)
	if err := os.Remove(task.SourcePath); err != nil {
		r.log.Error().Err(err).Str("zip", task.SourcePath).Msg("no se pudo eliminar el ZIP de origen")
	} else {
		r.log.Info().Str("zip", task.SourcePath).Msg("ZIP de origen eliminado")
	}
}

func firstWithSuffix(files []string, suffix string) string {
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f), suffix) {
			return f
		}
	}
	return ""
}
