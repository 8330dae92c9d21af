package reenviador_test

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestor-facturas/internal/application/reenviador"
	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
	"github.com/jhoicas/gestor-facturas/pkg/logger"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	records []reenviador.PostedRecord
	err     error
}

func (f *fakeLedger) PostedRecords(ctx context.Context, companyID int) ([]reenviador.PostedRecord, error) {
	return f.records, f.err
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendInvoice(recipient, zipPath string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, zipPath)
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func fiscalXML(cufe, root, paymentMeans string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<%[2]s xmlns="urn:oasis:names:specification:ubl:schema:xsd:%[2]s-2"
  xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
  xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2">
  <cbc:UUID>%[1]s</cbc:UUID>
  <cbc:ID>FE1</cbc:ID>
  <cac:PaymentMeans><cbc:ID>%[3]s</cbc:ID></cac:PaymentMeans>
</%[2]s>`, cufe, root, paymentMeans)
}

func writeInvoiceZip(t *testing.T, dir, name, xml string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	member, err := w.Create("factura.xml")
	require.NoError(t, err)
	_, err = member.Write([]byte(xml))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func testCompany(t *testing.T) entity.CompanyContext {
	t.Helper()
	return entity.CompanyContext{
		Name:            "IENEL",
		ZipSource:       t.TempDir(),
		ZipDest:         t.TempDir(),
		ZipRejected:     t.TempDir(),
		LedgerCompanyID: 3,
		NotifyRecipient: "contabilidad@ejemplo.com",
	}
}

func testUseCase(ledger reenviador.LedgerQuery, notifier reenviador.NotificationDispatch) *reenviador.UseCase {
	return reenviador.NewUseCase(ledger, notifier,
		logger.New(logger.Config{Env: "development", Level: "error"}))
}

// ── tabla de decisión ─────────────────────────────────────────────────────────

// TestRun_CufeConocidoSeDespacha coincidencia por CUFE: se notifica y el
// comprimido se mueve a la carpeta de coincidencias.
func TestRun_CufeConocidoSeDespacha(t *testing.T) {
	company := testCompany(t)
	writeInvoiceZip(t, company.ZipSource, "fv1.zip", fiscalXML("CUFE-A", "Invoice", "2"))

	ledger := &fakeLedger{records: []reenviador.PostedRecord{{ID: 1, FiscalCode: "CUFE-A"}}}
	notifier := &fakeNotifier{}

	result, err := testUseCase(ledger, notifier).Run(context.Background(), company)
	require.NoError(t, err)

	assert.Len(t, result.Dispatched, 1)
	assert.Empty(t, result.Pending)
	assert.Empty(t, result.Rejected)
	assert.Len(t, notifier.sent, 1, "la notificación precede al movimiento")
	assert.FileExists(t, filepath.Join(company.ZipDest, "fv1.zip"))
	assert.NoFileExists(t, filepath.Join(company.ZipSource, "fv1.zip"), "mover, nunca copiar")
}

// TestRun_CufeDesconocidoQuedaPendiente sin coincidencia no hay movimiento de
// archivo alguno: el comprimido sigue elegible en la próxima corrida.
func TestRun_CufeDesconocidoQuedaPendiente(t *testing.T) {
	company := testCompany(t)
	writeInvoiceZip(t, company.ZipSource, "fv1.zip", fiscalXML("CUFE-A", "Invoice", "2"))

	ledger := &fakeLedger{records: []reenviador.PostedRecord{{ID: 1, FiscalCode: "OTRO-CUFE"}}}
	notifier := &fakeNotifier{}

	result, err := testUseCase(ledger, notifier).Run(context.Background(), company)
	require.NoError(t, err)

	assert.Len(t, result.Pending, 1)
	assert.Empty(t, notifier.sent)
	assert.FileExists(t, filepath.Join(company.ZipSource, "fv1.zip"),
		"pendiente significa quedarse en su lugar")
}

// TestRun_DescalificadosSeRechazan contado, nota crédito sin coincidencia y
// comprimidos sin XML van a rechazados.
func TestRun_DescalificadosSeRechazan(t *testing.T) {
	company := testCompany(t)
	writeInvoiceZip(t, company.ZipSource, "contado.zip", fiscalXML("CUFE-B", "Invoice", "1"))
	writeInvoiceZip(t, company.ZipSource, "raro.zip", fiscalXML("CUFE-C", "DebitNote", "2"))
	require.NoError(t, os.WriteFile(filepath.Join(company.ZipSource, "roto.zip"), []byte("basura"), 0o644))

	result, err := testUseCase(&fakeLedger{}, &fakeNotifier{}).Run(context.Background(), company)
	require.NoError(t, err)

	assert.Len(t, result.Rejected, 3)
	assert.Empty(t, result.Dispatched)
	assert.Empty(t, result.Pending)
	assert.FileExists(t, filepath.Join(company.ZipRejected, "contado.zip"))
	assert.FileExists(t, filepath.Join(company.ZipRejected, "raro.zip"))
	assert.FileExists(t, filepath.Join(company.ZipRejected, "roto.zip"))
}

// TestRun_LibroCaidoTodoPendiente si el libro externo no responde, ningún
// comprimido elegible se despacha ni se pierde.
func TestRun_LibroCaidoTodoPendiente(t *testing.T) {
	company := testCompany(t)
	writeInvoiceZip(t, company.ZipSource, "fv1.zip", fiscalXML("CUFE-A", "Invoice", "2"))

	ledger := &fakeLedger{err: errors.New("conexión rechazada")}
	notifier := &fakeNotifier{}

	result, err := testUseCase(ledger, notifier).Run(context.Background(), company)
	require.NoError(t, err, "la caída del libro no aborta la corrida")

	assert.Len(t, result.Pending, 1)
	assert.Empty(t, notifier.sent)
	assert.FileExists(t, filepath.Join(company.ZipSource, "fv1.zip"))
}

// TestRun_NotificacionFallidaQuedaPendiente si el correo falla el comprimido
// no se mueve: el reintento llega con la próxima corrida.
func TestRun_NotificacionFallidaQuedaPendiente(t *testing.T) {
	company := testCompany(t)
	writeInvoiceZip(t, company.ZipSource, "fv1.zip", fiscalXML("CUFE-A", "Invoice", "2"))

	ledger := &fakeLedger{records: []reenviador.PostedRecord{{FiscalCode: "CUFE-A"}}}
	notifier := &fakeNotifier{err: errors.New("SMTP no disponible")}

	result, err := testUseCase(ledger, notifier).Run(context.Background(), company)
	require.NoError(t, err)

	assert.Len(t, result.Pending, 1)
	assert.Empty(t, result.Dispatched)
	assert.FileExists(t, filepath.Join(company.ZipSource, "fv1.zip"))
}

// TestRun_RespetaElLimiteDelLote solo se evalúan los N más antiguos.
func TestRun_RespetaElLimiteDelLote(t *testing.T) {
	company := testCompany(t)
	for i := 0; i < 5; i++ {
		writeInvoiceZip(t, company.ZipSource, fmt.Sprintf("fv%d.zip", i), fiscalXML("CUFE-X", "Invoice", "2"))
	}

	uc := testUseCase(&fakeLedger{}, &fakeNotifier{})
	uc.Limit = 2

	result, err := uc.Run(context.Background(), company)
	require.NoError(t, err)
	assert.Len(t, result.Pending, 2)
}
