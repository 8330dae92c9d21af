package gestor_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestor-facturas/internal/application/gestor"
	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
	"github.com/jhoicas/gestor-facturas/pkg/logger"
)

const invoiceXML = `<?xml version="1.0"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
  xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
  xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2">
  <cbc:UUID>CUFE-FE100</cbc:UUID>
  <cbc:ID>FE100</cbc:ID>
  <cbc:IssueDate>2024-05-10</cbc:IssueDate>
  <cac:AccountingCustomerParty>
    <cac:Party>
      <cac:PartyTaxScheme><cbc:CompanyID>800999888</cbc:CompanyID></cac:PartyTaxScheme>
    </cac:Party>
  </cac:AccountingCustomerParty>
  <cac:AccountingSupplierParty>
    <cac:Party>
      <cac:PartyTaxScheme>
        <cbc:RegistrationName>Proveedor SAS</cbc:RegistrationName>
        <cbc:CompanyID>900111222</cbc:CompanyID>
      </cac:PartyTaxScheme>
    </cac:Party>
  </cac:AccountingSupplierParty>
  <cac:PaymentMeans><cbc:ID>1</cbc:ID></cac:PaymentMeans>
  <cac:InvoiceLine>
    <cbc:ID>1</cbc:ID>
    <cbc:InvoicedQuantity>1</cbc:InvoicedQuantity>
    <cbc:LineExtensionAmount>10000</cbc:LineExtensionAmount>
    <cac:Item><cbc:Description>Material</cbc:Description></cac:Item>
  </cac:InvoiceLine>
</Invoice>`

func writeZip(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	member, err := w.Create("factura.xml")
	require.NoError(t, err)
	_, err = member.Write([]byte(invoiceXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

// TestRun_LoteMixto un comprimido ilegible no aborta el lote: el bueno se
// enruta y el malo queda contado como fallido.
func TestRun_LoteMixto(t *testing.T) {
	company := entity.CompanyContext{
		Name:           "IENEL",
		NIT:            "800999888",
		DownloadFolder: t.TempDir(),
		InboxFolder:    t.TempDir(),
	}
	writeZip(t, filepath.Join(company.InboxFolder, "bueno.zip"))
	require.NoError(t, os.WriteFile(filepath.Join(company.InboxFolder, "roto.zip"), []byte("basura"), 0o644))

	uc := gestor.NewUseCase(logger.New(logger.Config{Env: "development", Level: "error"}))
	result, err := uc.Run(context.Background(), company)
	require.NoError(t, err)

	assert.Len(t, result.XMLFiles, 1)
	assert.Len(t, result.Failed, 1)
	assert.FileExists(t, result.XMLFiles[0])
	assert.Contains(t, result.XMLFiles[0], filepath.Join("05 Mayo", "03 Facturas de Compra"))
}

func TestRun_BuzonInexistente(t *testing.T) {
	company := entity.CompanyContext{
		Name:        "IENEL",
		InboxFolder: filepath.Join(t.TempDir(), "no-existe"),
	}
	uc := gestor.NewUseCase(logger.New(logger.Config{Env: "development", Level: "error"}))
	_, err := uc.Run(context.Background(), company)
	assert.Error(t, err, "un buzón ausente es error de configuración, no un lote vacío")
}
