package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
)

// TestGeneralItems_SoloConceptosConValor los conceptos generales en cero no
// generan línea sintética alguna.
func TestGeneralItems_SoloConceptosConValor(t *testing.T) {
	rec := &entity.InvoiceRecord{
		CUFE:           "CUFE-1",
		DocumentType:   entity.DocumentTypeInvoice,
		BagTaxName:     "INC Bolsas",
		TipDescription: "Otras deducciones, cargos o impuestos",
	}
	assert.Empty(t, rec.GeneralItems(), "todo en cero: ninguna línea sintética")

	rec.BagTax = 66
	rec.Tip = 2000
	items := rec.GeneralItems()
	require.Len(t, items, 2)

	assert.Equal(t, "INC Bolsas", items[0].Description)
	assert.InDelta(t, 66, items[0].LineTotal, 1e-9)
	assert.Equal(t, "Otras deducciones, cargos o impuestos", items[1].Description)
	assert.InDelta(t, 2000, items[1].LineTotal, 1e-9)
}

// TestGeneralItems_HeredanIdentidad cada línea sintética lleva la identidad
// del registro y los centinelas NA en los campos sin valor propio.
func TestGeneralItems_HeredanIdentidad(t *testing.T) {
	rec := &entity.InvoiceRecord{
		CUFE:               "CUFE-2",
		DocumentType:       entity.DocumentTypeCreditNote,
		ConsecutiveID:      "NC10",
		RelatedDocumentID:  "NC10",
		IssuerName:         "Proveedor SAS",
		IssueDate:          "2024-05-10",
		ExpirationDate:     "2024-05-10",
		RoundingAdjustment: -0.34,
	}

	items := rec.GeneralItems()
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "Ajuste de vueltas", item.Description)
	assert.InDelta(t, -0.34, item.LineTotal, 1e-9)
	assert.Equal(t, entity.NA, item.LineNumber)
	assert.Equal(t, entity.NA, item.ProductCode)
	assert.InDelta(t, 1, item.Quantity, 1e-9)
	assert.Equal(t, "CUFE-2", item.CUFE)
	assert.Equal(t, "Notas Credito Proveedores", item.DocumentLabel)
}

func TestItemLabel_PorTipoDeDocumento(t *testing.T) {
	assert.Equal(t, "Facturas de Proveedores", entity.DocumentTypeInvoice.ItemLabel())
	assert.Equal(t, "Notas Credito Proveedores", entity.DocumentTypeCreditNote.ItemLabel())
	assert.Equal(t, entity.NA, entity.DocumentTypeUnknown.ItemLabel())
}
