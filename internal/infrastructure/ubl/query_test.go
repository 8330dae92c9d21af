package ubl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestor-facturas/internal/infrastructure/ubl"
)

const queryFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
         xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
         xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
         xmlns:otro="urn:ejemplo:otro">
  <cbc:ID>FE100</cbc:ID>
  <otro:ID>IMPOSTOR</otro:ID>
  <cbc:Note languageLocaleID="linea1">100.50</cbc:Note>
  <cbc:Note languageLocaleID="linea2">200.75</cbc:Note>
  <cac:InvoiceLine>
    <cbc:ID>1</cbc:ID>
    <cac:Item><cbc:Description>Cable</cbc:Description></cac:Item>
  </cac:InvoiceLine>
  <cac:InvoiceLine>
    <cbc:ID>2</cbc:ID>
    <cac:Item><cbc:Description></cbc:Description></cac:Item>
  </cac:InvoiceLine>
</Invoice>`

func TestParse_RechazaXMLIlegible(t *testing.T) {
	_, err := ubl.Parse([]byte("esto no es XML <"))
	assert.Error(t, err, "Parse con bytes malformados debe retornar error")

	_, err = ubl.Parse([]byte("   "))
	assert.Error(t, err, "Parse sin elemento raíz debe retornar error")
}

// TestSelectFirst_ResuelveNamespace verifica que cbc:ID solo coincide con el
// elemento del namespace CommonBasicComponents, no con homónimos de otros.
func TestSelectFirst_ResuelveNamespace(t *testing.T) {
	doc, err := ubl.Parse([]byte(queryFixture))
	require.NoError(t, err)

	v, ok := doc.SelectFirst("//cbc:ID", nil)
	require.True(t, ok)
	assert.Equal(t, "FE100", v, "debe ignorar el otro:ID del namespace ajeno")
}

func TestSelectNodes_DescensoVsHijoDirecto(t *testing.T) {
	doc, err := ubl.Parse([]byte(queryFixture))
	require.NoError(t, err)

	// "//" encuentra los tres cbc:ID a cualquier profundidad.
	assert.Len(t, doc.SelectNodes("//cbc:ID", nil), 3)

	// "./" solo el hijo directo de la raíz.
	assert.Len(t, doc.SelectNodes("./cbc:ID", nil), 1)

	// Ruta encadenada con scope por línea.
	lines := doc.SelectNodes("//cac:InvoiceLine", nil)
	require.Len(t, lines, 2)
	v, ok := doc.SelectFirst("./cac:Item/cbc:Description", lines[0])
	require.True(t, ok)
	assert.Equal(t, "Cable", v)
}

// TestSelectAll_OmiteTextosVacios un elemento presente pero vacío no aporta
// valor, igual que text() en XPath.
func TestSelectAll_OmiteTextosVacios(t *testing.T) {
	doc, err := ubl.Parse([]byte(queryFixture))
	require.NoError(t, err)

	values := doc.SelectAll("//cac:Item/cbc:Description", nil)
	assert.Equal(t, []string{"Cable"}, values,
		"la descripción vacía de la línea 2 no debe aparecer")
}

func TestSelectFirst_PredicadoDeAtributo(t *testing.T) {
	doc, err := ubl.Parse([]byte(queryFixture))
	require.NoError(t, err)

	v, ok := doc.SelectFirst("//cbc:Note[@languageLocaleID='linea2']", nil)
	require.True(t, ok)
	assert.Equal(t, "200.75", v)

	_, ok = doc.SelectFirst("//cbc:Note[@languageLocaleID='linea9']", nil)
	assert.False(t, ok, "un predicado sin coincidencias es ausencia, no error")
}

func TestSelectFirst_RutaSinCoincidencias(t *testing.T) {
	doc, err := ubl.Parse([]byte(queryFixture))
	require.NoError(t, err)

	_, ok := doc.SelectFirst("//cac:NoExiste/cbc:Tampoco", nil)
	assert.False(t, ok)
	assert.Empty(t, doc.SelectNodes("", nil), "ruta vacía es lista vacía")
}
