package ubl

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/jhoicas/gestor-facturas/internal/domain"
	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
)

// Nombres de esquema tributario que reconoce la extracción.
const (
	taxSchemeIVA = "IVA"
	taxSchemeINC = "INC"
	taxSchemeBag = "INC Bolsas"

	defaultTipDescription = "Otras deducciones, cargos o impuestos"
)

// extraction lleva los dos árboles durante una extracción. src es el embebido
// cuando existe; CUFE e identidad se leen siempre del sobre exterior (el
// envoltorio es el portador legal de la identidad).
type extraction struct {
	outer    *Document
	embedded *Document
	src      *Document
}

// Extract analiza un documento fiscal UBL y produce el registro completo:
// totales de cabecera, clasificación documento/pago y la secuencia de líneas.
//
// Falla únicamente cuando la raíz (la del embebido si existe, la exterior si
// no) no es Invoice ni CreditNote — sin eso no se conoce el elemento de
// línea — o cuando el XML exterior no parsea. Todo lo demás es tolerante:
// los campos ausentes valen 0 o el centinela NA. La extracción no registra
// logs; el llamador decide la política de descarte.
func Extract(raw []byte) (*entity.InvoiceRecord, error) {
	outer, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	x := &extraction{outer: outer, src: outer}
	if embedded := Unwrap(outer); embedded != nil {
		x.embedded = embedded
		x.src = embedded
	}

	rec := &entity.InvoiceRecord{BagTaxName: taxSchemeBag}

	rec.DocumentType = classifyRoot(x.src)
	rec.PaymentType = classifyPayment(x.preferEmbedded("//cac:PaymentMeans/cbc:ID"))

	// Identidad: siempre del sobre exterior.
	rec.CUFE = x.outerFirst(entity.NA,
		"//cac:ParentDocumentLineReference/cac:DocumentReference/cbc:UUID",
		"//cbc:UUID",
	)
	rec.ConsecutiveID = x.outerFirst(entity.NA, "//cbc:ID")
	rec.RelatedDocumentID = x.outerFirst(entity.NA, "//cbc:ParentDocumentID", "//cbc:ID")
	rec.IssuerName = x.outerFirst(entity.NA,
		"//cac:SenderParty/cac:PartyTaxScheme/cbc:RegistrationName",
		"//cac:AccountingSupplierParty/cac:Party/cac:PartyTaxScheme/cbc:RegistrationName",
	)
	rec.IssuerNIT = x.outerFirst(entity.NA,
		"//cac:SenderParty/cac:PartyTaxScheme/cbc:CompanyID",
		"//cac:AccountingSupplierParty/cac:Party/cac:PartyTaxScheme/cbc:CompanyID",
	)
	rec.CustomerNIT = x.outerFirst("",
		"//cac:ReceiverParty/cac:PartyTaxScheme/cbc:CompanyID",
		"//cac:AccountingCustomerParty/cac:Party/cac:PartyTaxScheme/cbc:CompanyID",
	)

	// Fechas.
	rec.IssueDate = x.outerFirst(entity.ZeroDate, "//cbc:IssueDate")
	rec.ExpirationDate = x.preferEmbeddedDefault(entity.ZeroDate, "//cac:PaymentMeans/cbc:PaymentDueDate")
	if rec.ExpirationDate == entity.ZeroDate {
		rec.ExpirationDate = rec.IssueDate
	}

	// Totales de cabecera.
	rec.Subtotal = Normalize(x.srcFirst("", "//cac:LegalMonetaryTotal/cbc:LineExtensionAmount"))
	rec.RoundingAdjustment = Normalize(x.srcFirst("", "//cac:LegalMonetaryTotal/cbc:PayableRoundingAmount"))
	rec.TotalPayable = Normalize(x.srcFirst("", "//cac:LegalMonetaryTotal/cbc:PayableAmount"))
	x.extractHeaderTaxes(rec)
	x.extractTip(rec)

	// Líneas.
	lineName, err := lineElementName(rec.DocumentType)
	if err != nil {
		return nil, err
	}
	for _, node := range x.src.SelectNodes("//cac:"+lineName, nil) {
		rec.Items = append(rec.Items, x.extractItem(node, rec))
	}

	return rec, nil
}

func classifyRoot(d *Document) entity.DocumentType {
	switch strings.ToUpper(d.Root().Tag) {
	case "INVOICE":
		return entity.DocumentTypeInvoice
	case "CREDITNOTE":
		return entity.DocumentTypeCreditNote
	default:
		return entity.DocumentTypeUnknown
	}
}

func classifyPayment(meansID string) entity.PaymentType {
	switch meansID {
	case "1":
		return entity.PaymentTypeCash
	case "2":
		return entity.PaymentTypeCredit
	default:
		return entity.PaymentTypeUnknown
	}
}

// lineElementName nombre del elemento de línea según el tipo de documento.
// Sin tipo no hay extracción posible de ítems: es el único error duro.
func lineElementName(t entity.DocumentType) (string, error) {
	switch t {
	case entity.DocumentTypeInvoice:
		return "InvoiceLine", nil
	case entity.DocumentTypeCreditNote:
		return "CreditNoteLine", nil
	default:
		return "", fmt.Errorf("%w: raíz no es Invoice ni CreditNote", domain.ErrExtraction)
	}
}

// extractHeaderTaxes acumula los TaxTotal de cabecera (los que no cuelgan de
// un elemento de línea). IVA o INC van a TaxTotal; "INC Bolsas" a BagTax.
// Si varios nodos caen en el mismo balde gana el último: en la práctica hay
// a lo sumo uno por balde y así lo asume también la persistencia.
func (x *extraction) extractHeaderTaxes(rec *entity.InvoiceRecord) {
	lineName, err := lineElementName(rec.DocumentType)
	if err != nil {
		lineName = "InvoiceLine"
	}
	for _, node := range x.src.SelectNodes("//cac:TaxTotal", nil) {
		if hasAncestor(x.src, node, lineName) {
			continue
		}
		name, _ := x.src.SelectFirst("./cac:TaxSubtotal/cac:TaxCategory/cac:TaxScheme/cbc:Name", node)
		amount := Normalize(firstOr(x.src.SelectAll("./cbc:TaxAmount", node), "0"))
		switch name {
		case taxSchemeIVA, taxSchemeINC:
			rec.TaxTotal = amount
		case taxSchemeBag:
			rec.BagTax = amount
		}
	}
}

// extractTip propina con fallback de dos rutas: cargo a nivel de documento
// primero, cargo a nivel de línea después. Primer valor no-default gana.
func (x *extraction) extractTip(rec *entity.InvoiceRecord) {
	rec.Tip = x.src.FirstNonZero(nil,
		"//cac:AllowanceCharge/cbc:Amount",
		"//cac:InvoiceLine/cac:AllowanceCharge/cbc:Amount",
	)
	rec.TipDescription = defaultTipDescription
	for _, path := range []string{
		"//cac:AllowanceCharge/cbc:AllowanceChargeReason",
		"//cac:InvoiceLine/cac:AllowanceCharge/cbc:AllowanceChargeReason",
	} {
		if v, ok := x.src.SelectFirst(path, nil); ok && v != defaultTipDescription {
			rec.TipDescription = v
			break
		}
	}
}

// extractItem extrae una línea completa. Todas las consultas van con scope en
// el nodo de línea para no contaminarse con líneas hermanas.
func (x *extraction) extractItem(node *etree.Element, rec *entity.InvoiceRecord) entity.LineItem {
	src := x.src

	quantity := Normalize(firstOr(src.SelectAll("./cbc:InvoicedQuantity", node), ""))
	if quantity == 0 {
		quantity = 1
	}

	unitPriceExt := src.FirstNonZero(node,
		"./cbc:Note[@languageLocaleID='linea2']",
		"./cbc:Note[@languageLocaleID='linea1']",
		"./cac:Price/cbc:PriceAmount",
		"./cbc:LineExtensionAmount",
	)
	taxExt := src.FirstNonZero(node,
		"./cac:TaxTotal/cbc:TaxAmount",
		"./cac:TaxTotal/cac:TaxSubtotal/cbc:TaxAmount",
	)
	untaxedExt := src.FirstNonZero(node,
		"./cac:TaxTotal/cac:TaxSubtotal/cbc:TaxableAmount",
		"./cbc:LineExtensionAmount",
		"./cac:Price/cbc:PriceAmount",
	)
	if untaxedExt == 0 {
		// Sin base gravable explícita se calcula, nunca se vuelve a consultar.
		untaxedExt = unitPriceExt - taxExt
	}
	lineTotalExt := src.FirstNonZero(node,
		"./cbc:Note[@languageLocaleID='linea1']",
		"./cbc:Note[@languageLocaleID='linea2']",
	)
	if lineTotalExt == 0 {
		lineTotalExt = unitPriceExt
	}

	taxKind := firstOr(src.SelectAll("./cac:TaxTotal/cac:TaxSubtotal/cac:TaxCategory/cac:TaxScheme/cbc:Name", node), "")
	taxPercent := Normalize(firstOr(src.SelectAll("./cac:TaxTotal/cac:TaxSubtotal/cac:TaxCategory/cbc:Percent", node), ""))

	unitPrice := unitPriceExt / quantity
	unitTax := taxExt / quantity
	unitUntaxed := untaxedExt / quantity

	untaxedPlusSurcharge := unitUntaxed
	if taxKind == taxSchemeINC {
		untaxedPlusSurcharge = unitUntaxed + unitTax
	}
	vat := 0.0
	if taxKind == taxSchemeIVA {
		vat = unitTax
	}

	return entity.LineItem{
		LineNumber:  firstOr(src.SelectAll("./cbc:ID", node), ""),
		ProductCode: firstOr(src.SelectAll("./cac:Item/cac:StandardItemIdentification/cbc:ID", node), ""),
		Description: firstOr(src.SelectAll("./cac:Item/cbc:Description", node), ""),
		Quantity:    quantity,

		UnitPriceExtended:     unitPriceExt,
		TaxAmountExtended:     taxExt,
		UntaxedAmountExtended: untaxedExt,
		LineTotalExtended:     lineTotalExt,

		UnitPrice:   unitPrice,
		UnitTax:     unitTax,
		UnitUntaxed: unitUntaxed,

		TaxKind:    taxKind,
		TaxPercent: taxPercent,

		UntaxedPlusSurcharge: untaxedPlusSurcharge,
		VATComponent:         vat,
		LineTotal:            untaxedPlusSurcharge + vat,

		DocumentLabel: rec.DocumentType.ItemLabel(),

		CUFE:              rec.CUFE,
		ConsecutiveID:     rec.ConsecutiveID,
		RelatedDocumentID: rec.RelatedDocumentID,
		IssuerName:        rec.IssuerName,
		IssuerNIT:         rec.IssuerNIT,
		IssueDate:         rec.IssueDate,
		ExpirationDate:    rec.ExpirationDate,
	}
}

// FirstNonZero evalúa rutas candidatas en orden y devuelve el primer valor
// normalizado distinto de cero. Es la rutina única detrás de todas las
// cadenas de fallback de precios e impuestos; ninguna se duplica por campo.
func (d *Document) FirstNonZero(scope *etree.Element, paths ...string) float64 {
	for _, path := range paths {
		if v, ok := d.SelectFirst(path, scope); ok {
			if n := Normalize(v); n != 0 {
				return n
			}
		}
	}
	return 0
}

// hasAncestor indica si el elemento cuelga (a cualquier profundidad) de un
// elemento cac con el nombre local dado.
func hasAncestor(d *Document, el *etree.Element, local string) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Tag == local && p.NamespaceURI() == NsCac {
			return true
		}
	}
	return false
}

// srcFirst primer valor de las rutas sobre el documento preferido
// (embebido si existe, exterior si no).
func (x *extraction) srcFirst(def string, paths ...string) string {
	return firstAcross(x.src, nil, def, paths)
}

// outerFirst primer valor de las rutas, siempre sobre el sobre exterior.
func (x *extraction) outerFirst(def string, paths ...string) string {
	return firstAcross(x.outer, nil, def, paths)
}

// preferEmbedded consulta el embebido primero y el exterior después.
func (x *extraction) preferEmbedded(paths ...string) string {
	return x.preferEmbeddedDefault("", paths...)
}

func (x *extraction) preferEmbeddedDefault(def string, paths ...string) string {
	if x.embedded != nil {
		if v := firstAcross(x.embedded, nil, "", paths); v != "" {
			return v
		}
	}
	return firstAcross(x.outer, nil, def, paths)
}

func firstAcross(d *Document, scope *etree.Element, def string, paths []string) string {
	for _, path := range paths {
		if v, ok := d.SelectFirst(path, scope); ok {
			return v
		}
	}
	return def
}

func firstOr(values []string, def string) string {
	if len(values) > 0 {
		return values[0]
	}
	return def
}
