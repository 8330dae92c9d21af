package entity

// Centinelas usados cuando un campo opcional no aparece en el documento.
// Se conservan los mismos literales que persiste la base de datos.
const (
	NA       = "N/A"
	ZeroDate = "0000-00-00"
)

// DocumentType tipo de documento fiscal, derivado del nombre local de la raíz.
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "Factura electrónica"
	DocumentTypeCreditNote DocumentType = "Nota crédito"
	DocumentTypeUnknown    DocumentType = NA
)

// PaymentType medio de pago según cbc:ID de cac:PaymentMeans ("1" o "2").
type PaymentType string

const (
	PaymentTypeCash    PaymentType = "contado"
	PaymentTypeCredit  PaymentType = "credito"
	PaymentTypeUnknown PaymentType = NA
)

// ItemLabel etiqueta contable de las líneas según el tipo de documento.
func (t DocumentType) ItemLabel() string {
	switch t {
	case DocumentTypeInvoice:
		return "Facturas de Proveedores"
	case DocumentTypeCreditNote:
		return "Notas Credito Proveedores"
	default:
		return NA
	}
}

// InvoiceRecord registro normalizado extraído de un documento fiscal UBL.
// Todos los montos son float64 ya normalizados; los nodos ausentes valen 0.
type InvoiceRecord struct {
	CUFE              string // Código Único de Factura Electrónica; NA si no aparece
	DocumentType      DocumentType
	PaymentType       PaymentType
	IssueDate         string // AAAA-MM-DD; ZeroDate si no aparece
	ExpirationDate    string // si falta, igual a IssueDate
	IssuerName        string
	IssuerNIT         string
	CustomerNIT       string // solo para validar el destinatario
	ConsecutiveID     string
	RelatedDocumentID string // cbc:ParentDocumentID; cae a ConsecutiveID si falta

	Subtotal           float64
	TaxTotal           float64 // IVA o INC de cabecera
	BagTax             float64 // INC Bolsas
	BagTaxName         string
	RoundingAdjustment float64
	Tip                float64
	TipDescription     string
	TotalPayable       float64

	// Items en orden de documento; nunca se reordenan. Vacío es legal.
	Items []LineItem
}

// TotalItems cantidad de líneas extraídas.
func (r *InvoiceRecord) TotalItems() int {
	return len(r.Items)
}

// GeneralItems materializa como líneas sintéticas los conceptos generales
// (impuesto a bolsas, ajuste a vueltas y propina) que tengan valor distinto
// de cero. Los conceptos en cero no generan línea alguna.
func (r *InvoiceRecord) GeneralItems() []LineItem {
	type general struct {
		description string
		total       float64
	}
	candidates := []general{
		{r.BagTaxName, r.BagTax},
		{"Ajuste de vueltas", r.RoundingAdjustment},
		{r.TipDescription, r.Tip},
	}

	var items []LineItem
	for _, g := range candidates {
		if g.total == 0 {
			continue
		}
		items = append(items, LineItem{
			LineNumber:        NA,
			ProductCode:       NA,
			Description:       g.description,
			Quantity:          1,
			LineTotalExtended: g.total,
			UnitPrice:         g.total,
			LineTotal:         g.total,
			TaxKind:           NA,
			DocumentLabel:     r.DocumentType.ItemLabel(),
			CUFE:              r.CUFE,
			ConsecutiveID:     r.ConsecutiveID,
			RelatedDocumentID: r.RelatedDocumentID,
			IssuerName:        r.IssuerName,
			IssuerNIT:         r.IssuerNIT,
			IssueDate:         r.IssueDate,
			ExpirationDate:    r.ExpirationDate,
		})
	}
	return items
}
