package entity

// LineItem una línea facturable del documento.
//
// Los campos "Extended" (XCant) son los valores tal como vienen por la
// cantidad completa de la línea; los unitarios se derivan dividiendo por
// Quantity, que nunca es cero. Las copias de cabecera al final son
// desnormalización intencional para la persistencia plana, no un defecto.
type LineItem struct {
	LineNumber  string
	ProductCode string
	Description string
	Quantity    float64 // 1 cuando el documento no la trae o trae cero

	UnitPriceExtended     float64 // valor unitario x cantidad
	TaxAmountExtended     float64 // impuesto x cantidad
	UntaxedAmountExtended float64 // base gravable x cantidad
	LineTotalExtended     float64 // valor total de la línea

	UnitPrice   float64
	UnitTax     float64
	UnitUntaxed float64

	TaxKind    string // nombre del esquema: IVA, INC, ...
	TaxPercent float64

	// Compuestos derivados: el INC se suma a la base, el IVA va aparte.
	UntaxedPlusSurcharge float64
	VATComponent         float64
	LineTotal            float64 // UntaxedPlusSurcharge + VATComponent

	DocumentLabel string

	// Copias desnormalizadas de la cabecera.
	CUFE              string
	ConsecutiveID     string
	RelatedDocumentID string
	IssuerName        string
	IssuerNIT         string
	IssueDate         string
	ExpirationDate    string
}
