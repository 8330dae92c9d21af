package ubl

import (
	"fmt"

	"github.com/jhoicas/gestor-facturas/internal/domain"
	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
)

// Classification los tres campos que necesita la conciliación contra el
// libro externo; evita pagar la extracción completa por comprimido.
type Classification struct {
	CUFE         string
	DocumentType entity.DocumentType
	PaymentType  entity.PaymentType
}

// Classify lee CUFE, tipo de documento y tipo de pago de un documento
// fiscal. El tipo se toma de la raíz del embebido cuando existe; el CUFE
// siempre del sobre exterior. Un tipo desconocido NO es error aquí: el
// llamador lo rechaza por la tabla de decisión, no por excepción.
func Classify(raw []byte) (*Classification, error) {
	outer, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	x := &extraction{outer: outer, src: outer}
	if embedded := Unwrap(outer); embedded != nil {
		x.embedded = embedded
		x.src = embedded
	}

	return &Classification{
		CUFE: x.outerFirst(entity.NA,
			"//cac:ParentDocumentLineReference/cac:DocumentReference/cbc:UUID",
			"//cbc:UUID",
		),
		DocumentType: classifyRoot(x.src),
		PaymentType:  classifyPayment(x.preferEmbedded("//cac:PaymentMeans/cbc:ID")),
	}, nil
}
