package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// ErrUnreadableArchive el ZIP no pudo abrirse tras agotar los reintentos.
	ErrUnreadableArchive = errors.New("archivo comprimido ilegible")
	// ErrExtraction la raíz del documento no es Invoice/CreditNote o ningún XML parseó.
	ErrExtraction = errors.New("documento fiscal no clasificable")
	// ErrValidationMismatch el NIT del cliente o la combinación tipo/pago no es válida.
	ErrValidationMismatch = errors.New("validación de destinatario fallida")
	// ErrNoXMLMember el comprimido no contiene ningún miembro XML.
	ErrNoXMLMember = errors.New("el comprimido no contiene XML")
	// ErrDuplicateRecord el CUFE ya existe en la base de datos (reejecución idempotente).
	ErrDuplicateRecord = errors.New("factura ya registrada")
)
