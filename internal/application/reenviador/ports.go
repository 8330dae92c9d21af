package reenviador

import "context"

// PostedRecord una entrada contabilizada del libro externo.
type PostedRecord struct {
	ID         int64
	FiscalCode string
}

// LedgerQuery consulta los códigos fiscales ya contabilizados de una
// compañía. Un resultado vacío o con error se trata como cero códigos
// conocidos: nada se despacha por equivocación.
type LedgerQuery interface {
	PostedRecords(ctx context.Context, companyID int) ([]PostedRecord, error)
}

// NotificationDispatch envía el comprimido al destinatario. Si falla, el
// comprimido queda en origen para reintentar en la próxima corrida.
type NotificationDispatch interface {
	SendInvoice(recipient, zipPath string) error
}
