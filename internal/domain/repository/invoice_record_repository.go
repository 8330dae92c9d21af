package repository

import (
	"context"

	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
)

// InvoiceRecordRepository contrato de persistencia plana de facturas.
//
// Save inserta cabecera, líneas y conceptos generales no-cero en una sola
// transacción; un CUFE ya visto retorna domain.ErrDuplicateRecord (guarda de
// idempotencia ante reejecuciones, no un fallo).
// Reset vacía las tablas antes de una recarga completa del lector.
type InvoiceRecordRepository interface {
	Save(ctx context.Context, record *entity.InvoiceRecord) error
	Reset(ctx context.Context) error
}
