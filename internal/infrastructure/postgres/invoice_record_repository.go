package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gestor-facturas/internal/domain"
	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
	"github.com/jhoicas/gestor-facturas/internal/domain/repository"
)

var _ repository.InvoiceRecordRepository = (*InvoiceRecordRepo)(nil)

// InvoiceRecordRepo persistencia plana de facturas extraídas: una fila de
// cabecera en invoices y una fila por línea (reales y generales) en
// invoice_items, con las copias de cabecera desnormalizadas.
type InvoiceRecordRepo struct {
	pool *pgxpool.Pool
}

// NewInvoiceRecordRepository construye el adaptador.
func NewInvoiceRecordRepository(pool *pgxpool.Pool) *InvoiceRecordRepo {
	return &InvoiceRecordRepo{pool: pool}
}

const insertItemQuery = `
	INSERT INTO invoice_items (invoice_id, item, codigo, descripcion, cantidad,
		valor_uni_xcant, valor_uni_sin_iva_xcant, tax_valor_xcant, tax_porcentaje, valor_total_item,
		tax_tipo, valor_uni, tax_valor_uni, document_type_item, prefix_number_pago,
		cufe, consecutive_invoice, prefix_number, issuer_nit, issue_date, expiration_date,
		valor_uni_sin_iva, valor_uni_sin_iva_mas_otros, iva, total, issuer_company)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

// Save inserta el registro completo en una transacción. Si el CUFE ya existe
// retorna domain.ErrDuplicateRecord sin tocar nada: la reejecución de un lote
// no duplica facturas.
func (r *InvoiceRecordRepo) Save(ctx context.Context, record *entity.InvoiceRecord) error {
	var count int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE cufe = $1`, record.CUFE,
	).Scan(&count); err != nil {
		return fmt.Errorf("verificar cufe: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: cufe %s", domain.ErrDuplicateRecord, record.CUFE)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var invoiceID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (subtotal, tax_total, total_valor, total_articulos, cufe,
			document_type, consecutive_invoice, prefix_number, issuer_company, issuer_nit,
			issue_date, expiration_date, created_at, inc_bolsa_total, ajuste_vueltas, propina)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP, $13, $14, $15)
		RETURNING invoice_id`,
		money(record.Subtotal), money(record.TaxTotal), money(record.TotalPayable),
		record.TotalItems(), record.CUFE, string(record.DocumentType),
		record.ConsecutiveID, record.RelatedDocumentID, record.IssuerName, record.IssuerNIT,
		record.IssueDate, record.ExpirationDate,
		money(record.BagTax), money(record.RoundingAdjustment), money(record.Tip),
	).Scan(&invoiceID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cufe %s", domain.ErrDuplicateRecord, record.CUFE)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	// Líneas del documento y, detrás, los conceptos generales no-cero
	// (bolsas, ajuste a vueltas, propina). Los conceptos en cero no
	// materializan fila alguna.
	items := append(append([]entity.LineItem{}, record.Items...), record.GeneralItems()...)
	for _, item := range items {
		if err := insertItem(ctx, tx, invoiceID, &item); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertItem(ctx context.Context, tx pgx.Tx, invoiceID int64, item *entity.LineItem) error {
	_, err := tx.Exec(ctx, insertItemQuery,
		invoiceID, item.LineNumber, item.ProductCode, item.Description, money(item.Quantity),
		money(item.UnitPriceExtended), money(item.UntaxedAmountExtended), money(item.TaxAmountExtended),
		money(item.TaxPercent), money(item.LineTotalExtended),
		item.TaxKind, money(item.UnitPrice), money(item.UnitTax), item.DocumentLabel, item.RelatedDocumentID,
		item.CUFE, item.ConsecutiveID, item.RelatedDocumentID, item.IssuerNIT, item.IssueDate, item.ExpirationDate,
		money(item.UnitUntaxed), money(item.UntaxedPlusSurcharge), money(item.VATComponent),
		money(item.LineTotal), item.IssuerName,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// Reset vacía las tablas para la recarga completa del lector.
func (r *InvoiceRecordRepo) Reset(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx,
		`TRUNCATE invoice_items, invoices RESTART IDENTITY CASCADE`,
	); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

// money convierte el float64 normalizado al NUMERIC de la columna.
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
