package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-admin/internal/domain/payment"
	xerrors "service-admin/internal/pkg/errors"
)

const paymentColumns = `
	id, subscription_id, user_uuid, service_id, order_id, transaction_id,
	amount, tax_amount, discount_amount, final_amount, currency,
	payment_method, payment_provider, status, payment_type,
	billing_cycle, billing_period_start, billing_period_end, due_date, paid_at,
	refunded_amount, refunded_at, refund_reason, refund_transaction_id,
	created_at, updated_at`

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment

	err := row.Scan(
		&p.ID, &p.SubscriptionID, &p.UserUUID, &p.ServiceID, &p.OrderID, &p.TransactionID,
		&p.Amount, &p.TaxAmount, &p.DiscountAmount, &p.FinalAmount, &p.Currency,
		&p.PaymentMethod, &p.PaymentProvider, &p.Status, &p.PaymentType,
		&p.BillingCycle, &p.BillingPeriodStart, &p.BillingPeriodEnd, &p.DueDate, &p.PaidAt,
		&p.RefundedAmount, &p.RefundedAt, &p.RefundReason, &p.RefundTransactionID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreateWithTx inserts a payment row within a transaction.
func (r *PaymentRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			subscription_id, user_uuid, service_id, order_id, transaction_id,
			amount, tax_amount, discount_amount, final_amount, currency,
			payment_method, payment_provider, status, payment_type,
			billing_cycle, billing_period_start, billing_period_end, due_date, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		p.SubscriptionID, p.UserUUID, p.ServiceID, p.OrderID, p.TransactionID,
		p.Amount, p.TaxAmount, p.DiscountAmount, p.FinalAmount, p.Currency,
		p.PaymentMethod, p.PaymentProvider, p.Status, p.PaymentType,
		p.BillingCycle, p.BillingPeriodStart, p.BillingPeriodEnd, p.DueDate, p.PaidAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return p, nil
}

// FindByIDForUpdate locks the payment row for the lifetime of tx.
func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	p, err := scanPayment(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return p, nil
}

// ListBySubscription returns every payment of a subscription, newest first.
func (r *PaymentRepository) ListBySubscription(ctx context.Context, subscriptionID int64) ([]payment.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE subscription_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []payment.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}

	return payments, nil
}

// ListCompletedBySubscriptionWithTx returns the completed and partially
// refunded payments of a subscription, oldest first, locked for update.
// Refund distribution walks these rows in order.
func (r *PaymentRepository) ListCompletedBySubscriptionWithTx(ctx context.Context, tx pgx.Tx, subscriptionID int64) ([]payment.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE subscription_id = $1 AND status IN ('completed', 'refunded')
		ORDER BY created_at ASC
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []payment.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}

	return payments, nil
}

// MarkCompletedWithTx settles a payment: status, transaction reference and
// paid_at.
func (r *PaymentRepository) MarkCompletedWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	query := `
		UPDATE payments SET
			status = $1, transaction_id = $2, paid_at = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := tx.Exec(ctx, query, p.Status, p.TransactionID, p.PaidAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to mark payment completed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// UpdateRefundWithTx writes back the refund fields and status of a payment.
func (r *PaymentRepository) UpdateRefundWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	query := `
		UPDATE payments SET
			status = $1, refunded_amount = $2, refunded_at = $3,
			refund_reason = $4, refund_transaction_id = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := tx.Exec(ctx, query,
		p.Status, p.RefundedAmount, p.RefundedAt,
		p.RefundReason, p.RefundTransactionID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment refund: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
