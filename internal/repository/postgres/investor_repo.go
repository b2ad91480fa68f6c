package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
)

// InvestorRepository implements domain.InvestorRepository using PostgreSQL
type InvestorRepository struct {
	pool *pgxpool.Pool
}

// NewInvestorRepository creates a new InvestorRepository
func NewInvestorRepository(pool *pgxpool.Pool) *InvestorRepository {
	return &InvestorRepository{pool: pool}
}

const investorColumns = `id, name, investment_type, investment_amount, profit_rate, start_date,
	status, created_at, updated_at, deleted_at`

// Create inserts a new investor
func (r *InvestorRepository) Create(investor *domain.Investor) (*domain.Investor, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(investor.InvestmentAmount)
	if err != nil {
		return nil, err
	}
	rate, err := decimalToPgNumeric(investor.ProfitRate)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO investors (name, investment_type, investment_amount, profit_rate, start_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+investorColumns,
		investor.Name, string(investor.InvestmentType), amount, rate,
		pgtype.Date{Time: util.Midnight(investor.StartDate), Valid: true}, string(investor.Status),
	)

	created, err := scanInvestor(row)
	if err != nil {
		return nil, err
	}
	created.Payments = []*domain.InvestorPayment{}
	return created, nil
}

// GetByID retrieves an investor with their payments
func (r *InvestorRepository) GetByID(id int32) (*domain.Investor, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+investorColumns+`
		FROM investors
		WHERE id = $1 AND deleted_at IS NULL`, id)

	investor, err := scanInvestor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestorNotFound
		}
		return nil, err
	}

	payments, err := r.paymentsFor(ctx, []int32{id})
	if err != nil {
		return nil, err
	}
	investor.Payments = payments[id]
	if investor.Payments == nil {
		investor.Payments = []*domain.InvestorPayment{}
	}
	return investor, nil
}

// GetAll retrieves every live investor with payments, newest first.
func (r *InvestorRepository) GetAll() ([]*domain.Investor, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+investorColumns+`
		FROM investors
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	investors := make([]*domain.Investor, 0)
	ids := make([]int32, 0)
	for rows.Next() {
		investor, err := scanInvestor(rows)
		if err != nil {
			return nil, err
		}
		investor.Payments = []*domain.InvestorPayment{}
		investors = append(investors, investor)
		ids = append(ids, investor.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		payments, err := r.paymentsFor(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, investor := range investors {
			if list, ok := payments[investor.ID]; ok {
				investor.Payments = list
			}
		}
	}
	return investors, nil
}

// Update replaces the editable fields of an investor
func (r *InvestorRepository) Update(investor *domain.Investor) (*domain.Investor, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(investor.InvestmentAmount)
	if err != nil {
		return nil, err
	}
	rate, err := decimalToPgNumeric(investor.ProfitRate)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE investors
		SET name = $2, investment_type = $3, investment_amount = $4, profit_rate = $5,
			start_date = $6, status = $7, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+investorColumns,
		investor.ID, investor.Name, string(investor.InvestmentType), amount, rate,
		pgtype.Date{Time: util.Midnight(investor.StartDate), Valid: true}, string(investor.Status),
	)

	updated, err := scanInvestor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestorNotFound
		}
		return nil, err
	}

	payments, err := r.paymentsFor(ctx, []int32{updated.ID})
	if err != nil {
		return nil, err
	}
	updated.Payments = payments[updated.ID]
	if updated.Payments == nil {
		updated.Payments = []*domain.InvestorPayment{}
	}
	return updated, nil
}

// UpdateStatus changes only the investor's status
func (r *InvestorRepository) UpdateStatus(id int32, status domain.InvestorStatus) (*domain.Investor, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		UPDATE investors
		SET status = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+investorColumns,
		id, string(status),
	)

	updated, err := scanInvestor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestorNotFound
		}
		return nil, err
	}

	payments, err := r.paymentsFor(ctx, []int32{id})
	if err != nil {
		return nil, err
	}
	updated.Payments = payments[id]
	if updated.Payments == nil {
		updated.Payments = []*domain.InvestorPayment{}
	}
	return updated, nil
}

// SoftDelete marks an investor as deleted
func (r *InvestorRepository) SoftDelete(id int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		UPDATE investors SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvestorNotFound
	}
	return nil
}

// AddPayment records a payout to an investor
func (r *InvestorRepository) AddPayment(payment *domain.InvestorPayment) (*domain.InvestorPayment, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO investor_payments (investor_id, amount, payment_date, payment_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, investor_id, amount, payment_date, payment_type, created_at`,
		payment.InvestorID, amount, pgtype.Date{Time: util.Midnight(payment.PaymentDate), Valid: true},
		string(payment.PaymentType),
	)

	created, err := scanInvestorPayment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrInvestorNotFound
		}
		return nil, err
	}
	return created, nil
}

// ReplaceAll wipes the investor book and reloads it from a snapshot,
// preserving the snapshot's IDs.
func (r *InvestorRepository) ReplaceAll(investors []*domain.Investor) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM investor_payments`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM investors`); err != nil {
		return err
	}

	for _, investor := range investors {
		amount, err := decimalToPgNumeric(investor.InvestmentAmount)
		if err != nil {
			return err
		}
		rate, err := decimalToPgNumeric(investor.ProfitRate)
		if err != nil {
			return err
		}

		deletedAt := pgtype.Timestamptz{}
		if investor.DeletedAt != nil {
			deletedAt = pgtype.Timestamptz{Time: *investor.DeletedAt, Valid: true}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO investors (id, name, investment_type, investment_amount, profit_rate, start_date,
				status, created_at, updated_at, deleted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			investor.ID, investor.Name, string(investor.InvestmentType), amount, rate,
			pgtype.Date{Time: util.Midnight(investor.StartDate), Valid: true}, string(investor.Status),
			investor.CreatedAt, investor.UpdatedAt, deletedAt,
		)
		if err != nil {
			return fmt.Errorf("restore investor %d: %w", investor.ID, err)
		}

		for _, payment := range investor.Payments {
			paid, err := decimalToPgNumeric(payment.Amount)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO investor_payments (id, investor_id, amount, payment_date, payment_type, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				payment.ID, investor.ID, paid,
				pgtype.Date{Time: util.Midnight(payment.PaymentDate), Valid: true},
				string(payment.PaymentType), payment.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("restore payment %d of investor %d: %w", payment.ID, investor.ID, err)
			}
		}
	}

	if _, err := tx.Exec(ctx, `SELECT setval('investors_id_seq', COALESCE((SELECT MAX(id) FROM investors), 1))`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT setval('investor_payments_id_seq', COALESCE((SELECT MAX(id) FROM investor_payments), 1))`); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *InvestorRepository) paymentsFor(ctx context.Context, investorIDs []int32) (map[int32][]*domain.InvestorPayment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, investor_id, amount, payment_date, payment_type, created_at
		FROM investor_payments
		WHERE investor_id = ANY($1)
		ORDER BY payment_date, id`, investorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int32][]*domain.InvestorPayment)
	for rows.Next() {
		payment, err := scanInvestorPayment(rows)
		if err != nil {
			return nil, err
		}
		result[payment.InvestorID] = append(result[payment.InvestorID], payment)
	}
	return result, rows.Err()
}

// Helper functions

func scanInvestor(row pgx.Row) (*domain.Investor, error) {
	var (
		investor       domain.Investor
		investmentType string
		status         string
		amount         pgtype.Numeric
		rate           pgtype.Numeric
		startDate      pgtype.Date
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
		deletedAt      pgtype.Timestamptz
	)

	err := row.Scan(&investor.ID, &investor.Name, &investmentType, &amount, &rate, &startDate,
		&status, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	investor.InvestmentType = domain.InvestmentType(investmentType)
	investor.InvestmentAmount = pgNumericToDecimal(amount)
	investor.ProfitRate = pgNumericToDecimal(rate)
	investor.StartDate = startDate.Time
	investor.Status = domain.InvestorStatus(status)
	investor.CreatedAt = createdAt.Time
	investor.UpdatedAt = updatedAt.Time
	if deletedAt.Valid {
		investor.DeletedAt = &deletedAt.Time
	}
	return &investor, nil
}

func scanInvestorPayment(row pgx.Row) (*domain.InvestorPayment, error) {
	var (
		payment     domain.InvestorPayment
		amount      pgtype.Numeric
		paymentDate pgtype.Date
		paymentType string
		createdAt   pgtype.Timestamptz
	)

	err := row.Scan(&payment.ID, &payment.InvestorID, &amount, &paymentDate, &paymentType, &createdAt)
	if err != nil {
		return nil, err
	}

	payment.Amount = pgNumericToDecimal(amount)
	payment.PaymentDate = paymentDate.Time
	payment.PaymentType = domain.PaymentType(paymentType)
	payment.CreatedAt = createdAt.Time
	return &payment, nil
}
