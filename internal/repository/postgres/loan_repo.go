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

// LoanRepository implements domain.LoanRepository using PostgreSQL
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, customer_name, phone, loan_type, loan_amount, given_amount, start_date,
	duration_months, duration_in_days, duration_unit, interest_rate, created_at, updated_at, deleted_at`

// Create inserts a new loan
func (r *LoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	ctx := context.Background()

	params, err := loanParams(loan)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO loans (customer_name, phone, loan_type, loan_amount, given_amount, start_date,
			duration_months, duration_in_days, duration_unit, interest_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+loanColumns,
		loan.CustomerName, loan.Phone, string(loan.Type()), params.amount, params.givenAmount,
		params.startDate, params.durationMonths, params.durationDays, params.durationUnit, params.interestRate,
	)

	created, err := scanLoan(row)
	if err != nil {
		return nil, err
	}
	created.Transactions = []*domain.Transaction{}
	return created, nil
}

// GetByID retrieves a loan with its transactions. Soft-deleted loans are
// not returned.
func (r *LoanRepository) GetByID(id int32) (*domain.Loan, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE id = $1 AND deleted_at IS NULL`, id)

	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	txns, err := r.transactionsFor(ctx, []int32{id})
	if err != nil {
		return nil, err
	}
	loan.Transactions = txns[id]
	if loan.Transactions == nil {
		loan.Transactions = []*domain.Transaction{}
	}
	return loan, nil
}

// GetAll retrieves every live loan with its transactions, newest first.
func (r *LoanRepository) GetAll() ([]*domain.Loan, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := make([]*domain.Loan, 0)
	ids := make([]int32, 0)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loan.Transactions = []*domain.Transaction{}
		loans = append(loans, loan)
		ids = append(ids, loan.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		txns, err := r.transactionsFor(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, loan := range loans {
			if list, ok := txns[loan.ID]; ok {
				loan.Transactions = list
			}
		}
	}
	return loans, nil
}

// Update replaces the editable fields of a loan
func (r *LoanRepository) Update(loan *domain.Loan) (*domain.Loan, error) {
	ctx := context.Background()

	params, err := loanParams(loan)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE loans
		SET customer_name = $2, phone = $3, loan_type = $4, loan_amount = $5, given_amount = $6,
			start_date = $7, duration_months = $8, duration_in_days = $9, duration_unit = $10,
			interest_rate = $11, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+loanColumns,
		loan.ID, loan.CustomerName, loan.Phone, string(loan.Type()), params.amount, params.givenAmount,
		params.startDate, params.durationMonths, params.durationDays, params.durationUnit, params.interestRate,
	)

	updated, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	txns, err := r.transactionsFor(ctx, []int32{updated.ID})
	if err != nil {
		return nil, err
	}
	updated.Transactions = txns[updated.ID]
	if updated.Transactions == nil {
		updated.Transactions = []*domain.Transaction{}
	}
	return updated, nil
}

// SoftDelete marks a loan as deleted
func (r *LoanRepository) SoftDelete(id int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		UPDATE loans SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// AddTransaction records a repayment against a loan
func (r *LoanRepository) AddTransaction(txn *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(txn.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO loan_transactions (loan_id, amount, payment_date, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, loan_id, amount, payment_date, kind, created_at`,
		txn.LoanID, amount, pgtype.Date{Time: util.Midnight(txn.PaymentDate), Valid: true}, string(txn.Kind),
	)

	created, err := scanTransaction(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return created, nil
}

// ReplaceAll wipes the loan book and reloads it from a snapshot, preserving
// the snapshot's IDs. Runs in a single transaction so a failed restore
// leaves the book untouched.
func (r *LoanRepository) ReplaceAll(loans []*domain.Loan) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM loan_transactions`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM loans`); err != nil {
		return err
	}

	for _, loan := range loans {
		params, err := loanParams(loan)
		if err != nil {
			return err
		}

		deletedAt := pgtype.Timestamptz{}
		if loan.DeletedAt != nil {
			deletedAt = pgtype.Timestamptz{Time: *loan.DeletedAt, Valid: true}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO loans (id, customer_name, phone, loan_type, loan_amount, given_amount, start_date,
				duration_months, duration_in_days, duration_unit, interest_rate, created_at, updated_at, deleted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			loan.ID, loan.CustomerName, loan.Phone, string(loan.Type()), params.amount, params.givenAmount,
			params.startDate, params.durationMonths, params.durationDays, params.durationUnit, params.interestRate,
			loan.CreatedAt, loan.UpdatedAt, deletedAt,
		)
		if err != nil {
			return fmt.Errorf("restore loan %d: %w", loan.ID, err)
		}

		for _, txn := range loan.Transactions {
			amount, err := decimalToPgNumeric(txn.Amount)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO loan_transactions (id, loan_id, amount, payment_date, kind, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				txn.ID, loan.ID, amount, pgtype.Date{Time: util.Midnight(txn.PaymentDate), Valid: true},
				string(txn.Kind), txn.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("restore transaction %d of loan %d: %w", txn.ID, loan.ID, err)
			}
		}
	}

	// Re-align the sequences past the restored IDs
	if _, err := tx.Exec(ctx, `SELECT setval('loans_id_seq', COALESCE((SELECT MAX(id) FROM loans), 1))`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT setval('loan_transactions_id_seq', COALESCE((SELECT MAX(id) FROM loan_transactions), 1))`); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// transactionsFor loads transactions for the given loans, grouped by loan ID
// and ordered by payment date.
func (r *LoanRepository) transactionsFor(ctx context.Context, loanIDs []int32) (map[int32][]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, loan_id, amount, payment_date, kind, created_at
		FROM loan_transactions
		WHERE loan_id = ANY($1)
		ORDER BY payment_date, id`, loanIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int32][]*domain.Transaction)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result[txn.LoanID] = append(result[txn.LoanID], txn)
	}
	return result, rows.Err()
}

// Helper functions

type loanRowParams struct {
	amount         pgtype.Numeric
	givenAmount    pgtype.Numeric
	interestRate   pgtype.Numeric
	startDate      pgtype.Date
	durationMonths pgtype.Int4
	durationDays   pgtype.Int4
	durationUnit   pgtype.Text
}

func loanParams(loan *domain.Loan) (loanRowParams, error) {
	var p loanRowParams
	var err error

	if p.amount, err = decimalToPgNumeric(loan.Amount); err != nil {
		return p, err
	}
	if p.givenAmount, err = decimalToPgNumeric(loan.GivenAmount); err != nil {
		return p, err
	}
	p.startDate = pgtype.Date{Time: util.Midnight(loan.StartDate), Valid: true}

	switch plan := loan.Plan.(type) {
	case domain.FinancePlan:
		p.durationMonths = pgtype.Int4{Int32: plan.DurationMonths, Valid: true}
		p.interestRate, err = decimalToPgNumeric(plan.InterestRate)
	case domain.TenderPlan:
		p.durationDays = pgtype.Int4{Int32: plan.DurationDays, Valid: true}
		p.interestRate, err = decimalToPgNumeric(plan.InterestRate)
	case domain.PeriodicPlan:
		p.durationUnit = pgtype.Text{String: string(plan.Unit), Valid: true}
		p.interestRate, err = decimalToPgNumeric(plan.InterestRate)
	default:
		err = domain.ErrInvalidInput
	}
	return p, err
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		loan           domain.Loan
		loanType       string
		amount         pgtype.Numeric
		givenAmount    pgtype.Numeric
		interestRate   pgtype.Numeric
		startDate      pgtype.Date
		durationMonths pgtype.Int4
		durationDays   pgtype.Int4
		durationUnit   pgtype.Text
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
		deletedAt      pgtype.Timestamptz
	)

	err := row.Scan(&loan.ID, &loan.CustomerName, &loan.Phone, &loanType, &amount, &givenAmount,
		&startDate, &durationMonths, &durationDays, &durationUnit, &interestRate,
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	plan, err := domain.NewPlan(domain.LoanType(loanType), durationMonths.Int32, durationDays.Int32,
		util.PeriodUnit(durationUnit.String), pgNumericToDecimal(interestRate))
	if err != nil {
		return nil, err
	}

	loan.Amount = pgNumericToDecimal(amount)
	loan.GivenAmount = pgNumericToDecimal(givenAmount)
	loan.StartDate = startDate.Time
	loan.Plan = plan
	loan.CreatedAt = createdAt.Time
	loan.UpdatedAt = updatedAt.Time
	if deletedAt.Valid {
		loan.DeletedAt = &deletedAt.Time
	}
	return &loan, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn         domain.Transaction
		amount      pgtype.Numeric
		paymentDate pgtype.Date
		kind        pgtype.Text
		createdAt   pgtype.Timestamptz
	)

	err := row.Scan(&txn.ID, &txn.LoanID, &amount, &paymentDate, &kind, &createdAt)
	if err != nil {
		return nil, err
	}

	txn.Amount = pgNumericToDecimal(amount)
	txn.PaymentDate = paymentDate.Time
	txn.Kind = domain.TransactionKind(kind.String)
	txn.CreatedAt = createdAt.Time
	return &txn, nil
}
