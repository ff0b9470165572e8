package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/postgres/generated"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		FullName:  account.FullName,
		Currency:  account.Currency,
		CreatedAt: timeToPgTimestamptz(account.CreatedAt),
	})

	switch pgErrorCode(err) {
	case pgErrUniqueViolation:
		return domain.ErrAccountExists
	case pgErrForeignKeyViolation:
		return domain.ErrCurrencyNotFound
	}

	return err
}

// GetByFullName retrieves an account by its full name.
func (r *AccountRepository) GetByFullName(ctx context.Context, fullName string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByFullName(ctx, fullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByFullNames retrieves the accounts that exist among fullNames.
func (r *AccountRepository) GetByFullNames(ctx context.Context, fullNames []string) ([]*domain.Account, error) {
	rows, err := r.queries.GetAccountsByFullNames(ctx, fullNames)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}
	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:        row.ID,
		FullName:  row.FullName,
		Currency:  row.Currency,
		CreatedAt: row.CreatedAt.Time,
	}
}
