package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iho/fxledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo  AccountRepository
	currencyRepo CurrencyRepository
	idGen        IDGenerator
	clock        domain.Clock
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, currencyRepo CurrencyRepository, idGen IDGenerator, clock domain.Clock) *AccountUseCase {
	return &AccountUseCase{
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		idGen:        idGen,
		clock:        clock,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	FullName string
	Currency string
}

// CreateAccount creates a new account. Its currency must already be in the
// currency directory.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.FullName)
	if err := domain.ValidateAccountName(name); err != nil {
		return nil, err
	}

	code := domain.NormalizeCurrencyCode(input.Currency)
	if err := domain.ValidateCurrencyCode(code); err != nil {
		return nil, err
	}

	if _, err := uc.currencyRepo.GetByCode(ctx, code); err != nil {
		if errors.Is(err, domain.ErrCurrencyNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCurrencyNotFound, code)
		}
		return nil, err
	}

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		FullName:  name,
		Currency:  code,
		CreatedAt: uc.clock.Now().UTC().Truncate(time.Microsecond),
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by its full name.
func (uc *AccountUseCase) GetAccount(ctx context.Context, fullName string) (*domain.Account, error) {
	return uc.accountRepo.GetByFullName(ctx, strings.TrimSpace(fullName))
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts ordered by full name.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}
