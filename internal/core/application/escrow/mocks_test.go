package escrow_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/escrowd/internal/core/ports"
)

// **** ValueTransfer ****

type mockValueTransfer struct {
	mock.Mock
}

func (m *mockValueTransfer) Transfer(
	ctx context.Context, reference, asset, from, to string, amount uint64,
) error {
	args := m.Called(reference, asset, from, to, amount)
	return args.Error(0)
}

// **** Authorizer ****

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Caller(ctx context.Context) (string, error) {
	args := m.Called()

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockAuthorizer) RequireAuth(
	ctx context.Context, account string, inv ports.Invocation,
) error {
	args := m.Called(account, inv)
	return args.Error(0)
}
