// test/mock/tenant.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// MockTenantService is a mock implementation of service.ITenantService
type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) Resolve(ctx context.Context, session *model.Session, selector string) (*model.TenantContext, error) {
	args := m.Called(ctx, session, selector)
	tc, _ := args.Get(0).(*model.TenantContext)
	return tc, args.Error(1)
}

func (m *MockTenantService) ListContexts(ctx context.Context, session *model.Session) ([]model.BusinessChoice, error) {
	args := m.Called(ctx, session)
	choices, _ := args.Get(0).([]model.BusinessChoice)
	return choices, args.Error(1)
}

func (m *MockTenantService) Switch(ctx context.Context, session *model.Session, businessID string) (*model.TenantContext, error) {
	args := m.Called(ctx, session, businessID)
	tc, _ := args.Get(0).(*model.TenantContext)
	return tc, args.Error(1)
}
