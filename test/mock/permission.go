// test/mock/permission.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/acemetillidie0001/obd-premium-apps/model"
	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
	"github.com/acemetillidie0001/obd-premium-apps/service"
)

// MockPermissionService is a mock implementation of service.IPermissionService
type MockPermissionService struct {
	mock.Mock
}

func (m *MockPermissionService) Require(ctx context.Context, session *model.Session, selector string, app model.AppKey, action model.ActionKey) (*model.TenantContext, error) {
	args := m.Called(ctx, session, selector, app, action)
	tc, _ := args.Get(0).(*model.TenantContext)
	return tc, args.Error(1)
}

func (m *MockPermissionService) Check(ctx context.Context, session *model.Session, selector string, app model.AppKey, action model.ActionKey) (*service.CheckResult, error) {
	args := m.Called(ctx, session, selector, app, action)
	result, _ := args.Get(0).(*service.CheckResult)
	return result, args.Error(1)
}

func (m *MockPermissionService) Allowed(ctx context.Context, session *model.Session, selector string) (*model.TenantContext, []pdp_model.Requirement, error) {
	args := m.Called(ctx, session, selector)
	tc, _ := args.Get(0).(*model.TenantContext)
	reqs, _ := args.Get(1).([]pdp_model.Requirement)
	return tc, reqs, args.Error(2)
}
