// service/services.go
package service

import (
	"github.com/acemetillidie0001/obd-premium-apps/dao"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

type Services struct {
	Tenant     ITenantService
	Permission IPermissionService
}

func InitializeServices(
	store dao.MembershipStore,
	cacheService *util.CacheService,
	eventBus *util.EventBus,
) (*Services, error) {
	tenants := NewTenantService(store, cacheService)
	services := &Services{
		Tenant:     tenants,
		Permission: NewPermissionService(tenants, NewPremiumService(), eventBus),
	}

	return services, nil
}
