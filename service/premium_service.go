// service/premium_service.go
package service

import (
	"fmt"
	"time"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// freeApps are usable on every plan. All other known apps need premium.
var freeApps = map[model.AppKey]bool{
	model.AppTeamsUsers: true,
}

func IsPremiumApp(app model.AppKey) bool {
	return app.Valid() && !freeApps[app]
}

type PremiumService struct {
	now func() time.Time
}

func NewPremiumService() *PremiumService {
	return &PremiumService{now: time.Now}
}

// Check returns PREMIUM_REQUIRED when app needs a plan business does not have.
func (s *PremiumService) Check(business *model.Business, app model.AppKey) error {
	if !IsPremiumApp(app) {
		return nil
	}
	if business.HasPremium(s.now()) {
		return nil
	}
	id := ""
	if business != nil {
		id = business.ID
	}
	return obd_errors.PremiumRequired(fmt.Errorf("%w: business %q app %s", obd_errors.ErrPremiumRequired, id, app))
}
