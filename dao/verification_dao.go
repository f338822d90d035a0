// dao/verification_dao.go
package dao

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
)

// Each check returns the ids of rows whose join target is missing.
var verificationChecks = map[string]string{
	"membership_without_user": `
		SELECT m.id FROM business_members m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE u.id IS NULL`,
	"membership_without_business": `
		SELECT m.id FROM business_members m
		LEFT JOIN businesses b ON b.id = m.business_id
		WHERE b.id IS NULL`,
	"business_without_owner_user": `
		SELECT b.id FROM businesses b
		LEFT JOIN users u ON u.id = b.owner_user_id
		WHERE u.id IS NULL`,
	"business_without_owner_membership": `
		SELECT b.id FROM businesses b
		LEFT JOIN business_members m
		  ON m.business_id = b.id AND m.user_id = b.owner_user_id AND m.status = 'ACTIVE'
		WHERE m.id IS NULL`,
}

// Finding lists the offending row ids of one failed check.
type Finding struct {
	Check string   `json:"check"`
	IDs   []string `json:"ids"`
}

type VerificationDAO struct {
	DB *gorm.DB
}

func NewVerificationDAO(db *gorm.DB) *VerificationDAO {
	return &VerificationDAO{DB: db}
}

// CheckNames returns the registered checks in a stable order.
func CheckNames() []string {
	names := make([]string, 0, len(verificationChecks))
	for name := range verificationChecks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every check concurrently. Findings are sorted by check name;
// passing checks are omitted.
func (dao *VerificationDAO) Run(ctx context.Context) ([]Finding, error) {
	names := CheckNames()
	results := make([][]string, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			var ids []string
			if err := dao.DB.WithContext(gctx).Raw(verificationChecks[name]).Scan(&ids).Error; err != nil {
				logger.Error("Membership check failed", zap.String("check", name), zap.Error(err))
				return classify("verify "+name, err)
			}
			sort.Strings(ids)
			results[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []Finding
	for i, name := range names {
		if len(results[i]) > 0 {
			findings = append(findings, Finding{Check: name, IDs: results[i]})
		}
	}
	logger.Info("Membership verification finished", zap.Int("checks", len(names)), zap.Int("findings", len(findings)))
	return findings, nil
}
