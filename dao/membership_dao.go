// dao/membership_dao.go
package dao

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// MembershipStore is the read side the tenant resolver depends on.
type MembershipStore interface {
	// ListMemberships returns every membership of userID in any status, each with
	// its Business loaded.
	ListMemberships(ctx context.Context, userID string) ([]model.Membership, error)
	GetBusiness(ctx context.Context, businessID string) (*model.Business, error)
}

type MembershipDAO struct {
	DB *gorm.DB
}

func NewMembershipDAO(db *gorm.DB) *MembershipDAO {
	return &MembershipDAO{DB: db}
}

// AutoMigrate creates the users, businesses and business_members tables.
func (dao *MembershipDAO) AutoMigrate(ctx context.Context) error {
	logger.Info("Migrating membership schema")
	err := dao.DB.WithContext(ctx).AutoMigrate(&model.Principal{}, &model.Business{}, &model.Membership{})
	return classify("migrate membership schema", err)
}

func (dao *MembershipDAO) ListMemberships(ctx context.Context, userID string) ([]model.Membership, error) {
	start := time.Now()
	var memberships []model.Membership
	err := dao.DB.WithContext(ctx).
		Preload("Business").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error
	if err != nil {
		logger.Error("Failed to list memberships", zap.String("userID", userID), zap.Error(err))
		return nil, classify("list memberships", err)
	}

	logger.Debug("Memberships listed",
		zap.String("userID", userID),
		zap.Int("count", len(memberships)),
		zap.Duration("duration", time.Since(start)))
	return memberships, nil
}

func (dao *MembershipDAO) GetBusiness(ctx context.Context, businessID string) (*model.Business, error) {
	var business model.Business
	err := dao.DB.WithContext(ctx).First(&business, "id = ?", businessID).Error
	if err != nil {
		return nil, classify("get business", err)
	}
	return &business, nil
}

// TouchMembership stamps LastUsedAt when the user explicitly switches business.
func (dao *MembershipDAO) TouchMembership(ctx context.Context, userID, businessID string, at time.Time) error {
	result := dao.DB.WithContext(ctx).
		Model(&model.Membership{}).
		Where("user_id = ? AND business_id = ?", userID, businessID).
		Update("last_used_at", at)
	if result.Error != nil {
		return classify("touch membership", result.Error)
	}
	if result.RowsAffected == 0 {
		return classify("touch membership", gorm.ErrRecordNotFound)
	}
	return nil
}

// Save upserts a membership row. Used by seeding and tests.
func (dao *MembershipDAO) Save(ctx context.Context, membership *model.Membership) error {
	return classify("save membership", dao.DB.WithContext(ctx).Save(membership).Error)
}

func (dao *MembershipDAO) SaveBusiness(ctx context.Context, business *model.Business) error {
	return classify("save business", dao.DB.WithContext(ctx).Save(business).Error)
}

func (dao *MembershipDAO) SaveUser(ctx context.Context, user *model.Principal) error {
	return classify("save user", dao.DB.WithContext(ctx).Save(user).Error)
}
