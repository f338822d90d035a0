// dao/dao_test.go
package dao

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.InitNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a second connection would open a second, empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, NewMembershipDAO(db).AutoMigrate(context.Background()))
	return db
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seed(t *testing.T, db *gorm.DB, rows ...any) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, db.Create(row).Error)
	}
}

func user(id string) *model.Principal {
	return &model.Principal{ID: id, Email: id + "@example.com", GlobalRole: model.GlobalRoleUser}
}

func business(id, owner string) *model.Business {
	return &model.Business{ID: id, Name: "Business " + id, OwnerUserID: owner, Plan: model.PlanFree}
}

func membership(id, userID, businessID string, role model.Role, status model.MembershipStatus, created time.Time) *model.Membership {
	return &model.Membership{ID: id, UserID: userID, BusinessID: businessID, Role: role, Status: status, CreatedAt: created}
}
