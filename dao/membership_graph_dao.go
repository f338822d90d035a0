// dao/membership_graph_dao.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	obd_neo4j "github.com/acemetillidie0001/obd-premium-apps/model/neo4j"
	helper_util "github.com/acemetillidie0001/obd-premium-apps/util/helper"
)

type queryFunc func(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error)

// MembershipGraphDAO reads memberships stored as
// (:User)-[:MEMBER_OF {id, role, status, lastUsedAt, createdAt}]->(:Business).
type MembershipGraphDAO struct {
	query queryFunc
}

func NewMembershipGraphDAO(driver neo4j.DriverWithContext) *MembershipGraphDAO {
	return &MembershipGraphDAO{
		query: func(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
			return neo4j.ExecuteQuery(ctx, driver, cypher, params,
				neo4j.EagerResultTransformer,
				neo4j.ExecuteQueryWithReadersRouting())
		},
	}
}

var listMembershipsCypher = fmt.Sprintf(`
MATCH (u:%s {id: $userId})-[m:%s]->(b:%s)
RETURN m.id AS id, m.role AS role, m.status AS status,
       m.lastUsedAt AS lastUsedAt, m.createdAt AS createdAt,
       b.id AS businessId, b.name AS businessName, b.ownerUserId AS ownerUserId,
       b.plan AS plan, b.planExpiresAt AS planExpiresAt
ORDER BY m.createdAt ASC
`, obd_neo4j.LabelUser, obd_neo4j.RelMemberOf, obd_neo4j.LabelBusiness)

var getBusinessCypher = fmt.Sprintf(`
MATCH (b:%s {id: $businessId})
RETURN b.id AS businessId, b.name AS businessName, b.ownerUserId AS ownerUserId,
       b.plan AS plan, b.planExpiresAt AS planExpiresAt
`, obd_neo4j.LabelBusiness)

func (dao *MembershipGraphDAO) ListMemberships(ctx context.Context, userID string) ([]model.Membership, error) {
	result, err := dao.query(ctx, listMembershipsCypher, map[string]any{"userId": userID})
	if err != nil {
		logger.Error("Failed to list memberships from graph", zap.String("userID", userID), zap.Error(err))
		return nil, classify("list memberships", err)
	}

	memberships := make([]model.Membership, 0, len(result.Records))
	for _, record := range result.Records {
		membership, err := membershipFromRecord(userID, record)
		if err != nil {
			return nil, classify("map membership", err)
		}
		memberships = append(memberships, membership)
	}
	return memberships, nil
}

func (dao *MembershipGraphDAO) GetBusiness(ctx context.Context, businessID string) (*model.Business, error) {
	result, err := dao.query(ctx, getBusinessCypher, map[string]any{"businessId": businessID})
	if err != nil {
		return nil, classify("get business", err)
	}
	if len(result.Records) == 0 {
		return nil, fmt.Errorf("get business %s: %w", businessID, obd_errors.ErrNotFound)
	}
	business, err := businessFromRecord(result.Records[0])
	if err != nil {
		return nil, classify("map business", err)
	}
	return business, nil
}

func membershipFromRecord(userID string, record *neo4j.Record) (model.Membership, error) {
	business, err := businessFromRecord(record)
	if err != nil {
		return model.Membership{}, err
	}
	id, err := stringValue(record, "id")
	if err != nil {
		return model.Membership{}, err
	}
	role, err := stringValue(record, "role")
	if err != nil {
		return model.Membership{}, err
	}
	status, err := stringValue(record, "status")
	if err != nil {
		return model.Membership{}, err
	}
	lastUsedAt, err := timeValue(record, "lastUsedAt")
	if err != nil {
		return model.Membership{}, err
	}
	createdAt, err := timeValue(record, "createdAt")
	if err != nil {
		return model.Membership{}, err
	}

	membership := model.Membership{
		ID:         id,
		UserID:     userID,
		BusinessID: business.ID,
		Role:       model.Role(role),
		Status:     model.MembershipStatus(status),
		LastUsedAt: lastUsedAt,
		Business:   business,
	}
	if createdAt != nil {
		membership.CreatedAt = *createdAt
	}
	return membership, nil
}

func businessFromRecord(record *neo4j.Record) (*model.Business, error) {
	id, err := stringValue(record, "businessId")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("record has no businessId")
	}
	name, err := stringValue(record, "businessName")
	if err != nil {
		return nil, err
	}
	owner, err := stringValue(record, "ownerUserId")
	if err != nil {
		return nil, err
	}
	plan, err := stringValue(record, "plan")
	if err != nil {
		return nil, err
	}
	expiresAt, err := timeValue(record, "planExpiresAt")
	if err != nil {
		return nil, err
	}
	if plan == "" {
		plan = string(model.PlanFree)
	}
	return &model.Business{
		ID:            id,
		Name:          name,
		OwnerUserID:   owner,
		Plan:          model.Plan(plan),
		PlanExpiresAt: expiresAt,
	}, nil
}

// stringValue returns "" for a missing or null column.
func stringValue(record *neo4j.Record, key string) (string, error) {
	raw, ok := record.Get(key)
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("column %q: expected string, got %T", key, raw)
	}
	return s, nil
}

func timeValue(record *neo4j.Record, key string) (*time.Time, error) {
	raw, _ := record.Get(key)
	t, err := helper_util.ParseNullableTime(raw)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", key, err)
	}
	return t, nil
}
