// middleware/session_auth.go
package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

var ErrMissingToken = errors.New("missing bearer token")

// SessionProvider turns an incoming request into a session. A nil session with
// a nil error means the request is anonymous.
type SessionProvider interface {
	Session(c *gin.Context) (*model.Session, error)
}

// SessionClaims is the token body issued by JWTSessions.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email            string           `json:"email"`
	GlobalRole       model.GlobalRole `json:"global_role,omitempty"`
	ActiveBusinessID string           `json:"active_business_id,omitempty"`
}

// JWTSessions reads and issues HS256 session tokens.
type JWTSessions struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTSessions(secret, issuer string) (*JWTSessions, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	return &JWTSessions{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

func (j *JWTSessions) Session(c *gin.Context) (*model.Session, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, nil
	}
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return nil, ErrMissingToken
	}
	return j.Parse(tokenString)
}

// Parse validates the signature, issuer and expiry of tokenString.
func (j *JWTSessions) Parse(tokenString string) (*model.Session, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	session := &model.Session{
		ID: claims.ID,
		Principal: model.Principal{
			ID:         claims.Subject,
			Email:      claims.Email,
			GlobalRole: claims.GlobalRole,
		},
		ActiveBusinessID: claims.ActiveBusinessID,
	}
	if session.ID == "" {
		session.ID = claims.Subject
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Issue signs a token for session valid for ttl. A missing session ID gets a
// fresh one so handoff state is not shared between logins.
func (j *JWTSessions) Issue(session *model.Session, ttl time.Duration) (string, error) {
	now := j.now()
	id := session.ID
	if id == "" {
		id = uuid.NewString()
	}
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   session.Principal.ID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:            session.Principal.Email,
		GlobalRole:       session.Principal.GlobalRole,
		ActiveBusinessID: session.ActiveBusinessID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// SessionAuth stores the session, if any, under util.SessionKey. It never
// rejects a request itself; the permission gate answers 401 for anonymous
// callers so the error envelope stays in one place.
func SessionAuth(provider SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := provider.Session(c)
		if err != nil {
			logger.Debug("Rejected session token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}
		if err == nil && session != nil {
			c.Set(util.SessionKey, session)
		}
		c.Next()
	}
}
