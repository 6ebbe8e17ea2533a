package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wso2/health-consent-api/internal/config"
	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/internal/utils"
)

// Headers carrying an already-resolved identity when token verification is
// disabled and an upstream gateway authenticates callers.
const (
	HeaderActorID    = "X-Actor-ID"
	HeaderActorRole  = "X-Actor-Role"
	HeaderPatientID  = "X-Patient-ID"
	HeaderFacilityID = "X-Facility-ID"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
	errExpiredToken = errors.New("token has expired")
	errInvalidRole  = errors.New("token carries no valid role")
)

// IdentityClaims are the claims the identity resolver puts in its tokens
type IdentityClaims struct {
	Role       string `json:"role"`
	PatientID  string `json:"patient_id,omitempty"`
	FacilityID string `json:"facility_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HMAC-signed identity tokens
type TokenVerifier struct {
	signingKey []byte
	parser     *jwt.Parser
}

// NewTokenVerifier builds a verifier accepting HS256 tokens that carry an expiry
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &TokenVerifier{
		signingKey: []byte(cfg.SigningKey),
		parser:     jwt.NewParser(opts...),
	}
}

// Verify parses tokenString and returns the identity it carries
func (v *TokenVerifier) Verify(tokenString string) (*models.Identity, error) {
	claims := &IdentityClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errExpiredToken
		}
		return nil, errInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errInvalidToken
	}

	identity := &models.Identity{
		ActorID:    claims.Subject,
		Role:       models.Role(claims.Role),
		PatientID:  claims.PatientID,
		FacilityID: claims.FacilityID,
	}
	if err := checkIdentity(identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// checkIdentity rejects identities that cannot be scoped: patients need a
// patient id and healthcare workers need a facility.
func checkIdentity(identity *models.Identity) error {
	if !identity.Role.IsValid() {
		return errInvalidRole
	}
	if identity.IsPatient() && identity.PatientID == "" {
		return errors.New("patient identity carries no patient id")
	}
	if identity.IsHealthcareWorker() && identity.FacilityID == "" {
		return errors.New("healthcare worker identity carries no facility id")
	}
	return nil
}

// Authenticate resolves the caller and stores it in the context. With a nil
// verifier the identity is read from the X-Actor-* headers set by a trusted
// gateway.
func Authenticate(verifier *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			identity *models.Identity
			err      error
		)
		if verifier != nil {
			identity, err = identityFromToken(c, verifier)
		} else {
			identity, err = identityFromHeaders(c)
		}
		if err != nil {
			utils.SendUnauthorizedError(c, err.Error())
			c.Abort()
			return
		}

		utils.SetContextValue(c, utils.ContextKeyIdentity, identity)
		c.Next()
	}
}

func identityFromToken(c *gin.Context, verifier *TokenVerifier) (*models.Identity, error) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return nil, errMissingToken
	}
	return verifier.Verify(strings.TrimSpace(token))
}

func identityFromHeaders(c *gin.Context) (*models.Identity, error) {
	identity := &models.Identity{
		ActorID:    c.GetHeader(HeaderActorID),
		Role:       models.Role(c.GetHeader(HeaderActorRole)),
		PatientID:  c.GetHeader(HeaderPatientID),
		FacilityID: c.GetHeader(HeaderFacilityID),
	}
	if identity.ActorID == "" {
		return nil, errors.New("missing " + HeaderActorID + " header")
	}
	if err := checkIdentity(identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// RequireRoles rejects callers whose role is not listed
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := utils.GetIdentityFromContext(c)
		if identity == nil {
			utils.SendUnauthorizedError(c, "authentication required")
			c.Abort()
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		utils.SendForbiddenError(c, "role "+string(identity.Role)+" may not access this resource")
		c.Abort()
	}
}
