package auth

import (
	apperrors "reserva/pkg/errors"
	"reserva/pkg/model"
)

// Identity is the slice of a verified token's claims the service needs.
// Token verification itself happens at the gateway; this package only
// interprets claims that are already trusted.
type Identity struct {
	SubjectID string
	Email     string
	FullName  string
	Role      string
}

// ExtractRole maps realm roles onto the application role. A subject with
// both roles is treated as a provider.
func ExtractRole(claims map[string]any) (string, error) {
	realmAccess, ok := claims["realm_access"].(map[string]any)
	if !ok {
		return "", apperrors.Forbidden("no realm access in token")
	}

	rawRoles, ok := realmAccess["roles"].([]any)
	if !ok {
		return "", apperrors.Forbidden("no roles in token")
	}

	var hasClient bool
	for _, raw := range rawRoles {
		role, ok := raw.(string)
		if !ok {
			continue
		}
		switch role {
		case model.RoleProvider:
			return model.RoleProvider, nil
		case model.RoleClient:
			hasClient = true
		}
	}

	if hasClient {
		return model.RoleClient, nil
	}
	return "", apperrors.Forbidden("no recognized role in token")
}

// ExtractIdentity builds an Identity from token claims.
func ExtractIdentity(claims map[string]any) (Identity, error) {
	role, err := ExtractRole(claims)
	if err != nil {
		return Identity{}, err
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return Identity{}, apperrors.Unauthorized("token has no subject")
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return Identity{
		SubjectID: subject,
		Email:     email,
		FullName:  name,
		Role:      role,
	}, nil
}
