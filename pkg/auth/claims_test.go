package auth

import (
	"testing"

	apperrors "reserva/pkg/errors"
	"reserva/pkg/model"
)

func claimsWithRoles(roles ...any) map[string]any {
	return map[string]any{
		"sub":   "sub-1",
		"email": "someone@example.com",
		"name":  "Some One",
		"realm_access": map[string]any{
			"roles": roles,
		},
	}
}

func TestExtractRole(t *testing.T) {
	tests := []struct {
		name    string
		claims  map[string]any
		want    string
		wantErr bool
	}{
		{
			name:   "provider role",
			claims: claimsWithRoles("offline_access", "provider"),
			want:   model.RoleProvider,
		},
		{
			name:   "client role",
			claims: claimsWithRoles("client"),
			want:   model.RoleClient,
		},
		{
			name:   "provider wins over client",
			claims: claimsWithRoles("client", "provider"),
			want:   model.RoleProvider,
		},
		{
			name:    "no recognized role",
			claims:  claimsWithRoles("offline_access"),
			wantErr: true,
		},
		{
			name:    "missing realm access",
			claims:  map[string]any{"sub": "sub-1"},
			wantErr: true,
		},
		{
			name: "roles is not a list",
			claims: map[string]any{
				"realm_access": map[string]any{"roles": "provider"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractRole(tt.claims)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				appErr := apperrors.AsAppError(err)
				if appErr.Code != apperrors.CodeForbidden {
					t.Errorf("expected code %s, got %s", apperrors.CodeForbidden, appErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractRole() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractIdentity(t *testing.T) {
	identity, err := ExtractIdentity(claimsWithRoles("provider"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.SubjectID != "sub-1" {
		t.Errorf("expected subject 'sub-1', got %q", identity.SubjectID)
	}
	if identity.Email != "someone@example.com" {
		t.Errorf("unexpected email %q", identity.Email)
	}
	if identity.Role != model.RoleProvider {
		t.Errorf("unexpected role %q", identity.Role)
	}
}

func TestExtractIdentity_MissingSubject(t *testing.T) {
	claims := claimsWithRoles("client")
	delete(claims, "sub")

	_, err := ExtractIdentity(claims)
	if err == nil {
		t.Fatalf("expected error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnauthorized {
		t.Errorf("expected code %s, got %s", apperrors.CodeUnauthorized, appErr.Code)
	}
}
