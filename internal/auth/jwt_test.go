package auth

import (
	"testing"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndParseJWT(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateJWT("secret", userID, models.RoleEditor, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT("secret", token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != userID || claims.Role != models.RoleEditor {
		t.Errorf("claims = %+v", claims)
	}
	if actor := claims.Actor(); actor.UserID != userID || actor.Role != models.RoleEditor {
		t.Errorf("actor = %+v", actor)
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, _ := GenerateJWT("secret", uuid.New(), models.RoleViewer, time.Hour)

	if _, err := ParseJWT("other", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	claims := Claims{
		UserID: uuid.New(),
		Role:   models.RoleViewer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseJWT("secret", token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseJWT_UnknownRole(t *testing.T) {
	token, _ := GenerateJWT("secret", uuid.New(), models.Role("ROOT"), time.Hour)

	if _, err := ParseJWT("secret", token); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
