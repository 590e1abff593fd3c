package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "salon-api", time.Hour)
	user, branch := uuid.New(), uuid.New()

	token, err := m.GenerateAccessToken(user, branch, []string{"cashier"}, []string{"manage-billing"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user || claims.BranchID != branch || !claims.HasRole("cashier") {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestAccessTokenRejectsForeignSecretAndIssuer(t *testing.T) {
	issued, _ := NewJWTManager("other", "salon-api", time.Hour).GenerateAccessToken(uuid.New(), uuid.New(), nil, nil)
	if _, err := NewJWTManager("secret", "salon-api", time.Hour).ValidateAccessToken(issued); err == nil {
		t.Fatalf("expected signature failure")
	}

	issued, _ = NewJWTManager("secret", "someone-else", time.Hour).GenerateAccessToken(uuid.New(), uuid.New(), nil, nil)
	if _, err := NewJWTManager("secret", "salon-api", time.Hour).ValidateAccessToken(issued); err == nil {
		t.Fatalf("expected issuer failure")
	}
}

func TestGenerateBillNo(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a, b := GenerateBillNo("BILL", day), GenerateBillNo("BILL", day)
	if a == b || len(a) != len("BILL-20240501-")+8 {
		t.Fatalf("unexpected bill numbers %q %q", a, b)
	}
}
