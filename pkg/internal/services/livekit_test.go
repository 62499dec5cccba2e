package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

func TestIssueGrantScopesToken(t *testing.T) {
	const (
		apiKey    = "APItestkey"
		apiSecret = "testsecret-testsecret-testsecret"
	)
	viper.Set("calling.api_key", apiKey)
	viper.Set("calling.api_secret", apiSecret)

	raw, err := LiveKitIssuer{}.IssueGrant("room-under-test", "Alice", 5*time.Minute)
	if err != nil {
		t.Fatalf("IssueGrant: %v", err)
	}

	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return []byte(apiSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", token.Claims)
	}
	if iss, _ := claims.GetIssuer(); iss != apiKey {
		t.Errorf("issuer = %q, want %q", iss, apiKey)
	}
	if sub, _ := claims.GetSubject(); sub != "Alice" {
		t.Errorf("identity = %q, want Alice", sub)
	}

	video, ok := claims["video"].(map[string]any)
	if !ok {
		t.Fatalf("token carries no video grant: %v", claims)
	}
	if video["room"] != "room-under-test" {
		t.Errorf("grant room = %v, want room-under-test", video["room"])
	}
	if video["roomJoin"] != true {
		t.Errorf("grant does not permit joining: %v", video)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("token has no expiry: %v", err)
	}
	if remaining := time.Until(exp.Time); remaining > 6*time.Minute {
		t.Errorf("token lives %s, want minutes-scale validity", remaining)
	}
}
