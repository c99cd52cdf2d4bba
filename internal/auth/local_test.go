package auth

import (
	"context"
	"testing"
	"time"

	"sadco.org/internal/scope"
)

func TestLocalIntrospectorRoundTrip(t *testing.T) {
	local, err := NewLocalIntrospector("test-secret")
	if err != nil {
		t.Fatalf("NewLocalIntrospector: %v", err)
	}

	token, err := local.IssueLocalToken("webapp", "user-1", []scope.Scope{scope.SurveysRead, scope.HydroRead}, time.Minute)
	if err != nil {
		t.Fatalf("IssueLocalToken: %v", err)
	}

	intro, err := local.Introspect(context.Background(), token, []scope.Scope{scope.SurveysRead})
	if err != nil {
		t.Fatalf("Introspect: %v", err)
	}
	if !intro.Active || intro.ClientID != "webapp" || intro.Sub != "user-1" {
		t.Fatalf("unexpected introspection: %+v", intro)
	}
}

func TestLocalIntrospectorInactiveCases(t *testing.T) {
	local, _ := NewLocalIntrospector("test-secret")

	// Garbage token introspects inactive, not as an error.
	intro, err := local.Introspect(context.Background(), "not-a-jwt", nil)
	if err != nil || intro.Active {
		t.Fatalf("garbage token: intro=%+v err=%v", intro, err)
	}

	// Token missing the required scope is inactive for that scope.
	token, err := local.IssueLocalToken("webapp", "webapp", []scope.Scope{scope.SurveysRead}, time.Minute)
	if err != nil {
		t.Fatalf("IssueLocalToken: %v", err)
	}
	intro, err = local.Introspect(context.Background(), token, []scope.Scope{scope.VosDownload})
	if err != nil || intro.Active {
		t.Fatalf("scope miss: intro=%+v err=%v", intro, err)
	}

	// Token signed with another secret.
	other, _ := NewLocalIntrospector("other-secret")
	token, _ = other.IssueLocalToken("webapp", "webapp", []scope.Scope{scope.SurveysRead}, time.Minute)
	intro, err = local.Introspect(context.Background(), token, []scope.Scope{scope.SurveysRead})
	if err != nil || intro.Active {
		t.Fatalf("wrong secret: intro=%+v err=%v", intro, err)
	}
}
