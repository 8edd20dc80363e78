package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService resolves the tenant/location identity behind a bearer token.
// Tokens are issued and verified by the upstream auth service; this side
// only decodes claims and, when the claims are incomplete, asks the auth
// service for the caller's user context.
type AuthService struct {
	AuthBaseURL string
	HTTPClient  *http.Client
}

// RequestContext is the resolved identity attached to a request.
type RequestContext struct {
	UserID     string
	TenantID   string
	LocationID string
	Token      string
}

func NewAuthService(authBaseURL string) *AuthService {
	return &AuthService{
		AuthBaseURL: strings.TrimRight(authBaseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ExtractTokenFromHeader pulls the bearer token out of an Authorization
// header value.
func (s *AuthService) ExtractTokenFromHeader(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header must use Bearer scheme")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("bearer token value is missing")
	}
	return token, nil
}

// DecodeClaims extracts the claim set without verifying the signature.
// Verification belongs to the upstream auth service; every data call made
// with the token is re-authenticated there.
func (s *AuthService) DecodeClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}

// ResolveContext builds the RequestContext for a bearer token. Claims are
// tried first; missing tenant or location identifiers fall back to the auth
// service's user-context endpoint, then to the first accessible tenant and
// location.
func (s *AuthService) ResolveContext(ctx context.Context, token string) (*RequestContext, error) {
	userID := ""
	tenantID := ""
	locationID := ""

	if claims, err := s.DecodeClaims(token); err == nil {
		userID = firstClaimString(claims, "sub", "nameid", "userId", "oid")
		tenantID = firstClaimString(claims, "tenantId", "tenant_id", "tid", "tenant")
		locationID = firstClaimString(claims, "businessLocationId", "currentBusinessLocationId", "locationId")
	}

	if tenantID == "" || locationID == "" {
		userContext, err := s.FetchUserContext(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("unable to fetch user context: %w", err)
		}
		if tenantID == "" {
			tenantID = userContext.CurrentTenantID
		}
		if locationID == "" {
			locationID = userContext.CurrentLocationID
		}
		if tenantID == "" && len(userContext.AccessibleTenants) > 0 {
			tenantID = userContext.AccessibleTenants[0].TenantID
		}
		if locationID == "" && len(userContext.AccessibleTenants) > 0 {
			locations := userContext.AccessibleTenants[0].AccessibleLocations
			if len(locations) > 0 {
				locationID = locations[0].LocationID
			}
		}
	}

	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID could not be resolved from token or user context")
	}
	if locationID == "" {
		return nil, fmt.Errorf("location ID could not be resolved from token or user context")
	}

	return &RequestContext{
		UserID:     userID,
		TenantID:   tenantID,
		LocationID: locationID,
		Token:      token,
	}, nil
}

// UserContext mirrors the auth service's validate-user-context response.
type UserContext struct {
	CurrentTenantID   string
	CurrentLocationID string
	AccessibleTenants []TenantInfo
}

type TenantInfo struct {
	TenantID            string
	TenantName          string
	AccessibleLocations []TenantLocation
}

type TenantLocation struct {
	LocationID   string
	LocationName string
}

// FetchUserContext asks the auth service which tenant and location the
// token's user is currently operating in.
func (s *AuthService) FetchUserContext(ctx context.Context, token string) (*UserContext, error) {
	url := s.AuthBaseURL + "/api/v1/auth/validate-user-context"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user context request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user context response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user context request returned status %d", resp.StatusCode)
	}

	var decoded struct {
		CurrentContext struct {
			TenantID   string `json:"tenantId"`
			LocationID string `json:"locationId"`
		} `json:"currentContext"`
		AccessibleTenants []struct {
			TenantID            string `json:"tenantId"`
			TenantName          string `json:"tenantName"`
			AccessibleLocations []struct {
				LocationID   string `json:"locationId"`
				LocationName string `json:"locationName"`
			} `json:"accessibleLocations"`
		} `json:"accessibleTenants"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode user context response: %w", err)
	}

	userContext := &UserContext{
		CurrentTenantID:   decoded.CurrentContext.TenantID,
		CurrentLocationID: decoded.CurrentContext.LocationID,
	}
	for _, tenant := range decoded.AccessibleTenants {
		info := TenantInfo{
			TenantID:   tenant.TenantID,
			TenantName: tenant.TenantName,
		}
		for _, location := range tenant.AccessibleLocations {
			info.AccessibleLocations = append(info.AccessibleLocations, TenantLocation{
				LocationID:   location.LocationID,
				LocationName: location.LocationName,
			})
		}
		userContext.AccessibleTenants = append(userContext.AccessibleTenants, info)
	}
	return userContext, nil
}

func firstClaimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if value, ok := claims[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
