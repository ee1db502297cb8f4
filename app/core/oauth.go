// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package core

import (
	"context"
	"fmt"
	"time"

	"bimexport/app/config"

	"golang.org/x/oauth2"
)

type OauthTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func oauthConfig() *oauth2.Config {
	c := config.GetConfig()
	return &oauth2.Config{
		ClientID:     c.Options.OauthClientId,
		ClientSecret: config.OauthClientSecret(),
		RedirectURL:  c.Options.OauthRedirectUri,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.ApsServer + "/authentication/v2/authorize",
			TokenURL:  c.ApsServer + "/authentication/v2/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// ExchangeCode trades an authorization code for a token pair and caches the
// tokens for the session.
func ExchangeCode(ctx context.Context, code, sessionId string) (OauthTokenResponse, error) {
	token, err := oauthConfig().Exchange(ctx, code)
	if err != nil {
		return OauthTokenResponse{}, fmt.Errorf("getting API token failed: %v", err)
	}
	cacheToken(ctx, sessionId, token)
	return toResponse(token), nil
}

// RefreshToken exchanges the cached refresh token of a session for a fresh
// token pair.
func RefreshToken(ctx context.Context, sessionId string) (OauthTokenResponse, error) {
	refreshToken := getFromCache(ctx, "refresh token: "+sessionId)
	if refreshToken == "" {
		return OauthTokenResponse{}, fmt.Errorf("session expired, please log in again")
	}
	token, err := oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return OauthTokenResponse{}, fmt.Errorf("refreshing API token failed: %v", err)
	}
	cacheToken(ctx, sessionId, token)
	return toResponse(token), nil
}

func toResponse(token *oauth2.Token) OauthTokenResponse {
	return OauthTokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    int(time.Until(token.Expiry).Seconds()),
		TokenType:    token.TokenType,
	}
}

func cacheToken(ctx context.Context, sessionId string, token *oauth2.Token) {
	if sessionId == "" {
		return
	}
	expiration := time.Until(token.Expiry)
	if expiration <= 0 {
		expiration = time.Hour
	}
	config.GetRedis().Set(ctx, "access token: "+sessionId, token.AccessToken, expiration)
	if token.RefreshToken != "" {
		config.GetRedis().Set(ctx, "refresh token: "+sessionId, token.RefreshToken, 30*24*time.Hour)
	}
}

func getFromCache(ctx context.Context, key string) string {
	return config.GetRedis().Get(ctx, key).Val()
}

// GetTokenFromCache returns the caller-supplied token when present, otherwise
// the session's cached access token.
func GetTokenFromCache(ctx context.Context, token, sessionId string) string {
	if token != "" {
		return token
	}
	if sessionId == "" {
		return ""
	}
	return getFromCache(ctx, "access token: "+sessionId)
}
