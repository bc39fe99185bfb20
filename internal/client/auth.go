package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/me/odflow/pkg/model"
)

// loginResponse picks the fields the client understands out of the login
// payload. Backends have used all three token spellings.
type loginResponse struct {
	User         *model.User `json:"user"`
	Token        string      `json:"token"`
	AccessToken  string      `json:"accessToken"`
	AccessToken2 string      `json:"access_token"`
	RefreshToken string      `json:"refreshToken"`
	Message      string      `json:"message"`
}

func (r loginResponse) token() string {
	for _, t := range []string{r.Token, r.AccessToken, r.AccessToken2} {
		if t != "" {
			return t
		}
	}
	return ""
}

// Login exchanges credentials for a session. Any 4xx answer is reported as
// UNAUTHENTICATED; the caller decides what to show.
func (c *Client) Login(ctx context.Context, username, password string) (*model.Session, error) {
	status, body, err := c.do(ctx, http.MethodPost, pathLogin, model.LoginRequest{
		Username: username,
		Password: password,
	}, false)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	decodeErr := json.Unmarshal(body, &resp)
	if status >= 400 {
		msg := resp.Message
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, remoteError(opLogin, status, &model.RemoteError{Message: msg})
	}
	if decodeErr != nil {
		return nil, &model.APIError{Kind: model.KindInternal, Message: "malformed login response", HTTPStatus: status, Err: decodeErr}
	}
	if resp.User == nil || resp.User.ID == "" {
		return nil, &model.APIError{Kind: model.KindUnauthenticated, Message: "login response has no user", HTTPStatus: status}
	}
	resp.User.Role = model.ParseRole(string(resp.User.Role))
	if !resp.User.Role.Valid() {
		return nil, &model.APIError{Kind: model.KindUnauthenticated, Message: "unsupported role " + string(resp.User.Role), HTTPStatus: status}
	}

	sess := &model.Session{
		Token:        resp.token(),
		RefreshToken: resp.RefreshToken,
		User:         *resp.User,
		ExpiresAt:    TokenExpiry(resp.token()),
		Raw:          json.RawMessage(bytes.TrimSpace(body)),
	}
	c.logger.Debug("login succeeded", "user_id", sess.User.ID, "role", sess.User.Role, "expires_at", sess.ExpiresAt)
	return sess, nil
}

// TokenExpiry returns the exp claim of a JWT, or the zero time when token is
// not a JWT or carries no expiry. The signature is not checked; the backend
// verifies its own tokens.
func TokenExpiry(token string) time.Time {
	if strings.Count(token, ".") != 2 {
		return time.Time{}
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
