// Package session implements the server-side session registry backing token
// revocation and multi-device login.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// ErrUnavailable is returned when the registry has no backing store.
var ErrUnavailable = errors.New("session store unavailable")

// Registry tracks the set of currently-valid tokens per username. A token
// that verifies cryptographically but is absent from the registry has been
// logged out and must be rejected.
type Registry struct {
	client *redis.Client
}

// NewRegistry returns a Registry backed by the given Redis client.
func NewRegistry(client *redis.Client) *Registry {
	return &Registry{client: client}
}

func sessionKey(username string) string {
	return keyPrefix + username
}

// AddToken records a newly issued token for the username. Each login appends
// to the same set, so concurrent logins from multiple clients all stay valid.
func (r *Registry) AddToken(ctx context.Context, username, token string) error {
	if r.client == nil {
		return ErrUnavailable
	}
	return r.client.SAdd(ctx, sessionKey(username), token).Err()
}

// HasToken reports whether the token is an active session member for the
// username. Checked on every authenticated request.
func (r *Registry) HasToken(ctx context.Context, username, token string) (bool, error) {
	if r.client == nil {
		return false, ErrUnavailable
	}
	return r.client.SIsMember(ctx, sessionKey(username), token).Result()
}

// RemoveToken invalidates a single token at logout. The username's session
// set disappears on its own once its last token is removed, so other devices
// remain logged in.
func (r *Registry) RemoveToken(ctx context.Context, username, token string) error {
	if r.client == nil {
		return ErrUnavailable
	}
	return r.client.SRem(ctx, sessionKey(username), token).Err()
}

// DropAll invalidates every token for the username.
func (r *Registry) DropAll(ctx context.Context, username string) error {
	if r.client == nil {
		return ErrUnavailable
	}
	return r.client.Del(ctx, sessionKey(username)).Err()
}

// ActiveUsernames lists every username that currently holds at least one
// valid token. Used by the admin logged-users view.
func (r *Registry) ActiveUsernames(ctx context.Context) ([]string, error) {
	if r.client == nil {
		return nil, ErrUnavailable
	}

	var usernames []string
	iter := r.client.Scan(ctx, 0, fmt.Sprintf("%s*", keyPrefix), 0).Iterator()
	for iter.Next(ctx) {
		usernames = append(usernames, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return usernames, nil
}
