// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-minimum-32-chars-long"

func TestNewJWTVerifier(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{
			name:    "valid secret",
			secret:  testSecret,
			wantErr: false,
		},
		{
			name:    "short secret rejected",
			secret:  "too-short",
			wantErr: true,
		},
		{
			name:    "empty secret rejected",
			secret:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewJWTVerifier(tt.secret)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, v)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, v)
			}
		})
	}
}

func TestJWTVerifier_Verify(t *testing.T) {
	v, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)

	t.Run("valid token round trip", func(t *testing.T) {
		token, err := v.Mint("user-123", "jane@example.com", "Jane Doe", "member", time.Hour)
		require.NoError(t, err)

		id, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", id.SubjectID)
		assert.Equal(t, "jane@example.com", id.Email)
		assert.Equal(t, "Jane Doe", id.DisplayName)
		assert.Equal(t, "member", id.EmbeddedRole)
	})

	t.Run("token without embedded role", func(t *testing.T) {
		token, err := v.Mint("user-456", "bob@example.com", "Bob", "", time.Hour)
		require.NoError(t, err)

		id, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Empty(t, id.EmbeddedRole)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "")
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := v.Mint("user-123", "jane@example.com", "Jane", "", -time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredCredentials)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewJWTVerifier("another-secret-key-32-chars-or-more!")
		require.NoError(t, err)

		token, err := other.Mint("user-123", "jane@example.com", "Jane", "", time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), signed)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		token, err := v.Mint("", "jane@example.com", "Jane", "", time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		token, err := v.Mint("user-123", "jane@example.com", "Jane", "", time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
