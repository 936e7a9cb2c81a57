package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/model"
)

func TestMe(t *testing.T) {
	store := newFakeStore()
	store.addProfile(model.Profile{ID: "u1", FirstName: "Grace", LastName: "Hopper", IsSuperadmin: true})
	svc := NewProfileService(store)

	me, err := svc.Me(context.Background(), session("u1"))
	require.NoError(t, err)
	assert.Equal(t, "u1", me.UserID)
	assert.Equal(t, "Grace Hopper", me.DisplayName)
	assert.True(t, me.Profile.IsSuperadmin)

	sess := session("u1")
	sess.Metadata = map[string]any{"full_name": "Rear Admiral Hopper"}
	me, err = svc.Me(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "Rear Admiral Hopper", me.DisplayName)
}

func TestMe_DisplayNameFallbacks(t *testing.T) {
	store := newFakeStore()
	store.addProfile(model.Profile{ID: "named", FirstName: "Grace", LastName: "Hopper"})
	store.addProfile(model.Profile{ID: "mailed", Email: "profile@example.com"})
	store.addProfile(model.Profile{ID: "bare", FirstName: "Grace"})
	svc := NewProfileService(store)

	tests := []struct {
		id   string
		want string
	}{
		{"named", "Grace Hopper"},
		{"mailed", "profile@example.com"},
		{"bare", "bare@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			sess := session(tt.id)
			me, err := svc.Me(context.Background(), sess)
			require.NoError(t, err)
			assert.Equal(t, tt.want, me.DisplayName)
		})
	}
}

func TestMe_Errors(t *testing.T) {
	svc := NewProfileService(newFakeStore())

	_, err := svc.Me(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = svc.Me(context.Background(), session("ghost"))
	assert.ErrorIs(t, err, apperror.ErrProfileNotFound)
}
