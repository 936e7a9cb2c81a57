// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → checks identity and privilege, enforces rules
//	Repository (Data layer)  → reads/writes the relational store
//	Pipeline (External API)  → talks to the captioning service
//
// SESSIONS ARE PARAMETERS:
// Every operation takes the caller's *auth.Session explicitly. A nil session
// means "not logged in", and each operation decides for itself what that
// means (and what message to show). Nothing here reads identity from a
// global or from the request context.
//
// ERRORS ARE VALUES:
// Every operation returns a result or an *apperror.AppError. Store failures
// that aren't one of the recognised outcomes are passed through as
// apperror.Store with the store's own message.
package service

import (
	"context"
	"errors"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

const (
	FeedLimit      = 20
	RecentLimit    = 5
	AdminListLimit = 100
)

// storeError passes AppErrors through and wraps anything else as a StoreError.
func storeError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Store(err.Error())
}

// loadProfile fetches the caller's profile. A missing row is reported as
// ProfileNotFound; every other failure is a StoreError.
func loadProfile(ctx context.Context, profiles repository.ProfileRepository, sess *auth.Session) (*model.Profile, error) {
	p, err := profiles.GetProfile(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ProfileNotFound()
		}
		return nil, storeError(err)
	}
	return p, nil
}

func isProfileNotFound(err error) bool {
	return errors.Is(err, apperror.ErrProfileNotFound)
}
