package handler

import (
	"errors"

	"github.com/ogurasousui/agenda-directory/internal/core/user"
	"github.com/ogurasousui/agenda-directory/internal/platform/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, user.ErrInvalidUserName),
		errors.Is(err, user.ErrInvalidPassword),
		errors.Is(err, user.ErrInvalidState),
		errors.Is(err, user.ErrInvalidRole):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
