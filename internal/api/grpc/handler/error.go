package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gatekeeper/internal/model"
)

// errMalformedRequest marks requests that could not be decoded.
var errMalformedRequest = errors.New("malformed request")

// errNotAccountOwner rejects changes to an account other than the caller's.
var errNotAccountOwner = errors.New("not the account owner")

func handleError(err error) error {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		return status.Error(codes.InvalidArgument, validationErrs.Error())
	case errors.Is(err, errMalformedRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errNotAccountOwner):
		return status.Error(codes.PermissionDenied, "password can only be changed by its owner")
	case errors.Is(err, model.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "account already exists")
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "account not found")
	case errors.Is(err, model.ErrWrongPassword):
		return status.Error(codes.PermissionDenied, "wrong password")
	case model.IsStorageError(err):
		return status.Error(codes.Unavailable, "credential store unavailable")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
