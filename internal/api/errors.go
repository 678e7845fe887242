package api

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront-service/internal/domain"
	"storefront-service/internal/store"
)

// httpStatusFor maps engine and store errors to HTTP status codes. ok is false
// for errors the caller has to classify itself.
func httpStatusFor(err error) (code int, ok bool) {
	var e *domain.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case domain.KindValidation:
			return http.StatusBadRequest, true
		case domain.KindInvalidOperation:
			return http.StatusConflict, true
		case domain.KindNotFound:
			return http.StatusNotFound, true
		case domain.KindFetch:
			return http.StatusBadGateway, true
		}
	}
	switch {
	case errors.Is(err, store.ErrProductNotFound), errors.Is(err, store.ErrCartNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, store.ErrProductIDExists):
		return http.StatusConflict, true
	}
	return http.StatusInternalServerError, false
}

// errorMessage is the client-facing text of a mapped error.
func errorMessage(err error) string {
	var e *domain.Error
	if errors.As(err, &e) {
		if e.Kind == domain.KindFetch {
			return "catalog is temporarily unavailable"
		}
		return e.Message
	}
	return err.Error()
}

// grpcStatusFor maps engine and store errors to gRPC statuses.
func grpcStatusFor(err error) error {
	if err == nil {
		return nil
	}
	var e *domain.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case domain.KindValidation:
			return status.Error(codes.InvalidArgument, e.Message)
		case domain.KindInvalidOperation:
			return status.Error(codes.FailedPrecondition, e.Message)
		case domain.KindNotFound:
			return status.Error(codes.NotFound, e.Message)
		case domain.KindFetch:
			return status.Error(codes.Unavailable, "catalog is temporarily unavailable")
		}
	}
	switch {
	case errors.Is(err, store.ErrProductNotFound), errors.Is(err, store.ErrCartNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, store.ErrProductIDExists):
		return status.Error(codes.AlreadyExists, err.Error())
	}
	return status.Errorf(codes.Internal, "internal error: %v", err)
}
