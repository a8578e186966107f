package http

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"stock-settlement/internal/api/dto"
)

// mapError converts a service error into an HTTP status and body,
// keyed off the gRPC code the core attaches to every taxonomy error.
func mapError(err error) (int, dto.ErrorResponse) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, dto.ErrorResponse{
			Code:    codes.Internal.String(),
			Message: err.Error(),
		}
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest, dto.ErrorResponse{
			Code:    st.Code().String(),
			Message: st.Message(),
		}
	case codes.NotFound:
		return http.StatusNotFound, dto.ErrorResponse{
			Code:    st.Code().String(),
			Message: st.Message(),
		}
	case codes.AlreadyExists:
		return http.StatusConflict, dto.ErrorResponse{
			Code:    st.Code().String(),
			Message: st.Message(),
		}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{
			Code:    codes.Internal.String(),
			Message: st.Message(),
		}
	}
}
