package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-reminder/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type AuthHandler interface {
	Revoke(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	jwtService jwt.Service
}

func NewAuthHandler(jwtService jwt.Service) AuthHandler {
	return &authHandlerImpl{jwtService: jwtService}
}

// Revoke withdraws the bearer token used for this request.
func (h *authHandlerImpl) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.jwtService.RevokeToken(r.Context(), jwtauth.TokenFromHeader(r)); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Token revoked", nil)
}
