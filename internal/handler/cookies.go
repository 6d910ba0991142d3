package handler

import (
	"net/http"

	"github.com/MedSupply-Manager/user-service/internal/middleware"
	"github.com/MedSupply-Manager/user-service/internal/service"
	"github.com/MedSupply-Manager/user-service/internal/token"
)

const refreshTokenCookie = "refreshToken"

// setAuthCookies installs both tokens as http-only cookies. Lifetimes mirror
// the token lifetimes so the browser drops a cookie at the same moment its
// token stops verifying.
func setAuthCookies(w http.ResponseWriter, pair service.TokenPair, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(token.KindAccess.Lifetime().Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(token.KindRefresh.Lifetime().Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
