package web

import (
	"net/http"

	log "github.com/go-pkgz/lgr"
	"golang.org/x/crypto/bcrypt"
)

// apiUser is the basic auth user name for api and metrics
const apiUser = "shopfloor"

// apiAuth checks basic auth credentials against bcrypt hash. The operator UI is not protected,
// employee login there is identification only.
func (s *Server) apiAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if ok && username == apiUser {
			if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err == nil {
				next.ServeHTTP(w, r)
				return
			}
			log.Printf("[WARN] invalid api password from %s", r.RemoteAddr)
		}
		w.Header().Set("WWW-Authenticate", `Basic realm="Shopfloor API"`)
		s.writeJSONError(w, http.StatusUnauthorized, "unauthorized")
	})
}
