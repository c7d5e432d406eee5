package guard

import (
	"net/http"
)

// Middleware wraps protected HTTP views with the guard's decision. While
// session state is initializing it serves a neutral placeholder, preventing
// a flash of unauthenticated content; denied requests are redirected to the
// login entry.
func (g *Guard) Middleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch g.Evaluate(r.URL.Path) {
			case Initializing:
				w.WriteHeader(http.StatusNoContent)
			case Denied:
				http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
			default:
				next(w, r)
			}
		}
	}
}
