// Package rbac gates HTTP routes on the authenticated caller's role.
package rbac

import (
	"net/http"

	"github.com/vantage-erp/vantage-erp/internal/platform/httpx"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Require allows the request through only when the identity in context
// carries one of the given roles. Role checks live here at the boundary;
// domain services never inspect roles.
func Require(roles ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			if !id.Has(roles...) {
				httpx.RespondError(w, shared.NewError(shared.KindForbidden, "role", "access denied, insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
