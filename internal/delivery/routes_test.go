package delivery

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// Requests without a token stop at the auth middleware, so registering the
// handlers with a nil store connection is safe here; a 404 would mean the
// route itself is missing.
func TestDocumentedRoutesResolve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	authorized := AuthMiddleware(testSecret, log)

	router := gin.New()
	api := router.Group("/api")
	NewCartHandler(nil, log).RegisterRoutes(api, authorized)
	NewCategoryHandler(nil, log).RegisterRoutes(api, authorized)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart"},
		{http.MethodPatch, "/api/cart"},
		{http.MethodDelete, "/api/cart/7"},
		{http.MethodPatch, "/api/categories/7/restore"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}
