package delivery

import (
	"strconv"

	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/gin-gonic/gin"
)

// pageQuery reads the page/limit query pair and clamps it to sane bounds, so
// malformed or hostile values never reach the store layer.
func pageQuery(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return store.ClampPage(page, limit)
}
