package images

import (
	"log"
	"net/http"

	"github.com/anoixa/image-gallery/api/common"
	"github.com/anoixa/image-gallery/utils"
	"github.com/gin-gonic/gin"
)

// SearchImages 搜索图片，结果按创建时间倒序
func (h *Handler) SearchImages(c *gin.Context) {
	query := c.Query("q")

	records, err := h.queryService.Search(c.Request.Context(), query)
	if err != nil {
		if utils.IsClientDisconnect(err) {
			c.Abort()
			return
		}
		log.Printf("[Search] Query %q failed: %v", utils.SanitizeLogMessage(query), err)
		common.RespondError(c, http.StatusInternalServerError, "Search failed and could not fix index.")
		return
	}

	common.RespondJSON(c, http.StatusOK, records)
}
