package images

import (
	"errors"
	"log"
	"net/http"

	"github.com/anoixa/image-gallery/api/common"
	"github.com/anoixa/image-gallery/internal/services/gallery"
	"github.com/anoixa/image-gallery/utils"
	"github.com/gin-gonic/gin"
)

// DeleteImage 删除图片文档，文件保留
func (h *Handler) DeleteImage(c *gin.Context) {
	id := c.Param("id")

	if err := h.recordService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gallery.ErrInvalidID) {
			common.RespondError(c, http.StatusBadRequest, "Image id is required")
			return
		}
		log.Printf("[DeleteImage] Failed to delete %s: %v", utils.SanitizeLogMessage(id), err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to delete image")
		return
	}

	common.RespondMessage(c, "Image deleted")
}
