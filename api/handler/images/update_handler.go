package images

import (
	"errors"
	"log"
	"net/http"

	"github.com/anoixa/image-gallery/api/common"
	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/internal/services/gallery"
	"github.com/anoixa/image-gallery/utils"
	"github.com/gin-gonic/gin"
)

// UpdateImage 合并更新图片的标题、描述或标签
func (h *Handler) UpdateImage(c *gin.Context) {
	id := c.Param("id")

	var patch models.ImagePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.IsEmpty() {
		common.RespondError(c, http.StatusBadRequest, "At least one of title, description or tags is required")
		return
	}

	if err := h.recordService.Update(c.Request.Context(), id, patch); err != nil {
		if errors.Is(err, gallery.ErrInvalidID) {
			common.RespondError(c, http.StatusBadRequest, "Image id is required")
			return
		}
		log.Printf("[UpdateImage] Failed to update %s: %v", utils.SanitizeLogMessage(id), err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to update image")
		return
	}

	common.RespondMessage(c, "Image updated")
}
