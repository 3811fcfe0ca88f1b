package images

import (
	"log"
	"net/http"

	"github.com/anoixa/image-gallery/api/common"
	"github.com/gin-gonic/gin"
)

// ResetResponse 重置响应
type ResetResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
	Failed  int    `json:"failed"`
}

// ResetImages 清空索引与全部图片
func (h *Handler) ResetImages(c *gin.Context) {
	result, err := h.resetService.Reset(c.Request.Context())
	if err != nil {
		log.Printf("[Reset] %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to read images directory")
		return
	}

	common.RespondJSON(c, http.StatusOK, ResetResponse{
		Message: "Images reset successful",
		Deleted: result.Deleted,
		Failed:  result.Failed,
	})
}
