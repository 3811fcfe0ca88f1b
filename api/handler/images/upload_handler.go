package images

import (
	"errors"
	"log"
	"net/http"

	"github.com/anoixa/image-gallery/api/common"
	"github.com/anoixa/image-gallery/api/middleware"
	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/internal/services/gallery"
	"github.com/anoixa/image-gallery/utils"
	"github.com/gin-gonic/gin"
)

// UploadFormField multipart 中图片字段名
const UploadFormField = "image"

// UploadResponse 上传成功响应
type UploadResponse struct {
	Message    string            `json:"message"`
	Filename   string            `json:"filename"`
	Dimensions models.Dimensions `json:"dimensions"`
}

// UploadErrorResponse 上传失败响应
type UploadErrorResponse struct {
	Error         string `json:"error"`
	Stage         string `json:"stage"`
	BlobPersisted bool   `json:"blobPersisted"`
	Filename      string `json:"filename,omitempty"`
}

// UploadImage 处理单图片上传
func (h *Handler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile(UploadFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			common.RespondError(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		common.RespondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[Upload] Failed to open uploaded file: %v", err)
		common.RespondError(c, http.StatusBadRequest, "Invalid form data")
		return
	}
	defer file.Close()

	result, err := h.uploadService.Upload(c.Request.Context(), gallery.UploadInput{
		Reader:      file,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		h.respondUploadError(c, err)
		return
	}

	utils.LogIfDevf("[Upload] request %s stored %s", middleware.GetRequestID(c), result.Filename)
	common.RespondJSON(c, http.StatusOK, UploadResponse{
		Message:    "Image uploaded successfully",
		Filename:   result.Filename,
		Dimensions: result.Record.Dimensions,
	})
}

func (h *Handler) respondUploadError(c *gin.Context, err error) {
	var perr *gallery.PipelineError
	if !errors.As(err, &perr) {
		common.RespondError(c, http.StatusInternalServerError, "Failed to process or index image")
		return
	}

	if errors.Is(perr, gallery.ErrValidation) {
		common.RespondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	message := "Failed to process or index image"
	switch {
	case errors.Is(perr, gallery.ErrStorage):
		message = "Failed to store image"
	case errors.Is(perr, gallery.ErrUnsupportedFormat):
		message = "Unsupported image format"
	}

	common.RespondJSON(c, http.StatusInternalServerError, UploadErrorResponse{
		Error:         message,
		Stage:         string(perr.Stage),
		BlobPersisted: perr.BlobPersisted,
		Filename:      perr.Filename,
	})
}
