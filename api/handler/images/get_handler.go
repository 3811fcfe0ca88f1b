package images

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/anoixa/image-gallery/api/common"
	"github.com/anoixa/image-gallery/storage"
	"github.com/anoixa/image-gallery/utils"
	"github.com/anoixa/image-gallery/utils/pool"
	"github.com/gin-gonic/gin"
)

// fileOpener 可直接打开本地文件的存储
type fileOpener interface {
	OpenFile(ctx context.Context, name string) (*os.File, error)
}

// GetImage 输出已存储的图片
func (h *Handler) GetImage(c *gin.Context) {
	filename := c.Param("filename")
	if !storage.IsValidName(filename) {
		common.RespondError(c, http.StatusNotFound, "Image file not found")
		return
	}

	// 本地存储
	if opener, ok := h.storage.(fileOpener); ok {
		h.serveBySendfile(c, opener, filename)
		return
	}

	// 远程存储
	h.serveByStream(c, filename)
}

// serveBySendfile 本地文件交给 http.ServeContent，支持 Range 与条件请求
func (h *Handler) serveBySendfile(c *gin.Context, opener fileOpener, filename string) {
	f, err := opener.OpenFile(c.Request.Context(), filename)
	if err != nil {
		h.respondFetchError(c, filename, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.respondFetchError(c, filename, err)
		return
	}

	setImageHeaders(c, filename)
	http.ServeContent(c.Writer, c.Request, filename, info.ModTime(), f)
}

func (h *Handler) serveByStream(c *gin.Context, filename string) {
	ctx := c.Request.Context()

	size, err := h.storage.StatWithContext(ctx, filename)
	if err != nil {
		h.respondFetchError(c, filename, err)
		return
	}

	rc, err := h.storage.GetWithContext(ctx, filename)
	if err != nil {
		h.respondFetchError(c, filename, err)
		return
	}
	defer rc.Close()

	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	setImageHeaders(c, filename)
	if size > 0 {
		c.Header("Content-Length", strconv.FormatInt(size, 10))
	}
	c.Status(http.StatusOK)
	if c.Request.Method == http.MethodHead {
		return
	}
	if _, err := io.CopyBuffer(c.Writer, rc, *buf); err != nil && !utils.IsClientDisconnect(err) {
		log.Printf("[GetImage] Failed to stream %s: %v", utils.SanitizeLogFilename(filename), err)
	}
}

// setImageHeaders 文件名包含随机前缀，内容不可变
func setImageHeaders(c *gin.Context, filename string) {
	c.Header("Content-Type", utils.ContentTypeFromFilename(filename))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("X-Content-Type-Options", "nosniff")
}

func (h *Handler) respondFetchError(c *gin.Context, filename string, err error) {
	c.Header("Cache-Control", "no-store")
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		common.RespondError(c, http.StatusNotFound, "Image file not found")
		return
	}
	log.Printf("[GetImage] Failed to get image %s: %v", utils.SanitizeLogFilename(filename), err)
	common.RespondError(c, http.StatusInternalServerError, "Failed to read image")
}
