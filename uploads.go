package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/craftflowhq/craftflow_backend/models"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

func extensionFromMimeType(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}

// saveEntityImage validates the multipart upload, stores the original
// plus a 200px-wide JPEG thumbnail, and returns both access URLs.
func (a *App) saveEntityImage(c *gin.Context, entity string, entityId string) (imageURL, thumbnailURL string, err error) {
	ctx := c.Request.Context()
	orgId, _ := c.Params.Get("orgId")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return "", "", fmt.Errorf("image file is required")
	}
	if fileHeader.Size > maxUploadSizeBytes {
		return "", "", fmt.Errorf("file size exceeds 5MB limit")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !imageMimeTypes[contentType] {
		return "", "", fmt.Errorf("unsupported image type")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
	if err != nil {
		return "", "", err
	}
	if int64(len(data)) > maxUploadSizeBytes {
		return "", "", fmt.Errorf("file size exceeds 5MB limit")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("not a decodable image")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = extensionFromMimeType(contentType)
	}
	filename := uuid.NewString() + ext
	folder := path.Join(orgId, entity, entityId)

	imageURL, err = a.storage.Save(ctx, folder, filename, contentType, data)
	if err != nil {
		return "", "", err
	}

	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return "", "", err
	}
	thumbName := strings.TrimSuffix(filename, ext) + "_thumb.jpg"
	thumbnailURL, err = a.storage.Save(ctx, path.Join(folder, "thumbnails"), thumbName, "image/jpeg", buf.Bytes())
	if err != nil {
		// Original saved fine; a missing thumbnail is not fatal.
		a.logger.WithFields(logrus.Fields{
			"field":  "saveEntityImage",
			"entity": entity,
			"id":     entityId,
		}).Warn("thumbnail save failed: " + err.Error())
		thumbnailURL = ""
	}
	return imageURL, thumbnailURL, nil
}

func (a *App) uploadPartImage(c *gin.Context) {
	partId := c.Param("partId")
	part, err := models.GetPart(c.Request.Context(), a.db, partId)
	if err != nil {
		a.respondError(c, "uploads.go", "uploadPartImage", err)
		return
	}

	imageURL, thumbnailURL, err := a.saveEntityImage(c, "parts", partId)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := models.SetPartImageURL(c.Request.Context(), a.db, partId, imageURL); err != nil {
		a.respondError(c, "uploads.go", "uploadPartImage", err)
		return
	}
	if part.ImageURL != "" {
		_ = a.storage.Delete(c.Request.Context(), part.ImageURL)
	}

	c.JSON(http.StatusOK, gin.H{"image_url": imageURL, "thumbnail_url": thumbnailURL})
}

func (a *App) deletePartImage(c *gin.Context) {
	partId := c.Param("partId")
	part, err := models.GetPart(c.Request.Context(), a.db, partId)
	if err != nil {
		a.respondError(c, "uploads.go", "deletePartImage", err)
		return
	}
	if part.ImageURL == "" {
		c.Status(http.StatusNoContent)
		return
	}
	if err := models.SetPartImageURL(c.Request.Context(), a.db, partId, ""); err != nil {
		a.respondError(c, "uploads.go", "deletePartImage", err)
		return
	}
	_ = a.storage.Delete(c.Request.Context(), part.ImageURL)
	c.Status(http.StatusNoContent)
}

func (a *App) uploadProductImage(c *gin.Context) {
	productId := c.Param("productId")
	product, err := models.GetProduct(c.Request.Context(), a.db, productId)
	if err != nil {
		a.respondError(c, "uploads.go", "uploadProductImage", err)
		return
	}

	imageURL, thumbnailURL, err := a.saveEntityImage(c, "products", productId)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := models.SetProductImageURL(c.Request.Context(), a.db, productId, imageURL); err != nil {
		a.respondError(c, "uploads.go", "uploadProductImage", err)
		return
	}
	if product.ImageURL != "" {
		_ = a.storage.Delete(c.Request.Context(), product.ImageURL)
	}

	c.JSON(http.StatusOK, gin.H{"image_url": imageURL, "thumbnail_url": thumbnailURL})
}

func (a *App) deleteProductImage(c *gin.Context) {
	productId := c.Param("productId")
	product, err := models.GetProduct(c.Request.Context(), a.db, productId)
	if err != nil {
		a.respondError(c, "uploads.go", "deleteProductImage", err)
		return
	}
	if product.ImageURL == "" {
		c.Status(http.StatusNoContent)
		return
	}
	if err := models.SetProductImageURL(c.Request.Context(), a.db, productId, ""); err != nil {
		a.respondError(c, "uploads.go", "deleteProductImage", err)
		return
	}
	_ = a.storage.Delete(c.Request.Context(), product.ImageURL)
	c.Status(http.StatusNoContent)
}
