package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"fixit-api/gcs"
)

// UploadImageToGCS streams an image into the photo bucket and returns
// its public URL.
func UploadImageToGCS(reader io.Reader, contentType, folder string) (string, error) {
	if gcs.Client == nil {
		return "", fmt.Errorf("storage not configured")
	}

	ctx := context.Background()

	extension := "jpg"
	switch strings.ToLower(contentType) {
	case "image/png":
		extension = "png"
	case "image/jpeg", "image/jpg":
		extension = "jpeg"
	case "image/gif":
		extension = "gif"
	default:
		logger.Warn().Str("contentType", contentType).Msg("unsupported content type, defaulting to .jpg")
	}

	objectName := fmt.Sprintf("%s/%s_%d.%s", folder, uuid.NewString(), time.Now().UnixNano(), extension)

	writer := gcs.Client.Bucket(gcs.Bucket).Object(objectName).NewWriter(ctx)
	if contentType == "" {
		contentType = "image/jpeg"
	}
	writer.ContentType = contentType

	if _, err := io.Copy(writer, reader); err != nil {
		return "", fmt.Errorf("copy to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}

	publicURL := fmt.Sprintf("https://storage.googleapis.com/%s/%s", gcs.Bucket, objectName)
	return publicURL, nil
}

// uploadReportPhoto decodes the base64 payload the app sends and
// uploads it. Returns "" when storage is unavailable so the caller can
// keep the inline payload instead.
func uploadReportPhoto(photoBase64 string) string {
	if gcs.Client == nil || photoBase64 == "" {
		return ""
	}

	data, err := base64.StdEncoding.DecodeString(photoBase64)
	if err != nil {
		logger.Warn().Err(err).Msg("report photo is not valid base64")
		return ""
	}

	url, err := UploadImageToGCS(bytes.NewReader(data), "image/jpeg", "reports")
	if err != nil {
		logger.Error().Err(err).Msg("report photo upload failed")
		return ""
	}
	return url
}
