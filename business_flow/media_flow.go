// Package businessflow contains photo upload and serving for ads and notices
package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/jpeg"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	"github.com/mzwakhe/izaziso/utils"
)

// MediaFlow defines operations for photo uploads and retrieval.
type MediaFlow interface {
	UploadPhoto(ctx context.Context, req *dto.UploadMediaRequest, metadata *ClientMetadata) (*dto.UploadMediaResponse, error)
	ServePhoto(ctx context.Context, photoUUID string) (string, string, []byte, error)
	ServeThumbnail(ctx context.Context, photoUUID string) (string, string, []byte, error)
}

// MediaFlowImpl implements MediaFlow.
type MediaFlowImpl struct {
	accountRepo repository.AccountRepository
	mediaRepo   repository.MediaAssetRepository
	auditRepo   repository.AuditLogRepository
	uploadDir   string
}

const defaultPhotoDir = "data/uploads/photos"

// NewMediaFlow creates a new media flow instance. uploadDir is the root
// directory photos are written under; an empty value falls back to the default.
func NewMediaFlow(accountRepo repository.AccountRepository, mediaRepo repository.MediaAssetRepository, auditRepo repository.AuditLogRepository, uploadDir string) MediaFlow {
	if uploadDir == "" {
		uploadDir = defaultPhotoDir
	}
	return &MediaFlowImpl{
		accountRepo: accountRepo,
		mediaRepo:   mediaRepo,
		auditRepo:   auditRepo,
		uploadDir:   filepath.ToSlash(filepath.Clean(uploadDir)),
	}
}

var allowedPhotoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func allowedPhotoFormats() string {
	return "jpg, jpeg, png, gif, webp"
}

// UploadPhoto stores a photo on disk together with a jpeg thumbnail and
// records the asset. Ads and notices later reference it by UUID.
func (f *MediaFlowImpl) UploadPhoto(ctx context.Context, req *dto.UploadMediaRequest, metadata *ClientMetadata) (*dto.UploadMediaResponse, error) {
	if req == nil || req.File == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "file is required", nil)
	}

	account, err := f.accountRepo.ByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, NewBusinessError("UPLOAD_FAILED", "Upload failed", ErrAccountNotFound)
	}

	if req.FileSize <= 0 {
		return nil, NewBusinessError("INVALID_FILE", "file size is required", nil)
	}
	if req.FileSize > utils.MaxPhotoSizeBytes {
		return nil, NewBusinessError("FILE_TOO_LARGE", "Upload failed", ErrMediaTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(req.OriginalFilename))
	if !allowedPhotoExts[ext] {
		return nil, NewBusinessError("INVALID_FILE_TYPE", fmt.Sprintf("allowed file types: %s", allowedPhotoFormats()), ErrMediaUnsupportedFormat)
	}

	storedPath, size, mimeType, err := f.savePhotoToDisk(req.File, ext)
	if err != nil {
		return nil, err
	}

	thumbPath, err := writePhotoThumbnail(storedPath)
	if err != nil {
		// A photo without a thumbnail is still usable
		thumbPath = ""
	}

	asset := models.MediaAsset{
		UUID:             uuid.New(),
		AccountID:        account.ID,
		OriginalFilename: req.OriginalFilename,
		StoredPath:       storedPath,
		ThumbnailPath:    thumbPath,
		SizeBytes:        size,
		MimeType:         mimeType,
		Extension:        ext,
	}

	if err := f.mediaRepo.Save(ctx, &asset); err != nil {
		_ = os.Remove(filepath.FromSlash(storedPath))
		if thumbPath != "" {
			_ = os.Remove(filepath.FromSlash(thumbPath))
		}
		return nil, err
	}

	msg := fmt.Sprintf("Photo uploaded: %s", asset.UUID)
	_ = f.logUpload(ctx, account.ID, msg, metadata)

	resp := &dto.UploadMediaResponse{
		Message:          "Photo uploaded successfully",
		PhotoID:          asset.UUID.String(),
		URL:              fmt.Sprintf("/api/v1/media/%s", asset.UUID),
		MimeType:         asset.MimeType,
		SizeBytes:        asset.SizeBytes,
		OriginalFilename: asset.OriginalFilename,
		CreatedAt:        asset.CreatedAt.Format(time.RFC3339),
	}
	if thumbPath != "" {
		resp.ThumbnailURL = fmt.Sprintf("/api/v1/media/%s/thumbnail", asset.UUID)
	}
	return resp, nil
}

// ServePhoto returns the stored photo bytes. Photos back public ads and
// notices, so no ownership check applies on reads.
func (f *MediaFlowImpl) ServePhoto(ctx context.Context, photoUUID string) (string, string, []byte, error) {
	asset, err := f.lookupAsset(ctx, photoUUID)
	if err != nil {
		return "", "", nil, err
	}

	return f.readPhotoFile(asset.StoredPath, asset.MimeType)
}

// ServeThumbnail returns the stored thumbnail, falling back to the original
func (f *MediaFlowImpl) ServeThumbnail(ctx context.Context, photoUUID string) (string, string, []byte, error) {
	asset, err := f.lookupAsset(ctx, photoUUID)
	if err != nil {
		return "", "", nil, err
	}

	if asset.ThumbnailPath == "" {
		return f.readPhotoFile(asset.StoredPath, asset.MimeType)
	}
	return f.readPhotoFile(asset.ThumbnailPath, "image/jpeg")
}

// Private helper methods

func (f *MediaFlowImpl) lookupAsset(ctx context.Context, photoUUID string) (*models.MediaAsset, error) {
	if photoUUID == "" {
		return nil, NewBusinessError("INVALID_UUID", "photo uuid is required", nil)
	}

	asset, err := f.mediaRepo.ByUUID(ctx, photoUUID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, NewBusinessError("PHOTO_NOT_FOUND", "photo not found", ErrPhotoNotFound)
	}
	return asset, nil
}

func (f *MediaFlowImpl) logUpload(ctx context.Context, accountID uint, description string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:   &accountID,
		Action:      models.AuditActionMediaUploaded,
		Description: &description,
		Success:     utils.ToPtr(true),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	return f.auditRepo.Save(ctx, audit)
}

func (f *MediaFlowImpl) savePhotoToDisk(reader io.Reader, ext string) (string, int64, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", 0, "", err
	}
	head = head[:n]

	detected := http.DetectContentType(head)
	if detected != "application/octet-stream" && !strings.HasPrefix(detected, "image/") {
		return "", 0, "", NewBusinessError("INVALID_FILE_TYPE", "file content is not an image", ErrMediaUnsupportedFormat)
	}
	if detected == "application/octet-stream" {
		if fromExt := mime.TypeByExtension(ext); fromExt != "" {
			detected = fromExt
		}
	}

	dateDir := utils.UTCNow().Format("2006-01-02")
	baseDir := filepath.Join(filepath.FromSlash(f.uploadDir), dateDir)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", 0, "", err
	}

	filename := uuid.New().String() + ext
	fullPath := filepath.Join(baseDir, filename)
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", 0, "", err
	}
	defer dst.Close()

	fullReader := io.MultiReader(bytes.NewReader(head), reader)
	limited := io.LimitReader(fullReader, utils.MaxPhotoSizeBytes+1)
	written, err := io.Copy(dst, limited)
	if err != nil {
		_ = os.Remove(fullPath)
		return "", 0, "", err
	}
	if written > utils.MaxPhotoSizeBytes {
		_ = os.Remove(fullPath)
		return "", 0, "", NewBusinessError("FILE_TOO_LARGE", "file size exceeds the limit", ErrMediaTooLarge)
	}

	return filepath.ToSlash(fullPath), written, detected, nil
}

// writePhotoThumbnail renders a 512px jpeg next to the original
func writePhotoThumbnail(srcPath string) (string, error) {
	file, err := os.Open(filepath.FromSlash(srcPath))
	if err != nil {
		return "", err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", err
	}

	thumb := resizePhoto(img, 512)
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, thumb, &jpeg.Options{Quality: 75}); err != nil {
		return "", err
	}

	thumbPath := strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + "_thumb.jpg"
	if err := os.WriteFile(filepath.FromSlash(thumbPath), buf.Bytes(), 0o644); err != nil {
		return "", err
	}

	return filepath.ToSlash(thumbPath), nil
}

func (f *MediaFlowImpl) readPhotoFile(path, fallbackMime string) (string, string, []byte, error) {
	cleanPath, err := f.sanitizePhotoPath(path)
	if err != nil {
		return "", "", nil, err
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", "", nil, err
	}

	filename := filepath.Base(cleanPath)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = fallbackMime
	}

	return filename, contentType, data, nil
}

func (f *MediaFlowImpl) sanitizePhotoPath(path string) (string, error) {
	if path == "" {
		return "", NewBusinessError("INVALID_PATH", "path is empty", nil)
	}
	cleaned := filepath.ToSlash(filepath.Clean(filepath.FromSlash(path)))
	// Stored paths always live under the configured upload root.
	if cleaned != f.uploadDir && !strings.HasPrefix(cleaned, f.uploadDir+"/") {
		return "", NewBusinessError("INVALID_PATH", "path is outside allowed directory", nil)
	}
	return filepath.FromSlash(cleaned), nil
}

func resizePhoto(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		nh = maxDim
		nw = int(float64(w) * float64(maxDim) / float64(h))
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	imagedraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, imagedraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
