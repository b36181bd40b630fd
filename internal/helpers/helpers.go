package helpers

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	AvatarFolder = "avatars"
	ReviewFolder = "reviews"
	RoomFolder   = "rooms"
)

// UploadImage pushes a single multipart file to Cloudinary and returns
// its served URL.
func UploadImage(ctx context.Context, cld *cloudinary.Cloudinary, file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", file.Filename, err)
	}
	defer src.Close()

	result, err := cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder: folder,
		Tags:   []string{"parlor-app"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", file.Filename, err)
	}
	return result.SecureURL, nil
}

// UploadImages uploads each path or remote URL to Cloudinary, skipping
// blanks, and returns the served URLs in order.
func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, images []string, folder string) ([]string, error) {
	var urls []string
	for _, img := range images {
		if strings.TrimSpace(img) == "" {
			continue
		}
		result, err := cld.Upload.Upload(ctx, img, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"parlor-app"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %s: %w", img, err)
		}
		urls = append(urls, result.SecureURL)
	}
	return urls, nil
}
