package media

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ImageStore is the remote media store collaborator. Upload returns a durable
// secure URL for the stored blob; Destroy removes a previously uploaded blob
// by its storage id.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
	Destroy(ctx context.Context, publicID string) error
}

// ProductFolder derives the upload folder for a product's image. The folder
// embeds the assigned product id, so uploads can only happen after the record
// has been created.
func ProductFolder(productID int64, productName string) string {
	return fmt.Sprintf("productos/%d-%s", productID, productName)
}

// PublicIDFromURL derives the storage id from a previously returned secure
// URL: last path segment, stem before the last dot. A stem with extra dots is
// kept intact because only the final extension is stripped.
func PublicIDFromURL(rawURL string) string {
	segments := strings.Split(rawURL, "/")
	filename := segments[len(segments)-1]

	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		return filename[:idx]
	}
	return filename
}
