package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/model"
)

// Upload describes an image stored on IPFS.
type Upload struct {
	CID         string `json:"cid"`
	URI         string `json:"uri"`
	GatewayURL  string `json:"gateway_url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// UploadImage stores an image on IPFS. The content must be at most
// model.MaxUploadSize bytes and sniff (or, failing that, be named) as an
// image/* type. The returned GatewayURL is an http link usable as a mint
// image reference.
func (s *Client) UploadImage(ctx context.Context, name string, r io.Reader) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, model.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > model.MaxUploadSize {
		return nil, &model.ValidationError{Field: "file", Err: model.ErrImageTooLarge}
	}
	if len(data) == 0 {
		return nil, &model.ValidationError{Field: "file", Err: model.ErrNotAnImage}
	}

	contentType := DetectImageType(name, data)
	if contentType == "" {
		zap.L().Debug("rejected non-image upload", zap.String("name", name))
		return nil, &model.ValidationError{Field: "file", Err: model.ErrNotAnImage}
	}

	cid, err := s.backend().Add(ctx, data)
	if err != nil {
		return nil, &model.QueryError{Op: "upload image to IPFS", Err: err}
	}

	up := &Upload{
		CID:         cid,
		URI:         IpfsPrefix + cid,
		GatewayURL:  s.GatewayLink(cid),
		ContentType: contentType,
		Size:        len(data),
	}
	zap.L().Info("image uploaded", zap.String("cid", cid), zap.String("type", contentType), zap.Int("size", up.Size))
	return up, nil
}

// DetectImageType returns the image MIME type of data, or "" when it is not
// an image. Content sniffing wins; the file extension is consulted for types
// the sniffer cannot recognize, such as SVG.
func DetectImageType(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, model.ImageMIMEPrefix) {
		return sniffed
	}
	if strings.HasPrefix(sniffed, "text/html") || sniffed == "application/pdf" || strings.HasPrefix(sniffed, "application/zip") {
		return ""
	}
	byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if strings.HasPrefix(byExt, model.ImageMIMEPrefix) {
		if i := strings.Index(byExt, ";"); i >= 0 {
			byExt = byExt[:i]
		}
		return byExt
	}
	return ""
}
