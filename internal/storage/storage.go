// Package storage persists uploaded media (app icons, banners, category icons)
// and hands back the public URL to store on the entity.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/google/uuid"
)

// Store accepts a media payload and returns the URL it is served from.
type Store interface {
	Put(ctx context.Context, payload string) (string, error)
}

var allowedTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// LocalStore writes objects under Dir and serves them below PublicURL.
type LocalStore struct {
	Dir       string
	PublicURL string
	MaxBytes  int
}

func NewLocalStore(dir, publicURL string, maxBytes int) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{Dir: dir, PublicURL: strings.TrimRight(publicURL, "/"), MaxBytes: maxBytes}, nil
}

// Put stores a base64 payload, optionally in data-URL form. An empty payload
// or a value that is already an http(s) URL is returned unchanged.
func (s *LocalStore) Put(ctx context.Context, payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" || strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://") ||
		(s.PublicURL != "" && strings.HasPrefix(payload, s.PublicURL+"/")) {
		return payload, nil
	}

	if i := strings.Index(payload, ","); strings.HasPrefix(payload, "data:") && i > 0 {
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", apperr.Validation("media must be base64 encoded")
	}
	if s.MaxBytes > 0 && len(data) > s.MaxBytes {
		return "", apperr.Validation(fmt.Sprintf("media exceeds %d bytes", s.MaxBytes))
	}

	mt := mimetype.Detect(data)
	if !allowedTypes[mt.String()] {
		return "", apperr.Validation("unsupported media type " + mt.String())
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.PublicURL + "/" + name, nil
}
