package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mkamran/campushub/internal/imaging"
	"github.com/mkamran/campushub/internal/lifecycle"
)

// maxUploadBytes caps multipart request bodies.
const maxUploadBytes = 5 << 20

// parseOptionalImage extracts and processes the "image" part of an already
// parsed multipart form. It returns nil when no file was attached.
func parseOptionalImage(r *http.Request) (*lifecycle.Upload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading image upload: %w", err)
	}
	defer file.Close()

	processed, err := imaging.Process(file)
	if err != nil {
		return nil, err
	}

	return &lifecycle.Upload{
		Filename:    header.Filename,
		Data:        processed.Data,
		ContentType: processed.MIME,
	}, nil
}
