package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/utafrali/brandhub/internal/backend"
	"github.com/utafrali/brandhub/internal/domain"
)

type logoFile struct {
	backend.Upload
	file multipart.File
}

func (l *logoFile) close() error {
	return l.file.Close()
}

// extractLogo pulls the optional logo upload out of the parsed form. It
// returns (nil, "") when no file was chosen, or a non-empty message when the
// file is rejected. The content type is sniffed from the leading bytes, not
// taken from the client's declared header.
func extractLogo(r *http.Request) (*logoFile, string) {
	file, header, err := r.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, ""
	}
	if err != nil {
		return nil, "could not read the uploaded file"
	}

	// Browsers submit an empty part when the file input is left blank.
	if header.Filename == "" && header.Size == 0 {
		_ = file.Close()
		return nil, ""
	}

	if header.Size > domain.MaxLogoSize {
		_ = file.Close()
		return nil, "must be 5 MB or smaller"
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = file.Close()
		return nil, "could not read the uploaded file"
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, "could not read the uploaded file"
	}

	contentType := http.DetectContentType(head[:n])
	if !domain.IsAllowedLogoType(contentType) {
		_ = file.Close()
		return nil, "must be a JPEG, PNG, WebP, or GIF image"
	}

	return &logoFile{
		Upload: backend.Upload{
			Filename:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Data:        file,
		},
		file: file,
	}, ""
}
