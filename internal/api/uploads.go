package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pribylovaa/modverse-client/internal/client"
	"github.com/pribylovaa/modverse-client/internal/models"
)

// Uploads — загрузка файлов (multipart, поле "file").
type Uploads struct {
	c *client.Client
}

// File загружает файл назначения kind (models.UploadModFile и т.п.).
func (u *Uploads) File(ctx context.Context, kind, name string, r io.Reader) (*models.Envelope[models.UploadResult], error) {
	const op = "api.Uploads.File"

	body, ct, err := multipartFile(name, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return client.Call[models.UploadResult](ctx, u.c, client.Request{
		Method:      http.MethodPost,
		Path:        "upload/file",
		Query:       url.Values{"type": {kind}},
		RawBody:     body,
		ContentType: ct,
	})
}

// PostImage загружает картинку для текста мода; data — URL картинки.
func (u *Uploads) PostImage(ctx context.Context, name string, r io.Reader) (*models.Envelope[string], error) {
	const op = "api.Uploads.PostImage"

	body, ct, err := multipartFile(name, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return client.Call[string](ctx, u.c, client.Request{
		Method:      http.MethodPost,
		Path:        "upload/post_image",
		RawBody:     body,
		ContentType: ct,
	})
}

func (u *Uploads) Get(ctx context.Context, fileID uint64) (*models.Envelope[models.StorageFile], error) {
	return get[models.StorageFile](ctx, u.c, "upload/"+id(fileID), nil)
}

func (u *Uploads) List(ctx context.Context) (*models.Envelope[[]models.StorageFile], error) {
	return get[[]models.StorageFile](ctx, u.c, "upload", nil)
}

func (u *Uploads) Delete(ctx context.Context, fileID uint64) (*models.Raw, error) {
	return send(ctx, u.c, http.MethodDelete, "upload/"+id(fileID), nil)
}

// multipartFile собирает тело целиком в памяти: повтор после refresh
// должен отправить те же байты.
func multipartFile(name string, r io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, "", fmt.Errorf("read %q: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
