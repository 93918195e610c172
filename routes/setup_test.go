package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"testing"

	"jasminecake/db"
	"jasminecake/models"
	"jasminecake/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestApp wires a fresh in-memory database, a temp-dir bucket and a
// fiber app with all routes mounted.
func newTestApp(t *testing.T) (*fiber.App, *storage.Bucket) {
	t.Helper()

	g, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	sqlDB, err := g.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	db.Migrate(g)
	db.DB = g

	b, err := storage.Open("kue", t.TempDir(), "http://test.local")
	if err != nil {
		t.Fatalf("failed to open test bucket: %v", err)
	}

	app := fiber.New(fiber.Config{BodyLimit: 32 * 1024 * 1024})
	SetupRoutes(app, b)

	return app, b
}

// doJSON sends a JSON request through the app and returns the response.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

// doJSONWithKey is doJSON plus the admin API key header.
func doJSONWithKey(t *testing.T, app *fiber.App, method, path string, body interface{}, key string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req, err := http.NewRequest(method, path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", key)

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

// decodeBody reads a response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	out := map[string]interface{}{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return out
}

// decodeInto reads a response body into a typed value.
func decodeInto(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// uploadImage posts a multipart file to path. contentType goes into the
// file part's header, extra fields become ordinary form values.
func uploadImage(t *testing.T, app *fiber.App, path, field, filename, contentType string, data []byte, fields map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write multipart data: %v", err)
	}

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	if err != nil {
		t.Fatalf("failed to build upload request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("upload %s failed: %v", path, err)
	}
	return resp
}

type testUpload struct {
	filename    string
	contentType string
	data        []byte
}

// uploadImages posts several files under the "files" field in one
// multipart request, for the batch endpoint.
func uploadImages(t *testing.T, app *fiber.App, path string, files []testUpload, fields map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.filename))
		header.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("failed to create multipart part: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("failed to write multipart data: %v", err)
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	if err != nil {
		t.Fatalf("failed to build upload request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("upload %s failed: %v", path, err)
	}
	return resp
}

// storageDirEntries walks the bucket's backing directory and returns
// every file name found, relative to the root.
func storageDirEntries(root string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, path)
		}
		return nil
	})
	return names, err
}

// createTestProduct inserts a product directly and returns it.
func createTestProduct(t *testing.T, name string, categoryID *uint) models.Product {
	t.Helper()

	product := models.Product{
		Name:        name,
		CategoryID:  categoryID,
		IsAvailable: true,
	}
	if err := db.DB.Create(&product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// createTestCategory inserts a category through the API so display
// order assignment stays on the real path.
func createTestCategory(t *testing.T, app *fiber.App, name, slug string) uint {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/categories", map[string]interface{}{
		"name": name,
		"slug": slug,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("failed to create test category, status %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return uint(body["id"].(float64))
}
