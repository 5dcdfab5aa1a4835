package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wallfeed/wall-service/internal/domain/models"
	"github.com/wallfeed/wall-service/internal/service/wall"
	"github.com/wallfeed/wall-service/internal/storage/blob"
	"github.com/wallfeed/wall-service/internal/transport/validate"
	"github.com/wallfeed/wall-service/internal/transport/ws"
)

type fakeWall struct {
	posts   []models.Post
	created []models.Post
}

func (f *fakeWall) Create(_ context.Context, content, imageUrl string) (models.Post, error) {
	if err := validate.Content(content); err != nil {
		return models.Post{}, wall.ErrInvalidContent
	}

	post := models.Post{
		Id:        int64(len(f.created) + 1),
		Content:   content,
		ImageUrl:  imageUrl,
		CreatedAt: time.Now().UTC(),
	}
	f.created = append(f.created, post)

	return post, nil
}

func (f *fakeWall) Recent(_ context.Context) ([]models.Post, error) {
	return f.posts, nil
}

type fakeUploader struct {
	uploads int
}

func (f *fakeUploader) Upload(
	_ context.Context,
	filename string,
	_ string,
	r io.Reader,
	_ int64,
) (string, string, error) {
	f.uploads++
	io.Copy(io.Discard, r)

	key := blob.ObjectKey(filename)
	return key, "http://blobs/images/" + key, nil
}

func newTestServer(t *testing.T, srvc *fakeWall, uploader *fakeUploader) *Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := ws.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub.Start(ctx)

	profile := models.Profile{Name: "Donnie Minter", Caption: "wall", City: "Dallas, TX"}

	return New(log, 0, srvc, uploader, hub, profile, time.Second)
}

func TestListPostsNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	srvc := &fakeWall{posts: []models.Post{
		{Id: 3, Content: "t3", CreatedAt: now},
		{Id: 2, Content: "t2", CreatedAt: now.Add(-time.Minute)},
		{Id: 1, Content: "t1", CreatedAt: now.Add(-2 * time.Minute)},
	}}
	s := newTestServer(t, srvc, &fakeUploader{})

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Posts []models.Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 3)
	require.Equal(t, "t3", resp.Posts[0].Content)
	require.Equal(t, "t2", resp.Posts[1].Content)
	require.Equal(t, "t1", resp.Posts[2].Content)
}

func TestCreatePost(t *testing.T) {
	srvc := &fakeWall{}
	s := newTestServer(t, srvc, &fakeUploader{})

	body, _ := json.Marshal(map[string]string{"content": "Hello"})
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, srvc.created, 1)
	require.Equal(t, "Hello", srvc.created[0].Content)
	require.Empty(t, srvc.created[0].ImageUrl)

	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	require.Equal(t, "Hello", post.Content)
}

func TestCreatePostRejectsInvalidContent(t *testing.T) {
	for _, content := range []string{"", strings.Repeat("a", 281)} {
		srvc := &fakeWall{}
		s := newTestServer(t, srvc, &fakeUploader{})

		body, _ := json.Marshal(map[string]string{"content": content})
		rec := httptest.NewRecorder()
		s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(body)))

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Empty(t, srvc.created)
	}
}

func TestCreatePostBadBody(t *testing.T) {
	s := newTestServer(t, &fakeWall{}, &fakeUploader{})

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader("not json")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload(t *testing.T) {
	uploader := &fakeUploader{}
	s := newTestServer(t, &fakeWall{}, uploader)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	part.Write([]byte("not really a png"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, uploader.uploads)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp["key"], blob.Namespace+"/")
	require.Contains(t, resp["key"], "photo.png")
	require.Contains(t, resp["url"], resp["key"])
}

func TestUploadWithoutFile(t *testing.T) {
	s := newTestServer(t, &fakeWall{}, &fakeUploader{})

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t, &fakeWall{}, &fakeUploader{})

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "Donnie Minter", profile.Name)
	require.Equal(t, "Dallas, TX", profile.City)
}

func TestIndexServesPage(t *testing.T) {
	s := newTestServer(t, &fakeWall{}, &fakeUploader{})

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "characters remaining")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeWall{}, &fakeUploader{})

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}
