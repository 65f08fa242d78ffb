package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartCV/internal/errcode"
	"smartCV/internal/session"
	"smartCV/internal/style"
	"smartCV/internal/tasks"
	"smartCV/internal/worker"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeAssets struct {
	objects map[string][]byte
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{objects: map[string][]byte{}}
}

func (f *fakeAssets) UploadFile(_ context.Context, name string, r io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.objects[name] = b
	return &minio.UploadInfo{Key: name}, nil
}

func (f *fakeAssets) DeleteObject(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeAssets) GetBytes(_ context.Context, key string) ([]byte, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return b, nil
}

type fakePrinter struct {
	html []byte
	err  error
}

func (p *fakePrinter) Print(_ context.Context, html []byte) ([]byte, error) {
	p.html = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.7"), nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

type fakeScanner struct {
	err error
}

func (s fakeScanner) Scan(r io.Reader) error {
	_, _ = io.Copy(io.Discard, r)
	return s.err
}

func newTestRouter(t *testing.T, mutate func(*Deps)) (*gin.Engine, *session.Session) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := session.New(session.Options{})
	deps := Deps{
		Session:        s,
		Printer:        &fakePrinter{},
		Assets:         newFakeAssets(),
		MaxUploadBytes: 1 << 20,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return NewRouter(deps), s
}

func do(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func upload(r http.Handler, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, _ := mw.CreateFormFile(field, filename)
	_, _ = part.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	return int(decodeBody(t, w)["code"].(float64))
}

func TestHealthAndCorrelationID(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Correlation-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "bad id with spaces")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "bad id with spaces", w.Header().Get("X-Correlation-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestAddSkill_LevelValidatedAtBoundary(t *testing.T) {
	r, s := newTestRouter(t, nil)
	before := len(s.Document().Skills)

	w := do(r, http.MethodPost, "/v1/document/skills", []byte(`{"name":"Go","level":6}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodPost, "/v1/document/skills", []byte(`{"name":"Go","level":0}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, s.Document().Skills, before)

	w = do(r, http.MethodPost, "/v1/document/skills", []byte(`{"name":"Go","level":5}`))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["id"].(string)
	assert.NotEmpty(t, id)

	w = do(r, http.MethodDelete, "/v1/document/skills/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, http.MethodDelete, "/v1/document/skills/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errcode.ResourceMissing, errorCode(t, w))
}

func TestImport_ErrorsLeaveStateUnchanged(t *testing.T) {
	r, s := newTestRouter(t, nil)
	before := s.Document()

	w := do(r, http.MethodPost, "/v1/import", []byte(`{"personalInfo":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errcode.BadRequest, errorCode(t, w))

	w = do(r, http.MethodPost, "/v1/import", []byte(`{"experience":[]}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, errcode.Invalid, errorCode(t, w))

	assert.Equal(t, before, s.Document())
}

func TestExportThenImport(t *testing.T) {
	r, s := newTestRouter(t, nil)
	require.NoError(t, s.UpdatePersonalInfo(session.PersonalInfoPatch{FullName: ptr("Nimal Perera")}))

	w := do(r, http.MethodGet, "/v1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cv.json")
	exported := w.Body.Bytes()

	other, s2 := newTestRouter(t, nil)
	w = do(other, http.MethodPost, "/v1/import", exported)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Nimal Perera", s2.Document().PersonalInfo.FullName)
}

func TestProfiles_BuiltinProtected(t *testing.T) {
	r, s := newTestRouter(t, nil)

	w := do(r, http.MethodDelete, "/v1/profiles/builtin-blue", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errcode.Forbidden, errorCode(t, w))

	w = do(r, http.MethodPost, "/v1/profiles", []byte(`{"name":"Mine"}`))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["id"].(string)
	assert.Equal(t, id, s.Config().ActiveProfileID)

	w = do(r, http.MethodPost, "/v1/profiles/nope/select", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/v1/profiles/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "builtin-blue", s.Config().ActiveProfileID)

	w = do(r, http.MethodPost, "/v1/profiles/import", []byte(`{"not":"an array"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateConfig_InvalidValuesRejected(t *testing.T) {
	r, s := newTestRouter(t, nil)
	before := s.Config()

	w := do(r, http.MethodPatch, "/v1/config", []byte(`{"templateId":"neon","spacing":9}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["fields"], 2)
	assert.Equal(t, before, s.Config())

	w = do(r, http.MethodPatch, "/v1/config", []byte(`{"templateId":"classic"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, "classic", s.Config().TemplateID)
}

func TestTableEditFlow(t *testing.T) {
	r, s := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/v1/tables", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/v1/tables/0/edit", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	editID := decodeBody(t, w)["editId"].(string)

	w = do(r, http.MethodPost, "/v1/table-edits/"+editID+"/ops", []byte(`{"op":"addColumn"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.Document().CustomTables[0].Headers, 2, "working copy must not leak into the document")

	w = do(r, http.MethodPost, "/v1/table-edits/"+editID+"/ops", []byte(`{"op":"explode"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/table-edits/"+editID+"/commit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.Document().CustomTables[0].Headers, 3)

	w = do(r, http.MethodPost, "/v1/table-edits/"+editID+"/commit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTableEdit_StaleCommit(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/v1/tables", nil).Code)

	w := do(r, http.MethodPost, "/v1/tables/0/edit", nil)
	editID := decodeBody(t, w)["editId"].(string)

	require.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/v1/tables/0", nil).Code)
	w = do(r, http.MethodPost, "/v1/table-edits/"+editID+"/commit", nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Equal(t, errcode.StaleEdit, errorCode(t, w))
}

func TestTableImport_ScannedAndValidated(t *testing.T) {
	r, _ := newTestRouter(t, func(d *Deps) { d.Scanner = fakeScanner{err: ErrInfected} })
	w := upload(r, "/v1/tables/import", "file", "data.xlsx", []byte("whatever"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "malicious")

	r, _ = newTestRouter(t, func(d *Deps) { d.Scanner = fakeScanner{} })
	w = upload(r, "/v1/tables/import", "file", "data.xlsx", []byte("not a workbook"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSectionStyles(t *testing.T) {
	r, s := newTestRouter(t, nil)

	w := do(r, http.MethodPut, "/v1/document/section-styles/nowhere", []byte(`{"color":"#000000"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/v1/document/section-styles/main-header", []byte(`{"color":"#112233"}`))
	require.Equal(t, http.StatusOK, w.Code)
	st := s.Document().SectionStyles["main-header"]
	require.NotNil(t, st.Color)
	assert.Equal(t, "#112233", *st.Color)

	w = do(r, http.MethodDelete, "/v1/document/section-styles/main-header", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, s.Document().SectionStyles, style.SectionID("main-header"))
}

func TestSectionStyles_OutOfRangeRejectedWithFields(t *testing.T) {
	r, s := newTestRouter(t, nil)
	before := s.Document()

	for name, body := range map[string]string{
		"unknown weight": `{"fontWeight":"heavy"}`,
		"font too large": `{"fontSize":3}`,
		"bad alignment":  `{"textAlign":"middle"}`,
		"negative width": `{"borderWidth":-1}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := do(r, http.MethodPut, "/v1/document/section-styles/main-header", []byte(body))
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			resp := decodeBody(t, w)
			assert.Equal(t, float64(errcode.Invalid), resp["code"])
			assert.NotEmpty(t, resp["fields"])
		})
	}
	assert.Equal(t, before, s.Document())

	w := do(r, http.MethodPut, "/v1/document/section-styles/main-header", []byte(`{"fontWeight":"bold","fontSize":1.2}`))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImageStyle_BorderRadiusIsPercentage(t *testing.T) {
	r, s := newTestRouter(t, nil)
	before := s.Document()

	w := do(r, http.MethodPut, "/v1/document/image-style", []byte(`{"borderRadius":60,"borderWidth":2}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, before, s.Document())

	w = do(r, http.MethodPut, "/v1/document/image-style", []byte(`{"borderRadius":50,"borderWidth":2}`))
	require.Equal(t, http.StatusOK, w.Code)
	img := s.Document().PersonalInfo.ImageStyle
	require.NotNil(t, img)
	assert.Equal(t, 50.0, img.BorderRadius)
}

func TestLayoutSections(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/v1/layouts/classic/sections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "classic-header")

	w = do(r, http.MethodGet, "/v1/layouts/neon/sections", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRender(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/v1/render", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "main-experience")

	w = do(r, http.MethodGet, "/v1/render/html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestUploadPhoto_InlinedIntoHTML(t *testing.T) {
	assets := newFakeAssets()
	r, s := newTestRouter(t, func(d *Deps) { d.Assets = assets })

	w := upload(r, "/v1/document/image", "file", "me.txt", []byte("plain text"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = upload(r, "/v1/document/image", "file", "me.png", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code)
	key := decodeBody(t, w)["objectKey"].(string)
	assert.True(t, strings.HasPrefix(key, "user-assets/"))
	assert.Contains(t, assets.objects, key)
	assert.Equal(t, key, s.Document().PersonalInfo.ImageURL)

	w = do(r, http.MethodGet, "/v1/render/html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "data:image/png;base64,")
	assert.NotContains(t, w.Body.String(), key)

	w = upload(r, "/v1/document/image", "file", "again.png", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code)
	next := decodeBody(t, w)["objectKey"].(string)
	assert.NotContains(t, assets.objects, key, "replaced photo is removed")
	assert.Contains(t, assets.objects, next)
}

func TestUploadPhoto_InfectedRejected(t *testing.T) {
	assets := newFakeAssets()
	r, s := newTestRouter(t, func(d *Deps) {
		d.Assets = assets
		d.Scanner = fakeScanner{err: ErrInfected}
	})

	w := upload(r, "/v1/document/image", "file", "me.png", pngHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, assets.objects)
	assert.Empty(t, s.Document().PersonalInfo.ImageURL)
}

func TestRender_RejectsForgedAssetKey(t *testing.T) {
	r, s := newTestRouter(t, nil)
	require.NoError(t, s.UpdatePersonalInfo(session.PersonalInfoPatch{ImageURL: ptr("user-assets/../secret.png")}))

	w := do(r, http.MethodGet, "/v1/render/html", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportPDF_Sync(t *testing.T) {
	printer := &fakePrinter{}
	r, s := newTestRouter(t, func(d *Deps) { d.Printer = printer })
	require.NoError(t, s.UpdatePersonalInfo(session.PersonalInfoPatch{FullName: ptr("Ada Lovelace")}))

	w := do(r, http.MethodPost, "/v1/export/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Ada_Lovelace_CV.pdf")
	assert.Contains(t, string(printer.html), "Ada Lovelace")
	assert.False(t, s.Busy(session.BusyExport))
}

func TestExportPDF_PrintFailure(t *testing.T) {
	r, _ := newTestRouter(t, func(d *Deps) { d.Printer = &fakePrinter{err: errors.New("chromium crashed")} })

	w := do(r, http.MethodPost, "/v1/export/pdf", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errcode.RenderFailed, errorCode(t, w))
}

func TestExportPDF_AsyncEnqueues(t *testing.T) {
	q := &fakeEnqueuer{}
	r, _ := newTestRouter(t, func(d *Deps) { d.Tasks = q })

	req := httptest.NewRequest(http.MethodPost, "/v1/export/pdf", nil)
	req.Header.Set("X-Correlation-ID", "corr-9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "task-1", body["taskId"])
	assert.Equal(t, "corr-9", body["correlationId"])

	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.TypePDFRender, q.tasks[0].Type())
	var payload tasks.PDFRenderPayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &payload))
	assert.Equal(t, "corr-9", payload.CorrelationID)
	assert.Contains(t, string(payload.Bundle), `"config"`)
}

func TestSuggestText_FallsBackToOriginal(t *testing.T) {
	r, s := newTestRouter(t, nil)
	require.NoError(t, s.UpdatePersonalInfo(session.PersonalInfoPatch{Summary: ptr("builds things")}))

	w := do(r, http.MethodPost, "/v1/suggest/text", []byte(`{"kind":"summary"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "builds things", decodeBody(t, w)["text"])

	w = do(r, http.MethodPost, "/v1/suggest/text", []byte(`{"kind":"experience"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/suggest/text", []byte(`{"kind":"experience","experienceId":"missing"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuggestStyle_UnavailableOffersFallbackWithoutApplying(t *testing.T) {
	r, s := newTestRouter(t, nil)
	require.NoError(t, s.SelectProfile("builtin-crimson"))
	before := s.Config()

	w := upload(r, "/v1/suggest/style", "image", "cv.png", pngHeader)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["applied"])
	suggestion := body["suggestion"].(map[string]any)
	assert.Equal(t, "#3b82f6", suggestion["primaryColor"])
	assert.Equal(t, "Inter, sans-serif", suggestion["headingFont"])

	assert.Equal(t, before, s.Config())
	assert.Equal(t, "builtin-crimson", s.Config().ActiveProfileID)
}

func TestSuggestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r, _ := newTestRouter(t, func(d *Deps) {
		d.Redis = client
		d.SuggestPerMinute = 1
	})

	w := do(r, http.MethodPost, "/v1/suggest/text", []byte(`{"kind":"summary"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, "/v1/suggest/text", []byte(`{"kind":"summary"}`))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = do(r, http.MethodGet, "/v1/document", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebSocket_RelaysMatchingNotifications(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r, _ := newTestRouter(t, func(d *Deps) { d.Redis = client })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?correlationId=corr-2"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(worker.NotifyChannel)[worker.NotifyChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, worker.PublishNotify(ctx, client, worker.ExportNotifyMessage{Status: worker.StatusCompleted, CorrelationID: "corr-1"}))
	require.NoError(t, worker.PublishNotify(ctx, client, worker.ExportNotifyMessage{Status: worker.StatusCompleted, CorrelationID: "corr-2", URL: "https://minio.invalid/x.pdf"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg worker.ExportNotifyMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "corr-2", msg.CorrelationID)
	assert.Equal(t, "https://minio.invalid/x.pdf", msg.URL)
}

func TestWebSocket_UnavailableWithoutRedis(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := do(r, http.MethodGet, "/v1/ws", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func ptr[T any](v T) *T { return &v }
