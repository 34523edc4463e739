package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/models"
)

// multipartSave builds a multipart save request body from a draft payload
// and optional file parts keyed by block id.
func multipartSave(t *testing.T, payload draftPayload, files map[uuid.UUID][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal draft: %v", err)
	}
	if err := mw.WriteField("article", string(raw)); err != nil {
		t.Fatalf("write article field: %v", err)
	}

	for blockID, data := range files {
		part, err := mw.CreateFormFile(filePartPrefix+blockID.String(), "photo.png")
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		part.Write(data)
	}

	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestParseDraftForm(t *testing.T) {
	imgID := uuid.New()
	payload := draftPayload{
		Title:         "Une journée",
		PublishedDate: "2003-07-14",
		Slug:          "",
		Blocks: []models.Block{
			{ID: uuid.New(), Type: models.BlockParagraph, Content: "du texte"},
			{ID: imgID, Type: models.BlockImage},
		},
	}
	body, contentType := multipartSave(t, payload, map[uuid.UUID][]byte{
		imgID: []byte("fake image bytes"),
	})

	r := httptest.NewRequest(http.MethodPost, "/moderation/articles", body)
	r.Header.Set("Content-Type", contentType)

	draft, errMsg := parseDraftForm(r, uuid.Nil)
	if errMsg != "" {
		t.Fatalf("parseDraftForm: %s", errMsg)
	}

	if draft.Title != "Une journée" || draft.PublishedDate != "2003-07-14" {
		t.Errorf("draft fields = %q / %q", draft.Title, draft.PublishedDate)
	}
	if len(draft.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(draft.Blocks))
	}

	// The file part landed on its image block as a pending upload.
	img := draft.Blocks[1]
	if img.Pending == nil {
		t.Fatal("expected pending file on image block")
	}
	if img.Pending.Name != "photo.png" {
		t.Errorf("pending name = %q", img.Pending.Name)
	}
	if string(img.Pending.Data) != "fake image bytes" {
		t.Error("pending data mismatch")
	}
}

func TestParseDraftFormRejects(t *testing.T) {
	t.Run("unknown block type", func(t *testing.T) {
		payload := draftPayload{
			Title:         "x",
			PublishedDate: "2003-01-01",
			Blocks:        []models.Block{{ID: uuid.New(), Type: "table"}},
		}
		body, contentType := multipartSave(t, payload, nil)
		r := httptest.NewRequest(http.MethodPost, "/moderation/articles", body)
		r.Header.Set("Content-Type", contentType)

		if _, errMsg := parseDraftForm(r, uuid.Nil); errMsg == "" {
			t.Error("expected rejection for unknown block type")
		}
	})

	t.Run("malformed article json", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("article", "{not json")
		mw.Close()

		r := httptest.NewRequest(http.MethodPost, "/moderation/articles", &buf)
		r.Header.Set("Content-Type", mw.FormDataContentType())

		if _, errMsg := parseDraftForm(r, uuid.Nil); errMsg == "" {
			t.Error("expected rejection for malformed json")
		}
	})

	t.Run("bad file part name", func(t *testing.T) {
		payload := draftPayload{
			Title:         "x",
			PublishedDate: "2003-01-01",
			Blocks:        []models.Block{{ID: uuid.New(), Type: models.BlockParagraph, Content: "y"}},
		}
		raw, _ := json.Marshal(payload)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("article", string(raw))
		part, _ := mw.CreateFormFile(filePartPrefix+"not-a-uuid", "x.png")
		part.Write([]byte("data"))
		mw.Close()

		r := httptest.NewRequest(http.MethodPost, "/moderation/articles", &buf)
		r.Header.Set("Content-Type", mw.FormDataContentType())

		if _, errMsg := parseDraftForm(r, uuid.Nil); errMsg == "" {
			t.Error("expected rejection for malformed file part name")
		}
	})
}

func TestParseDraftFormAssignsMissingBlockIDs(t *testing.T) {
	payload := draftPayload{
		Title:         "x",
		PublishedDate: "2003-01-01",
		Blocks:        []models.Block{{Type: models.BlockParagraph, Content: "y"}},
	}
	body, contentType := multipartSave(t, payload, nil)
	r := httptest.NewRequest(http.MethodPost, "/moderation/articles", body)
	r.Header.Set("Content-Type", contentType)

	draft, errMsg := parseDraftForm(r, uuid.Nil)
	if errMsg != "" {
		t.Fatalf("parseDraftForm: %s", errMsg)
	}
	if draft.Blocks[0].ID == uuid.Nil {
		t.Error("expected generated id for block without one")
	}
}

func TestModerationSaveFlow(t *testing.T) {
	env := newTestEnv(t)
	authorID := testUser(t, env, "moderation-save@handler-test.local", "author")
	sess := testSession(authorID, "moderation-save@handler-test.local", "author", true)
	t.Cleanup(func() { cleanArticles(t, env.DB, "sauvegarde-complete") })

	// Create.
	payload := draftPayload{
		Title:         "Sauvegarde complète",
		PublishedDate: "2004-05-06",
		Blocks: []models.Block{
			{ID: uuid.New(), Type: models.BlockTitle, Content: "Chapitre un"},
			{ID: uuid.New(), Type: models.BlockParagraph, Content: "du texte"},
			{ID: uuid.New(), Type: models.BlockParagraph, Content: "   "}, // dropped
		},
	}
	body, contentType := multipartSave(t, payload, nil)
	r := httptest.NewRequest(http.MethodPost, "/moderation/articles", body)
	r.Header.Set("Content-Type", contentType)
	r = r.WithContext(ctxWithSession(r.Context(), sess))

	w := httptest.NewRecorder()
	env.Moderation.CreateArticle(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	var created struct {
		ID   string `json:"id"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Path != "/2004/sauvegarde-complete" {
		t.Errorf("path = %q", created.Path)
	}

	articleID := uuid.MustParse(created.ID)

	// Only the two non-empty blocks were persisted, densely indexed.
	rows, err := env.BlockStore.ListByArticle(r.Context(), articleID)
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 persisted blocks, got %d", len(rows))
	}
	for i, row := range rows {
		if row.SortIndex != i {
			t.Errorf("rows[%d].SortIndex = %d", i, row.SortIndex)
		}
	}

	// Edit: reuse the slug, change the title.
	payload.Title = "Sauvegarde modifiée"
	payload.Slug = "sauvegarde-complete"
	body, contentType = multipartSave(t, payload, nil)
	r = httptest.NewRequest(http.MethodPut, "/moderation/articles/"+created.ID, body)
	r.Header.Set("Content-Type", contentType)
	r = withChiURLParams(r, map[string]string{"id": created.ID})
	r = r.WithContext(ctxWithSession(r.Context(), sess))

	w = httptest.NewRecorder()
	env.Moderation.UpdateArticle(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	got, _ := env.ArticleStore.FindByID(r.Context(), articleID)
	if got == nil || got.Title != "Sauvegarde modifiée" {
		t.Errorf("after update: %+v", got)
	}

	// Delete.
	r = httptest.NewRequest(http.MethodDelete, "/moderation/articles/"+created.ID, nil)
	r = withChiURLParams(r, map[string]string{"id": created.ID})
	r = r.WithContext(ctxWithSession(r.Context(), sess))

	w = httptest.NewRecorder()
	env.Moderation.DeleteArticle(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}

	if got, _ := env.ArticleStore.FindByID(r.Context(), articleID); got != nil {
		t.Error("article still present after delete")
	}
}

func TestModerationSaveValidationResponse(t *testing.T) {
	env := newTestEnv(t)
	authorID := testUser(t, env, "moderation-invalid@handler-test.local", "author")
	sess := testSession(authorID, "moderation-invalid@handler-test.local", "author", true)

	payload := draftPayload{
		Title:         "", // rejected
		PublishedDate: "2004-05-06",
		Blocks:        []models.Block{{ID: uuid.New(), Type: models.BlockParagraph, Content: "x"}},
	}
	body, contentType := multipartSave(t, payload, nil)
	r := httptest.NewRequest(http.MethodPost, "/moderation/articles", body)
	r.Header.Set("Content-Type", contentType)
	r = r.WithContext(ctxWithSession(r.Context(), sess))

	w := httptest.NewRecorder()
	env.Moderation.CreateArticle(w, r)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var resp struct {
		Field string `json:"field"`
		Error string `json:"error"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Field != "title" || resp.Error == "" {
		t.Errorf("response = %+v", resp)
	}
}

func TestModerationDeleteUnknownArticle(t *testing.T) {
	env := newTestEnv(t)
	adminID := testUser(t, env, "moderation-404@handler-test.local", "admin")
	sess := testSession(adminID, "moderation-404@handler-test.local", "admin", true)

	id := uuid.New().String()
	r := httptest.NewRequest(http.MethodDelete, "/moderation/articles/"+id, nil)
	r = withChiURLParams(r, map[string]string{"id": id})
	r = r.WithContext(ctxWithSession(r.Context(), sess))

	w := httptest.NewRecorder()
	env.Moderation.DeleteArticle(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
