package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"lexipedia/internal/cache"
	"lexipedia/internal/models"
)

// --------------------------------------------------------------------------
// Entry CRUD
// --------------------------------------------------------------------------

// TestEntryCreate verifies the happy path: 201, the caller owns the
// entry, and an omitted slug is derived from the title.
func TestEntryCreate(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "entry-create@example.com", false)

	cleanEntries(t, env.DB, "my-first-article")
	t.Cleanup(func() { cleanEntries(t, env.DB, "my-first-article") })

	body := `{"title":"My First Article","content":"Enough content for the minimum length check."}`
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	req = req.WithContext(ctxWithSession(req.Context(), testSession(author.ID, author.Email, false, false)))
	rec := httptest.NewRecorder()

	env.Entries.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var entry models.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if entry.Slug != "my-first-article" {
		t.Errorf("slug: got %q, want my-first-article", entry.Slug)
	}
	if entry.AuthorID != author.ID {
		t.Error("entry should be owned by the session user")
	}
	if entry.Status != models.EntryStatusDraft {
		t.Errorf("status: got %q, want draft", entry.Status)
	}
}

// TestEntryCreateValidation verifies that store validation surfaces as a
// 422 with the offending field.
func TestEntryCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "entry-create-invalid@example.com", false)

	body := `{"title":"Too short","slug":"too-short","content":"tiny"}`
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	req = req.WithContext(ctxWithSession(req.Context(), testSession(author.ID, author.Email, false, false)))
	rec := httptest.NewRecorder()

	env.Entries.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Field != "content" {
		t.Errorf("field: got %q, want content", resp.Field)
	}
}

// TestEntryUpdatePermission verifies that only the author or an admin may
// edit, and that the store's 403 reaches the client.
func TestEntryUpdatePermission(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "entry-update-author@example.com", false)
	stranger := mustUser(t, env, "entry-update-stranger@example.com", false)
	admin := mustUser(t, env, "entry-update-admin@example.com", true)
	entry := mustEntry(t, env, author.ID, "entry-update-perm", models.EntryStatusDraft)

	body := `{"title":"Renamed","content":"Enough content for the minimum length check."}`

	req := httptest.NewRequest(http.MethodPut, "/entries/"+entry.Slug, strings.NewReader(body))
	req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(stranger.ID, stranger.Email, false, false))
	rec := httptest.NewRecorder()
	env.Entries.Update(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger status: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	req = httptest.NewRequest(http.MethodPut, "/entries/"+entry.Slug, strings.NewReader(body))
	req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(admin.ID, admin.Email, true, true))
	rec = httptest.NewRecorder()
	env.Entries.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated models.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title: got %q, want Renamed", updated.Title)
	}
	if updated.Slug != entry.Slug {
		t.Errorf("omitted slug should keep the current one, got %q", updated.Slug)
	}
}

// TestEntryUpdateInvalidatesSummaries verifies that a successful edit
// drops the cached aggregates.
func TestEntryUpdateInvalidatesSummaries(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "entry-update-cache@example.com", false)
	entry := mustEntry(t, env, author.ID, "entry-update-cache", models.EntryStatusPublished)

	ctx := context.Background()
	env.Summaries.Set(ctx, cache.HomeKey(), []byte(`{"stale":true}`))
	t.Cleanup(func() { env.Summaries.InvalidateAll(ctx) })

	body := `{"title":"Fresh title","content":"Enough content for the minimum length check.","status":"published"}`
	req := httptest.NewRequest(http.MethodPut, "/entries/"+entry.Slug, strings.NewReader(body))
	req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(author.ID, author.Email, false, false))
	rec := httptest.NewRecorder()

	env.Entries.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if _, ok := env.Summaries.Get(ctx, cache.HomeKey()); ok {
		t.Error("home summary should be invalidated after an edit")
	}
}

// TestEntryDelete verifies deletion by the author and the 404 afterwards.
func TestEntryDelete(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "entry-delete@example.com", false)
	entry := mustEntry(t, env, author.ID, "entry-delete-me", models.EntryStatusDraft)

	req := httptest.NewRequest(http.MethodDelete, "/entries/"+entry.Slug, nil)
	req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(author.ID, author.Email, false, false))
	rec := httptest.NewRecorder()

	env.Entries.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	gone, err := env.EntryStore.FindBySlug(entry.Slug)
	if err != nil {
		t.Fatalf("find after delete: %v", err)
	}
	if gone != nil {
		t.Error("entry should be gone after delete")
	}
}

// --------------------------------------------------------------------------
// Likes
// --------------------------------------------------------------------------

// TestToggleLike verifies the toggle semantics end to end: like, then
// unlike, with the denormalized counter in the response.
func TestToggleLike(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "like-author@example.com", false)
	reader := mustUser(t, env, "like-reader@example.com", false)
	entry := mustEntry(t, env, author.ID, "like-toggle-entry", models.EntryStatusPublished)

	toggle := func() likeResponse {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/entries/"+entry.Slug+"/like", nil)
		req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(reader.ID, reader.Email, false, false))
		rec := httptest.NewRecorder()
		env.Entries.ToggleLike(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp likeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return resp
	}

	first := toggle()
	if !first.Liked || first.LikeCount != 1 {
		t.Errorf("first toggle: got liked=%v count=%d, want true/1", first.Liked, first.LikeCount)
	}
	second := toggle()
	if second.Liked || second.LikeCount != 0 {
		t.Errorf("second toggle: got liked=%v count=%d, want false/0", second.Liked, second.LikeCount)
	}
}

// TestToggleLikeDraft verifies that drafts cannot be liked.
func TestToggleLikeDraft(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "like-draft-author@example.com", false)
	entry := mustEntry(t, env, author.ID, "like-draft-entry", models.EntryStatusDraft)

	req := httptest.NewRequest(http.MethodPost, "/entries/"+entry.Slug+"/like", nil)
	req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(author.ID, author.Email, false, false))
	rec := httptest.NewRecorder()

	env.Entries.ToggleLike(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d — interactions target published entries only", rec.Code, http.StatusNotFound)
	}
}

// --------------------------------------------------------------------------
// Comments
// --------------------------------------------------------------------------

// TestAddComment verifies posting a comment on a published entry.
func TestAddComment(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "comment-author@example.com", false)
	reader := mustUser(t, env, "comment-reader@example.com", false)
	entry := mustEntry(t, env, author.ID, "comment-entry", models.EntryStatusPublished)

	body := `{"content":"A thoughtful remark."}`
	req := httptest.NewRequest(http.MethodPost, "/entries/"+entry.Slug+"/comments", strings.NewReader(body))
	req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(reader.ID, reader.Email, false, false))
	rec := httptest.NewRecorder()

	env.Entries.AddComment(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var comment models.Comment
	if err := json.Unmarshal(rec.Body.Bytes(), &comment); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if comment.AuthorID != reader.ID {
		t.Error("comment should be attributed to the session user")
	}
	if !comment.IsActive {
		t.Error("new comments start active")
	}
}

// TestAddCommentTooShort verifies that comment validation reaches the
// client as a 422.
func TestAddCommentTooShort(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "comment-short-author@example.com", false)
	entry := mustEntry(t, env, author.ID, "comment-short-entry", models.EntryStatusPublished)

	req := httptest.NewRequest(http.MethodPost, "/entries/"+entry.Slug+"/comments", strings.NewReader(`{"content":"x"}`))
	req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(author.ID, author.Email, false, false))
	rec := httptest.NewRecorder()

	env.Entries.AddComment(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

// TestSetCommentActive verifies the moderation flip: the comment author
// may deactivate their own comment, a stranger may not.
func TestSetCommentActive(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "moderate-author@example.com", false)
	commenter := mustUser(t, env, "moderate-commenter@example.com", false)
	stranger := mustUser(t, env, "moderate-stranger@example.com", false)
	entry := mustEntry(t, env, author.ID, "moderate-entry", models.EntryStatusPublished)

	comment, err := env.CommentStore.Add(entry.ID, commenter.ID, "A comment to moderate.")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	// A stranger cannot touch it.
	req := httptest.NewRequest(http.MethodPost, "/comments/"+comment.ID.String()+"/deactivate", nil)
	req = withChiURLParamAndSession(req, "id", comment.ID.String(), testSession(stranger.ID, stranger.Email, false, false))
	rec := httptest.NewRecorder()
	env.Entries.SetCommentActive(false)(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger status: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	// The comment author can.
	req = httptest.NewRequest(http.MethodPost, "/comments/"+comment.ID.String()+"/deactivate", nil)
	req = withChiURLParamAndSession(req, "id", comment.ID.String(), testSession(commenter.ID, commenter.Email, false, false))
	rec = httptest.NewRecorder()
	env.Entries.SetCommentActive(false)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("author status: got %d, want %d", rec.Code, http.StatusOK)
	}

	active, err := env.CommentStore.ListActiveByEntry(entry.ID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	for _, c := range active {
		if c.ID == comment.ID {
			t.Error("deactivated comment should be hidden from the active list")
		}
	}
}

// TestSetCommentActiveBadID verifies the 400 on a malformed comment id.
func TestSetCommentActiveBadID(t *testing.T) {
	env := newTestEnv(t)
	user := mustUser(t, env, "moderate-badid@example.com", false)

	req := httptest.NewRequest(http.MethodPost, "/comments/not-a-uuid/deactivate", nil)
	req = withChiURLParamAndSession(req, "id", "not-a-uuid", testSession(user.ID, user.Email, false, false))
	rec := httptest.NewRecorder()

	env.Entries.SetCommentActive(false)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// --------------------------------------------------------------------------
// Tags
// --------------------------------------------------------------------------

// TestAttachDetachTag verifies the tag lifecycle on an entry through the
// handlers.
func TestAttachDetachTag(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "tag-author@example.com", false)
	entry := mustEntry(t, env, author.ID, "tag-lifecycle-entry", models.EntryStatusPublished)

	cleanTags(t, env.DB, "handler-botany")
	t.Cleanup(func() { cleanTags(t, env.DB, "handler-botany") })

	sess := testSession(author.ID, author.Email, false, false)

	req := httptest.NewRequest(http.MethodPost, "/entries/"+entry.Slug+"/tags", strings.NewReader(`{"name":"handler-botany"}`))
	req = withChiURLParamAndSession(req, "slug", entry.Slug, sess)
	rec := httptest.NewRecorder()
	env.Entries.AttachTag(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("attach status: got %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	tags, err := env.TagStore.ListForEntry(entry.ID)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "handler-botany" {
		t.Fatalf("tags after attach: got %+v, want [handler-botany]", tags)
	}

	// Detach addresses the tag by name; the route carries both {slug}
	// and {name}.
	req = httptest.NewRequest(http.MethodDelete, "/entries/"+entry.Slug+"/tags/handler-botany", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("slug", entry.Slug)
	rctx.URLParams.Add("name", "handler-botany")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	req = req.WithContext(ctxWithSession(ctx, sess))
	rec = httptest.NewRecorder()
	env.Entries.DetachTag(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("detach status: got %d, want %d", rec.Code, http.StatusOK)
	}

	tags, err = env.TagStore.ListForEntry(entry.ID)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("tags after detach: got %+v, want none", tags)
	}
}

// TestAttachTagPermission verifies that only the author or an admin may
// tag an entry.
func TestAttachTagPermission(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "tag-perm-author@example.com", false)
	stranger := mustUser(t, env, "tag-perm-stranger@example.com", false)
	entry := mustEntry(t, env, author.ID, "tag-perm-entry", models.EntryStatusPublished)

	req := httptest.NewRequest(http.MethodPost, "/entries/"+entry.Slug+"/tags", strings.NewReader(`{"name":"forbidden-tag"}`))
	req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(stranger.ID, stranger.Email, false, false))
	rec := httptest.NewRecorder()

	env.Entries.AttachTag(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

// --------------------------------------------------------------------------
// Images
// --------------------------------------------------------------------------

// TestUploadImageWithoutStorage verifies the 503 when S3 is not
// configured, which is the test environment default.
func TestUploadImageWithoutStorage(t *testing.T) {
	env := newTestEnv(t)
	author := mustUser(t, env, "image-nostorage@example.com", false)
	entry := mustEntry(t, env, author.ID, "image-nostorage-entry", models.EntryStatusPublished)

	req := httptest.NewRequest(http.MethodPost, "/entries/"+entry.Slug+"/images", nil)
	req = withChiURLParamAndSession(req, "slug", entry.Slug, testSession(author.ID, author.Email, false, false))
	rec := httptest.NewRecorder()

	env.Entries.UploadImage(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

// TestDeleteImageNotFound verifies the 404 for an unknown image id.
func TestDeleteImageNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := mustUser(t, env, "image-missing@example.com", false)

	id := "11111111-2222-3333-4444-555555555555"
	req := httptest.NewRequest(http.MethodDelete, "/images/"+id, nil)
	req = withChiURLParamAndSession(req, "id", id, testSession(user.ID, user.Email, false, false))
	rec := httptest.NewRecorder()

	env.Entries.DeleteImage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
