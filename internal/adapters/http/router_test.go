package httpadapter

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

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

type ingestorFake struct {
	doc *domain.Document
	err error
}

func (f *ingestorFake) Upload(_ context.Context, filename, mimeType string, _ io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc := *f.doc
	doc.Filename = filename
	doc.MimeType = mimeType
	return &doc, nil
}

type retrieverFake struct {
	retrieval *domain.Retrieval
	err       error
}

func (f *retrieverFake) Retrieve(context.Context, string) (*domain.Retrieval, error) {
	return f.retrieval, f.err
}

type querierFake struct {
	answer *domain.Answer
	err    error
}

func (f *querierFake) Ask(context.Context, string) (*domain.Answer, error) {
	return f.answer, f.err
}

type documentsFake struct {
	docs []domain.Document
	err  error
}

func (f *documentsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
}

func (f *documentsFake) List(context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

func newTestRouter() *Router {
	return NewRouter(
		&ingestorFake{doc: &domain.Document{ID: "doc-1", Status: domain.StatusUploaded}},
		&retrieverFake{retrieval: &domain.Retrieval{
			Outcome: domain.OutcomeOK,
			Results: []domain.ScoredResult{{ID: "doc-1:0", Text: "alpha", DocumentName: "a.txt", Weighted: 0.9}},
		}},
		&querierFake{answer: &domain.Answer{Text: "the answer", SourceDocuments: []string{"a.txt"}}},
		&documentsFake{docs: []domain.Document{{ID: "doc-1", Filename: "a.txt"}}},
		nil,
		RouterConfig{},
	)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadDocumentAccepted(t *testing.T) {
	handler := newTestRouter().Handler()
	body, contentType := multipartBody(t, "notes.txt", "hello")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.Filename != "notes.txt" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestUploadDocumentRequiresFileField(t *testing.T) {
	handler := newTestRouter().Handler()
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("not multipart"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestQueryReturnsAnswerWithSources(t *testing.T) {
	handler := newTestRouter().Handler()
	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"what?"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var answer struct {
		Answer          string   `json:"answer"`
		SourceDocuments []string `json:"source_documents"`
	}
	if err := json.NewDecoder(res.Body).Decode(&answer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if answer.Answer != "the answer" || len(answer.SourceDocuments) != 1 {
		t.Fatalf("unexpected answer payload: %+v", answer)
	}
}

func TestQueryRejectsEmptyQuestion(t *testing.T) {
	handler := newTestRouter().Handler()
	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"  "}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestRetrieveReturnsRankedResults(t *testing.T) {
	handler := newTestRouter().Handler()
	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{"question":"what?"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var retrieval struct {
		Outcome string `json:"outcome"`
		Results []struct {
			ID       string  `json:"id"`
			Weighted float64 `json:"weighted_score"`
		} `json:"results"`
	}
	if err := json.NewDecoder(res.Body).Decode(&retrieval); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if retrieval.Outcome != "ok" || len(retrieval.Results) != 1 {
		t.Fatalf("unexpected retrieval payload: %+v", retrieval)
	}
	if retrieval.Results[0].Weighted != 0.9 {
		t.Fatalf("expected weighted score serialized, got %+v", retrieval.Results[0])
	}
}

func TestGetDocumentByIDNotFoundMapsTo404(t *testing.T) {
	handler := newTestRouter().Handler()
	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestListDocuments(t *testing.T) {
	handler := newTestRouter().Handler()
	req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var payload struct {
		Documents []domain.Document `json:"documents"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Documents) != 1 || payload.Documents[0].ID != "doc-1" {
		t.Fatalf("unexpected list payload: %+v", payload)
	}
}

func TestTemporaryFailureMapsTo503(t *testing.T) {
	router := newTestRouter()
	router.querier = &querierFake{err: domain.WrapError(domain.ErrTemporary, "vector search", errors.New("qdrant down"))}
	handler := router.Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"q"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}
