package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medlit/internal/config"
	"medlit/internal/generator"
	"medlit/internal/jats"
	"medlit/internal/llm"
	"medlit/internal/models"
	"medlit/internal/rag"
	"medlit/internal/session"
	"medlit/internal/tools"
	"medlit/internal/vectorstore"
	"medlit/internal/vectorstore/memory"
)

func intp(v int) *int { return &v }

func newTestServer(t *testing.T, client llm.Client) *Server {
	t.Helper()
	backend := memory.New()
	store := vectorstore.New(backend, 5, "paper_catalog", "paper_content")
	ctx := context.Background()

	paper := models.Paper{Title: "Statin Therapy Outcomes", PMCID: "PMC11111", Journal: "Cardiology Today", Year: intp(2019), Topic: "Cardiovascular Health"}
	if err := store.AddPaper(ctx, paper); err != nil {
		t.Fatal(err)
	}
	chunk := models.PaperChunk{Content: "Statins reduced events.", PaperTitle: paper.Title, Journal: paper.Journal, Year: paper.Year, Topic: paper.Topic, SectionTitle: "Results"}
	if err := store.AddChunks(ctx, []models.PaperChunk{chunk}); err != nil {
		t.Fatal(err)
	}

	reg := tools.NewRegistry()
	if err := reg.Register(tools.NewLiteratureSearch(store)); err != nil {
		t.Fatal(err)
	}
	processor := jats.NewProcessor(800, 100, jats.NewStaticTopicCache(nil))
	gen := generator.New(client, "claude-test", reg)
	system := rag.NewSystem(processor, store, gen, session.NewMemory(2))
	return NewServer(config.Config{AnthropicModel: "claude-test"}, system, nil, nil)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &llm.MockClient{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestAskGeneratesSessionID(t *testing.T) {
	client := &llm.MockClient{Replies: []llm.MessagesResponse{llm.TextReply("Statins lower LDL.")}}
	srv := newTestServer(t, client)

	body := strings.NewReader(`{"query": "What do statins do?"}`)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Answer    string          `json:"answer"`
		Sources   []models.Source `json:"sources"`
		SessionID string          `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "Statins lower LDL." {
		t.Fatalf("answer: %q", resp.Answer)
	}
	if resp.SessionID == "" {
		t.Fatal("expected generated session id")
	}
}

func TestAskToolRoundTripReturnsSources(t *testing.T) {
	client := &llm.MockClient{Replies: []llm.MessagesResponse{
		llm.ToolUseReply("toolu_01", "search_medical_literature", []byte(`{"query":"statins"}`)),
		llm.TextReply("Evidence supports statins."),
	}}
	srv := newTestServer(t, client)

	body := strings.NewReader(`{"query": "Do statins work?", "session_id": "s1"}`)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", body))

	var resp struct {
		Sources   []models.Source `json:"sources"`
		SessionID string          `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SessionID != "s1" {
		t.Fatalf("session id: %q", resp.SessionID)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Text != "Statin Therapy Outcomes - 2019 - Cardiology Today" {
		t.Fatalf("sources: %v", resp.Sources)
	}
}

func TestAskRequiresQuery(t *testing.T) {
	srv := newTestServer(t, &llm.MockClient{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query": "  "}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ML-API-4001") {
		t.Fatalf("error body: %s", rec.Body.String())
	}
}

func TestPapersAndTopics(t *testing.T) {
	srv := newTestServer(t, &llm.MockClient{})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/papers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("papers status: %d", rec.Code)
	}
	var papersResp struct {
		Papers []models.Paper `json:"papers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &papersResp); err != nil {
		t.Fatal(err)
	}
	if len(papersResp.Papers) != 1 || papersResp.Papers[0].Title != "Statin Therapy Outcomes" {
		t.Fatalf("papers: %v", papersResp.Papers)
	}

	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/topics", nil))
	var topicsResp struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &topicsResp); err != nil {
		t.Fatal(err)
	}
	if len(topicsResp.Topics) != 1 || topicsResp.Topics[0] != "Cardiovascular Health" {
		t.Fatalf("topics: %v", topicsResp.Topics)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	srv := newTestServer(t, &llm.MockClient{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics", nil))

	var resp rag.Analytics
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalPapers != 1 {
		t.Fatalf("analytics: %+v", resp)
	}
}

func TestIngestWithoutTemporalUnavailable(t *testing.T) {
	srv := newTestServer(t, &llm.MockClient{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &llm.MockClient{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ask", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: %d", rec.Code)
	}
}
