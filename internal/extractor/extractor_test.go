package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []ParsedEvent
		wantErr bool
	}{
		{
			name:    "plain array",
			content: `[{"title":"Mid Semester Exam","date":"2025-03-15","type":"exam","description":"Block A"}]`,
			want:    []ParsedEvent{{Title: "Mid Semester Exam", Date: "2025-03-15", Type: models.EventExam, Description: "Block A"}},
		},
		{
			name:    "fenced",
			content: "```json\n[{\"title\":\"Holi\",\"date\":\"2025-03-14\",\"type\":\"holiday\"}]\n```",
			want:    []ParsedEvent{{Title: "Holi", Date: "2025-03-14", Type: models.EventHoliday}},
		},
		{
			name:    "unknown type normalized",
			content: `[{"title":"Fest","date":"2025-02-01","type":"party"}]`,
			want:    []ParsedEvent{{Title: "Fest", Date: "2025-02-01", Type: models.EventOther}},
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    []ParsedEvent{},
		},
		{name: "not json", content: "Sorry, I can't read that image.", wantErr: true},
		{name: "blank", content: "  ", wantErr: true},
		{name: "missing title", content: `[{"title":" ","date":"2025-03-15","type":"exam"}]`, wantErr: true},
		{name: "bad date", content: `[{"title":"Exam","date":"15/03/2025","type":"exam"}]`, wantErr: true},
		{
			name:    "one bad item fails the batch",
			content: `[{"title":"A","date":"2025-03-15","type":"exam"},{"title":"B","date":"soon","type":"exam"}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOpenAIExtract(t *testing.T) {
	var gotModel string
	var gotImage bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		gotModel, _ = req["model"].(string)
		gotImage = strings.Contains(mustJSON(req), "https://img.example.com/cal.png")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  gotModel,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": "```json\n[{\"title\":\"End Sem\",\"date\":\"2025-05-20\",\"type\":\"semester_end\"}]\n```",
				},
			}},
		})
	}))
	defer srv.Close()

	ex := NewOpenAI("test-key", "", srv.URL+"/v1")
	events, err := ex.Extract(context.Background(), "https://img.example.com/cal.png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if gotModel != DefaultModel {
		t.Errorf("model = %q, want %q", gotModel, DefaultModel)
	}
	if !gotImage {
		t.Error("request did not carry the image url")
	}
	if len(events) != 1 || events[0].Type != models.EventSemesterEnd {
		t.Errorf("events = %+v", events)
	}
}

func TestOpenAIExtractUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	ex := NewOpenAI("bad-key", "gpt-4o", srv.URL+"/v1")
	if _, err := ex.Extract(context.Background(), "https://img.example.com/cal.png"); err == nil {
		t.Fatal("expected an error from a 401 upstream")
	}
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
