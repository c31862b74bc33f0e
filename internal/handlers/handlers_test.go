package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"tagboard/internal/notes"
	"tagboard/internal/search"
	"tagboard/internal/service"
	"tagboard/internal/service/mocks"
	"tagboard/internal/storage"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error
}

func TestPostSearchHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		target        string
		mockSetup     func(*mocks.MockSearchService)
		wantStatus    int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "tokens split on whitespace",
			method: http.MethodGet,
			target: "/api/posts/search?q=artist:jane+%20-red_eyes&page=2",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().
					SearchPosts(gomock.Any(), service.PostSearchRequest{Tokens: []string{"artist:jane", "-red_eyes"}, Page: 2}).
					Return(&search.SearchResult{
						Posts:      []storage.Post{{ID: 1, Hash: "abc"}},
						TotalCount: 41,
						TotalPages: 2,
						Page:       2,
						Outcome:    search.OutcomeMatched,
					}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp search.SearchResult
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.TotalPages != 2 || len(resp.Posts) != 1 || resp.Outcome != search.OutcomeMatched {
					t.Errorf("ServeHTTP() response = %+v", resp)
				}
			},
		},
		{
			name:   "missing page defaults to 1",
			method: http.MethodGet,
			target: "/api/posts/search?q=video",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().
					SearchPosts(gomock.Any(), service.PostSearchRequest{Tokens: []string{"video"}, Page: 1}).
					Return(&search.SearchResult{Page: 1, Outcome: search.OutcomeMatched}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "wildcard error rides in a 200",
			method: http.MethodGet,
			target: "/api/posts/search?q=*",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().
					SearchPosts(gomock.Any(), gomock.Any()).
					Return(&search.SearchResult{Page: 1, Outcome: search.OutcomeEmptyQuery, Error: `invalid wildcard "*": pattern too broad`}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				if !strings.Contains(w.Body.String(), "pattern too broad") {
					t.Errorf("ServeHTTP() body = %s, want wildcard error", w.Body.String())
				}
			},
		},
		{
			name:       "malformed page",
			method:     http.MethodGet,
			target:     "/api/posts/search?q=video&page=two",
			mockSetup:  func(m *mocks.MockSearchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "method not allowed",
			method:     http.MethodPost,
			target:     "/api/posts/search?q=video",
			mockSetup:  func(m *mocks.MockSearchService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "store failure",
			method: http.MethodGet,
			target: "/api/posts/search?q=video",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().SearchPosts(gomock.Any(), gomock.Any()).Return(nil, service.ErrSearchFailed)
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockSearchService(ctrl)
			tt.mockSetup(svc)
			handler := NewPostSearchHandler(svc)

			req := httptest.NewRequest(tt.method, tt.target, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestNoteSearchHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		mockSetup  func(*mocks.MockSearchService)
		wantStatus int
		wantError  string
	}{
		{
			name:   "mode and page forwarded",
			target: "/api/notes/search?q=lighthouse&mode=substring&page=3",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().
					SearchNotes(gomock.Any(), service.NoteSearchRequest{Query: "lighthouse", Page: 3, Mode: "substring"}).
					Return(&notes.Result{Notes: []notes.Hit{}, Page: 3, Mode: notes.ModeSubstring}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "query too short",
			target: "/api/notes/search?q=ab",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().
					SearchNotes(gomock.Any(), service.NoteSearchRequest{Query: "ab", Page: 1}).
					Return(nil, &service.ValidationError{Field: "q", Message: "query too short"})
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "query too short",
		},
		{
			name:       "malformed page",
			target:     "/api/notes/search?q=lighthouse&page=-x",
			mockSetup:  func(m *mocks.MockSearchService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockSearchService(ctrl)
			tt.mockSetup(svc)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()
			NewNoteSearchHandler(svc).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				if got := decodeError(t, w); !strings.Contains(got, tt.wantError) {
					t.Errorf("ServeHTTP() error = %q, want to contain %q", got, tt.wantError)
				}
			}
		})
	}
}

func TestTagTreeHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		mockSetup  func(*mocks.MockSearchService)
		wantStatus int
	}{
		{
			name:   "selection split on commas",
			target: "/api/tags/tree?selected=artist:jane,+blue_eyes,,&category=general&filter=eye&limit=5",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().
					TagTree(gomock.Any(), service.TagTreeRequest{
						Selected: []string{"artist:jane", "blue_eyes"},
						Category: "general",
						Filter:   "eye",
						Limit:    5,
					}).
					Return(&search.TagTreeResult{Tags: []search.TagNode{}, Outcome: search.OutcomeMatched}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "no selection",
			target: "/api/tags/tree",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().
					TagTree(gomock.Any(), service.TagTreeRequest{}).
					Return(&search.TagTreeResult{Tags: []search.TagNode{}, Outcome: search.OutcomeMatched}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "unknown category",
			target: "/api/tags/tree?category=colour",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().
					TagTree(gomock.Any(), gomock.Any()).
					Return(nil, &service.ValidationError{Field: "category", Message: "unknown category colour"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed limit",
			target:     "/api/tags/tree?limit=many",
			mockSetup:  func(m *mocks.MockSearchService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockSearchService(ctrl)
			tt.mockSetup(svc)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()
			NewTagTreeHandler(svc).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAutocompleteHandler_EmptyResultIsArray(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockSearchService(ctrl)
	svc.EXPECT().Autocomplete(gomock.Any(), "zz", 0).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tags/autocomplete?q=+zz+", nil)
	w := httptest.NewRecorder()
	NewAutocompleteHandler(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %v, want %v", w.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"tags":[]}` {
		t.Errorf("ServeHTTP() body = %s, want {\"tags\":[]}", got)
	}
}

func TestCategoryHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockSearchService(ctrl)
	svc.EXPECT().CategoryCounts(gomock.Any()).Return(map[storage.Category]int{storage.CategoryArtist: 4}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tags/categories", nil)
	w := httptest.NewRecorder()
	NewCategoryHandler(svc).ServeHTTP(w, req)

	var resp CategoryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Categories[storage.CategoryArtist] != 4 {
		t.Errorf("ServeHTTP() artist = %d, want 4", resp.Categories[storage.CategoryArtist])
	}
}

func TestMetaTagHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockSearchService(ctrl)
	svc.EXPECT().MetaTags(gomock.Any()).Return(nil, service.ErrSearchFailed)

	req := httptest.NewRequest(http.MethodGet, "/api/meta-tags", nil)
	w := httptest.NewRecorder()
	NewMetaTagHandler(svc).ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusServiceUnavailable)
	}
}

func TestAdminHandlers(t *testing.T) {
	t.Run("invalidate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := mocks.NewMockSearchService(ctrl)
		svc.EXPECT().InvalidateAll(gomock.Any()).Times(1)

		w := httptest.NewRecorder()
		NewInvalidateHandler(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/invalidate", nil))

		if w.Code != http.StatusOK {
			t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusOK)
		}
	})

	t.Run("invalidate requires POST", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		w := httptest.NewRecorder()
		NewInvalidateHandler(mocks.NewMockSearchService(ctrl)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/invalidate", nil))

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("recompute reports stats", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := mocks.NewMockSearchService(ctrl)
		svc.EXPECT().Recompute(gomock.Any()).Return(storage.RecomputeStats{TagsChecked: 4, TagsUpdated: 2, TotalDrift: 6}, nil)

		w := httptest.NewRecorder()
		NewRecomputeHandler(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/recompute", nil))

		var resp AdminResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Stats == nil || resp.Stats.TagsUpdated != 2 || resp.Stats.TotalDrift != 6 {
			t.Errorf("ServeHTTP() stats = %+v", resp.Stats)
		}
	})

	t.Run("recompute failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := mocks.NewMockSearchService(ctrl)
		svc.EXPECT().Recompute(gomock.Any()).Return(storage.RecomputeStats{}, service.WrapError(errors.New("locked"), "failed to recompute tag counts"))

		w := httptest.NewRecorder()
		NewRecomputeHandler(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/recompute", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusInternalServerError)
		}
	})
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		health     service.Health
		err        error
		wantStatus int
		wantState  string
	}{
		{
			name:       "store reachable",
			health:     service.Health{Status: "ok", Caches: map[string]int{"tag_ids": 3}},
			wantStatus: http.StatusOK,
			wantState:  "ok",
		},
		{
			name:       "store unreachable",
			health:     service.Health{Status: "unavailable", Caches: map[string]int{}},
			err:        service.WrapError(service.ErrSearchFailed, "store unreachable"),
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockSearchService(ctrl)
			svc.EXPECT().Health(gomock.Any()).Return(tt.health, tt.err)

			w := httptest.NewRecorder()
			NewHealthHandler(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("ServeHTTP() status field = %q, want %q", resp.Status, tt.wantState)
			}
			if resp.Timestamp == "" {
				t.Error("ServeHTTP() timestamp should be set")
			}
		})
	}
}

func TestNoteHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		mockSetup  func(*mocks.MockSearchService)
		wantStatus int
		wantBody   []string
		denyBody   []string
	}{
		{
			name: "renders markdown",
			path: "/notes/7",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().Note(gomock.Any(), int64(7)).Return(&storage.Note{
					ID: 7, PostID: 3, Name: "translation",
					Body: "# Harbor\n\nThe **keeper** waves.\n\n<script>alert(1)</script>",
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{"<strong>keeper</strong>", "Post #3", "<title>translation"},
			denyBody:   []string{"<script>"},
		},
		{
			name: "missing note",
			path: "/notes/8",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().Note(gomock.Any(), int64(8)).Return(nil, service.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id",
			path:       "/notes/abc",
			mockSetup:  func(m *mocks.MockSearchService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockSearchService(ctrl)
			tt.mockSetup(svc)

			r := chi.NewRouter()
			r.Method(http.MethodGet, "/notes/{id}", NewNoteHandler(svc))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			body := w.Body.String()
			for _, want := range tt.wantBody {
				if !strings.Contains(body, want) {
					t.Errorf("ServeHTTP() body missing %q", want)
				}
			}
			for _, deny := range tt.denyBody {
				if strings.Contains(body, deny) {
					t.Errorf("ServeHTTP() body contains %q", deny)
				}
			}
		})
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &service.ValidationError{Field: "q", Message: "too short"}, http.StatusBadRequest},
		{"invalid input", service.WrapError(service.ErrInvalidInput, "bad"), http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"search failed", service.ErrSearchFailed, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			handleServiceError(w, req.Context(), tt.err, "default")

			if w.Code != tt.wantStatus {
				t.Errorf("handleServiceError() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("handleServiceError() Content-Type = %v, want application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}
