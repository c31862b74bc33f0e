package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/mock/gomock"

	"tagboard/internal/metrics"
	"tagboard/internal/search"
	"tagboard/internal/service"
	"tagboard/internal/service/mocks"
	"tagboard/internal/storage"
)

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSearchService := mocks.NewMockSearchService(ctrl)

	deps := &Deps{
		SearchService: mockSearchService,
	}

	router := NewRouter(deps)

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		mockSetup  func(*mocks.MockSearchService)
		wantStatus int
	}{
		{
			name:   "GET /api/posts/search",
			method: http.MethodGet,
			path:   "/api/posts/search?q=video",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().SearchPosts(gomock.Any(), gomock.Any()).Return(&search.SearchResult{Page: 1, Outcome: search.OutcomeMatched}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/posts/search method not allowed",
			method:     http.MethodPost,
			path:       "/api/posts/search",
			mockSetup:  func(m *mocks.MockSearchService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "GET /api/notes/search",
			method: http.MethodGet,
			path:   "/api/notes/search?q=lighthouse",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().SearchNotes(gomock.Any(), gomock.Any()).Return(nil, &service.ValidationError{Field: "q", Message: "too short"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "GET /api/tags/tree",
			method: http.MethodGet,
			path:   "/api/tags/tree?selected=artist:jane",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().TagTree(gomock.Any(), gomock.Any()).Return(&search.TagTreeResult{Outcome: search.OutcomeNoSuchTag}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/tags/autocomplete",
			method: http.MethodGet,
			path:   "/api/tags/autocomplete?q=art",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().Autocomplete(gomock.Any(), "art", 0).Return([]storage.Tag{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/tags/categories",
			method: http.MethodGet,
			path:   "/api/tags/categories",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().CategoryCounts(gomock.Any()).Return(map[storage.Category]int{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/meta-tags",
			method: http.MethodGet,
			path:   "/api/meta-tags",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().MetaTags(gomock.Any()).Return([]search.MetaTagCount{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/health",
			method: http.MethodGet,
			path:   "/api/health",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().Health(gomock.Any()).Return(service.Health{Status: "ok"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin without token",
			method:     http.MethodPost,
			path:       "/api/admin/invalidate",
			mockSetup:  func(m *mocks.MockSearchService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "GET /notes/{id}",
			method: http.MethodGet,
			path:   "/notes/9",
			mockSetup: func(m *mocks.MockSearchService) {
				m.EXPECT().Note(gomock.Any(), int64(9)).Return(nil, service.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "GET /metrics",
			method:     http.MethodGet,
			path:       "/metrics",
			mockSetup:  func(m *mocks.MockSearchService) {},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/chat",
			mockSetup:  func(m *mocks.MockSearchService) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockSearchService(ctrl)
			tt.mockSetup(svc)

			reg := prometheus.NewRegistry()
			router := NewRouter(&Deps{
				SearchService:  svc,
				Metrics:        metrics.New(reg),
				MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
				AdminToken:     "s3cret",
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_AdminWithToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockSearchService(ctrl)
	svc.EXPECT().InvalidateAll(gomock.Any()).Times(1)

	router := NewRouter(&Deps{SearchService: svc, AdminToken: "s3cret"})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/invalidate", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Router POST /api/admin/invalidate status = %v, want %v", w.Code, http.StatusOK)
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSearchService := mocks.NewMockSearchService(ctrl)

	deps := &Deps{
		SearchService: mockSearchService,
	}

	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/search", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("Router should apply LoggerMiddleware")
	}
}
