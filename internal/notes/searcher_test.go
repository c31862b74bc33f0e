package notes

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"tagboard/internal/cache"
	"tagboard/internal/storage"
	"tagboard/internal/storage/mocks"
	"tagboard/internal/storage/storagetest"
)

func testConfig() Config {
	return Config{
		PageSize:       20,
		MinQueryLength: 3,
		CandidateLimit: 2000,
		CacheSize:      32,
		CacheTTL:       time.Minute,
	}
}

func newTestSearcher(t *testing.T, store storage.NoteStore, mods ...func(*Config)) (*Searcher, *cache.Group) {
	t.Helper()
	cfg := testConfig()
	for _, mod := range mods {
		mod(&cfg)
	}
	caches := cache.NewGroup(nil)
	s, err := NewSearcher(store, caches, cfg)
	if err != nil {
		t.Fatalf("NewSearcher() error = %v", err)
	}
	return s, caches
}

const keeperNote = "The lighthouse keeper watched the storm."

// lighthouseScenario: P1 and P2 share a note body, P3 mentions lighthouse three
// times, P4 does not mention it.
func lighthouseScenario() []storagetest.PostSpec {
	return []storagetest.PostSpec{
		{Label: "P1", Notes: []string{keeperNote}},
		{Label: "P2", Notes: []string{keeperNote}},
		{Label: "P3", Notes: []string{"A lighthouse, a lighthouse, another lighthouse at dusk."}},
		{Label: "P4", Notes: []string{"Quiet harbor at night."}},
	}
}

func newStoreSearcher(t *testing.T, specs []storagetest.PostSpec, mods ...func(*Config)) (*Searcher, *storagetest.Fixture) {
	t.Helper()
	db := storagetest.NewDB(t)
	f := storagetest.Seed(t, db, specs)
	s, _ := newTestSearcher(t, storage.NewNoteRepo(db), mods...)
	return s, f
}

func postLabels(f *storagetest.Fixture, refs []PostRef) []string {
	labels := make([]string, len(refs))
	for i, ref := range refs {
		labels[i] = f.Label(ref.ID)
	}
	return labels
}

func TestSearcher_Search_RankedMergesIdenticalContent(t *testing.T) {
	s, f := newStoreSearcher(t, lighthouseScenario())

	result, err := s.Search(context.Background(), "lighthouse", 1, ModeRanked)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.TotalCount != 2 || len(result.Notes) != 2 {
		t.Fatalf("Search() = %d hits (total %d), want 2", len(result.Notes), result.TotalCount)
	}

	// Three of five total occurrences beat one of five.
	first, second := result.Notes[0], result.Notes[1]
	if got := postLabels(f, first.Posts); len(got) != 1 || got[0] != "P3" {
		t.Errorf("first hit posts = %v, want [P3]", got)
	}
	if got := postLabels(f, second.Posts); len(got) != 2 || got[0] != "P2" || got[1] != "P1" {
		t.Errorf("merged hit posts = %v, want [P2 P1]", got)
	}
	if first.Score <= second.Score {
		t.Errorf("scores = %v, %v, want descending", first.Score, second.Score)
	}
	if second.ContentHash != storage.ContentHash(keeperNote) {
		t.Errorf("merged hit content hash = %s, want hash of the shared body", second.ContentHash)
	}
	if !second.ImportedAt.Equal(f.Posts["P2"].ImportedAt) {
		t.Errorf("merged hit imported at = %v, want newest post's", second.ImportedAt)
	}
	if !strings.Contains(second.Snippet, "<mark>lighthouse</mark>") {
		t.Errorf("snippet = %q, want highlighted term", second.Snippet)
	}
	if result.Mode != ModeRanked || result.Page != 1 || result.TotalPages != 1 {
		t.Errorf("Search() mode %s page %d pages %d, want ranked 1 1", result.Mode, result.Page, result.TotalPages)
	}
}

func TestSearcher_Search_RankedTieBreaksByRecency(t *testing.T) {
	s, f := newStoreSearcher(t, []storagetest.PostSpec{
		{Label: "P1", Notes: []string{"Quiet harbor at night."}},
		{Label: "P2", Notes: []string{"harbor lights"}},
		{Label: "P3", Notes: []string{"harbor bells"}},
	})

	result, err := s.Search(context.Background(), "harbor", 1, ModeRanked)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	var got []string
	for _, hit := range result.Notes {
		got = append(got, postLabels(f, hit.Posts)...)
	}
	if strings.Join(got, ",") != "P3,P2,P1" {
		t.Errorf("Search() order = %v, want [P3 P2 P1]", got)
	}
}

func TestSearcher_Search_RanksBeforeCandidateLimit(t *testing.T) {
	// The strongest match is stored last.
	s, f := newStoreSearcher(t, []storagetest.PostSpec{
		{Label: "P1", Notes: []string{"lighthouse at dawn"}},
		{Label: "P2", Notes: []string{"lighthouse at dusk"}},
		{Label: "P3", Notes: []string{"lighthouse, lighthouse and one more lighthouse"}},
	}, func(c *Config) { c.CandidateLimit = 2 })

	result, err := s.Search(context.Background(), "lighthouse", 1, ModeRanked)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	var got []string
	for _, hit := range result.Notes {
		got = append(got, postLabels(f, hit.Posts)...)
	}
	if strings.Join(got, ",") != "P3,P2" {
		t.Errorf("Search() = %v, want [P3 P2]", got)
	}
	if result.TotalCount != 3 || !result.Truncated || result.TotalPages != 1 {
		t.Errorf("Search() total %d truncated %v pages %d, want 3 true 1", result.TotalCount, result.Truncated, result.TotalPages)
	}
	for _, hit := range result.Notes {
		if !strings.Contains(hit.Snippet, "<mark>lighthouse</mark>") {
			t.Errorf("snippet = %q, want highlighted term", hit.Snippet)
		}
	}
}

func TestSearcher_Search_InvalidateDuringLookupNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockNoteStore(ctrl)

	var caches *cache.Group
	gomock.InOrder(
		store.EXPECT().
			MatchSubstring(gomock.Any(), "%storm%").
			DoAndReturn(func(context.Context, string) ([]storage.NoteMatch, error) {
				caches.InvalidateAll()
				return []storage.NoteMatch{{NoteID: 1, PostID: 10, ContentHash: "c1"}}, nil
			}),
		store.EXPECT().
			MatchSubstring(gomock.Any(), "%storm%").
			Return([]storage.NoteMatch{}, nil),
	)
	store.EXPECT().
		Texts(gomock.Any(), []int64{1}, "").
		Return(map[int64]storage.NoteText{1: {Body: "storm"}}, nil)

	var s *Searcher
	s, caches = newTestSearcher(t, store)
	ctx := context.Background()

	first, err := s.Search(ctx, "storm", 1, ModeSubstring)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if first.TotalCount != 1 {
		t.Errorf("Search() total = %d, want 1", first.TotalCount)
	}
	second, err := s.Search(ctx, "storm", 1, ModeSubstring)
	if err != nil {
		t.Fatalf("Search() second error = %v", err)
	}
	if second.TotalCount != 0 {
		t.Errorf("Search() total after InvalidateAll = %d, want 0", second.TotalCount)
	}
}

func TestSearcher_Search_SnippetEscapesMarkup(t *testing.T) {
	s, _ := newStoreSearcher(t, []storagetest.PostSpec{
		{Label: "P1", Notes: []string{"Use <b>bold</b> & lighthouse"}},
	})

	for _, mode := range []Mode{ModeRanked, ModeSubstring} {
		result, err := s.Search(context.Background(), "lighthouse", 1, mode)
		if err != nil {
			t.Fatalf("Search(%s) error = %v", mode, err)
		}
		if len(result.Notes) != 1 {
			t.Fatalf("Search(%s) = %d hits, want 1", mode, len(result.Notes))
		}
		snippet := result.Notes[0].Snippet
		if strings.Contains(snippet, "<b>") {
			t.Errorf("Search(%s) snippet = %q, want markup escaped or dropped", mode, snippet)
		}
		if !strings.Contains(snippet, "<mark>lighthouse</mark>") {
			t.Errorf("Search(%s) snippet = %q, want highlighted term", mode, snippet)
		}
	}
}

func TestSearcher_Search_SubstringReachesPartialWords(t *testing.T) {
	s, f := newStoreSearcher(t, lighthouseScenario())
	ctx := context.Background()

	ranked, err := s.Search(ctx, "ight", 1, ModeRanked)
	if err != nil {
		t.Fatalf("Search(ranked) error = %v", err)
	}
	if ranked.TotalCount != 0 {
		t.Errorf("Search(ranked) = %d hits, want none for a partial word", ranked.TotalCount)
	}

	substring, err := s.Search(ctx, "IGHT", 1, ModeSubstring)
	if err != nil {
		t.Fatalf("Search(substring) error = %v", err)
	}
	// Newest first: P4 (night), P3, then the merged P2/P1 note.
	if substring.TotalCount != 3 {
		t.Fatalf("Search(substring) = %d hits, want 3", substring.TotalCount)
	}
	if got := postLabels(f, substring.Notes[0].Posts); got[0] != "P4" {
		t.Errorf("first substring hit = %v, want P4", got)
	}
	if substring.Notes[0].Snippet != "Quiet harbor at n<mark>ight</mark>." {
		t.Errorf("substring snippet = %q", substring.Notes[0].Snippet)
	}
	if got := postLabels(f, substring.Notes[2].Posts); len(got) != 2 {
		t.Errorf("merged substring hit posts = %v, want two", got)
	}
}

func TestSearcher_Search_SubstringEscapesLikeMetacharacters(t *testing.T) {
	s, f := newStoreSearcher(t, []storagetest.PostSpec{
		{Label: "P1", Notes: []string{"save 100% today"}},
		{Label: "P2", Notes: []string{"save 1000 today"}},
	})

	result, err := s.Search(context.Background(), "100%", 1, ModeSubstring)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.TotalCount != 1 || postLabels(f, result.Notes[0].Posts)[0] != "P1" {
		t.Errorf("Search(100%%) = %+v, want only P1", result.Notes)
	}
}

func TestSearcher_Search_QueryTooShort(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockNoteStore(ctrl) // no store call may happen

	s, _ := newTestSearcher(t, store)

	for _, query := range []string{"", "ab", "  ab  ", "日本"} {
		for _, mode := range []Mode{ModeRanked, ModeSubstring} {
			if _, err := s.Search(context.Background(), query, 1, mode); !errors.Is(err, ErrQueryTooShort) {
				t.Errorf("Search(%q, %s) error = %v, want ErrQueryTooShort", query, mode, err)
			}
		}
	}
}

func TestSearcher_Search_NoSearchableWords(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockNoteStore(ctrl)

	s, _ := newTestSearcher(t, store)

	result, err := s.Search(context.Background(), "!!! ???", 1, ModeRanked)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.TotalCount != 0 || len(result.Notes) != 0 || result.TotalPages != 0 {
		t.Errorf("Search() = %+v, want empty", result)
	}
}

func TestSearcher_Search_UnknownMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	s, _ := newTestSearcher(t, mocks.NewMockNoteStore(ctrl))

	if _, err := s.Search(context.Background(), "lighthouse", 1, Mode("fuzzy")); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Search() error = %v, want ErrUnknownMode", err)
	}
}

func TestSearcher_Search_Pagination(t *testing.T) {
	var specs []storagetest.PostSpec
	for i := 0; i < 5; i++ {
		specs = append(specs, storagetest.PostSpec{
			Label: string(rune('A' + i)),
			Notes: []string{"storm number " + string(rune('a'+i))},
		})
	}
	s, f := newStoreSearcher(t, specs, func(c *Config) { c.PageSize = 2 })
	ctx := context.Background()

	tests := []struct {
		page     int
		wantPage int
		want     []string
	}{
		{page: 1, wantPage: 1, want: []string{"E", "D"}},
		{page: 3, wantPage: 3, want: []string{"A"}},
		{page: 0, wantPage: 1, want: []string{"E", "D"}},
		{page: 9, wantPage: 9, want: nil},
		{page: math.MaxInt/2 + 2, wantPage: math.MaxInt/2 + 2, want: nil},
		{page: math.MaxInt, wantPage: math.MaxInt, want: nil},
	}

	for _, tt := range tests {
		result, err := s.Search(ctx, "storm", tt.page, ModeRanked)
		if err != nil {
			t.Fatalf("Search(page %d) error = %v", tt.page, err)
		}
		var got []string
		for _, hit := range result.Notes {
			got = append(got, postLabels(f, hit.Posts)...)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("Search(page %d) = %v, want %v", tt.page, got, tt.want)
		}
		if result.Page != tt.wantPage || result.TotalCount != 5 || result.TotalPages != 3 {
			t.Errorf("Search(page %d) page %d total %d pages %d, want %d 5 3", tt.page, result.Page, result.TotalCount, result.TotalPages, tt.wantPage)
		}
	}
}

func TestSearcher_Search_CachesMergedHits(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockNoteStore(ctrl)

	matches := []storage.NoteMatch{
		{NoteID: 1, PostID: 10, PostHash: "h10", ContentHash: "c1"},
	}
	store.EXPECT().
		MatchRanked(gomock.Any(), "lighthouse").
		Return(matches, nil).
		Times(2)
	store.EXPECT().
		Texts(gomock.Any(), []int64{1}, "lighthouse").
		Return(map[int64]storage.NoteText{1: {Body: "lighthouse", Snippet: "\x02lighthouse\x03"}}, nil).
		Times(2)

	s, caches := newTestSearcher(t, store)
	ctx := context.Background()

	for _, q := range []string{"lighthouse", "LIGHTHOUSE", " lighthouse "} {
		result, err := s.Search(ctx, q, 1, ModeRanked)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", q, err)
		}
		if result.TotalCount != 1 || result.Notes[0].Snippet != "<mark>lighthouse</mark>" {
			t.Errorf("Search(%q) = %+v, want one highlighted hit", q, result)
		}
	}

	caches.InvalidateAll()
	if _, err := s.Search(ctx, "lighthouse", 1, ModeRanked); err != nil {
		t.Fatalf("Search() after invalidate error = %v", err)
	}
}

func TestSearcher_Search_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockNoteStore(ctrl)
	storeErr := errors.New("no such table: notes_fts")

	store.EXPECT().MatchSubstring(gomock.Any(), "%storm%").Return(nil, storeErr)

	s, _ := newTestSearcher(t, store)
	if _, err := s.Search(context.Background(), "storm", 1, ModeSubstring); !errors.Is(err, storeErr) {
		t.Errorf("Search() error = %v, want wrapped store error", err)
	}
}

func TestSearcher_Merge_DedupesPostsWithinGroup(t *testing.T) {
	s, _ := newTestSearcher(t, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	hits := s.merge([]storage.NoteMatch{
		{NoteID: 1, PostID: 7, PostHash: "h7", ImportedAt: base, ContentHash: "c"},
		{NoteID: 2, PostID: 7, PostHash: "h7", ImportedAt: base, ContentHash: "c"},
		{NoteID: 3, PostID: 8, PostHash: "h8", ImportedAt: base.Add(time.Hour), ContentHash: "c"},
	}, ModeSubstring)

	if len(hits) != 1 {
		t.Fatalf("merge() = %d hits, want 1", len(hits))
	}
	hit := hits[0]
	if len(hit.Posts) != 2 || hit.Posts[0].ID != 8 || hit.Posts[1].ID != 7 {
		t.Errorf("merge() posts = %+v, want 8 then 7", hit.Posts)
	}
	if hit.NoteID != 3 {
		t.Errorf("merge() note = %d, want the newest member 3", hit.NoteID)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeRanked},
		{in: "ranked", want: ModeRanked},
		{in: " Substring ", want: ModeSubstring},
		{in: "fuzzy", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewSearcher_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.PageSize = 0
	if _, err := NewSearcher(nil, cache.NewGroup(nil), cfg); err == nil {
		t.Error("NewSearcher() with page size 0 should error")
	}
	cfg = testConfig()
	cfg.CandidateLimit = 0
	if _, err := NewSearcher(nil, cache.NewGroup(nil), cfg); err == nil {
		t.Error("NewSearcher() with candidate limit 0 should error")
	}
}

func TestSearcher_Note(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockNoteStore(ctrl)
	want := &storage.Note{ID: 7, PostID: 3, Name: "note", Body: keeperNote}
	store.EXPECT().Get(gomock.Any(), int64(7)).Return(want, nil)
	store.EXPECT().Get(gomock.Any(), int64(8)).Return(nil, storage.ErrNotFound)

	s, _ := newTestSearcher(t, store)

	got, err := s.Note(context.Background(), 7)
	if err != nil {
		t.Fatalf("Note() error = %v", err)
	}
	if got != want {
		t.Errorf("Note() = %+v, want %+v", got, want)
	}

	if _, err := s.Note(context.Background(), 8); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Note() missing error = %v, want %v", err, storage.ErrNotFound)
	}
}
