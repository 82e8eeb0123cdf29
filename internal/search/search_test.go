// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

func init() {
	httputil.RetryDelay = time.Millisecond
}

func entry(id, published string, cats ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<entry><id>http://arxiv.org/abs/%s</id>
<title>Paper
  %s</title>
<summary>  Abstract of
 %s. </summary>
<published>%s</published>
<author><name>Ada Lovelace</name></author><author><name>Alan Turing</name></author>`, id, id, id, published)
	for _, c := range cats {
		fmt.Fprintf(&b, `<category term="%s" scheme="http://arxiv.org/schemas/atom"/>`, c)
	}
	b.WriteString("</entry>")
	return b.String()
}

func feed(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><feed xmlns="http://www.w3.org/2005/Atom">` +
		strings.Join(entries, "") + `</feed>`
}

type fakeArxiv struct {
	mu      sync.Mutex
	queries []string
	byCat   map[string]string
	fail    map[string]bool
}

func (f *fakeArxiv) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("search_query")
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.RawQuery)
	f.mu.Unlock()

	cat := strings.Fields(strings.TrimPrefix(q, "cat:"))[0]
	if f.fail[cat] {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml")
	fmt.Fprint(w, f.byCat[cat])
}

func testArxiv(srv *httptest.Server) *Arxiv {
	return &Arxiv{
		Client:  &httputil.Client{HTTP: srv.Client(), MaxRetries: 1},
		BaseURL: srv.URL,
		Logger:  zerolog.Nop(),
	}
}

var (
	from = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
)

func TestArxivSearch(t *testing.T) {
	fake := &fakeArxiv{byCat: map[string]string{
		"cs.SE": feed(
			entry("2603.00003v1", "2026-03-07T10:00:00Z", "cs.SE", "cs.AI"),
			entry("2603.00001v2", "2026-03-02T10:00:00Z", "cs.SE"),
			entry("2602.00009v1", "2026-02-20T10:00:00Z", "cs.SE"), // before window
		),
		"cs.AI": feed(
			entry("2603.00003v1", "2026-03-07T10:00:00Z", "cs.AI"), // duplicate
			entry("2603.00002v1", "2026-03-05T10:00:00Z", "cs.AI"),
		),
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	papers, err := testArxiv(srv).Search(context.Background(), Params{
		Categories: []string{"cs.SE", "cs.AI"},
		From:       from,
		To:         to,
	})
	require.NoError(t, err)

	ids := make([]string, len(papers))
	for i, p := range papers {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"2603.00003v1", "2603.00002v1", "2603.00001v2"}, ids)

	p := papers[0]
	assert.Equal(t, "Paper 2603.00003v1", p.Title)
	assert.Equal(t, "Abstract of 2603.00003v1.", p.Abstract)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, p.Authors)
	assert.Equal(t, []string{"cs.SE", "cs.AI"}, p.Categories)
	assert.Equal(t, "http://arxiv.org/pdf/2603.00003v1", p.PDFLink)

	require.Len(t, fake.queries, 2)
	assert.Contains(t, fake.queries[0], "sortBy=submittedDate")
	assert.Contains(t, fake.queries[0], "sortOrder=descending")
	assert.Contains(t, fake.queries[0], "max_results=2000")
}

func TestArxivSearchQueryAndLimit(t *testing.T) {
	fake := &fakeArxiv{byCat: map[string]string{
		"cs.LG": feed(
			entry("2603.00001v1", "2026-03-02T00:00:00Z"),
			entry("2603.00002v1", "2026-03-03T00:00:00Z"),
		),
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	papers, err := testArxiv(srv).Search(context.Background(), Params{
		Categories: []string{"cs.LG"}, Query: "program repair", From: from, To: to, Limit: 1,
	})
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "2603.00002v1", papers[0].ID)
	assert.Contains(t, fake.queries[0], "search_query=cat%3Acs.LG+AND+all%3A%22program+repair%22")
}

func TestArxivSearchSkipsFailingCategory(t *testing.T) {
	fake := &fakeArxiv{
		byCat: map[string]string{"cs.AI": feed(entry("2603.00002v1", "2026-03-05T10:00:00Z"))},
		fail:  map[string]bool{"cs.SE": true},
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	papers, err := testArxiv(srv).Search(context.Background(), Params{Categories: []string{"cs.SE", "cs.AI"}, From: from, To: to})
	require.NoError(t, err)
	assert.Len(t, papers, 1)
}

func TestArxivSearchAllCategoriesFail(t *testing.T) {
	fake := &fakeArxiv{fail: map[string]bool{"cs.SE": true, "cs.AI": true}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := testArxiv(srv).Search(context.Background(), Params{Categories: []string{"cs.SE", "cs.AI"}})
	require.Error(t, err)
}

func TestArxivSearchNoCategories(t *testing.T) {
	_, err := (&Arxiv{}).Search(context.Background(), Params{})
	require.Error(t, err)
}

func TestArxivLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_list") != "2603.00001v1" {
			fmt.Fprint(w, feed())
			return
		}
		fmt.Fprint(w, feed(entry("2603.00001v1", "2026-03-02T00:00:00Z")))
	}))
	defer srv.Close()

	a := testArxiv(srv)
	p, err := a.Lookup(context.Background(), "2603.00001v1")
	require.NoError(t, err)
	assert.Equal(t, "2603.00001v1", p.ID)

	_, err = a.Lookup(context.Background(), "0000.00000")
	require.Error(t, err)
}

func TestArxivQuery(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		fmt.Fprint(w, feed(entry("2603.00001v1", "2026-03-02T00:00:00Z")))
	}))
	defer srv.Close()

	papers, err := testArxiv(srv).Query(context.Background(), "retrieval", 0)
	require.NoError(t, err)
	assert.Len(t, papers, 1)
	assert.Contains(t, raw, "max_results=5")
	assert.Contains(t, raw, "sortBy=relevance")

	_, err = testArxiv(srv).Query(context.Background(), "  ", 3)
	require.Error(t, err)
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, "2401.00001v2", ExtractID("http://arxiv.org/abs/2401.00001v2"))
	assert.Equal(t, "cs/0112017v1", ExtractID("http://arxiv.org/abs/cs/0112017v1"))
	assert.Equal(t, "", ExtractID("http://example.com/x"))
}

func TestSelect(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	papers := []types.Paper{
		{ID: "a", Published: day(2)},
		{ID: "b", Published: day(5)},
		{ID: "a", Published: day(9)},
		{ID: "c", Published: day(5)},
		{ID: "d", Published: day(20)},
	}
	got := Select(papers, day(1), day(10), 0)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID, "ties keep input order")
	assert.Equal(t, "a", got[2].ID)

	assert.Len(t, Select(papers, time.Time{}, time.Time{}, 2), 2)
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable([]types.Paper{{
		ID: "2603.00001v1", Title: strings.Repeat("x", 80), Authors: []string{"Ada", "Alan"},
		Published: from, Categories: []string{"cs.SE"},
	}}, &buf)
	out := buf.String()
	assert.Contains(t, out, "2603.00001v1")
	assert.Contains(t, out, "Ada et al.")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "1 papers")

	buf.Reset()
	FormatTable(nil, &buf)
	assert.Equal(t, "No papers found.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON([]types.Paper{{ID: "x"}}, &buf))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "x", got[0]["id"])
}
