package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"tournament-stats/internal/apierr"
	"tournament-stats/internal/stats"

	"google.golang.org/api/option"
)

// fakeSheets is a minimal Sheets/Drive v4 backend.
type fakeSheets struct {
	mu          sync.Mutex
	titles      []string
	header      []interface{}
	appended    [][]interface{}
	appendCalls int
	addedSheets []string
	driveQuery  string
	driveFiles  string
	failAppend  int // status code to fail append with, 0 = succeed
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case path == "/files" && r.Method == http.MethodGet:
		f.driveQuery = r.URL.Query().Get("q")
		io.WriteString(w, f.driveFiles)

	case strings.HasSuffix(path, ":batchUpdate"):
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.addedSheets = append(f.addedSheets, rq.AddSheet.Properties.Title)
		}
		io.WriteString(w, `{"spreadsheetId":"sheet-123"}`)

	case strings.HasSuffix(path, ":append"):
		f.appendCalls++
		if f.failAppend != 0 {
			w.WriteHeader(f.failAppend)
			io.WriteString(w, `{"error":{"code":`+strconv.Itoa(f.failAppend)+`,"message":"append failed"}}`)
			return
		}
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr)
		f.appended = append(f.appended, vr.Values...)
		io.WriteString(w, `{"spreadsheetId":"sheet-123","updates":{"updatedRange":"Sheet1!A2:AU11","updatedRows":`+strconv.Itoa(len(vr.Values))+`}}`)

	case strings.Contains(path, "/values/") && r.Method == http.MethodGet:
		if f.header == nil {
			io.WriteString(w, `{"range":"Sheet1!A1:ZZ1"}`)
			return
		}
		data, _ := json.Marshal(map[string]interface{}{"range": "Sheet1!A1:ZZ1", "values": [][]interface{}{f.header}})
		w.Write(data)

	case strings.Contains(path, "/values/") && r.Method == http.MethodPut:
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr)
		if len(vr.Values) > 0 {
			f.header = vr.Values[0]
		}
		io.WriteString(w, `{"spreadsheetId":"sheet-123","updatedRows":1}`)

	case strings.HasPrefix(path, "/v4/spreadsheets/") && r.Method == http.MethodGet:
		sheets := make([]map[string]interface{}, 0, len(f.titles))
		for _, title := range f.titles {
			sheets = append(sheets, map[string]interface{}{"properties": map[string]string{"title": title}})
		}
		data, _ := json.Marshal(map[string]interface{}{"spreadsheetId": "sheet-123", "sheets": sheets})
		w.Write(data)

	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"code":404,"message":"not found"}}`)
	}
}

func newTestWriter(t *testing.T, fake *fakeSheets, target Target) *Writer {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	w, err := NewWriter(context.Background(), "", target,
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return w
}

func sampleRows(n int) []stats.Row {
	rows := make([]stats.Row, n)
	for i := range rows {
		rows[i] = stats.Row{MatchID: "NA1_1", SummonerName: "Player", Kills: i, Result: "Win"}
	}
	return rows
}

func TestAppendRows(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Sheet1"}}
	w := newTestWriter(t, fake, Target{SpreadsheetID: "sheet-123"})

	if err := w.AppendRows(context.Background(), sampleRows(3)); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}

	if fake.appendCalls != 1 {
		t.Errorf("expected one append call per batch, got %d", fake.appendCalls)
	}
	if len(fake.appended) != 3 {
		t.Fatalf("expected 3 rows appended, got %d", len(fake.appended))
	}
	if len(fake.appended[0]) != len(stats.Headers) {
		t.Errorf("row width %d, want %d", len(fake.appended[0]), len(stats.Headers))
	}
	if fake.appended[0][1] != "NA1_1" {
		t.Errorf("second column should be the match id, got %v", fake.appended[0][1])
	}
}

func TestAppendRows_EmptyBatch(t *testing.T) {
	fake := &fakeSheets{}
	w := newTestWriter(t, fake, Target{SpreadsheetID: "sheet-123"})

	if err := w.AppendRows(context.Background(), nil); err != nil {
		t.Fatalf("AppendRows(nil): %v", err)
	}
	if fake.appendCalls != 0 {
		t.Error("empty batch should not call the API")
	}
}

// TestAppendRows_Duplicates tests that appending the same rows twice writes them twice
func TestAppendRows_Duplicates(t *testing.T) {
	fake := &fakeSheets{}
	w := newTestWriter(t, fake, Target{SpreadsheetID: "sheet-123"})

	rows := sampleRows(2)
	for i := 0; i < 2; i++ {
		if err := w.AppendRows(context.Background(), rows); err != nil {
			t.Fatal(err)
		}
	}
	if len(fake.appended) != 4 {
		t.Errorf("expected 4 rows after two identical appends, got %d", len(fake.appended))
	}
}

func TestAppendRows_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not shared", http.StatusForbidden, apierr.ErrAuth},
		{"bad credentials", http.StatusUnauthorized, apierr.ErrAuth},
		{"missing sheet", http.StatusNotFound, apierr.ErrAuth},
		{"quota", http.StatusTooManyRequests, apierr.ErrRateLimited},
		{"backend", http.StatusInternalServerError, apierr.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSheets{failAppend: tt.status}
			w := newTestWriter(t, fake, Target{SpreadsheetID: "sheet-123"})

			err := w.AppendRows(context.Background(), sampleRows(1))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEnsureHeader(t *testing.T) {
	fake := &fakeSheets{}
	w := newTestWriter(t, fake, Target{SpreadsheetID: "sheet-123"})
	ctx := context.Background()

	wrote, err := w.EnsureHeader(ctx)
	if err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}
	if !wrote {
		t.Error("expected header to be written on an empty sheet")
	}
	if len(fake.header) != len(stats.Headers) || fake.header[0] != "Date" {
		t.Fatalf("unexpected header: %v", fake.header)
	}

	wrote, err = w.EnsureHeader(ctx)
	if err != nil {
		t.Fatalf("EnsureHeader (second): %v", err)
	}
	if wrote {
		t.Error("header should not be rewritten when already present")
	}
}

func TestEnsureWorksheet(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		fake := &fakeSheets{titles: []string{"Sheet1", "Stats"}}
		w := newTestWriter(t, fake, Target{SpreadsheetID: "sheet-123", Worksheet: "Stats"})

		if err := w.EnsureWorksheet(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(fake.addedSheets) != 0 {
			t.Errorf("should not add an existing worksheet, added %v", fake.addedSheets)
		}
	})

	t.Run("missing", func(t *testing.T) {
		fake := &fakeSheets{titles: []string{"Sheet1"}}
		w := newTestWriter(t, fake, Target{SpreadsheetID: "sheet-123", Worksheet: "Week 3"})

		if err := w.EnsureWorksheet(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(fake.addedSheets) != 1 || fake.addedSheets[0] != "Week 3" {
			t.Errorf("expected 'Week 3' to be added, got %v", fake.addedSheets)
		}
	})
}

func TestNewWriter_ByName(t *testing.T) {
	fake := &fakeSheets{driveFiles: `{"files":[{"id":"found-456","name":"Tournament Stats"}]}`}
	w := newTestWriter(t, fake, Target{SpreadsheetName: "Tournament Stats"})

	if w.SpreadsheetID() != "found-456" {
		t.Errorf("SpreadsheetID() = %q", w.SpreadsheetID())
	}
	if !strings.Contains(fake.driveQuery, "name = 'Tournament Stats'") {
		t.Errorf("unexpected drive query: %q", fake.driveQuery)
	}
}

func TestNewWriter_NameNotFound(t *testing.T) {
	fake := &fakeSheets{driveFiles: `{"files":[]}`}
	server := httptest.NewServer(fake)
	defer server.Close()

	_, err := NewWriter(context.Background(), "", Target{SpreadsheetName: "Missing"},
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
	)
	if !errors.Is(err, apierr.ErrAuth) {
		t.Errorf("expected ErrAuth for an unshared sheet, got %v", err)
	}
}

func TestA1_QuotesWorksheet(t *testing.T) {
	w := &Writer{worksheet: "Bob's Games"}
	if got := w.a1("A1"); got != "'Bob''s Games'!A1" {
		t.Errorf("a1() = %q", got)
	}
}

func TestConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := NewConsoleWriter(&buf)

	if err := cw.AppendRows(context.Background(), sampleRows(2)); err != nil {
		t.Fatal(err)
	}
	if err := cw.AppendRows(context.Background(), sampleRows(1)); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Date") {
		t.Errorf("first line should be the header, got %q", lines[0])
	}
	if cw.Rows() != 3 {
		t.Errorf("Rows() = %d", cw.Rows())
	}
}
