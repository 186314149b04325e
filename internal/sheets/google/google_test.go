package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

// fakeSheets emulates the three values endpoints the client uses.
type fakeSheets struct {
	mu       sync.Mutex
	idColumn [][]any
	appended [][]any
	cleared  []string
	updated  map[string][][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, rest, ok := strings.Cut(r.URL.Path, "/values/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(rest, ":append"):
		var vr gsheet.ValueRange
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &vr)
		f.appended = append(f.appended, vr.Values...)
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && strings.HasSuffix(rest, ":clear"):
		f.cleared = append(f.cleared, strings.TrimSuffix(rest, ":clear"))
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &vr)
		if f.updated == nil {
			f.updated = make(map[string][][]any)
		}
		f.updated[rest] = vr.Values
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(gsheet.ValueRange{Range: rest, Values: f.idColumn})
	default:
		http.Error(w, "unexpected call", http.StatusBadRequest)
	}
}

func newFakeClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(ts.URL+"/"),
		goption.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	c, err := NewWithService(svc, "sheet-id", "Transactions", nil)
	require.NoError(t, err)
	return c
}

func TestAppendTransaction(t *testing.T) {
	fake := &fakeSheets{}
	c := newFakeClient(t, fake)

	err := c.AppendTransaction(context.Background(), core.Transaction{
		ID: 5, UserID: 1, Type: core.Income, Category: "Salary",
		Amount: core.Money{Cents: 300000}, Date: core.NewDate(2024, 1, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"5", "1", "2024-01-31", "income", "Salary", "3000.00", ""}}, fake.appended)

	assert.Error(t, c.AppendTransaction(context.Background(), core.Transaction{}))
}

func TestRemoveTransaction(t *testing.T) {
	fake := &fakeSheets{idColumn: [][]any{{"ID"}, {"4"}, {"5"}}}
	c := newFakeClient(t, fake)

	require.NoError(t, c.RemoveTransaction(context.Background(), 5))
	assert.Equal(t, []string{"Transactions!A3:G3"}, fake.cleared)

	require.NoError(t, c.RemoveTransaction(context.Background(), 99))
	assert.Len(t, fake.cleared, 1, "missing rows are not an error")
}

func TestEnsureHeader(t *testing.T) {
	fake := &fakeSheets{}
	c := newFakeClient(t, fake)

	require.NoError(t, c.EnsureHeader(context.Background()))
	assert.Equal(t, [][]any{Header}, fake.updated["Transactions!A1:G1"])

	fake.updated = nil
	fake.idColumn = [][]any{{"ID"}}
	require.NoError(t, c.EnsureHeader(context.Background()))
	assert.Nil(t, fake.updated)
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")

	_, err = NewWithService(nil, " ", "", nil)
	assert.Error(t, err)
}
