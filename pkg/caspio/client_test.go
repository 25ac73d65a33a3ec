package caspio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	var tokenCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_in": 86400})
	})
	mux.HandleFunc("/rest/v2/", handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		PageSize:     2,
		MaxPages:     5,
		RPS:          1000,
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)
	return srv, c
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Options{AccountID: "acct"})
	assert.Error(t, err)

	_, err = NewClient(Options{ClientID: "a", ClientSecret: "b"})
	assert.Error(t, err)
}

func TestFetchAll_FollowsPagination(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		page := r.URL.Query().Get("q.pageNumber")
		switch page {
		case "1":
			json.NewEncoder(w).Encode(map[string]any{"Result": []map[string]any{
				{"PK_ID": 1}, {"PK_ID": 2},
			}})
		case "2":
			json.NewEncoder(w).Encode(map[string]any{"Result": []map[string]any{
				{"PK_ID": 3},
			}})
		default:
			t.Fatalf("unexpected page %s", page)
		}
	})

	recs, err := c.FetchAll(context.Background(), "NWCA_Design_List", "")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestFetchAll_PassesWhereClause(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ID_Customer IS NULL", r.URL.Query().Get("q.where"))
		json.NewEncoder(w).Encode(map[string]any{"Result": []map[string]any{}})
	})

	_, err := c.FetchAll(context.Background(), "ArtRequests", Where().IsNull("ID_Customer").String())
	require.NoError(t, err)
}

func TestFetchAll_StopsAtPageCap(t *testing.T) {
	var pages atomic.Int64
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		// always a full page: without the cap this would loop forever
		json.NewEncoder(w).Encode(map[string]any{"Result": []map[string]any{
			{"PK_ID": 1}, {"PK_ID": 2},
		}})
	})

	recs, err := c.FetchAll(context.Background(), "ORDER_ODBC", "")
	require.NoError(t, err)
	assert.Len(t, recs, 10) // 5 pages x 2 records
	assert.EqualValues(t, 5, pages.Load())
}

func TestUpdate_ReturnsAffectedCount(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "CompanyName='Acme' AND ID_Customer IS NULL", r.URL.Query().Get("q.where"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 100, body["ID_Customer"])

		json.NewEncoder(w).Encode(map[string]any{"RecordsAffected": 2})
	})

	n, err := c.Update(context.Background(), "ArtRequests",
		Where().Eq("CompanyName", "Acme").IsNull("ID_Customer").String(),
		map[string]any{"ID_Customer": 100})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUpdate_ZeroAffectedIsNotAnError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"RecordsAffected": 0})
	})

	n, err := c.Update(context.Background(), "ArtRequests",
		Where().Eq("ID_Customer", 0).String(), map[string]any{"ID_Customer": 7})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"Result": []map[string]any{}})
	})
	c.retry.InitialBackoff = time.Millisecond

	_, err := c.FetchAll(context.Background(), "Customers", "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestDo_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int64
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"Message":"bad q.where"}`)
	})

	_, err := c.FetchAll(context.Background(), "Customers", "nonsense")
	assert.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestWhere_Rendering(t *testing.T) {
	w := Where().
		Eq("CompanyName", "O'Brien & Sons").
		Eq("ID_Customer", 0).
		IsNull("Date_Archived").
		After("date_OrderPlaced", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).
		NotAfter("date_OrderPlaced", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t,
		"CompanyName='O''Brien & Sons' AND ID_Customer=0 AND Date_Archived IS NULL"+
			" AND date_OrderPlaced>'2026-01-01' AND date_OrderPlaced<='2026-03-01'",
		w.String())
}

func TestWhere_EmptyRendersEmpty(t *testing.T) {
	assert.Equal(t, "", Where().String())
}
