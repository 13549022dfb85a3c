package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-health/docenrich/internal/common"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithOptions(ClientOptions{BaseURL: server.URL})
}

func TestAuthenticate(t *testing.T) {
	t.Run("success yields a session", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "svc-user", r.PostForm.Get("username"))
			assert.Equal(t, "secret", r.PostForm.Get("password"))
			w.Write([]byte(`{"responseStatus":"SUCCESS","sessionId":"sess-123"}`))
		}))

		session, err := client.Authenticate(context.Background(), "svc-user", "secret")
		require.NoError(t, err)
		assert.Equal(t, "sess-123", session.id)
	})

	t.Run("failure wraps the auth sentinel", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"responseStatus":"FAILURE","errors":[{"type":"NO_PASSWORD_PROVIDED","message":"No password was provided"}]}`))
		}))

		_, err := client.Authenticate(context.Background(), "svc-user", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrAuthFailed)
		assert.Contains(t, err.Error(), "No password was provided")
	})
}

func TestQuery(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			w.Write([]byte(`{"responseStatus":"SUCCESS","sessionId":"sess-1"}`))
		case "/query":
			require.Equal(t, "sess-1", r.Header.Get("Authorization"))
			require.NoError(t, r.ParseForm())
			assert.Contains(t, r.PostForm.Get("q"), "from documents")
			w.Write([]byte(`{"responseStatus":"SUCCESS","data":[
				{"id":101,"format__v":"application/pdf","filename__v":"summary.pdf","major_version_number__v":2,"minor_version_number__v":1},
				{"id":"102","format__v":"image/png","filename__v":"scan.png","major_version_number__v":1,"minor_version_number__v":0}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	session, err := client.Authenticate(context.Background(), "u", "p")
	require.NoError(t, err)

	rows, err := session.Query(context.Background(), "SELECT id from documents")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "101", string(rows[0].ID), "numeric ids normalize to strings")
	assert.Equal(t, "summary.pdf", rows[0].Filename)
	assert.Equal(t, 2, rows[0].MajorVersion)
	assert.Equal(t, "102", string(rows[1].ID))
}

func TestDownloadDocument(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			w.Write([]byte(`{"responseStatus":"SUCCESS","sessionId":"sess-1"}`))
			return
		}
		require.Equal(t, "/objects/documents/101/versions/2/1/file", r.URL.Path)
		w.Header().Set("Content-Type", "application/octet-stream;charset=UTF-8")
		w.Write([]byte("pdf-bytes"))
	}))

	session, err := client.Authenticate(context.Background(), "u", "p")
	require.NoError(t, err)

	content, contentType, err := session.DownloadDocument(context.Background(), "101", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), content)
	assert.Contains(t, contentType, "application/octet-stream")
}

func TestDocumentProperties(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			w.Write([]byte(`{"responseStatus":"SUCCESS","sessionId":"sess-1"}`))
			return
		}
		require.Equal(t, "/metadata/objects/documents/properties", r.URL.Path)
		w.Write([]byte(`{"responseStatus":"SUCCESS","properties":[
			{"name":"tags__c","label":"AI Tags"},
			{"name":"internal__sys","label":""}
		]}`))
	}))

	session, err := client.Authenticate(context.Background(), "u", "p")
	require.NoError(t, err)

	props, err := session.DocumentProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, props, 1, "unlabeled properties are dropped")
	assert.Equal(t, "tags__c", props[0].Name)
	assert.Equal(t, "AI Tags", props[0].Label)
}

func TestUpdateDocument(t *testing.T) {
	var gotField, gotValue string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			w.Write([]byte(`{"responseStatus":"SUCCESS","sessionId":"sess-1"}`))
			return
		}
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/objects/documents/101", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotField = "tags__c"
		gotValue = r.PostForm.Get("tags__c")
		w.Write([]byte(`{"responseStatus":"SUCCESS"}`))
	}))

	session, err := client.Authenticate(context.Background(), "u", "p")
	require.NoError(t, err)

	err = session.UpdateDocument(context.Background(), "101", "tags__c", "Aspirin,Headache")
	require.NoError(t, err)
	assert.Equal(t, "tags__c", gotField)
	assert.Equal(t, "Aspirin,Headache", gotValue)
}
