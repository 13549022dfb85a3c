package vault

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// vaultState scripts a minimal fake Vault for populator tests.
type vaultState struct {
	// properties is the JSON array returned by the properties endpoint.
	properties string
	// document is the JSON object returned for any document fetch.
	document string
	// onUpdate receives the tags__c value of each document update.
	onUpdate func(value string)
}

func vaultHandler(t *testing.T, state vaultState) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth":
			fmt.Fprint(w, `{"responseStatus":"SUCCESS","sessionId":"sess-1"}`)
		case r.URL.Path == "/metadata/objects/documents/properties":
			fmt.Fprintf(w, `{"responseStatus":"SUCCESS","properties":%s}`, state.properties)
		case r.Method == http.MethodGet:
			fmt.Fprintf(w, `{"responseStatus":"SUCCESS","document":%s}`, state.document)
		case r.Method == http.MethodPut:
			require.NoError(t, r.ParseForm())
			if state.onUpdate != nil {
				state.onUpdate(r.PostForm.Get("tags__c"))
			}
			fmt.Fprint(w, `{"responseStatus":"SUCCESS"}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
}
