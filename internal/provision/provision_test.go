package provision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
)

type event struct {
	Kind    string
	Subject string
}

type recordingReporter struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingReporter) add(kind, subject string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{Kind: kind, Subject: subject})
}

func (r *recordingReporter) Step(title string)      { r.add("step", title) }
func (r *recordingReporter) Created(subject string) { r.add("created", subject) }
func (r *recordingReporter) Skipped(subject string) { r.add("skipped", subject) }
func (r *recordingReporter) Updated(subject string) { r.add("updated", subject) }
func (r *recordingReporter) Deleted(subject string) { r.add("deleted", subject) }

func (r *recordingReporter) of(kind string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e.Subject)
		}
	}
	return out
}

type faunaCall struct {
	Op     string
	Secret string
	Body   string
}

// fakeFauna answers FQL requests the way the hosted database does. respond
// may override the reply for an operation.
type fakeFauna struct {
	mu      sync.Mutex
	calls   []faunaCall
	respond func(call faunaCall) (int, string, bool)
}

var faunaOps = []string{"create_database", "create_key", "create_role", "update", "delete", "map", "create"}

func secretOf(header string) string {
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(header, "Basic "); ok {
		decoded, _ := base64.StdEncoding.DecodeString(rest)
		return strings.TrimSuffix(string(decoded), ":")
	}
	return header
}

func (ff *fakeFauna) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	top := map[string]json.RawMessage{}
	_ = json.Unmarshal(raw, &top)

	call := faunaCall{Secret: secretOf(r.Header.Get("Authorization")), Body: string(raw)}
	for _, op := range faunaOps {
		if _, ok := top[op]; ok {
			call.Op = op
			break
		}
	}
	ff.mu.Lock()
	ff.calls = append(ff.calls, call)
	respond := ff.respond
	ff.mu.Unlock()

	status, body := http.StatusOK, defaultReply(call)
	if respond != nil {
		if s, b, ok := respond(call); ok {
			status, body = s, b
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Txn-Time", "1600000000000000")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func defaultReply(call faunaCall) string {
	switch call.Op {
	case "create_key":
		if strings.Contains(call.Body, "temp admin key") {
			return `{"resource":{"secret":"fnTemp"}}`
		}
		return `{"resource":{"secret":"fnPublic"}}`
	case "create":
		id := "nancy"
		if strings.Contains(call.Body, "alice@site.example") {
			id = "alice"
		}
		return `{"resource":{"ref":{"@ref":{"id":"` + id + `","collection":{"@ref":{"id":"User","collection":{"@ref":{"id":"collections"}}}}}},"ts":1}}`
	case "map":
		return `{"resource":[]}`
	default:
		return `{"resource":{"ts":1}}`
	}
}

func (ff *fakeFauna) recorded() []faunaCall {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return append([]faunaCall(nil), ff.calls...)
}

type importCall struct {
	Authorization string
	ContentType   string
	Body          []byte
}

func newImportServer(t *testing.T, status int, captured *importCall) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			*captured = importCall{
				Authorization: r.Header.Get("Authorization"),
				ContentType:   r.Header.Get("Content-Type"),
				Body:          body,
			}
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, "Schema imported successfully.")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newProvisioner(t *testing.T, ff *fakeFauna, importURL string, report Reporter) *Provisioner {
	t.Helper()
	srv := httptest.NewServer(ff)
	t.Cleanup(srv.Close)
	return New(Config{
		AdminKey:       "fnAdmin",
		DatabaseName:   "authgate-test",
		FaunaEndpoint:  srv.URL,
		ImportEndpoint: importURL,
		Reporter:       report,
	})
}

func ops(calls []faunaCall) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Op+"@"+c.Secret)
	}
	return out
}

func TestCreateDatabase(t *testing.T) {
	ff := &fakeFauna{}
	var imported importCall
	importSrv := newImportServer(t, http.StatusOK, &imported)
	report := &recordingReporter{}

	publicKey, err := newProvisioner(t, ff, importSrv.URL, report).CreateDatabase(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fnPublic", publicKey)

	require.Equal(t, []string{
		"create_database@fnAdmin",
		"create_key@fnAdmin",
		"update@fnTemp",
		"update@fnTemp",
		"update@fnTemp",
		"update@fnTemp",
		"create_role@fnTemp",
		"create_key@fnTemp",
		"create_role@fnTemp",
		"delete@fnAdmin",
	}, ops(ff.recorded()))

	require.Equal(t, "Bearer fnTemp", imported.Authorization)
	require.Equal(t, "application/octet-stream", imported.ContentType)
	require.Equal(t, FaunaSchema, imported.Body)

	require.Equal(t, []string{
		`Database "authgate-test"`,
		`Key "temp admin key for authgate-test"`,
		`Role "public"`,
		`Key "Public key for authgate-test"`,
		`Role "user"`,
	}, report.of("created"))
	require.Equal(t, []string{`Key "temp admin key for authgate-test"`}, report.of("deleted"))
	require.Contains(t, report.of("updated"), `Function "user_create_todo"`)
}

func TestCreateDatabaseSkipsExisting(t *testing.T) {
	ff := &fakeFauna{respond: func(call faunaCall) (int, string, bool) {
		if call.Op == "create_database" || call.Op == "create_role" {
			return http.StatusBadRequest, `{"errors":[{"code":"instance already exists","description":"Instance already exists."}]}`, true
		}
		return 0, "", false
	}}
	report := &recordingReporter{}

	publicKey, err := newProvisioner(t, ff, newImportServer(t, http.StatusOK, nil).URL, report).CreateDatabase(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fnPublic", publicKey)
	require.Equal(t, []string{`Database "authgate-test"`, `Role "public"`, `Role "user"`}, report.of("skipped"))
}

func TestCreateDatabaseUnauthorized(t *testing.T) {
	ff := &fakeFauna{respond: func(faunaCall) (int, string, bool) {
		return http.StatusUnauthorized, `{"errors":[{"code":"unauthorized","description":"Unauthorized"}]}`, true
	}}

	_, err := newProvisioner(t, ff, newImportServer(t, http.StatusOK, nil).URL, &recordingReporter{}).CreateDatabase(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, domainErr.ErrUnauthorized)
	require.Equal(t, "unauthorized: missing or invalid fauna_server_secret, or not enough permissions", err.Error())
	require.Len(t, ff.recorded(), 1)
}

func TestCreateDatabaseDeletesTempKeyOnFailure(t *testing.T) {
	ff := &fakeFauna{}
	report := &recordingReporter{}

	_, err := newProvisioner(t, ff, newImportServer(t, http.StatusInternalServerError, nil).URL, report).CreateDatabase(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")

	calls := ops(ff.recorded())
	require.Equal(t, "delete@fnAdmin", calls[len(calls)-1])
	require.Equal(t, []string{`Key "temp admin key for authgate-test"`}, report.of("deleted"))
}

func TestCreateDatabaseOtherError(t *testing.T) {
	ff := &fakeFauna{respond: func(call faunaCall) (int, string, bool) {
		if call.Op == "update" {
			return http.StatusBadRequest, `{"errors":[{"code":"invalid ref","description":"Ref refers to undefined function"}]}`, true
		}
		return 0, "", false
	}}

	_, err := newProvisioner(t, ff, newImportServer(t, http.StatusOK, nil).URL, &recordingReporter{}).CreateDatabase(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), `Function "login"`)
	require.NotErrorIs(t, err, domainErr.ErrAlreadyExists)
}

func TestImportSchemaUnauthorized(t *testing.T) {
	p := New(Config{ImportEndpoint: newImportServer(t, http.StatusUnauthorized, nil).URL})
	err := p.ImportSchema(context.Background(), "fnBad", FaunaSchema)

	var permErr *PermissionError
	require.True(t, errors.As(err, &permErr))
	require.ErrorIs(t, err, domainErr.ErrUnauthorized)
}

func TestMapFaunaErrorTransport(t *testing.T) {
	require.NoError(t, mapFaunaError(nil, "x"))
	require.ErrorIs(t, mapFaunaError(errors.New("connection refused"), "x"), domainErr.ErrBackendUnavailable)
}

func TestSeed(t *testing.T) {
	ff := &fakeFauna{}
	srv := httptest.NewServer(ff)
	t.Cleanup(srv.Close)
	report := &recordingReporter{}

	require.NoError(t, NewSeeder("fnServer", srv.URL, nil, report).Run(context.Background()))

	calls := ff.recorded()
	require.Equal(t, []string{"create@fnServer", "map@fnServer", "create@fnServer", "map@fnServer"}, ops(calls))
	require.Contains(t, calls[0].Body, "alice@site.example")
	require.Contains(t, calls[0].Body, "secret password")
	require.Contains(t, calls[1].Body, `"id":"alice"`)
	require.Contains(t, calls[1].Body, "Todo 3")
	require.Contains(t, calls[2].Body, "nancy@site.example")
	require.Contains(t, calls[3].Body, `"id":"nancy"`)
	require.Equal(t, []string{
		`User "alice@site.example"`,
		"3 todos for alice@site.example",
		`User "nancy@site.example"`,
		"3 todos for nancy@site.example",
	}, report.of("created"))
}

func TestSeedStopsOnError(t *testing.T) {
	ff := &fakeFauna{respond: func(faunaCall) (int, string, bool) {
		return http.StatusBadRequest, `{"errors":[{"code":"instance not unique","description":"document is not unique."}]}`, true
	}}
	srv := httptest.NewServer(ff)
	t.Cleanup(srv.Close)

	err := NewSeeder("fnServer", srv.URL, nil, &recordingReporter{}).Run(context.Background())
	require.Error(t, err)
	require.Len(t, ff.recorded(), 1)
}

func TestWriteEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FAUNADB_ADMIN_KEY=fnAdmin\nFAUNADB_PUBLIC_KEY=old\n"), 0o600))

	require.NoError(t, WriteEnv(path, map[string]string{"FAUNADB_PUBLIC_KEY": "fnPublic"}))
	env, err := godotenv.Read(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"FAUNADB_ADMIN_KEY": "fnAdmin", "FAUNADB_PUBLIC_KEY": "fnPublic"}, env)

	fresh := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, WriteEnv(fresh, map[string]string{"FAUNADB_PUBLIC_KEY": "fnPublic"}))
	env, err = godotenv.Read(fresh)
	require.NoError(t, err)
	require.Equal(t, "fnPublic", env["FAUNADB_PUBLIC_KEY"])
}
