package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-share/client/api/handlers"
	"github.com/expense-share/client/internal/ledger"
	"github.com/expense-share/client/internal/model"
	"github.com/expense-share/client/internal/recorder"
	"github.com/expense-share/client/internal/ws"
)

func startDevServer(t *testing.T) (*httptest.Server, *ledger.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := ws.NewHub(nil)
	service := ledger.NewService(ledger.Config{Publisher: hub})
	require.NoError(t, service.SeedDemo())
	srv := httptest.NewServer(handlers.NewRouter(handlers.Options{Service: service, Hub: hub}))
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return srv, service
}

// runCLI executes the root command and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFlag, envFileFlag, baseURLFlag, offlineFlag = "", "", "", false
	recordFlag, metricsAddrFlag, speedFlag = "", "", 1

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func signedIn(t *testing.T, username string) {
	t.Helper()
	t.Setenv("LEDGER_USERNAME", username)
	t.Setenv("LEDGER_PASSWORD", ledger.DemoPassword)
	t.Setenv("LEDGER_NOTIFICATIONS_DISABLED", "true")
	t.Setenv("LEDGER_LOG_LEVEL", "error")
}

func TestCLI_WhoamiAndGroups(t *testing.T) {
	srv, _ := startDevServer(t)
	signedIn(t, "alice")

	out, err := runCLI(t, "whoami", "--base-url", srv.URL)
	require.NoError(t, err)
	var user model.User
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, "alice", user.Username)

	out, err = runCLI(t, "groups", "--base-url", srv.URL)
	require.NoError(t, err)
	var groups []model.Group
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "Flat share", groups[0].Name)

	_, err = runCLI(t, "group", "abc", "--base-url", srv.URL)
	assert.EqualError(t, err, `invalid group id "abc"`)

	_, err = runCLI(t, "group", "99", "--base-url", srv.URL)
	assert.ErrorContains(t, err, "Group not found")
}

func TestCLI_SignedOut(t *testing.T) {
	srv, _ := startDevServer(t)
	t.Setenv("LEDGER_USERNAME", "")
	t.Setenv("LEDGER_NOTIFICATIONS_DISABLED", "true")
	t.Setenv("LEDGER_LOG_LEVEL", "error")

	_, err := runCLI(t, "whoami", "--base-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")

	out, err := runCLI(t, "open", "/groups/3", "--base-url", srv.URL)
	require.NoError(t, err)
	var res openResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "GroupDetails", res.Route)
	assert.Equal(t, "3", res.Params["id"])
	assert.True(t, strings.HasPrefix(res.Redirect, "/login?redirect="), res.Redirect)

	out, err = runCLI(t, "open", "/about", "--base-url", srv.URL)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Empty(t, res.Redirect)

	_, err = runCLI(t, "open", "/nowhere", "--base-url", srv.URL)
	assert.Error(t, err)
}

func TestCLI_InvitesAndSummary(t *testing.T) {
	srv, service := startDevServer(t)
	alice, err := service.UserByName("alice")
	require.NoError(t, err)
	flat := service.ListGroups(alice.ID)[0].ID
	invite, err := service.InviteMember(alice.ID, flat, "cara")
	require.NoError(t, err)

	signedIn(t, "cara")

	out, err := runCLI(t, "invites", "--base-url", srv.URL)
	require.NoError(t, err)
	var invites []model.Invite
	require.NoError(t, json.Unmarshal([]byte(out), &invites))
	require.Len(t, invites, 1)
	assert.Equal(t, "Flat share", invites[0].GroupName)

	_, err = runCLI(t, "accept-invite", itoa(invite.ID), "--base-url", srv.URL)
	require.NoError(t, err)

	out, err = runCLI(t, "summary", "--base-url", srv.URL)
	require.NoError(t, err)
	var summary model.SpendingSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Len(t, summary.Groups, 1)

	out, err = runCLI(t, "settlements", itoa(flat), "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"recommendations": []`)
}

func TestCLI_OfflineReadsSnapshotCache(t *testing.T) {
	srv, _ := startDevServer(t)
	signedIn(t, "bob")
	t.Setenv("LEDGER_CACHE_DB", filepath.Join(t.TempDir(), "cache.db"))

	online, err := runCLI(t, "groups", "--base-url", srv.URL)
	require.NoError(t, err)

	srv.Close()
	offline, err := runCLI(t, "groups", "--offline", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.JSONEq(t, online, offline)
}

func TestCLI_LoginFailureReturnsError(t *testing.T) {
	srv, _ := startDevServer(t)
	signedIn(t, "alice")
	t.Setenv("LEDGER_PASSWORD", "wrong")

	_, err := runCLI(t, "whoami", "--base-url", srv.URL)
	assert.EqualError(t, err, "Invalid username or password")

	t.Setenv("LEDGER_PASSWORD", ledger.DemoPassword)
	out, err := runCLI(t, "whoami", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"username": "alice"`)
}

func TestCLI_OfflineNeedsCache(t *testing.T) {
	t.Setenv("LEDGER_CACHE_DB", "")
	t.Setenv("LEDGER_LOG_LEVEL", "error")
	_, err := runCLI(t, "groups", "--offline", "--base-url", "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot cache")
}

func TestReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	content := `{"version":1,"timestamp":1700000000,"types":["invite"]}
[0.5,"invite",{"id":1}]
[1.25,"expenses_changed",{"group_id":2}]
[2,"settlement_update",null]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	out, err := runCLI(t, "replay", path, "--speed", "0")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"type":"invite","data":{"id":1}}`, lines[0])
	assert.JSONEq(t, `{"type":"expenses_changed","data":{"group_id":2}}`, lines[1])
	assert.JSONEq(t, `{"type":"settlement_update"}`, lines[2])
}

func TestReplay_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":9,"timestamp":0}`+"\n"), 0o600))

	err := replay(t.Context(), &bytes.Buffer{}, path, 0)
	assert.EqualError(t, err, "unsupported recording version 9")
}

func TestRecordingHeaderListsWatchedTypes(t *testing.T) {
	var buf bytes.Buffer
	rec := recorder.NewWithWriter(&buf)
	require.NoError(t, rec.WriteHeader("ws://example.test/ws/notifications", allEventTypes))

	header, events, err := recorder.ReadRecording(&buf)
	require.NoError(t, err)
	assert.Equal(t, allEventTypes, header.Types)
	assert.Empty(t, events)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42", "group id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, arg := range []string{"0", "-3", "x", ""} {
		_, err := parseID(arg, "group id")
		assert.Error(t, err, arg)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ledger version "+version+"\n", out)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
