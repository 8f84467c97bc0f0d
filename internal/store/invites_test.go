package store

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-share/client/internal/model"
)

func inviteIDs(invites []model.Invite) []int64 {
	ids := make([]int64, 0, len(invites))
	for _, i := range invites {
		ids = append(ids, i.ID)
	}
	return ids
}

func TestInvites_FetchAndAccept(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/invites", jsonHandler(http.StatusOK, `[{"id":1,"status":"pending"},{"id":2,"status":"pending"}]`))
	mux.HandleFunc("POST /api/invites/{id}/accept", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "2" {
			jsonHandler(http.StatusConflict, `{"detail":"Invite already accepted"}`)(w, r)
			return
		}
		w.Write([]byte(`{"id":1,"status":"accepted"}`))
	})
	app := newTestApp(t, mux, nil)
	ctx := context.Background()

	var accepting []int64
	app.Invites.AcceptingInviteID.Watch(func(id int64) { accepting = append(accepting, id) })

	require.NoError(t, app.Invites.FetchInvites(ctx))
	assert.Equal(t, []int64{1, 2}, inviteIDs(app.Invites.Invites.Get()))

	accepted, err := app.Invites.AcceptInvite(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.InviteAccepted, accepted.Status)
	assert.Equal(t, []int64{2}, inviteIDs(app.Invites.Invites.Get()))

	_, err = app.Invites.AcceptInvite(ctx, 2)
	require.Error(t, err)
	assert.Equal(t, "Invite already accepted", app.Invites.Error.Get())
	assert.Equal(t, []int64{2}, inviteIDs(app.Invites.Invites.Get()))

	assert.Equal(t, []int64{1, 0, 2, 0}, accepting)
}

func TestInvites_FetchFailureEmptiesList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/invites", jsonHandler(http.StatusUnauthorized, `{"detail":"Not authenticated"}`))
	app := newTestApp(t, mux, nil)
	app.Invites.Invites.Set([]model.Invite{{ID: 5}})

	require.Error(t, app.Invites.FetchInvites(context.Background()))
	assert.Equal(t, "Unable to load invites", app.Invites.Error.Get())
	assert.Empty(t, app.Invites.Invites.Get())
}

func TestInvites_SocketAddsOrReplaces(t *testing.T) {
	notes := newFakeNotifications()
	app := newTestApp(t, http.NewServeMux(), notes)
	app.Invites.Invites.Set([]model.Invite{{ID: 1, GroupName: "Flat"}})

	app.Invites.ConnectToInviteSocket()
	app.Invites.ConnectToInviteSocket()
	assert.Equal(t, 1, notes.subscriptions(model.EventInvite))

	notes.emit(model.EventInvite, `{"id":2,"group_name":"Trip","status":"pending"}`)
	assert.Equal(t, []int64{2, 1}, inviteIDs(app.Invites.Invites.Get()))

	notes.emit(model.EventInvite, `{"id":1,"group_name":"Flat share","status":"pending"}`)
	invites := app.Invites.Invites.Get()
	assert.Equal(t, []int64{2, 1}, inviteIDs(invites))
	assert.Equal(t, "Flat share", invites[1].GroupName)

	notes.emit(model.EventInvite, ``)
	notes.emit(model.EventInvite, `"not an invite"`)
	assert.Len(t, app.Invites.Invites.Get(), 2)
}
