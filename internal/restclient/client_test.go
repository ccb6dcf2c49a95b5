package restclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/playeradmin/internal/player"
	"github.com/yanizio/playeradmin/internal/playertest"
)

func seedPlayers(n int) []player.Player {
	out := make([]player.Player, n)
	for i := range out {
		out[i] = player.Player{
			ID:         int64(i + 1),
			Name:       "p" + string(rune('a'+i)),
			Race:       player.RaceElf,
			Profession: player.ProfessionDruid,
			Level:      i,
		}
	}
	return out
}

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(url, WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestList_SendsPagingQuery(t *testing.T) {
	srv := playertest.New(seedPlayers(7)...)
	defer srv.Close()
	c := newClient(t, srv.URL)

	got, err := c.List(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(6), got[0].ID)
	assert.Equal(t, int64(7), got[1].ID)

	reqs := srv.RequestsMatching(http.MethodGet, "/rest/players")
	require.Len(t, reqs, 1)
	assert.Equal(t, "pageNumber=1&pageSize=5", reqs[0].Query)
}

func TestList_EmptyPageIsNonNil(t *testing.T) {
	srv := playertest.New()
	defer srv.Close()

	got, err := newClient(t, srv.URL).List(context.Background(), 0, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCount(t *testing.T) {
	srv := playertest.New(seedPlayers(4)...)
	defer srv.Close()

	n, err := newClient(t, srv.URL).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestCreate_BodyCarriesAllFields(t *testing.T) {
	srv := playertest.New()
	defer srv.Close()

	req := player.CreateRequest{
		Name:       "Gimli",
		Title:      "Lord of the Glittering Caves",
		Race:       player.RaceDwarf,
		Profession: player.ProfessionWarrior,
		Birthday:   player.EpochMillis(946684800000),
		Level:      42,
	}
	require.NoError(t, newClient(t, srv.URL).Create(context.Background(), req))

	reqs := srv.RequestsMatching(http.MethodPost, "/rest/players")
	require.Len(t, reqs, 1)

	var body map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, "Gimli", body["name"])
	assert.Equal(t, "DWARF", body["race"])
	assert.EqualValues(t, 42, body["level"])
	assert.EqualValues(t, 946684800000, body["birthday"])
	assert.Equal(t, false, body["banned"])

	ps := srv.Players()
	require.Len(t, ps, 1)
	assert.Equal(t, "Gimli", ps[0].Name)
}

func TestUpdate_OmitsLevelAndBirthday(t *testing.T) {
	srv := playertest.New(seedPlayers(3)...)
	defer srv.Close()

	err := newClient(t, srv.URL).Update(context.Background(), 2, player.UpdateRequest{
		Name:       "Legolas",
		Race:       player.RaceElf,
		Profession: player.ProfessionRogue,
		Banned:     true,
	})
	require.NoError(t, err)

	reqs := srv.RequestsMatching(http.MethodPost, "/rest/players/2")
	require.Len(t, reqs, 1)

	var body map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.NotContains(t, body, "level")
	assert.NotContains(t, body, "birthday")
	assert.Equal(t, true, body["banned"])

	assert.Equal(t, "Legolas", srv.Players()[1].Name)
}

func TestDelete(t *testing.T) {
	srv := playertest.New(seedPlayers(2)...)
	defer srv.Close()
	c := newClient(t, srv.URL)

	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Len(t, srv.Players(), 1)

	err := c.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestStatusError_CarriesBodySnippet(t *testing.T) {
	srv := playertest.New()
	defer srv.Close()
	srv.FailNext(http.MethodGet, "/rest/players/count", http.StatusInternalServerError)

	_, err := newClient(t, srv.URL).Count(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "count", se.Op)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "injected failure", se.Body)
	assert.False(t, IsNotFound(err))
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Count(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestBasePathPrefix(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
		_, _ = w.Write([]byte("0"))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL+"/api/").Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/rest/players/count", seen)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/rest")
	assert.Error(t, err)

	_, err = New("::bad")
	assert.Error(t, err)
}

func TestContextCancel(t *testing.T) {
	srv := playertest.New()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newClient(t, srv.URL).List(ctx, 0, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
