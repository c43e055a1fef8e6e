package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancomm/pumpkin-sweeper/internal/config"
	"github.com/vancomm/pumpkin-sweeper/internal/middleware"
	"github.com/vancomm/pumpkin-sweeper/internal/mines"
	"github.com/vancomm/pumpkin-sweeper/internal/registry"
)

// enclosed walls (0,0) off behind three mines, so revealing anywhere else
// leaves the game running.
var enclosed = []mines.Point{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: 0}}

type cellResponse struct {
	State    string `json:"state"`
	Mine     bool   `json:"mine"`
	Adjacent int    `json:"adjacent"`
}

type gameResponse struct {
	GameID string `json:"game_id"`
	Token  string `json:"token"`
	Result string `json:"result"`
	Game   struct {
		Size           int              `json:"size"`
		Mines          int              `json:"mines"`
		FlagsRemaining int              `json:"flags_remaining"`
		Score          int              `json:"score"`
		Phase          string           `json:"phase"`
		Cells          [][]cellResponse `json:"cells"`
	} `json:"game"`
}

type testServer struct {
	*httptest.Server
	registry *registry.Registry
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	return setupServerWithTTL(t, time.Hour)
}

func setupServerWithTTL(t *testing.T, ttl time.Duration) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.New(logger, ttl)
	game := &config.Game{Size: 5, MineFraction: mines.DefaultMineFraction, SessionTTL: ttl}
	tokens := config.NewTokensWithSecret([]byte("test secret"), time.Hour)
	ws, err := config.NewWebSocket()
	require.NoError(t, err)

	h := NewGameHandler(logger, reg, game, tokens, ws)
	h.newSession = func() (*mines.Session, error) {
		return game.NewSession(mines.WithLayout(enclosed...))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /game", h.NewGame)
	mux.HandleFunc("GET /game/{id}", h.Fetch)
	mux.HandleFunc("POST /game/{id}/move", h.Move)
	mux.HandleFunc("POST /game/{id}/click", h.Click)
	mux.HandleFunc("POST /game/{id}/restart", h.Restart)
	mux.HandleFunc("DELETE /game/{id}", h.Delete)
	mux.HandleFunc("GET /game/{id}/connect", h.Connect)

	srv := httptest.NewServer(middleware.Session(tokens)(mux))
	t.Cleanup(srv.Close)
	return &testServer{srv, reg}
}

func (ts *testServer) do(t *testing.T, method, path, token string, query url.Values) (*http.Response, gameResponse) {
	t.Helper()

	u := ts.URL + path
	if query != nil {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body gameResponse
	if resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func (ts *testServer) newGame(t *testing.T) gameResponse {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/game", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NotEmpty(t, body.GameID)
	require.NotEmpty(t, body.Token)
	return body
}

func at(row, col int) url.Values {
	return url.Values{"row": {strconv.Itoa(row)}, "col": {strconv.Itoa(col)}}
}

func with(q url.Values, key, value string) url.Values {
	q.Set(key, value)
	return q
}

func TestNewGameAndFetch(t *testing.T) {
	ts := setupServer(t)
	created := ts.newGame(t)

	assert.Equal(t, "not_started", created.Game.Phase)
	assert.Equal(t, 5, created.Game.Size)
	assert.Equal(t, 3, created.Game.Mines)
	assert.Equal(t, 3, created.Game.FlagsRemaining)
	require.Len(t, created.Game.Cells, 5)
	for _, row := range created.Game.Cells {
		for _, c := range row {
			assert.Equal(t, cellResponse{State: "hidden"}, c)
		}
	}

	resp, fetched := ts.do(t, http.MethodGet, "/game/"+created.GameID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, created.GameID, fetched.GameID)
	assert.Empty(t, fetched.Token)

	resp, _ = ts.do(t, http.MethodGet, "/game/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMoveRequiresMatchingToken(t *testing.T) {
	ts := setupServer(t)
	a := ts.newGame(t)
	b := ts.newGame(t)

	q := with(at(4, 4), "move", "reveal")
	resp, _ := ts.do(t, http.MethodPost, "/game/"+a.GameID+"/move", "", q)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/game/"+a.GameID+"/move", b.Token, q)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/game/"+a.GameID+"/move", a.Token, q)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMoveBadRequest(t *testing.T) {
	ts := setupServer(t)
	g := ts.newGame(t)

	tests := []struct {
		name  string
		query url.Values
	}{
		{"no move", at(1, 1)},
		{"unknown move", with(at(1, 1), "move", "chord")},
		{"no row", url.Values{"move": {"reveal"}, "col": {"1"}}},
		{"row not an int", url.Values{"move": {"reveal"}, "row": {"x"}, "col": {"1"}}},
		{"out of bounds", with(at(5, 0), "move", "reveal")},
		{"negative", with(at(0, -1), "move", "flag")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := ts.do(t, http.MethodPost, "/game/"+g.GameID+"/move", g.Token, tt.query)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestMoveReveal(t *testing.T) {
	ts := setupServer(t)
	g := ts.newGame(t)
	path := "/game/" + g.GameID + "/move"

	resp, body := ts.do(t, http.MethodPost, path, g.Token, with(at(4, 4), "move", "reveal"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "applied", body.Result)
	assert.Equal(t, "active", body.Game.Phase)
	assert.Equal(t, 21*mines.ScorePerCell, body.Game.Score)
	assert.Equal(t, cellResponse{State: "revealed", Adjacent: 2}, body.Game.Cells[0][2])
	assert.Equal(t, cellResponse{State: "hidden"}, body.Game.Cells[0][0])
	assert.Equal(t, cellResponse{State: "hidden"}, body.Game.Cells[1][1], "mines stay secret")

	_, body = ts.do(t, http.MethodPost, path, g.Token, with(at(4, 4), "move", "reveal"))
	assert.Equal(t, "ignored", body.Result)
}

func TestClickPolicy(t *testing.T) {
	ts := setupServer(t)
	g := ts.newGame(t)
	path := "/game/" + g.GameID + "/click"

	_, body := ts.do(t, http.MethodPost, path, g.Token, with(at(0, 0), "button", "secondary"))
	assert.Equal(t, "applied", body.Result)
	assert.Equal(t, "flagged", body.Game.Cells[0][0].State)
	assert.Equal(t, "not_started", body.Game.Phase)

	q := with(with(at(3, 3), "button", "primary"), "flag_mode", "true")
	_, body = ts.do(t, http.MethodPost, path, g.Token, q)
	assert.Equal(t, "flagged", body.Game.Cells[3][3].State)
	assert.Equal(t, 1, body.Game.FlagsRemaining)

	_, body = ts.do(t, http.MethodPost, path, g.Token, with(at(4, 4), "button", "primary"))
	assert.Equal(t, "active", body.Game.Phase)
	assert.Equal(t, "flagged", body.Game.Cells[3][3].State, "flood fill skips flags")

	resp, _ := ts.do(t, http.MethodPost, path, g.Token, with(at(4, 4), "button", "middle"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRestartAndDelete(t *testing.T) {
	ts := setupServer(t)
	g := ts.newGame(t)
	base := "/game/" + g.GameID

	ts.do(t, http.MethodPost, base+"/move", g.Token, with(at(4, 4), "move", "reveal"))
	_, body := ts.do(t, http.MethodPost, base+"/move", g.Token, with(at(1, 1), "move", "reveal"))
	require.Equal(t, "lost", body.Game.Phase)
	for _, p := range enclosed {
		assert.Equal(t, cellResponse{State: "revealed", Mine: true}, body.Game.Cells[p.Row][p.Col])
	}

	resp, body := ts.do(t, http.MethodPost, base+"/restart", g.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "not_started", body.Game.Phase)
	assert.Zero(t, body.Game.Score)

	resp, _ = ts.do(t, http.MethodDelete, base, g.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, ts.registry.Len())

	resp, _ = ts.do(t, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = ts.do(t, http.MethodDelete, base, g.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		button   Button
		flagMode bool
		want     GameMove
	}{
		{Primary, false, Reveal},
		{Primary, true, Flag},
		{Secondary, false, Flag},
		{Secondary, true, Flag},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Click(tt.button, tt.flagMode))
	}
}

func TestParseGameMove(t *testing.T) {
	t.Parallel()

	for s, want := range map[string]GameMove{"reveal": Reveal, "OPEN": Reveal, "flag": Flag} {
		got, err := ParseGameMove(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseGameMove("chord")
	assert.ErrorIs(t, err, ErrBadMove)
}
