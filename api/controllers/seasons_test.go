package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/ssnnd0/Saxon-Scout/api/controllers/testing"
	"github.com/ssnnd0/Saxon-Scout/api/models"
	"github.com/ssnnd0/Saxon-Scout/scoutform"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

// performUpload posts a multipart form with one file part plus extra fields.
func performUpload(t *testing.T, env *testEnv, path, fileName string, fileData []byte, fields, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(fileData)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res := httptest.NewRecorder()
	env.router.ServeHTTP(res, req)
	return res
}

func createTestSeason(t *testing.T, env *testEnv, name string, current bool) *storage.Season {
	t.Helper()
	res := testutils.PerformRequest(env.router, http.MethodPost, "/api/seasons", &models.CreateSeasonRequest{
		Name:      name,
		Year:      2026,
		GameName:  "Test Game",
		StartDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		IsCurrent: current,
	}, asAdmin(env))
	require.Equal(t, http.StatusOK, res.Code, "failed to create season")

	var season storage.Season
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &season))
	return &season
}

func TestSeasonLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Happy path - create, list, get", func(t *testing.T) {
		season := createTestSeason(t, env, "2026 Season", true)

		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/seasons", nil, asScout(env))
		require.Equal(t, http.StatusOK, res.Code)
		var seasons []*storage.Season
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &seasons))
		assert.Len(t, seasons, 1)

		res = testutils.PerformRequest(env.router, http.MethodGet, "/api/seasons/"+season.ID, nil, asScout(env))
		require.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("Happy path - current returns the flagged season", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/seasons/current", nil, asScout(env))
		require.Equal(t, http.StatusOK, res.Code)

		var season storage.Season
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &season))
		assert.Equal(t, "2026 Season", season.Name)
	})

	t.Run("Happy path - creating another current season moves the flag", func(t *testing.T) {
		second := createTestSeason(t, env, "Offseason", true)

		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/seasons/current", nil, asScout(env))
		require.Equal(t, http.StatusOK, res.Code)

		var current storage.Season
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &current))
		assert.Equal(t, second.ID, current.ID)
	})

	t.Run("Unhappy path - scouts cannot create seasons", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/seasons", &models.CreateSeasonRequest{
			Name: "Rogue", Year: 2026,
		}, asScout(env))
		require.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("Unhappy path - get missing season", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/seasons/nope", nil, asScout(env))
		require.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestSeasonCurrentMissing(t *testing.T) {
	env := setupTestEnv(t)

	res := testutils.PerformRequest(env.router, http.MethodGet, "/api/seasons/current", nil, asScout(env))
	require.Equal(t, http.StatusNotFound, res.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "no current season set", body.Error)
}

func TestSeasonConfigEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	season := createTestSeason(t, env, "2026 Season", true)

	validConfig := &scoutform.Config{
		Name:    "Test Game",
		Version: 1,
		Categories: []scoutform.Category{
			{ID: "auto", Title: "Autonomous", Fields: []scoutform.Field{
				{ID: "autoScore", Type: scoutform.FieldNumber, Label: "Auto Score"},
				{ID: "autoNotes", Type: scoutform.FieldText, Label: "Auto Notes"},
			}},
		},
	}

	t.Run("Unhappy path - no config set yet", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/seasons/"+season.ID+"/config", nil, asScout(env))
		require.Equal(t, http.StatusNotFound, res.Code)

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
		assert.Equal(t, "no scouting config set for season", body.Error)
	})

	t.Run("Happy path - put then get config", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/seasons/"+season.ID+"/config", validConfig, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodGet, "/api/seasons/"+season.ID+"/config", nil, asScout(env))
		require.Equal(t, http.StatusOK, res.Code)

		var cfg scoutform.Config
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &cfg))
		assert.Equal(t, season.ID, cfg.SeasonID)
		assert.NotEmpty(t, cfg.ID)
		require.Len(t, cfg.Categories, 1)
	})

	t.Run("Unhappy path - invalid config rejected with reason", func(t *testing.T) {
		bad := &scoutform.Config{Categories: []scoutform.Category{
			{ID: "a", Fields: []scoutform.Field{{ID: "teamNumber", Type: scoutform.FieldText}}},
		}}
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/seasons/"+season.ID+"/config", bad, asAdmin(env))
		require.Equal(t, http.StatusBadRequest, res.Code)

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
		assert.Contains(t, body.Error, "reserved")
	})

	t.Run("Unhappy path - scouts cannot change the config", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/seasons/"+season.ID+"/config", validConfig, asScout(env))
		require.Equal(t, http.StatusForbidden, res.Code)
	})
}

func TestSeasonTeamAndMatchImport(t *testing.T) {
	env := setupTestEnv(t)
	season := createTestSeason(t, env, "2026 Season", true)

	t.Run("Happy path - import teams merges by number", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/seasons/"+season.ID+"/teams", &models.ImportTeamsRequest{
			Teams: []storage.Team{{Number: "611", Name: "Saxons"}},
		}, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodPost, "/api/seasons/"+season.ID+"/teams", &models.ImportTeamsRequest{
			Teams: []storage.Team{
				{Number: "611", Name: "Saxons Updated"},
				{Number: "254", Name: "Cheesy Poofs"},
			},
		}, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code)

		var teams []storage.Team
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &teams))
		require.Len(t, teams, 2)
		assert.Equal(t, "Saxons Updated", teams[0].Name)
	})

	t.Run("Happy path - schedule HTML upload fills the match list", func(t *testing.T) {
		schedule := []byte(`<table>
<tr><td>9:00 AM</td><td>Qualification 1</td><td>611</td><td>254</td><td>1678</td><td>118</td><td>971</td><td>33</td></tr>
<tr><td>9:09 AM</td><td>Qualification 2</td><td>2056</td><td>148</td><td>1114</td><td>611</td><td>27</td><td>16</td></tr>
</table>`)

		res := performUpload(t, env, "/api/seasons/"+season.ID+"/matches/import", "schedule.html", schedule, nil, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		var matches []storage.Match
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &matches))
		require.Len(t, matches, 2)
		assert.Equal(t, "1", matches[0].Number)
		assert.Equal(t, []string{"611", "254", "1678"}, matches[0].RedAlliance)
	})

	t.Run("Unhappy path - schedule without match rows", func(t *testing.T) {
		res := performUpload(t, env, "/api/seasons/"+season.ID+"/matches/import", "empty.html", []byte("<p>no table</p>"), nil, asAdmin(env))
		require.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - import into missing season", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/seasons/nope/teams", &models.ImportTeamsRequest{
			Teams: []storage.Team{{Number: "1"}},
		}, asAdmin(env))
		require.Equal(t, http.StatusNotFound, res.Code)
	})
}
