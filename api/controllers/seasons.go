package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ssnnd0/Saxon-Scout/api/models"
	"github.com/ssnnd0/Saxon-Scout/api/transport"
	"github.com/ssnnd0/Saxon-Scout/exchange"
	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/scoutform"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

const maxScheduleUpload = 5 << 20

type SeasonController struct {
	seasonsStorage storage.SeasonStorage
	usersStorage   storage.UserStorage
	jwtSecret      string
}

func NewSeasonController(seasons storage.SeasonStorage, users storage.UserStorage, jwtSecret string) *SeasonController {
	return &SeasonController{
		seasonsStorage: seasons,
		usersStorage:   users,
		jwtSecret:      jwtSecret,
	}
}

func (c *SeasonController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/seasons", transport.AuthMiddleware(c.jwtSecret, c.usersStorage))

	group.GET("", c.list)
	group.GET("/current", c.current)
	group.GET("/:id", c.get)
	group.GET("/:id/config", c.getConfig)
	group.GET("/:id/teams", c.listTeams)
	group.GET("/:id/matches", c.listMatches)

	admin := engine.Group("/api/seasons",
		transport.AuthMiddleware(c.jwtSecret, c.usersStorage),
		transport.AdminMiddleware())
	admin.POST("", c.create)
	admin.PUT("/:id", c.update)
	admin.DELETE("/:id", c.delete)
	admin.PUT("/:id/config", c.putConfig)
	admin.POST("/:id/teams", c.importTeams)
	admin.POST("/:id/matches", c.importMatches)
	admin.POST("/:id/matches/import", c.importSchedule)
}

func (c *SeasonController) list(g *gin.Context) {
	seasons, err := c.seasonsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("SEASON: failed to list seasons: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list seasons"})
		return
	}
	g.JSON(http.StatusOK, seasons)
}

// current godoc
// @Summary Get the season marked current
// @Tags seasons
// @Produce json
// @Success 200 {object} storage.Season
// @Failure 404 {object} models.ErrorResponse "No current season set"
// @Router /api/seasons/current [get]
func (c *SeasonController) current(g *gin.Context) {
	season, err := c.seasonsStorage.FindCurrent(g.Request.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "no current season set"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load current season"})
		return
	}
	g.JSON(http.StatusOK, season)
}

func (c *SeasonController) get(g *gin.Context) {
	season, err := c.seasonsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
		return
	}
	g.JSON(http.StatusOK, season)
}

// create godoc
// @Summary Create a season
// @Tags seasons
// @Accept json
// @Produce json
// @Param season body models.CreateSeasonRequest true "New season"
// @Success 200 {object} storage.Season
// @Failure 400 {object} models.ErrorResponse
// @Router /api/seasons [post]
func (c *SeasonController) create(g *gin.Context) {
	var req models.CreateSeasonRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid season data"})
		return
	}

	season := &storage.Season{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Year:      req.Year,
		GameName:  req.GameName,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsCurrent: req.IsCurrent,
		Teams:     req.Teams,
		Matches:   req.Matches,
	}
	if season.Teams == nil {
		season.Teams = []storage.Team{}
	}
	if season.Matches == nil {
		season.Matches = []storage.Match{}
	}

	if err := c.seasonsStorage.Create(g.Request.Context(), season); err != nil {
		logging.Log.Errorf("SEASON: failed to create season: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create season"})
		return
	}

	logging.Log.Infof("SEASON: created %s (%d)", season.Name, season.Year)
	g.JSON(http.StatusOK, season)
}

func (c *SeasonController) update(g *gin.Context) {
	var req models.UpdateSeasonRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid season data"})
		return
	}

	season, err := c.seasonsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
		return
	}

	if req.Name != nil {
		season.Name = *req.Name
	}
	if req.Year != nil {
		season.Year = *req.Year
	}
	if req.GameName != nil {
		season.GameName = *req.GameName
	}
	if req.StartDate != nil {
		season.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		season.EndDate = *req.EndDate
	}
	if req.IsCurrent != nil {
		season.IsCurrent = *req.IsCurrent
	}

	if err := c.seasonsStorage.Update(g.Request.Context(), season); err != nil {
		logging.Log.Errorf("SEASON: failed to update %s: %v", season.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update season"})
		return
	}
	g.JSON(http.StatusOK, season)
}

func (c *SeasonController) delete(g *gin.Context) {
	if err := c.seasonsStorage.Delete(g.Request.Context(), g.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete season"})
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "Season deleted"})
}

// getConfig godoc
// @Summary Get the active scouting config for a season
// @Tags seasons
// @Produce json
// @Param id path string true "Season ID"
// @Success 200 {object} scoutform.Config
// @Failure 404 {object} models.ErrorResponse "Season missing or no config set"
// @Router /api/seasons/{id}/config [get]
func (c *SeasonController) getConfig(g *gin.Context) {
	cfg, err := c.seasonsStorage.GetConfig(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "no scouting config set for season"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load scouting config"})
		return
	}
	g.JSON(http.StatusOK, cfg)
}

// putConfig godoc
// @Summary Replace the season's scouting config
// @Description The config is validated structurally; entries submitted
// against the previous config keep their stored values.
// @Tags seasons
// @Accept json
// @Produce json
// @Param id path string true "Season ID"
// @Param config body scoutform.Config true "Scouting config"
// @Success 200 {object} scoutform.Config
// @Failure 400 {object} models.ErrorResponse "Config fails validation"
// @Router /api/seasons/{id}/config [put]
func (c *SeasonController) putConfig(g *gin.Context) {
	var cfg scoutform.Config
	if err := g.ShouldBindJSON(&cfg); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid config data"})
		return
	}

	if err := cfg.Validate(); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: err.Error()})
		return
	}

	id := g.Param("id")
	cfg.SeasonID = id
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	if err := c.seasonsStorage.PutConfig(g.Request.Context(), id, &cfg); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
			return
		}
		logging.Log.Errorf("SEASON: failed to save config for %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not save scouting config"})
		return
	}

	logging.Log.Infof("SEASON: saved config %q v%d for season %s", cfg.Name, cfg.Version, id)
	g.JSON(http.StatusOK, &cfg)
}

func (c *SeasonController) listTeams(g *gin.Context) {
	season, err := c.seasonsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
		return
	}
	g.JSON(http.StatusOK, season.Teams)
}

func (c *SeasonController) listMatches(g *gin.Context) {
	season, err := c.seasonsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
		return
	}
	g.JSON(http.StatusOK, season.Matches)
}

// importTeams merges the posted teams into the season, replacing any team
// whose number is already present.
func (c *SeasonController) importTeams(g *gin.Context) {
	var req models.ImportTeamsRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "teams array is required"})
		return
	}

	teams, err := c.seasonsStorage.MergeTeams(g.Request.Context(), g.Param("id"), req.Teams)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
			return
		}
		logging.Log.Errorf("SEASON: team import failed: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not import teams"})
		return
	}
	g.JSON(http.StatusOK, teams)
}

func (c *SeasonController) importMatches(g *gin.Context) {
	var req models.ImportMatchesRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "matches array is required"})
		return
	}

	matches, err := c.seasonsStorage.MergeMatches(g.Request.Context(), g.Param("id"), req.Matches)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
			return
		}
		logging.Log.Errorf("SEASON: match import failed: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not import matches"})
		return
	}
	g.JSON(http.StatusOK, matches)
}

// importSchedule godoc
// @Summary Import matches from an FMS match schedule HTML report
// @Tags seasons
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Season ID"
// @Param file formData file true "Schedule HTML report"
// @Success 200 {array} storage.Match
// @Failure 400 {object} models.ErrorResponse
// @Router /api/seasons/{id}/matches/import [post]
func (c *SeasonController) importSchedule(g *gin.Context) {
	file, err := g.FormFile("file")
	if err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "no file uploaded"})
		return
	}
	if file.Size > maxScheduleUpload {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "file too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not read upload"})
		return
	}
	defer f.Close()

	parsed, err := exchange.ParseMatchSchedule(f)
	if err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: err.Error()})
		return
	}

	matches, err := c.seasonsStorage.MergeMatches(g.Request.Context(), g.Param("id"), parsed)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not import matches"})
		return
	}

	logging.Log.Infof("SEASON: imported %d matches from schedule for season %s", len(parsed), g.Param("id"))
	g.JSON(http.StatusOK, matches)
}
