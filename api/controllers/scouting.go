package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ssnnd0/Saxon-Scout/api/models"
	"github.com/ssnnd0/Saxon-Scout/api/transport"
	"github.com/ssnnd0/Saxon-Scout/exchange"
	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/scoutform"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

const maxImportUpload = 10 << 20

type ScoutingController struct {
	entriesStorage storage.EntryStorage
	seasonsStorage storage.SeasonStorage
	usersStorage   storage.UserStorage
	jwtSecret      string
}

func NewScoutingController(entries storage.EntryStorage, seasons storage.SeasonStorage, users storage.UserStorage, jwtSecret string) *ScoutingController {
	return &ScoutingController{
		entriesStorage: entries,
		seasonsStorage: seasons,
		usersStorage:   users,
		jwtSecret:      jwtSecret,
	}
}

func (c *ScoutingController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/scouting", transport.AuthMiddleware(c.jwtSecret, c.usersStorage))

	group.POST("", c.create)
	group.POST("/bulk", c.bulkCreate)
	group.GET("", c.query)
	group.GET("/stats", c.stats)
	group.GET("/export/:seasonId", c.export)

	admin := engine.Group("/api/scouting",
		transport.AuthMiddleware(c.jwtSecret, c.usersStorage),
		transport.AdminMiddleware())
	admin.POST("/import", c.importData)
	admin.DELETE("/:seasonId", c.deleteBySeason)
}

// create godoc
// @Summary Store one scouting entry
// @Tags scouting
// @Accept json
// @Produce json
// @Param entry body scoutform.Entry true "Entry"
// @Success 200 {object} scoutform.Entry
// @Failure 400 {object} models.ErrorResponse
// @Router /api/scouting [post]
func (c *ScoutingController) create(g *gin.Context) {
	var entry scoutform.Entry
	if err := g.ShouldBindJSON(&entry); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid entry format"})
		return
	}
	if msg, ok := validateEntry(&entry); !ok {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: msg})
		return
	}

	stored, err := c.entriesStorage.Create(g.Request.Context(), &entry)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not save entry"})
		return
	}

	logging.Log.Infof("SCOUTING: stored entry for team %s match %s", stored.TeamNumber, stored.MatchNumber)
	g.JSON(http.StatusOK, stored)
}

// bulkCreate godoc
// @Summary Store a batch of entries in one call
// @Description Used by clients syncing their offline queue. The batch is
// appended as-is; duplicate delivery creates duplicate rows.
// @Tags scouting
// @Accept json
// @Produce json
// @Param batch body models.BulkCreateRequest true "Entries"
// @Success 200 {object} models.BulkCreateResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/scouting/bulk [post]
func (c *ScoutingController) bulkCreate(g *gin.Context) {
	var req models.BulkCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Entries == nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "entries array is required"})
		return
	}

	stored, err := c.entriesStorage.BulkCreate(g.Request.Context(), req.Entries)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not save entries"})
		return
	}

	logging.Log.Infof("SCOUTING: bulk stored %d entries", len(stored))
	g.JSON(http.StatusOK, &models.BulkCreateResponse{
		Message: fmt.Sprintf("%d entries saved", len(stored)),
		Entries: stored,
	})
}

// query godoc
// @Summary Get entries by season and optional team
// @Tags scouting
// @Produce json
// @Param seasonId query string true "Season ID"
// @Param teamNumber query string false "Team number"
// @Success 200 {array} scoutform.Entry
// @Failure 400 {object} models.ErrorResponse
// @Router /api/scouting [get]
func (c *ScoutingController) query(g *gin.Context) {
	seasonID := g.Query("seasonId")
	if seasonID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "season ID is required"})
		return
	}

	var (
		entries []*scoutform.Entry
		err     error
	)
	if teamNumber := g.Query("teamNumber"); teamNumber != "" {
		entries, err = c.entriesStorage.FindByTeam(g.Request.Context(), seasonID, teamNumber)
	} else if matchNumber := g.Query("matchNumber"); matchNumber != "" {
		entries, err = c.entriesStorage.FindByMatch(g.Request.Context(), seasonID, matchNumber)
	} else {
		entries, err = c.entriesStorage.FindBySeasonID(g.Request.Context(), seasonID)
	}
	if err != nil {
		logging.Log.Errorf("SCOUTING: query failed: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load entries"})
		return
	}

	g.JSON(http.StatusOK, entries)
}

func (c *ScoutingController) stats(g *gin.Context) {
	stats, err := c.entriesStorage.Stats(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("SCOUTING: stats failed: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not compute stats"})
		return
	}
	g.JSON(http.StatusOK, stats)
}

// export godoc
// @Summary Export a season's entries as a CSV or JSON attachment
// @Tags scouting
// @Produce json
// @Param seasonId path string true "Season ID"
// @Param format query string false "csv (default) or json"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse "Season missing or no data"
// @Router /api/scouting/export/{seasonId} [get]
func (c *ScoutingController) export(g *gin.Context) {
	seasonID := g.Param("seasonId")

	entries, err := c.entriesStorage.FindBySeasonID(g.Request.Context(), seasonID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load entries"})
		return
	}
	if len(entries) == 0 {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "no scouting data found for this season"})
		return
	}

	season, err := c.seasonsStorage.Get(g.Request.Context(), seasonID)
	if err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
		return
	}

	format := g.DefaultQuery("format", "csv")
	switch format {
	case "json":
		g.Header("Content-Type", "application/json")
		g.Header("Content-Disposition", fmt.Sprintf("attachment; filename=scouting-data-%s.json", season.Name))
		if err := exchange.ExportJSON(g.Writer, entries); err != nil {
			logging.Log.Errorf("SCOUTING: JSON export failed: %v", err)
		}
	case "csv":
		g.Header("Content-Type", "text/csv")
		g.Header("Content-Disposition", fmt.Sprintf("attachment; filename=scouting-data-%s.csv", season.Name))
		if err := exchange.ExportCSV(g.Writer, entries); err != nil {
			logging.Log.Errorf("SCOUTING: CSV export failed: %v", err)
		}
	default:
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: `invalid export format. Use "csv" or "json"`})
	}
}

// importData godoc
// @Summary Import scouting entries from an uploaded CSV or JSON file
// @Description Rows without a team or match number are skipped; every
// accepted row is stamped with the target season and synced=true.
// @Tags scouting
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Data file"
// @Param seasonId formData string true "Season ID"
// @Param format formData string false "csv (default) or json"
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/scouting/import [post]
func (c *ScoutingController) importData(g *gin.Context) {
	file, err := g.FormFile("file")
	if err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "no file uploaded"})
		return
	}
	if file.Size > maxImportUpload {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "file too large"})
		return
	}

	seasonID := g.PostForm("seasonId")
	if seasonID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "season ID is required"})
		return
	}
	if _, err := c.seasonsStorage.Get(g.Request.Context(), seasonID); err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "season not found"})
		return
	}

	f, err := file.Open()
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not read upload"})
		return
	}
	defer f.Close()

	var (
		entries []*scoutform.Entry
		skipped int
	)
	format := g.DefaultPostForm("format", "csv")
	switch format {
	case "json":
		entries, skipped, err = exchange.ImportJSON(f, seasonID)
	case "csv":
		entries, skipped, err = exchange.ImportCSV(f, seasonID)
	default:
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: `invalid format. Use "csv" or "json"`})
		return
	}
	if err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: err.Error()})
		return
	}

	if len(entries) > 0 {
		if _, err := c.entriesStorage.BulkCreate(g.Request.Context(), entries); err != nil {
			logging.Log.Errorf("SCOUTING: import failed: %v", err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not save imported entries"})
			return
		}
	}

	logging.Log.Infof("SCOUTING: imported %d entries (%d skipped)", len(entries), skipped)
	g.JSON(http.StatusOK, &models.ImportResponse{
		Message:  fmt.Sprintf("Import complete. %d entries imported, %d skipped.", len(entries), skipped),
		Imported: len(entries),
		Skipped:  skipped,
	})
}

func (c *ScoutingController) deleteBySeason(g *gin.Context) {
	seasonID := g.Param("seasonId")
	if err := c.entriesStorage.DeleteBySeasonID(g.Request.Context(), seasonID); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete entries"})
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "All scouting entries for the season have been deleted"})
}

func validateEntry(e *scoutform.Entry) (string, bool) {
	switch {
	case e.TeamNumber == "":
		return "team number is required", false
	case e.MatchNumber == "":
		return "match number is required", false
	case e.SeasonID == "":
		return "season ID is required", false
	case e.Alliance != scoutform.AllianceRed && e.Alliance != scoutform.AllianceBlue:
		return "alliance must be red or blue", false
	}
	return "", true
}
