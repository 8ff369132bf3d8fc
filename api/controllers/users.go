package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssnnd0/Saxon-Scout/api/models"
	"github.com/ssnnd0/Saxon-Scout/api/transport"
	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

// inviteAlphabet avoids ambiguous characters so codes survive being read out
// loud in a noisy pit.
const inviteAlphabet = "346789ABCDEFGHJKLMNPQRTUVWXY"
const inviteLength = 8

type UserController struct {
	usersStorage   storage.UserStorage
	invitesStorage storage.InviteStorage
	jwtSecret      string
}

func NewUserController(users storage.UserStorage, invites storage.InviteStorage, jwtSecret string) *UserController {
	return &UserController{
		usersStorage:   users,
		invitesStorage: invites,
		jwtSecret:      jwtSecret,
	}
}

func (c *UserController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/users",
		transport.AuthMiddleware(c.jwtSecret, c.usersStorage),
		transport.AdminMiddleware())

	group.GET("", c.list)
	group.POST("", c.create)
	group.GET("/invites", c.listInvites)
	group.POST("/invites", c.createInvites)
	group.DELETE("/invites/:code", c.deleteInvite)
	group.GET("/:id", c.get)
	group.PUT("/:id", c.update)
	group.DELETE("/:id", c.delete)
}

// list godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Success 200 {array} models.UserResponse
// @Router /api/users [get]
func (c *UserController) list(g *gin.Context) {
	users, err := c.usersStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("USER: failed to list users: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list users"})
		return
	}

	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.TransformUserFromStorage(u))
	}
	g.JSON(http.StatusOK, out)
}

func (c *UserController) get(g *gin.Context) {
	user, err := c.usersStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found"})
		return
	}
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}

// create godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.CreateUserRequest true "New user"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/users [post]
func (c *UserController) create(g *gin.Context) {
	var req models.CreateUserRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid user data"})
		return
	}

	if _, err := c.usersStorage.FindByUsername(g.Request.Context(), req.Username); err == nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "user already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create user"})
		return
	}

	user := &storage.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.usersStorage.Create(g.Request.Context(), user); err != nil {
		logging.Log.Errorf("USER: failed to create %s: %v", req.Username, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create user"})
		return
	}

	logging.Log.Infof("USER: created %s (%s)", user.Username, user.Role)
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}

// update godoc
// @Summary Update a user
// @Description Demoting the last remaining admin is refused.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body models.UpdateUserRequest true "Changed fields"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [put]
func (c *UserController) update(g *gin.Context) {
	var req models.UpdateUserRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid user data"})
		return
	}

	user, err := c.usersStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found"})
		return
	}

	if req.Role != nil && user.Role == storage.RoleAdmin && *req.Role == storage.RoleScout {
		admins, err := c.countAdmins(g)
		if err != nil {
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update user"})
			return
		}
		if admins <= 1 {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "cannot remove admin role from the last admin user"})
			return
		}
	}

	if req.Username != nil {
		if existing, err := c.usersStorage.FindByUsername(g.Request.Context(), *req.Username); err == nil && existing.ID != user.ID {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "username already taken"})
			return
		}
		user.Username = *req.Username
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update user"})
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := c.usersStorage.Update(g.Request.Context(), user); err != nil {
		logging.Log.Errorf("USER: failed to update %s: %v", user.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update user"})
		return
	}
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}

// delete godoc
// @Summary Delete a user
// @Description The last admin and the calling account cannot be deleted.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/users/{id} [delete]
func (c *UserController) delete(g *gin.Context) {
	id := g.Param("id")

	if caller := transport.CurrentUser(g); caller != nil && caller.ID == id {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "cannot delete your own account"})
		return
	}

	user, err := c.usersStorage.Get(g.Request.Context(), id)
	if err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found"})
		return
	}

	if user.Role == storage.RoleAdmin {
		admins, err := c.countAdmins(g)
		if err != nil {
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete user"})
			return
		}
		if admins <= 1 {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "cannot delete the last admin user"})
			return
		}
	}

	if err := c.usersStorage.Delete(g.Request.Context(), id); err != nil {
		logging.Log.Errorf("USER: failed to delete %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete user"})
		return
	}

	logging.Log.Infof("USER: deleted %s", user.Username)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "User deleted"})
}

// createInvites godoc
// @Summary Create one or more invite codes
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.CreateInviteRequest true "Invite request"
// @Success 200 {array} storage.Invite
// @Failure 400 {object} models.ErrorResponse
// @Router /api/users/invites [post]
func (c *UserController) createInvites(g *gin.Context) {
	var req models.CreateInviteRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Count < 1 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request, missing count"})
		return
	}
	role := req.Role
	if role == "" {
		role = storage.RoleScout
	}
	if role != storage.RoleScout && role != storage.RoleAdmin {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid role"})
		return
	}

	invites := make([]*storage.Invite, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		invite := &storage.Invite{
			Code:      c.generateInviteCode(),
			Role:      role,
			CreatedAt: time.Now().UTC(),
			Used:      false,
		}
		if err := c.invitesStorage.Put(g.Request.Context(), invite); err == nil {
			logging.Log.Infof("USER: created invite %s for role %s", invite.Code, invite.Role)
			invites = append(invites, invite)
		} else {
			logging.Log.Errorf("USER: failed to store invite: %v", err)
		}
	}

	g.JSON(http.StatusOK, invites)
}

func (c *UserController) listInvites(g *gin.Context) {
	invites, err := c.invitesStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("USER: failed to list invites: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list invites"})
		return
	}
	g.JSON(http.StatusOK, invites)
}

func (c *UserController) deleteInvite(g *gin.Context) {
	code := g.Param("code")
	if err := c.invitesStorage.Delete(g.Request.Context(), code); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "invite not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete invite"})
		return
	}
	g.JSON(http.StatusOK, gin.H{"deleted": code})
}

func (c *UserController) countAdmins(g *gin.Context) (int, error) {
	users, err := c.usersStorage.GetAll(g.Request.Context())
	if err != nil {
		return 0, err
	}
	count := 0
	for _, u := range users {
		if u.Role == storage.RoleAdmin {
			count++
		}
	}
	return count, nil
}

func (c *UserController) generateInviteCode() string {
	code, err := gonanoid.Generate(inviteAlphabet, inviteLength)
	if err != nil {
		logging.Log.Errorf("USER: failed to generate invite code: %v", err)
		return "ERROR"
	}
	return code
}
