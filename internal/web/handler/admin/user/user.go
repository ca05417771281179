// Package user provides handlers for managing users in the admin area.
package user

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
	rolectrl "github.com/GoAccess-Admin/GoAccess-Admin/internal/db/controller/role"
	userctrl "github.com/GoAccess-Admin/GoAccess-Admin/internal/db/controller/user"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/rbac"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/handler"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/handler/dashboard"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/navigation"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/user"

	// TemplateList is the template for listing users.
	TemplateList = "admin/user/list"
	// TemplateForm is the template for editing a user's roles and permissions.
	TemplateForm = "admin/user/form"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Service provides user management in the admin area.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	rbacService *rbac.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, rbacService *rbac.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.rbacService = rbacService

	// Routes
	app.Get(Path,
		rbac.RequirePermission(rbacService, rbac.PermUsersView),
		s.List,
	)
	app.Get(Path+"/:id/edit",
		rbac.RequirePermission(rbacService, rbac.PermUserRolesEdit),
		s.Edit,
	)
	app.Post(Path+"/:id",
		rbac.RequirePermission(rbacService, rbac.PermUserRolesEdit),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		rbac.RequirePermission(rbacService, rbac.PermUsersDelete),
		s.Delete,
	)
	app.Post(Path+"/bulk-delete",
		rbac.RequirePermission(rbacService, rbac.PermUsersDelete),
		s.BulkDelete,
	)
}

func listNav() *navigation.Context {
	return navigation.NewContext("Users", "admin", "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Users", Path, true)
}

func editNav() *navigation.Context {
	return navigation.NewContext("Edit User", "admin", "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb("Edit", "#", true)
}

// row pairs a user with what the current actor may do to them.
type row struct {
	User      models.User
	CanEdit   bool
	CanDelete bool
}

// List shows users with their roles, pagination, and search.
func (s *Service) List(c *fiber.Ctx) error {
	nav := listNav()

	actor, ok := rbac.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	users, totalCount, err := userctrl.List(s.db, page, pageSize, search)
	if err != nil {
		log.Error().Err(err).Msg("query users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load users",
			"Search":     search,
		}, handler.BaseLayout)
	}

	rows := make([]row, 0, len(users))
	for i := range users {
		rows = append(rows, row{
			User:      users[i],
			CanEdit:   users[i].ID != actor.ID,
			CanDelete: users[i].ID != actor.ID,
		})
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Rows":       rows,
		"Notice":     c.Query("notice", ""),
		"Search":     search,
		"Page":       page,
		"PageSize":   pageSize,
		"TotalItems": totalCount,
		"TotalPages": totalPages,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
	}, handler.BaseLayout)
}

// Edit shows the role and permission assignment form for a user. Actors may
// not edit their own assignments.
func (s *Service) Edit(c *fiber.Ctx) error {
	actor, ok := rbac.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	allowed, err := s.rbacService.CanEditRolesAndPermissions(actor.ID, id)
	if err != nil || !allowed {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden")
	}

	target, err := userctrl.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, rbac.ErrUserNotFound) {
			return c.Redirect(Path)
		}

		log.Error().Err(err).Msg("load user failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	roles, err := rolectrl.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	assignedRoles := make(map[string]bool, len(target.Roles))
	for _, r := range target.Roles {
		assignedRoles[r.Name] = true
	}

	assignedPerms := make(map[string]bool, len(target.Permissions))
	for _, p := range target.Permissions {
		assignedPerms[p.Name] = true
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation":     editNav(),
		"User":           target,
		"AllRoles":       roles,
		"AllPermissions": rbac.AllPermissions(),
		"AssignedRoles":  assignedRoles,
		"AssignedPerms":  assignedPerms,
	}, handler.BaseLayout)
}

// Update replaces a user's role and direct permission assignments.
func (s *Service) Update(c *fiber.Ctx) error {
	actor, ok := rbac.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	allowed, err := s.rbacService.CanEditRolesAndPermissions(actor.ID, id)
	if err != nil || !allowed {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden")
	}

	var in struct {
		Roles       []string `form:"roles"`
		Permissions []string `form:"permissions"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if err := userctrl.SyncRolesAndPermissions(s.db, id, in.Roles, in.Permissions); err != nil {
		switch {
		case errors.Is(err, rbac.ErrUserNotFound):
			return c.Redirect(Path)
		case errors.Is(err, rbac.ErrUnknownRole), errors.Is(err, rbac.ErrUnknownPermission):
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		default:
			log.Error().Err(err).Uint64("user_id", id).Msg("sync user assignments failed")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}
	}

	return c.Redirect(Path + "?notice=" + "User assignments updated")
}

// Delete removes a user. Self-deletion is refused.
func (s *Service) Delete(c *fiber.Ctx) error {
	actor, ok := rbac.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	if err := userctrl.Delete(s.db, actor.ID, id); err != nil {
		switch {
		case errors.Is(err, rbac.ErrUserNotFound):
			return c.Redirect(Path)
		case errors.Is(err, userctrl.ErrSelfDelete):
			return c.Redirect(Path + "?notice=" + err.Error())
		default:
			log.Error().Err(err).Uint64("user_id", id).Msg("delete user failed")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}
	}

	return c.Redirect(Path + "?notice=" + "User deleted")
}

// BulkDelete removes every selected user except the actor themselves.
func (s *Service) BulkDelete(c *fiber.Ctx) error {
	actor, ok := rbac.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	var in struct {
		IDs []string `form:"ids"`
	}

	if err := c.BodyParser(&in); err != nil || len(in.IDs) == 0 {
		return c.Redirect(Path)
	}

	ids := make([]uint64, 0, len(in.IDs))
	for _, raw := range in.IDs {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			continue
		}

		ids = append(ids, id)
	}

	result, err := userctrl.BulkDelete(s.db, actor.ID, ids)
	if err != nil {
		log.Error().Err(err).Msg("bulk delete users failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	notice := strconv.Itoa(result.Deleted) + " user(s) deleted"
	if result.Skipped > 0 {
		notice += ", " + strconv.Itoa(result.Skipped) + " skipped"
	}

	return c.Redirect(Path + "?notice=" + notice)
}
