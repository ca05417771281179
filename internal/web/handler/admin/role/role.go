// Package role provides handlers for managing roles in the admin area.
package role

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
	rolectrl "github.com/GoAccess-Admin/GoAccess-Admin/internal/db/controller/role"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/rbac"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/handler"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/handler/dashboard"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/navigation"
)

const (
	// Path is the base path for role management.
	Path = handler.RootPath + "admin/role"

	// TemplateList is the template for listing roles.
	TemplateList = "admin/role/list"
	// TemplateForm is the template for creating and editing roles.
	TemplateForm = "admin/role/form"
)

// Service provides role management in the admin area.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	rbacService *rbac.Service
	validator   *validator.Validate
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
	s.validator = validator.New()

	// Routes
	app.Get(Path,
		rbac.RequirePermission(rbacService, rbac.PermRolesView),
		s.List,
	)
	app.Get(Path+"/new",
		rbac.RequirePermission(rbacService, rbac.PermRolesCreate),
		s.New,
	)
	app.Post(Path,
		rbac.RequirePermission(rbacService, rbac.PermRolesCreate),
		s.Create,
	)
	app.Get(Path+"/:id/edit",
		rbac.RequirePermission(rbacService, rbac.PermRolesEdit),
		s.Edit,
	)
	app.Post(Path+"/:id",
		rbac.RequirePermission(rbacService, rbac.PermRolesEdit),
		s.Update,
	)
	app.Post(Path+"/:id/duplicate",
		rbac.RequirePermission(rbacService, rbac.PermRolesCreate),
		s.Duplicate,
	)
	app.Post(Path+"/:id/delete",
		rbac.RequirePermission(rbacService, rbac.PermRolesDelete),
		s.Delete,
	)
	app.Post(Path+"/bulk-delete",
		rbac.RequirePermission(rbacService, rbac.PermRolesDelete),
		s.BulkDelete,
	)
}

func listNav() *navigation.Context {
	return navigation.NewContext("Roles", "admin", "role").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Roles", Path, true)
}

func formNav(title string) *navigation.Context {
	return navigation.NewContext(title, "admin", "role").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Roles", Path, false).
		AddBreadcrumb(title, "#", true)
}

// row pairs a role with its assignment count for rendering.
type row struct {
	Role      models.Role
	UserCount int64
	CanDelete bool
}

// List shows all roles with their permissions and assignment counts.
func (s *Service) List(c *fiber.Ctx) error {
	nav := listNav()

	roles, err := rolectrl.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("query roles failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load roles",
		}, handler.BaseLayout)
	}

	rows := make([]row, 0, len(roles))
	for i := range roles {
		count, err := rolectrl.AssignedUserCount(s.db, roles[i].ID)
		if err != nil {
			log.Error().Err(err).Uint("role_id", roles[i].ID).Msg("count role assignments failed")

			return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
				"Navigation": nav,
				"Error":      "Failed to load roles",
			}, handler.BaseLayout)
		}

		rows = append(rows, row{
			Role:      roles[i],
			UserCount: count,
			CanDelete: !roles[i].IsSystem && count == 0,
		})
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Rows":       rows,
		"Notice":     c.Query("notice", ""),
	}, handler.BaseLayout)
}

// New shows the role creation form.
func (s *Service) New(c *fiber.Ctx) error {
	return c.Render(TemplateForm, fiber.Map{
		"Navigation":     formNav("New Role"),
		"AllPermissions": rbac.AllPermissions(),
	}, handler.BaseLayout)
}

type roleForm struct {
	Name        string   `form:"name" validate:"required,max=64"`
	Description string   `form:"description" validate:"max=255"`
	Permissions []string `form:"permissions"`
}

// Create stores a new role with its permission set.
func (s *Service) Create(c *fiber.Ctx) error {
	var in roleForm

	if err := c.BodyParser(&in); err != nil {
		return s.formError(c, "New Role", fiber.StatusBadRequest, "Invalid form data")
	}

	in.Name = strings.TrimSpace(in.Name)

	if err := s.validator.Struct(in); err != nil {
		return s.formError(c, "New Role", fiber.StatusBadRequest, "Please provide a role name")
	}

	if _, err := rolectrl.Create(s.db, in.Name, in.Description, in.Permissions); err != nil {
		status := fiber.StatusBadRequest
		msg := err.Error()

		switch {
		case errors.Is(err, rolectrl.ErrNameTaken),
			errors.Is(err, rolectrl.ErrNameEmpty),
			errors.Is(err, rbac.ErrUnknownPermission):
		default:
			log.Error().Err(err).Msg("create role failed")

			status = fiber.StatusInternalServerError
			msg = "Failed to create role"
		}

		return s.formError(c, "New Role", status, msg)
	}

	return c.Redirect(Path + "?notice=" + "Role created")
}

// Edit shows the role edit form with its current permissions checked.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	role, err := rolectrl.GetByID(s.db, uint(id))
	if err != nil {
		if errors.Is(err, rbac.ErrRoleNotFound) {
			return c.Redirect(Path)
		}

		log.Error().Err(err).Msg("load role failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	granted := make(map[string]bool, len(role.Permissions))
	for _, p := range role.Permissions {
		granted[p.Name] = true
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation":     formNav("Edit Role"),
		"Role":           role,
		"AllPermissions": rbac.AllPermissions(),
		"Granted":        granted,
	}, handler.BaseLayout)
}

// Update renames a role and replaces its permission set. Renaming a system
// role is refused, but its permissions may still be adjusted.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	var in roleForm

	if err := c.BodyParser(&in); err != nil {
		return s.formError(c, "Edit Role", fiber.StatusBadRequest, "Invalid form data")
	}

	in.Name = strings.TrimSpace(in.Name)

	if err := s.validator.Struct(in); err != nil {
		return s.formError(c, "Edit Role", fiber.StatusBadRequest, "Please provide a role name")
	}

	if _, err := rolectrl.Update(s.db, uint(id), in.Name, in.Description, in.Permissions); err != nil {
		status := fiber.StatusBadRequest
		msg := err.Error()

		switch {
		case errors.Is(err, rbac.ErrRoleNotFound):
			return c.Redirect(Path)
		case errors.Is(err, rbac.ErrSystemRole),
			errors.Is(err, rolectrl.ErrNameTaken),
			errors.Is(err, rolectrl.ErrNameEmpty),
			errors.Is(err, rbac.ErrUnknownPermission):
		default:
			log.Error().Err(err).Uint64("role_id", id).Msg("update role failed")

			status = fiber.StatusInternalServerError
			msg = "Failed to update role"
		}

		return s.formError(c, "Edit Role", status, msg)
	}

	return c.Redirect(Path + "?notice=" + "Role updated")
}

// Duplicate creates a copy of a role with the same permission set and a
// derived name.
func (s *Service) Duplicate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	copied, err := rolectrl.Duplicate(s.db, uint(id))
	if err != nil {
		if errors.Is(err, rbac.ErrRoleNotFound) {
			return c.Redirect(Path)
		}

		log.Error().Err(err).Uint64("role_id", id).Msg("duplicate role failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	return c.Redirect(Path + "?notice=" + "Role duplicated as " + copied.Name)
}

// Delete removes a single role unless it is a system role or still assigned.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	if err := rolectrl.Delete(s.db, uint(id)); err != nil {
		switch {
		case errors.Is(err, rbac.ErrRoleNotFound):
			return c.Redirect(Path)
		case errors.Is(err, rbac.ErrSystemRole), errors.Is(err, rolectrl.ErrRoleAssigned):
			return c.Redirect(Path + "?notice=" + err.Error())
		default:
			log.Error().Err(err).Uint64("role_id", id).Msg("delete role failed")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}
	}

	return c.Redirect(Path + "?notice=" + "Role deleted")
}

// BulkDelete removes every eligible role in the selection and reports what
// was skipped.
func (s *Service) BulkDelete(c *fiber.Ctx) error {
	var in struct {
		IDs []string `form:"ids"`
	}

	if err := c.BodyParser(&in); err != nil || len(in.IDs) == 0 {
		return c.Redirect(Path)
	}

	ids := make([]uint, 0, len(in.IDs))
	for _, raw := range in.IDs {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			continue
		}

		ids = append(ids, uint(id))
	}

	result, err := rolectrl.BulkDelete(s.db, ids)
	if err != nil {
		log.Error().Err(err).Msg("bulk delete roles failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	notice := strconv.Itoa(result.Deleted) + " role(s) deleted"
	if result.Skipped > 0 {
		notice += ", " + strconv.Itoa(result.Skipped) + " skipped"
	}

	return c.Redirect(Path + "?notice=" + notice)
}

func (s *Service) formError(c *fiber.Ctx, title string, status int, msg string) error {
	return c.Status(status).Render(TemplateForm, fiber.Map{
		"Navigation":     formNav(title),
		"AllPermissions": rbac.AllPermissions(),
		"Error":          msg,
	}, handler.BaseLayout)
}
