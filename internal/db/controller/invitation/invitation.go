// Package invitation implements the invitation lifecycle: creation, resend,
// redemption, deletion, and expired-invitation sweeps.
//
// An invitation is in exactly one of three states at any instant, derived
// from its stored timestamps:
//
//	Pending:    registered_at IS NULL AND now < expires_at
//	Expired:    registered_at IS NULL AND now >= expires_at
//	Registered: registered_at IS NOT NULL (terminal)
package invitation

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/rbac"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/token"
)

const (
	// DefaultExpiryWindow is how long a fresh invitation stays redeemable.
	DefaultExpiryWindow = 7 * 24 * time.Hour

	// wherePending matches invitations that can still be redeemed.
	wherePending = "registered_at IS NULL AND expires_at > ?"
	// whereExpired matches invitations whose window passed without redemption.
	whereExpired = "registered_at IS NULL AND expires_at <= ?"
)

// Create creates a pending invitation for the given email, granting the named
// roles on redemption, and returns the created record.
//
// Preconditions checked inside the transaction: no user account holds the
// email, and no other invitation for the email is currently pending. Expired
// and redeemed invitations for the same email do not block re-invitation.
// The unique index on the token is the storage-level backstop; duplicate-key
// races surface as ErrEmailConflict, never as raw storage errors.
//
// Mail dispatch is the caller's concern: a failed delivery never rolls back
// the created record, the invitation stays valid and resend remains available.
func Create(db *gorm.DB, email string, roles []string, inviterID uint64, window time.Duration, tokenLen int) (*models.Invitation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if window <= 0 {
		window = DefaultExpiryWindow
	}

	if tokenLen <= 0 {
		tokenLen = token.StdLen
	}

	inv := &models.Invitation{
		Email:       email,
		Token:       token.NewLen(tokenLen),
		Roles:       roles,
		InvitedByID: inviterID,
		ExpiresAt:   time.Now().Add(window),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// Reject role names that do not exist before touching anything.
		if _, err := resolveRoles(tx, roles); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.User{}).
			Where(models.WhereEmailIs, email).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return ErrEmailConflict
		}

		if err := tx.Model(&models.Invitation{}).
			Where(models.WhereEmailIs, email).
			Where(wherePending, time.Now()).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return ErrEmailConflict
		}

		if err := tx.Create(inv).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a race on the token or a concurrent create.
				return ErrEmailConflict
			}

			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return inv, nil
}

// Resend prepares an invitation for re-dispatch and returns the updated
// record. Redeemed invitations are refused. Expired invitations are revived:
// the expiry window restarts from now. The token is rotated on every resend,
// so previously sent links stop working.
func Resend(db *gorm.DB, id uint64, window time.Duration, tokenLen int) (*models.Invitation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if window <= 0 {
		window = DefaultExpiryWindow
	}

	if tokenLen <= 0 {
		tokenLen = token.StdLen
	}

	inv, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	if inv.IsRegistered() {
		return nil, ErrInvitationRegistered
	}

	inv.Token = token.NewLen(tokenLen)
	inv.ExpiresAt = time.Now().Add(window)

	if err := db.Save(inv).Error; err != nil {
		return nil, err
	}

	return inv, nil
}

// Redeem redeems a pending invitation: it creates the user account with the
// invitation's email and roles, and marks the invitation registered, all in
// one transaction. The email always comes from the stored invitation, never
// from user input.
//
// Exactly one concurrent redemption of the same token can succeed: marking
// the invitation registered is a guarded UPDATE on the pending predicate, so
// every race loser sees zero affected rows and fails with
// ErrInvitationInvalid.
func Redeem(db *gorm.DB, tok, username, password string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user *models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invitation
		if err := tx.Where(models.WhereTokenIs, tok).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvitationInvalid
			}

			return err
		}

		now := time.Now()

		// Guarded state transition: only a still-pending row is marked.
		res := tx.Model(&models.Invitation{}).
			Where("id = ?", inv.ID).
			Where(wherePending, now).
			Update("registered_at", now)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrInvitationInvalid
		}

		// Lenient on purpose: a role deleted after the invite was sent must
		// not block redemption.
		roleIDs, err := resolveExistingRoles(tx, inv.Roles)
		if err != nil {
			return err
		}

		user = &models.User{
			Active:   true,
			Username: username,
			Email:    inv.Email,
			Password: models.HashPassword(password),
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// The email was taken between creation and redemption, or
				// the username already exists. Only the username case is
				// safe to name; the email race rolls everything back and
				// reads as an invalid invitation.
				var count int64
				if cErr := tx.Model(&models.User{}).
					Where("username = ?", username).
					Count(&count).Error; cErr == nil && count > 0 {
					return ErrUsernameTaken
				}

				return ErrInvitationInvalid
			}

			return err
		}

		for _, roleID := range roleIDs {
			if err := tx.Create(&models.UserRole{
				UserID: user.ID,
				RoleID: roleID,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes an invitation. Redeemed invitations are immutable history
// and are refused.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	inv, err := GetByID(db, id)
	if err != nil {
		return err
	}

	if inv.IsRegistered() {
		return ErrInvitationRegistered
	}

	return db.Delete(&models.Invitation{}, id).Error
}

// CountExpired returns how many invitations currently match the expired
// predicate. Used as the dry-run step before a sweep.
func CountExpired(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	err := db.Model(&models.Invitation{}).
		Where(whereExpired, time.Now()).
		Count(&count).Error

	return count, err
}

// SweepExpired deletes every invitation matching the expired predicate and
// returns the number of rows removed. Pending and registered invitations are
// never touched.
func SweepExpired(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	res := db.Where(whereExpired, time.Now()).Delete(&models.Invitation{})

	return res.RowsAffected, res.Error
}

// GetByID retrieves an invitation by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.Invitation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var inv models.Invitation
	if err := db.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}

		return nil, err
	}

	return &inv, nil
}

// GetPendingByToken retrieves the pending invitation carrying the given
// token. Unknown, expired, and redeemed tokens all read as
// ErrInvitationInvalid.
func GetPendingByToken(db *gorm.DB, tok string) (*models.Invitation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var inv models.Invitation
	err := db.Where(models.WhereTokenIs, tok).
		Where(wherePending, time.Now()).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationInvalid
		}

		return nil, err
	}

	return &inv, nil
}

// List retrieves a page of invitations ordered newest first, optionally
// filtered by an email search term, together with the total match count.
func List(db *gorm.DB, page, pageSize int, search string) ([]models.Invitation, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	tx := db.Model(&models.Invitation{})
	if search != "" {
		tx = tx.Where("email LIKE ?", "%"+search+"%")
	}

	var totalCount int64
	if err := tx.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var invitations []models.Invitation
	err := tx.Preload("InvitedBy").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&invitations).Error
	if err != nil {
		return nil, 0, err
	}

	return invitations, totalCount, nil
}

// resolveRoles maps role names to IDs, rejecting unknown names.
func resolveRoles(tx *gorm.DB, names []string) ([]uint, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var roles []models.Role
	if err := tx.Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, err
	}

	if len(roles) != len(names) {
		return nil, rbac.ErrUnknownRole
	}

	ids := make([]uint, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}

	return ids, nil
}

// resolveExistingRoles maps role names to IDs, silently skipping names whose
// role no longer exists. Roles can be deleted while an invitation is in
// flight; the stale name must not make the invitation unredeemable.
func resolveExistingRoles(tx *gorm.DB, names []string) ([]uint, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var roles []models.Role
	if err := tx.Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}

	if skipped := len(names) - len(roles); skipped > 0 {
		log.Warn().Int("skipped", skipped).Strs("roles", names).
			Msg("invitation names roles that no longer exist")
	}

	return ids, nil
}
