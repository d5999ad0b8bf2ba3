package usecase

import (
	"context"
	"errors"
	"strings"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/repository"
	"telegram-loyalty-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes customer-profile operations used by every flow.
type UserUseCase interface {
	// RegisterOrFetch returns the profile for tgID, creating it on first
	// contact. The second return value reports whether a new profile was
	// created.
	RegisterOrFetch(ctx context.Context, tgID int64, username, firstName, lastName string) (*model.UserProfile, bool, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.UserProfile, error)
	// FindByUsername matches the stored username with or without a leading @.
	FindByUsername(ctx context.Context, username string) (*model.UserProfile, error)
	List(ctx context.Context) ([]*model.UserProfile, error)
	Count(ctx context.Context) (int, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{
		users: users,
		tm:    tm,
		log:   logger,
	}
}

func (u *userUC) RegisterOrFetch(ctx context.Context, tgID int64, username, firstName, lastName string) (*model.UserProfile, bool, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterOrFetch")()

	var (
		user    *model.UserProfile
		created bool
	)
	// The read (find) and write (save) must be a single atomic operation so
	// two concurrent first contacts cannot create duplicate profiles.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err == nil {
			// Keep the stored identity fresh: usernames change and the
			// barista lookup depends on them.
			dirty := false
			if username != "" && usr.Username != username {
				usr.Username = username
				dirty = true
			}
			if firstName != "" && usr.FirstName != firstName {
				usr.FirstName = firstName
				dirty = true
			}
			if lastName != usr.LastName {
				usr.LastName = lastName
				dirty = true
			}
			if dirty {
				if err := u.users.Save(ctx, tx, usr); err != nil {
					u.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to refresh user identity")
					return err
				}
			}
			user = usr
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		nu, err := model.NewUserProfile(tgID, username, firstName, lastName)
		if err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		user = nu
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		u.log.Info().Int64("tg_id", tgID).Str("username", username).Msg("new customer registered")
	}
	return user, created, nil
}

func (u *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.UserProfile, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetByTelegramID")()
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (u *userUC) FindByUsername(ctx context.Context, username string) (*model.UserProfile, error) {
	defer logging.TraceDuration(u.log, "UserUC.FindByUsername")()
	return u.users.FindByUsernameExact(ctx, repository.NoTX, NormalizeUsername(username))
}

func (u *userUC) List(ctx context.Context) ([]*model.UserProfile, error) {
	defer logging.TraceDuration(u.log, "UserUC.List")()
	return u.users.List(ctx, repository.NoTX)
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.Count")()
	return u.users.CountUsers(ctx, repository.NoTX)
}

// NormalizeUsername strips whitespace and a leading @ so user input and
// stored usernames compare equal.
func NormalizeUsername(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
