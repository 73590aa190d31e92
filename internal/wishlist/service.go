package wishlist

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
	"github.com/mariepujol/vinsisters-backend/pkg/pagination"
)

// TxRunner executes a function inside one storage transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// WishPage is one page of a wishlist's entries plus the cursor for the next
// one.
type WishPage struct {
	Wishes     []models.WineVintageWish
	NextCursor string
}

// Service exposes the wishlist contract. Adding a vintage twice is a no-op;
// removing one that is not on the list is a not-found.
type Service interface {
	CreateWishlist(ctx context.Context, userID uuid.UUID, name string) (*models.Wishlist, error)
	ListWishlists(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error)
	DeleteWishlist(ctx context.Context, userID, wishlistID uuid.UUID) error

	AddWish(ctx context.Context, userID, wishlistID, wineVintageID uuid.UUID) error
	RemoveWish(ctx context.Context, userID, wishlistID, wineVintageID uuid.UUID) error
	ListWishes(ctx context.Context, userID, wishlistID uuid.UUID, cursor string, limit int) (*WishPage, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo *Repository
	Tx   TxRunner
}

type service struct {
	repo *Repository
	tx   TxRunner
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

func (s *service) CreateWishlist(ctx context.Context, userID uuid.UUID, name string) (*models.Wishlist, error) {
	name = strings.TrimSpace(name)
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist name is required")
	}

	row := &models.Wishlist{UserID: userID, Name: name}
	if err := s.repo.CreateWishlist(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "wishlist name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wishlist")
	}
	return row, nil
}

func (s *service) ListWishlists(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListWishlists(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlists")
	}
	return rows, nil
}

func (s *service) DeleteWishlist(ctx context.Context, userID, wishlistID uuid.UUID) error {
	if userID == uuid.Nil || wishlistID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and wishlist id are required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.checkOwnership(ctx, repo, userID, wishlistID); err != nil {
			return err
		}
		if err := repo.DeleteWishlistWishes(ctx, wishlistID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete wishes")
		}
		if err := repo.DeleteWishlist(ctx, wishlistID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete wishlist")
		}
		return nil
	})
}

// AddWish puts a vintage on the list. Wishing for it again changes nothing.
func (s *service) AddWish(ctx context.Context, userID, wishlistID, wineVintageID uuid.UUID) error {
	if userID == uuid.Nil || wishlistID == uuid.Nil || wineVintageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user, wishlist and vintage ids are required")
	}
	if err := s.checkOwnership(ctx, s.repo, userID, wishlistID); err != nil {
		return err
	}

	exists, err := s.repo.VintageExists(ctx, wineVintageID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vintage")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wine vintage not found")
	}

	row := &models.WineVintageWish{WishlistID: wishlistID, WineVintageID: wineVintageID}
	if err := s.repo.AddWish(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wish")
	}
	return nil
}

func (s *service) RemoveWish(ctx context.Context, userID, wishlistID, wineVintageID uuid.UUID) error {
	if userID == uuid.Nil || wishlistID == uuid.Nil || wineVintageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user, wishlist and vintage ids are required")
	}
	if err := s.checkOwnership(ctx, s.repo, userID, wishlistID); err != nil {
		return err
	}

	affected, err := s.repo.RemoveWish(ctx, wishlistID, wineVintageID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wish")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wish not found")
	}
	return nil
}

func (s *service) ListWishes(ctx context.Context, userID, wishlistID uuid.UUID, cursor string, limit int) (*WishPage, error) {
	if userID == uuid.Nil || wishlistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and wishlist id are required")
	}
	if err := s.checkOwnership(ctx, s.repo, userID, wishlistID); err != nil {
		return nil, err
	}
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	pageSize := pagination.NormalizeLimit(limit)
	rows, err := s.repo.ListWishes(ctx, wishlistID, parsed, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishes")
	}

	page := &WishPage{Wishes: rows}
	if len(rows) > pageSize {
		page.Wishes = rows[:pageSize]
		last := page.Wishes[pageSize-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) checkOwnership(ctx context.Context, repo *Repository, userID, wishlistID uuid.UUID) error {
	wishlist, err := repo.GetWishlist(ctx, wishlistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "wishlist not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	if wishlist.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "wishlist belongs to another user")
	}
	return nil
}
