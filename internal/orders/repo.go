package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their lookups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
	SalesBySeller(ctx context.Context) ([]SellerSales, error)
	FindStatusByName(ctx context.Context, name string) (*models.OrderStatus, error)
	UpdateStatus(ctx context.Context, orderID, statusID uuid.UUID) error
	SetReceipt(ctx context.Context, orderID uuid.UUID, ref string) error
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.LoyaltyProfile, error)
	FindNeighborhood(ctx context.Context, id uuid.UUID) (*models.Neighborhood, error)
	FindShippingMethod(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Status").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Order("id ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns newest-first orders and the cursor of the next page.
func (r *repository) ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Status").
		Preload("Lines")
	if filters.BuyerUserID != nil {
		query = query.Where("orders.buyer_user_id = ?", *filters.BuyerUserID)
	}
	if filters.SellerUserID != nil {
		query = query.Where("orders.seller_user_id = ?", *filters.SellerUserID)
	}
	if filters.Status != "" {
		query = query.Joins("JOIN order_statuses os ON os.id = orders.status_id").Where("os.name = ?", filters.Status)
	}
	if cursor != nil {
		clause, args := cursor.After("orders")
		query = query.Where(clause, args...)
	}

	var rows []models.Order
	if err := query.
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	rows, next := pagination.Page(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return rows, next, nil
}

// SalesBySeller groups staff-registered orders by seller, highest revenue first.
func (r *repository) SalesBySeller(ctx context.Context) ([]SellerSales, error) {
	var rows []SellerSales
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.seller_user_id AS seller_user_id, users.email AS seller_email, " +
			"COUNT(orders.id) AS order_count, COALESCE(SUM(orders.total_price), 0) AS revenue").
		Joins("JOIN users ON users.id = orders.seller_user_id").
		Group("orders.seller_user_id, users.email").
		Order("revenue DESC").
		Order("orders.seller_user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindStatusByName(ctx context.Context, name string) (*models.OrderStatus, error) {
	var status models.OrderStatus
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID, statusID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status_id", statusID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SetReceipt(ctx context.Context, orderID uuid.UUID, ref string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("receipt_ref", ref)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.LoyaltyProfile, error) {
	var profile models.LoyaltyProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindNeighborhood(ctx context.Context, id uuid.UUID) (*models.Neighborhood, error) {
	var n models.Neighborhood
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repository) FindShippingMethod(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error) {
	var m models.ShippingMethod
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
