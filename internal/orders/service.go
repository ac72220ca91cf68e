package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/internal/loyalty"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type priceResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) (map[uuid.UUID]pricing.Quote, error)
}

type stockLedger interface {
	LockAndFetch(ctx context.Context, tx *gorm.DB, variantIDs []uuid.UUID) (map[uuid.UUID]models.Variant, error)
	Decrement(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error
}

type pointsAccruer interface {
	Accrue(ctx context.Context, tx *gorm.DB, input loyalty.AccrualInput) (loyalty.AccrualResult, error)
}

type buyerRegistrar interface {
	RegisterTx(ctx context.Context, tx *gorm.DB, input users.RegistrationInput) (*users.Registration, error)
}

// CartCheckout reads and clears a buyer's cart on the order transaction.
type CartCheckout interface {
	CheckoutLines(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]models.CartLine, error)
	ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type orderMetrics interface {
	ObservePlaced(buyerKind string, points int, duration time.Duration)
	ObserveRejected(code string)
	IncStockShortfall()
}

// Service places orders and exposes order reads and staff updates.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	GetReceipt(ctx context.Context, actor Actor, orderID uuid.UUID) (string, error)
	ListMine(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListSold(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error)
	SalesBySeller(ctx context.Context) ([]SellerSales, error)
	UpdateOrder(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	SetReceipt(ctx context.Context, orderID uuid.UUID, ref string) error
}

// ServiceParams groups the order service dependencies.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Pricing priceResolver
	Ledger  stockLedger
	Loyalty pointsAccruer
	Users   buyerRegistrar
	Cart    CartCheckout
	Metrics orderMetrics
	Logger  *logger.Logger
	Config  config.OrdersConfig
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	pricing priceResolver
	ledger  stockLedger
	loyalty pointsAccruer
	users   buyerRegistrar
	cart    CartCheckout
	metrics orderMetrics
	logg    *logger.Logger
	cfg     config.OrdersConfig
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case params.Pricing == nil:
		return nil, fmt.Errorf("price resolver required")
	case params.Ledger == nil:
		return nil, fmt.Errorf("stock ledger required")
	case params.Loyalty == nil:
		return nil, fmt.Errorf("loyalty accruer required")
	case params.Users == nil:
		return nil, fmt.Errorf("buyer registrar required")
	case params.Cart == nil:
		return nil, fmt.Errorf("cart checkout required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	cfg := params.Config
	if cfg.DefaultStatus == "" {
		cfg.DefaultStatus = enums.OrderStatusPending
	}
	if cfg.GuestPlaceholder == "" {
		cfg.GuestPlaceholder = "---"
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		pricing: params.Pricing,
		ledger:  params.Ledger,
		loyalty: params.Loyalty,
		users:   params.Users,
		cart:    params.Cart,
		metrics: params.Metrics,
		logg:    params.Logger,
		cfg:     cfg,
	}, nil
}

// resolvedBuyer is the outcome of buyer identity resolution.
type resolvedBuyer struct {
	kind      enums.BuyerKind
	user      *models.User
	profile   *models.LoyaltyProfile
	guestName string
}

func (b resolvedBuyer) userID() *uuid.UUID {
	if b.user == nil {
		return nil
	}
	id := b.user.ID
	return &id
}

// pricedLine is a line request with its frozen price.
type pricedLine struct {
	variantID     uuid.UUID
	quantity      int
	unitPrice     decimal.Decimal
	subtotal      decimal.Decimal
	pointsPerUnit int
}

// PlaceOrder runs buyer resolution, stock locking, pricing, line creation,
// loyalty accrual and event emission in one transaction.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	started := time.Now()

	var (
		placed *models.Order
		buyer  resolvedBuyer
		points int
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := db.SetLockTimeout(tx, s.cfg.LockTimeout); err != nil {
			return err
		}

		var err error
		buyer, err = s.resolveBuyer(ctx, tx, input)
		if err != nil {
			return err
		}

		requests := input.Lines
		if input.FromCart {
			requests, err = s.cartRequests(ctx, tx, buyer)
			if err != nil {
				return err
			}
		}
		if len(requests) == 0 {
			return pkgerrors.EmptyOrder()
		}
		if err := validateLines(requests); err != nil {
			return err
		}

		lines, err := s.lockAndPrice(ctx, tx, requests)
		if err != nil {
			return err
		}

		order, err := s.buildOrder(ctx, tx, input, buyer, lines)
		if err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		rows := make([]models.OrderLine, 0, len(lines))
		accrual := make([]loyalty.AccrualLine, 0, len(lines))
		for _, line := range lines {
			if err := s.ledger.Decrement(ctx, tx, line.variantID, line.quantity); err != nil {
				return err
			}
			rows = append(rows, models.OrderLine{
				OrderID:   order.ID,
				VariantID: line.variantID,
				Quantity:  line.quantity,
				UnitPrice: line.unitPrice,
				Subtotal:  line.subtotal,
			})
			accrual = append(accrual, loyalty.AccrualLine{PointsPerUnit: line.pointsPerUnit, Quantity: line.quantity})
		}
		if err := repo.CreateLines(ctx, rows); err != nil {
			return err
		}

		result, err := s.loyalty.Accrue(ctx, tx, loyalty.AccrualInput{
			OrderID:     order.ID,
			BuyerUserID: buyer.userID(),
			Lines:       accrual,
		})
		if err != nil {
			return err
		}
		if result.Applied {
			points = result.Points
		}

		if s.shouldClearCart(input, buyer) {
			if err := s.cart.ClearTx(ctx, tx, buyer.user.ID); err != nil {
				return err
			}
		}

		placed, err = repo.FindOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		return s.emitCreated(ctx, tx, input.Actor, buyer, placed)
	})
	if err != nil {
		return nil, s.rejected(ctx, err)
	}

	if s.metrics != nil {
		s.metrics.ObservePlaced(string(buyer.kind), points, time.Since(started))
	}
	logCtx := s.logg.WithOrderID(ctx, placed.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"buyer_kind":    string(buyer.kind),
		"line_count":    len(placed.Lines),
		"points_earned": points,
		"total_price":   placed.TotalPrice.StringFixed(2),
	})
	s.logg.Info(logCtx, "order placed")

	dto := orderFromModel(*placed)
	return &dto, nil
}

func (s *service) resolveBuyer(ctx context.Context, tx *gorm.DB, input PlaceOrderInput) (resolvedBuyer, error) {
	desc := input.Buyer
	guestName := ""
	if desc.GuestName != nil {
		guestName = strings.TrimSpace(*desc.GuestName)
	}

	paths := 0
	if desc.UserID != nil {
		paths++
	}
	if guestName != "" {
		paths++
	}
	if desc.NewUser != nil {
		paths++
	}
	if paths > 1 {
		return resolvedBuyer{}, pkgerrors.New(pkgerrors.CodeValidation, "only one buyer may be provided").
			WithDetails(map[string]string{"buyer": "set exactly one of user_id, guest_name or new_user"})
	}

	repo := s.repo.WithTx(tx)
	switch {
	case desc.NewUser != nil:
		if desc.NewUser.Profile == nil {
			return resolvedBuyer{}, pkgerrors.New(pkgerrors.CodeValidation, "a profile is required to register a new buyer").
				WithDetails(map[string]string{"buyer.new_user.profile": "is required"})
		}
		reg, err := s.users.RegisterTx(ctx, tx, desc.NewUser.registration())
		if err != nil {
			return resolvedBuyer{}, err
		}
		return resolvedBuyer{kind: enums.BuyerKindNewUser, user: reg.User, profile: reg.Profile}, nil

	case guestName != "":
		return resolvedBuyer{kind: enums.BuyerKindGuest, guestName: guestName}, nil

	case desc.UserID != nil:
		if input.Actor == nil || input.Actor.UserID == uuid.Nil {
			return resolvedBuyer{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to order for a registered buyer")
		}
		if !input.Actor.IsStaff() && *desc.UserID != input.Actor.UserID {
			return resolvedBuyer{}, pkgerrors.New(pkgerrors.CodeForbidden, "customers can only order for themselves")
		}
		return s.registeredBuyer(ctx, repo, *desc.UserID)

	case input.Actor != nil && input.Actor.UserID != uuid.Nil:
		return s.registeredBuyer(ctx, repo, input.Actor.UserID)
	}
	return resolvedBuyer{}, pkgerrors.BuyerRequired()
}

func (s *service) registeredBuyer(ctx context.Context, repo Repository, userID uuid.UUID) (resolvedBuyer, error) {
	user, err := repo.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resolvedBuyer{}, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return resolvedBuyer{}, err
	}
	if !user.IsActive {
		return resolvedBuyer{}, pkgerrors.New(pkgerrors.CodeValidation, "buyer account is inactive").
			WithDetails(map[string]string{"buyer.user_id": "account is inactive"})
	}
	buyer := resolvedBuyer{kind: enums.BuyerKindRegistered, user: user}
	profile, err := repo.FindProfileByUserID(ctx, userID)
	switch {
	case err == nil:
		buyer.profile = profile
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return resolvedBuyer{}, err
	}
	return buyer, nil
}

func (s *service) cartRequests(ctx context.Context, tx *gorm.DB, buyer resolvedBuyer) ([]LineRequest, error) {
	if buyer.user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout from cart requires a registered buyer").
			WithDetails(map[string]string{"from_cart": "requires a registered buyer"})
	}
	cartLines, err := s.cart.CheckoutLines(ctx, tx, buyer.user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]LineRequest, 0, len(cartLines))
	for _, line := range cartLines {
		out = append(out, LineRequest{VariantID: line.VariantID, Quantity: line.Quantity})
	}
	return out, nil
}

func validateLines(lines []LineRequest) error {
	fields := map[string]string{}
	for i, line := range lines {
		key := fmt.Sprintf("lines[%d]", i)
		if line.VariantID == uuid.Nil {
			fields[key+".variant_id"] = "is required"
		}
		if line.Quantity <= 0 {
			fields[key+".quantity"] = "must be greater than zero"
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			fields[key+".unit_price"] = "must not be negative"
		}
		if line.Subtotal != nil && line.Subtotal.IsNegative() {
			fields[key+".subtotal"] = "must not be negative"
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid order lines").WithDetails(fields)
}

// lockAndPrice locks every variant once, checks aggregated quantities against
// stock, and freezes each line's price.
func (s *service) lockAndPrice(ctx context.Context, tx *gorm.DB, requests []LineRequest) ([]pricedLine, error) {
	variantIDs := make([]uuid.UUID, 0, len(requests))
	requested := make(map[uuid.UUID]int, len(requests))
	for _, req := range requests {
		if _, seen := requested[req.VariantID]; !seen {
			variantIDs = append(variantIDs, req.VariantID)
		}
		requested[req.VariantID] += req.Quantity
	}

	variants, err := s.ledger.LockAndFetch(ctx, tx, variantIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range variantIDs {
		if err := inventory.CheckStock(variants[id], requested[id]); err != nil {
			return nil, err
		}
	}

	itemIDs := make([]uuid.UUID, 0, len(variants))
	for _, id := range variantIDs {
		itemIDs = append(itemIDs, variants[id].CatalogItemID)
	}
	quotes, err := s.pricing.Resolve(ctx, tx, itemIDs)
	if err != nil {
		return nil, err
	}

	out := make([]pricedLine, 0, len(requests))
	for i, req := range requests {
		quote := quotes[variants[req.VariantID].CatalogItemID]
		unit, subtotal, err := linePrice(req, quote.Price)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid line price").
				WithDetails(map[string]string{fmt.Sprintf("lines[%d]", i): err.Error()})
		}
		out = append(out, pricedLine{
			variantID:     req.VariantID,
			quantity:      req.Quantity,
			unitPrice:     unit,
			subtotal:      subtotal,
			pointsPerUnit: quote.PointsPerUnit,
		})
	}
	return out, nil
}

// linePrice applies caller-supplied prices first and falls back to the resolved price.
func linePrice(req LineRequest, resolved decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	qty := decimal.NewFromInt(int64(req.Quantity))
	switch {
	case req.UnitPrice != nil:
		unit := req.UnitPrice.Round(2)
		subtotal := unit.Mul(qty)
		if req.Subtotal != nil && !req.Subtotal.Round(2).Equal(subtotal) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("subtotal must equal unit_price times quantity")
		}
		return unit, subtotal, nil
	case req.Subtotal != nil:
		subtotal := req.Subtotal.Round(2)
		unit := subtotal.Div(qty).Round(2)
		if !unit.Mul(qty).Equal(subtotal) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("subtotal is not divisible by quantity")
		}
		return unit, subtotal, nil
	}
	return resolved, resolved.Mul(qty), nil
}

func (s *service) buildOrder(ctx context.Context, tx *gorm.DB, input PlaceOrderInput, buyer resolvedBuyer, lines []pricedLine) (*models.Order, error) {
	repo := s.repo.WithTx(tx)

	status, err := repo.FindStatusByName(ctx, s.cfg.DefaultStatus)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("order status %q is not seeded", s.cfg.DefaultStatus))
		}
		return nil, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.subtotal)
	}

	delivery := input.Delivery
	if delivery.NeighborhoodID != nil {
		n, err := repo.FindNeighborhood(ctx, *delivery.NeighborhoodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "neighborhood not found")
			}
			return nil, err
		}
		total = total.Add(n.DeliveryPrice)
	}
	if delivery.ShippingMethodID != nil {
		if _, err := repo.FindShippingMethod(ctx, *delivery.ShippingMethodID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping method not found")
			}
			return nil, err
		}
	}

	address := trimmedOrNil(delivery.Address)
	if address == nil && buyer.profile != nil {
		address = trimmedOrNil(buyer.profile.Address)
	}

	order := &models.Order{
		BuyerUserID:      buyer.userID(),
		TotalPrice:       total.Round(2),
		NeighborhoodID:   delivery.NeighborhoodID,
		ShippingMethodID: delivery.ShippingMethodID,
		Address:          address,
		DeliveryDate:     delivery.DeliveryDate,
		DeliveryWindow:   trimmedOrNil(delivery.DeliveryWindow),
		StatusID:         status.ID,
	}
	if buyer.user != nil {
		placeholder := s.cfg.GuestPlaceholder
		order.GuestName = &placeholder
	} else {
		name := buyer.guestName
		order.GuestName = &name
	}
	if input.Actor.IsStaff() {
		seller := input.Actor.UserID
		order.SellerUserID = &seller
	}
	return order, nil
}

func (s *service) shouldClearCart(input PlaceOrderInput, buyer resolvedBuyer) bool {
	if buyer.user == nil || buyer.kind == enums.BuyerKindNewUser {
		return false
	}
	if input.ClearCart != nil {
		return *input.ClearCart
	}
	return s.cfg.ClearCartOnCheckout
}

func (s *service) emitCreated(ctx context.Context, tx *gorm.DB, actor *Actor, buyer resolvedBuyer, order *models.Order) error {
	event := payloads.OrderCreatedEvent{
		OrderID:      order.ID,
		BuyerUserID:  order.BuyerUserID,
		GuestName:    order.GuestName,
		SellerUserID: order.SellerUserID,
		TotalPrice:   order.TotalPrice,
		PointsEarned: order.PointsEarned,
		Status:       order.Status.Name,
		Lines:        make([]payloads.OrderLineSnapshot, 0, len(order.Lines)),
		CreatedAt:    order.CreatedAt,
	}
	if buyer.user != nil {
		event.BuyerEmail = buyer.user.Email
	}
	for _, line := range order.Lines {
		event.Lines = append(event.Lines, payloads.OrderLineSnapshot{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(actor),
		Data:          event,
	})
}

// rejected maps storage failures onto the domain taxonomy and records the rejection.
func (s *service) rejected(ctx context.Context, err error) error {
	if pgCode, ok := db.IsLockContention(err); ok {
		err = pkgerrors.Concurrency(err, pgCode)
	} else if pkgerrors.As(err) == nil {
		err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "place order")
	}

	typed := pkgerrors.As(err)
	if s.metrics != nil {
		s.metrics.ObserveRejected(string(typed.Code()))
		if typed.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncStockShortfall()
		}
	}

	ctx = s.logg.WithField(ctx, "error_code", string(typed.Code()))
	if typed.Code().Meta().ServerSide() {
		s.logg.Error(ctx, "order placement failed", err)
	} else {
		s.logg.Warn(ctx, "order rejected")
	}
	return err
}

func (s *service) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadVisible(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	dto := orderFromModel(*order)
	return &dto, nil
}

func (s *service) GetReceipt(ctx context.Context, actor Actor, orderID uuid.UUID) (string, error) {
	order, err := s.loadVisible(ctx, actor, orderID)
	if err != nil {
		return "", err
	}
	if order.ReceiptRef == nil || strings.TrimSpace(*order.ReceiptRef) == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "receipt not generated yet")
	}
	return *order.ReceiptRef, nil
}

func (s *service) loadVisible(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if actor.IsStaff() {
		return order, nil
	}
	if order.BuyerUserID == nil || *order.BuyerUserID != actor.UserID {
		// other buyers' orders are reported as missing
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListMine(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID := actor.UserID
	return s.list(ctx, params, ListFilters{BuyerUserID: &userID})
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return s.list(ctx, params, filters)
}

// ListSold pages through the orders the staff caller registered as seller.
func (s *service) ListSold(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff register sales")
	}
	sellerID := actor.UserID
	return s.list(ctx, params, ListFilters{SellerUserID: &sellerID})
}

func (s *service) SalesBySeller(ctx context.Context) ([]SellerSales, error) {
	rows, err := s.repo.SalesBySeller(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize sales by seller")
	}
	if rows == nil {
		rows = []SellerSales{}
	}
	return rows, nil
}

func (s *service) list(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	rows, next, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := &OrderList{Orders: make([]OrderDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		out.Orders = append(out.Orders, orderFromModel(row))
	}
	return out, nil
}

// UpdateOrder changes status and/or receipt; a status change emits order_status_changed.
// Cancelling an order does not restore stock or points.
func (s *service) UpdateOrder(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if input.Status == nil && input.ReceiptRef == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update").
			WithDetails(map[string]string{"status": "status or receipt_ref is required"})
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}

		previous := current.Status.Name
		if input.Status != nil && strings.TrimSpace(*input.Status) != previous {
			status, err := repo.FindStatusByName(ctx, strings.TrimSpace(*input.Status))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
						WithDetails(map[string]string{"status": "unknown status"})
				}
				return err
			}
			if err := repo.UpdateStatus(ctx, orderID, status.ID); err != nil {
				return err
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   orderID,
				Actor:         actorRef(&actor),
				Data: payloads.OrderStatusChangedEvent{
					OrderID:        orderID,
					BuyerUserID:    current.BuyerUserID,
					PreviousStatus: previous,
					Status:         status.Name,
					ChangedBy:      actor.UserID,
					ChangedAt:      time.Now().UTC(),
				},
			}); err != nil {
				return err
			}
		}
		if input.ReceiptRef != nil {
			if err := repo.SetReceipt(ctx, orderID, strings.TrimSpace(*input.ReceiptRef)); err != nil {
				return err
			}
		}

		updated, err = repo.FindOrder(ctx, orderID)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(ctx, "order updated")
	dto := orderFromModel(*updated)
	return &dto, nil
}

// SetReceipt stores the generated receipt reference; used by the receipt worker.
func (s *service) SetReceipt(ctx context.Context, orderID uuid.UUID, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "receipt reference is required")
	}
	if err := s.repo.SetReceipt(ctx, orderID, ref); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store receipt reference")
	}
	return nil
}

func actorRef(actor *Actor) *outbox.ActorRef {
	if actor == nil || actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
