// Package market es el contenedor de estado de la aplicación: usuarios,
// productos, carrito, órdenes y la sesión actual.
//
// Se construye una sola vez por proceso con New y se inyecta en quien lo
// necesite. Todas las operaciones se serializan con un único mutex, así que
// checkout y alta de productos son atómicos respecto del resto.
package market

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"ecobazaarx/internal/events"
	"ecobazaarx/internal/models"
	"ecobazaarx/internal/repository"
)

// CheckoutPolicy decide qué pasa cuando no hay usuario en sesión
type CheckoutPolicy string

const (
	// PolicyGuest compra como "Guest"
	PolicyGuest CheckoutPolicy = "guest"
	// PolicyStrict exige sesión iniciada
	PolicyStrict CheckoutPolicy = "strict"
)

// DefaultActor firma las acciones de moderación sin admin en sesión
const DefaultActor = "AdminUser"

// State es el dueño único del estado del marketplace
type State struct {
	mu sync.Mutex

	users    []models.User
	emails   map[string]int64
	products []models.Product
	orders   []models.Order
	cart     []models.CartLine
	session  int64
	seq      models.Sequences

	persister  repository.Persister
	publisher  events.Publisher
	logger     *slog.Logger
	validate   *validator.Validate
	now        func() time.Time
	policy     CheckoutPolicy
	bcryptCost int
}

// Option configura el State
type Option func(*State)

// WithPersister define dónde se guardan los snapshots
func WithPersister(p repository.Persister) Option {
	return func(s *State) {
		if p != nil {
			s.persister = p
		}
	}
}

// WithPublisher define el destino de los eventos de dominio
func WithPublisher(p events.Publisher) Option {
	return func(s *State) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger reemplaza el logger por defecto
func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock reemplaza time.Now
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCheckoutPolicy define la política para compras sin sesión
func WithCheckoutPolicy(p CheckoutPolicy) Option {
	return func(s *State) {
		if p == PolicyGuest || p == PolicyStrict {
			s.policy = p
		}
	}
}

// WithBcryptCost define el costo del hash de contraseñas
func WithBcryptCost(cost int) Option {
	return func(s *State) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// New crea el contenedor vacío
func New(opts ...Option) *State {
	s := &State{
		emails:     make(map[string]int64),
		persister:  repository.NewMemoryPersister(),
		logger:     slog.Default(),
		validate:   newValidator(),
		now:        time.Now,
		policy:     PolicyGuest,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NewLogPublisher(s.logger)
	}
	return s
}

// Restore carga el último snapshot guardado. Se llama una vez al iniciar.
func (s *State) Restore(ctx context.Context) error {
	snap, err := s.persister.Load(ctx)
	if err != nil {
		return &OpError{Op: "market.Restore", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = nil
	s.products = nil
	s.orders = nil
	s.cart = nil
	s.session = 0
	s.emails = make(map[string]int64)
	s.seq = models.Sequences{}
	if snap == nil {
		return nil
	}

	for _, u := range snap.Users {
		s.users = append(s.users, u)
		s.emails[u.Email] = u.ID
		s.seq.User = max(s.seq.User, u.ID)
	}
	for _, p := range snap.Products {
		if p.AuditTrail == nil {
			p.AuditTrail = []models.AuditEntry{}
		}
		s.products = append(s.products, p.Clone())
		s.seq.Product = max(s.seq.Product, p.ID)
	}
	for _, o := range snap.Orders {
		s.orders = append(s.orders, o)
		s.seq.Order = max(s.seq.Order, o.ID)
	}
	s.seq.User = max(s.seq.User, snap.Sequences.User)
	s.seq.Product = max(s.seq.Product, snap.Sequences.Product)
	s.seq.Order = max(s.seq.Order, snap.Sequences.Order)

	s.logger.Info("State restored",
		"users", len(s.users),
		"products", len(s.products),
		"orders", len(s.orders))
	return nil
}

// Snapshot devuelve una copia del estado persistible
func (s *State) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() *models.Snapshot {
	snap := &models.Snapshot{
		Users:     make([]models.User, len(s.users)),
		Products:  make([]models.Product, 0, len(s.products)),
		Orders:    make([]models.Order, len(s.orders)),
		Sequences: s.seq,
	}
	copy(snap.Users, s.users)
	for _, p := range s.products {
		snap.Products = append(snap.Products, p.Clone())
	}
	copy(snap.Orders, s.orders)
	return snap
}

// persistLocked guarda el snapshot; la persistencia es best-effort y un
// fallo no revierte la mutación.
func (s *State) persistLocked(ctx context.Context, op string) {
	if err := s.persister.Save(ctx, s.snapshotLocked()); err != nil {
		s.logger.Warn("Snapshot save failed", "op", op, "error", err)
	}
}

// Flush guarda el snapshot actual y devuelve el error del backend, para
// quien necesita confirmar que la escritura quedó almacenada
func (s *State) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persister.Save(ctx, s.snapshotLocked()); err != nil {
		return &OpError{Op: "market.Flush", Err: err}
	}
	return nil
}

func (s *State) publish(ctx context.Context, topic string, payload any) {
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		s.logger.Warn("Event publish failed", "topic", topic, "error", err)
	}
}

func (s *State) nextUserID() int64 {
	s.seq.User++
	return s.seq.User
}

func (s *State) nextProductID() int64 {
	s.seq.Product++
	return s.seq.Product
}

func (s *State) nextOrderID() int64 {
	s.seq.Order++
	return s.seq.Order
}
