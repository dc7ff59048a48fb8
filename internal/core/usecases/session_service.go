package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/pkg/logging"
	"github.com/samirrijal/tunitrip/internal/pkg/metrics"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrWaypointIndex   = errors.New("waypoint index out of range")
	ErrInvalidFuelType = errors.New("fuel type must be diesel or gasoline")
	ErrInvalidLocation = errors.New("location out of range")
	ErrIncompleteTrip  = errors.New("trip needs an origin, a destination, a vehicle and a road distance")
)

const (
	DefaultSessionIdle  = 30 * time.Minute
	sessionPriceTimeout = 30 * time.Second
)

// session is the state of one user's planning session. All fields are
// guarded by mu.
type session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	touchedAt time.Time

	origin      *domain.LocationPoint
	destination *domain.LocationPoint
	waypoints   []domain.LocationPoint

	vehicle     *domain.Vehicle
	fuelType    domain.FuelType
	fuelTypeSet bool

	prices      domain.PriceQuote
	pricesReady chan struct{}

	route    *domain.RouteResult
	routeGen uint64
}

// SessionState is a point-in-time snapshot of a session.
type SessionState struct {
	ID              string                 `json:"id"`
	CreatedAt       time.Time              `json:"created_at"`
	Origin          *domain.LocationPoint  `json:"origin"`
	Destination     *domain.LocationPoint  `json:"destination"`
	Waypoints       []domain.LocationPoint `json:"waypoints"`
	Vehicle         *domain.Vehicle        `json:"vehicle"`
	FuelType        domain.FuelType        `json:"fuel_type"`
	FuelTypeChosen  bool                   `json:"fuel_type_chosen"`
	Prices          domain.PriceQuote      `json:"prices"`
	Route           *domain.RouteResult    `json:"route"`
	RouteGeneration uint64                 `json:"route_generation"`
	Bounds          *domain.Bounds         `json:"bounds,omitempty"`
	Cost            *domain.TripCost       `json:"cost"`
}

// SessionService owns planning sessions: the selected points, vehicle, fuel
// type, resolved prices and current route of each user. Route requests carry
// a generation token and a result is only applied while its token is current,
// so a slow response can never overwrite a newer one.
type SessionService struct {
	routes    *RouteService
	prices    *FuelPriceService
	vehicles  *VehicleService
	publisher ports.EventPublisher

	idle time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

// NewSessionService creates a new SessionService. publisher may be nil.
func NewSessionService(routes *RouteService, prices *FuelPriceService, vehicles *VehicleService, publisher ports.EventPublisher) *SessionService {
	return &SessionService{
		routes:    routes,
		prices:    prices,
		vehicles:  vehicles,
		publisher: publisher,
		idle:      DefaultSessionIdle,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// SetIdleTimeout changes how long an untouched session is kept.
func (s *SessionService) SetIdleTimeout(d time.Duration) {
	if d > 0 {
		s.idle = d
	}
}

// Create opens a session. Prices start at DefaultSessionPrices and are
// resolved once in the background.
func (s *SessionService) Create(ctx context.Context) *SessionState {
	now := s.now()
	sess := &session{
		id:          uuid.NewString(),
		createdAt:   now,
		touchedAt:   now,
		prices:      domain.PriceQuote{FuelPrices: DefaultSessionPrices},
		pricesReady: make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	log := logging.FromContext(ctx).With("session_id", sess.id)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(sess.pricesReady)

		pctx, cancel := context.WithTimeout(logging.WithLogger(context.Background(), log), sessionPriceTimeout)
		defer cancel()
		quote := s.prices.Resolve(pctx)

		sess.mu.Lock()
		sess.prices = quote
		sess.mu.Unlock()
	}()

	return s.snapshot(sess)
}

// AwaitPrices blocks until the session's price resolution has landed.
func (s *SessionService) AwaitPrices(ctx context.Context, id string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	select {
	case <-sess.pricesReady:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the current state of a session.
func (s *SessionService) Get(ctx context.Context, id string) (*SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// Delete discards a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return nil
}

// SetOrigin replaces the origin and recomputes the route.
func (s *SessionService) SetOrigin(ctx context.Context, id string, p domain.LocationPoint) (*SessionState, error) {
	return s.updatePoints(ctx, id, p, func(sess *session) {
		sess.origin = &p
	})
}

// SetDestination replaces the destination and recomputes the route.
func (s *SessionService) SetDestination(ctx context.Context, id string, p domain.LocationPoint) (*SessionState, error) {
	return s.updatePoints(ctx, id, p, func(sess *session) {
		sess.destination = &p
	})
}

// AddWaypoint appends a waypoint and recomputes the route.
func (s *SessionService) AddWaypoint(ctx context.Context, id string, p domain.LocationPoint) (*SessionState, error) {
	return s.updatePoints(ctx, id, p, func(sess *session) {
		sess.waypoints = append(sess.waypoints, p)
	})
}

// RemoveWaypoint drops the waypoint at index and recomputes the route.
func (s *SessionService) RemoveWaypoint(ctx context.Context, id string, index int) (*SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	if index < 0 || index >= len(sess.waypoints) {
		sess.mu.Unlock()
		return nil, ErrWaypointIndex
	}
	wps := make([]domain.LocationPoint, 0, len(sess.waypoints)-1)
	wps = append(wps, sess.waypoints[:index]...)
	sess.waypoints = append(wps, sess.waypoints[index+1:]...)
	sess.touchedAt = s.now()
	sess.mu.Unlock()

	s.refreshRoute(ctx, sess)
	return s.snapshot(sess), nil
}

// ClearPoints removes origin, destination and waypoints.
func (s *SessionService) ClearPoints(ctx context.Context, id string) (*SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	sess.origin, sess.destination, sess.waypoints = nil, nil, nil
	sess.touchedAt = s.now()
	sess.mu.Unlock()

	s.refreshRoute(ctx, sess)
	return s.snapshot(sess), nil
}

// SelectVehicle picks a catalog vehicle and presets the fuel type from its engine.
func (s *SessionService) SelectVehicle(ctx context.Context, id string, vehicleID int) (*SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	v, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("vehicle %d: %w", vehicleID, err)
	}

	sess.mu.Lock()
	sess.vehicle = v
	sess.fuelType = v.DefaultFuelType()
	sess.fuelTypeSet = false
	sess.touchedAt = s.now()
	sess.mu.Unlock()

	return s.snapshot(sess), nil
}

// SetFuelType overrides the inferred fuel type.
func (s *SessionService) SetFuelType(ctx context.Context, id string, ft domain.FuelType) (*SessionState, error) {
	if !ft.Valid() {
		return nil, ErrInvalidFuelType
	}
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.fuelType = ft
	sess.fuelTypeSet = true
	sess.touchedAt = s.now()
	sess.mu.Unlock()

	return s.snapshot(sess), nil
}

// Receipt issues a receipt for the session's current trip.
func (s *SessionService) Receipt(ctx context.Context, id string) (*domain.Receipt, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	st := s.snapshot(sess)
	if st.Origin == nil || st.Destination == nil || st.Vehicle == nil || st.Cost == nil {
		return nil, ErrIncompleteTrip
	}

	r := &domain.Receipt{
		Number:      uuid.NewString(),
		IssuedAt:    s.now().UTC(),
		Origin:      *st.Origin,
		Waypoints:   st.Waypoints,
		Destination: *st.Destination,
		Vehicle:     *st.Vehicle,
		Cost:        *st.Cost,
		PricesAsOf:  st.Prices.LastUpdated,
	}

	metrics.QuotesComputed.WithLabelValues(string(st.Cost.FuelType)).Inc()
	if s.publisher != nil {
		ev := &ports.QuoteEvent{SessionID: id, VehicleID: st.Vehicle.ID, Cost: *st.Cost, At: r.IssuedAt}
		if err := s.publisher.PublishQuote(ctx, ev); err != nil {
			logging.FromContext(ctx).Warn("publish quote", "session_id", id, "error", err)
		}
	}
	return r, nil
}

// Sweep drops sessions idle for longer than the idle timeout and returns how many were removed.
func (s *SessionService) Sweep() int {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		stale := sess.touchedAt.Before(cutoff)
		sess.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logging.FromContext(ctx).Info("expired idle sessions", "count", n)
			}
		}
	}
}

// Wait blocks until background price resolutions have finished.
func (s *SessionService) Wait() {
	s.wg.Wait()
}

// get looks a session up and marks it active. Reads count as activity so a
// client that only polls keeps its session.
func (s *SessionService) get(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.touchedAt = s.now()
	sess.mu.Unlock()
	return sess, nil
}

func (s *SessionService) updatePoints(ctx context.Context, id string, p domain.LocationPoint, apply func(*session)) (*SessionState, error) {
	if !p.Coords.Valid() {
		return nil, ErrInvalidLocation
	}
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	apply(sess)
	sess.touchedAt = s.now()
	sess.mu.Unlock()

	s.refreshRoute(ctx, sess)
	return s.snapshot(sess), nil
}

// refreshRoute requests a route for the current points. The session lock is
// not held during the request; the result is dropped if the points changed
// meanwhile.
func (s *SessionService) refreshRoute(ctx context.Context, sess *session) {
	sess.mu.Lock()
	sess.routeGen++
	token := sess.routeGen
	if sess.origin == nil || sess.destination == nil {
		sess.route = nil
		sess.mu.Unlock()
		return
	}
	points := make([]domain.GeoPoint, 0, len(sess.waypoints)+2)
	points = append(points, sess.origin.Coords)
	for _, wp := range sess.waypoints {
		points = append(points, wp.Coords)
	}
	points = append(points, sess.destination.Coords)
	sess.mu.Unlock()

	res := s.routes.FetchRoute(ctx, points)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if token != sess.routeGen {
		metrics.RouteRequests.WithLabelValues(s.routes.Provider(), "stale").Inc()
		logging.FromContext(ctx).Debug("discarding stale route", "session_id", sess.id, "token", token, "current", sess.routeGen)
		return
	}
	sess.route = res
}

func (s *SessionService) snapshot(sess *session) *SessionState {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	st := &SessionState{
		ID:              sess.id,
		CreatedAt:       sess.createdAt,
		Waypoints:       append([]domain.LocationPoint{}, sess.waypoints...),
		FuelType:        sess.fuelType,
		FuelTypeChosen:  sess.fuelTypeSet,
		Prices:          sess.prices,
		Route:           sess.route,
		RouteGeneration: sess.routeGen,
	}
	if sess.origin != nil {
		o := *sess.origin
		st.Origin = &o
	}
	if sess.destination != nil {
		d := *sess.destination
		st.Destination = &d
	}
	if sess.vehicle != nil {
		v := *sess.vehicle
		st.Vehicle = &v
	}

	var pts []domain.GeoPoint
	if st.Origin != nil {
		pts = append(pts, st.Origin.Coords)
	}
	for _, wp := range st.Waypoints {
		pts = append(pts, wp.Coords)
	}
	if st.Destination != nil {
		pts = append(pts, st.Destination.Coords)
	}
	st.Bounds = domain.BoundsOf(pts)

	if sess.route != nil {
		st.Cost = ComputeTripCost(sess.route.TotalDistanceKm, st.Vehicle, sess.fuelType, sess.prices.FuelPrices)
	}
	return st
}
