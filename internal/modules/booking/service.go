package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"punchin/internal/domain"
)

const (
	DefaultMinDurationMinutes = 30
	DefaultMaxDurationMinutes = 720
)

type Options struct {
	Currency    string
	MinDuration int
	MaxDuration int
}

func (o Options) withDefaults() Options {
	if o.Currency == "" {
		o.Currency = DefaultCurrency
	}
	if o.MinDuration <= 0 {
		o.MinDuration = DefaultMinDurationMinutes
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = DefaultMaxDurationMinutes
	}
	return o
}

// BookingContext is everything the booking flow shows before a time is chosen.
type BookingContext struct {
	Studio             domain.Studio              `json:"studio"`
	Rooms              []domain.Room              `json:"rooms"`
	StudioAvailability []domain.AvailabilityEntry `json:"studio_availability"`
	Engineers          []domain.UserProfile       `json:"engineers"`
}

// RequestInput is a booking request as submitted, by id.
type RequestInput struct {
	ArtistID        string
	StudioID        string
	RoomID          string
	EngineerID      string
	Start           time.Time
	DurationMinutes int
	Notes           string
}

// BookingRequest is a RequestInput with its references resolved.
type BookingRequest struct {
	ArtistID        string
	Studio          domain.Studio
	Room            domain.Room
	Engineer        domain.UserProfile
	Start           time.Time
	DurationMinutes int
	Notes           string
}

type BookingQuote struct {
	Start           time.Time                   `json:"start"`
	End             time.Time                   `json:"end"`
	DurationMinutes int                         `json:"duration_minutes"`
	Pricing         *domain.BookingPricing      `json:"pricing,omitempty"`
	IsInstant       bool                        `json:"is_instant"`
	Approval        domain.BookingApprovalState `json:"approval"`
}

type Service struct {
	studios      StudioRepository
	availability AvailabilityRepository
	profiles     ProfileRepository
	bookings     BookingRepository
	locker       Locker
	log          *zap.Logger
	opts         Options
	now          func() time.Time
}

func NewService(
	studios StudioRepository,
	availability AvailabilityRepository,
	profiles ProfileRepository,
	bookings BookingRepository,
	locker Locker,
	log *zap.Logger,
	opts Options,
) *Service {
	if locker == nil {
		locker = NewMemoryLocker()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		studios:      studios,
		availability: availability,
		profiles:     profiles,
		bookings:     bookings,
		locker:       locker,
		log:          log,
		opts:         opts.withDefaults(),
		now:          time.Now,
	}
}

func (s *Service) FetchStudios(ctx context.Context) ([]domain.Studio, error) {
	return s.studios.FetchStudios(ctx)
}

func (s *Service) LoadStudio(ctx context.Context, id string) (*domain.Studio, error) {
	return s.studios.LoadStudio(ctx, id)
}

func (s *Service) LoadBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.LoadBooking(ctx, id)
}

func (s *Service) FetchBookings(ctx context.Context, participantID string, role domain.ParticipantRole) ([]domain.Booking, error) {
	return s.bookings.FetchBookings(ctx, participantID, role)
}

func (s *Service) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	b.UpdatedAt = s.now().UTC()
	return s.bookings.UpdateBooking(ctx, b)
}

// LoadContext gathers rooms, studio availability and the candidate engineers for a studio.
// Engineers come back in approved-list order with the preferred engineer last when it is
// not already approved.
func (s *Service) LoadContext(ctx context.Context, studio domain.Studio, preferredEngineerID string) (*BookingContext, error) {
	var (
		rooms   []domain.Room
		entries []domain.AvailabilityEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rooms, err = s.studios.FetchRooms(gctx, studio.ID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.availability.FetchAvailability(gctx, domain.ScopeStudio, studio.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(studio.ApprovedEngineerIDs)+1)
	ids = append(ids, studio.ApprovedEngineerIDs...)
	if preferredEngineerID != "" && !studio.HasApprovedEngineer(preferredEngineerID) {
		ids = append(ids, preferredEngineerID)
	}

	engineers := []domain.UserProfile{}
	if len(ids) > 0 {
		profiles, err := s.profiles.FetchUserProfiles(ctx, ids)
		if err != nil {
			return nil, err
		}
		engineers = orderProfiles(profiles, ids)
	}

	return &BookingContext{
		Studio:             studio,
		Rooms:              rooms,
		StudioAvailability: entries,
		Engineers:          engineers,
	}, nil
}

func orderProfiles(profiles []domain.UserProfile, ids []string) []domain.UserProfile {
	byID := make(map[string]domain.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	out := make([]domain.UserProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// BuildRequest resolves the ids in input. Unknown ids surface the store's not-found error.
func (s *Service) BuildRequest(ctx context.Context, in RequestInput) (*BookingRequest, error) {
	if in.RoomID == "" {
		return nil, ErrMissingRoom
	}
	if in.EngineerID == "" {
		return nil, ErrMissingEngineer
	}

	studio, err := s.studios.LoadStudio(ctx, in.StudioID)
	if err != nil {
		return nil, err
	}
	room, err := s.findRoom(ctx, studio.ID, in.RoomID)
	if err != nil {
		return nil, err
	}
	engineer, err := s.findProfile(ctx, in.EngineerID)
	if err != nil {
		return nil, err
	}

	return &BookingRequest{
		ArtistID:        in.ArtistID,
		Studio:          *studio,
		Room:            *room,
		Engineer:        *engineer,
		Start:           in.Start,
		DurationMinutes: in.DurationMinutes,
		Notes:           in.Notes,
	}, nil
}

func (s *Service) findRoom(ctx context.Context, studioID, roomID string) (*domain.Room, error) {
	rooms, err := s.studios.FetchRooms(ctx, studioID)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].ID == roomID {
			return &rooms[i], nil
		}
	}
	return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
}

func (s *Service) findProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	profiles, err := s.profiles.FetchUserProfiles(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
}

// Quote validates a request against the studio schedule, room and engineer availability
// and prices it. It writes nothing.
func (s *Service) Quote(ctx context.Context, req BookingRequest) (*BookingQuote, error) {
	start, end, err := s.window(req.Start, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	candidate := domain.Booking{
		StudioID:       req.Studio.ID,
		RoomID:         req.Room.ID,
		EngineerID:     req.Engineer.ID,
		Status:         domain.BookingPending,
		RequestedStart: start,
		RequestedEnd:   end,
	}
	if err := s.checkSlot(ctx, req.Studio, candidate, ""); err != nil {
		return nil, err
	}

	approval := ResolveApproval(req.Studio, req.Engineer)
	return &BookingQuote{
		Start:           start,
		End:             end,
		DurationMinutes: req.DurationMinutes,
		Pricing:         ResolvePricing(req.Studio, req.Room, req.DurationMinutes, s.opts.Currency),
		IsInstant:       approval.IsFullyApproved(),
		Approval:        approval,
	}, nil
}

func (s *Service) window(start time.Time, minutes int) (time.Time, time.Time, error) {
	if minutes < s.opts.MinDuration || minutes > s.opts.MaxDuration {
		return time.Time{}, time.Time{}, ErrInvalidDuration
	}
	return start, start.Add(time.Duration(minutes) * time.Minute), nil
}

// checkSlot runs the schedule and availability checks for candidate. Bookings with id
// excludeID and entries it holds are ignored.
func (s *Service) checkSlot(ctx context.Context, studio domain.Studio, candidate domain.Booking, excludeID string) error {
	schedule := studio.OperatingSchedule
	loc := schedule.Location()
	start, end := candidate.RequestedStart, candidate.RequestedEnd

	if schedule.IsBlackout(start) {
		return ErrStudioBlackout
	}
	if !schedule.AlwaysOpen() && !withinOperatingHours(schedule, Interval{Start: start, End: end}) {
		return ErrStudioClosed
	}

	studioEntries, err := s.availability.FetchAvailability(ctx, domain.ScopeStudio, studio.ID)
	if err != nil {
		return err
	}
	roomEntries := make([]domain.AvailabilityEntry, 0, len(studioEntries))
	for _, e := range studioEntries {
		if e.AppliesToRoom(candidate.RoomID) && !heldBy(e, excludeID) {
			roomEntries = append(roomEntries, e)
		}
	}
	if !ConflictFree(roomEntries, start, end, loc) {
		return ErrRoomUnavailable
	}

	studioBookings, err := s.bookings.FetchBookings(ctx, studio.ID, domain.ParticipantStudio)
	if err != nil {
		return err
	}
	if hit := FirstConflictingBooking(studioBookings, candidate, excludeID); hit != nil {
		s.log.Debug("slot taken",
			zap.String("studio_id", studio.ID),
			zap.String("room_id", candidate.RoomID),
			zap.String("conflicting_booking_id", hit.ID))
		return ErrRoomUnavailable
	}

	engineerEntries, err := s.availability.FetchAvailability(ctx, domain.ScopeEngineer, candidate.EngineerID)
	if err != nil {
		return err
	}
	kept := make([]domain.AvailabilityEntry, 0, len(engineerEntries))
	for _, e := range engineerEntries {
		if !heldBy(e, excludeID) {
			kept = append(kept, e)
		}
	}
	if !ConflictFree(kept, start, end, loc) {
		return ErrEngineerUnavailable
	}

	engineerBookings, err := s.bookings.FetchBookings(ctx, candidate.EngineerID, domain.ParticipantEngineer)
	if err != nil {
		return err
	}
	if EngineerBusy(engineerBookings, candidate.EngineerID, start, end, excludeID) {
		return ErrEngineerUnavailable
	}
	return nil
}

func heldBy(e domain.AvailabilityEntry, bookingID string) bool {
	return bookingID != "" && e.SourceBookingID == bookingID
}

// withinOperatingHours checks iv against the merged open windows of the days it touches,
// starting a day early so ranges running past midnight are seen.
func withinOperatingHours(schedule domain.OperatingSchedule, iv Interval) bool {
	loc := schedule.Location()
	var open []Interval
	day := domain.StartOfDay(iv.Start, loc).AddDate(0, 0, -1)
	for !day.After(iv.End) {
		open = append(open, BaseWindows(schedule, day, day.AddDate(0, 0, 2))...)
		day = domain.StartOfDay(day.AddDate(0, 0, 1), loc)
	}
	for _, w := range MergeOverlapping(open) {
		if w.Contains(iv) {
			return true
		}
	}
	return false
}

// Submit re-validates the request under the room and engineer locks and persists it.
func (s *Service) Submit(ctx context.Context, req BookingRequest) (*domain.Booking, error) {
	unlock, err := s.locker.Lock(ctx,
		roomLockKey(req.Studio.ID, req.Room.ID),
		engineerLockKey(req.Engineer.ID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	quote, err := s.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &domain.Booking{
		ID:              uuid.NewString(),
		ArtistID:        req.ArtistID,
		StudioID:        req.Studio.ID,
		RoomID:          req.Room.ID,
		EngineerID:      req.Engineer.ID,
		Status:          domain.BookingPending,
		RequestedStart:  quote.Start,
		RequestedEnd:    quote.End,
		DurationMinutes: quote.DurationMinutes,
		Pricing:         quote.Pricing,
		InstantBook:     quote.IsInstant,
		Approval:        quote.Approval,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if quote.IsInstant {
		b.Status = domain.BookingConfirmed
		start, end := quote.Start, quote.End
		b.ConfirmedStart, b.ConfirmedEnd = &start, &end
	}

	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		if errors.Is(err, ErrBookingConflict) {
			s.log.Info("booking rejected by store",
				zap.String("studio_id", b.StudioID),
				zap.String("room_id", b.RoomID),
				zap.Time("start", b.RequestedStart))
			return nil, ErrBookingConflict
		}
		s.log.Error("create booking failed", zap.String("studio_id", b.StudioID), zap.Error(err))
		return nil, err
	}

	s.log.Info("booking submitted",
		zap.String("booking_id", b.ID),
		zap.String("status", string(b.Status)),
		zap.Bool("instant", b.InstantBook))
	return b, nil
}

// ValidateReschedule checks that b could move to newStart for durationMinutes.
// The booking itself and the holds it owns never conflict with the move.
func (s *Service) ValidateReschedule(ctx context.Context, b domain.Booking, newStart time.Time, durationMinutes int) error {
	if !domain.CanTransition(b.Status, domain.BookingRescheduled) {
		return ErrInvalidStatusTransition
	}
	start, end, err := s.window(newStart, durationMinutes)
	if err != nil {
		return err
	}
	studio, err := s.studios.LoadStudio(ctx, b.StudioID)
	if err != nil {
		return err
	}

	candidate := b
	candidate.Status = domain.BookingRescheduled
	candidate.RequestedStart, candidate.RequestedEnd = start, end
	candidate.ConfirmedStart, candidate.ConfirmedEnd = nil, nil
	return s.checkSlot(ctx, *studio, candidate, b.ID)
}

// Reschedule moves a booking to a new window. The confirmed window is cleared until the
// move is approved again.
func (s *Service) Reschedule(ctx context.Context, actorID, bookingID string, newStart time.Time, durationMinutes int) (*domain.Booking, error) {
	b, studio, unlock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !isParticipant(*b, *studio, actorID) {
		return nil, ErrForbidden
	}
	if !domain.CanTransition(b.Status, domain.BookingRescheduled) {
		return nil, ErrInvalidStatusTransition
	}
	if err := s.ValidateReschedule(ctx, *b, newStart, durationMinutes); err != nil {
		return nil, err
	}

	b.RequestedStart = newStart
	b.RequestedEnd = newStart.Add(time.Duration(durationMinutes) * time.Minute)
	b.DurationMinutes = durationMinutes
	b.ConfirmedStart, b.ConfirmedEnd = nil, nil
	b.Status = domain.BookingRescheduled
	if b.Pricing != nil {
		b.Pricing = reprice(*b.Pricing, durationMinutes)
	}

	if err := s.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("booking rescheduled", zap.String("booking_id", b.ID), zap.Time("start", b.RequestedStart))
	return b, nil
}

func reprice(p domain.BookingPricing, minutes int) *domain.BookingPricing {
	rate := p.HourlyRate
	return ResolvePricing(domain.Studio{HourlyRate: &rate}, domain.Room{}, minutes, p.Currency)
}

// Approve records the actor's approval. The booking is confirmed once no party still has
// to review it.
func (s *Service) Approve(ctx context.Context, actorID, bookingID string) (*domain.Booking, error) {
	b, studio, unlock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !domain.CanTransition(b.Status, domain.BookingConfirmed) {
		return nil, ErrInvalidStatusTransition
	}

	switch {
	case actorID == studio.OwnerID && actorID == b.EngineerID:
		b.Approval.RequiresStudioApproval = false
		b.Approval.RequiresEngineerApproval = false
	case actorID == studio.OwnerID:
		b.Approval.RequiresStudioApproval = false
	case actorID == b.EngineerID:
		b.Approval.RequiresEngineerApproval = false
	default:
		return nil, ErrForbidden
	}

	if b.Approval.IsFullyApproved() {
		now := s.now().UTC()
		start, end := b.RequestedStart, b.RequestedEnd
		b.Status = domain.BookingConfirmed
		b.ConfirmedStart, b.ConfirmedEnd = &start, &end
		b.Approval.ResolvedBy = actorID
		b.Approval.ResolvedAt = &now
	}

	if err := s.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel is open to every participant while the booking is not terminal.
func (s *Service) Cancel(ctx context.Context, actorID, bookingID string) (*domain.Booking, error) {
	b, studio, unlock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !isParticipant(*b, *studio, actorID) {
		return nil, ErrForbidden
	}
	return s.transition(ctx, b, domain.BookingCancelled)
}

// Complete marks a confirmed session as done. Only the studio owner or engineer may.
func (s *Service) Complete(ctx context.Context, actorID, bookingID string) (*domain.Booking, error) {
	b, studio, unlock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if actorID != studio.OwnerID && actorID != b.EngineerID {
		return nil, ErrForbidden
	}
	return s.transition(ctx, b, domain.BookingCompleted)
}

func (s *Service) transition(ctx context.Context, b *domain.Booking, to domain.BookingStatus) (*domain.Booking, error) {
	if !domain.CanTransition(b.Status, to) {
		return nil, ErrInvalidStatusTransition
	}
	b.Status = to
	if err := s.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("booking status changed", zap.String("booking_id", b.ID), zap.String("status", string(to)))
	return b, nil
}

// lockBooking takes the booking's room and engineer locks and reloads it under them.
// The caller must call unlock once the change is written.
func (s *Service) lockBooking(ctx context.Context, bookingID string) (*domain.Booking, *domain.Studio, func(), error) {
	b, err := s.bookings.LoadBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, nil, err
	}

	unlock, err := s.locker.Lock(ctx, roomLockKey(b.StudioID, b.RoomID), engineerLockKey(b.EngineerID))
	if err != nil {
		return nil, nil, nil, err
	}

	// reload under the lock
	b, err = s.bookings.LoadBooking(ctx, bookingID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	studio, err := s.studios.LoadStudio(ctx, b.StudioID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	return b, studio, unlock, nil
}

func isParticipant(b domain.Booking, studio domain.Studio, actorID string) bool {
	return actorID != "" && (actorID == b.ArtistID || actorID == b.EngineerID || actorID == studio.OwnerID)
}

// FreeWindows lists the bookable stretches of a room on the calendar day of day, in the
// studio's zone.
func (s *Service) FreeWindows(ctx context.Context, studioID, roomID string, day time.Time) ([]Interval, error) {
	studio, err := s.studios.LoadStudio(ctx, studioID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findRoom(ctx, studioID, roomID); err != nil {
		return nil, err
	}

	schedule := studio.OperatingSchedule
	loc := schedule.Location()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	if schedule.IsBlackout(dayStart) {
		return []Interval{}, nil
	}

	// yesterday's late ranges can run into today
	open := BaseWindows(schedule, dayStart.AddDate(0, 0, -1), dayEnd)
	open = append(open, BaseWindows(schedule, dayStart, dayEnd)...)
	free := make([]Interval, 0, len(open))
	for _, w := range MergeOverlapping(open) {
		if iv := clamp(w, dayStart, dayEnd); iv != nil {
			free = append(free, *iv)
		}
	}

	entries, err := s.availability.FetchAvailability(ctx, domain.ScopeStudio, studioID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsBlocking() || !e.AppliesToRoom(roomID) {
			continue
		}
		iv := EntryInterval(e, dayStart, dayEnd)
		if iv == nil {
			iv = RecurringEntryInterval(e, dayStart, dayEnd, loc)
		}
		if iv != nil {
			free = Subtract(free, *iv)
		}
	}

	bookings, err := s.bookings.FetchBookings(ctx, studioID, domain.ParticipantStudio)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if b.RoomID != roomID || !b.IsLive() {
			continue
		}
		if iv := ClampedBookingInterval(b, dayStart, dayEnd); iv != nil {
			free = Subtract(free, *iv)
		}
	}
	return MergeOverlapping(free), nil
}

// CreateAvailability stores an owner block. Studio entries belong to the studio's owner,
// engineer entries to the engineer.
func (s *Service) CreateAvailability(ctx context.Context, actorID string, e domain.AvailabilityEntry) (*domain.AvailabilityEntry, error) {
	if err := s.authorizeEntry(ctx, actorID, e); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	e.ID = uuid.NewString()
	e.CreatedBy = actorID
	e.CreatedAt, e.UpdatedAt = now, now
	switch e.Scope {
	case domain.ScopeStudio:
		e.StudioID = e.OwnerID
	case domain.ScopeEngineer:
		e.EngineerID = e.OwnerID
	}
	if err := s.availability.CreateAvailability(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) DeleteAvailability(ctx context.Context, actorID, id string) error {
	e, err := s.availability.LoadAvailability(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeEntry(ctx, actorID, *e); err != nil {
		return err
	}
	return s.availability.DeleteAvailability(ctx, id)
}

func (s *Service) authorizeEntry(ctx context.Context, actorID string, e domain.AvailabilityEntry) error {
	switch e.Scope {
	case domain.ScopeEngineer:
		if e.OwnerID != actorID {
			return ErrForbidden
		}
	case domain.ScopeStudio:
		studio, err := s.studios.LoadStudio(ctx, e.OwnerID)
		if err != nil {
			return err
		}
		if studio.OwnerID != actorID {
			return ErrForbidden
		}
	default:
		return domain.ErrMalformedEntry
	}
	return nil
}
