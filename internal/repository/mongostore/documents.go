package mongostore

import (
	"fmt"
	"time"

	"punchin/internal/domain"
)

// SchemaVersion is written on every document this package creates.
// Documents without it are read with the same defaults.
const SchemaVersion = 1

type recurringRangeDoc struct {
	Weekday         int `bson:"weekday"`
	StartMinutes    int `bson:"startMinutes"`
	DurationMinutes int `bson:"durationMinutes"`
}

type scheduleDoc struct {
	TimeZone       string              `bson:"timeZone,omitempty"`
	RecurringHours []recurringRangeDoc `bson:"recurringHours,omitempty"`
	BlackoutDates  []string            `bson:"blackoutDates,omitempty"`
}

type studioDoc struct {
	ID                  string       `bson:"_id"`
	SchemaVersion       int          `bson:"schemaVersion,omitempty"`
	OwnerID             string       `bson:"ownerId"`
	Name                string       `bson:"name"`
	City                string       `bson:"city,omitempty"`
	Address             string       `bson:"address,omitempty"`
	HourlyRate          *float64     `bson:"hourlyRate,omitempty"`
	ApprovedEngineerIDs []string     `bson:"approvedEngineerIds,omitempty"`
	AutoApproveRequests *bool        `bson:"autoApproveRequests,omitempty"`
	OperatingSchedule   *scheduleDoc `bson:"operatingSchedule,omitempty"`
	CreatedAt           time.Time    `bson:"createdAt"`
	UpdatedAt           time.Time    `bson:"updatedAt"`
}

type roomDoc struct {
	ID         string    `bson:"_id"`
	StudioID   string    `bson:"studioId"`
	Name       string    `bson:"name"`
	HourlyRate *float64  `bson:"hourlyRate,omitempty"`
	Capacity   *int      `bson:"capacity,omitempty"`
	Amenities  []string  `bson:"amenities,omitempty"`
	IsDefault  *bool     `bson:"isDefault,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

type engineerSettingsDoc struct {
	IsPremium                     *bool      `bson:"isPremium,omitempty"`
	InstantBookEnabled            *bool      `bson:"instantBookEnabled,omitempty"`
	MainStudioID                  string     `bson:"mainStudioId,omitempty"`
	AllowOtherStudios             *bool      `bson:"allowOtherStudios,omitempty"`
	MainStudioSelectedAt          *time.Time `bson:"mainStudioSelectedAt,omitempty"`
	DefaultSessionDurationMinutes *int       `bson:"defaultSessionDurationMinutes,omitempty"`
}

type profileDoc struct {
	ID          string               `bson:"_id"`
	DisplayName string               `bson:"displayName,omitempty"`
	Role        string               `bson:"role,omitempty"`
	Engineer    *engineerSettingsDoc `bson:"engineerSettings,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type recurringDoc struct {
	Weekday         int `bson:"weekday"`
	StartMinutes    int `bson:"startMinutes"`
	DurationMinutes int `bson:"durationMinutes"`
}

type absoluteDoc struct {
	Start time.Time `bson:"start"`
	End   time.Time `bson:"end"`
}

type availabilityDoc struct {
	ID              string        `bson:"_id"`
	SchemaVersion   int           `bson:"schemaVersion,omitempty"`
	Kind            string        `bson:"kind"`
	Scope           string        `bson:"scope"`
	OwnerID         string        `bson:"ownerId"`
	StudioID        string        `bson:"studioId,omitempty"`
	RoomID          string        `bson:"roomId,omitempty"`
	EngineerID      string        `bson:"engineerId,omitempty"`
	SourceBookingID string        `bson:"sourceBookingId,omitempty"`
	CreatedBy       string        `bson:"createdBy,omitempty"`
	Note            string        `bson:"note,omitempty"`
	Recurring       *recurringDoc `bson:"recurring,omitempty"`
	Absolute        *absoluteDoc  `bson:"absolute,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt"`
}

type pricingDoc struct {
	HourlyRate float64 `bson:"hourlyRate"`
	Total      float64 `bson:"total"`
	Currency   string  `bson:"currency,omitempty"`
}

type approvalDoc struct {
	RequiresStudioApproval   *bool      `bson:"requiresStudioApproval,omitempty"`
	RequiresEngineerApproval *bool      `bson:"requiresEngineerApproval,omitempty"`
	ResolvedBy               string     `bson:"resolvedBy,omitempty"`
	ResolvedAt               *time.Time `bson:"resolvedAt,omitempty"`
}

type bookingDoc struct {
	ID              string       `bson:"_id"`
	SchemaVersion   int          `bson:"schemaVersion,omitempty"`
	ArtistID        string       `bson:"artistId"`
	StudioID        string       `bson:"studioId"`
	RoomID          string       `bson:"roomId"`
	EngineerID      string       `bson:"engineerId,omitempty"`
	Status          string       `bson:"status,omitempty"`
	RequestedStart  time.Time    `bson:"requestedStart"`
	RequestedEnd    *time.Time   `bson:"requestedEnd,omitempty"`
	ConfirmedStart  *time.Time   `bson:"confirmedStart,omitempty"`
	ConfirmedEnd    *time.Time   `bson:"confirmedEnd,omitempty"`
	DurationMinutes *int         `bson:"durationMinutes,omitempty"`
	Pricing         *pricingDoc  `bson:"pricing,omitempty"`
	InstantBook     *bool        `bson:"instantBook,omitempty"`
	Approval        *approvalDoc `bson:"approval,omitempty"`
	ConversationID  string       `bson:"conversationId,omitempty"`
	Notes           string       `bson:"notes,omitempty"`
	CreatedAt       time.Time    `bson:"createdAt"`
	UpdatedAt       time.Time    `bson:"updatedAt"`
}

// decodeStudio applies: timeZone UTC, empty lists, autoApproveRequests false.
func decodeStudio(d studioDoc) domain.Studio {
	s := domain.Studio{
		ID:                  d.ID,
		OwnerID:             d.OwnerID,
		Name:                d.Name,
		City:                d.City,
		Address:             d.Address,
		HourlyRate:          d.HourlyRate,
		ApprovedEngineerIDs: stringList(d.ApprovedEngineerIDs),
		AutoApproveRequests: boolOr(d.AutoApproveRequests),
		OperatingSchedule: domain.OperatingSchedule{
			TimeZone:       "UTC",
			RecurringHours: []domain.RecurringTimeRange{},
			BlackoutDates:  []string{},
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if sch := d.OperatingSchedule; sch != nil {
		if sch.TimeZone != "" {
			s.OperatingSchedule.TimeZone = sch.TimeZone
		}
		for _, r := range sch.RecurringHours {
			s.OperatingSchedule.RecurringHours = append(s.OperatingSchedule.RecurringHours, domain.RecurringTimeRange(r))
		}
		s.OperatingSchedule.BlackoutDates = stringList(sch.BlackoutDates)
	}
	return s
}

func encodeStudio(s domain.Studio) studioDoc {
	hours := make([]recurringRangeDoc, 0, len(s.OperatingSchedule.RecurringHours))
	for _, r := range s.OperatingSchedule.RecurringHours {
		hours = append(hours, recurringRangeDoc(r))
	}
	auto := s.AutoApproveRequests
	return studioDoc{
		ID:                  s.ID,
		SchemaVersion:       SchemaVersion,
		OwnerID:             s.OwnerID,
		Name:                s.Name,
		City:                s.City,
		Address:             s.Address,
		HourlyRate:          s.HourlyRate,
		ApprovedEngineerIDs: s.ApprovedEngineerIDs,
		AutoApproveRequests: &auto,
		OperatingSchedule: &scheduleDoc{
			TimeZone:       s.OperatingSchedule.TimeZone,
			RecurringHours: hours,
			BlackoutDates:  s.OperatingSchedule.BlackoutDates,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func decodeRoom(d roomDoc) domain.Room {
	return domain.Room{
		ID:         d.ID,
		StudioID:   d.StudioID,
		Name:       d.Name,
		HourlyRate: d.HourlyRate,
		Capacity:   d.Capacity,
		Amenities:  stringList(d.Amenities),
		IsDefault:  boolOr(d.IsDefault),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func encodeRoom(r domain.Room) roomDoc {
	isDefault := r.IsDefault
	return roomDoc{
		ID:         r.ID,
		StudioID:   r.StudioID,
		Name:       r.Name,
		HourlyRate: r.HourlyRate,
		Capacity:   r.Capacity,
		Amenities:  r.Amenities,
		IsDefault:  &isDefault,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// decodeProfile applies: defaultSessionDurationMinutes 60, flags false.
func decodeProfile(d profileDoc) domain.UserProfile {
	p := domain.UserProfile{
		ID:          d.ID,
		DisplayName: d.DisplayName,
		Role:        domain.UserRole(d.Role),
		Engineer: domain.EngineerSettings{
			DefaultSessionDurationMinutes: domain.DefaultSessionDurationMinutes,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if e := d.Engineer; e != nil {
		p.Engineer.IsPremium = boolOr(e.IsPremium)
		p.Engineer.InstantBookEnabled = boolOr(e.InstantBookEnabled)
		p.Engineer.MainStudioID = e.MainStudioID
		p.Engineer.AllowOtherStudios = boolOr(e.AllowOtherStudios)
		p.Engineer.MainStudioSelectedAt = e.MainStudioSelectedAt
		if e.DefaultSessionDurationMinutes != nil && *e.DefaultSessionDurationMinutes > 0 {
			p.Engineer.DefaultSessionDurationMinutes = *e.DefaultSessionDurationMinutes
		}
	}
	return p
}

func encodeProfile(p domain.UserProfile) profileDoc {
	e := p.Engineer
	premium, instant, other := e.IsPremium, e.InstantBookEnabled, e.AllowOtherStudios
	duration := e.DefaultSessionDurationMinutes
	return profileDoc{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Role:        string(p.Role),
		Engineer: &engineerSettingsDoc{
			IsPremium:                     &premium,
			InstantBookEnabled:            &instant,
			MainStudioID:                  e.MainStudioID,
			AllowOtherStudios:             &other,
			MainStudioSelectedAt:          e.MainStudioSelectedAt,
			DefaultSessionDurationMinutes: &duration,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// decodeAvailability rejects documents that carry neither or both payload shapes.
func decodeAvailability(d availabilityDoc) (domain.AvailabilityEntry, error) {
	h := domain.EntryHeader{
		ID:              d.ID,
		Kind:            domain.AvailabilityKind(d.Kind),
		Scope:           domain.AvailabilityScope(d.Scope),
		OwnerID:         d.OwnerID,
		StudioID:        d.StudioID,
		RoomID:          d.RoomID,
		EngineerID:      d.EngineerID,
		SourceBookingID: d.SourceBookingID,
		CreatedBy:       d.CreatedBy,
		Note:            d.Note,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	switch {
	case d.Recurring != nil && d.Absolute == nil:
		return domain.NewRecurringEntry(h, domain.RecurringWindow(*d.Recurring))
	case d.Absolute != nil && d.Recurring == nil:
		return domain.NewAbsoluteEntry(h, domain.AbsoluteWindow{Start: d.Absolute.Start, End: d.Absolute.End})
	}
	return domain.AvailabilityEntry{}, fmt.Errorf("%w: document %s", domain.ErrMalformedEntry, d.ID)
}

func encodeAvailability(e domain.AvailabilityEntry) availabilityDoc {
	d := availabilityDoc{
		ID:              e.ID,
		SchemaVersion:   SchemaVersion,
		Kind:            string(e.Kind),
		Scope:           string(e.Scope),
		OwnerID:         e.OwnerID,
		StudioID:        e.StudioID,
		RoomID:          e.RoomID,
		EngineerID:      e.EngineerID,
		SourceBookingID: e.SourceBookingID,
		CreatedBy:       e.CreatedBy,
		Note:            e.Note,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if w, ok := e.Recurring(); ok {
		r := recurringDoc(w)
		d.Recurring = &r
	}
	if w, ok := e.Absolute(); ok {
		d.Absolute = &absoluteDoc{Start: w.Start.UTC(), End: w.End.UTC()}
	}
	return d
}

// decodeBooking applies: durationMinutes 60, status pending, pricing currency falls back
// to currency, requestedEnd derived from start and duration.
func decodeBooking(d bookingDoc, currency string) domain.Booking {
	duration := domain.DefaultBookingDurationMinutes
	if d.DurationMinutes != nil && *d.DurationMinutes > 0 {
		duration = *d.DurationMinutes
	}
	end := d.RequestedStart.Add(time.Duration(duration) * time.Minute)
	if d.RequestedEnd != nil && d.RequestedEnd.After(d.RequestedStart) {
		end = *d.RequestedEnd
	}

	b := domain.Booking{
		ID:              d.ID,
		ArtistID:        d.ArtistID,
		StudioID:        d.StudioID,
		RoomID:          d.RoomID,
		EngineerID:      d.EngineerID,
		Status:          domain.ParseBookingStatus(d.Status),
		RequestedStart:  d.RequestedStart,
		RequestedEnd:    end,
		DurationMinutes: duration,
		InstantBook:     boolOr(d.InstantBook),
		ConversationID:  d.ConversationID,
		Notes:           d.Notes,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.ConfirmedStart != nil && d.ConfirmedEnd != nil {
		b.ConfirmedStart, b.ConfirmedEnd = d.ConfirmedStart, d.ConfirmedEnd
	}
	if p := d.Pricing; p != nil {
		cur := p.Currency
		if cur == "" {
			cur = currency
		}
		b.Pricing = &domain.BookingPricing{HourlyRate: p.HourlyRate, Total: p.Total, Currency: cur}
	}
	if a := d.Approval; a != nil {
		b.Approval = domain.BookingApprovalState{
			RequiresStudioApproval:   boolOr(a.RequiresStudioApproval),
			RequiresEngineerApproval: boolOr(a.RequiresEngineerApproval),
			ResolvedBy:               a.ResolvedBy,
			ResolvedAt:               a.ResolvedAt,
		}
	}
	return b
}

func encodeBooking(b domain.Booking) bookingDoc {
	end := b.RequestedEnd.UTC()
	duration := b.DurationMinutes
	instant := b.InstantBook
	studio, engineer := b.Approval.RequiresStudioApproval, b.Approval.RequiresEngineerApproval
	d := bookingDoc{
		ID:              b.ID,
		SchemaVersion:   SchemaVersion,
		ArtistID:        b.ArtistID,
		StudioID:        b.StudioID,
		RoomID:          b.RoomID,
		EngineerID:      b.EngineerID,
		Status:          string(b.Status),
		RequestedStart:  b.RequestedStart.UTC(),
		RequestedEnd:    &end,
		ConfirmedStart:  b.ConfirmedStart,
		ConfirmedEnd:    b.ConfirmedEnd,
		DurationMinutes: &duration,
		InstantBook:     &instant,
		Approval: &approvalDoc{
			RequiresStudioApproval:   &studio,
			RequiresEngineerApproval: &engineer,
			ResolvedBy:               b.Approval.ResolvedBy,
			ResolvedAt:               b.Approval.ResolvedAt,
		},
		ConversationID: b.ConversationID,
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	if b.Pricing != nil {
		d.Pricing = &pricingDoc{HourlyRate: b.Pricing.HourlyRate, Total: b.Pricing.Total, Currency: b.Pricing.Currency}
	}
	return d
}

func boolOr(v *bool) bool {
	return v != nil && *v
}

func stringList(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
