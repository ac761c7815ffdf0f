package model

// TimeSlot is a half-open wall-clock range within one day, "HH:MM" to "HH:MM".
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RecurringSchedule holds the open windows for one weekday.
// DayOfWeek follows time.Weekday numbering: 0=Sunday..6=Saturday.
// A weekday without an entry is closed.
type RecurringSchedule struct {
	DayOfWeek int        `json:"dayOfWeek"`
	Slots     []TimeSlot `json:"slots"`
}

// DateException overrides the recurring schedule for a single date ("YYYY-MM-DD").
// IsBlocked closes the whole date; otherwise Slots are subtracted from the
// weekday's open windows. Past-dated exceptions are inert and never purged.
type DateException struct {
	Date      string     `json:"date"`
	Slots     []TimeSlot `json:"slots"`
	IsBlocked bool       `json:"isBlocked"`
}

// BookingConfig is the tenant's booking setup.
type BookingConfig struct {
	Enabled      bool                `json:"enabled"`
	BedsCapacity int                 `json:"bedsCapacity,omitempty"`
	Recurring    []RecurringSchedule `json:"recurring"`
	Exceptions   []DateException     `json:"exceptions"`
}

// Capacity returns the configured beds capacity, defaulting to 1.
func (b BookingConfig) Capacity() int {
	if b.BedsCapacity <= 0 {
		return 1
	}
	return b.BedsCapacity
}

// ServiceConfig describes a bookable service.
type ServiceConfig struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           int    `json:"price"`
	Duration        string `json:"duration"`
	Image           string `json:"image,omitempty"`
	Paused          bool   `json:"paused,omitempty"`
	Bookable        bool   `json:"bookable,omitempty"`
	DurationMinutes int    `json:"durationMinutes"`
}

// ServiceDuration returns the service duration in minutes, defaulting to 60.
func (s ServiceConfig) ServiceDuration() int {
	if s.DurationMinutes <= 0 {
		return 60
	}
	return s.DurationMinutes
}

// PackConfig describes a purchasable bundle of classes.
type PackConfig struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ClassCount   int    `json:"classCount"`
	Price        int    `json:"price"`
	ValidityDays int    `json:"validityDays"`
	Image        string `json:"image,omitempty"`
	Paused       bool   `json:"paused,omitempty"`
}

// ProductConfig describes a physical product in the storefront catalog.
type ProductConfig struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Category   string `json:"category,omitempty"`
	Image      string `json:"image,omitempty"`
	Featured   bool   `json:"featured,omitempty"`
	Paused     bool   `json:"paused,omitempty"`
	Stock      int    `json:"stock,omitempty"`
	TrackStock bool   `json:"trackStock,omitempty"`
}

// SiteConfig holds tenant presentation settings.
type SiteConfig struct {
	SiteName  string `json:"siteName"`
	Tagline   string `json:"tagline,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"`
	Email     string `json:"email,omitempty"`
	Location  string `json:"location,omitempty"`
}

// FullConfig is the whole tenant configuration, persisted as one document.
// Saves are whole-blob, last-write-wins.
type FullConfig struct {
	Site     SiteConfig      `json:"site"`
	Products []ProductConfig `json:"products"`
	Services []ServiceConfig `json:"services"`
	Packs    []PackConfig    `json:"packs"`
	Booking  BookingConfig   `json:"booking"`
}

// ServiceByID looks up a service in the catalog.
func (c *FullConfig) ServiceByID(id string) (ServiceConfig, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return ServiceConfig{}, false
}

// PackByID looks up a pack in the catalog.
func (c *FullConfig) PackByID(id string) (PackConfig, bool) {
	for _, p := range c.Packs {
		if p.ID == id {
			return p, true
		}
	}
	return PackConfig{}, false
}

// RecurringFor returns the recurring schedule entry for a weekday, if any.
func (c *FullConfig) RecurringFor(dayOfWeek int) (RecurringSchedule, bool) {
	for _, r := range c.Booking.Recurring {
		if r.DayOfWeek == dayOfWeek {
			return r, true
		}
	}
	return RecurringSchedule{}, false
}

// ExceptionFor returns the date exception for an exact date, if any.
func (c *FullConfig) ExceptionFor(date string) (DateException, bool) {
	for _, e := range c.Booking.Exceptions {
		if e.Date == date {
			return e, true
		}
	}
	return DateException{}, false
}

// DefaultConfig is served when the store holds no configuration yet.
func DefaultConfig() *FullConfig {
	return &FullConfig{
		Site: SiteConfig{SiteName: "Turnero"},
		Booking: BookingConfig{
			Enabled: true,
			Recurring: []RecurringSchedule{
				{DayOfWeek: 2, Slots: []TimeSlot{{Start: "18:00", End: "19:00"}}},
				{DayOfWeek: 5, Slots: []TimeSlot{{Start: "18:00", End: "19:00"}}},
			},
		},
	}
}
