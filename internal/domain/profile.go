package domain

import "strings"

// UserID identifies a member on the chat platform.
type UserID int64

// Reserved tags.
const (
	// TagCron marks a tracked profile; removing it purges the profile.
	TagCron = "cron"
	// TagKord grants the right to create events. Only admins may add or remove it.
	TagKord = "kord"
)

// Capabilities describes what the acting user may do regardless of tags.
type Capabilities struct {
	IsAdmin bool
}

// Profile represents a member's configuration.
type Profile struct {
	ID               UserID   `json:"-"`
	Timezone         string   `json:"timezone"`
	Tags             []string `json:"tags"`
	OffLimitWeekdays string   `json:"off_limit_weekdays"`
	OffLimitWeekends string   `json:"off_limit_weekends"`
}

// NewProfile returns a profile with default settings.
func NewProfile(id UserID) *Profile {
	return &Profile{
		ID:       id,
		Timezone: DefaultTimezone,
		Tags:     []string{TagCron},
	}
}

// HasTag reports whether the profile holds tag, ignoring case.
func (p *Profile) HasTag(tag string) bool {
	if p == nil {
		return false
	}
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range p.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	return &cp
}

// Configure sets timezone and off-limit windows after validating them.
// Empty windows mean no restriction. Tags are left untouched.
func (p *Profile) Configure(timezone, weekdays, weekends string) error {
	tz, err := ParseTimezone(timezone)
	if err != nil {
		return err
	}
	if weekdays != "" {
		if err := ValidateTimeSlot(weekdays); err != nil {
			return err
		}
	}
	if weekends != "" {
		if err := ValidateTimeSlot(weekends); err != nil {
			return err
		}
	}
	p.Timezone = tz
	p.OffLimitWeekdays = weekdays
	p.OffLimitWeekends = weekends
	return nil
}
