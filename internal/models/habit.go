package models

import "time"

type Habit struct {
	ID               string    `json:"id"`
	UserID           int64     `json:"user_id"`
	Name             string    `json:"name"`
	NotificationTime string    `json:"notification_time"` // HH:MM, stored literally
	Timezone         string    `json:"timezone"`          // carried, not used in date math
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

// HabitPatch carries the fields of a partial habit update. Nil fields are left
// untouched.
type HabitPatch struct {
	Name             *string `json:"name,omitempty"`
	NotificationTime *string `json:"notification_time,omitempty"`
	Timezone         *string `json:"timezone,omitempty"`
	Active           *bool   `json:"active,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (p HabitPatch) Empty() bool {
	return p.Name == nil && p.NotificationTime == nil && p.Timezone == nil && p.Active == nil
}

// Apply merges the present fields into h and reports whether anything changed.
func (p HabitPatch) Apply(h Habit) (Habit, bool) {
	changed := false
	if p.Name != nil && *p.Name != h.Name {
		h.Name = *p.Name
		changed = true
	}
	if p.NotificationTime != nil && *p.NotificationTime != h.NotificationTime {
		h.NotificationTime = *p.NotificationTime
		changed = true
	}
	if p.Timezone != nil && *p.Timezone != h.Timezone {
		h.Timezone = *p.Timezone
		changed = true
	}
	if p.Active != nil && *p.Active != h.Active {
		h.Active = *p.Active
		changed = true
	}
	return h, changed
}
